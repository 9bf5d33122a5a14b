package readers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTecplotUnstructuredPoint(t *testing.T) {
	in := `TITLE = "two quads"
VARIABLES = "X", "Y"
ZONE T="mesh", N=6, E=2, DATAPACKING=POINT, ZONETYPE=FEQUADRILATERAL
0.0 0.0
1.0 0.0
2.0 0.0
0.0 1.0
1.0 1.0
2.0 1.0
1 2 5 4
2 3 6 5
`
	tri, err := readGrid(t, 2, 2, FormatTecplot, in)
	require.NoError(t, err)
	require.Equal(t, 2, tri.NCells())
	assert.Equal(t, 6, tri.NVertices())
	assert.Equal(t, []int{0, 1, 4, 3}, []int{
		tri.Cells[0].Vertices[0], tri.Cells[0].Vertices[1],
		tri.Cells[0].Vertices[3], tri.Cells[0].Vertices[2],
	})
}

func TestReadTecplotStructuredBlock(t *testing.T) {
	in := `VARIABLES = "X", "Y"
ZONE I=3, J=2, DATAPACKING=BLOCK
0.0 1.0 2.0 0.0 1.0 2.0
0.0 0.0 0.0 1.0 1.0 1.0
`
	tri, err := readGrid(t, 2, 2, FormatTecplot, in)
	require.NoError(t, err)
	require.Equal(t, 2, tri.NCells())
	assert.Equal(t, 6, tri.NVertices())
	assert.Equal(t, [][]float64{{0, 0}, {1, 0}, {2, 0}, {0, 1}, {1, 1}, {2, 1}}, tri.Vertices)
}

func TestReadTecplotBlockSkipsExtraVariables(t *testing.T) {
	in := `VARIABLES = "X", "Y", "P"
ZONE N=4, E=1, F=FEBLOCK, ET=QUADRILATERAL
0.0 1.0 1.0 0.0
0.0 0.0 1.0 1.0
7.5 7.5 7.5 7.5
1 2 3 4
`
	tri, err := readGrid(t, 2, 2, FormatTecplot, in)
	require.NoError(t, err)
	require.Equal(t, 1, tri.NCells())
	assert.Equal(t, [][]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}, tri.Vertices)
}

func TestReadTecplotCoordinateColumnsSwapped(t *testing.T) {
	in := `VARIABLES = "Y", "X"
ZONE N=4, E=1, F=FEPOINT, ET=QUADRILATERAL
0.0 0.0
0.0 1.0
1.0 1.0
1.0 0.0
1 2 3 4
`
	tri, err := readGrid(t, 2, 2, FormatTecplot, in)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}, tri.Vertices)
}

func TestReadTecplotRejects3D(t *testing.T) {
	_, err := readGrid(t, 3, 3, FormatTecplot, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only implemented for 2d")
}

func TestReadTecplotRejectsUnknownZoneType(t *testing.T) {
	in := `VARIABLES = "X", "Y"
ZONE N=3, E=1, DATAPACKING=POINT, ZONETYPE=FETRIANGLE
0.0 0.0
`
	_, err := readGrid(t, 2, 2, FormatTecplot, in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported zone type")
}

func TestReadTecplotRejectsMissingExtents(t *testing.T) {
	in := `VARIABLES = "X", "Y"
ZONE I=3, DATAPACKING=BLOCK
0.0 1.0 2.0
`
	_, err := readGrid(t, 2, 2, FormatTecplot, in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "grid extents")
}

func TestParseTecplotHeaderStructuredCounts(t *testing.T) {
	h, err := parseTecplotHeader(`VARIABLES="X" "Y"
ZONE I=4 J=3 F=BLOCK`, 2)
	require.NoError(t, err)
	assert.True(t, h.structured)
	assert.True(t, h.blocked)
	assert.Equal(t, 12, h.nVertices)
	assert.Equal(t, 6, h.nCells)
	assert.Equal(t, []int{1, 2}, h.coordColumn)
}
