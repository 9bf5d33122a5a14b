package readers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fempack/gridio/mesh"
	"github.com/fempack/gridio/tria"
)

const minimalUCDSquare = `# unit square
4 1 0 0 0
1 0.0 0.0 0.0
2 1.0 0.0 0.0
3 1.0 1.0 0.0
4 0.0 1.0 0.0
1 7 quad 1 2 3 4
`

func TestReadUCDSquare(t *testing.T) {
	tri, err := readGrid(t, 2, 2, FormatUCD, minimalUCDSquare)
	require.NoError(t, err)
	require.Equal(t, 1, tri.NCells())
	assert.Equal(t, 4, tri.NVertices())
	assert.Equal(t, mesh.MaterialID(7), tri.Cells[0].MaterialID)
	assert.Equal(t, mesh.FlatManifoldID, tri.Cells[0].ManifoldID)
	// Counterclockwise file ordering becomes lexicographic ordering.
	assert.Equal(t, []int{0, 1, 3, 2}, tri.Cells[0].Vertices)
	assert.Equal(t, [][]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}, tri.Vertices)
}

func TestReadUCDBoundaryLines(t *testing.T) {
	in := `4 3 0 0 0
1 0.0 0.0 0.0
2 1.0 0.0 0.0
3 1.0 1.0 0.0
4 0.0 1.0 0.0
1 0 quad 1 2 3 4
2 10 line 1 2
3 20 line 4 1
`
	tri, err := readGrid(t, 2, 2, FormatUCD, in)
	require.NoError(t, err)
	require.Len(t, tri.Sub.BoundaryLines, 2)
	assert.Equal(t, mesh.BoundaryID(10), tri.Sub.BoundaryLines[0].BoundaryID)
	assert.Equal(t, mesh.BoundaryID(20), tri.Sub.BoundaryLines[1].BoundaryID)
	assert.Equal(t, mesh.FlatManifoldID, tri.Sub.BoundaryLines[0].ManifoldID)
}

func TestReadUCDIndicatorsToManifolds(t *testing.T) {
	in := `4 2 0 0 0
1 0.0 0.0 0.0
2 1.0 0.0 0.0
3 1.0 1.0 0.0
4 0.0 1.0 0.0
1 7 quad 1 2 3 4
2 42 line 1 2
`
	g, err := NewGridIn(2, 2)
	require.NoError(t, err)
	g.ApplyAllIndicatorsToManifolds = true
	tri, err := tria.New(2, 2)
	require.NoError(t, err)
	g.AttachSink(tri)
	require.NoError(t, g.Read(strings.NewReader(in), FormatUCD))

	assert.Equal(t, mesh.MaterialID(7), tri.Cells[0].MaterialID)
	assert.Equal(t, mesh.ManifoldID(7), tri.Cells[0].ManifoldID)
	require.Len(t, tri.Sub.BoundaryLines, 1)
	assert.Equal(t, mesh.InternalBoundaryID, tri.Sub.BoundaryLines[0].BoundaryID)
	assert.Equal(t, mesh.ManifoldID(42), tri.Sub.BoundaryLines[0].ManifoldID)
}

func TestReadUCDInvertsNegativeCells(t *testing.T) {
	// The quad is listed clockwise.
	in := `4 1 0 0 0
1 0.0 0.0 0.0
2 1.0 0.0 0.0
3 1.0 1.0 0.0
4 0.0 1.0 0.0
1 0 quad 1 4 3 2
`
	tri, err := readGrid(t, 2, 2, FormatUCD, in)
	require.NoError(t, err)
	require.Equal(t, 1, tri.NCells())
	c := tri.Cells[0].Vertices
	// Signed area of the canonical quad (0,1,3,2 contour) is positive.
	area := mesh.CellMeasure(tri.Vertices, []int{c[0], c[1], c[3], c[2]}, 2)
	assert.True(t, area > 0)
}

func TestReadUCDNonConsecutiveVertexNumbers(t *testing.T) {
	in := `4 1 0 0 0
10 0.0 0.0 0.0
20 1.0 0.0 0.0
35 1.0 1.0 0.0
47 0.0 1.0 0.0
1 0 quad 10 20 35 47
`
	tri, err := readGrid(t, 2, 2, FormatUCD, in)
	require.NoError(t, err)
	assert.Equal(t, 4, tri.NVertices())
	assert.Equal(t, []int{0, 1, 3, 2}, tri.Cells[0].Vertices)
}

func TestReadUCDUnknownIdentifier(t *testing.T) {
	in := `3 1 0 0 0
1 0.0 0.0 0.0
2 1.0 0.0 0.0
3 1.0 1.0 0.0
1 0 tri 1 2 3
`
	_, err := readGrid(t, 2, 2, FormatUCD, in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown identifier <tri>")
}

func TestReadUCDInvalidVertexIndex(t *testing.T) {
	in := `4 1 0 0 0
1 0.0 0.0 0.0
2 1.0 0.0 0.0
3 1.0 1.0 0.0
4 0.0 1.0 0.0
1 0 quad 1 2 3 9
`
	_, err := readGrid(t, 2, 2, FormatUCD, in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid vertex index 9")
}

func TestReadUCDMaterialOutOfRange(t *testing.T) {
	in := `4 1 0 0 0
1 0.0 0.0 0.0
2 1.0 0.0 0.0
3 1.0 1.0 0.0
4 0.0 1.0 0.0
1 255 quad 1 2 3 4
`
	_, err := readGrid(t, 2, 2, FormatUCD, in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "material id 255 out of range")
}

func TestReadUCDHex(t *testing.T) {
	in := `8 2 0 0 0
1 0.0 0.0 0.0
2 1.0 0.0 0.0
3 1.0 1.0 0.0
4 0.0 1.0 0.0
5 0.0 0.0 1.0
6 1.0 0.0 1.0
7 1.0 1.0 1.0
8 0.0 1.0 1.0
1 3 hex 1 2 3 4 5 6 7 8
2 9 quad 1 2 3 4
`
	tri, err := readGrid(t, 3, 3, FormatUCD, in)
	require.NoError(t, err)
	require.Equal(t, 1, tri.NCells())
	assert.Equal(t, []int{0, 1, 3, 2, 4, 5, 7, 6}, tri.Cells[0].Vertices)
	require.Len(t, tri.Sub.BoundaryQuads, 1)
	assert.Equal(t, mesh.BoundaryID(9), tri.Sub.BoundaryQuads[0].BoundaryID)
	assert.Equal(t, []int{0, 1, 3, 2}, tri.Sub.BoundaryQuads[0].Vertices)
}
