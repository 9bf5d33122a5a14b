package readers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fempack/gridio/mesh"
)

const abaqusRowOfQuads = `*HEADING
A row of five quadrilaterals
** written by hand
*NODE
1, 0., 0.
2, 1., 0.
3, 2., 0.
4, 3., 0.
5, 4., 0.
6, 5., 0.
7, 0., 1.
8, 1., 1.
9, 2., 1.
10, 3., 1.
11, 4., 1.
12, 5., 1.
*ELEMENT, TYPE=S4, ELSET=EB1
1, 1, 2, 8, 7
2, 2, 3, 9, 8
3, 3, 4, 10, 9
4, 4, 5, 11, 10
5, 5, 6, 12, 11
*ELSET, ELSET=Odd, GENERATE
1, 5, 2
*SOLID SECTION, ELSET=Odd, MATERIAL=Material-7
*SURFACE, NAME=SS3
1, S1
Odd, S3
`

func TestReadAbaqusRowOfQuads(t *testing.T) {
	tri, err := readGrid(t, 2, 2, FormatAbaqus, abaqusRowOfQuads)
	require.NoError(t, err)
	require.Equal(t, 5, tri.NCells())
	assert.Equal(t, 12, tri.NVertices())

	// The ELSET=EB1 key sets material 1, the solid section
	// overrides it for the elements generated as 1, 3, 5.
	want := []mesh.MaterialID{7, 1, 7, 1, 7}
	for c, m := range want {
		assert.Equal(t, m, tri.Cells[c].MaterialID, "cell %d", c)
	}

	// One bottom edge plus the top edges of the three odd cells.
	require.Len(t, tri.Sub.BoundaryLines, 4)
	for _, l := range tri.Sub.BoundaryLines {
		assert.Equal(t, mesh.BoundaryID(3), l.BoundaryID)
	}
}

func TestReadAbaqusExplicitElset(t *testing.T) {
	in := `*NODE
1, 0., 0.
2, 1., 0.
3, 1., 1.
4, 0., 1.
*ELEMENT, TYPE=S4, ELSET=EB5
1, 1, 2, 3, 4
*ELSET, ELSET=All
1
*SOLID SECTION, ELSET=All, MATERIAL=Material-9
`
	tri, err := readGrid(t, 2, 2, FormatAbaqus, in)
	require.NoError(t, err)
	require.Equal(t, 1, tri.NCells())
	assert.Equal(t, mesh.MaterialID(9), tri.Cells[0].MaterialID)
}

func TestReadAbaqusHex(t *testing.T) {
	in := `*HEADING
unit cube
*NODE
1, 0., 0., 0.
2, 1., 0., 0.
3, 1., 1., 0.
4, 0., 1., 0.
5, 0., 0., 1.
6, 1., 0., 1.
7, 1., 1., 1.
8, 0., 1., 1.
*ELEMENT, TYPE=C3D8, ELSET=EB2
1, 1, 2, 3, 4, 5, 6, 7, 8
*SURFACE, NAME=SS1
1, S1
`
	tri, err := readGrid(t, 3, 3, FormatAbaqus, in)
	require.NoError(t, err)
	require.Equal(t, 1, tri.NCells())
	assert.Equal(t, mesh.MaterialID(2), tri.Cells[0].MaterialID)
	// Face S1 is the bottom face, traversed 1, 4, 3, 2.
	require.Len(t, tri.Sub.BoundaryQuads, 1)
	assert.Equal(t, mesh.BoundaryID(1), tri.Sub.BoundaryQuads[0].BoundaryID)
}

func TestReadAbaqusStrayDataLine(t *testing.T) {
	in := `1, 0., 0.
*NODE
2, 1., 0.
`
	_, err := readGrid(t, 2, 2, FormatAbaqus, in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stray data line")
}

func TestReadAbaqusWithoutElements(t *testing.T) {
	in := `*HEADING
empty deck
*NODE
1, 0., 0.
`
	_, err := readGrid(t, 2, 2, FormatAbaqus, in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no elements")
}

func TestReadAbaqusUnknownSurfaceElement(t *testing.T) {
	in := `*NODE
1, 0., 0.
2, 1., 0.
3, 1., 1.
4, 0., 1.
*ELEMENT, TYPE=S4, ELSET=EB1
1, 1, 2, 3, 4
*SURFACE, NAME=SS1
9, S1
`
	_, err := readGrid(t, 2, 2, FormatAbaqus, in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "element 9")
}
