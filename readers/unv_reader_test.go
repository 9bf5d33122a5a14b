package readers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fempack/gridio/mesh"
)

const unvTwoQuads = `    -1
  2411
1 1 1 11
0.0 0.0 0.0
2 1 1 11
1.0 0.0 0.0
3 1 1 11
2.0 0.0 0.0
4 1 1 11
0.0 1.0 0.0
5 1 1 11
1.0 1.0 0.0
6 1 1 11
2.0 1.0 0.0
    -1
    -1
  2412
1 44 1 1 1 4
1 2 5 4
2 44 1 1 1 4
2 3 6 5
3 11 1 1 1 2
0 1 1
1 2
4 11 1 1 1 2
0 1 1
2 3
    -1
`

const unvGroups = `    -1
  2467
1 0 0 0 0 0 0 2
7
8 1 0 0 8 2 0 0
2 0 0 0 0 0 0 2
9
8 3 0 0 8 4 0 0
    -1
`

func TestReadUNVWithoutGroups(t *testing.T) {
	tri, err := readGrid(t, 2, 2, FormatUNV, unvTwoQuads)
	require.NoError(t, err)
	require.Equal(t, 2, tri.NCells())
	assert.Equal(t, 6, tri.NVertices())
	require.Len(t, tri.Sub.BoundaryLines, 2)
	// Without a group section every indicator stays at its default.
	assert.Equal(t, mesh.MaterialID(0), tri.Cells[0].MaterialID)
	assert.Equal(t, mesh.BoundaryID(0), tri.Sub.BoundaryLines[0].BoundaryID)
}

func TestReadUNVWithGroups(t *testing.T) {
	tri, err := readGrid(t, 2, 2, FormatUNV, unvTwoQuads+unvGroups)
	require.NoError(t, err)
	require.Equal(t, 2, tri.NCells())
	assert.Equal(t, mesh.MaterialID(7), tri.Cells[0].MaterialID)
	assert.Equal(t, mesh.MaterialID(7), tri.Cells[1].MaterialID)
	require.Len(t, tri.Sub.BoundaryLines, 2)
	assert.Equal(t, mesh.BoundaryID(9), tri.Sub.BoundaryLines[0].BoundaryID)
	assert.Equal(t, mesh.BoundaryID(9), tri.Sub.BoundaryLines[1].BoundaryID)
}

func TestReadUNVHex(t *testing.T) {
	in := `    -1
  2411
1 1 1 11
0.0 0.0 0.0
2 1 1 11
1.0 0.0 0.0
3 1 1 11
1.0 1.0 0.0
4 1 1 11
0.0 1.0 0.0
5 1 1 11
0.0 0.0 1.0
6 1 1 11
1.0 0.0 1.0
7 1 1 11
1.0 1.0 1.0
8 1 1 11
0.0 1.0 1.0
    -1
    -1
  2412
1 115 1 1 1 8
1 2 3 4 5 6 7 8
2 44 1 1 1 4
1 2 3 4
    -1
`
	tri, err := readGrid(t, 3, 3, FormatUNV, in)
	require.NoError(t, err)
	require.Equal(t, 1, tri.NCells())
	assert.Equal(t, 8, tri.NVertices())
	require.Len(t, tri.Sub.BoundaryQuads, 1)
}

func TestReadUNVRejectsUnknownElementType(t *testing.T) {
	in := `    -1
  2411
1 1 1 11
0.0 0.0 0.0
    -1
    -1
  2412
1 99 1 1 1 3
1 1 1
    -1
`
	_, err := readGrid(t, 2, 2, FormatUNV, in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown element type 99")
}

func TestReadUNVRejectsWrongSection(t *testing.T) {
	in := `    -1
  2412
`
	_, err := readGrid(t, 2, 2, FormatUNV, in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected dataset 2411")
}

func TestReadUNVSkipsNodeGroups(t *testing.T) {
	// Groups over entities that are not cells, lines or quads, such
	// as the node groups Salome writes, leave the mesh untouched.
	in := unvTwoQuads + `    -1
  2467
1 0 0 0 0 0 0 2
13
7 5 0 0 7 6 0 0
2 0 0 0 0 0 0 2
9
8 3 0 0 8 4 0 0
    -1
`
	tri, err := readGrid(t, 2, 2, FormatUNV, in)
	require.NoError(t, err)
	require.Equal(t, 2, tri.NCells())
	assert.Equal(t, mesh.MaterialID(0), tri.Cells[0].MaterialID)
	require.Len(t, tri.Sub.BoundaryLines, 2)
	assert.Equal(t, mesh.BoundaryID(9), tri.Sub.BoundaryLines[0].BoundaryID)
	assert.Equal(t, mesh.BoundaryID(9), tri.Sub.BoundaryLines[1].BoundaryID)
}

func TestReadUNVRejectsUnknownTrailingSection(t *testing.T) {
	in := unvTwoQuads + `    -1
  2420
`
	_, err := readGrid(t, 2, 2, FormatUNV, in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown section type 2420")
}
