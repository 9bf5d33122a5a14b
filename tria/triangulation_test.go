package tria

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fempack/gridio/mesh"
)

// Two unit quads side by side, canonical vertex ordering.
func twoQuadGrid() ([][]float64, []mesh.CellData) {
	vertices := [][]float64{
		{0, 0}, {1, 0}, {2, 0},
		{0, 1}, {1, 1}, {2, 1},
	}
	cells := []mesh.CellData{
		{Vertices: []int{0, 1, 3, 4}, MaterialID: 1, ManifoldID: mesh.FlatManifoldID},
		{Vertices: []int{1, 2, 4, 5}, MaterialID: 2, ManifoldID: mesh.FlatManifoldID},
	}
	return vertices, cells
}

func TestConstruct2D(t *testing.T) {
	tri, err := New(2, 2)
	require.NoError(t, err)

	vertices, cells := twoQuadGrid()
	sub := mesh.SubCellData{
		BoundaryLines: []mesh.BoundaryData{
			{Vertices: []int{0, 1}, BoundaryID: 1, ManifoldID: mesh.FlatManifoldID},
			{Vertices: []int{3, 0}, BoundaryID: 2, ManifoldID: mesh.FlatManifoldID},
		},
	}
	require.NoError(t, tri.Construct(vertices, cells, sub))
	assert.Equal(t, 6, tri.NVertices())
	assert.Equal(t, 2, tri.NCells())
	assert.Equal(t, 2, tri.NBoundaryEntities())
	assert.Equal(t, []int{0, 1}, tri.CellsAtVertex(1))
	assert.Equal(t, []int{1}, tri.CellsAtVertex(2))
}

func TestConstructRejectsDetachedBoundaryLine(t *testing.T) {
	tri, err := New(2, 2)
	require.NoError(t, err)

	vertices, cells := twoQuadGrid()
	sub := mesh.SubCellData{
		BoundaryLines: []mesh.BoundaryData{
			// Diagonal of the first cell, not one of its faces.
			{Vertices: []int{0, 4}, BoundaryID: 1, ManifoldID: mesh.FlatManifoldID},
		},
	}
	err = tri.Construct(vertices, cells, sub)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a face of any cell")
}

func TestConstructRejectsBadVertexIndex(t *testing.T) {
	tri, err := New(2, 2)
	require.NoError(t, err)

	vertices, cells := twoQuadGrid()
	cells[1].Vertices[3] = 99
	err = tri.Construct(vertices, cells, mesh.SubCellData{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vertex 99")
}

func TestConstructRejectsEmptyGrid(t *testing.T) {
	tri, err := New(2, 2)
	require.NoError(t, err)
	assert.Error(t, tri.Construct(nil, nil, mesh.SubCellData{}))
}

func TestConstruct3DBoundaryEntities(t *testing.T) {
	tri, err := New(3, 3)
	require.NoError(t, err)

	vertices := [][]float64{
		{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0},
		{0, 0, 1}, {1, 0, 1}, {0, 1, 1}, {1, 1, 1},
	}
	cells := []mesh.CellData{
		{Vertices: []int{0, 1, 2, 3, 4, 5, 6, 7}, ManifoldID: mesh.FlatManifoldID},
	}
	sub := mesh.SubCellData{
		BoundaryQuads: []mesh.BoundaryData{
			{Vertices: []int{0, 1, 2, 3}, BoundaryID: 3, ManifoldID: mesh.FlatManifoldID},
		},
		BoundaryLines: []mesh.BoundaryData{
			// An edge of the hex.
			{Vertices: []int{4, 5}, BoundaryID: 1, ManifoldID: mesh.FlatManifoldID},
		},
	}
	require.NoError(t, tri.Construct(vertices, cells, sub))

	// A quad through the cell interior must be rejected.
	sub.BoundaryQuads = append(sub.BoundaryQuads, mesh.BoundaryData{
		Vertices: []int{0, 3, 4, 7}, ManifoldID: mesh.FlatManifoldID,
	})
	tri2, err := New(3, 3)
	require.NoError(t, err)
	assert.Error(t, tri2.Construct(vertices, cells, sub))
}

func TestVertexBoundaryIDs1D(t *testing.T) {
	tri, err := New(1, 1)
	require.NoError(t, err)

	vertices := [][]float64{{0}, {1}, {2}}
	cells := []mesh.CellData{
		{Vertices: []int{0, 1}, ManifoldID: mesh.FlatManifoldID},
		{Vertices: []int{1, 2}, ManifoldID: mesh.FlatManifoldID},
	}
	require.NoError(t, tri.Construct(vertices, cells, mesh.SubCellData{}))

	require.NoError(t, tri.SetVertexBoundaryIDs(map[int]mesh.BoundaryID{0: 1, 2: 2}))
	id, ok := tri.VertexBoundaryID(2)
	assert.True(t, ok)
	assert.Equal(t, mesh.BoundaryID(2), id)

	// Vertex 1 is interior.
	err = tri.SetVertexBoundaryIDs(map[int]mesh.BoundaryID{1: 7})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not at the boundary")
}

func TestPrintStatistics(t *testing.T) {
	tri, err := New(2, 2)
	require.NoError(t, err)
	vertices, cells := twoQuadGrid()
	require.NoError(t, tri.Construct(vertices, cells, mesh.SubCellData{}))

	var buf bytes.Buffer
	tri.PrintStatistics(&buf)
	out := buf.String()
	assert.Contains(t, out, "Number of cells   : 2")
	assert.Contains(t, out, "Material   1      : 1 cells")
}
