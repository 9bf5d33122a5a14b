// Package tria provides a concrete consumer for the mesh readers: a
// Triangulation stores the canonicalized grid, checks that every
// boundary entity actually lies on the boundary of some cell, and
// answers simple connectivity and statistics queries.
package tria

import (
	"fmt"
	"io"
	"sort"

	"github.com/james-bowman/sparse"

	"github.com/fempack/gridio/mesh"
)

// Local face numbering of a cell in canonical lexicographic vertex
// ordering. Face 2d is the face on which coordinate d is minimal,
// face 2d+1 the one on which it is maximal.
var (
	lineFaces = [2][1]int{{0}, {1}}
	quadFaces = [4][2]int{
		{0, 2}, {1, 3},
		{0, 1}, {2, 3},
	}
	hexFaces = [6][4]int{
		{0, 2, 4, 6}, {1, 3, 5, 7},
		{0, 1, 4, 5}, {2, 3, 6, 7},
		{0, 1, 2, 3}, {4, 5, 6, 7},
	}
)

// FacesPerCell returns the number of faces of a cell in dim dimensions.
func FacesPerCell(dim int) int {
	return 2 * dim
}

// Triangulation is the in-memory result of reading a mesh file. It
// implements mesh.Sink and, for 1d grids, mesh.VertexBoundarySetter.
type Triangulation struct {
	Dim      int
	SpaceDim int

	Vertices [][]float64
	Cells    []mesh.CellData
	Sub      mesh.SubCellData

	// vertexBoundary holds per-vertex boundary ids, only used in 1d.
	vertexBoundary map[int]mesh.BoundaryID

	// incidence maps vertex index x cell index to 1 where the cell
	// uses the vertex.
	incidence *sparse.CSR
}

// New returns an empty Triangulation of the given dimension embedded
// in spacedim dimensional space.
func New(dim, spacedim int) (*Triangulation, error) {
	if dim < 1 || dim > 3 || spacedim < dim || spacedim > 3 {
		return nil, fmt.Errorf("unsupported dimension pair dim=%d, spacedim=%d", dim, spacedim)
	}
	return &Triangulation{Dim: dim, SpaceDim: spacedim}, nil
}

// Construct checks the incoming grid and stores it. It expects the
// readers' canonical form: compacted vertices, positively oriented
// cells, lexicographic vertex ordering.
func (t *Triangulation) Construct(vertices [][]float64, cells []mesh.CellData, sub mesh.SubCellData) error {
	if len(cells) == 0 {
		return fmt.Errorf("triangulation needs at least one cell")
	}
	nvc := mesh.VerticesPerCell(t.Dim)
	for i, c := range cells {
		if len(c.Vertices) != nvc {
			return fmt.Errorf("cell %d has %d vertices, expected %d", i, len(c.Vertices), nvc)
		}
		for _, v := range c.Vertices {
			if v < 0 || v >= len(vertices) {
				return fmt.Errorf("cell %d refers to vertex %d, but only %d vertices exist",
					i, v, len(vertices))
			}
		}
	}
	for _, p := range vertices {
		if len(p) != t.SpaceDim {
			return fmt.Errorf("vertex has %d coordinates, expected %d", len(p), t.SpaceDim)
		}
	}

	dok := sparse.NewDOK(len(vertices), len(cells))
	for c := range cells {
		for _, v := range cells[c].Vertices {
			dok.Set(v, c, 1)
		}
	}
	csr := dok.ToCSR()

	check := func(kind string, idx int, entity mesh.BoundaryData) error {
		if cell := findFace(csr, cells, entity.Vertices, t.Dim); cell < 0 {
			return fmt.Errorf("boundary %s %d with vertices %v is not a face of any cell",
				kind, idx, entity.Vertices)
		}
		return nil
	}
	for i, l := range sub.BoundaryLines {
		if t.Dim >= 2 {
			if err := check("line", i, l); err != nil {
				return err
			}
		}
	}
	for i, q := range sub.BoundaryQuads {
		if err := check("quad", i, q); err != nil {
			return err
		}
	}

	t.Vertices = vertices
	t.Cells = cells
	t.Sub = sub
	t.incidence = csr
	return nil
}

// findFace locates a cell of which the given vertex set forms a face.
// In 3d a boundary line is matched against cell edges instead of
// faces. Returns -1 when no cell matches.
func findFace(incidence *sparse.CSR, cells []mesh.CellData, verts []int, dim int) int {
	target := sortedCopy(verts)
	found := -1
	incidence.DoRowNonZero(verts[0], func(_, c int, _ float64) {
		if found >= 0 {
			return
		}
		// All vertices of the entity must belong to this cell.
		for _, v := range verts[1:] {
			if incidence.At(v, c) == 0 {
				return
			}
		}
		cv := cells[c].Vertices
		if dim == 3 && len(verts) == 2 {
			if edgeOfHex(cv, target) {
				found = c
			}
			return
		}
		for f := 0; f < FacesPerCell(dim); f++ {
			if sameSet(target, sortedCopy(faceVertices(cv, dim, f))) {
				found = c
				return
			}
		}
	})
	return found
}

var hexEdges = [12][2]int{
	{0, 1}, {2, 3}, {4, 5}, {6, 7},
	{0, 2}, {1, 3}, {4, 6}, {5, 7},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

func edgeOfHex(cellVerts []int, target []int) bool {
	for _, e := range hexEdges {
		pair := []int{cellVerts[e[0]], cellVerts[e[1]]}
		if sameSet(target, sortedCopy(pair)) {
			return true
		}
	}
	return false
}

func faceVertices(cellVerts []int, dim, face int) []int {
	switch dim {
	case 1:
		return []int{cellVerts[lineFaces[face][0]]}
	case 2:
		f := quadFaces[face]
		return []int{cellVerts[f[0]], cellVerts[f[1]]}
	default:
		f := hexFaces[face]
		return []int{cellVerts[f[0]], cellVerts[f[1]], cellVerts[f[2]], cellVerts[f[3]]}
	}
}

func sortedCopy(v []int) []int {
	s := append([]int(nil), v...)
	sort.Ints(s)
	return s
}

func sameSet(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// SetVertexBoundaryIDs attaches boundary ids to single vertices of a
// 1d triangulation. Each vertex must be used by exactly one cell,
// i.e. actually sit on the boundary.
func (t *Triangulation) SetVertexBoundaryIDs(ids map[int]mesh.BoundaryID) error {
	if t.Dim != 1 {
		return fmt.Errorf("vertex boundary ids only apply to 1d triangulations")
	}
	if t.incidence == nil {
		return fmt.Errorf("triangulation has not been constructed yet")
	}
	for v, id := range ids {
		if v < 0 || v >= len(t.Vertices) {
			return fmt.Errorf("vertex %d out of range", v)
		}
		n := 0
		t.incidence.DoRowNonZero(v, func(_, _ int, _ float64) { n++ })
		if n != 1 {
			return fmt.Errorf("vertex %d carries boundary id %d but is used by %d cells, so it is not at the boundary",
				v, id, n)
		}
	}
	if t.vertexBoundary == nil {
		t.vertexBoundary = make(map[int]mesh.BoundaryID)
	}
	for v, id := range ids {
		t.vertexBoundary[v] = id
	}
	return nil
}

// VertexBoundaryID returns the boundary id attached to a vertex of a
// 1d triangulation, or ok=false if none was set.
func (t *Triangulation) VertexBoundaryID(v int) (mesh.BoundaryID, bool) {
	id, ok := t.vertexBoundary[v]
	return id, ok
}

// NVertices returns the number of vertices.
func (t *Triangulation) NVertices() int { return len(t.Vertices) }

// NCells returns the number of cells.
func (t *Triangulation) NCells() int { return len(t.Cells) }

// NBoundaryEntities returns the count of boundary lines and quads.
func (t *Triangulation) NBoundaryEntities() int {
	return len(t.Sub.BoundaryLines) + len(t.Sub.BoundaryQuads)
}

// CellsAtVertex returns the indices of all cells using vertex v.
func (t *Triangulation) CellsAtVertex(v int) []int {
	var out []int
	if t.incidence == nil || v < 0 || v >= len(t.Vertices) {
		return out
	}
	t.incidence.DoRowNonZero(v, func(_, c int, _ float64) {
		out = append(out, c)
	})
	sort.Ints(out)
	return out
}

// PrintStatistics writes a short summary of the grid.
func (t *Triangulation) PrintStatistics(w io.Writer) {
	fmt.Fprintf(w, "Dimension         : %d (embedded in %d)\n", t.Dim, t.SpaceDim)
	fmt.Fprintf(w, "Number of vertices: %d\n", t.NVertices())
	fmt.Fprintf(w, "Number of cells   : %d\n", t.NCells())
	fmt.Fprintf(w, "Boundary entities : %d\n", t.NBoundaryEntities())
	materials := make(map[mesh.MaterialID]int)
	for _, c := range t.Cells {
		materials[c.MaterialID]++
	}
	ids := make([]int, 0, len(materials))
	for id := range materials {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	for _, id := range ids {
		fmt.Fprintf(w, "Material %3d      : %d cells\n", id, materials[mesh.MaterialID(id)])
	}
}
