package mesh

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// DefaultMergeTolerance is the coordinate tolerance below which two
// vertices are considered the same point.
const DefaultMergeTolerance = 1e-12

// DeleteUnusedVertices removes vertices that no cell or boundary
// entity refers to and renumbers the remaining ones, rewriting the
// vertex indices stored in cells and sub. It returns the compacted
// vertex array.
func DeleteUnusedVertices(vertices [][]float64, cells []CellData, sub *SubCellData) ([][]float64, error) {
	used := make([]bool, len(vertices))
	mark := func(what string, idx []int) error {
		for _, v := range idx {
			if v < 0 || v >= len(vertices) {
				return fmt.Errorf("%s refers to vertex %d, but only %d vertices exist",
					what, v, len(vertices))
			}
			used[v] = true
		}
		return nil
	}
	for i := range cells {
		if err := mark(fmt.Sprintf("cell %d", i), cells[i].Vertices); err != nil {
			return nil, err
		}
	}
	for i := range sub.BoundaryLines {
		if err := mark(fmt.Sprintf("boundary line %d", i), sub.BoundaryLines[i].Vertices); err != nil {
			return nil, err
		}
	}
	for i := range sub.BoundaryQuads {
		if err := mark(fmt.Sprintf("boundary quad %d", i), sub.BoundaryQuads[i].Vertices); err != nil {
			return nil, err
		}
	}

	newIndex := make([]int, len(vertices))
	kept := make([][]float64, 0, len(vertices))
	for i := range vertices {
		if used[i] {
			newIndex[i] = len(kept)
			kept = append(kept, vertices[i])
		}
	}
	renumber := func(idx []int) {
		for k, v := range idx {
			idx[k] = newIndex[v]
		}
	}
	for i := range cells {
		renumber(cells[i].Vertices)
	}
	for i := range sub.BoundaryLines {
		renumber(sub.BoundaryLines[i].Vertices)
	}
	for i := range sub.BoundaryQuads {
		renumber(sub.BoundaryQuads[i].Vertices)
	}
	return kept, nil
}

// DeleteDuplicatedVertices redirects references to vertices that
// coincide within tol onto a single representative and then drops the
// now unused copies. Only the vertices listed in considered are
// candidates for merging; a nil or empty list means all of them.
func DeleteDuplicatedVertices(vertices [][]float64, cells []CellData, sub *SubCellData,
	considered []int, tol float64) ([][]float64, error) {
	if len(vertices) == 0 {
		return vertices, nil
	}
	if considered == nil {
		considered = make([]int, len(vertices))
		for i := range considered {
			considered[i] = i
		}
	}
	spacedim := len(vertices[0])

	// Sort candidates along the coordinate direction of largest
	// extent so that coincident vertices end up adjacent and the
	// pairwise scan stays short.
	longest := 0
	if len(considered) > 1 {
		col := make([]float64, len(considered))
		maxExtent := math.Inf(-1)
		for d := 0; d < spacedim; d++ {
			for k, v := range considered {
				col[k] = vertices[v][d]
			}
			if ext := floats.Max(col) - floats.Min(col); ext > maxExtent {
				maxExtent = ext
				longest = d
			}
		}
	}
	sorted := append([]int(nil), considered...)
	sort.Slice(sorted, func(a, b int) bool {
		return vertices[sorted[a]][longest] < vertices[sorted[b]][longest]
	})

	redirect := make([]int, len(vertices))
	for i := range redirect {
		redirect[i] = i
	}
	for i := 0; i < len(sorted); i++ {
		vi := sorted[i]
		if redirect[vi] != vi {
			continue
		}
		for j := i + 1; j < len(sorted); j++ {
			vj := sorted[j]
			if vertices[vj][longest]-vertices[vi][longest] > tol {
				break
			}
			equal := true
			for d := 0; d < spacedim; d++ {
				if math.Abs(vertices[vi][d]-vertices[vj][d]) > tol {
					equal = false
					break
				}
			}
			if equal {
				redirect[vj] = vi
			}
		}
	}

	apply := func(idx []int) {
		for k, v := range idx {
			idx[k] = redirect[v]
		}
	}
	for i := range cells {
		apply(cells[i].Vertices)
	}
	for i := range sub.BoundaryLines {
		apply(sub.BoundaryLines[i].Vertices)
	}
	for i := range sub.BoundaryQuads {
		apply(sub.BoundaryQuads[i].Vertices)
	}
	return DeleteUnusedVertices(vertices, cells, sub)
}

// MergeDuplicateVertices repeats the duplicate merge until the vertex
// count no longer shrinks. Importers that concatenate per-part vertex
// arrays can produce chains of near-coincident points that a single
// pass does not collapse.
func MergeDuplicateVertices(vertices [][]float64, cells []CellData, sub *SubCellData,
	tol float64) ([][]float64, error) {
	for {
		before := len(vertices)
		var err error
		vertices, err = DeleteDuplicatedVertices(vertices, cells, sub, nil, tol)
		if err != nil {
			return nil, err
		}
		if len(vertices) == before {
			return vertices, nil
		}
	}
}

// hexTets decomposes a hexahedron given in vertex ordering
// (bottom face counterclockwise, then top face) into five tetrahedra
// whose signed volumes sum to the cell volume.
var hexTets = [5][4]int{
	{0, 1, 2, 5},
	{0, 2, 3, 7},
	{0, 5, 7, 4},
	{2, 7, 5, 6},
	{0, 5, 2, 7},
}

// CellMeasure returns the signed length, area or volume of a cell
// whose vertices are given in file ordering (counterclockwise faces).
// A negative value indicates an inverted cell.
func CellMeasure(vertices [][]float64, cell []int, dim int) float64 {
	switch dim {
	case 1:
		return vertices[cell[1]][0] - vertices[cell[0]][0]
	case 2:
		// Shoelace formula over the quadrilateral contour.
		var area float64
		for i := 0; i < 4; i++ {
			a, b := vertices[cell[i]], vertices[cell[(i+1)%4]]
			area += a[0]*b[1] - b[0]*a[1]
		}
		return area / 2
	case 3:
		var vol float64
		for _, t := range hexTets {
			vol += tetVolume(vertices[cell[t[0]]], vertices[cell[t[1]]],
				vertices[cell[t[2]]], vertices[cell[t[3]]])
		}
		return vol
	}
	return 0
}

func tetVolume(p0, p1, p2, p3 []float64) float64 {
	var a, b, c [3]float64
	for d := 0; d < 3; d++ {
		a[d] = p1[d] - p0[d]
		b[d] = p2[d] - p0[d]
		c[d] = p3[d] - p0[d]
	}
	det := a[0]*(b[1]*c[2]-b[2]*c[1]) -
		a[1]*(b[0]*c[2]-b[2]*c[0]) +
		a[2]*(b[0]*c[1]-b[1]*c[0])
	return det / 6
}

// InvertCellsOfNegativeGrid flips every cell with negative measure:
// lines swap their endpoints, quadrilaterals swap the second and
// fourth vertex, hexahedra exchange bottom and top face. A cell that
// is still degenerate or inverted afterwards is an error. Orientation
// is only meaningful when the mesh is not embedded in a higher
// dimensional space, so dim must equal the space dimension.
func InvertCellsOfNegativeGrid(vertices [][]float64, cells []CellData, dim int) error {
	for i := range cells {
		if CellMeasure(vertices, cells[i].Vertices, dim) >= 0 {
			continue
		}
		v := cells[i].Vertices
		switch dim {
		case 1:
			v[0], v[1] = v[1], v[0]
		case 2:
			v[1], v[3] = v[3], v[1]
		case 3:
			for k := 0; k < 4; k++ {
				v[k], v[k+4] = v[k+4], v[k]
			}
		}
		if CellMeasure(vertices, v, dim) < 0 {
			return fmt.Errorf("cell %d has negative measure and cannot be repaired by reorientation", i)
		}
	}
	return nil
}

// Vertex index permutations translating the file ordering
// (counterclockwise faces, bottom-then-top) into canonical
// lexicographic ordering.
var (
	quadCanonical = [4]int{0, 1, 3, 2}
	hexCanonical  = [8]int{0, 1, 3, 2, 4, 5, 7, 6}
)

// ReorderToCanonical permutes the vertices of every cell and every
// boundary quad from file ordering into canonical lexicographic
// ordering. Lines are identical in both conventions.
func ReorderToCanonical(cells []CellData, sub *SubCellData, dim int) {
	if dim < 2 {
		return
	}
	permuteQuad := func(v []int) {
		var tmp [4]int
		for i := 0; i < 4; i++ {
			tmp[i] = v[quadCanonical[i]]
		}
		copy(v, tmp[:])
	}
	permuteHex := func(v []int) {
		var tmp [8]int
		for i := 0; i < 8; i++ {
			tmp[i] = v[hexCanonical[i]]
		}
		copy(v, tmp[:])
	}
	for i := range cells {
		if dim == 2 {
			permuteQuad(cells[i].Vertices)
		} else {
			permuteHex(cells[i].Vertices)
		}
	}
	if dim == 3 {
		for i := range sub.BoundaryQuads {
			permuteQuad(sub.BoundaryQuads[i].Vertices)
		}
	}
}
