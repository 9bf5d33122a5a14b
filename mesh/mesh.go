// Package mesh holds the raw mesh description produced by the file
// readers and the cleanup passes that bring it into canonical form
// before it is handed to a Sink.
package mesh

import "fmt"

// MaterialID labels a cell with the material it is made of. The full
// uint8 range is usable except for the topmost value, which is
// reserved as "invalid".
type MaterialID uint8

// BoundaryID labels a boundary face. The topmost value is reserved
// for faces interior to the domain.
type BoundaryID uint8

// ManifoldID labels the geometry description an entity is attached
// to. The topmost value means "no manifold", i.e. flat.
type ManifoldID uint32

const (
	// InvalidMaterialID is never a valid cell material.
	InvalidMaterialID MaterialID = 0xff
	// InternalBoundaryID marks faces that are not on the domain boundary.
	InternalBoundaryID BoundaryID = 0xff
	// FlatManifoldID means no curved geometry is attached.
	FlatManifoldID ManifoldID = 0xffffffff
)

// VerticesPerCell returns the number of vertices of a cell in dim
// dimensions (line, quadrilateral, hexahedron).
func VerticesPerCell(dim int) int {
	return 1 << uint(dim)
}

// VerticesPerFace returns the number of vertices of a cell face in
// dim dimensions.
func VerticesPerFace(dim int) int {
	return 1 << uint(dim-1)
}

// CheckMaterialID converts a raw integer read from a file into a
// MaterialID, rejecting values outside the representable range.
func CheckMaterialID(id int) (MaterialID, error) {
	if id < 0 || id >= int(InvalidMaterialID) {
		return 0, fmt.Errorf("material id %d out of range [0, %d)", id, InvalidMaterialID)
	}
	return MaterialID(id), nil
}

// CheckBoundaryID converts a raw integer read from a file into a
// BoundaryID, rejecting values outside the representable range.
func CheckBoundaryID(id int) (BoundaryID, error) {
	if id < 0 || id >= int(InternalBoundaryID) {
		return 0, fmt.Errorf("boundary id %d out of range [0, %d)", id, InternalBoundaryID)
	}
	return BoundaryID(id), nil
}

// CellData describes one cell by the indices of its vertices in the
// accompanying vertex array, plus its material and manifold labels.
type CellData struct {
	Vertices   []int
	MaterialID MaterialID
	ManifoldID ManifoldID
}

// NewCellData returns a CellData with the right number of vertex
// slots for dim and a flat manifold.
func NewCellData(dim int) CellData {
	return CellData{
		Vertices:   make([]int, VerticesPerCell(dim)),
		ManifoldID: FlatManifoldID,
	}
}

// BoundaryData describes a line or quadrilateral on the boundary of
// the domain, used to attach boundary and manifold ids to cell faces.
type BoundaryData struct {
	Vertices   []int
	BoundaryID BoundaryID
	ManifoldID ManifoldID
}

// NewBoundaryLine returns a boundary line with default ids.
func NewBoundaryLine() BoundaryData {
	return BoundaryData{Vertices: make([]int, 2), ManifoldID: FlatManifoldID}
}

// NewBoundaryQuad returns a boundary quadrilateral with default ids.
func NewBoundaryQuad() BoundaryData {
	return BoundaryData{Vertices: make([]int, 4), ManifoldID: FlatManifoldID}
}

// SubCellData collects the boundary entities of lower dimension than
// the cells: lines in 2D and 3D, quadrilaterals in 3D only.
type SubCellData struct {
	BoundaryLines []BoundaryData
	BoundaryQuads []BoundaryData
}

// CheckConsistency verifies that the kinds of boundary entities
// present are admissible for a mesh of the given dimension.
func (s *SubCellData) CheckConsistency(dim int) error {
	switch dim {
	case 1:
		if len(s.BoundaryLines) > 0 || len(s.BoundaryQuads) > 0 {
			return fmt.Errorf("1d meshes cannot carry boundary lines or quads")
		}
	case 2:
		if len(s.BoundaryQuads) > 0 {
			return fmt.Errorf("2d meshes cannot carry boundary quads")
		}
	}
	return nil
}

// Sink receives a fully canonicalized mesh. Construct is called
// exactly once per read with vertices compacted, cells positively
// oriented and vertex orderings in canonical form.
type Sink interface {
	Construct(vertices [][]float64, cells []CellData, sub SubCellData) error
}

// VertexBoundarySetter is implemented by sinks that can attach
// boundary ids to single vertices. Only meaningful for 1d meshes,
// where the boundary consists of points.
type VertexBoundarySetter interface {
	SetVertexBoundaryIDs(ids map[int]BoundaryID) error
}
