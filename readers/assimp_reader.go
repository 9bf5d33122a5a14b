package readers

import (
	"errors"
	"fmt"
)

// ErrNoAssimpSupport is returned by ReadAssimpFile when the library
// was built without the Assimp importer.
var ErrNoAssimpSupport = errors.New("this library was built without support for the Assimp importer, " +
	"so meshes in CAD exchange formats cannot be read")

// AssimpOptions controls the Assimp based importer.
type AssimpOptions struct {
	// MeshIndex selects a single mesh from the scene; a negative
	// value merges all meshes into one grid.
	MeshIndex int
	// RemoveDuplicates merges vertices closer than Tolerance. The
	// merge runs repeatedly until the vertex count is stable, since
	// per-part vertex arrays are simply concatenated on import.
	RemoveDuplicates bool
	Tolerance        float64
	// IgnoreUnsupportedTypes drops triangles and tetrahedra instead
	// of failing on them.
	IgnoreUnsupportedTypes bool
}

// ReadAssimpFile imports a mesh through the Assimp library. There is
// no stream based variant since Assimp needs the file name to select
// an importer. The current build has no Assimp backend and always
// returns ErrNoAssimpSupport.
func (g *GridIn) ReadAssimpFile(filename string, opt AssimpOptions) error {
	if g.sink == nil {
		return fmt.Errorf("no triangulation attached, call AttachSink first")
	}
	_ = filename
	_ = opt
	return ErrNoAssimpSupport
}
