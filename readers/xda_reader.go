package readers

import (
	"fmt"

	"github.com/fempack/gridio/mesh"
)

// Vertex order translation for hexahedra stored in libMesh files.
var xdaHexOrder = [8]int{0, 1, 5, 4, 3, 2, 6, 7}

// readXDA parses the ASCII XDA format written by libMesh. The header
// carries counts of cells and vertices; element blocks and boundary
// condition counts in between are skipped.
func (g *GridIn) readXDA(tr *tokenReader) error {
	if g.Dim != 2 && g.Dim != 3 {
		return fmt.Errorf("the XDA reader supports 2d and 3d meshes only, dim=%d was requested", g.Dim)
	}

	// Version banner.
	if _, err := tr.Line(); err != nil {
		return err
	}
	nCells, err := tr.Int()
	if err != nil {
		return err
	}
	if err := tr.restOfLine(); err != nil {
		return err
	}
	nVertices, err := tr.Int()
	if err != nil {
		return err
	}
	if err := tr.restOfLine(); err != nil {
		return err
	}
	// Sums of element weights, boundary condition counts, block
	// markers: eight lines without geometric content.
	for i := 0; i < 8; i++ {
		if _, err := tr.Line(); err != nil {
			return err
		}
	}

	cells := make([]mesh.CellData, nCells)
	for c := 0; c < nCells; c++ {
		cells[c] = mesh.NewCellData(g.Dim)
		switch g.Dim {
		case 2:
			for i := range cells[c].Vertices {
				v, err := tr.Int()
				if err != nil {
					return err
				}
				if v < 0 || v >= nVertices {
					return fmt.Errorf("while creating cell %d: invalid vertex index %d", c, v)
				}
				cells[c].Vertices[i] = v
			}
		case 3:
			var raw [8]int
			for i := range raw {
				if raw[i], err = tr.Int(); err != nil {
					return err
				}
				if raw[i] < 0 || raw[i] >= nVertices {
					return fmt.Errorf("while creating cell %d: invalid vertex index %d", c, raw[i])
				}
			}
			for i := range cells[c].Vertices {
				cells[c].Vertices[i] = raw[xdaHexOrder[i]]
			}
		}
	}

	vertices := make([][]float64, nVertices)
	for v := 0; v < nVertices; v++ {
		var xyz [3]float64
		for d := 0; d < 3; d++ {
			if xyz[d], err = tr.Float(); err != nil {
				return err
			}
		}
		vertices[v] = append([]float64(nil), xyz[:g.SpaceDim]...)
	}

	return g.finish(vertices, cells, mesh.SubCellData{}, finishOptions{invert: true})
}
