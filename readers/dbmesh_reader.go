package readers

import (
	"fmt"
	"strings"

	"github.com/fempack/gridio/mesh"
)

// readDBMesh parses the DB mesh format written by the BAMG mesh
// generator. Only 2d quadrilateral meshes are stored in this format.
func (g *GridIn) readDBMesh(tr *tokenReader) error {
	if g.Dim != 2 {
		return fmt.Errorf("the DBMESH format only stores 2d meshes, dim=%d was requested", g.Dim)
	}
	if err := tr.skipCommentLines('#'); err != nil {
		return err
	}

	expectLine := func(want string) error {
		line, err := tr.Line()
		if err != nil {
			return err
		}
		if strings.TrimSpace(line) != want {
			return fmt.Errorf("invalid DBMESH input: expected <%s>, found <%s>", want, strings.TrimSpace(line))
		}
		return nil
	}

	if err := expectLine("MeshVersionFormatted 0"); err != nil {
		return err
	}
	if err := tr.skipEmptyLines(); err != nil {
		return err
	}
	if err := expectLine("Dimension"); err != nil {
		return err
	}
	dim, err := tr.Int()
	if err != nil {
		return err
	}
	if dim != g.Dim {
		return fmt.Errorf("the DBMESH file stores dimension %d, but dimension %d was requested", dim, g.Dim)
	}

	// Everything up to the end of the header block is ignored.
	for {
		line, err := tr.Line()
		if err != nil {
			return fmt.Errorf("invalid DBMESH input: header end marker not found: %w", err)
		}
		if strings.Contains(line, "# END") {
			break
		}
	}
	if err := tr.skipEmptyLines(); err != nil {
		return err
	}

	if err := expectLine("Vertices"); err != nil {
		return err
	}
	nVertices, err := tr.Int()
	if err != nil {
		return err
	}
	vertices := make([][]float64, nVertices)
	for v := 0; v < nVertices; v++ {
		p := make([]float64, g.SpaceDim)
		for d := 0; d < g.SpaceDim; d++ {
			if p[d], err = tr.Float(); err != nil {
				return err
			}
		}
		// Vertex reference value, unused.
		if _, err = tr.Float(); err != nil {
			return err
		}
		vertices[v] = p
	}
	if err := tr.skipEmptyLines(); err != nil {
		return err
	}

	// Edge and cracked edge data carry no information we keep.
	for _, section := range []string{"Edges", "CrackedEdges"} {
		if err := expectLine(section); err != nil {
			return err
		}
		n, err := tr.Int()
		if err != nil {
			return err
		}
		for i := 0; i < 3*n; i++ {
			if _, err := tr.Int(); err != nil {
				return err
			}
		}
		if err := tr.skipEmptyLines(); err != nil {
			return err
		}
	}

	if err := expectLine("Quadrilaterals"); err != nil {
		return err
	}
	nCells, err := tr.Int()
	if err != nil {
		return err
	}
	cells := make([]mesh.CellData, nCells)
	for c := 0; c < nCells; c++ {
		cells[c] = mesh.NewCellData(2)
		for i := range cells[c].Vertices {
			v, err := tr.Int()
			if err != nil {
				return err
			}
			// Vertex numbers are 1-based.
			if v < 1 || v > nVertices {
				return fmt.Errorf("while creating cell %d: invalid vertex index %d, valid range is [1, %d]",
					c, v, nVertices)
			}
			cells[c].Vertices[i] = v - 1
		}
		// Cell reference value, unused.
		if _, err = tr.Int(); err != nil {
			return err
		}
	}
	if err := tr.skipEmptyLines(); err != nil {
		return err
	}

	for {
		line, err := tr.Line()
		if err != nil {
			return fmt.Errorf("invalid DBMESH input: end marker not found: %w", err)
		}
		if strings.Contains(line, "End") {
			break
		}
	}

	return g.finish(vertices, cells, mesh.SubCellData{}, finishOptions{invert: true})
}
