package readers

import (
	"fmt"
	"io"
	"strings"

	"github.com/fempack/gridio/mesh"
)

// readVTK parses legacy ASCII VTK unstructured grid files. Only the
// DATASET UNSTRUCTURED_GRID variant is supported, with lines, quads
// and hexahedra as geometric entities. Optional CELL_DATA sections
// named MaterialID and ManifoldID are honored.
func (g *GridIn) readVTK(tr *tokenReader) error {
	// The second header line is free text, the others are fixed.
	for i, want := range []string{"# vtk DataFile Version 3.0", "", "ASCII", "DATASET UNSTRUCTURED_GRID"} {
		line, err := tr.Line()
		if err != nil {
			return err
		}
		if want == "" {
			continue
		}
		if strings.TrimSpace(line) != want {
			return fmt.Errorf("while reading VTK file: line %d should read <%s>, found <%s>",
				i+1, want, strings.TrimSpace(line))
		}
	}
	if err := tr.skipEmptyLines(); err != nil {
		return err
	}

	keyword, err := tr.Token()
	if err != nil {
		return err
	}
	if keyword != "POINTS" {
		return fmt.Errorf("while reading VTK file: expected POINTS, found <%s>", keyword)
	}
	nVertices, err := tr.Int()
	if err != nil {
		return err
	}
	// Data type of the coordinates, ignored.
	if _, err := tr.Token(); err != nil {
		return err
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

	keyword, err = tr.Token()
	if err != nil {
		return err
	}
	if keyword != "CELLS" {
		return fmt.Errorf("while reading VTK file: expected CELLS, found <%s>", keyword)
	}
	nGeom, err := tr.Int()
	if err != nil {
		return err
	}
	// Total integer count of the section, ignored.
	if _, err := tr.Int(); err != nil {
		return err
	}

	var cells []mesh.CellData
	var sub mesh.SubCellData
	readIndices := func(dst []int) error {
		for i := range dst {
			v, err := tr.Int()
			if err != nil {
				return err
			}
			if v < 0 || v >= nVertices {
				return fmt.Errorf("invalid vertex index %d, only %d vertices in the file", v, nVertices)
			}
			dst[i] = v
		}
		return nil
	}

	for e := 0; e < nGeom; e++ {
		count, err := tr.Int()
		if err != nil {
			return err
		}
		switch {
		case count == mesh.VerticesPerCell(g.Dim):
			if len(sub.BoundaryLines) > 0 || len(sub.BoundaryQuads) > 0 {
				return fmt.Errorf("while reading VTK file: faces or lines listed before all cells; this is not supported")
			}
			cell := mesh.NewCellData(g.Dim)
			if err := readIndices(cell.Vertices); err != nil {
				return err
			}
			cells = append(cells, cell)

		case g.Dim == 3 && count == 4:
			if len(sub.BoundaryLines) > 0 {
				return fmt.Errorf("while reading VTK file: lines listed before all quads; this is not supported")
			}
			quad := mesh.NewBoundaryQuad()
			if err := readIndices(quad.Vertices); err != nil {
				return err
			}
			sub.BoundaryQuads = append(sub.BoundaryQuads, quad)

		case g.Dim >= 2 && count == 2:
			line := mesh.NewBoundaryLine()
			if err := readIndices(line.Vertices); err != nil {
				return err
			}
			sub.BoundaryLines = append(sub.BoundaryLines, line)

		default:
			return fmt.Errorf("while reading VTK file: entity %d has %d vertices, which matches no supported cell type in %dd",
				e, count, g.Dim)
		}
	}

	keyword, err = tr.Token()
	if err != nil {
		return err
	}
	if keyword != "CELL_TYPES" {
		return fmt.Errorf("while reading VTK file: expected CELL_TYPES, found <%s>", keyword)
	}
	nTypes, err := tr.Int()
	if err != nil {
		return err
	}
	if nTypes != nGeom {
		return fmt.Errorf("while reading VTK file: CELL_TYPES lists %d entries, but CELLS listed %d", nTypes, nGeom)
	}
	// The type codes repeat what the vertex counts already told us.
	for i := 0; i < nTypes; i++ {
		if _, err := tr.Int(); err != nil {
			return err
		}
	}

	if err := g.readVTKCellData(tr, cells, &sub, nGeom); err != nil {
		return err
	}
	return g.finish(vertices, cells, sub, finishOptions{invert: true})
}

// readVTKCellData scans for an optional CELL_DATA section and applies
// SCALARS fields named MaterialID or ManifoldID to cells first, then
// boundary quads, then boundary lines, in the order the geometric
// entities appeared in the file. Other fields are skipped.
func (g *GridIn) readVTKCellData(tr *tokenReader, cells []mesh.CellData, sub *mesh.SubCellData, nGeom int) error {
	keyword, err := tr.Token()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return err
	}
	if keyword != "CELL_DATA" {
		// Point data or other trailing sections, nothing to do.
		tr.Unread(keyword)
		return nil
	}
	n, err := tr.Int()
	if err != nil {
		return err
	}
	if n != nGeom {
		return fmt.Errorf("while reading VTK file: CELL_DATA lists %d entries, but the file has %d cells and boundary entities", n, nGeom)
	}

	for {
		keyword, err := tr.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if keyword != "SCALARS" {
			continue
		}
		name, err := tr.Token()
		if err != nil {
			return err
		}
		if name != "MaterialID" && name != "ManifoldID" {
			continue
		}
		// Data type, possibly followed by a component count.
		if err := tr.restOfLine(); err != nil {
			return err
		}
		keyword, err = tr.Token()
		if err != nil {
			return err
		}
		if keyword != "LOOKUP_TABLE" {
			return fmt.Errorf("while reading VTK file: expected LOOKUP_TABLE after SCALARS %s, found <%s>", name, keyword)
		}
		if tbl, err := tr.Token(); err != nil {
			return err
		} else if tbl != "default" {
			return fmt.Errorf("while reading VTK file: only the default lookup table is supported, found <%s>", tbl)
		}

		if err := applyVTKScalars(tr, name, cells, sub); err != nil {
			return err
		}
	}
}

func applyVTKScalars(tr *tokenReader, name string, cells []mesh.CellData, sub *mesh.SubCellData) error {
	next := func() (int, error) {
		f, err := tr.Float()
		if err != nil {
			return 0, err
		}
		return int(f), nil
	}
	for i := range cells {
		id, err := next()
		if err != nil {
			return err
		}
		if name == "MaterialID" {
			material, err := mesh.CheckMaterialID(id)
			if err != nil {
				return fmt.Errorf("cell %d: %w", i, err)
			}
			cells[i].MaterialID = material
		} else {
			cells[i].ManifoldID = mesh.ManifoldID(id)
		}
	}
	setBoundary := func(b *mesh.BoundaryData) error {
		id, err := next()
		if err != nil {
			return err
		}
		if name == "MaterialID" {
			bid, err := mesh.CheckBoundaryID(id)
			if err != nil {
				return err
			}
			b.BoundaryID = bid
		} else {
			b.ManifoldID = mesh.ManifoldID(id)
		}
		return nil
	}
	for i := range sub.BoundaryQuads {
		if err := setBoundary(&sub.BoundaryQuads[i]); err != nil {
			return err
		}
	}
	for i := range sub.BoundaryLines {
		if err := setBoundary(&sub.BoundaryLines[i]); err != nil {
			return err
		}
	}
	return nil
}
