package readers

import (
	"fmt"
	"io"

	"github.com/fempack/gridio/mesh"
)

// I-DEAS universal file dataset numbers.
const (
	unvNodes       = 2411
	unvElements    = 2412
	unvGroupsOld   = 2467
	unvGroupsNew   = 2477
	unvBeam        = 11
	unvQuad        = 44
	unvThinShell   = 94
	unvHexahedron  = 115
	unvDelimiterID = -1
)

// readUNV parses I-DEAS universal files. The reader expects a node
// section (2411) followed by an element section (2412) and an
// optional group section (2467 or 2477) that attaches indicators to
// cells and boundary entities.
func (g *GridIn) readUNV(tr *tokenReader) error {
	if err := tr.skipCommentLines('#'); err != nil {
		return err
	}

	// Opening delimiter and dataset number of the node section.
	if _, err := tr.Int(); err != nil {
		return err
	}
	section, err := tr.Int()
	if err != nil {
		return err
	}
	if section != unvNodes {
		return fmt.Errorf("while reading UNV file: expected dataset %d, found %d", unvNodes, section)
	}

	var vertices [][]float64
	vertexIndices := make(map[int]int)
	for {
		no, err := tr.Int()
		if err != nil {
			return err
		}
		if no == unvDelimiterID {
			break
		}
		// Coordinate system and displacement records, unused.
		for i := 0; i < 3; i++ {
			if _, err := tr.Int(); err != nil {
				return err
			}
		}
		var xyz [3]float64
		for d := 0; d < 3; d++ {
			if xyz[d], err = tr.Float(); err != nil {
				return err
			}
		}
		vertexIndices[no] = len(vertices)
		vertices = append(vertices, append([]float64(nil), xyz[:g.SpaceDim]...))
	}

	if _, err := tr.Int(); err != nil {
		return err
	}
	if section, err = tr.Int(); err != nil {
		return err
	}
	if section != unvElements {
		return fmt.Errorf("while reading UNV file: expected dataset %d, found %d", unvElements, section)
	}

	lookup := func(element, no int) (int, error) {
		idx, ok := vertexIndices[no]
		if !ok {
			return 0, fmt.Errorf("element %d refers to vertex %d, which does not exist in the file", element, no)
		}
		return idx, nil
	}

	var cells []mesh.CellData
	var sub mesh.SubCellData
	// Maps from file element numbers to positions in cells and sub,
	// needed to apply group indicators later.
	cellIndices := make(map[int]int)
	lineIndices := make(map[int]int)
	quadIndices := make(map[int]int)

	for {
		no, err := tr.Int()
		if err != nil {
			return err
		}
		if no == unvDelimiterID {
			break
		}
		elType, err := tr.Int()
		if err != nil {
			return err
		}
		switch elType {
		case unvBeam, unvQuad, unvThinShell, unvHexahedron:
		default:
			return fmt.Errorf("while reading UNV file: unknown element type %d", elType)
		}
		// Physical and material property, color, node count.
		for i := 0; i < 4; i++ {
			if _, err := tr.Int(); err != nil {
				return err
			}
		}

		readInto := func(dst []int) error {
			for i := range dst {
				v, err := tr.Int()
				if err != nil {
					return err
				}
				if dst[i], err = lookup(no, v); err != nil {
					return err
				}
			}
			return nil
		}

		switch {
		case elType == unvBeam && g.Dim == 1:
			// Beam records carry an extra orientation line.
			for i := 0; i < 3; i++ {
				if _, err := tr.Int(); err != nil {
					return err
				}
			}
			cell := mesh.NewCellData(1)
			if err := readInto(cell.Vertices); err != nil {
				return err
			}
			cellIndices[no] = len(cells)
			cells = append(cells, cell)

		case elType == unvBeam:
			for i := 0; i < 3; i++ {
				if _, err := tr.Int(); err != nil {
					return err
				}
			}
			line := mesh.NewBoundaryLine()
			if err := readInto(line.Vertices); err != nil {
				return err
			}
			lineIndices[no] = len(sub.BoundaryLines)
			sub.BoundaryLines = append(sub.BoundaryLines, line)

		case (elType == unvQuad || elType == unvThinShell) && g.Dim == 2:
			cell := mesh.NewCellData(2)
			if err := readInto(cell.Vertices); err != nil {
				return err
			}
			cellIndices[no] = len(cells)
			cells = append(cells, cell)

		case (elType == unvQuad || elType == unvThinShell) && g.Dim == 3:
			quad := mesh.NewBoundaryQuad()
			if err := readInto(quad.Vertices); err != nil {
				return err
			}
			quadIndices[no] = len(sub.BoundaryQuads)
			sub.BoundaryQuads = append(sub.BoundaryQuads, quad)

		case elType == unvHexahedron && g.Dim == 3:
			cell := mesh.NewCellData(3)
			if err := readInto(cell.Vertices); err != nil {
				return err
			}
			cellIndices[no] = len(cells)
			cells = append(cells, cell)

		default:
			return fmt.Errorf("while reading UNV file: element %d has type %d, which is not usable in %dd",
				no, elType, g.Dim)
		}
	}

	// An optional group section follows. Plain meshes end here.
	if _, err := tr.Int(); err == io.EOF {
		return g.finish(vertices, cells, sub, finishOptions{invert: true})
	} else if err != nil {
		return err
	}
	if section, err = tr.Int(); err != nil {
		return err
	}
	if section != unvGroupsOld && section != unvGroupsNew {
		return fmt.Errorf("while reading UNV file: unknown section type %d", section)
	}
	if err := applyUNVGroups(tr, cells, &sub, cellIndices, lineIndices, quadIndices); err != nil {
		return err
	}

	return g.finish(vertices, cells, sub, finishOptions{invert: true})
}

// applyUNVGroups reads dataset 2467/2477 and stamps the group number
// onto the member entities: material ids for cells, boundary ids for
// lines and quads.
func applyUNVGroups(tr *tokenReader, cells []mesh.CellData, sub *mesh.SubCellData,
	cellIndices, lineIndices, quadIndices map[int]int) error {
	for {
		first, err := tr.Int()
		if err != nil {
			return err
		}
		if first == unvDelimiterID {
			return nil
		}
		// Seven reference values precede the entity count.
		for i := 0; i < 6; i++ {
			if _, err := tr.Int(); err != nil {
				return err
			}
		}
		nEntities, err := tr.Int()
		if err != nil {
			return err
		}
		id, err := tr.Int()
		if err != nil {
			return err
		}

		material, merr := mesh.CheckMaterialID(id)
		boundary, berr := mesh.CheckBoundaryID(id)

		for read := 0; read < nEntities; read++ {
			// Entity records come as (type, tag, node, node) tuples,
			// two per line; only the tag matters.
			if _, err := tr.Int(); err != nil {
				return err
			}
			no, err := tr.Int()
			if err != nil {
				return err
			}
			for i := 0; i < 2; i++ {
				if _, err := tr.Int(); err != nil {
					return err
				}
			}

			// Groups over other entity kinds, node groups in
			// particular, are skipped.
			switch {
			case existsAt(cellIndices, no):
				if merr != nil {
					return fmt.Errorf("group %d: %w", id, merr)
				}
				cells[cellIndices[no]].MaterialID = material
			case existsAt(lineIndices, no):
				if berr != nil {
					return fmt.Errorf("group %d: %w", id, berr)
				}
				sub.BoundaryLines[lineIndices[no]].BoundaryID = boundary
			case existsAt(quadIndices, no):
				if berr != nil {
					return fmt.Errorf("group %d: %w", id, berr)
				}
				sub.BoundaryQuads[quadIndices[no]].BoundaryID = boundary
			}
		}
	}
}

func existsAt(m map[int]int, key int) bool {
	_, ok := m[key]
	return ok
}
