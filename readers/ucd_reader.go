package readers

import (
	"fmt"

	"github.com/fempack/gridio/mesh"
)

// readUCD parses the AVS UCD ASCII format. Vertex numbers in the file
// need not be consecutive; a translation table maps them to dense
// indices. Comment lines start with '#'.
func (g *GridIn) readUCD(tr *tokenReader) error {
	if err := tr.skipCommentLines('#'); err != nil {
		return err
	}

	nVertices, err := tr.Int()
	if err != nil {
		return err
	}
	nCells, err := tr.Int()
	if err != nil {
		return err
	}
	// Numbers of vertex data sets, cell data sets and model data,
	// all unused here.
	for i := 0; i < 3; i++ {
		if _, err := tr.Int(); err != nil {
			return err
		}
	}

	vertices := make([][]float64, nVertices)
	vertexIndices := make(map[int]int, nVertices)
	for v := 0; v < nVertices; v++ {
		no, err := tr.Int()
		if err != nil {
			return err
		}
		var xyz [3]float64
		for d := 0; d < 3; d++ {
			if xyz[d], err = tr.Float(); err != nil {
				return err
			}
		}
		vertices[v] = append([]float64(nil), xyz[:g.SpaceDim]...)
		vertexIndices[no] = v
	}

	lookup := func(cellNo, fileNo int) (int, error) {
		idx, ok := vertexIndices[fileNo]
		if !ok {
			return 0, fmt.Errorf("while creating cell %d: invalid vertex index %d", cellNo, fileNo)
		}
		return idx, nil
	}

	var cells []mesh.CellData
	var sub mesh.SubCellData
	for c := 0; c < nCells; c++ {
		// Cell number, ignored.
		if _, err := tr.Int(); err != nil {
			return err
		}
		rawMaterial, err := tr.Int()
		if err != nil {
			return err
		}
		cellType, err := tr.Token()
		if err != nil {
			return err
		}

		switch {
		case (cellType == "line" && g.Dim == 1) ||
			(cellType == "quad" && g.Dim == 2) ||
			(cellType == "hex" && g.Dim == 3):
			cell := mesh.NewCellData(g.Dim)
			material, err := mesh.CheckMaterialID(rawMaterial)
			if err != nil {
				return fmt.Errorf("cell %d: %w", c, err)
			}
			cell.MaterialID = material
			if g.ApplyAllIndicatorsToManifolds {
				cell.ManifoldID = mesh.ManifoldID(rawMaterial)
			}
			for i := range cell.Vertices {
				no, err := tr.Int()
				if err != nil {
					return err
				}
				if cell.Vertices[i], err = lookup(c, no); err != nil {
					return err
				}
			}
			cells = append(cells, cell)

		case cellType == "line" && g.Dim > 1:
			line := mesh.NewBoundaryLine()
			if err := ucdBoundaryIDs(&line, rawMaterial, g.ApplyAllIndicatorsToManifolds); err != nil {
				return fmt.Errorf("boundary line in cell %d: %w", c, err)
			}
			for i := range line.Vertices {
				no, err := tr.Int()
				if err != nil {
					return err
				}
				if line.Vertices[i], err = lookup(c, no); err != nil {
					return err
				}
			}
			sub.BoundaryLines = append(sub.BoundaryLines, line)

		case cellType == "quad" && g.Dim == 3:
			quad := mesh.NewBoundaryQuad()
			if err := ucdBoundaryIDs(&quad, rawMaterial, g.ApplyAllIndicatorsToManifolds); err != nil {
				return fmt.Errorf("boundary quad in cell %d: %w", c, err)
			}
			for i := range quad.Vertices {
				no, err := tr.Int()
				if err != nil {
					return err
				}
				if quad.Vertices[i], err = lookup(c, no); err != nil {
					return err
				}
			}
			sub.BoundaryQuads = append(sub.BoundaryQuads, quad)

		default:
			return fmt.Errorf("while reading UCD cell %d: unknown identifier <%s>", c, cellType)
		}
	}

	return g.finish(vertices, cells, sub, finishOptions{invert: true})
}

// ucdBoundaryIDs distributes the single indicator of a UCD boundary
// entity over its boundary and manifold ids. With the manifold flag
// the indicator becomes a manifold id and the boundary id is left to
// be derived from the topology.
func ucdBoundaryIDs(b *mesh.BoundaryData, raw int, toManifolds bool) error {
	if toManifolds {
		if raw < 0 {
			return fmt.Errorf("indicator %d out of range", raw)
		}
		b.BoundaryID = mesh.InternalBoundaryID
		b.ManifoldID = mesh.ManifoldID(raw)
		return nil
	}
	id, err := mesh.CheckBoundaryID(raw)
	if err != nil {
		return err
	}
	b.BoundaryID = id
	b.ManifoldID = mesh.FlatManifoldID
	return nil
}
