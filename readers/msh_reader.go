package readers

import (
	"fmt"
	"math"

	"github.com/fempack/gridio/mesh"
)

// Gmsh element type codes used by the reader. Types 2 (triangle) and
// 11 (tetrahedron) are recognized only to produce a useful error.
const (
	mshLine     = 1
	mshTriangle = 2
	mshQuad     = 3
	mshHex      = 5
	mshTet      = 11
	mshPoint    = 15
)

// readMSH parses Gmsh mesh files. Supported are the legacy version 1
// layout ($NOD/$ELM) and the $MeshFormat based versions 2.0 through
// 4.1, ASCII encoded. The internal format code is ten times the file
// format version, version 1 files get code 10.
func (g *GridIn) readMSH(tr *tokenReader) error {
	tok, err := tr.Token()
	if err != nil {
		return err
	}

	format := 10
	// Maps entity tag to physical tag, per entity dimension. Only
	// populated by the $Entities section of version 4 files.
	var tagMaps [4]map[int]int
	for d := range tagMaps {
		tagMaps[d] = make(map[int]int)
	}

	switch tok {
	case "$NOD":
		// Version 1, the node block follows immediately.
	case "$MeshFormat":
		version, err := tr.Float()
		if err != nil {
			return err
		}
		if version < 2.0 || version > 4.1 {
			return fmt.Errorf("unsupported Gmsh file format version %g", version)
		}
		format = int(math.Round(version * 10))
		fileType, err := tr.Int()
		if err != nil {
			return err
		}
		if fileType != 0 {
			return fmt.Errorf("only ASCII Gmsh files can be read, this file is binary")
		}
		// Data size, unused.
		if _, err := tr.Int(); err != nil {
			return err
		}
		if tok, err = tr.Token(); err != nil {
			return err
		} else if tok != "$EndMeshFormat" {
			return fmt.Errorf("expected $EndMeshFormat, found <%s>", tok)
		}

		if tok, err = tr.Token(); err != nil {
			return err
		}
		if tok == "$PhysicalNames" {
			for {
				if tok, err = tr.Token(); err != nil {
					return err
				}
				if tok == "$EndPhysicalNames" {
					break
				}
			}
			if tok, err = tr.Token(); err != nil {
				return err
			}
		}
		if tok == "$Entities" {
			if err := readMSHEntities(tr, format, &tagMaps); err != nil {
				return err
			}
			if tok, err = tr.Token(); err != nil {
				return err
			}
		}
		if tok == "$PartitionedEntities" {
			for {
				if tok, err = tr.Token(); err != nil {
					return err
				}
				if tok == "$EndPartitionedEntities" {
					break
				}
			}
			if tok, err = tr.Token(); err != nil {
				return err
			}
		}
		if tok != "$Nodes" {
			return fmt.Errorf("expected $Nodes, found <%s>", tok)
		}
	default:
		return fmt.Errorf("expected $NOD or $MeshFormat, found <%s>", tok)
	}

	vertices, vertexIndices, err := readMSHNodes(tr, g.SpaceDim, format)
	if err != nil {
		return err
	}

	endNodes, beginElements := "$EndNodes", "$Elements"
	if format == 10 {
		endNodes, beginElements = "$ENDNOD", "$ELM"
	}
	if tok, err = tr.Token(); err != nil {
		return err
	} else if tok != endNodes {
		return fmt.Errorf("expected %s, found <%s>", endNodes, tok)
	}
	if tok, err = tr.Token(); err != nil {
		return err
	} else if tok != beginElements {
		return fmt.Errorf("expected %s, found <%s>", beginElements, tok)
	}

	cells, sub, boundaryIDs1D, err := g.readMSHElements(tr, format, &tagMaps, vertexIndices)
	if err != nil {
		return err
	}

	endElements := "$EndElements"
	if format == 10 {
		endElements = "$ENDELM"
	}
	if tok, err = tr.Token(); err != nil {
		return err
	} else if tok != endElements {
		return fmt.Errorf("expected %s, found <%s>", endElements, tok)
	}

	if len(cells) == 0 {
		return fmt.Errorf("the Gmsh file contains no cells usable in %dd", g.Dim)
	}
	return g.finish(vertices, cells, sub, finishOptions{
		invert:            true,
		vertexBoundaryIDs: boundaryIDs1D,
	})
}

// readMSHEntities parses the $Entities section of version 4 files and
// fills the entity tag to physical tag maps. At most one physical tag
// per entity is supported.
func readMSHEntities(tr *tokenReader, format int, tagMaps *[4]map[int]int) error {
	var counts [4]int
	for d := range counts {
		n, err := tr.Int()
		if err != nil {
			return err
		}
		counts[d] = n
	}
	for dim := 0; dim < 4; dim++ {
		for i := 0; i < counts[dim]; i++ {
			tag, err := tr.Int()
			if err != nil {
				return err
			}
			// Version 4.1 stores a single point for dimension 0
			// entities, earlier version 4.0 a bounding box.
			nCoords := 6
			if dim == 0 && format > 40 {
				nCoords = 3
			}
			for c := 0; c < nCoords; c++ {
				if _, err := tr.Float(); err != nil {
					return err
				}
			}
			nPhysical, err := tr.Int()
			if err != nil {
				return err
			}
			if nPhysical > 1 {
				return fmt.Errorf("entity %d of dimension %d has %d physical tags, but more than one is not supported",
					tag, dim, nPhysical)
			}
			if nPhysical == 1 {
				phys, err := tr.Int()
				if err != nil {
					return err
				}
				tagMaps[dim][tag] = phys
			}
			if dim > 0 {
				nBounding, err := tr.Int()
				if err != nil {
					return err
				}
				for b := 0; b < nBounding; b++ {
					if _, err := tr.Int(); err != nil {
						return err
					}
				}
			}
		}
	}
	tok, err := tr.Token()
	if err != nil {
		return err
	}
	if tok != "$EndEntities" {
		return fmt.Errorf("expected $EndEntities, found <%s>", tok)
	}
	return nil
}

// readMSHNodes reads the node section and returns the vertex array
// together with the file number to dense index map.
func readMSHNodes(tr *tokenReader, spacedim, format int) ([][]float64, map[int]int, error) {
	nBlocks := 1
	nVertices := 0
	var err error
	if format >= 40 {
		if nBlocks, err = tr.Int(); err != nil {
			return nil, nil, err
		}
	}
	if nVertices, err = tr.Int(); err != nil {
		return nil, nil, err
	}
	if format > 40 {
		// Min and max node tags, unused.
		if _, err = tr.Int(); err != nil {
			return nil, nil, err
		}
		if _, err = tr.Int(); err != nil {
			return nil, nil, err
		}
	}

	vertices := make([][]float64, 0, nVertices)
	vertexIndices := make(map[int]int, nVertices)
	for b := 0; b < nBlocks; b++ {
		nInBlock := nVertices
		parametric := 0
		if format >= 40 {
			// Entity dimension and tag; version 4.0 stores them in
			// the opposite order, but neither is needed for nodes.
			if _, err = tr.Int(); err != nil {
				return nil, nil, err
			}
			if _, err = tr.Int(); err != nil {
				return nil, nil, err
			}
			if parametric, err = tr.Int(); err != nil {
				return nil, nil, err
			}
			if nInBlock, err = tr.Int(); err != nil {
				return nil, nil, err
			}
		}

		readCoords := func(tag int) error {
			var xyz [3]float64
			for d := 0; d < 3; d++ {
				if xyz[d], err = tr.Float(); err != nil {
					return err
				}
			}
			vertexIndices[tag] = len(vertices)
			vertices = append(vertices, append([]float64(nil), xyz[:spacedim]...))
			if parametric != 0 {
				// Parametric coordinates, unused.
				if _, err = tr.Float(); err != nil {
					return err
				}
				if _, err = tr.Float(); err != nil {
					return err
				}
			}
			return nil
		}

		if format > 40 {
			// Version 4.1 lists all tags of a block first, then all
			// coordinate triples.
			tags := make([]int, nInBlock)
			for i := range tags {
				if tags[i], err = tr.Int(); err != nil {
					return nil, nil, err
				}
			}
			for _, tag := range tags {
				if err := readCoords(tag); err != nil {
					return nil, nil, err
				}
			}
		} else {
			for i := 0; i < nInBlock; i++ {
				tag, err := tr.Int()
				if err != nil {
					return nil, nil, err
				}
				if err := readCoords(tag); err != nil {
					return nil, nil, err
				}
			}
		}
	}
	return vertices, vertexIndices, nil
}

// readMSHElements reads the element section, sorting entries into
// cells, boundary entities and, for 1d grids, per-vertex boundary
// ids contributed by point elements.
func (g *GridIn) readMSHElements(tr *tokenReader, format int, tagMaps *[4]map[int]int,
	vertexIndices map[int]int) ([]mesh.CellData, mesh.SubCellData, map[int]mesh.BoundaryID, error) {

	var cells []mesh.CellData
	var sub mesh.SubCellData
	boundaryIDs1D := make(map[int]mesh.BoundaryID)

	fail := func(err error) ([]mesh.CellData, mesh.SubCellData, map[int]mesh.BoundaryID, error) {
		return nil, mesh.SubCellData{}, nil, err
	}

	nBlocks := 1
	nElements := 0
	var err error
	if format >= 40 {
		if nBlocks, err = tr.Int(); err != nil {
			return fail(err)
		}
	}
	if nElements, err = tr.Int(); err != nil {
		return fail(err)
	}
	if format > 40 {
		// Min and max element tags, unused.
		if _, err = tr.Int(); err != nil {
			return fail(err)
		}
		if _, err = tr.Int(); err != nil {
			return fail(err)
		}
	}

	lookup := func(element, tag int) (int, error) {
		idx, ok := vertexIndices[tag]
		if !ok {
			return 0, fmt.Errorf("element %d refers to vertex %d, which does not exist in the file", element, tag)
		}
		return idx, nil
	}

	for b := 0; b < nBlocks; b++ {
		nInBlock := nElements
		blockType := 0
		blockMaterial := 0
		if format >= 40 {
			entityDim, entityTag := 0, 0
			// Version 4.0 stores tag before dimension.
			a1, err := tr.Int()
			if err != nil {
				return fail(err)
			}
			a2, err := tr.Int()
			if err != nil {
				return fail(err)
			}
			if format == 40 {
				entityTag, entityDim = a1, a2
			} else {
				entityDim, entityTag = a1, a2
			}
			if blockType, err = tr.Int(); err != nil {
				return fail(err)
			}
			if nInBlock, err = tr.Int(); err != nil {
				return fail(err)
			}
			if entityDim >= 0 && entityDim < 4 {
				blockMaterial = tagMaps[entityDim][entityTag]
			}
		}

		for e := 0; e < nInBlock; e++ {
			elmNumber := 0
			cellType := blockType
			material := blockMaterial
			nNodes := 0

			if format < 40 {
				if elmNumber, err = tr.Int(); err != nil {
					return fail(err)
				}
				if cellType, err = tr.Int(); err != nil {
					return fail(err)
				}
				if format < 20 {
					// Version 1: reg-phys, reg-elm, number-of-nodes.
					if material, err = tr.Int(); err != nil {
						return fail(err)
					}
					if _, err = tr.Int(); err != nil {
						return fail(err)
					}
					if nNodes, err = tr.Int(); err != nil {
						return fail(err)
					}
				} else {
					nTags, err := tr.Int()
					if err != nil {
						return fail(err)
					}
					for t := 0; t < nTags; t++ {
						tag, err := tr.Int()
						if err != nil {
							return fail(err)
						}
						// The first tag is the physical entity.
						if t == 0 {
							material = tag
						}
					}
				}
			} else {
				if elmNumber, err = tr.Int(); err != nil {
					return fail(err)
				}
			}

			switch {
			case (cellType == mshLine && g.Dim == 1) ||
				(cellType == mshQuad && g.Dim == 2) ||
				(cellType == mshHex && g.Dim == 3):
				nvc := mesh.VerticesPerCell(g.Dim)
				if nNodes != 0 && nNodes != nvc {
					return fail(fmt.Errorf("element %d declares %d nodes, but its type needs %d", elmNumber, nNodes, nvc))
				}
				cell := mesh.NewCellData(g.Dim)
				mat, err := mesh.CheckMaterialID(material)
				if err != nil {
					return fail(fmt.Errorf("element %d: %w", elmNumber, err))
				}
				cell.MaterialID = mat
				for i := range cell.Vertices {
					tag, err := tr.Int()
					if err != nil {
						return fail(err)
					}
					if cell.Vertices[i], err = lookup(elmNumber, tag); err != nil {
						return fail(err)
					}
				}
				cells = append(cells, cell)

			case cellType == mshLine && g.Dim > 1:
				line := mesh.NewBoundaryLine()
				bid, err := mesh.CheckBoundaryID(material)
				if err != nil {
					return fail(fmt.Errorf("element %d: %w", elmNumber, err))
				}
				line.BoundaryID = bid
				for i := range line.Vertices {
					tag, err := tr.Int()
					if err != nil {
						return fail(err)
					}
					if line.Vertices[i], err = lookup(elmNumber, tag); err != nil {
						return fail(err)
					}
				}
				sub.BoundaryLines = append(sub.BoundaryLines, line)

			case cellType == mshQuad && g.Dim == 3:
				quad := mesh.NewBoundaryQuad()
				bid, err := mesh.CheckBoundaryID(material)
				if err != nil {
					return fail(fmt.Errorf("element %d: %w", elmNumber, err))
				}
				quad.BoundaryID = bid
				for i := range quad.Vertices {
					tag, err := tr.Int()
					if err != nil {
						return fail(err)
					}
					if quad.Vertices[i], err = lookup(elmNumber, tag); err != nil {
						return fail(err)
					}
				}
				sub.BoundaryQuads = append(sub.BoundaryQuads, quad)

			case cellType == mshPoint:
				tag, err := tr.Int()
				if err != nil {
					return fail(err)
				}
				if g.Dim == 1 {
					idx, err := lookup(elmNumber, tag)
					if err != nil {
						return fail(err)
					}
					bid, err := mesh.CheckBoundaryID(material)
					if err != nil {
						return fail(fmt.Errorf("element %d: %w", elmNumber, err))
					}
					boundaryIDs1D[idx] = bid
				}

			case cellType == mshTriangle:
				return fail(fmt.Errorf("element %d is a triangle; only quadrilateral and hexahedral meshes can be read", elmNumber))
			case cellType == mshTet:
				return fail(fmt.Errorf("element %d is a tetrahedron; only quadrilateral and hexahedral meshes can be read", elmNumber))
			default:
				return fail(fmt.Errorf("element %d has unsupported geometry type %d in %dd", elmNumber, cellType, g.Dim))
			}
		}
	}

	if len(boundaryIDs1D) == 0 {
		boundaryIDs1D = nil
	}
	return cells, sub, boundaryIDs1D, nil
}
