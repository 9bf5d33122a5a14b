package readers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fempack/gridio/mesh"
)

// tecplotHeader holds what the reader needs from a tecplot ASCII
// header: which file column provides which coordinate, the grid
// sizes, and whether the zone is structured and block packed.
type tecplotHeader struct {
	// coordColumn[d] is the 1-based variable column holding
	// coordinate d; entry 0 of the variable list is column 1.
	coordColumn []int
	nVars       int
	nVertices   int
	nCells      int
	ijk         [3]int
	structured  bool
	blocked     bool
}

// parseTecplotHeader digests the concatenated header lines of a
// tecplot ASCII file. The grammar is case insensitive, commas and
// tabs count as whitespace, and spaces around '=' are not
// significant.
func parseTecplotHeader(header string, dim int) (*tecplotHeader, error) {
	h := &tecplotHeader{
		coordColumn: make([]int, dim),
		structured:  true,
	}

	header = strings.ToUpper(header)
	header = strings.NewReplacer("\t", " ", ",", " ", "\n", " ").Replace(header)
	for strings.Contains(header, " =") {
		header = strings.ReplaceAll(header, " =", "=")
	}
	for strings.Contains(header, "= ") {
		header = strings.ReplaceAll(header, "= ", "=")
	}
	entries := strings.Fields(header)

	intAfter := func(entry string, pos int) (int, error) {
		s := entry[pos:]
		end := 0
		for end < len(s) && s[end] >= '0' && s[end] <= '9' {
			end++
		}
		if end == 0 {
			return 0, fmt.Errorf("while reading tecplot header: expected number in <%s>", entry)
		}
		return strconv.Atoi(s[:end])
	}

	for i := 0; i < len(entries); i++ {
		e := entries[i]
		switch {
		case strings.HasPrefix(e, `VARIABLES=`):
			assign := func(name string) {
				h.nVars++
				switch name {
				case `"X"`:
					h.coordColumn[0] = h.nVars
				case `"Y"`:
					if dim > 1 {
						h.coordColumn[1] = h.nVars
					}
				case `"Z"`:
					if dim > 2 {
						h.coordColumn[2] = h.nVars
					}
				}
			}
			assign(strings.TrimPrefix(e, "VARIABLES="))
			for i+1 < len(entries) && strings.HasPrefix(entries[i+1], `"`) {
				i++
				assign(entries[i])
			}
			for d := 1; d < dim; d++ {
				if h.coordColumn[d] == 0 {
					return nil, fmt.Errorf("while reading tecplot header: the VARIABLES list provides no %c coordinate",
						'X'+d)
				}
			}
			if h.nVars < dim {
				return nil, fmt.Errorf("while reading tecplot header: %d variables cannot describe %dd points", h.nVars, dim)
			}

		case strings.HasPrefix(e, "ZONETYPE=ORDERED"):
			h.structured = true
		case strings.HasPrefix(e, "ZONETYPE="):
			want := map[int]string{1: "FELINESEG", 2: "FEQUADRILATERAL", 3: "FEBRICK"}[dim]
			if e != "ZONETYPE="+want {
				return nil, fmt.Errorf("while reading tecplot header: unsupported zone type <%s> in %dd", e, dim)
			}
			h.structured = false

		case strings.HasPrefix(e, "DATAPACKING=POINT"), e == "F=POINT", e == "F=FEPOINT":
			h.blocked = false
			if strings.HasPrefix(e, "F=FE") {
				h.structured = false
			}
		case strings.HasPrefix(e, "DATAPACKING=BLOCK"), e == "F=BLOCK", e == "F=FEBLOCK":
			h.blocked = true
			if strings.HasPrefix(e, "F=FE") {
				h.structured = false
			}

		case strings.HasPrefix(e, "ET="):
			want := map[int]string{2: "QUADRILATERAL", 3: "BRICK"}[dim]
			if e != "ET="+want {
				return nil, fmt.Errorf("while reading tecplot header: unsupported element type <%s> in %dd", e, dim)
			}
			h.structured = false

		case strings.HasPrefix(e, "I="):
			n, err := intAfter(e, 2)
			if err != nil {
				return nil, err
			}
			h.ijk[0] = n
		case strings.HasPrefix(e, "J="):
			n, err := intAfter(e, 2)
			if err != nil {
				return nil, err
			}
			h.ijk[1] = n
			if dim < 2 && n > 1 {
				return nil, fmt.Errorf("while reading tecplot header: J=%d makes no sense for a 1d grid", n)
			}
		case strings.HasPrefix(e, "K="):
			n, err := intAfter(e, 2)
			if err != nil {
				return nil, err
			}
			h.ijk[2] = n
			if dim < 3 && n > 1 {
				return nil, fmt.Errorf("while reading tecplot header: K=%d makes no sense for a %dd grid", n, dim)
			}
		case strings.HasPrefix(e, "N="):
			n, err := intAfter(e, 2)
			if err != nil {
				return nil, err
			}
			h.nVertices = n
		case strings.HasPrefix(e, "E="):
			n, err := intAfter(e, 2)
			if err != nil {
				return nil, err
			}
			h.nCells = n
		}
	}

	// By convention the first variable is the x coordinate unless
	// the VARIABLES list says otherwise.
	if h.coordColumn[0] == 0 {
		h.coordColumn[0] = 1
	}
	if h.nVars == 0 {
		h.nVars = dim
		for d := 1; d < dim; d++ {
			h.coordColumn[d] = d + 1
		}
	}

	if h.structured {
		h.nVertices = 1
		h.nCells = 1
		for d := 0; d < dim; d++ {
			if h.ijk[d] < 2 {
				return nil, fmt.Errorf("while reading tecplot header: the header does not provide all grid extents of a structured zone")
			}
			h.nVertices *= h.ijk[d]
			h.nCells *= h.ijk[d] - 1
		}
	} else {
		if h.nVertices < 1 {
			return nil, fmt.Errorf("while reading tecplot header: the header does not provide the number of vertices")
		}
		if h.nCells < 1 {
			// Some codes write IJK values instead of E.
			for d := 0; d < dim; d++ {
				if h.ijk[d] > h.nCells {
					h.nCells = h.ijk[d]
				}
			}
			if h.nCells < 1 {
				return nil, fmt.Errorf("while reading tecplot header: the header does not provide the number of cells")
			}
		}
	}
	return h, nil
}

// hasLetters reports whether a line contains alphabetic characters
// other than the exponent markers of floating point literals.
func hasLetters(line string) bool {
	for _, r := range line {
		if (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') && r != 'e' && r != 'E' {
			return true
		}
	}
	return false
}

// readTecplot parses tecplot ASCII files, both ordered (structured)
// and finite element zones. Only implemented for 2d grids.
func (g *GridIn) readTecplot(tr *tokenReader) error {
	if g.Dim != 2 {
		return fmt.Errorf("the tecplot reader is only implemented for 2d grids, dim=%d was requested", g.Dim)
	}
	if err := tr.skipCommentLines('#'); err != nil {
		return err
	}

	// The header is everything up to the first line consisting of
	// numbers only. That line is already data and must be kept.
	var headerLines []string
	var firstData string
	for {
		line, err := tr.Line()
		if err != nil {
			return fmt.Errorf("while reading tecplot file: no data found: %w", err)
		}
		if !hasLetters(line) && strings.TrimSpace(line) != "" {
			firstData = line
			break
		}
		headerLines = append(headerLines, line)
	}

	h, err := parseTecplotHeader(strings.Join(headerLines, "\n"), g.Dim)
	if err != nil {
		return err
	}

	// Vertex numbering in the file is 1-based; slot 0 stays unused
	// and is removed by the cleanup pass.
	vertices := make([][]float64, h.nVertices+1)
	for v := range vertices {
		vertices[v] = make([]float64, g.SpaceDim)
	}

	pendingFields := strings.Fields(firstData)
	nextFloat := func() (float64, error) {
		if len(pendingFields) > 0 {
			f, err := strconv.ParseFloat(pendingFields[0], 64)
			if err != nil {
				return 0, fmt.Errorf("expected floating point number, found <%s>", pendingFields[0])
			}
			pendingFields = pendingFields[1:]
			return f, nil
		}
		return tr.Float()
	}

	if h.blocked {
		// Variables are stored one after the other, each as a full
		// column of vertex values. In an unstructured zone every
		// column must be consumed since the connectivity follows.
		read := 0
		for col := 1; col <= h.nVars; col++ {
			if read == g.Dim && h.structured {
				break
			}
			target := -1
			for d := 0; d < g.Dim; d++ {
				if h.coordColumn[d] == col {
					target = d
				}
			}
			for v := 1; v <= h.nVertices; v++ {
				f, err := nextFloat()
				if err != nil {
					return err
				}
				if target >= 0 {
					vertices[v][target] = f
				}
			}
			if target >= 0 {
				read++
			}
		}
	} else {
		// Point packing: one vertex per row.
		row := make([]float64, h.nVars)
		for v := 1; v <= h.nVertices; v++ {
			for c := range row {
				if row[c], err = nextFloat(); err != nil {
					return err
				}
			}
			for d := 0; d < g.Dim; d++ {
				vertices[v][d] = row[h.coordColumn[d]-1]
			}
		}
	}

	var cells []mesh.CellData
	var sub mesh.SubCellData
	if h.structured {
		cells, err = structuredTecplotCells(h)
		if err != nil {
			return err
		}
		// Vertices on the zone boundary may coincide with vertices
		// of a neighboring zone written earlier; merge them.
		boundary := structuredBoundaryVertices(h)
		vertices, err = mesh.DeleteDuplicatedVertices(vertices, cells, &sub, boundary, mesh.DefaultMergeTolerance)
		if err != nil {
			return err
		}
	} else {
		nextInt := func() (int, error) {
			f, err := nextFloat()
			if err != nil {
				return 0, err
			}
			return int(f), nil
		}
		cells = make([]mesh.CellData, h.nCells)
		for c := range cells {
			cells[c] = mesh.NewCellData(g.Dim)
			for i := range cells[c].Vertices {
				v, err := nextInt()
				if err != nil {
					return err
				}
				if v < 1 || v > h.nVertices {
					return fmt.Errorf("while creating cell %d: invalid vertex index %d, valid range is [1, %d]",
						c, v, h.nVertices)
				}
				cells[c].Vertices[i] = v
			}
		}
	}

	return g.finish(vertices, cells, sub, finishOptions{invert: true})
}

// structuredTecplotCells synthesizes the quadrilaterals of an ordered
// zone. Vertex numbers are 1-based, matching the phantom vertex the
// caller holds at index 0.
func structuredTecplotCells(h *tecplotHeader) ([]mesh.CellData, error) {
	I, J := h.ijk[0], h.ijk[1]
	cells := make([]mesh.CellData, 0, h.nCells)
	for j := 0; j < J-1; j++ {
		for i := 1; i < I; i++ {
			cell := mesh.NewCellData(2)
			cell.Vertices[0] = i + j*I
			cell.Vertices[1] = i + 1 + j*I
			cell.Vertices[2] = i + 1 + (j+1)*I
			cell.Vertices[3] = i + (j+1)*I
			cells = append(cells, cell)
		}
	}
	if len(cells) != h.nCells {
		return nil, fmt.Errorf("while reading tecplot file: expected %d cells in the ordered zone, built %d",
			h.nCells, len(cells))
	}
	return cells, nil
}

// structuredBoundaryVertices lists the 1-based vertex numbers on the
// rim of an ordered zone.
func structuredBoundaryVertices(h *tecplotHeader) []int {
	I, J := h.ijk[0], h.ijk[1]
	var out []int
	for i := 1; i <= I; i++ {
		out = append(out, i, i+(J-1)*I)
	}
	for j := 1; j < J-1; j++ {
		out = append(out, 1+j*I, I+j*I)
	}
	return out
}
