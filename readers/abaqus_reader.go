package readers

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/fempack/gridio/mesh"
)

// readAbaqus parses an ABAQUS .inp file by converting it to the UCD
// layout in memory and running the result through the UCD reader.
// The reader handles the subset of the keyword language produced by
// the usual meshing tools: *NODE, *ELEMENT, *ELSET (with GENERATE),
// *SURFACE and *SOLID SECTION.
func (g *GridIn) readAbaqus(r io.Reader) error {
	if !(g.SpaceDim == 2 && g.Dim == 2 || g.SpaceDim == 3 && g.Dim >= 2) {
		return fmt.Errorf("the ABAQUS reader supports dim=2, spacedim=2 and dim=2 or 3, spacedim=3 only")
	}

	conv := newAbaqusToUCD(g.Dim, g.SpaceDim)
	if err := conv.read(r); err != nil {
		return err
	}
	var buf bytes.Buffer
	conv.writeUCD(&buf)

	if err := g.readUCD(newTokenReader(&buf)); err != nil {
		return fmt.Errorf("the internal conversion from ABAQUS to UCD format failed; "+
			"the mesh must consist of quadrilaterals or hexahedra only: %w", err)
	}
	return nil
}

type abaqusCell struct {
	material int
	vertices []int
}

type abaqusFace struct {
	boundary int
	vertices []int
}

// abaqusToUCD accumulates the entities of an ABAQUS input deck and
// serializes them as a UCD mesh.
type abaqusToUCD struct {
	dim, spacedim int
	// Coordinates that small get flushed to zero on output.
	tolerance float64

	nodeNumbers []int
	nodes       [][3]float64
	cells       []abaqusCell
	faces       []abaqusFace
	elsets      map[string][]int
}

func newAbaqusToUCD(dim, spacedim int) *abaqusToUCD {
	return &abaqusToUCD{
		dim:       dim,
		spacedim:  spacedim,
		tolerance: 5e-16,
		elsets:    make(map[string][]int),
	}
}

// read walks the keyword sections of the deck. Unknown keywords and
// their data lines are skipped.
func (a *abaqusToUCD) read(r io.Reader) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var pending string
	hasPending := false
	nextLine := func() (string, bool) {
		if hasPending {
			hasPending = false
			return pending, true
		}
		if sc.Scan() {
			return sc.Text(), true
		}
		return "", false
	}
	pushBack := func(line string) {
		pending = line
		hasPending = true
	}

	for {
		raw, ok := nextLine()
		if !ok {
			break
		}
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "**") {
			continue
		}
		upper := strings.ToUpper(line)

		var err error
		switch {
		case strings.HasPrefix(upper, "*NODE"):
			err = a.readNodes(nextLine, pushBack)
		case strings.HasPrefix(upper, "*ELEMENT") && strings.Contains(upper, "ELSET=EB"):
			err = a.readElements(upper, nextLine, pushBack)
		case strings.HasPrefix(upper, "*ELEMENT"):
			err = a.readElements(upper+",ELSET=EB0", nextLine, pushBack)
		case strings.HasPrefix(upper, "*ELSET"):
			err = a.readElset(upper, nextLine, pushBack)
		case strings.HasPrefix(upper, "*SURFACE"):
			err = a.readSurface(upper, nextLine, pushBack)
		case strings.HasPrefix(upper, "*SOLID SECTION"):
			err = a.applySolidSection(upper)
		case strings.HasPrefix(upper, "*"):
			// *HEADING, *PART, *NSET and anything else: skip the
			// section body.
			skipSection(nextLine, pushBack)
		default:
			return fmt.Errorf("while reading ABAQUS file: stray data line <%s>", line)
		}
		if err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	if len(a.cells) == 0 {
		return fmt.Errorf("the ABAQUS file contains no elements")
	}
	return nil
}

func skipSection(nextLine func() (string, bool), pushBack func(string)) {
	for {
		line, ok := nextLine()
		if !ok {
			return
		}
		t := strings.TrimSpace(line)
		if strings.HasPrefix(t, "*") && !strings.HasPrefix(t, "**") {
			pushBack(line)
			return
		}
	}
}

// sectionLines iterates over the data lines of the current section,
// stopping at the next keyword.
func sectionLines(nextLine func() (string, bool), pushBack func(string), fn func(string) error) error {
	for {
		line, ok := nextLine()
		if !ok {
			return nil
		}
		t := strings.TrimSpace(line)
		if t == "" {
			continue
		}
		if strings.HasPrefix(t, "**") {
			continue
		}
		if strings.HasPrefix(t, "*") {
			pushBack(line)
			return nil
		}
		if err := fn(t); err != nil {
			return err
		}
	}
}

func splitCSV(line string) []string {
	parts := strings.Split(line, ",")
	out := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (a *abaqusToUCD) readNodes(nextLine func() (string, bool), pushBack func(string)) error {
	return sectionLines(nextLine, pushBack, func(line string) error {
		fields := splitCSV(line)
		if len(fields) < a.spacedim+1 {
			return fmt.Errorf("while reading ABAQUS nodes: line <%s> has too few entries", line)
		}
		no, err := strconv.Atoi(fields[0])
		if err != nil {
			return fmt.Errorf("while reading ABAQUS nodes: invalid node number <%s>", fields[0])
		}
		var xyz [3]float64
		for d := 0; d < a.spacedim; d++ {
			if xyz[d], err = strconv.ParseFloat(fields[d+1], 64); err != nil {
				return fmt.Errorf("while reading ABAQUS nodes: invalid coordinate <%s>", fields[d+1])
			}
		}
		a.nodeNumbers = append(a.nodeNumbers, no)
		a.nodes = append(a.nodes, xyz)
		return nil
	})
}

func (a *abaqusToUCD) readElements(header string, nextLine func() (string, bool), pushBack func(string)) error {
	material, err := trailingInt(header, "ELSET=EB")
	if err != nil {
		return fmt.Errorf("while reading ABAQUS elements: %w", err)
	}
	nvc := mesh.VerticesPerCell(a.dim)
	return sectionLines(nextLine, pushBack, func(line string) error {
		fields := splitCSV(line)
		if len(fields) < nvc+1 {
			return fmt.Errorf("while reading ABAQUS elements: line <%s> has too few entries", line)
		}
		cell := abaqusCell{material: material, vertices: make([]int, nvc)}
		for i := 0; i < nvc; i++ {
			v, err := strconv.Atoi(fields[i+1])
			if err != nil {
				return fmt.Errorf("while reading ABAQUS elements: invalid vertex <%s>", fields[i+1])
			}
			cell.vertices[i] = v
		}
		a.cells = append(a.cells, cell)
		return nil
	})
}

func (a *abaqusToUCD) readElset(header string, nextLine func() (string, bool), pushBack func(string)) error {
	name, err := headerValue(header, "ELSET=")
	if err != nil {
		return fmt.Errorf("while reading ABAQUS elset: %w", err)
	}

	if strings.Contains(header, "GENERATE") {
		line, ok := nextLine()
		if !ok {
			return fmt.Errorf("while reading ABAQUS elset %s: missing GENERATE range", name)
		}
		fields := splitCSV(strings.TrimSpace(line))
		if len(fields) < 2 {
			return fmt.Errorf("while reading ABAQUS elset %s: malformed GENERATE range <%s>", name, line)
		}
		start, err1 := strconv.Atoi(fields[0])
		end, err2 := strconv.Atoi(fields[1])
		step := 1
		var err3 error
		if len(fields) > 2 {
			step, err3 = strconv.Atoi(fields[2])
		}
		if err1 != nil || err2 != nil || err3 != nil || step <= 0 {
			return fmt.Errorf("while reading ABAQUS elset %s: malformed GENERATE range <%s>", name, line)
		}
		for e := start; e <= end; e += step {
			a.elsets[name] = append(a.elsets[name], e)
		}
		return nil
	}

	return sectionLines(nextLine, pushBack, func(line string) error {
		for _, f := range splitCSV(line) {
			e, err := strconv.Atoi(f)
			if err != nil {
				return fmt.Errorf("while reading ABAQUS elset %s: invalid element number <%s>", name, f)
			}
			a.elsets[name] = append(a.elsets[name], e)
		}
		return nil
	})
}

func (a *abaqusToUCD) readSurface(header string, nextLine func() (string, bool), pushBack func(string)) error {
	name, err := headerValue(header, "NAME=")
	if err != nil {
		return fmt.Errorf("while reading ABAQUS surface: %w", err)
	}
	boundary := extractDigits(name)

	return sectionLines(nextLine, pushBack, func(line string) error {
		fields := splitCSV(strings.ToUpper(line))
		if len(fields) < 2 {
			return fmt.Errorf("while reading ABAQUS surface %s: malformed line <%s>", name, line)
		}
		faceStr := strings.TrimLeft(fields[1], "SE")
		faceNo, err := strconv.Atoi(faceStr)
		if err != nil {
			return fmt.Errorf("while reading ABAQUS surface %s: invalid face label <%s>", name, fields[1])
		}

		if members, ok := a.elsets[fields[0]]; ok {
			for _, e := range members {
				if err := a.addFace(e, faceNo, boundary); err != nil {
					return err
				}
			}
			return nil
		}
		e, err := strconv.Atoi(fields[0])
		if err != nil {
			return fmt.Errorf("while reading ABAQUS surface %s: <%s> is neither an element set nor an element number",
				name, fields[0])
		}
		return a.addFace(e, faceNo, boundary)
	})
}

// ABAQUS face numbering relative to the element's vertex list,
// 1-based. These tables were derived from meshes written by Cubit
// and may not cover every element variant.
var abaqusQuadFaces = [4][2]int{
	{1, 2}, {2, 3}, {3, 4}, {4, 1},
}

var abaqusHexFaces = [6][4]int{
	{1, 4, 3, 2},
	{5, 8, 7, 6},
	{1, 2, 6, 5},
	{2, 3, 7, 6},
	{3, 4, 8, 7},
	{1, 5, 8, 4},
}

func (a *abaqusToUCD) addFace(element, faceNo, boundary int) error {
	if element < 1 || element > len(a.cells) {
		return fmt.Errorf("surface refers to element %d, but only %d elements were read", element, len(a.cells))
	}
	cell := a.cells[element-1]
	var verts []int
	if a.dim == 2 {
		if faceNo < 1 || faceNo > 4 {
			return fmt.Errorf("invalid quadrilateral face number %d", faceNo)
		}
		f := abaqusQuadFaces[faceNo-1]
		verts = []int{cell.vertices[f[0]-1], cell.vertices[f[1]-1]}
	} else {
		if faceNo < 1 || faceNo > 6 {
			return fmt.Errorf("invalid hexahedral face number %d", faceNo)
		}
		f := abaqusHexFaces[faceNo-1]
		verts = []int{
			cell.vertices[f[0]-1], cell.vertices[f[1]-1],
			cell.vertices[f[2]-1], cell.vertices[f[3]-1],
		}
	}
	a.faces = append(a.faces, abaqusFace{boundary: boundary, vertices: verts})
	return nil
}

// applySolidSection stamps a material id, parsed from the digits
// after the hyphen in MATERIAL=<name>-<id>, onto all elements of the
// referenced elset.
func (a *abaqusToUCD) applySolidSection(header string) error {
	name, err := headerValue(header, "ELSET=")
	if err != nil {
		return fmt.Errorf("while reading ABAQUS solid section: %w", err)
	}
	pos := strings.Index(header, "MATERIAL=")
	if pos < 0 {
		return fmt.Errorf("while reading ABAQUS solid section: missing MATERIAL key in <%s>", header)
	}
	hyphen := strings.Index(header[pos:], "-")
	if hyphen < 0 {
		return fmt.Errorf("while reading ABAQUS solid section: material name in <%s> carries no numeric id", header)
	}
	material, err := leadingInt(header[pos+hyphen+1:])
	if err != nil {
		return fmt.Errorf("while reading ABAQUS solid section: material name in <%s> carries no numeric id", header)
	}
	members, ok := a.elsets[name]
	if !ok {
		return fmt.Errorf("while reading ABAQUS solid section: unknown element set <%s>", name)
	}
	for _, e := range members {
		if e < 1 || e > len(a.cells) {
			return fmt.Errorf("element set %s refers to element %d, but only %d elements were read",
				name, e, len(a.cells))
		}
		a.cells[e-1].material = material
	}
	return nil
}

// writeUCD serializes the collected entities in the UCD layout
// understood by readUCD. Elements keep their 1-based order as ids.
func (a *abaqusToUCD) writeUCD(w io.Writer) {
	fmt.Fprintln(w, "# Abaqus to UCD mesh conversion")
	fmt.Fprintln(w, "# Mesh type: AVS UCD")
	fmt.Fprintf(w, "%d %d 0 0 0\n", len(a.nodes), len(a.cells)+len(a.faces))

	for i, p := range a.nodes {
		fmt.Fprintf(w, "%d", a.nodeNumbers[i])
		for d := 0; d < 3; d++ {
			c := p[d]
			if math.Abs(c) < a.tolerance {
				c = 0
			}
			fmt.Fprintf(w, " %g", c)
		}
		fmt.Fprintln(w)
	}

	cellKind := "quad"
	faceKind := "line"
	if a.dim == 3 {
		cellKind = "hex"
		faceKind = "quad"
	}
	for i, c := range a.cells {
		fmt.Fprintf(w, "%d %d %s", i+1, c.material, cellKind)
		for _, v := range c.vertices {
			fmt.Fprintf(w, " %d", v)
		}
		fmt.Fprintln(w)
	}
	for i, f := range a.faces {
		fmt.Fprintf(w, "%d %d %s", len(a.cells)+i+1, f.boundary, faceKind)
		for _, v := range f.vertices {
			fmt.Fprintf(w, " %d", v)
		}
		fmt.Fprintln(w)
	}
}

// headerValue extracts the value following key in a keyword line,
// up to the next comma.
func headerValue(header, key string) (string, error) {
	pos := strings.Index(header, key)
	if pos < 0 {
		return "", fmt.Errorf("missing %s key in <%s>", strings.TrimSuffix(key, "="), header)
	}
	val := header[pos+len(key):]
	if comma := strings.Index(val, ","); comma >= 0 {
		val = val[:comma]
	}
	val = strings.TrimSpace(val)
	if val == "" {
		return "", fmt.Errorf("empty %s value in <%s>", strings.TrimSuffix(key, "="), header)
	}
	return val, nil
}

// trailingInt parses the integer that directly follows key.
func trailingInt(header, key string) (int, error) {
	val, err := headerValue(header, key)
	if err != nil {
		return 0, err
	}
	return leadingInt(val)
}

// leadingInt parses the digits at the start of s.
func leadingInt(s string) (int, error) {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, fmt.Errorf("expected integer at the start of <%s>", s)
	}
	return strconv.Atoi(s[:end])
}

// extractDigits concatenates all digits of s into one number; a name
// without digits yields zero.
func extractDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n = n*10 + int(r-'0')
		}
	}
	return n
}
