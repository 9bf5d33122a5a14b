package readers

import (
	"fmt"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"

	"github.com/fempack/gridio/mesh"
)

// readNetCDF parses TAU grid files stored in NetCDF containers. The
// 3d variant reads the hexahedra directly; the 2d variant extracts
// the surface quadrilaterals lying in the y=0 plane of a
// one-cell-thick 3d grid, the way the TAU preprocessor stores 2d
// meshes.
func (g *GridIn) readNetCDF(filename string) error {
	switch g.Dim {
	case 2:
		return g.readNetCDF2D(filename)
	case 3:
		return g.readNetCDF3D(filename)
	}
	return fmt.Errorf("the NetCDF reader supports 2d and 3d meshes only, dim=%d was requested", g.Dim)
}

func (g *GridIn) readNetCDF3D(filename string) error {
	nc, err := netcdf.Open(filename)
	if err != nil {
		return fmt.Errorf("opening NetCDF file %s: %w", filename, err)
	}
	defer nc.Close()

	// TAU files list every element kind; only purely hexahedral
	// grids can be represented.
	nElements, err1 := dimensionLength(nc, "no_of_elements")
	nHexes, err2 := dimensionLength(nc, "no_of_hexaeders")
	if err1 == nil && err2 == nil && nElements != nHexes {
		return fmt.Errorf("the NetCDF file contains %d elements but only %d hexahedra; only purely hexahedral grids can be read",
			nElements, nHexes)
	}

	hexes, err := intTable(nc, "points_of_hexaeders", 8)
	if err != nil {
		return err
	}
	coords, err := pointCoordinates(nc, g.SpaceDim)
	if err != nil {
		return err
	}

	cells := make([]mesh.CellData, len(hexes))
	for c, row := range hexes {
		cells[c] = mesh.NewCellData(3)
		for i, v := range row {
			if v < 0 || v >= len(coords) {
				return fmt.Errorf("cell %d refers to vertex %d, but only %d points exist", c, v, len(coords))
			}
			cells[c].Vertices[i] = v
		}
	}

	var sub mesh.SubCellData
	quads, err := intTable(nc, "points_of_surfacequadrilaterals", 4)
	if err == nil {
		markers, merr := intColumn(nc, "boundarymarker_of_surfaces")
		if merr != nil {
			return merr
		}
		if len(markers) != len(quads) {
			return fmt.Errorf("the NetCDF file lists %d surface quadrilaterals but %d boundary markers",
				len(quads), len(markers))
		}
		for q, row := range quads {
			quad := mesh.NewBoundaryQuad()
			bid, err := mesh.CheckBoundaryID(markers[q])
			if err != nil {
				return fmt.Errorf("surface quadrilateral %d: %w", q, err)
			}
			quad.BoundaryID = bid
			for i, v := range row {
				if v < 0 || v >= len(coords) {
					return fmt.Errorf("surface quadrilateral %d refers to vertex %d, but only %d points exist",
						q, v, len(coords))
				}
				quad.Vertices[i] = v
			}
			sub.BoundaryQuads = append(sub.BoundaryQuads, quad)
		}
	}

	return g.finish(coords, cells, sub, finishOptions{invert: true})
}

func (g *GridIn) readNetCDF2D(filename string) error {
	nc, err := netcdf.Open(filename)
	if err != nil {
		return fmt.Errorf("opening NetCDF file %s: %w", filename, err)
	}
	defer nc.Close()

	quads, err := intTable(nc, "points_of_surfacequadrilaterals", 4)
	if err != nil {
		return err
	}
	markers, err := intColumn(nc, "boundarymarker_of_surfaces")
	if err != nil {
		return err
	}
	if len(markers) != len(quads) {
		return fmt.Errorf("the NetCDF file lists %d surface quadrilaterals but %d boundary markers",
			len(quads), len(markers))
	}
	coords3, err := pointCoordinates(nc, 3)
	if err != nil {
		return err
	}

	// The 2d grid is stored as a 3d grid of thickness one; the cells
	// are the surface quadrilaterals in the y=0 plane, with x and z
	// becoming the 2d coordinates.
	const planeCoord = 1
	const x2d, y2d = 0, 2

	inPlane := func(row []int) (bool, error) {
		on := 0
		for _, v := range row {
			if v < 0 || v >= len(coords3) {
				return false, fmt.Errorf("surface quadrilateral refers to vertex %d, but only %d points exist",
					v, len(coords3))
			}
			if coords3[v][planeCoord] == 0 {
				on++
			}
		}
		switch on {
		case 0:
			return false, nil
		case len(row):
			return true, nil
		}
		return false, fmt.Errorf("surface quadrilateral straddles the y=0 plane, the grid is not a 2d TAU grid")
	}

	// Every boundary marker must be used consistently: either all of
	// its quadrilaterals lie in the plane, or none does.
	planeQuads := make(map[int]int)
	offQuads := make(map[int]int)
	var cells []mesh.CellData
	for q, row := range quads {
		in, err := inPlane(row)
		if err != nil {
			return fmt.Errorf("surface quadrilateral %d: %w", q, err)
		}
		if !in {
			offQuads[markers[q]]++
			continue
		}
		planeQuads[markers[q]]++
		cell := mesh.NewCellData(2)
		for i, v := range row {
			cell.Vertices[i] = v
		}
		cells = append(cells, cell)
	}
	for m := range planeQuads {
		if offQuads[m] > 0 {
			return fmt.Errorf("boundary marker %d labels quadrilaterals both in and outside the y=0 plane", m)
		}
	}
	if len(cells) == 0 {
		return fmt.Errorf("the NetCDF file contains no quadrilaterals in the y=0 plane")
	}

	vertices := make([][]float64, len(coords3))
	for v, p := range coords3 {
		vertices[v] = []float64{p[x2d], p[y2d]}
	}

	// The plane projection can flip cell orientation arbitrarily, so
	// no inversion pass is run here.
	return g.finish(vertices, cells, mesh.SubCellData{}, finishOptions{})
}

// pointCoordinates assembles the vertex array from the TAU coordinate
// variables points_xc, points_yc and points_zc.
func pointCoordinates(nc api.Group, spacedim int) ([][]float64, error) {
	names := []string{"points_xc", "points_yc", "points_zc"}
	cols := make([][]float64, spacedim)
	n := -1
	for d := 0; d < spacedim; d++ {
		col, err := floatColumn(nc, names[d])
		if err != nil {
			return nil, err
		}
		if n >= 0 && len(col) != n {
			return nil, fmt.Errorf("coordinate variables differ in length: %s has %d entries, expected %d",
				names[d], len(col), n)
		}
		n = len(col)
		cols[d] = col
	}
	vertices := make([][]float64, n)
	for v := range vertices {
		p := make([]float64, spacedim)
		for d := 0; d < spacedim; d++ {
			p[d] = cols[d][v]
		}
		vertices[v] = p
	}
	return vertices, nil
}

func dimensionLength(nc api.Group, name string) (int, error) {
	n, ok := nc.GetDimension(name)
	if !ok {
		return 0, fmt.Errorf("the NetCDF file has no dimension <%s>", name)
	}
	return int(n), nil
}

func getValues(nc api.Group, name string) (interface{}, error) {
	v, err := nc.GetVariable(name)
	if err != nil {
		return nil, fmt.Errorf("the NetCDF file has no variable <%s>: %w", name, err)
	}
	return v.Values, nil
}

func floatColumn(nc api.Group, name string) ([]float64, error) {
	vals, err := getValues(nc, name)
	if err != nil {
		return nil, err
	}
	switch t := vals.(type) {
	case []float64:
		return t, nil
	case []float32:
		out := make([]float64, len(t))
		for i, f := range t {
			out[i] = float64(f)
		}
		return out, nil
	}
	return nil, fmt.Errorf("variable <%s> is not a floating point vector", name)
}

func intColumn(nc api.Group, name string) ([]int, error) {
	vals, err := getValues(nc, name)
	if err != nil {
		return nil, err
	}
	return toInts(vals, name)
}

func toInts(vals interface{}, name string) ([]int, error) {
	switch t := vals.(type) {
	case []int32:
		out := make([]int, len(t))
		for i, v := range t {
			out[i] = int(v)
		}
		return out, nil
	case []int64:
		out := make([]int, len(t))
		for i, v := range t {
			out[i] = int(v)
		}
		return out, nil
	case []int16:
		out := make([]int, len(t))
		for i, v := range t {
			out[i] = int(v)
		}
		return out, nil
	}
	return nil, fmt.Errorf("variable <%s> is not an integer vector", name)
}

func intTable(nc api.Group, name string, width int) ([][]int, error) {
	vals, err := getValues(nc, name)
	if err != nil {
		return nil, err
	}
	var rows [][]int
	switch t := vals.(type) {
	case [][]int32:
		for _, r := range t {
			row, err := toInts(r, name)
			if err != nil {
				return nil, err
			}
			rows = append(rows, row)
		}
	case [][]int64:
		for _, r := range t {
			row, err := toInts(r, name)
			if err != nil {
				return nil, err
			}
			rows = append(rows, row)
		}
	default:
		// Some writers store the table flattened.
		flat, err := toInts(vals, name)
		if err != nil {
			return nil, fmt.Errorf("variable <%s> is not an integer table", name)
		}
		if len(flat)%width != 0 {
			return nil, fmt.Errorf("variable <%s> has %d entries, not a multiple of %d", name, len(flat), width)
		}
		for i := 0; i < len(flat); i += width {
			rows = append(rows, flat[i:i+width])
		}
	}
	for _, r := range rows {
		if len(r) != width {
			return nil, fmt.Errorf("variable <%s> stores rows of %d entries, expected %d", name, len(r), width)
		}
	}
	return rows, nil
}
