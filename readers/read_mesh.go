package readers

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fempack/gridio/mesh"
)

// Format selects a mesh input file format.
type Format int

const (
	// FormatAuto derives the format from the file name suffix.
	FormatAuto Format = iota
	FormatDBMesh
	FormatMSH
	FormatUCD
	FormatAbaqus
	FormatUNV
	FormatVTK
	FormatXDA
	FormatNetCDF
	FormatTecplot
	FormatAssimp
)

// String returns the lower case name of the format.
func (f Format) String() string {
	switch f {
	case FormatAuto:
		return "auto"
	case FormatDBMesh:
		return "dbmesh"
	case FormatMSH:
		return "msh"
	case FormatUCD:
		return "ucd"
	case FormatAbaqus:
		return "abaqus"
	case FormatUNV:
		return "unv"
	case FormatVTK:
		return "vtk"
	case FormatXDA:
		return "xda"
	case FormatNetCDF:
		return "netcdf"
	case FormatTecplot:
		return "tecplot"
	case FormatAssimp:
		return "assimp"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat maps a format name to a Format value.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "", "auto":
		return FormatAuto, nil
	case "dbmesh":
		return FormatDBMesh, nil
	case "msh", "gmsh":
		return FormatMSH, nil
	case "ucd", "inp":
		return FormatUCD, nil
	case "abaqus":
		return FormatAbaqus, nil
	case "unv":
		return FormatUNV, nil
	case "vtk":
		return FormatVTK, nil
	case "xda":
		return FormatXDA, nil
	case "netcdf", "nc":
		return FormatNetCDF, nil
	case "tecplot", "dat", "plt":
		return FormatTecplot, nil
	case "assimp":
		return FormatAssimp, nil
	}
	return FormatAuto, fmt.Errorf("unknown mesh input format name <%s>", name)
}

// DefaultSuffix returns the customary file name suffix of a format,
// including the leading dot.
func DefaultSuffix(f Format) string {
	switch f {
	case FormatDBMesh:
		return ".dbmesh"
	case FormatMSH:
		return ".msh"
	case FormatUCD, FormatAbaqus:
		return ".inp"
	case FormatUNV:
		return ".unv"
	case FormatVTK:
		return ".vtk"
	case FormatXDA:
		return ".xda"
	case FormatNetCDF:
		return ".nc"
	case FormatTecplot:
		return ".dat"
	}
	return ""
}

// formatFromSuffix derives the format from a file name. Note that
// ".inp" files are read as UCD; the ABAQUS reader must be requested
// explicitly since both formats share the suffix.
func formatFromSuffix(filename string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	switch ext {
	case "dbmesh":
		return FormatDBMesh, nil
	case "msh":
		return FormatMSH, nil
	case "inp", "ucd":
		return FormatUCD, nil
	case "unv":
		return FormatUNV, nil
	case "vtk":
		return FormatVTK, nil
	case "xda":
		return FormatXDA, nil
	case "nc", "netcdf":
		return FormatNetCDF, nil
	case "dat", "plt", "tecplot":
		return FormatTecplot, nil
	}
	return FormatAuto, fmt.Errorf("cannot determine mesh input format from file name <%s>", filename)
}

// GridIn reads grid files in various formats and feeds the result to
// an attached mesh.Sink. Dim is the dimension of the cells, SpaceDim
// the dimension of the space the vertices live in.
type GridIn struct {
	Dim      int
	SpaceDim int

	// ApplyAllIndicatorsToManifolds makes the UCD reader (and the
	// ABAQUS reader, which goes through it) interpret the indicator
	// fields of cells and boundary entities as manifold ids.
	ApplyAllIndicatorsToManifolds bool

	sink mesh.Sink
}

// NewGridIn returns a reader for dim dimensional meshes embedded in
// spacedim dimensional space.
func NewGridIn(dim, spacedim int) (*GridIn, error) {
	if dim < 1 || dim > 3 || spacedim < dim || spacedim > 3 {
		return nil, fmt.Errorf("unsupported dimension pair dim=%d, spacedim=%d", dim, spacedim)
	}
	return &GridIn{Dim: dim, SpaceDim: spacedim}, nil
}

// AttachSink sets the consumer that receives the grid once a read
// completes. It must be called before any Read call.
func (g *GridIn) AttachSink(s mesh.Sink) {
	g.sink = s
}

// ReadFile opens the named file and reads it in the given format.
// FormatAuto picks the format from the file name suffix. NetCDF and
// Assimp input is only available through this entry point since both
// need random access to the file.
func (g *GridIn) ReadFile(filename string, format Format) error {
	if format == FormatAuto {
		var err error
		format, err = formatFromSuffix(filename)
		if err != nil {
			return err
		}
	}
	switch format {
	case FormatNetCDF:
		return g.readNetCDF(filename)
	case FormatAssimp:
		return g.ReadAssimpFile(filename, AssimpOptions{})
	}
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("opening mesh file: %w", err)
	}
	defer f.Close()
	if err := g.Read(f, format); err != nil {
		return fmt.Errorf("reading %s: %w", filename, err)
	}
	return nil
}

// Read parses a mesh from a stream. FormatAuto falls back to UCD,
// since a stream carries no file name to inspect.
func (g *GridIn) Read(r io.Reader, format Format) error {
	switch format {
	case FormatDBMesh:
		return g.readDBMesh(newTokenReader(r))
	case FormatMSH:
		return g.readMSH(newTokenReader(r))
	case FormatAuto, FormatUCD:
		return g.readUCD(newTokenReader(r))
	case FormatAbaqus:
		return g.readAbaqus(r)
	case FormatUNV:
		return g.readUNV(newTokenReader(r))
	case FormatVTK:
		return g.readVTK(newTokenReader(r))
	case FormatXDA:
		return g.readXDA(newTokenReader(r))
	case FormatTecplot:
		return g.readTecplot(newTokenReader(r))
	case FormatNetCDF:
		return fmt.Errorf("there is no stream based NetCDF reader, use ReadFile")
	case FormatAssimp:
		return fmt.Errorf("there is no stream based Assimp reader, use ReadAssimpFile")
	}
	return fmt.Errorf("unknown mesh input format %v", format)
}

type finishOptions struct {
	// invert repairs cells with negative measure. Only applies when
	// the mesh is not embedded in a higher dimensional space.
	invert bool
	// vertexBoundaryIDs carries boundary ids for single vertices of
	// 1d grids.
	vertexBoundaryIDs map[int]mesh.BoundaryID
}

// finish runs the common cleanup pipeline on freshly parsed grid data
// and hands the result to the sink.
func (g *GridIn) finish(vertices [][]float64, cells []mesh.CellData, sub mesh.SubCellData, opt finishOptions) error {
	if g.sink == nil {
		return fmt.Errorf("no triangulation attached, call AttachSink first")
	}
	if err := sub.CheckConsistency(g.Dim); err != nil {
		return err
	}
	vertices, err := mesh.DeleteUnusedVertices(vertices, cells, &sub)
	if err != nil {
		return err
	}
	if opt.invert && g.Dim == g.SpaceDim {
		if err := mesh.InvertCellsOfNegativeGrid(vertices, cells, g.Dim); err != nil {
			return err
		}
	}
	mesh.ReorderToCanonical(cells, &sub, g.Dim)
	if err := g.sink.Construct(vertices, cells, sub); err != nil {
		return err
	}
	if len(opt.vertexBoundaryIDs) > 0 {
		setter, ok := g.sink.(mesh.VertexBoundarySetter)
		if !ok {
			return fmt.Errorf("mesh carries vertex boundary ids but the attached sink cannot store them")
		}
		return setter.SetVertexBoundaryIDs(opt.vertexBoundaryIDs)
	}
	return nil
}
