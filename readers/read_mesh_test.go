package readers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fempack/gridio/tria"
)

// readGrid parses the given file content and returns the resulting
// triangulation.
func readGrid(t *testing.T, dim, spacedim int, format Format, content string) (*tria.Triangulation, error) {
	t.Helper()
	g, err := NewGridIn(dim, spacedim)
	require.NoError(t, err)
	tri, err := tria.New(dim, spacedim)
	require.NoError(t, err)
	g.AttachSink(tri)
	return tri, g.Read(strings.NewReader(content), format)
}

func TestParseFormat(t *testing.T) {
	for name, want := range map[string]Format{
		"auto":    FormatAuto,
		"":        FormatAuto,
		"msh":     FormatMSH,
		"gmsh":    FormatMSH,
		"ucd":     FormatUCD,
		"inp":     FormatUCD,
		"abaqus":  FormatAbaqus,
		"unv":     FormatUNV,
		"vtk":     FormatVTK,
		"xda":     FormatXDA,
		"netcdf":  FormatNetCDF,
		"nc":      FormatNetCDF,
		"tecplot": FormatTecplot,
		"dat":     FormatTecplot,
		"dbmesh":  FormatDBMesh,
		"assimp":  FormatAssimp,
	} {
		f, err := ParseFormat(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, f, name)
	}
	_, err := ParseFormat("stl")
	assert.Error(t, err)
}

func TestFormatFromSuffix(t *testing.T) {
	for file, want := range map[string]Format{
		"grid.msh":    FormatMSH,
		"grid.MSH":    FormatMSH,
		"grid.vtk":    FormatVTK,
		"grid.unv":    FormatUNV,
		"grid.xda":    FormatXDA,
		"grid.nc":     FormatNetCDF,
		"grid.dat":    FormatTecplot,
		"grid.plt":    FormatTecplot,
		"grid.dbmesh": FormatDBMesh,
		// .inp defaults to UCD; ABAQUS must be requested explicitly.
		"grid.inp": FormatUCD,
	} {
		f, err := formatFromSuffix(file)
		require.NoError(t, err, file)
		assert.Equal(t, want, f, file)
	}
	_, err := formatFromSuffix("grid.mesh")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot determine mesh input format")
}

func TestDefaultSuffix(t *testing.T) {
	assert.Equal(t, ".msh", DefaultSuffix(FormatMSH))
	assert.Equal(t, ".inp", DefaultSuffix(FormatAbaqus))
	assert.Equal(t, "", DefaultSuffix(FormatAuto))
}

func TestReadFileAuto(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "square.inp")
	require.NoError(t, os.WriteFile(file, []byte(minimalUCDSquare), 0644))

	g, err := NewGridIn(2, 2)
	require.NoError(t, err)
	tri, err := tria.New(2, 2)
	require.NoError(t, err)
	g.AttachSink(tri)
	require.NoError(t, g.ReadFile(file, FormatAuto))
	assert.Equal(t, 1, tri.NCells())
	assert.Equal(t, 4, tri.NVertices())
}

func TestReadFileUnknownSuffix(t *testing.T) {
	g, err := NewGridIn(2, 2)
	require.NoError(t, err)
	tri, err := tria.New(2, 2)
	require.NoError(t, err)
	g.AttachSink(tri)
	err = g.ReadFile("mystery.grid", FormatAuto)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot determine mesh input format")
}

func TestStreamOnlyFormats(t *testing.T) {
	g, err := NewGridIn(3, 3)
	require.NoError(t, err)
	tri, err := tria.New(3, 3)
	require.NoError(t, err)
	g.AttachSink(tri)

	err = g.Read(strings.NewReader(""), FormatNetCDF)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "use ReadFile")

	err = g.Read(strings.NewReader(""), FormatAssimp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ReadAssimpFile")
}

func TestAssimpNotSupported(t *testing.T) {
	g, err := NewGridIn(2, 3)
	require.NoError(t, err)
	tri, err := tria.New(2, 3)
	require.NoError(t, err)
	g.AttachSink(tri)
	err = g.ReadAssimpFile("part.stl", AssimpOptions{RemoveDuplicates: true})
	assert.ErrorIs(t, err, ErrNoAssimpSupport)
}

func TestReadWithoutSink(t *testing.T) {
	g, err := NewGridIn(2, 2)
	require.NoError(t, err)
	err = g.Read(strings.NewReader(minimalUCDSquare), FormatUCD)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AttachSink")
}

func TestNewGridInRejectsBadDimensions(t *testing.T) {
	for _, pair := range [][2]int{{0, 2}, {4, 4}, {3, 2}, {2, 4}} {
		_, err := NewGridIn(pair[0], pair[1])
		assert.Error(t, err, "dim=%d spacedim=%d", pair[0], pair[1])
	}
}
