package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/magiconair/properties/assert"
)

func TestInputParameters(t *testing.T) {
	var (
		err error
	)
	fileInput := []byte(`
Title: Test Mesh
Dim: 3
SpaceDim: 3
Format: ucd
ApplyIndicatorsToManifolds: true
`)
	var input InputParameters
	if err = input.Parse(fileInput); err != nil {
		panic(err)
	}
	assert.Equal(t, input.Dim, 3)
	assert.Equal(t, input.SpaceDim, 3)
	assert.Equal(t, input.Format, "ucd")
	assert.Equal(t, input.ApplyIndicatorsToManifolds, true)
	input.Print()
	assert.Equal(t, input.Title, "Test Mesh")
}

func TestRunInfo(t *testing.T) {
	meshFile := filepath.Join(t.TempDir(), "square.inp")
	content := `4 1 0 0 0
1 0.0 0.0 0.0
2 1.0 0.0 0.0
3 1.0 1.0 0.0
4 0.0 1.0 0.0
1 7 quad 1 2 3 4
`
	if err := os.WriteFile(meshFile, []byte(content), 0644); err != nil {
		panic(err)
	}

	mi := &MeshInfo{MeshFile: meshFile}
	ip := &InputParameters{Dim: 2, SpaceDim: 2, Format: "auto"}
	var buf bytes.Buffer
	if err := RunInfo(mi, ip, &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	assert.Equal(t, strings.Contains(out, "Number of cells   : 1"), true)
	assert.Equal(t, strings.Contains(out, "Number of vertices: 4"), true)
}
