/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/ghodss/yaml"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/fempack/gridio/readers"
	"github.com/fempack/gridio/tria"
)

type MeshInfo struct {
	MeshFile  string
	ParamFile string
}

type InputParameters struct {
	Title                      string `yaml:"Title"`
	Dim                        int    `yaml:"Dim"`
	SpaceDim                   int    `yaml:"SpaceDim"`
	Format                     string `yaml:"Format"`
	ApplyIndicatorsToManifolds bool   `yaml:"ApplyIndicatorsToManifolds"`
}

func (ip *InputParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func (ip *InputParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%d]\t\t\t= Dim\n", ip.Dim)
	fmt.Printf("[%d]\t\t\t= SpaceDim\n", ip.SpaceDim)
	fmt.Printf("[%s]\t\t\t= Format\n", ip.Format)
	fmt.Printf("[%v]\t\t\t= ApplyIndicatorsToManifolds\n", ip.ApplyIndicatorsToManifolds)
}

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Read a mesh file and print its statistics",
	Long: `Read a mesh file in any of the supported formats, run the full
cleanup pipeline on it and print vertex, cell and boundary statistics.`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
		)
		mi := &MeshInfo{}
		if mi.MeshFile, err = cmd.Flags().GetString("meshFile"); err != nil {
			panic(err)
		}
		if mi.ParamFile, err = cmd.Flags().GetString("inputParametersFile"); err != nil {
			panic(err)
		}
		ip := processMeshInput(cmd, mi)
		if prof, _ := cmd.Flags().GetBool("profile"); prof {
			defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
		}
		if err = RunInfo(mi, ip, os.Stdout); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

func processMeshInput(cmd *cobra.Command, mi *MeshInfo) (ip *InputParameters) {
	var (
		err error
	)
	if len(mi.MeshFile) == 0 {
		err = fmt.Errorf("must supply a mesh file (-F, --meshFile)")
		fmt.Printf("error: %s\n", err.Error())
		exampleFile := `
########################################
Title: "Channel grid"
Dim: 2
SpaceDim: 2
Format: msh # or auto, ucd, abaqus, unv, vtk, xda, netcdf, tecplot, dbmesh
########################################
`
		fmt.Printf("Example parameters file:%s\n", exampleFile)
		os.Exit(1)
	}
	ip = &InputParameters{Dim: 2, SpaceDim: 2, Format: "auto"}
	if len(mi.ParamFile) != 0 {
		var data []byte
		if data, err = ioutil.ReadFile(mi.ParamFile); err != nil {
			panic(err)
		}
		if err = ip.Parse(data); err != nil {
			panic(err)
		}
	}
	// Command line flags override the parameters file.
	if cmd.Flags().Changed("dim") {
		ip.Dim, _ = cmd.Flags().GetInt("dim")
	}
	if cmd.Flags().Changed("spacedim") {
		ip.SpaceDim, _ = cmd.Flags().GetInt("spacedim")
	}
	if cmd.Flags().Changed("format") {
		ip.Format, _ = cmd.Flags().GetString("format")
	}
	if ip.SpaceDim < ip.Dim {
		ip.SpaceDim = ip.Dim
	}
	return
}

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.Flags().StringP("meshFile", "F", "", "Mesh file to read")
	infoCmd.Flags().StringP("inputParametersFile", "I", "", "YAML file with input parameters like:\n\t- Dim\n\t- Format")
	infoCmd.Flags().IntP("dim", "d", 2, "dimension of the cells in the mesh")
	infoCmd.Flags().IntP("spacedim", "s", 2, "dimension of the space the mesh is embedded in")
	infoCmd.Flags().StringP("format", "f", "auto", "mesh file format, auto selects by file suffix")
}

// RunInfo reads the mesh named by mi according to ip and writes the
// triangulation statistics to w.
func RunInfo(mi *MeshInfo, ip *InputParameters, w io.Writer) error {
	g, err := readers.NewGridIn(ip.Dim, ip.SpaceDim)
	if err != nil {
		return err
	}
	g.ApplyAllIndicatorsToManifolds = ip.ApplyIndicatorsToManifolds
	tri, err := tria.New(ip.Dim, ip.SpaceDim)
	if err != nil {
		return err
	}
	g.AttachSink(tri)

	format, err := readers.ParseFormat(ip.Format)
	if err != nil {
		return err
	}
	if err = g.ReadFile(mi.MeshFile, format); err != nil {
		return err
	}

	fmt.Fprintf(w, "Mesh file         : %s (%s)\n", mi.MeshFile, format)
	tri.PrintStatistics(w)
	return nil
}
