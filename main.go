package main

import "github.com/fempack/gridio/cmd"

func main() {
	cmd.Execute()
}
