// Package main is the entry point for the frogfind CLI.
package main

import (
	"os"

	"github.com/jmylchreest/frogfind/cmd/frogfind/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
