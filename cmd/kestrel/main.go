package main

import (
	"os"

	"github.com/kestrelrun/kestrel/internal/cliapp"
)

// main is a deterministic boundary: all CLI parsing and dispatch happens
// inside cliapp.Execute, which returns the process exit code directly.
func main() {
	os.Exit(cliapp.Execute())
}
