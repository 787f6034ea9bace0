// Package main is the entry point for the csvpatch binary.
package main

import (
	"os"

	"github.com/leengari/csvpatch/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
