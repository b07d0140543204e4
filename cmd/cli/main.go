// Package main is the entry point for the cubemap CLI binary.
package main

import (
	"os"

	cli "cubemap/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
