// Package main provides the entry point for the opengrid CLI.
package main

import (
	"os"

	"github.com/randalmurphal/opengrid/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
