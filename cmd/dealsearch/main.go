// Package main provides the entry point for the dealsearch CLI.
package main

import (
	"os"

	"github.com/dealsearch/dealsearch/cmd/dealsearch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
