// Package main is the entry point for the indexlens CLI.
package main

import (
	"os"

	"github.com/indexlens/indexlens/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
