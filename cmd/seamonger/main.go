// Package main is the entry point for the seamonger procurement service.
package main

import (
	"os"

	"github.com/seamonger/procurement/cmd/seamonger/commands"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)

	// Errors are printed by the printer package.
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
