// Package main is the entry point for debtpilot-cli.
package main

import (
	"os"

	"debtpilot/cmd/debtpilot-cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
