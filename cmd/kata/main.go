// Package main is the entry point for the kata CLI.
package main

import (
	"os"

	"github.com/gannonh/kata/cmd/kata/commands"
	"github.com/gannonh/kata/internal/errors"
)

func main() {
	if err := commands.Execute(); err != nil {
		commands.PrintError(os.Stderr, err)
		os.Exit(errors.ExitCode(err))
	}
}
