// Package main is the entry point for the tagscrape CLI.
package main

import (
	"os"

	"github.com/jmylchreest/tagscrape/cmd/tagscrape/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
