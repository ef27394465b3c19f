// Command alfred is the entry point for the Alfred course assistant.
// It provides a CLI interface (via Cobra) and an HTTP server that answers
// questions about ingested HAX course sites.
package main

import (
	"fmt"
	"os"

	"github.com/haxtheweb/alfred-go/cmd/alfred/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
