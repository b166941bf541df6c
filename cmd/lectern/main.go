// Command lectern is the entry point for the course-materials assistant.
// It provides a CLI interface (via Cobra) and an HTTP server exposing the
// assistant as a JSON API.
package main

import (
	"fmt"
	"os"

	"github.com/lectern-ai/lectern-go/cmd/lectern/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
