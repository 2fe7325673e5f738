package main

import (
	"os"

	"github.com/kyleseneker/fanomon/internal/cli"
)

func main() {
	// Termination signals are routed through the dispatch loop's poll
	// set, not through a context; see internal/sigfd.
	os.Exit(cli.Run(os.Args[1:], os.Stdout, os.Stderr))
}
