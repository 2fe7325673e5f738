// Package cli implements the fanomon command-line interface.
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/kyleseneker/fanomon/internal/doctor"
	"github.com/kyleseneker/fanomon/internal/mask"
)

// Version is set at build time via ldflags:
//
//	go build -ldflags "-X github.com/kyleseneker/fanomon/internal/cli.Version=v0.1.0"
var Version = "(dev)"

// Run is the top-level entrypoint.
func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return 2
	}

	switch args[0] {
	case "help", "--help", "-h":
		printUsage(stdout)
		return 0
	case "doctor":
		return runDoctor(stdout, stderr)
	case "version", "--version", "-version":
		return runVersion(stdout)
	default:
		return runMonitor(args, stdout, stderr)
	}
}

// printUsage prints the usage information for the CLI.
func printUsage(w io.Writer) {
	fmt.Fprintf(w, `fanomon %s — watch filesystem activity with fanotify

Usage:
  fanomon [-config FILE] [-quiet] [+e NAME | -e NAME]... dir1 [dir2 ...]
  fanomon doctor                    Check kernel and /proc support
  fanomon version                   Print version information
  fanomon help                      Show this message

Event names (case-insensitive, optional FAN_ prefix):
  %s

+e NAME adds an event kind to the mask and -e NAME removes one; if the
very first argument is +e, the mask starts empty instead of with every
event kind. Each delivered event is printed with its timestamp, pid,
resolved path, fired flags, and the accessing program's command line.
`, Version, strings.Join(mask.Names(), ", "))
}

// runVersion prints the version information for the CLI.
func runVersion(stdout io.Writer) int {
	fmt.Fprintf(stdout, "fanomon %s\n", Version)
	return 0
}

// runDoctor runs the environment preflight. Warnings do not fail it.
func runDoctor(stdout, stderr io.Writer) int {
	if err := doctor.Run(doctor.Config{Stdout: stdout, Stderr: stderr}); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// cliErrorf prints a formatted error message and returns exit code 1.
func cliErrorf(w io.Writer, format string, args ...any) int {
	fmt.Fprintf(w, "error: "+format+"\n", args...)
	return 1
}

// usageErrorf prints a formatted error message, shows the usage, and
// returns exit code 2.
func usageErrorf(w io.Writer, format string, args ...any) int {
	fmt.Fprintf(w, "error: "+format+"\n", args...)
	printUsage(w)
	return 2
}
