// Package doctor implements the `fanomon doctor` subcommand, which checks
// whether the environment can run the monitor: fanotify availability, the
// privilege it requires, and /proc support for event context resolution.
package doctor

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// Config holds settings for the doctor check.
type Config struct {
	Stdout io.Writer
	Stderr io.Writer
}

// fanotifyInit is the probe used to test fanotify availability.
var fanotifyInit = unix.FanotifyInit

// Run performs the preflight checks and prints a summary. Missing
// capabilities are reported as warnings rather than failures; the point
// of doctor is to explain why the monitor would not start.
func Run(cfg Config) error {
	if cfg.Stdout == nil {
		cfg.Stdout = io.Discard
	}
	if cfg.Stderr == nil {
		cfg.Stderr = io.Discard
	}

	fmt.Fprintln(cfg.Stdout, "fanomon doctor")

	var warnings []string

	euid := os.Geteuid()
	fmt.Fprintf(cfg.Stdout, "  %-14s euid %d\n", "privilege:", euid)
	if euid != 0 {
		warnings = append(warnings,
			"not running as root; fanotify_init(2) requires CAP_SYS_ADMIN")
	}

	fd, err := fanotifyInit(unix.FAN_CLOEXEC|unix.FAN_CLASS_NOTIF,
		unix.O_RDONLY|unix.O_CLOEXEC|unix.O_LARGEFILE)
	if err != nil {
		fmt.Fprintf(cfg.Stdout, "  %-14s unavailable (%v)\n", "fanotify:", err)
		warnings = append(warnings,
			fmt.Sprintf("fanotify_init failed: %v; the monitor cannot start", err))
	} else {
		unix.Close(fd)
		fmt.Fprintf(cfg.Stdout, "  [OK]   %s\n", "fanotify: notification descriptor created")
	}

	if _, err := os.Readlink("/proc/self/fd/0"); err != nil {
		fmt.Fprintf(cfg.Stdout, "  %-14s fd resolution unavailable (%v)\n", "proc:", err)
		warnings = append(warnings,
			"cannot readlink /proc/self/fd; event paths would render as unknown")
	} else {
		fmt.Fprintf(cfg.Stdout, "  [OK]   %s\n", "proc: descriptor-to-path resolution works")
	}

	if _, err := os.ReadFile("/proc/self/cmdline"); err != nil {
		fmt.Fprintf(cfg.Stdout, "  %-14s cmdline resolution unavailable (%v)\n", "proc:", err)
		warnings = append(warnings,
			"cannot read /proc/<pid>/cmdline; command lines would render as unknown")
	} else {
		fmt.Fprintf(cfg.Stdout, "  [OK]   %s\n", "proc: pid-to-cmdline resolution works")
	}

	printSummary(cfg.Stdout, warnings)
	return nil
}

// printSummary outputs the warnings list and final status.
func printSummary(w io.Writer, warnings []string) {
	if len(warnings) > 0 {
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, "warnings:")
		for _, msg := range warnings {
			fmt.Fprintf(w, "  - %s\n", msg)
		}
	}
	fmt.Fprintln(w, "")
	if len(warnings) == 0 {
		fmt.Fprintln(w, "all checks passed")
	} else {
		fmt.Fprintf(w, "%d warning(s); see above\n", len(warnings))
	}
}
