package monitor

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kyleseneker/fanomon/internal/fanotify"
	"github.com/kyleseneker/fanomon/internal/mask"
	"github.com/kyleseneker/fanomon/internal/procfs"
)

// unknown is rendered when fd-to-path or pid-to-cmdline resolution fails.
const unknown = "unknown"

// resolved is the auxiliary information looked up for one event.
type resolved struct {
	path    string
	cmdline string
}

// resolve looks up the event's path and command line, substituting the
// placeholder when either lookup fails. Both lookups run before the
// event's descriptor is released.
func resolve(ev *fanotify.Event) resolved {
	c := resolved{path: unknown, cmdline: unknown}
	if ev.HasFD() {
		if p, err := procfs.PathForFD(ev.FD()); err == nil {
			c.path = p
		}
	}
	if cmd, err := procfs.Cmdline(ev.PID); err == nil {
		c.cmdline = cmd
	}
	return c
}

// writeEvent renders one event block. The field order is fixed:
// timestamp, pid, path, fired flags in declaration order, pid again, and
// the command line, followed by a blank separator line.
func writeEvent(w io.Writer, ts time.Time, ev *fanotify.Event, c resolved) {
	stamp := ts.Format(time.ANSIC)
	fmt.Fprintf(w, "%s [%d] Event on '%s':\n", stamp, ev.PID, c.path)
	fmt.Fprintf(w, "%s [%d] Event: %s\n", stamp, ev.PID, strings.Join(mask.Describe(ev.Mask), " "))
	fmt.Fprintf(w, "%s [%d] Cmdline: %s\n\n", stamp, ev.PID, c.cmdline)
}
