package monitor

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/kyleseneker/fanomon/internal/fanotify"
)

func TestWriteEvent(t *testing.T) {
	ts := time.Date(2026, time.March, 5, 14, 30, 9, 0, time.UTC)
	ev := fanotify.Event{PID: 4242, Mask: unix.FAN_OPEN | unix.FAN_CLOSE_NOWRITE}

	var buf bytes.Buffer
	writeEvent(&buf, ts, &ev, resolved{path: "/srv/data/report.txt", cmdline: "less /srv/data/report.txt"})

	want := strings.Join([]string{
		"Thu Mar  5 14:30:09 2026 [4242] Event on '/srv/data/report.txt':",
		"Thu Mar  5 14:30:09 2026 [4242] Event: FAN_OPEN FAN_CLOSE_NOWRITE",
		"Thu Mar  5 14:30:09 2026 [4242] Cmdline: less /srv/data/report.txt",
		"",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Errorf("writeEvent output:\n%q\nwant:\n%q", got, want)
	}
}

func TestWriteEventUnknownContext(t *testing.T) {
	ev := fanotify.Event{PID: 1, Mask: unix.FAN_MODIFY}

	var buf bytes.Buffer
	writeEvent(&buf, time.Unix(0, 0).UTC(), &ev, resolved{path: unknown, cmdline: unknown})

	got := buf.String()
	if !strings.Contains(got, "Event on 'unknown':") {
		t.Errorf("output missing unknown path placeholder:\n%s", got)
	}
	if !strings.Contains(got, "Cmdline: unknown") {
		t.Errorf("output missing unknown cmdline placeholder:\n%s", got)
	}
}

func TestResolveFallsBackToUnknown(t *testing.T) {
	// An event without a descriptor (FAN_NOFD) and with a pid that cannot
	// exist resolves to placeholders, never to an error.
	ev := decodeOne(t, unix.FAN_MODIFY, -1, 0)
	c := resolve(&ev)
	if c.path != unknown {
		t.Errorf("path = %q, want %q", c.path, unknown)
	}
	if c.cmdline != unknown {
		t.Errorf("cmdline = %q, want %q", c.cmdline, unknown)
	}
}
