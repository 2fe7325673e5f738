// Package mask translates symbolic fanotify event names into the kernel's
// mask bits and renders fired bits back into names.
package mask

import (
	"strings"

	"golang.org/x/sys/unix"
)

// namespace is the optional prefix tolerated on event names, so both
// "modify" and "FAN_MODIFY" resolve to the same bit.
const namespace = "FAN_"

// table lists the recognized event names in declaration order.
var table = []struct {
	name string
	bit  uint64
}{
	{"ACCESS", unix.FAN_ACCESS},
	{"MODIFY", unix.FAN_MODIFY},
	{"CLOSE_WRITE", unix.FAN_CLOSE_WRITE},
	{"CLOSE_NOWRITE", unix.FAN_CLOSE_NOWRITE},
	{"OPEN", unix.FAN_OPEN},
	{"ONDIR", unix.FAN_ONDIR},
	{"EVENT_ON_CHILD", unix.FAN_EVENT_ON_CHILD},
}

// rendered is the subset of flags reported per event, in the order they
// are printed. ONDIR and EVENT_ON_CHILD only shape what gets marked and
// never appear on delivered events.
var rendered = []struct {
	name string
	bit  uint64
}{
	{"FAN_OPEN", unix.FAN_OPEN},
	{"FAN_ACCESS", unix.FAN_ACCESS},
	{"FAN_MODIFY", unix.FAN_MODIFY},
	{"FAN_CLOSE_WRITE", unix.FAN_CLOSE_WRITE},
	{"FAN_CLOSE_NOWRITE", unix.FAN_CLOSE_NOWRITE},
}

// Directive is one ordered +e/-e adjustment from the command line.
type Directive struct {
	Add  bool
	Name string
}

// Default returns the built-in starting mask: every recognized event kind,
// including the two directory meta-flags.
func Default() uint64 {
	var m uint64
	for _, e := range table {
		m |= e.bit
	}
	return m
}

// Lookup resolves an event name to its mask bit. Matching is
// case-insensitive and skips past an optional FAN_ namespace prefix.
// Unknown names return 0; the caller decides whether that is worth a
// warning.
func Lookup(name string) uint64 {
	body := name
	if idx := strings.Index(strings.ToUpper(name), namespace); idx >= 0 {
		body = name[idx+len(namespace):]
	}
	for _, e := range table {
		if strings.EqualFold(body, e.name) {
			return e.bit
		}
	}
	return 0
}

// Apply folds the directives into m in order. Unrecognized names are
// no-ops; they are returned so the caller can warn about them.
func Apply(m uint64, dirs []Directive) (uint64, []string) {
	var unknown []string
	for _, d := range dirs {
		bit := Lookup(d.Name)
		if bit == 0 {
			unknown = append(unknown, d.Name)
			continue
		}
		if d.Add {
			m |= bit
		} else {
			m &^= bit
		}
	}
	return m, unknown
}

// Describe returns the names of the fired render-subset bits in m, in
// declaration order.
func Describe(m uint64) []string {
	var names []string
	for _, e := range rendered {
		if m&e.bit != 0 {
			names = append(names, e.name)
		}
	}
	return names
}

// Names returns every recognized event name, for usage text.
func Names() []string {
	names := make([]string, len(table))
	for i, e := range table {
		names[i] = e.name
	}
	return names
}
