// Package procfs resolves per-event context from /proc: the path behind a
// kernel-attached descriptor and the command line of the accessing
// process. Failures are ordinary errors; callers render a placeholder
// instead of treating them as fatal, since the file or the process may
// legitimately be gone by the time the event is processed.
package procfs

import (
	"bytes"
	"fmt"
	"os"
)

// PathForFD resolves the object behind an open descriptor through the
// /proc/self/fd indirection. Descriptor zero is a valid target; only
// negative values, the marker for events delivered without a descriptor,
// are rejected outright.
func PathForFD(fd int32) (string, error) {
	if fd < 0 {
		return "", fmt.Errorf("procfs: invalid descriptor %d", fd)
	}
	path, err := os.Readlink(fmt.Sprintf("/proc/self/fd/%d", fd))
	if err != nil {
		return "", fmt.Errorf("procfs: resolving descriptor %d: %w", fd, err)
	}
	return path, nil
}

// Cmdline returns the invocation line of pid with the NUL argument
// separators replaced by spaces and trailing NULs dropped. Exited
// processes and kernel threads (which expose an empty cmdline) fail.
func Cmdline(pid int32) (string, error) {
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/cmdline", pid))
	if err != nil {
		return "", fmt.Errorf("procfs: cmdline of pid %d: %w", pid, err)
	}
	data = bytes.TrimRight(data, "\x00")
	if len(data) == 0 {
		return "", fmt.Errorf("procfs: pid %d has no cmdline", pid)
	}
	return string(bytes.ReplaceAll(data, []byte{0}, []byte{' '})), nil
}
