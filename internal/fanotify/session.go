// Package fanotify owns the kernel notification session: the fanotify
// descriptor, the set of marked directories, and the decoding of the event
// records the kernel delivers on it.
package fanotify

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// MarkError reports a failed mark operation on one path.
type MarkError struct {
	Path string
	Err  error
}

// Error formats the failing path together with the underlying OS error.
func (e *MarkError) Error() string {
	return fmt.Sprintf("marking %q: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is/As.
func (e *MarkError) Unwrap() error {
	return e.Err
}

// Session is the process-wide notification handle plus the directories
// marked on it. Exactly one session exists per run; it owns the descriptor
// and the path list from Open until Close.
type Session struct {
	fd     int
	paths  []string
	mask   uint64
	closed bool
}

// Open creates the notification descriptor and marks every path with the
// shared event mask. If any mark fails, the descriptor is closed before
// returning — which drops the marks already registered, so no partial
// state survives — and the error identifies the failing path.
func Open(paths []string, eventMask uint64) (*Session, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("fanotify: no paths to mark")
	}
	fd, err := unix.FanotifyInit(unix.FAN_CLOEXEC|unix.FAN_CLASS_NOTIF,
		unix.O_RDONLY|unix.O_CLOEXEC|unix.O_LARGEFILE)
	if err != nil {
		return nil, fmt.Errorf("fanotify_init: %w", err)
	}
	s := &Session{fd: fd, mask: eventMask}
	for _, p := range paths {
		if err := unix.FanotifyMark(fd, unix.FAN_MARK_ADD, eventMask, unix.AT_FDCWD, p); err != nil {
			unix.Close(fd)
			return nil, &MarkError{Path: p, Err: err}
		}
		s.paths = append(s.paths, p)
	}
	return s, nil
}

// FD returns the pollable notification descriptor.
func (s *Session) FD() int {
	return s.fd
}

// Paths returns the marked directories in registration order.
func (s *Session) Paths() []string {
	return s.paths
}

// Mask returns the event mask shared by every mark.
func (s *Session) Mask() uint64 {
	return s.mask
}

// Close removes the mark on every path using the identical mask supplied
// at registration (removal with a different mask would be a kernel-level
// no-op), then releases the descriptor. Later calls are no-ops.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	var first error
	for _, p := range s.paths {
		if err := unix.FanotifyMark(s.fd, unix.FAN_MARK_REMOVE, s.mask, unix.AT_FDCWD, p); err != nil && first == nil {
			first = &MarkError{Path: p, Err: err}
		}
	}
	if err := unix.Close(s.fd); err != nil && first == nil {
		first = fmt.Errorf("closing fanotify descriptor: %w", err)
	}
	return first
}
