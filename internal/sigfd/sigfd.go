// Package sigfd exposes termination signals as a pollable descriptor.
// Each delivered signal becomes one readable record on a pipe, so
// shutdown is just another input source for the dispatch loop's poll set
// and is never observed in the middle of decoding a buffer.
package sigfd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"
)

// Notifier bridges os/signal delivery onto a pipe. The read end joins a
// poll set; Read consumes one signal record at a time.
type Notifier struct {
	r, w   int
	ch     chan os.Signal
	done   chan struct{}
	closed bool
}

// New registers the given signals and starts the bridge. The signals stop
// interrupting the process asynchronously and instead appear as records
// on the descriptor.
func New(signals ...os.Signal) (*Notifier, error) {
	var p [2]int
	if err := unix.Pipe2(p[:], unix.O_CLOEXEC); err != nil {
		return nil, fmt.Errorf("sigfd: pipe: %w", err)
	}
	n := &Notifier{r: p[0], w: p[1], ch: make(chan os.Signal, 4), done: make(chan struct{})}
	signal.Notify(n.ch, signals...)
	go n.pump()
	return n, nil
}

// pump forwards each delivered signal as a single byte carrying its
// number. A failed write means the read side has shut down, which only
// happens once the loop no longer cares.
//
// The write end belongs to this goroutine and is closed only on its way
// out, so Close can never invalidate the descriptor under an in-flight
// write.
func (n *Notifier) pump() {
	defer unix.Close(n.w)
	for {
		select {
		case sig := <-n.ch:
			num, ok := sig.(syscall.Signal)
			if !ok {
				continue
			}
			buf := [1]byte{byte(num)}
			_, _ = unix.Write(n.w, buf[:])
		case <-n.done:
			return
		}
	}
}

// FD returns the pollable read end of the bridge.
func (n *Notifier) FD() int {
	return n.r
}

// Read consumes exactly one signal record. A short or failed read means
// the bridge protocol is broken; callers treat that as fatal.
func (n *Notifier) Read() (os.Signal, error) {
	var buf [1]byte
	nr, err := unix.Read(n.r, buf[:])
	if err != nil {
		return nil, fmt.Errorf("sigfd: reading signal record: %w", err)
	}
	if nr != 1 {
		return nil, fmt.Errorf("sigfd: short read of signal record")
	}
	return syscall.Signal(buf[0]), nil
}

// Close unregisters the signals, stops the bridge, and releases the read
// end; the bridge goroutine releases the write end as it exits. Later
// calls are no-ops.
func (n *Notifier) Close() error {
	if n.closed {
		return nil
	}
	n.closed = true
	signal.Stop(n.ch)
	close(n.done)
	return unix.Close(n.r)
}
