// Package monitor runs the dispatch loop: one blocking poll over the
// signal descriptor and the notification descriptor, draining and
// rendering kernel events until a termination signal arrives.
package monitor

import (
	"bufio"
	"fmt"
	"io"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/kyleseneker/fanomon/internal/fanotify"
	"github.com/kyleseneker/fanomon/internal/sigfd"
)

// Config wires the dispatch loop's collaborators together.
type Config struct {
	Session *fanotify.Session
	Signals *sigfd.Notifier
	// Out receives the rendered event stream. It is flushed after each
	// read's batch.
	Out io.Writer
	Log *zap.Logger
	// Now is the render timestamp source; defaults to time.Now.
	Now func() time.Time
}

// Run blocks until a termination signal is observed or a fatal error
// occurs. On clean shutdown the session and the signal bridge are closed
// in that order, mirroring setup in reverse; the session close removes
// every mark with the mask used at registration.
func Run(cfg Config) error {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	out := bufio.NewWriter(cfg.Out)

	// Poll slots, checked in this order.
	const (
		slotSignal = iota
		slotNotify
	)
	fds := []unix.PollFd{
		{Fd: int32(cfg.Signals.FD()), Events: unix.POLLIN},
		{Fd: int32(cfg.Session.FD()), Events: unix.POLLIN},
	}
	buf := make([]byte, fanotify.BufferSize)

loop:
	for {
		if _, err := unix.Poll(fds, -1); err != nil {
			if err == unix.EINTR {
				continue
			}
			return fmt.Errorf("poll: %w", err)
		}

		if fds[slotSignal].Revents&unix.POLLIN != 0 {
			sig, err := cfg.Signals.Read()
			if err != nil {
				return err
			}
			switch sig {
			case syscall.SIGINT, syscall.SIGTERM:
				cfg.Log.Info("termination signal observed", zap.Stringer("signal", sig))
				break loop
			default:
				cfg.Log.Warn("ignoring unexpected signal", zap.String("signal", sig.String()))
			}
		}

		if fds[slotNotify].Revents&unix.POLLIN != 0 {
			n, err := unix.Read(cfg.Session.FD(), buf)
			if err != nil {
				// A failed or empty read means no events this wakeup.
				if err != unix.EINTR && err != unix.EAGAIN {
					cfg.Log.Warn("reading notification descriptor", zap.Error(err))
				}
				continue
			}
			if n > 0 {
				drain(buf[:n], out, &cfg)
			}
		}
	}

	var first error
	if err := cfg.Session.Close(); err != nil {
		first = err
	}
	if err := cfg.Signals.Close(); err != nil && first == nil {
		first = err
	}
	return first
}

// drain decodes one read's worth of records in arrival order, renders
// each event, and releases every attached descriptor exactly once.
func drain(b []byte, out *bufio.Writer, cfg *Config) {
	cur := fanotify.Events(b)
	for {
		ev, ok := cur.Next()
		if !ok {
			break
		}
		writeEvent(out, cfg.Now(), &ev, resolve(&ev))
		if err := ev.Close(); err != nil {
			cfg.Log.Debug("closing event descriptor", zap.Error(err))
		}
	}
	if err := cur.Err(); err != nil {
		// Later reads are framed independently, so drop the rest of
		// this buffer instead of exiting.
		cfg.Log.Error("decoding event buffer", zap.Error(err))
	}
	if err := out.Flush(); err != nil {
		cfg.Log.Warn("flushing output", zap.Error(err))
	}
}
