package fanotify

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/sys/unix"
)

// BufferSize bounds a single read from the notification descriptor. One
// read may carry many event records back to back.
const BufferSize = 8192

// metadataSize is the wire size of struct fanotify_event_metadata
// (unix.FanotifyEventMetadata): u32 event_len, u8 vers, u8 reserved,
// u16 metadata_len, u64 mask, s32 fd, s32 pid.
const metadataSize = 24

// noFD marks an event whose descriptor has been released or was never
// attached (unix.FAN_NOFD).
const noFD = -1

// Event is one decoded notification record. The kernel attaches an open
// descriptor for the accessed object; the consumer must release it exactly
// once via Close. Events must not be copied after the first Close.
type Event struct {
	PID  int32
	Mask uint64
	fd   int32
}

// FD returns the kernel-attached descriptor, or a negative value if the
// event carries none.
func (e *Event) FD() int32 {
	return e.fd
}

// HasFD reports whether the event still holds a usable descriptor.
func (e *Event) HasFD() bool {
	return e.fd >= 0
}

// Close releases the attached descriptor. The first call closes it; every
// later call is a no-op, so Close is safe on all exit paths.
func (e *Event) Close() error {
	if e.fd < 0 {
		return nil
	}
	fd := int(e.fd)
	e.fd = noFD
	return unix.Close(fd)
}

// Cursor walks one read's worth of event records. It is finite, in-order,
// and non-restartable, and it never interprets bytes beyond what the
// well-formedness check has validated.
type Cursor struct {
	buf []byte
	off int
	err error
}

// Events returns a cursor over a filled read buffer.
func Events(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Next decodes the next record. It returns false at end of buffer, when
// the remainder is not a well-formed record (a truncated tail is silently
// dropped, mirroring the kernel's FAN_EVENT_OK guarantee that reads never
// split a record), or on a metadata version mismatch reported via Err.
func (c *Cursor) Next() (Event, bool) {
	rem := c.buf[c.off:]
	if len(rem) < metadataSize {
		return Event{}, false
	}
	eventLen := int(binary.LittleEndian.Uint32(rem[0:4]))
	if eventLen < metadataSize || eventLen > len(rem) {
		return Event{}, false
	}
	if vers := rem[4]; vers != unix.FANOTIFY_METADATA_VERSION {
		c.err = fmt.Errorf("fanotify: metadata version %d, want %d", vers, unix.FANOTIFY_METADATA_VERSION)
		return Event{}, false
	}
	ev := Event{
		Mask: binary.LittleEndian.Uint64(rem[8:16]),
		fd:   int32(binary.LittleEndian.Uint32(rem[16:20])),
		PID:  int32(binary.LittleEndian.Uint32(rem[20:24])),
	}
	c.off += eventLen
	return ev, true
}

// Err reports a protocol-level decode failure, if any. Err returning nil
// after Next returns false means the buffer was drained cleanly.
func (c *Cursor) Err() error {
	return c.err
}
