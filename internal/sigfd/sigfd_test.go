package sigfd

import (
	"os"
	"syscall"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

// waitReadable polls fd until it has data or the deadline passes.
func waitReadable(t *testing.T, fd int, timeout time.Duration) {
	t.Helper()
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	deadline := time.Now().Add(timeout)
	for {
		n, err := unix.Poll(fds, 100)
		if err != nil && err != unix.EINTR {
			t.Fatalf("poll: %v", err)
		}
		if n > 0 && fds[0].Revents&unix.POLLIN != 0 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("descriptor never became readable")
		}
	}
}

func TestSignalBecomesRecord(t *testing.T) {
	n, err := New(syscall.SIGUSR1)
	if err != nil {
		t.Fatal(err)
	}
	defer n.Close()

	if err := unix.Kill(os.Getpid(), syscall.SIGUSR1); err != nil {
		t.Fatal(err)
	}

	waitReadable(t, n.FD(), 5*time.Second)
	sig, err := n.Read()
	if err != nil {
		t.Fatalf("Read() = %v", err)
	}
	if sig != syscall.SIGUSR1 {
		t.Errorf("Read() = %v, want SIGUSR1", sig)
	}
}

func TestRecordsArriveInOrder(t *testing.T) {
	n, err := New(syscall.SIGUSR1, syscall.SIGUSR2)
	if err != nil {
		t.Fatal(err)
	}
	defer n.Close()

	if err := unix.Kill(os.Getpid(), syscall.SIGUSR1); err != nil {
		t.Fatal(err)
	}
	waitReadable(t, n.FD(), 5*time.Second)
	if err := unix.Kill(os.Getpid(), syscall.SIGUSR2); err != nil {
		t.Fatal(err)
	}

	first, err := n.Read()
	if err != nil {
		t.Fatalf("first Read() = %v", err)
	}
	waitReadable(t, n.FD(), 5*time.Second)
	second, err := n.Read()
	if err != nil {
		t.Fatalf("second Read() = %v", err)
	}
	if first != syscall.SIGUSR1 || second != syscall.SIGUSR2 {
		t.Errorf("records = %v, %v; want SIGUSR1, SIGUSR2", first, second)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	n, err := New(syscall.SIGUSR1)
	if err != nil {
		t.Fatal(err)
	}
	if err := n.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
	if err := n.Close(); err != nil {
		t.Errorf("second Close() = %v, want no-op", err)
	}
}

// TestCloseReleasesWriteEnd checks the descriptor handoff: Close stops
// the bridge, and the bridge goroutine closes the write end on its way
// out rather than having it yanked away mid-write.
func TestCloseReleasesWriteEnd(t *testing.T) {
	n, err := New(syscall.SIGUSR1)
	if err != nil {
		t.Fatal(err)
	}
	w := n.w
	if err := n.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := unix.FcntlInt(uintptr(w), unix.F_GETFD, 0); err == unix.EBADF {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("write end still open after Close")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestReadAfterCloseFails(t *testing.T) {
	n, err := New(syscall.SIGUSR1)
	if err != nil {
		t.Fatal(err)
	}
	n.Close()
	if _, err := n.Read(); err == nil {
		t.Error("Read() after Close succeeded, want error")
	}
}
