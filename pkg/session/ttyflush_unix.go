//go:build !windows
// +build !windows

package session

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// flushTTYInput drops unread bytes queued on the controlling terminal before
// ssh takes it over: stray keystrokes typed during the passphrase prompt, or
// terminal replies (OSC/DSR) that would otherwise arrive as typed input.
//
// Best-effort; a missing /dev/tty makes it a no-op.
func flushTTYInput() {
	tty, err := os.OpenFile("/dev/tty", os.O_RDONLY, 0)
	if err != nil {
		return
	}
	defer func() { _ = tty.Close() }()

	fd := int(tty.Fd())

	// tcflush(fd, TCIFLUSH) via ioctl(TCFLSH). Where the request number differs
	// the ioctl just fails and the drain below still runs.
	const tcflsh = 0x540B
	_, _, _ = unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(tcflsh), uintptr(unix.TCIFLUSH))

	// Replies can land right after the flush; drain briefly without blocking.
	_ = unix.SetNonblock(fd, true)
	defer func() { _ = unix.SetNonblock(fd, false) }()

	deadline := time.Now().Add(100 * time.Millisecond)
	buf := make([]byte, 512)
	for time.Now().Before(deadline) {
		n, _ := unix.Read(fd, buf)
		if n > 0 {
			deadline = time.Now().Add(50 * time.Millisecond)
			continue
		}
		// EAGAIN: queue is empty.
		break
	}
}
