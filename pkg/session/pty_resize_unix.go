//go:build !windows
// +build !windows

package session

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/creack/pty"
	"golang.org/x/term"
)

// startPTYResizeWatcher copies size changes of the user's terminal (out)
// into ptmx until the returned stop func is called.
func startPTYResizeWatcher(ptmx, out *os.File) func() {
	winchCh := make(chan os.Signal, 1)
	signal.Notify(winchCh, syscall.SIGWINCH)
	stopCh := make(chan struct{})

	go func() {
		defer signal.Stop(winchCh)
		for {
			select {
			case <-winchCh:
				if cols, rows, err := term.GetSize(int(out.Fd())); err == nil && rows > 0 && cols > 0 {
					_ = pty.Setsize(ptmx, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
				}
			case <-stopCh:
				return
			}
		}
	}()

	return func() { close(stopCh) }
}
