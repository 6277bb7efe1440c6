//go:build !windows
// +build !windows

package session

import (
	"os"
	"syscall"
)

// forwardedSignals are caught while a child runs. os.Interrupt is swallowed;
// the rest are passed on to the child.
var forwardedSignals = []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT}
