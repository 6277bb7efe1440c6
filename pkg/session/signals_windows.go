//go:build windows
// +build windows

package session

import "os"

var forwardedSignals = []os.Signal{os.Interrupt}
