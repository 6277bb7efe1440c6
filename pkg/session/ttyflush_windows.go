//go:build windows
// +build windows

package session

func flushTTYInput() {}
