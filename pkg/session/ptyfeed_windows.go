//go:build windows
// +build windows

package session

import (
	"context"
	"errors"
)

func (l *Launcher) launchPTY(context.Context, string, Invocation) (int, error) {
	return 0, errors.New("password_mode pty is not supported on Windows; use fd or env with sshpass")
}
