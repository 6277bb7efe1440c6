//go:build !windows
// +build !windows

package session

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"regexp"
	"strings"
	"syscall"
	"time"

	"github.com/creack/pty"
	log "github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// passwordPromptRe matches ssh/PAM password prompts, which are usually not
// newline-terminated.
var passwordPromptRe = regexp.MustCompile(`(?i)(password|passcode)( for [^:]*)?\s*:\s*$`)

const (
	promptWindow  = 30 * time.Second
	maxPromptTail = 2048
)

// launchPTY runs ssh under a PTY and answers the first password prompt seen
// within promptWindow. After that the session is plain passthrough; a second
// prompt (wrong password) is left to the user.
func (l *Launcher) launchPTY(ctx context.Context, path string, inv Invocation) (int, error) {
	cmd := exec.Command(path, inv.Argv[1:]...)
	cmd.Args[0] = inv.Argv[0]
	if len(inv.Env) > 0 {
		cmd.Env = append(os.Environ(), inv.Env...)
	}

	flushTTYInput()

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return 0, fmt.Errorf("pty start: %w", err)
	}
	defer func() { _ = ptmx.Close() }()

	// Without an explicit size some setups hand the remote a 0x0 window,
	// which breaks full-screen programs.
	if out, ok := l.Stdout.(*os.File); ok && term.IsTerminal(int(out.Fd())) {
		if cols, rows, sizeErr := term.GetSize(int(out.Fd())); sizeErr == nil && rows > 0 && cols > 0 {
			_ = pty.Setsize(ptmx, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
		}
		stop := startPTYResizeWatcher(ptmx, out)
		defer stop()
	}

	if in, ok := l.Stdin.(*os.File); ok && term.IsTerminal(int(in.Fd())) {
		if oldState, rawErr := term.MakeRaw(int(in.Fd())); rawErr == nil {
			defer func() { _ = term.Restore(int(in.Fd()), oldState) }()
		}
	}

	sigCh := make(chan os.Signal, 4)
	signal.Notify(sigCh, forwardedSignals...)
	defer signal.Stop(sigCh)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case sig := <-sigCh:
				_ = cmd.Process.Signal(sig)
			case <-ctx.Done():
				_ = cmd.Process.Signal(syscall.SIGTERM)
				return
			case <-done:
				return
			}
		}
	}()

	if l.Stdin != nil {
		go func() { _, _ = io.Copy(ptmx, l.Stdin) }()
	}

	fed := false
	deadline := time.Now().Add(promptWindow)
	var tail strings.Builder
	buf := make([]byte, 4096)
	for {
		n, rerr := ptmx.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			_, _ = l.Stdout.Write(chunk)

			if !fed && time.Now().Before(deadline) {
				for _, b := range chunk {
					switch b {
					case 0:
					case '\r', '\n':
						tail.Reset()
					default:
						tail.WriteByte(b)
					}
				}
				if tail.Len() > maxPromptTail {
					s := tail.String()
					tail.Reset()
					tail.WriteString(s[len(s)-maxPromptTail:])
				}
				if passwordPromptRe.MatchString(tail.String()) {
					fed = true
					log.Debug("password prompt detected, sending stored password")
					// CR, not LF: what a terminal sends for Enter.
					_, _ = io.WriteString(ptmx, inv.PromptPassword+"\r")
				}
			}
		}
		if rerr != nil {
			break
		}
	}

	return exitStatus(cmd.Wait())
}
