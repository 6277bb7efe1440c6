package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
)

// Launcher runs one invocation in the foreground and waits for it.
type Launcher struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// LookPath resolves executables; exec.LookPath when nil.
	LookPath func(string) (string, error)
}

// NewLauncher returns a launcher wired to the process's own terminal.
func NewLauncher() *Launcher {
	return &Launcher{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Launch starts inv with the terminal passed straight through and blocks
// until it exits. It returns the child's exit code together with:
//   - *ExecutableNotFoundError if ssh or the helper is missing (nothing runs)
//   - *ExitError if the child exits non-zero
//
// No timeout is applied; interactive sessions may run indefinitely.
func (l *Launcher) Launch(ctx context.Context, inv Invocation) (int, error) {
	if len(inv.Argv) == 0 {
		return 0, errors.New("empty command")
	}

	lookPath := l.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	requires := inv.Requires
	if len(requires) == 0 {
		requires = inv.Argv[:1]
	}
	for _, name := range requires {
		if _, err := lookPath(name); err != nil {
			return 0, &ExecutableNotFoundError{Name: name, Err: err}
		}
	}
	path, err := lookPath(inv.Argv[0])
	if err != nil {
		return 0, &ExecutableNotFoundError{Name: inv.Argv[0], Err: err}
	}

	log.Debugf("launching: %s", inv)

	if inv.PromptPassword != "" {
		return l.launchPTY(ctx, path, inv)
	}

	cmd := exec.Command(path, inv.Argv[1:]...)
	cmd.Args[0] = inv.Argv[0]
	cmd.Stdin = l.Stdin
	cmd.Stdout = l.Stdout
	cmd.Stderr = l.Stderr
	if len(inv.Env) > 0 {
		cmd.Env = append(os.Environ(), inv.Env...)
	}

	var secretR *os.File
	if inv.SecretFD != "" {
		r, w, err := os.Pipe()
		if err != nil {
			return 0, fmt.Errorf("password pipe: %w", err)
		}
		secretR = r
		cmd.ExtraFiles = []*os.File{r}
		go func() {
			_, _ = io.WriteString(w, inv.SecretFD+"\n")
			_ = w.Close()
		}()
	}

	flushTTYInput()

	// Terminal-generated SIGINT already reaches the child through the
	// foreground process group; the parent just has to survive it.
	sigCh := make(chan os.Signal, 4)
	signal.Notify(sigCh, forwardedSignals...)
	defer signal.Stop(sigCh)

	if err := cmd.Start(); err != nil {
		if secretR != nil {
			_ = secretR.Close()
		}
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			return 0, &ExecutableNotFoundError{Name: inv.Argv[0], Err: err}
		}
		return 0, fmt.Errorf("start %s: %w", inv.Argv[0], err)
	}
	if secretR != nil {
		_ = secretR.Close()
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case sig := <-sigCh:
				if sig == os.Interrupt {
					continue
				}
				_ = cmd.Process.Signal(sig)
			case <-ctx.Done():
				_ = cmd.Process.Signal(syscall.SIGTERM)
				<-done
				return
			case <-done:
				return
			}
		}
	}()

	waitErr := cmd.Wait()
	close(done)
	return exitStatus(waitErr)
}

// exitStatus maps a Wait error onto (code, error).
func exitStatus(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		code := ee.ExitCode()
		if status, ok := ee.Sys().(syscall.WaitStatus); ok && status.Signaled() {
			code = 128 + int(status.Signal())
		}
		if code < 0 {
			code = 1
		}
		return code, &ExitError{Code: code}
	}
	return 1, err
}
