package session

import (
	"fmt"
	"os/exec"
	"path/filepath"
)

// ExecutableNotFoundError is returned when ssh or the password helper is not
// on PATH. It matches errors.Is(err, exec.ErrNotFound).
type ExecutableNotFoundError struct {
	Name string
	Err  error
}

func (e *ExecutableNotFoundError) Error() string {
	return fmt.Sprintf("%q not found in PATH", e.Name)
}

func (e *ExecutableNotFoundError) Unwrap() error { return exec.ErrNotFound }

// Hint suggests how to fix a missing executable.
func (e *ExecutableNotFoundError) Hint() string {
	switch filepath.Base(e.Name) {
	case "sshpass":
		return "install sshpass (e.g. apt-get install sshpass), or set password_mode: pty to use the built-in prompt feeder"
	case "ssh":
		return "install an OpenSSH client (e.g. apt-get install openssh-client)"
	case "openssl":
		return "install openssl (e.g. apt-get install openssl) to encrypt or decrypt stored passwords"
	default:
		return fmt.Sprintf("install %s or point the matching *_binary setting at it", e.Name)
	}
}

// ExitError reports a child that exited non-zero. Code follows shell
// conventions: 128+N for a child killed by signal N.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("ssh session exited with status %d", e.Code)
}
