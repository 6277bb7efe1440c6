//go:build !windows
// +build !windows

package secret

import (
	"fmt"
	"io"
	"os"
	"os/exec"
)

// passphraseArg hands the passphrase to openssl on fd 3 ("-pass fd:3").
// The write end is fed from a goroutine so a long passphrase cannot block
// on a full pipe before the child starts reading.
func passphraseArg(cmd *exec.Cmd, passphrase string) (func(), error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("passphrase pipe: %w", err)
	}
	cmd.ExtraFiles = []*os.File{r}
	cmd.Args = append(cmd.Args, "-pass", "fd:3")

	go func() {
		_, _ = io.WriteString(w, passphrase+"\n")
		_ = w.Close()
	}()

	return func() { _ = r.Close() }, nil
}
