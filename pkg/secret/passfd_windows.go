//go:build windows
// +build windows

package secret

import (
	"os"
	"os/exec"
)

const passphraseEnv = "SSHM_CIPHER_PASSPHRASE"

// passphraseArg uses a child-scoped environment variable on Windows, where
// exec.Cmd cannot pass extra file descriptors.
func passphraseArg(cmd *exec.Cmd, passphrase string) (func(), error) {
	cmd.Env = append(os.Environ(), passphraseEnv+"="+passphrase)
	cmd.Args = append(cmd.Args, "-pass", "env:"+passphraseEnv)
	return func() {}, nil
}
