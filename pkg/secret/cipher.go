package secret

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"unicode"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"
)

// opensslArgs are shared by both directions: AES-256-CBC, salted PBKDF2 key
// derivation, base64 text. This matches blobs written by earlier versions.
var opensslArgs = []string{"enc", "-aes-256-cbc", "-salt", "-pbkdf2", "-a"}

// Cipher runs `openssl enc`. The plaintext or blob goes through stdin and the
// passphrase through a private pipe (see passphraseArg), so neither shows up
// in argv or on disk.
type Cipher struct {
	// Binary is the openssl executable name or path.
	Binary string
}

// NewCipher returns a Cipher for binary, defaulting to "openssl".
func NewCipher(binary string) *Cipher {
	if strings.TrimSpace(binary) == "" {
		binary = "openssl"
	}
	return &Cipher{Binary: binary}
}

// Encrypt seals plaintext under passphrase.
func (c *Cipher) Encrypt(ctx context.Context, plaintext, passphrase string) (Secret, error) {
	if passphrase == "" {
		return "", ErrEmptyPassphrase
	}
	if strings.ContainsAny(passphrase, "\r\n") {
		return "", ErrInvalidPassphrase
	}
	if plaintext == "" {
		return "", fmt.Errorf("encrypt: empty password refused")
	}
	if !plausiblePlaintext(plaintext) {
		return "", ErrUnsupportedPassword
	}

	args := append(append([]string{}, opensslArgs...), "-A")
	out, stderr, err := c.run(ctx, args, plaintext, passphrase)
	if err != nil {
		if isNotFound(err) {
			return "", err
		}
		msg := strings.TrimSpace(stderr)
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("encrypt: %s failed: %s", c.Binary, msg)
	}

	blob := strings.Join(strings.Fields(out), "")
	if blob == "" {
		return "", fmt.Errorf("encrypt: %s produced no output", c.Binary)
	}
	return Sealed(blob), nil
}

// Decrypt opens s with passphrase. Every failure other than a missing binary
// is reported as ErrDecryptionFailed; openssl's stderr is only logged at
// debug level.
func (c *Cipher) Decrypt(ctx context.Context, s Secret, passphrase string) (string, error) {
	if !s.IsEncrypted() {
		return "", fmt.Errorf("decrypt: value is not marked %q", Prefix)
	}
	if passphrase == "" {
		return "", ErrEmptyPassphrase
	}
	if strings.ContainsAny(passphrase, "\r\n") {
		return "", ErrDecryptionFailed
	}

	args := append(append([]string{}, opensslArgs...), "-d")
	out, stderr, err := c.run(ctx, args, wrapBase64(s.Blob()), passphrase)
	if err != nil {
		if isNotFound(err) {
			return "", err
		}
		log.Debugf("%s decrypt exited with error: %v (%d bytes stderr)", c.Binary, err, len(stderr))
		return "", ErrDecryptionFailed
	}

	// Older versions piped `echo` output in, so a trailing newline is part of
	// the sealed plaintext.
	plain := strings.TrimRight(out, "\r\n")
	if !plausiblePlaintext(plain) {
		return "", ErrDecryptionFailed
	}
	return plain, nil
}

func (c *Cipher) run(ctx context.Context, args []string, stdin, passphrase string) (stdout, stderr string, err error) {
	path, err := exec.LookPath(c.Binary)
	if err != nil {
		return "", "", fmt.Errorf("cipher tool %q not found: %w", c.Binary, exec.ErrNotFound)
	}

	cmd := exec.CommandContext(ctx, path, args...)
	cleanup, err := passphraseArg(cmd, passphrase)
	if err != nil {
		return "", "", err
	}
	defer cleanup()

	var outBuf, errBuf bytes.Buffer
	cmd.Stdin = strings.NewReader(stdin)
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err = cmd.Run()
	return outBuf.String(), errBuf.String(), err
}

// wrapBase64 strips whitespace and re-wraps at 64 columns with a final
// newline, which openssl's line-oriented base64 decoder accepts both for our
// single-line blobs and for the multi-line ones older versions stored.
func wrapBase64(blob string) string {
	flat := strings.Join(strings.Fields(blob), "")
	var b strings.Builder
	for len(flat) > 64 {
		b.WriteString(flat[:64])
		b.WriteByte('\n')
		flat = flat[64:]
	}
	b.WriteString(flat)
	b.WriteByte('\n')
	return b.String()
}

// plausiblePlaintext rejects empty output and the binary noise a wrong key
// occasionally produces when the CBC padding happens to check out.
func plausiblePlaintext(s string) bool {
	if s == "" || !utf8.ValidString(s) {
		return false
	}
	for _, r := range s {
		if unicode.IsControl(r) && r != '\t' {
			return false
		}
	}
	return true
}

func isNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound)
}
