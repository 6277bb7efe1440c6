// Package secret protects stored passwords with a user passphrase by driving
// an external openssl binary. Nothing here implements cryptography.
package secret

import (
	"context"
	"errors"
	"strings"
)

// Prefix marks a stored value as openssl ciphertext.
const Prefix = "enc:"

var (
	// ErrDecryptionFailed covers a wrong passphrase and a damaged blob alike.
	ErrDecryptionFailed = errors.New("decryption failed: wrong passphrase or corrupted data")

	// ErrEmptyPassphrase is returned when the user enters nothing.
	ErrEmptyPassphrase = errors.New("empty passphrase")

	// ErrInvalidPassphrase is returned for passphrases that cannot be sent to
	// openssl intact (they travel as a single line).
	ErrInvalidPassphrase = errors.New("passphrase must not contain line breaks")

	// ErrUnsupportedPassword is returned by Encrypt for plaintext that Decrypt
	// would later refuse as garbage.
	ErrUnsupportedPassword = errors.New("password must be valid UTF-8 without control characters")
)

// Secret is a password field as stored on disk: plaintext, or Prefix plus an
// opaque base64 blob that embeds its own salt.
type Secret string

// Sealed wraps an openssl blob.
func Sealed(blob string) Secret { return Secret(Prefix + blob) }

// IsEncrypted reports whether s carries the ciphertext marker.
func (s Secret) IsEncrypted() bool { return strings.HasPrefix(string(s), Prefix) }

// Blob returns the ciphertext with the marker removed.
func (s Secret) Blob() string { return strings.TrimPrefix(string(s), Prefix) }

// String returns the stored form.
func (s Secret) String() string { return string(s) }

// PassthroughIfPlain returns s verbatim when it is not encrypted.
func PassthroughIfPlain(s Secret) (string, bool) {
	if s.IsEncrypted() {
		return "", false
	}
	return string(s), true
}

// PassphrasePrompter asks the user for a passphrase without echo.
type PassphrasePrompter interface {
	AskSecret(prompt string) (string, error)
}

// Resolver turns a stored password into plaintext, asking for the passphrase
// each time an encrypted value is met. Passphrases are not cached.
type Resolver struct {
	Cipher *Cipher
	Prompt PassphrasePrompter
}

// Reveal implements the connect-time half of the password channel.
func (r *Resolver) Reveal(ctx context.Context, stored string) (string, error) {
	s := Secret(stored)
	if plain, ok := PassthroughIfPlain(s); ok {
		return plain, nil
	}
	pass, err := r.Prompt.AskSecret("Passphrase to decrypt password")
	if err != nil {
		return "", err
	}
	if pass == "" {
		return "", ErrEmptyPassphrase
	}
	return r.Cipher.Decrypt(ctx, s, pass)
}
