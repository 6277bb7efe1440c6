package profile

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/ssh"
)

// KeyInfo describes a private key file referenced by a profile.
type KeyInfo struct {
	Path string

	// Encrypted is set when the key needs a passphrase. Type and Fingerprint
	// are only known for unencrypted keys unless a .pub sits beside it.
	Encrypted   bool
	Type        string
	Fingerprint string
}

// InspectKey checks that path holds an OpenSSH/PEM private key. It never
// prompts: passphrase-protected keys are reported as Encrypted.
func InspectKey(path string) (KeyInfo, error) {
	path = ExpandPath(path)
	info := KeyInfo{Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		return info, fmt.Errorf("read key %s: %w", path, err)
	}

	signer, err := ssh.ParsePrivateKey(data)
	if err != nil {
		var missing *ssh.PassphraseMissingError
		if !errors.As(err, &missing) {
			return info, fmt.Errorf("parse key %s: %w", path, err)
		}
		info.Encrypted = true
		if missing.PublicKey != nil {
			info.Type = missing.PublicKey.Type()
			info.Fingerprint = ssh.FingerprintSHA256(missing.PublicKey)
			return info, nil
		}
		// Older PEM keys carry no public half; fall back to the .pub file.
		if pub, perr := os.ReadFile(path + ".pub"); perr == nil {
			if pk, _, _, _, aerr := ssh.ParseAuthorizedKey(pub); aerr == nil {
				info.Type = pk.Type()
				info.Fingerprint = ssh.FingerprintSHA256(pk)
			}
		}
		return info, nil
	}

	info.Type = signer.PublicKey().Type()
	info.Fingerprint = ssh.FingerprintSHA256(signer.PublicKey())
	return info, nil
}
