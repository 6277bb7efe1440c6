// Package profile holds SSH connection profiles and the YAML store they live in.
package profile

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"ssh-manager/pkg/secret"
)

// DefaultPort is used when a profile has no port, or a zero port, on disk.
const DefaultPort = 22

// Profile is a single named connection.
//
// Example YAML (one entry of the alias mapping):
//
// web1:
//
//	host: web1.example.com
//	user: deploy
//	port: 2222
//	key: ~/.ssh/id_ed25519
//	pass: ""
//	dir: /srv/app
//	cmd: ""
//
// The short key names are the ones earlier versions of the tool wrote, so files
// created by them load unchanged.
type Profile struct {
	Host string `yaml:"host"`
	User string `yaml:"user,omitempty"`
	Port int    `yaml:"port,omitempty"`

	// KeyPath is a private key handed to ssh with -i. It wins over Password.
	KeyPath string `yaml:"key,omitempty"`

	// Password is either plaintext or secret.Prefix followed by an
	// openssl base64 blob.
	Password string `yaml:"pass,omitempty"`

	RemoteDir      string `yaml:"dir,omitempty"`
	DefaultCommand string `yaml:"cmd,omitempty"`
}

// AuthKind describes which credential a profile carries.
type AuthKind string

const (
	AuthKey       AuthKind = "key"
	AuthEncrypted AuthKind = "encrypted"
	AuthPlain     AuthKind = "plain"
	AuthNone      AuthKind = "none"
)

// Auth reports the credential kind using the connect-time precedence:
// key file, then password (encrypted or plain), then nothing.
func (p Profile) Auth() AuthKind {
	switch {
	case strings.TrimSpace(p.KeyPath) != "":
		return AuthKey
	case secret.Secret(p.Password).IsEncrypted():
		return AuthEncrypted
	case p.Password != "":
		return AuthPlain
	default:
		return AuthNone
	}
}

// Resolved returns a copy with connect-time defaults applied:
//   - port: profile port if in range, else 22
//   - user: profile user, else the local account name
//   - key:  "~" and environment variables expanded
//
// The stored profile is never rewritten with these values.
func (p Profile) Resolved() Profile {
	r := p
	r.Host = strings.TrimSpace(r.Host)
	if r.Port <= 0 || r.Port > 65535 {
		r.Port = DefaultPort
	}
	r.User = strings.TrimSpace(r.User)
	if r.User == "" {
		r.User = CurrentUsername()
	}
	r.KeyPath = ExpandPath(strings.TrimSpace(r.KeyPath))
	return r
}

// Validate checks the fields an add or edit must supply.
func (p Profile) Validate() error {
	if strings.TrimSpace(p.Host) == "" {
		return &ValidationError{Field: "host", Reason: "is required"}
	}
	if strings.HasPrefix(strings.TrimSpace(p.Host), "-") {
		return &ValidationError{Field: "host", Reason: "must not start with '-'"}
	}
	if strings.HasPrefix(strings.TrimSpace(p.User), "-") {
		return &ValidationError{Field: "user", Reason: "must not start with '-'"}
	}
	if p.Port < 0 || p.Port > 65535 {
		return &ValidationError{Field: "port", Reason: "must be between 1 and 65535"}
	}
	return nil
}

// ValidateAlias rejects names that cannot be typed as a positional argument.
func ValidateAlias(alias string) error {
	if strings.TrimSpace(alias) == "" {
		return &ValidationError{Field: "alias", Reason: "is required"}
	}
	if strings.HasPrefix(alias, "-") {
		return &ValidationError{Field: "alias", Reason: "must not start with '-'"}
	}
	return nil
}

// CurrentUsername returns the current OS user name, or $USER if lookup fails.
func CurrentUsername() string {
	if u, err := user.Current(); err == nil && u != nil && u.Username != "" {
		// Windows reports DOMAIN\user.
		name := u.Username
		if i := strings.LastIndexAny(name, `\/`); i >= 0 {
			name = name[i+1:]
		}
		return name
	}
	return os.Getenv("USER")
}

// ExpandPath expands environment variables and a leading "~" in a local path.
func ExpandPath(p string) string {
	if p == "" {
		return ""
	}
	p = os.ExpandEnv(p)
	if strings.HasPrefix(p, "~") {
		home, _ := os.UserHomeDir()
		if home != "" {
			if p == "~" {
				p = home
			} else if strings.HasPrefix(p, "~/") {
				p = filepath.Join(home, p[2:])
			}
			// "~user" is left alone.
		}
	}
	return p
}
