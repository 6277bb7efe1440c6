// Package session turns a stored profile into a running ssh process: it picks
// the authentication channel, composes the remote command, builds argv and
// launches the client with the terminal attached.
package session

import (
	"context"
	"strings"

	"ssh-manager/pkg/profile"
)

// ChannelKind is the authentication method used for one session.
type ChannelKind int

const (
	ChannelNone ChannelKind = iota
	ChannelKey
	ChannelPassword
)

func (k ChannelKind) String() string {
	switch k {
	case ChannelKey:
		return "key"
	case ChannelPassword:
		return "password"
	default:
		return "none"
	}
}

// Channel is the resolved authentication for a session. Password holds
// plaintext and must never be logged or placed in argv.
type Channel struct {
	Kind     ChannelKind
	KeyPath  string
	Password string
}

// String describes the channel without its secret.
func (c Channel) String() string {
	if c.Kind == ChannelKey {
		return "key " + c.KeyPath
	}
	return c.Kind.String()
}

// Revealer turns a stored password (plain or encrypted) into plaintext.
type Revealer interface {
	Reveal(ctx context.Context, stored string) (string, error)
}

// SelectChannel applies the fixed precedence key file > password > none.
// A reveal failure is returned as-is so that nothing is launched.
func SelectChannel(ctx context.Context, p profile.Profile, rev Revealer) (Channel, error) {
	if key := strings.TrimSpace(p.KeyPath); key != "" {
		return Channel{Kind: ChannelKey, KeyPath: profile.ExpandPath(key)}, nil
	}
	if p.Password != "" {
		pw, err := rev.Reveal(ctx, p.Password)
		if err != nil {
			return Channel{}, err
		}
		return Channel{Kind: ChannelPassword, Password: pw}, nil
	}
	return Channel{Kind: ChannelNone}, nil
}
