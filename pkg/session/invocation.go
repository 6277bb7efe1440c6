package session

import (
	"strconv"
	"strings"

	"github.com/kballard/go-shellquote"
)

// secretFD is the child descriptor carrying the password in HelperFD mode
// (ExtraFiles[0]).
const secretFD = 3

// Invocation is a fully assembled child process. The password, when there is
// one, lives in exactly one of Env, SecretFD or PromptPassword; never in Argv.
type Invocation struct {
	Argv []string

	// Requires lists executables that must resolve on PATH before launching.
	Requires []string

	// Env holds extra KEY=VALUE entries for the child only.
	Env []string

	// SecretFD is written, newline-terminated, to descriptor 3 of the child.
	SecretFD string

	// PromptPassword is typed into ssh's password prompt through a PTY.
	PromptPassword string
}

// HasSecret reports whether the invocation carries a password.
func (inv Invocation) HasSecret() bool {
	return len(inv.Env) > 0 || inv.SecretFD != "" || inv.PromptPassword != ""
}

// String renders the invocation as a copy-pasteable command line with all
// secret values replaced by <redacted>.
func (inv Invocation) String() string {
	var b strings.Builder
	for _, kv := range inv.Env {
		k := kv
		if i := strings.IndexByte(kv, '='); i >= 0 {
			k = kv[:i]
		}
		b.WriteString(k)
		b.WriteString("=<redacted> ")
	}
	b.WriteString(shellquote.Join(inv.Argv...))
	switch {
	case inv.SecretFD != "":
		b.WriteString(" " + strconv.Itoa(secretFD) + "<<(<redacted>)")
	case inv.PromptPassword != "":
		b.WriteString("  # password typed at prompt: <redacted>")
	}
	return b.String()
}
