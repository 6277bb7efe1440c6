package session

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kballard/go-shellquote"

	"ssh-manager/pkg/profile"
)

// HelperMode selects how a password reaches ssh.
type HelperMode string

const (
	// HelperFD runs `sshpass -d 3` and writes the password to a private pipe.
	HelperFD HelperMode = "fd"
	// HelperEnv runs `sshpass -e` with SSHPASS set only in the child.
	HelperEnv HelperMode = "env"
	// HelperPTY runs ssh under a PTY and types the password at its prompt.
	HelperPTY HelperMode = "pty"
)

// ParseHelperMode validates a configured mode. Empty means HelperFD.
func ParseHelperMode(s string) (HelperMode, error) {
	switch m := HelperMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return HelperFD, nil
	case HelperFD, HelperEnv, HelperPTY:
		return m, nil
	default:
		return "", fmt.Errorf("invalid password mode %q (expected: fd|env|pty)", s)
	}
}

// DefaultLoginShell is exec'd after `cd <dir>` when there is no command. It is
// expanded by the remote shell, not locally.
const DefaultLoginShell = "$SHELL -l"

// Builder assembles ssh invocations.
type Builder struct {
	SSHBinary    string
	HelperBinary string
	Mode         HelperMode
	LoginShell   string
}

// RemoteCommand merges the profile defaults with runtime override tokens:
//   - override (joined by spaces) wins over the profile's default command
//   - with a remote dir: "cd <dir> && <cmd>", or "cd <dir> && exec <shell>"
//     when there is no command
//   - without one: the command verbatim, possibly empty
func (b Builder) RemoteCommand(p profile.Profile, override []string) string {
	effective := strings.TrimSpace(strings.Join(override, " "))
	if effective == "" {
		effective = strings.TrimSpace(p.DefaultCommand)
	}
	dir := strings.TrimSpace(p.RemoteDir)
	if dir == "" {
		return effective
	}
	if effective == "" {
		shell := strings.TrimSpace(b.LoginShell)
		if shell == "" {
			shell = DefaultLoginShell
		}
		effective = "exec " + shell
	}
	return "cd " + quoteRemoteDir(dir) + " && " + effective
}

// quoteRemoteDir quotes dir for the remote shell, keeping a leading "~" or
// "~user" prefix unquoted so it still expands to a remote home.
func quoteRemoteDir(dir string) string {
	if !strings.HasPrefix(dir, "~") {
		return shellquote.Join(dir)
	}
	head, rest, slash := strings.Cut(dir, "/")
	if !isLoginName(head[1:]) {
		return shellquote.Join(dir)
	}
	switch {
	case !slash:
		return head
	case rest == "":
		return head + "/"
	default:
		return head + "/" + shellquote.Join(rest)
	}
}

// isLoginName reports whether name is safe to leave unquoted after "~".
// Empty is the caller's own home.
func isLoginName(name string) bool {
	if strings.HasPrefix(name, "-") {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '.', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}

// Build returns the argv for p over ch. Every field is its own argv element;
// nothing is interpreted by a local shell. final is the remote command from
// RemoteCommand and becomes the last element when non-empty.
func (b Builder) Build(p profile.Profile, ch Channel, final string) (Invocation, error) {
	r := p.Resolved()
	if r.Host == "" {
		return Invocation{}, &profile.ValidationError{Field: "host", Reason: "is required"}
	}
	if strings.HasPrefix(r.Host, "-") {
		return Invocation{}, &profile.ValidationError{Field: "host", Reason: "must not start with '-'"}
	}
	if strings.HasPrefix(r.User, "-") {
		return Invocation{}, &profile.ValidationError{Field: "user", Reason: "must not start with '-'"}
	}

	sshBin := b.SSHBinary
	if sshBin == "" {
		sshBin = "ssh"
	}

	argv := []string{sshBin}
	if final != "" {
		argv = append(argv, "-t")
	}
	if ch.Kind == ChannelKey {
		argv = append(argv, "-i", ch.KeyPath)
	}
	dest := r.Host
	if r.User != "" {
		dest = r.User + "@" + r.Host
	}
	argv = append(argv, "-p", strconv.Itoa(r.Port), dest)
	if final != "" {
		argv = append(argv, final)
	}

	inv := Invocation{Argv: argv, Requires: []string{sshBin}}
	if ch.Kind != ChannelPassword {
		return inv, nil
	}

	helper := b.HelperBinary
	if helper == "" {
		helper = "sshpass"
	}
	mode := b.Mode
	if mode == "" {
		mode = HelperFD
	}
	switch mode {
	case HelperFD:
		inv.Argv = append([]string{helper, "-d", strconv.Itoa(secretFD)}, argv...)
		inv.Requires = []string{helper, sshBin}
		inv.SecretFD = ch.Password
	case HelperEnv:
		inv.Argv = append([]string{helper, "-e"}, argv...)
		inv.Requires = []string{helper, sshBin}
		inv.Env = []string{"SSHPASS=" + ch.Password}
	case HelperPTY:
		inv.PromptPassword = ch.Password
	default:
		return Invocation{}, fmt.Errorf("invalid password mode %q", mode)
	}
	return inv, nil
}
