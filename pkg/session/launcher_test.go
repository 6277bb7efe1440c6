//go:build !windows

package session

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/creack/pty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireSh(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func requirePTY(t *testing.T) {
	t.Helper()
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("pty not available: %v", err)
	}
	_ = tty.Close()
	_ = ptmx.Close()
}

func testLauncher() (*Launcher, *bytes.Buffer) {
	var out bytes.Buffer
	return &Launcher{Stdin: strings.NewReader(""), Stdout: &out, Stderr: &out}, &out
}

func TestLaunch_MissingExecutable(t *testing.T) {
	l, _ := testLauncher()

	code, err := l.Launch(context.Background(), Invocation{Argv: []string{"sshm-no-such-ssh", "-p", "22", "u@h"}})
	var nf *ExecutableNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "sshm-no-such-ssh", nf.Name)
	assert.True(t, errors.Is(err, exec.ErrNotFound))
	assert.Zero(t, code)
}

func TestLaunch_MissingHelperChecksEveryRequirement(t *testing.T) {
	requireSh(t)
	l, out := testLauncher()

	inv := Invocation{
		Argv:     []string{"sh", "-c", "echo ran"},
		Requires: []string{"sh", "sshm-no-such-helper"},
	}
	_, err := l.Launch(context.Background(), inv)
	var nf *ExecutableNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "sshm-no-such-helper", nf.Name)
	assert.Empty(t, out.String(), "nothing may run when a requirement is missing")
}

func TestLaunch_PropagatesExitCode(t *testing.T) {
	requireSh(t)
	l, _ := testLauncher()

	code, err := l.Launch(context.Background(), Invocation{Argv: []string{"sh", "-c", "exit 3"}})
	var ee *ExitError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, 3, ee.Code)
	assert.Equal(t, 3, code)
}

func TestLaunch_SuccessPassesOutputThrough(t *testing.T) {
	requireSh(t)
	l, out := testLauncher()

	code, err := l.Launch(context.Background(), Invocation{Argv: []string{"sh", "-c", "echo hello; echo oops >&2"}})
	require.NoError(t, err)
	assert.Zero(t, code)
	assert.Equal(t, "hello\noops\n", out.String())
}

func TestLaunch_SecretOnFD3(t *testing.T) {
	requireSh(t)
	l, _ := testLauncher()
	got := filepath.Join(t.TempDir(), "got")

	inv := Invocation{
		Argv:     []string{"sh", "-c", `read -r pw <&3; printf '%s' "$pw" > "$0"`, got},
		SecretFD: "hunter2",
	}
	_, err := l.Launch(context.Background(), inv)
	require.NoError(t, err)

	data, err := os.ReadFile(got)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", string(data))
}

func TestLaunch_EnvIsChildScoped(t *testing.T) {
	requireSh(t)
	l, out := testLauncher()

	inv := Invocation{
		Argv: []string{"sh", "-c", `printf '%s' "$SSHPASS"`},
		Env:  []string{"SSHPASS=hunter2"},
	}
	_, err := l.Launch(context.Background(), inv)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", out.String())
	assert.Empty(t, os.Getenv("SSHPASS"))
}

func TestLaunch_EmptyArgv(t *testing.T) {
	l, _ := testLauncher()
	_, err := l.Launch(context.Background(), Invocation{})
	require.Error(t, err)
}

func TestExitStatus(t *testing.T) {
	code, err := exitStatus(nil)
	require.NoError(t, err)
	assert.Zero(t, code)

	other := errors.New("boom")
	code, err = exitStatus(other)
	assert.Equal(t, 1, code)
	assert.Same(t, other, err)
}

func TestLaunch_PTYAnswersPasswordPrompt(t *testing.T) {
	requireSh(t)
	requirePTY(t)
	l, out := testLauncher()
	got := filepath.Join(t.TempDir(), "typed")

	script := `printf 'u@h password: '; IFS= read -r pw; printf '%s' "$pw" > "$0"; exit 4`
	inv := Invocation{Argv: []string{"sh", "-c", script, got}, PromptPassword: "s3cret"}

	code, err := l.Launch(context.Background(), inv)
	var ee *ExitError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, 4, ee.Code)
	assert.Equal(t, 4, code)
	assert.Contains(t, out.String(), "u@h password: ")

	typed, err := os.ReadFile(got)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", string(typed), "answer is CR-terminated and arrives as one line")
}

func TestLaunch_PTYWithoutPromptSendsNothing(t *testing.T) {
	requireSh(t)
	requirePTY(t)
	l, out := testLauncher()

	inv := Invocation{Argv: []string{"sh", "-c", "echo connected"}, PromptPassword: "s3cret"}
	code, err := l.Launch(context.Background(), inv)
	require.NoError(t, err)
	assert.Zero(t, code)
	assert.Contains(t, out.String(), "connected")
	assert.NotContains(t, out.String(), "s3cret")
}
