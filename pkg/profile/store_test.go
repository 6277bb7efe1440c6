package profile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "ssh-manager", "connections.yml"))
	require.NoError(t, err)
	return s
}

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	s := newTestStore(t)

	ps, err := s.Load()
	require.NoError(t, err)
	assert.NotNil(t, ps)
	assert.Empty(t, ps)

	// The directory is created on first use.
	st, err := os.Stat(filepath.Dir(s.Path))
	require.NoError(t, err)
	assert.True(t, st.IsDir())
}

func TestLoad_EmptyFileIsEmpty(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path), 0o700))
	require.NoError(t, os.WriteFile(s.Path, []byte("\n  \n"), 0o600))

	ps, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, ps)
}

func TestLoad_GarbageDegradesToEmpty(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path), 0o700))
	require.NoError(t, os.WriteFile(s.Path, []byte("web1: [unclosed\n  host: :"), 0o600))

	ps, err := s.Load()
	assert.NotNil(t, ps)
	assert.Empty(t, ps)

	var se *StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "parse", se.Op)
}

func TestLoad_ReadsLegacyKeys(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path), 0o700))
	legacy := `db:
  host: 10.0.0.5
  user: admin
  port: 2222
  key: ''
  pass: enc:U2FsdGVkX1+abc
  dir: /var/lib
  cmd: psql
`
	require.NoError(t, os.WriteFile(s.Path, []byte(legacy), 0o600))

	ps, err := s.Load()
	require.NoError(t, err)
	p, err := ps.Lookup("db")
	require.NoError(t, err)
	assert.Equal(t, Profile{
		Host:           "10.0.0.5",
		User:           "admin",
		Port:           2222,
		Password:       "enc:U2FsdGVkX1+abc",
		RemoteDir:      "/var/lib",
		DefaultCommand: "psql",
	}, p)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	in := Profiles{
		"web1": {Host: "web1.example.com", User: "deploy", Port: 22, KeyPath: "~/.ssh/id_ed25519", RemoteDir: "/srv/app"},
		"Web1": {Host: "other", Password: "plain pw: with colon", DefaultCommand: "htop"},
		"jump": {Host: "a; rm -rf /", Port: 65535},
	}
	require.NoError(t, s.Save(in))

	out, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, in, out)

	st, err := os.Stat(s.Path)
	require.NoError(t, err)
	if st.Mode().Perm()&0o077 != 0 && os.PathSeparator == '/' {
		t.Fatalf("profiles file mode too open: %v", st.Mode().Perm())
	}
}

func TestSave_LeavesNoTempFiles(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save(Profiles{"a": {Host: "a"}}))
	require.NoError(t, s.Save(Profiles{"b": {Host: "b"}}))

	entries, err := os.ReadDir(filepath.Dir(s.Path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "connections.yml", entries[0].Name())
}

func TestAdd_DuplicateAliasLeavesExistingUntouched(t *testing.T) {
	s := newTestStore(t)
	orig := Profile{Host: "orig.example.com", User: "root"}
	require.NoError(t, s.Add("web", orig))

	err := s.Add("web", Profile{Host: "evil.example.com"})
	require.ErrorIs(t, err, ErrAliasExists)

	got, err := s.Get("web")
	require.NoError(t, err)
	assert.Equal(t, orig, got)
}

func TestAdd_AliasIsCaseSensitive(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Add("web", Profile{Host: "a"}))
	require.NoError(t, s.Add("WEB", Profile{Host: "b"}))

	ps, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"WEB", "web"}, ps.Aliases())
}

func TestAdd_ValidationAbortsWithoutWrite(t *testing.T) {
	s := newTestStore(t)

	var ve *ValidationError
	require.ErrorAs(t, s.Add("web", Profile{}), &ve)
	require.ErrorAs(t, s.Add("", Profile{Host: "h"}), &ve)

	_, err := os.Stat(s.Path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestAdd_RefusesToOverwriteUnparsableFile(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path), 0o700))
	broken := []byte("web1:\n  host: [oops\n")
	require.NoError(t, os.WriteFile(s.Path, broken, 0o600))

	err := s.Add("new", Profile{Host: "h"})
	var se *StoreError
	require.ErrorAs(t, err, &se)

	data, err := os.ReadFile(s.Path)
	require.NoError(t, err)
	assert.Equal(t, broken, data)
}

func TestPutAndRemove(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Add("a", Profile{Host: "a1"}))
	require.NoError(t, s.Add("b", Profile{Host: "b1"}))

	require.NoError(t, s.Put("a", Profile{Host: "a2"}))
	got, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "a2", got.Host)

	require.NoError(t, s.Remove("a"))
	_, err = s.Get("a")
	require.ErrorIs(t, err, ErrAliasNotFound)

	// Other aliases survive.
	got, err = s.Get("b")
	require.NoError(t, err)
	assert.Equal(t, "b1", got.Host)

	require.ErrorIs(t, s.Remove("missing"), ErrAliasNotFound)
}

func TestDefaultPath_HonorsXDG(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	p, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(xdg, "ssh-manager", "connections.yml"), p)
}
