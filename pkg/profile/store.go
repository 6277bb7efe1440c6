package profile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultConfigDirName    = "ssh-manager"
	defaultProfilesFilename = "connections.yml"
)

// Profiles maps alias to profile. Aliases are case-sensitive.
type Profiles map[string]Profile

// Aliases returns the stored aliases in sorted order.
func (ps Profiles) Aliases() []string {
	out := make([]string, 0, len(ps))
	for a := range ps {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// Lookup returns the profile stored under alias.
func (ps Profiles) Lookup(alias string) (Profile, error) {
	p, ok := ps[alias]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrAliasNotFound, alias)
	}
	return p, nil
}

// DefaultConfigDir returns the directory holding the profiles file.
// Precedence:
//  1. $XDG_CONFIG_HOME/ssh-manager
//  2. ~/.config/ssh-manager
func DefaultConfigDir() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, defaultConfigDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".config", defaultConfigDirName), nil
}

// DefaultPath returns the full path of connections.yml.
func DefaultPath() (string, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, defaultProfilesFilename), nil
}

// Store reads and writes the profiles file. It holds no cached state: every
// call goes back to disk.
type Store struct {
	Path string
}

// NewStore returns a store for path, or for DefaultPath when path is empty.
func NewStore(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return &Store{Path: ExpandPath(path)}, nil
}

// Load reads the profiles file.
//
// The returned mapping is never nil. A missing or empty file yields an empty
// mapping and a nil error. An unreadable or unparsable file also yields an
// empty mapping, together with a *StoreError so that callers about to write
// can refuse to clobber a file they could not read.
func (s *Store) Load() (Profiles, error) {
	_ = os.MkdirAll(filepath.Dir(s.Path), 0o700)

	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Profiles{}, nil
		}
		return Profiles{}, &StoreError{Op: "read", Path: s.Path, Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Profiles{}, nil
	}

	var ps Profiles
	if err := yaml.Unmarshal(data, &ps); err != nil {
		return Profiles{}, &StoreError{Op: "parse", Path: s.Path, Err: err}
	}
	if ps == nil {
		ps = Profiles{}
	}
	return ps, nil
}

// Save writes the full mapping atomically: a temp file in the same directory
// is written, synced and renamed over the old file.
func (s *Store) Save(ps Profiles) error {
	if ps == nil {
		ps = Profiles{}
	}
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return &StoreError{Op: "write", Path: s.Path, Err: err}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]Profile(ps)); err != nil {
		return &StoreError{Op: "write", Path: s.Path, Err: fmt.Errorf("encode: %w", err)}
	}
	if err := enc.Close(); err != nil {
		return &StoreError{Op: "write", Path: s.Path, Err: fmt.Errorf("encode: %w", err)}
	}

	tmp := s.Path + fmt.Sprintf(".tmp-%d-%d", os.Getpid(), time.Now().UnixNano())
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return &StoreError{Op: "write", Path: s.Path, Err: err}
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return &StoreError{Op: "write", Path: s.Path, Err: err}
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return &StoreError{Op: "write", Path: s.Path, Err: err}
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return &StoreError{Op: "write", Path: s.Path, Err: err}
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		_ = os.Remove(tmp)
		return &StoreError{Op: "write", Path: s.Path, Err: err}
	}
	return nil
}

// Get loads the file and returns one profile. Load failures degrade to
// "not found".
func (s *Store) Get(alias string) (Profile, error) {
	ps, _ := s.Load()
	return ps.Lookup(alias)
}

// Add stores a new profile. It fails with ErrAliasExists, leaving the stored
// profile untouched, when alias is taken.
func (s *Store) Add(alias string, p Profile) error {
	return s.update(func(ps Profiles) error {
		if _, ok := ps[alias]; ok {
			return fmt.Errorf("%w: %q", ErrAliasExists, alias)
		}
		ps[alias] = p
		return nil
	}, alias, &p)
}

// Put stores p under alias, replacing any existing profile.
func (s *Store) Put(alias string, p Profile) error {
	return s.update(func(ps Profiles) error {
		ps[alias] = p
		return nil
	}, alias, &p)
}

// Remove deletes alias from the store.
func (s *Store) Remove(alias string) error {
	return s.update(func(ps Profiles) error {
		if _, ok := ps[alias]; !ok {
			return fmt.Errorf("%w: %q", ErrAliasNotFound, alias)
		}
		delete(ps, alias)
		return nil
	}, alias, nil)
}

// update is the load-modify-save cycle shared by every mutation. A file that
// failed to load is never overwritten.
func (s *Store) update(mutate func(Profiles) error, alias string, p *Profile) error {
	if err := ValidateAlias(alias); err != nil {
		return err
	}
	if p != nil {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	ps, err := s.Load()
	if err != nil {
		return err
	}
	if err := mutate(ps); err != nil {
		return err
	}
	return s.Save(ps)
}
