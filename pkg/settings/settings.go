// Package settings holds tool-wide knobs: which binaries to run, how a
// password reaches ssh, and where profiles live. Values come from defaults,
// an optional settings.yaml, SSHM_* environment variables and CLI flags, in
// increasing order of precedence.
package settings

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"ssh-manager/pkg/profile"
	"ssh-manager/pkg/session"
)

// EnvPrefix is prepended to every environment override, e.g. SSHM_SSH_BINARY.
const EnvPrefix = "SSHM"

// FileName is the settings file looked up beside the profiles file.
const FileName = "settings.yaml"

const (
	KeyProfilesFile   = "profiles_file"
	KeySSHBinary      = "ssh_binary"
	KeyCipherBinary   = "cipher_binary"
	KeyPasswordHelper = "password_helper"
	KeyPasswordMode   = "password_mode"
	KeyLoginShell     = "login_shell"
	KeyLogLevel       = "log_level"
)

type Settings struct {
	ProfilesFile   string
	SSHBinary      string
	CipherBinary   string
	PasswordHelper string
	PasswordMode   session.HelperMode
	LoginShell     string
	LogLevel       log.Level
}

// New returns a viper instance carrying defaults and environment bindings.
// Callers bind their flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	// Left unset when the home directory cannot be resolved; Load then
	// reports the missing path.
	if path, err := profile.DefaultPath(); err == nil {
		v.SetDefault(KeyProfilesFile, path)
	}
	v.SetDefault(KeySSHBinary, "ssh")
	v.SetDefault(KeyCipherBinary, "openssl")
	v.SetDefault(KeyPasswordHelper, "sshpass")
	v.SetDefault(KeyPasswordMode, string(session.HelperFD))
	v.SetDefault(KeyLoginShell, session.DefaultLoginShell)
	v.SetDefault(KeyLogLevel, "warn")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configFile (or settings.yaml in the default config dir when
// empty) into v and returns the validated result. A missing default file is
// not an error; a missing explicit file is.
func Load(v *viper.Viper, configFile string) (Settings, error) {
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, errors.Wrapf(err, "read settings %s", configFile)
		}
	} else if dir, err := profile.DefaultConfigDir(); err == nil {
		def := filepath.Join(dir, FileName)
		if _, err := os.Stat(def); err == nil {
			v.SetConfigFile(def)
			if err := v.ReadInConfig(); err != nil {
				return Settings{}, errors.Wrapf(err, "read settings %s", def)
			}
		}
	}
	if used := v.ConfigFileUsed(); used != "" {
		log.Debugf("settings loaded from %s", used)
	}
	return decode(v)
}

func decode(v *viper.Viper) (Settings, error) {
	mode, err := session.ParseHelperMode(v.GetString(KeyPasswordMode))
	if err != nil {
		return Settings{}, errors.Wrap(err, KeyPasswordMode)
	}
	level, err := log.ParseLevel(strings.TrimSpace(v.GetString(KeyLogLevel)))
	if err != nil {
		return Settings{}, errors.Wrap(err, KeyLogLevel)
	}

	s := Settings{
		ProfilesFile:   profile.ExpandPath(strings.TrimSpace(v.GetString(KeyProfilesFile))),
		SSHBinary:      strings.TrimSpace(v.GetString(KeySSHBinary)),
		CipherBinary:   strings.TrimSpace(v.GetString(KeyCipherBinary)),
		PasswordHelper: strings.TrimSpace(v.GetString(KeyPasswordHelper)),
		PasswordMode:   mode,
		LoginShell:     strings.TrimSpace(v.GetString(KeyLoginShell)),
		LogLevel:       level,
	}
	for key, val := range map[string]string{
		KeyProfilesFile:   s.ProfilesFile,
		KeySSHBinary:      s.SSHBinary,
		KeyCipherBinary:   s.CipherBinary,
		KeyPasswordHelper: s.PasswordHelper,
	} {
		if val == "" {
			return Settings{}, errors.Errorf("%s must not be empty", key)
		}
	}
	if s.LoginShell == "" {
		s.LoginShell = session.DefaultLoginShell
	}
	return s, nil
}

// Builder returns a session builder configured from s.
func (s Settings) Builder() session.Builder {
	return session.Builder{
		SSHBinary:    s.SSHBinary,
		HelperBinary: s.PasswordHelper,
		Mode:         s.PasswordMode,
		LoginShell:   s.LoginShell,
	}
}
