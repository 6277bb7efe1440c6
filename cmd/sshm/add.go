package main

import (
	"context"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"ssh-manager/pkg/profile"
	"ssh-manager/pkg/secret"
)

// authChoices are offered in this order; the numbers are what users type.
var authChoices = []struct {
	name  string
	label string
}{
	{"key", "SSH key"},
	{"plain", "Password (plain text)"},
	{"encrypted", "Password (encrypted)"},
	{"none", "None"},
}

type addOptions struct {
	host string
	user string
	port int
	key  string
	dir  string
	cmd  string
	auth string

	// changed reports whether a flag was given, so that an explicit empty
	// value skips the prompt.
	changed func(name string) bool
}

func newAddCmd(a *app) *cobra.Command {
	var o addOptions
	cmd := &cobra.Command{
		Use:   "add [alias]",
		Short: "Add a new connection",
		Long: `Add a new connection. Missing fields are asked for interactively;
passwords and passphrases are always typed without echo.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o.changed = cmd.Flags().Changed
			alias := ""
			if len(args) == 1 {
				alias = args[0]
			}
			return a.add(cmd.Context(), alias, o)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.host, "host", "", "host name or IP")
	f.StringVar(&o.user, "user", "", "remote user (default: local account)")
	f.IntVar(&o.port, "port", 0, "port (default 22)")
	f.StringVar(&o.key, "key", "", "private key path (implies --auth key)")
	f.StringVar(&o.dir, "dir", "", "remote directory to cd into")
	f.StringVar(&o.cmd, "cmd", "", "default remote command")
	f.StringVar(&o.auth, "auth", "", "authentication: key|plain|encrypted|none (or 1-4)")
	return cmd
}

func (a *app) add(ctx context.Context, alias string, o addOptions) error {
	if o.changed == nil {
		o.changed = func(string) bool { return false }
	}
	existing, err := a.store.Load()
	if err != nil {
		return errors.Wrap(err, "add")
	}

	a.con.Info("%s", a.con.Theme.Header.Render("Adding a new connection..."))

	if alias != "" {
		if err := profile.ValidateAlias(alias); err != nil {
			return err
		}
		if _, ok := existing[alias]; ok {
			return errors.Wrapf(profile.ErrAliasExists, "add %q", alias)
		}
	} else if alias, err = a.askAlias(existing); err != nil {
		return err
	}

	var p profile.Profile
	if p.Host, err = a.askRequired(o.host, "Host (IP or domain)"); err != nil {
		return err
	}
	if p.User, err = a.askOptional(o, "user", o.user, "User", profile.CurrentUsername()); err != nil {
		return err
	}
	if p.Port, err = a.askPort(o); err != nil {
		return err
	}

	auth, err := a.askAuth(o)
	if err != nil {
		return err
	}
	switch auth {
	case "key":
		if p.KeyPath, err = a.askRequired(o.key, "Path to private key (e.g. ~/.ssh/id_ed25519)"); err != nil {
			return err
		}
		a.reportKey(p.KeyPath)
	case "plain":
		if p.Password, err = a.askPassword("Password"); err != nil {
			return err
		}
	case "encrypted":
		if p.Password, err = a.askEncryptedPassword(ctx); err != nil {
			return err
		}
	}

	if p.RemoteDir, err = a.askOptional(o, "dir", o.dir, "Remote directory (optional)", ""); err != nil {
		return err
	}
	if p.DefaultCommand, err = a.askOptional(o, "cmd", o.cmd, "Default command (optional)", ""); err != nil {
		return err
	}

	if err := a.store.Add(alias, p); err != nil {
		return err
	}
	a.con.Success("Connection '%s' added.", alias)
	return nil
}

func (a *app) askAlias(existing profile.Profiles) (string, error) {
	for {
		alias, err := a.con.Ask("Alias (short name)", "")
		if err != nil {
			return "", err
		}
		if err := profile.ValidateAlias(alias); err != nil {
			a.con.Error("Invalid alias: %v.", err)
			continue
		}
		if _, ok := existing[alias]; ok {
			a.con.Error("Alias '%s' already exists.", alias)
			continue
		}
		return alias, nil
	}
}

// askRequired returns given when non-empty, else prompts until an answer.
func (a *app) askRequired(given, prompt string) (string, error) {
	if v := strings.TrimSpace(given); v != "" {
		return v, nil
	}
	for {
		v, err := a.con.Ask(prompt, "")
		if err != nil {
			return "", err
		}
		if v != "" {
			return v, nil
		}
		a.con.Error("A value is required.")
	}
}

func (a *app) askOptional(o addOptions, flag, given, prompt, def string) (string, error) {
	if o.changed(flag) {
		return strings.TrimSpace(given), nil
	}
	return a.con.Ask(prompt, def)
}

func (a *app) askPort(o addOptions) (int, error) {
	if o.changed("port") {
		if o.port < 1 || o.port > 65535 {
			return 0, &profile.ValidationError{Field: "port", Reason: "must be between 1 and 65535"}
		}
		return o.port, nil
	}
	for {
		port, err := a.con.AskInt("Port", profile.DefaultPort)
		if err != nil {
			return 0, err
		}
		if port >= 1 && port <= 65535 {
			return port, nil
		}
		a.con.Error("Port must be between 1 and 65535.")
	}
}

func (a *app) askAuth(o addOptions) (string, error) {
	if v := strings.ToLower(strings.TrimSpace(o.auth)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= len(authChoices) {
			return authChoices[n-1].name, nil
		}
		for _, c := range authChoices {
			if v == c.name {
				return c.name, nil
			}
		}
		return "", &profile.ValidationError{Field: "auth", Reason: "must be one of key, plain, encrypted, none"}
	}
	if strings.TrimSpace(o.key) != "" {
		return "key", nil
	}
	labels := make([]string, len(authChoices))
	for i, c := range authChoices {
		labels[i] = c.label
	}
	a.con.Info("Authentication type:")
	idx, err := a.con.Choose("Choice", labels, 0)
	if err != nil {
		return "", err
	}
	return authChoices[idx].name, nil
}

// reportKey inspects the key file and warns without failing; the key may
// legitimately be created after the profile.
func (a *app) reportKey(path string) {
	info, err := profile.InspectKey(path)
	switch {
	case err != nil:
		a.con.Warn("Warning: %v", err)
	case info.Fingerprint != "":
		a.con.Info("Key %s (%s)", info.Fingerprint, info.Type)
	case info.Encrypted:
		a.con.Info("Key is passphrase protected; ssh will ask for it.")
	}
}

func (a *app) askPassword(prompt string) (string, error) {
	pw, err := a.con.AskSecret(prompt)
	if err != nil {
		return "", err
	}
	if pw == "" {
		return "", &profile.ValidationError{Field: "password", Reason: "is required"}
	}
	return pw, nil
}

func (a *app) askEncryptedPassword(ctx context.Context) (string, error) {
	pass, err := a.con.AskSecret("Passphrase to encrypt with")
	if err != nil {
		return "", err
	}
	if pass == "" {
		return "", secret.ErrEmptyPassphrase
	}
	again, err := a.con.AskSecret("Repeat passphrase")
	if err != nil {
		return "", err
	}
	if again != pass {
		return "", errors.New("passphrases do not match")
	}
	pw, err := a.askPassword("Password to encrypt")
	if err != nil {
		return "", err
	}
	sealed, err := secret.NewCipher(a.settings.CipherBinary).Encrypt(ctx, pw, pass)
	if err != nil {
		return "", errors.Wrap(missingTool(a.settings.CipherBinary, err), "encrypt password")
	}
	return sealed.String(), nil
}
