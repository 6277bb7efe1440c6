package main

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"ssh-manager/pkg/profile"
	"ssh-manager/pkg/secret"
	"ssh-manager/pkg/session"
)

func newConnectCmd(a *app) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:     "connect [alias] [command...]",
		Aliases: []string{"c"},
		Short:   "Connect to a saved profile, optionally running a command",
		Long: `Connect to a saved profile. Without an alias an interactive picker
opens. Tokens after the alias are joined into the remote command and
replace the profile's default command.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ps := a.loadForRead()
			alias := ""
			if len(args) > 0 {
				alias, args = args[0], args[1:]
			} else {
				var err error
				if alias, err = a.con.Pick(ps); err != nil {
					return err
				}
			}
			return a.connect(cmd.Context(), ps, alias, args, dryRun)
		},
	}
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Print the ssh command (secrets redacted) instead of running it")
	return cmd
}

// connect runs the session pipeline for one alias: lookup, credential
// channel, remote command, argv, launch. Nothing is spawned if any step
// before the launch fails.
func (a *app) connect(ctx context.Context, ps profile.Profiles, alias string, override []string, dryRun bool) error {
	p, err := ps.Lookup(alias)
	if err != nil {
		return err
	}

	var rev session.Revealer = &secret.Resolver{
		Cipher: secret.NewCipher(a.settings.CipherBinary),
		Prompt: a.con,
	}
	if dryRun {
		rev = placeholderRevealer{}
	}
	ch, err := session.SelectChannel(ctx, p, rev)
	if err != nil {
		return errors.Wrapf(missingTool(a.settings.CipherBinary, err), "connect %s", alias)
	}
	log.Debugf("%s: auth via %s", alias, ch)

	b := a.settings.Builder()
	inv, err := b.Build(p, ch, b.RemoteCommand(p, override))
	if err != nil {
		return errors.Wrapf(err, "connect %s", alias)
	}
	if dryRun {
		a.con.Info("%s", inv)
		return nil
	}

	r := p.Resolved()
	a.con.Info("Connecting to %s...", a.con.Theme.Success.Render(r.User+"@"+r.Host))
	_, err = a.launcher.Launch(ctx, inv)
	return err
}

// placeholderRevealer stands in for the passphrase prompt on dry runs; the
// password is redacted from the output anyway.
type placeholderRevealer struct{}

func (placeholderRevealer) Reveal(context.Context, string) (string, error) {
	return "<redacted>", nil
}
