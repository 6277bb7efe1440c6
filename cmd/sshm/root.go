package main

import (
	"os/exec"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"ssh-manager/pkg/profile"
	"ssh-manager/pkg/session"
	"ssh-manager/pkg/settings"
	"ssh-manager/pkg/ui"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	con      *ui.Console
	launcher *session.Launcher
	v        *viper.Viper

	cfgFile string
	debug   bool

	settings settings.Settings
	store    *profile.Store
}

func newApp(con *ui.Console, launcher *session.Launcher) *app {
	return &app{con: con, launcher: launcher, v: settings.New()}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "sshm [alias [command...]]",
		Short: "Manage SSH connection profiles and connect to them",
		Long: `sshm keeps named SSH connection profiles and opens sessions to them.
Passwords can be stored encrypted under a passphrase; they are decrypted
only at connect time and never placed on a command line.

A bare alias is shorthand for "connect <alias>":
  sshm web1
  sshm web1 tail -f /var/log/syslog`,
		Args:              cobra.ArbitraryArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE:              a.runRoot,
	}
	// Everything after the alias belongs to the remote command.
	root.Flags().SetInterspersed(false)

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "settings file (default is <config dir>/ssh-manager/settings.yaml)")
	pf.String("profiles", "", "profiles file (default is <config dir>/ssh-manager/connections.yml)")
	pf.BoolVarP(&a.debug, "debug", "d", false, "Enable debug logs")
	bindFlag(a.v, settings.KeyProfilesFile, pf.Lookup("profiles"))

	root.AddCommand(newAddCmd(a), newListCmd(a), newConnectCmd(a), newDeleteCmd(a))
	return root
}

func bindFlag(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

// setup loads settings, configures logging and opens the store.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	s, err := settings.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.settings = s

	log.SetOutput(a.con.Err)
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	log.SetLevel(s.LogLevel)
	if a.debug {
		log.SetLevel(log.DebugLevel)
	}
	log.Debugf("profiles file: %s, password mode: %s", s.ProfilesFile, s.PasswordMode)

	a.store, err = profile.NewStore(s.ProfilesFile)
	return errors.Wrap(err, "open profiles")
}

// runRoot handles the bare-alias shorthand. cobra has already ruled out the
// subcommands, so the first token is used only if it names a stored alias.
func (a *app) runRoot(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	ps := a.loadForRead()
	if _, ok := ps[args[0]]; !ok {
		return errors.Errorf("unknown command or alias %q (see 'sshm --help')", args[0])
	}
	return a.connect(cmd.Context(), ps, args[0], args[1:], false)
}

// loadForRead returns the stored profiles for read-only commands. A broken
// file is reported and treated as empty.
func (a *app) loadForRead() profile.Profiles {
	ps, err := a.store.Load()
	if err != nil {
		a.con.Warn("Warning: %v (continuing with no profiles)", err)
	}
	return ps
}

// missingTool turns a failed cipher lookup into the same not-found error the
// launcher returns, so both get the install hint and exit code 127.
func missingTool(name string, err error) error {
	if errors.Is(err, exec.ErrNotFound) {
		return &session.ExecutableNotFoundError{Name: name, Err: err}
	}
	return err
}
