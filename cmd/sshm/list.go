package main

import (
	"github.com/spf13/cobra"

	"ssh-manager/pkg/ui"
)

func newListCmd(a *app) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved connections",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ps := a.loadForRead()
			if len(ps) == 0 {
				a.con.Warn("No saved connections. Use 'sshm add' to add one.")
				return nil
			}
			a.con.Info("%s", a.con.Theme.Header.Render("Saved connections"))
			a.con.Info("%s", ui.RenderProfiles(ps, all, a.con.Theme))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Show every field (port, auth, dir, command)")
	return cmd
}
