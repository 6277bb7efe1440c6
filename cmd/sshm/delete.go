package main

import (
	"github.com/spf13/cobra"
)

func newDeleteCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "delete <alias>",
		Aliases: []string{"rm"},
		Short:   "Delete a saved connection",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alias := args[0]
			if _, err := a.store.Get(alias); err != nil {
				return err
			}
			if !yes {
				ok, err := a.con.Confirm("Delete connection '"+alias+"'?", false)
				if err != nil {
					return err
				}
				if !ok {
					a.con.Info("Nothing deleted.")
					return nil
				}
			}
			if err := a.store.Remove(alias); err != nil {
				return err
			}
			a.con.Success("Connection '%s' deleted.", alias)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
