package cmd

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and purge local credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := MustApp()

			sess, err := app.Sessions.Load()
			if err != nil {
				return err
			}
			if sess == nil {
				color.New(color.FgYellow).Println("No active session. Run `nsadmin login` to authenticate.")
				return nil
			}

			// There is no server-side revocation endpoint; tokens simply age
			// out. Clearing the cache is the whole logout.
			if err := app.Sessions.Clear(); err != nil {
				return err
			}

			color.New(color.FgGreen).Println("🔒 Signed out. Local credentials removed.")
			return nil
		},
	}
}
