package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newLoginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign in to the monitoring platform",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := MustApp()

			// Device flow involves the user visiting a verification URL, so
			// the window here is generous compared to plain API calls.
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()

			signalChan := make(chan os.Signal, 1)
			signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
			go func() {
				select {
				case <-signalChan:
					fmt.Fprintf(os.Stderr, "\nInterrupted, cancelling login...\n")
					cancel()
				case <-ctx.Done():
				}
			}()

			sess, err := app.Identity.SignIn(ctx)
			if err != nil {
				return err
			}

			sess.APIBaseURL = app.Config.APIBaseURL
			sess.OutputFormat = app.OutputFormat
			if err := app.Sessions.Save(sess); err != nil {
				return err
			}
			app.API.SetToken(sess.Token)

			name := sess.Account.Name
			if name == "" {
				name = sess.Account.Email
			}
			if name == "" {
				name = "admin"
			}
			color.New(color.FgGreen).Printf("✅ Login successful — welcome, %s\n", name)
			return nil
		},
	}
}
