package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/numberskills/nsadmin/internal/identity"
)

// MaskKey renders a subscription key for display without exposing the whole
// secret. Short or absent keys get a placeholder instead of a partial reveal.
func MaskKey(key string) string {
	if key == "" {
		return "No key"
	}
	if len(key) < 12 {
		return "No key"
	}
	return key[:8] + "..." + key[len(key)-4:]
}

func newHealthCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check API health status",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := MustApp()
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			// Health is reachable anonymously; a missing account is fine.
			if err := app.EnsureToken(ctx); err != nil && !errors.Is(err, identity.ErrNoActiveAccount) {
				return err
			}

			healthResp, err := app.API.Health(ctx)
			if err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}

			switch strings.ToLower(format) {
			case "json":
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")
				return encoder.Encode(healthResp)
			default:
				status := "unknown"
				if s, ok := healthResp["status"].(string); ok {
					status = s
				}

				if strings.EqualFold(status, "healthy") {
					color.New(color.FgGreen, color.Bold).Printf("✅ API Status: %s\n", status)
				} else {
					color.New(color.FgRed, color.Bold).Printf("❌ API Status: %s\n", status)
				}

				for key, value := range healthResp {
					if key != "status" {
						fmt.Printf("  %s: %v\n", key, value)
					}
				}
				return nil
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format (table|json)")
	return cmd
}

func newWhoamiCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Display the signed-in account and session information",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := MustApp()
			sess, err := app.Sessions.Load()
			if err != nil {
				return err
			}
			if sess == nil {
				color.New(color.FgYellow).Println("Not authenticated. Run `nsadmin login` to authenticate.")
				return nil
			}

			switch strings.ToLower(format) {
			case "json":
				output := map[string]interface{}{
					"account": map[string]interface{}{
						"name":  sess.Account.Name,
						"email": sess.Account.Email,
					},
					"session": map[string]interface{}{
						"api_url":    sess.APIBaseURL,
						"issued_at":  sess.SavedAt.Format(time.RFC3339),
						"expires_at": sess.ExpiresAt().Format(time.RFC3339),
					},
				}
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")
				return encoder.Encode(output)
			default:
				name := sess.Account.Name
				if name == "" {
					name = sess.Account.Email
				}
				color.New(color.FgCyan, color.Bold).Printf("Logged in as: %s\n", name)
				fmt.Printf("\nAccount:\n")
				fmt.Printf("  Name: %s\n", sess.Account.Name)
				fmt.Printf("  Email: %s\n", sess.Account.Email)

				fmt.Printf("\nSession:\n")
				fmt.Printf("  API Endpoint: %s\n", sess.APIBaseURL)
				fmt.Printf("  Issued: %s\n", sess.SavedAt.Format(time.RFC3339))

				expiry := sess.ExpiresAt()
				if !expiry.IsZero() {
					if sess.IsExpired(0) {
						color.New(color.FgRed).Printf("  Expired: %s\n", expiry.Format(time.RFC3339))
					} else if sess.IsExpired(5 * time.Minute) {
						color.New(color.FgYellow).Printf("  Expires: %s (soon)\n", expiry.Format(time.RFC3339))
					} else {
						color.New(color.FgGreen).Printf("  Expires: %s\n", expiry.Format(time.RFC3339))
					}
				}

				return nil
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format (table|json)")
	return cmd
}
