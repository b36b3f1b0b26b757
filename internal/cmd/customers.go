package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/numberskills/nsadmin/internal/api"
	"github.com/numberskills/nsadmin/internal/view"
)

func newCustomersCommand() *cobra.Command {
	customersCmd := &cobra.Command{
		Use:   "customers",
		Short: "Manage customer tenants and their API subscriptions",
	}

	customersCmd.AddCommand(
		newCustomersListCommand(),
		newCustomersCreateCommand(),
		newCustomersDeleteCommand(),
		newCustomersRegenerateKeyCommand(),
		newCustomersCopyKeyCommand(),
	)

	return customersCmd
}

// customersView builds the controller every customers subcommand renders
// through. Mutations go through Mutate so the listing is always refetched
// from the server afterwards rather than patched locally.
func customersView(app *App) *view.Controller[[]api.Customer] {
	return view.NewController(app.Log.WithField("view", "customers"), func(ctx context.Context) ([]api.Customer, error) {
		return app.API.ListCustomers(ctx)
	})
}

func renderCustomers(customers []api.Customer, format string) error {
	switch strings.ToLower(format) {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(customers)
	default:
		if len(customers) == 0 {
			color.New(color.FgYellow).Println("No customers found.")
			return nil
		}

		fmt.Printf("%-25s %-38s %-10s %-18s %-8s %10s\n", "NAME", "TENANT ID", "TIER", "KEY", "ACTIVE", "USAGE 30D")
		fmt.Println(strings.Repeat("-", 115))
		for _, c := range customers {
			fmt.Printf("%-25s %-38s %-10s %-18s ", c.CustomerName, c.TenantID, c.Tier, MaskKey(c.SubscriptionKey))
			if c.IsActive {
				color.New(color.FgGreen).Printf("%-8s ", "yes")
			} else {
				color.New(color.FgRed).Printf("%-8s ", "no")
			}
			fmt.Printf("%10d\n", c.Usage30d)
		}
		return nil
	}
}

func newCustomersListCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all customers with their subscription info",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := MustApp()
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			if err := app.EnsureToken(ctx); err != nil {
				return err
			}

			ctrl := customersView(app)
			if err := ctrl.Load(ctx); err != nil {
				return err
			}
			return renderCustomers(ctrl.Data(), format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format (table|json)")
	return cmd
}

func newCustomersCreateCommand() *cobra.Command {
	var (
		name            string
		tenantID        string
		tier            string
		requestsPerHour int
		requestsPerDay  int
		format          string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Provision a new customer tenant with an API subscription",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return errors.New("--name is required")
			}
			if tenantID == "" {
				return errors.New("--tenant-id is required")
			}
			switch tier {
			case api.TierBasic, api.TierStandard, api.TierPremium:
			default:
				return fmt.Errorf("invalid tier %q: must be basic, standard, or premium", tier)
			}

			app := MustApp()
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			if err := app.EnsureToken(ctx); err != nil {
				return err
			}

			req := api.CreateCustomerRequest{
				CustomerName:    name,
				TenantID:        tenantID,
				Tier:            tier,
				RequestsPerHour: requestsPerHour,
				RequestsPerDay:  requestsPerDay,
			}

			ctrl := customersView(app)
			var created *api.CreateCustomerResponse
			err := ctrl.Mutate(ctx, func(ctx context.Context) error {
				var err error
				created, err = app.API.CreateCustomer(ctx, req)
				return err
			})
			if created == nil && err != nil {
				return err
			}

			color.New(color.FgGreen).Printf("✅ Customer %s created\n", created.CustomerName)
			fmt.Printf("  Tenant ID: %s\n", tenantID)
			fmt.Printf("  Tier: %s\n", created.Tier)
			color.New(color.FgYellow).Println("\nAPI key (shown once, store it now):")
			fmt.Printf("  %s\n", created.APIKey)

			if err != nil {
				// Creation succeeded but the follow-up listing failed.
				color.New(color.FgYellow).Printf("\nWarning: could not refresh customer list: %v\n", err)
				return nil
			}
			fmt.Println()
			return renderCustomers(ctrl.Data(), format)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "customer display name")
	cmd.Flags().StringVar(&tenantID, "tenant-id", "", "tenant identifier (globally unique)")
	cmd.Flags().StringVar(&tier, "tier", api.TierStandard, "subscription tier (basic|standard|premium)")
	cmd.Flags().IntVar(&requestsPerHour, "requests-per-hour", 1000, "hourly rate limit")
	cmd.Flags().IntVar(&requestsPerDay, "requests-per-day", 10000, "daily rate limit")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format (table|json)")
	return cmd
}

func newCustomersDeleteCommand() *cobra.Command {
	var (
		force  bool
		format string
	)

	cmd := &cobra.Command{
		Use:   "delete <tenant-id>",
		Short: "Delete a customer and their subscription",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tenantID := strings.TrimSpace(args[0])
			if tenantID == "" {
				return errors.New("tenant ID cannot be empty")
			}

			if !force {
				ok := view.Confirm(os.Stdin, os.Stdout,
					"Are you sure you want to delete this customer? This will also delete their subscription.")
				if !ok {
					color.New(color.FgYellow).Println("Deletion cancelled.")
					return nil
				}
			}

			app := MustApp()
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			if err := app.EnsureToken(ctx); err != nil {
				return err
			}

			ctrl := customersView(app)
			if err := ctrl.Mutate(ctx, func(ctx context.Context) error {
				return app.API.DeleteCustomer(ctx, tenantID)
			}); err != nil {
				return err
			}

			color.New(color.FgGreen).Printf("✅ Customer %s deleted\n", tenantID)
			fmt.Println()
			return renderCustomers(ctrl.Data(), format)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "skip confirmation prompt")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format (table|json)")
	return cmd
}

func newCustomersRegenerateKeyCommand() *cobra.Command {
	var (
		force  bool
		format string
	)

	cmd := &cobra.Command{
		Use:   "regenerate-key <tenant-id>",
		Short: "Rotate a customer's API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tenantID := strings.TrimSpace(args[0])
			if tenantID == "" {
				return errors.New("tenant ID cannot be empty")
			}

			if !force {
				ok := view.Confirm(os.Stdin, os.Stdout,
					"Regenerate API key? The old key will stop working immediately.")
				if !ok {
					color.New(color.FgYellow).Println("Regeneration cancelled.")
					return nil
				}
			}

			app := MustApp()
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			if err := app.EnsureToken(ctx); err != nil {
				return err
			}

			ctrl := customersView(app)
			var newKey string
			if err := ctrl.Mutate(ctx, func(ctx context.Context) error {
				var err error
				newKey, err = app.API.RegenerateKey(ctx, tenantID)
				return err
			}); err != nil {
				if newKey == "" {
					return err
				}
				color.New(color.FgYellow).Printf("Warning: could not refresh customer list: %v\n", err)
			}

			color.New(color.FgGreen).Printf("✅ API key regenerated for %s\n", tenantID)
			color.New(color.FgYellow).Println("\nNew key (shown once, store it now):")
			fmt.Printf("  %s\n", newKey)
			fmt.Println()
			return renderCustomers(ctrl.Data(), format)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "skip confirmation prompt")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format (table|json)")
	return cmd
}

func newCustomersCopyKeyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "copy-key <tenant-id>",
		Short: "Copy a customer's API key to the clipboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tenantID := strings.TrimSpace(args[0])

			app := MustApp()
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			if err := app.EnsureToken(ctx); err != nil {
				return err
			}

			customers, err := app.API.ListCustomers(ctx)
			if err != nil {
				return err
			}

			for _, c := range customers {
				if c.TenantID != tenantID {
					continue
				}
				if c.SubscriptionKey == "" {
					return fmt.Errorf("customer %s has no API key", tenantID)
				}
				if err := clipboard.WriteAll(c.SubscriptionKey); err != nil {
					return fmt.Errorf("copy to clipboard: %w", err)
				}
				color.New(color.FgGreen).Printf("✅ API key for %s copied to clipboard (%s)\n", c.CustomerName, MaskKey(c.SubscriptionKey))
				return nil
			}
			return fmt.Errorf("customer %s not found", tenantID)
		},
	}

	return cmd
}
