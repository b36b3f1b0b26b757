package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/numberskills/nsadmin/internal/api"
)

func newDashboardCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show platform stats and recent notebook activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := MustApp()
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			if err := app.EnsureToken(ctx); err != nil {
				return err
			}

			var (
				stats    *api.DashboardStats
				activity []api.ActivityEntry
			)

			// The two dashboard panels are independent; fetch them together.
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				var err error
				stats, err = app.API.GetDashboardStats(gctx)
				return err
			})
			g.Go(func() error {
				var err error
				activity, err = app.API.GetRecentActivity(gctx)
				return err
			})
			if err := g.Wait(); err != nil {
				return err
			}

			switch strings.ToLower(format) {
			case "json":
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")
				return encoder.Encode(map[string]interface{}{
					"stats":    stats,
					"activity": activity,
				})
			default:
				color.New(color.FgCyan, color.Bold).Println("Platform Overview")
				fmt.Printf("  Total Customers:      %d\n", stats.TotalCustomers)
				fmt.Printf("  Active Subscriptions: %d\n", stats.ActiveSubscriptions)
				fmt.Printf("  API Calls (30d):      %d\n", stats.TotalAPICalls)
				if stats.RecentFailures > 0 {
					fmt.Printf("  Recent Failures:      ")
					color.New(color.FgRed).Printf("%d\n", stats.RecentFailures)
				} else {
					fmt.Printf("  Recent Failures:      %d\n", stats.RecentFailures)
				}

				fmt.Println()
				color.New(color.FgCyan, color.Bold).Println("Recent Activity")
				if len(activity) == 0 {
					color.New(color.FgYellow).Println("  No recent activity.")
					return nil
				}
				for _, entry := range activity {
					if strings.EqualFold(entry.Status, "success") {
						color.New(color.FgGreen).Printf("  ✓ ")
					} else {
						color.New(color.FgRed).Printf("  ✗ ")
					}
					fmt.Printf("%-25s %-30s %-10s %s\n", entry.CustomerName, entry.NotebookName, entry.Type, entry.Timestamp)
				}
				return nil
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format (table|json)")
	return cmd
}
