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
)

func newAnalyticsCommand() *cobra.Command {
	var (
		days   int
		format string
	)

	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "View usage, SLA, and failure analytics",
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				return fmt.Errorf("invalid --days %d: must be positive", days)
			}

			app := MustApp()
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			if err := app.EnsureToken(ctx); err != nil {
				return err
			}

			report, err := app.API.GetAnalytics(ctx, days)
			if err != nil {
				return err
			}

			switch strings.ToLower(format) {
			case "json":
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")
				return encoder.Encode(report)
			default:
				color.New(color.FgCyan, color.Bold).Printf("Analytics (last %d days)\n", days)

				fmt.Printf("\nUsage by Customer:\n")
				if len(report.UsageByCustomer) == 0 {
					color.New(color.FgYellow).Println("  No usage recorded.")
				} else {
					fmt.Printf("  %-25s %12s %12s %10s\n", "CUSTOMER", "REQUESTS", "AVG MS", "ERR RATE")
					for _, u := range report.UsageByCustomer {
						fmt.Printf("  %-25s %12d %12.1f ", u.CustomerName, u.TotalRequests, u.AvgResponseTimeMs)
						rateColor := color.New(color.FgGreen)
						if u.ErrorRate > 0.05 {
							rateColor = color.New(color.FgRed)
						} else if u.ErrorRate > 0.01 {
							rateColor = color.New(color.FgYellow)
						}
						rateColor.Printf("%9.2f%%\n", u.ErrorRate*100)
					}
				}

				fmt.Printf("\nSLA Metrics:\n")
				if len(report.SLAMetrics) == 0 {
					color.New(color.FgYellow).Println("  No notebook runs recorded.")
				} else {
					fmt.Printf("  %-25s %10s %10s %10s\n", "CUSTOMER", "RUNS", "FAILURES", "SUCCESS")
					for _, m := range report.SLAMetrics {
						fmt.Printf("  %-25s %10d %10d ", m.CustomerName, m.TotalRuns, m.Failures)
						successColor := color.New(color.FgGreen)
						if m.SuccessRate < 0.95 {
							successColor = color.New(color.FgRed)
						} else if m.SuccessRate < 0.99 {
							successColor = color.New(color.FgYellow)
						}
						successColor.Printf("%9.1f%%\n", m.SuccessRate*100)
					}
				}

				fmt.Printf("\nTop Failures:\n")
				if len(report.TopFailures) == 0 {
					color.New(color.FgGreen).Println("  No failures. 🎉")
				} else {
					for _, f := range report.TopFailures {
						color.New(color.FgRed).Printf("  ✗ %s / %s", f.CustomerName, f.NotebookName)
						fmt.Printf(" (%dx, last %s)\n", f.Count, f.LastOccurrence)
						fmt.Printf("    %s\n", f.ErrorMessage)
					}
				}
				return nil
			}
		},
	}

	cmd.Flags().IntVar(&days, "days", 30, "report window in days (7, 30, or 90 are typical)")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format (table|json)")
	return cmd
}
