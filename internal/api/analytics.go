package api

import (
	"context"
	"fmt"
)

// CustomerUsage aggregates request volume and latency per customer over the
// report window.
type CustomerUsage struct {
	CustomerName      string  `json:"customer_name"`
	TotalRequests     int     `json:"total_requests"`
	AvgResponseTimeMs float64 `json:"avg_response_time_ms"`
	ErrorRate         float64 `json:"error_rate"`
}

// SLAMetric summarizes notebook run outcomes per customer.
type SLAMetric struct {
	CustomerName string  `json:"customer_name"`
	TotalRuns    int     `json:"total_runs"`
	Failures     int     `json:"failures"`
	SuccessRate  float64 `json:"success_rate"`
}

// FailureGroup is a cluster of identical failures, newest occurrence last.
type FailureGroup struct {
	CustomerName   string `json:"customer_name"`
	NotebookName   string `json:"notebook_name"`
	ErrorMessage   string `json:"error_message"`
	Count          int    `json:"count"`
	LastOccurrence string `json:"last_occurrence"`
}

// AnalyticsReport is the full analytics payload for a report window.
type AnalyticsReport struct {
	UsageByCustomer []CustomerUsage `json:"usageByCustomer"`
	SLAMetrics      []SLAMetric     `json:"slaMetrics"`
	TopFailures     []FailureGroup  `json:"topFailures"`
}

// GetAnalytics retrieves the analytics report for the trailing number of
// days. The server accepts any positive window; 7, 30 and 90 are the
// conventional choices.
func (c *Client) GetAnalytics(ctx context.Context, days int) (*AnalyticsReport, error) {
	var resp AnalyticsReport
	endpoint := fmt.Sprintf("/analytics?days=%d", days)
	if _, err := c.Do(ctx, "GET", endpoint, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
