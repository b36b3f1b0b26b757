package api

import (
	"context"
)

// DashboardStats holds the aggregate counts rendered on the dashboard.
// All values are recomputed server-side; nothing is derived locally.
type DashboardStats struct {
	TotalCustomers      int `json:"totalCustomers"`
	ActiveSubscriptions int `json:"activeSubscriptions"`
	TotalAPICalls       int `json:"totalApiCalls"`
	RecentFailures      int `json:"recentFailures"`
}

// ActivityEntry is an immutable monitoring log record; append-only from the
// client's perspective.
type ActivityEntry struct {
	CustomerName string `json:"customer_name"`
	NotebookName string `json:"notebook_name"`
	Status       string `json:"status"`
	Type         string `json:"type"`
	Timestamp    string `json:"timestamp"`
}

// GetDashboardStats retrieves the dashboard aggregate counts.
func (c *Client) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	var resp DashboardStats
	if _, err := c.Do(ctx, "GET", "/dashboard/stats", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetRecentActivity retrieves the most recent monitoring events.
func (c *Client) GetRecentActivity(ctx context.Context) ([]ActivityEntry, error) {
	var resp []ActivityEntry
	if _, err := c.Do(ctx, "GET", "/dashboard/activity", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}
