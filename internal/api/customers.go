package api

import (
	"context"
)

// Customer represents a tenant subscription as reported by the server. The
// tenant ID is globally unique and immutable after creation; the subscription
// key is regenerable server-side but never mutated by the client directly.
type Customer struct {
	CustomerName    string `json:"customer_name"`
	TenantID        string `json:"tenant_id"`
	SubscriptionKey string `json:"subscription_key"`
	Tier            string `json:"tier"`
	IsActive        bool   `json:"is_active"`
	RequestsPerHour int    `json:"requests_per_hour"`
	RequestsPerDay  int    `json:"requests_per_day"`
	Usage30d        int    `json:"usage_30d"`
}

// Subscription tiers accepted by the backend.
const (
	TierBasic    = "basic"
	TierStandard = "standard"
	TierPremium  = "premium"
)

// CreateCustomerRequest is the payload for provisioning a new tenant.
type CreateCustomerRequest struct {
	CustomerName    string `json:"customer_name"`
	TenantID        string `json:"tenant_id"`
	Tier            string `json:"tier"`
	RequestsPerHour int    `json:"requests_per_hour"`
	RequestsPerDay  int    `json:"requests_per_day"`
}

// CreateCustomerResponse is returned once the server has provisioned the
// tenant and its subscription. APIKey is the only time the full key is
// handed out unprompted.
type CreateCustomerResponse struct {
	CustomerID   string `json:"customer_id"`
	CustomerName string `json:"customer_name"`
	APIKey       string `json:"api_key"`
	Tier         string `json:"tier"`
	Status       string `json:"status"`
}

// ListCustomers retrieves all customers with their subscription info.
func (c *Client) ListCustomers(ctx context.Context) ([]Customer, error) {
	var resp []Customer
	if _, err := c.Do(ctx, "GET", "/customers", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// CreateCustomer provisions a new tenant with an API subscription.
func (c *Client) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*CreateCustomerResponse, error) {
	var resp CreateCustomerResponse
	if _, err := c.Do(ctx, "POST", "/customers", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteCustomer removes a tenant and its subscription.
func (c *Client) DeleteCustomer(ctx context.Context, tenantID string) error {
	_, err := c.Do(ctx, "DELETE", "/customers/"+tenantID, nil, nil)
	return err
}

// RegenerateKey rotates a tenant's API key. The old key is invalidated
// atomically with the new key's issuance, per the server contract.
func (c *Client) RegenerateKey(ctx context.Context, tenantID string) (string, error) {
	resp := struct {
		NewKey string `json:"new_key"`
	}{}
	if _, err := c.Do(ctx, "POST", "/customers/"+tenantID+"/regenerate-key", nil, &resp); err != nil {
		return "", err
	}
	return resp.NewKey, nil
}
