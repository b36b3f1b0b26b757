package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListCustomers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/customers", r.URL.Path)
		w.Write([]byte(`[
			{"customer_name":"Acme","tenant_id":"acme-001","subscription_key":"sk_live_abcdef123456","tier":"premium","is_active":true,"requests_per_hour":5000,"requests_per_day":50000,"usage_30d":120345},
			{"customer_name":"Globex","tenant_id":"globex-001","subscription_key":"","tier":"basic","is_active":false,"requests_per_hour":1000,"requests_per_day":10000,"usage_30d":0}
		]`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	customers, err := client.ListCustomers(context.Background())
	require.NoError(t, err)
	require.Len(t, customers, 2)

	assert.Equal(t, "Acme", customers[0].CustomerName)
	assert.Equal(t, "acme-001", customers[0].TenantID)
	assert.Equal(t, "sk_live_abcdef123456", customers[0].SubscriptionKey)
	assert.True(t, customers[0].IsActive)
	assert.Equal(t, 120345, customers[0].Usage30d)

	assert.Equal(t, "Globex", customers[1].CustomerName)
	assert.False(t, customers[1].IsActive)
	assert.Empty(t, customers[1].SubscriptionKey)
}

func TestCreateCustomer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/customers", r.URL.Path)

		var req CreateCustomerRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Acme", req.CustomerName)
		assert.Equal(t, "acme-001", req.TenantID)
		assert.Equal(t, TierStandard, req.Tier)
		assert.Equal(t, 1000, req.RequestsPerHour)
		assert.Equal(t, 10000, req.RequestsPerDay)

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"customer_id":"cus_1","customer_name":"Acme","api_key":"sk_live_new","tier":"standard","status":"active"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	resp, err := client.CreateCustomer(context.Background(), CreateCustomerRequest{
		CustomerName:    "Acme",
		TenantID:        "acme-001",
		Tier:            TierStandard,
		RequestsPerHour: 1000,
		RequestsPerDay:  10000,
	})
	require.NoError(t, err)
	assert.Equal(t, "cus_1", resp.CustomerID)
	assert.Equal(t, "sk_live_new", resp.APIKey)
	assert.Equal(t, "active", resp.Status)
}

func TestDeleteCustomerIssuesSingleDelete(t *testing.T) {
	var deletes int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "DELETE", r.Method)
		require.Equal(t, "/customers/acme-001", r.URL.Path)
		deletes++
		w.Write([]byte(`{"status":"deleted"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	require.NoError(t, client.DeleteCustomer(context.Background(), "acme-001"))
	assert.Equal(t, 1, deletes)
}

func TestRegenerateKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/customers/acme-001/regenerate-key", r.URL.Path)
		w.Write([]byte(`{"new_key":"sk_live_rotated"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	key, err := client.RegenerateKey(context.Background(), "acme-001")
	require.NoError(t, err)
	assert.Equal(t, "sk_live_rotated", key)
}

func TestRegenerateKeyServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"customer not found"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.RegenerateKey(context.Background(), "ghost")
	require.Error(t, err)
	assert.EqualError(t, err, "customer not found")
}
