package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Client wraps HTTP access to the admin portal API. All resource operations
// funnel through Do, which owns header construction, error normalization, and
// JSON decoding.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	userAgent  string
	log        logrus.FieldLogger

	mu    sync.RWMutex
	token string
}

// Option mutates client configuration.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the HTTP timeout on the underlying client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if c.httpClient == nil {
			c.httpClient = &http.Client{}
		}
		c.httpClient.Timeout = timeout
	}
}

// WithUserAgent configures a custom user agent.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient constructs a new API client for the given base URL.
func NewClient(base string, opts ...Option) *Client {
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + strings.TrimLeft(base, "/")
	}
	base = strings.TrimSuffix(base, "/")

	parsed, err := url.Parse(base)
	if err != nil {
		panic(fmt.Sprintf("invalid api base url: %s", err))
	}

	client := &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		userAgent:  "nsadmin",
		log:        logrus.WithField("component", "api"),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// SetToken configures the bearer token for subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token returns the currently configured bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Do issues an HTTP request against the API and decodes the JSON response
// into v when provided. Non-2xx responses are returned as an *APIError
// carrying the server's message; a successful body is decoded verbatim with
// no shape validation beyond what the caller's type imposes.
func (c *Client) Do(ctx context.Context, method, endpoint string, payload interface{}, v interface{}) (*http.Response, error) {
	req, err := c.newRequest(ctx, method, endpoint, payload)
	if err != nil {
		return nil, err
	}

	c.log.WithFields(logrus.Fields{
		"method":     method,
		"url":        req.URL.String(),
		"request_id": req.Header.Get("X-Request-ID"),
	}).Debug("api request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("request cancelled or timed out: %w", ctx.Err())
		}
		return nil, fmt.Errorf("perform request: %w", err)
	}

	c.log.WithField("status", resp.Status).Debug("api response")

	defer func() {
		if resp.Body != nil && v == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, parseAPIError(resp)
	}

	if v != nil {
		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			return resp, fmt.Errorf("decode response: %w", err)
		}
	}

	return resp, nil
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, payload interface{}) (*http.Request, error) {
	method = strings.ToUpper(method)

	endpoint = strings.TrimSpace(endpoint)
	var rawQuery string
	if idx := strings.Index(endpoint, "?"); idx >= 0 {
		rawQuery = endpoint[idx+1:]
		endpoint = endpoint[:idx]
	}

	target := *c.baseURL
	target.Path = path.Join(c.baseURL.Path, strings.TrimLeft(endpoint, "/"))
	if rawQuery != "" {
		target.RawQuery = rawQuery
	}

	var reader io.Reader
	if payload != nil {
		body := &bytes.Buffer{}
		if err := json.NewEncoder(body).Encode(payload); err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		reader = body
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	// The Authorization header is always present: "Bearer <token>" when a
	// token is configured, an empty value when not. Some deployments expose
	// anonymous endpoints (health) behind the same gateway, so the empty
	// header is a permissive default rather than an anonymous-access
	// guarantee.
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	} else {
		req.Header.Set("Authorization", "")
	}

	return req, nil
}

// Health checks the API health endpoint. It requires no authentication.
func (c *Client) Health(ctx context.Context) (map[string]interface{}, error) {
	var resp map[string]interface{}
	if _, err := c.Do(ctx, "GET", "/health", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}
