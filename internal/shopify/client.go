// Package shopify fetches orders due for fulfillment from a Shopify
// storefront and normalizes them into the canonical order model.
package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kingsofalchemy/ordertracker-backend/internal/orders"
	"github.com/kingsofalchemy/ordertracker-backend/pkg/config"
	pkgerrors "github.com/kingsofalchemy/ordertracker-backend/pkg/errors"
)

const (
	accessTokenHeader = "X-Shopify-Access-Token"
	pageLimit         = 250
)

// Client talks to the Shopify Admin REST API with a static access token.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
	now         func() time.Time
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithClock overrides the wall clock used for the lookback window.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient builds a Shopify client from the storefront configuration.
func NewClient(cfg config.ShopifyConfig, opts ...Option) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("shopify base url is required")
	}
	token := strings.TrimSpace(cfg.AccessToken)
	if token == "" {
		return nil, fmt.Errorf("shopify access token is required")
	}

	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     baseURL,
		accessToken: token,
		now:         time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// FetchOrders returns orders created within the lookback window, any
// status, normalized into the canonical model. One bounded request; the
// storefront feed is small enough that a single page covers the window.
func (c *Client) FetchOrders(ctx context.Context) ([]orders.Order, error) {
	now := c.now().UTC()
	createdAtMin := now.Add(-orders.LookbackWindow)

	query := url.Values{}
	query.Set("status", "any")
	query.Set("limit", fmt.Sprint(pageLimit))
	query.Set("created_at_min", createdAtMin.Format(time.RFC3339))
	reqURL := fmt.Sprintf("%s/orders.json?%s", c.baseURL, query.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstreamTransport, err, "build shopify orders request")
	}
	httpReq.Header.Set(accessTokenHeader, c.accessToken)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstreamTransport, err, "execute shopify orders request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, pkgerrors.New(pkgerrors.CodeUpstreamHTTP, fmt.Sprintf("shopify api status %d", resp.StatusCode)).
			WithDetails(map[string]any{"status": resp.StatusCode})
	}

	var payload ordersResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstreamParse, err, "decode shopify orders response")
	}

	result := make([]orders.Order, 0, len(payload.Orders))
	for _, raw := range payload.Orders {
		result = append(result, normalizeOrder(raw, now))
	}
	return result, nil
}
