// Package shopify fetches open, unfulfilled orders from the Shopify Admin REST API.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/seamonger/procurement/internal/domain"
)

const (
	// DefaultAPIVersion is used when no version is configured.
	DefaultAPIVersion = "2025-10"

	// accessTokenHeader carries the Admin API token.
	accessTokenHeader = "X-Shopify-Access-Token"

	pageLimit = 50
)

// Config configures a Client.
type Config struct {
	StoreDomain string
	AccessToken string
	APIVersion  string
	Timeout     time.Duration
	Logger      *zap.Logger
}

// Client implements domain.OrderSource against one shop.
type Client struct {
	HTTPClient *http.Client

	storeDomain string
	accessToken string
	apiVersion  string
	log         *zap.Logger
}

// New creates a Client. A zero timeout falls back to 20 seconds.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	version := cfg.APIVersion
	if version == "" {
		version = DefaultAPIVersion
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		HTTPClient:  &http.Client{Timeout: timeout},
		storeDomain: strings.TrimSuffix(strings.TrimPrefix(cfg.StoreDomain, "https://"), "/"),
		accessToken: cfg.AccessToken,
		apiVersion:  version,
		log:         log,
	}
}

// Configured reports whether both the store domain and token are set.
func (c *Client) Configured() bool {
	return c.storeDomain != "" && c.accessToken != ""
}

// OrdersURL returns the endpoint queried by FetchOrders.
func (c *Client) OrdersURL() string {
	q := url.Values{}
	q.Set("status", "open")
	q.Set("fulfillment_status", "unfulfilled")
	q.Set("limit", fmt.Sprint(pageLimit))
	return fmt.Sprintf("https://%s/admin/api/%s/orders.json?%s", c.storeDomain, c.apiVersion, q.Encode())
}

// FetchOrders returns the shop's open, unfulfilled orders.
// An unconfigured client returns no orders and no error.
func (c *Client) FetchOrders(ctx context.Context) ([]domain.Order, error) {
	if !c.Configured() {
		c.log.Debug("shopify not configured, skipping fetch")
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.OrdersURL(), http.NoBody)
	if err != nil {
		return nil, domain.Wrap(domain.ErrOrderSourceFailed, "build request", err)
	}
	req.Header.Set(accessTokenHeader, c.accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, domain.Wrap(domain.ErrOrderSourceFailed, "fetch orders", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.Wrap(domain.ErrOrderSourceFailed, "read response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.Wrap(domain.ErrOrderSourceFailed,
			fmt.Sprintf("unexpected status %d", resp.StatusCode),
			fmt.Errorf("%s", bytes.TrimSpace(body)))
	}

	var payload ordersResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, domain.Wrap(domain.ErrInvalidResponse, "decode orders", err)
	}

	orders := make([]domain.Order, 0, len(payload.Orders))
	for _, o := range payload.Orders {
		order := domain.Order{ID: string(o.ID)}
		for _, li := range o.LineItems {
			order.LineItems = append(order.LineItems, domain.LineItem{Name: li.Name, Quantity: li.Quantity})
		}
		orders = append(orders, order)
	}
	c.log.Debug("fetched orders", zap.Int("count", len(orders)))
	return orders, nil
}

type ordersResponse struct {
	Orders []orderPayload `json:"orders"`
}

type orderPayload struct {
	ID        flexibleID        `json:"id"`
	LineItems []lineItemPayload `json:"line_items"`
}

type lineItemPayload struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// flexibleID accepts an identifier encoded as either a JSON number or string.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("order id: %w", err)
	}
	*f = flexibleID(n.String())
	return nil
}
