// Package whatsapp sends text messages through a WhatsApp HTTP gateway.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/seamonger/procurement/internal/domain"
)

// Config configures a Client.
type Config struct {
	APIURL   string
	APIToken string
	Timeout  time.Duration
	Logger   *zap.Logger
}

// Client implements domain.Messenger. Without an API URL it only logs.
type Client struct {
	HTTPClient *http.Client

	apiURL   string
	apiToken string
	log      *zap.Logger
}

// New creates a Client. A zero timeout falls back to 15 seconds.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		HTTPClient: &http.Client{Timeout: timeout},
		apiURL:     strings.TrimSuffix(cfg.APIURL, "/"),
		apiToken:   cfg.APIToken,
		log:        log,
	}
}

type sendRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// Send posts text to the gateway's /messages endpoint.
func (c *Client) Send(ctx context.Context, to, text string) error {
	if c.apiURL == "" {
		c.log.Info("whatsapp gateway not configured, message dropped",
			zap.String("to", to), zap.Int("length", len(text)))
		return nil
	}

	body, err := json.Marshal(sendRequest{To: to, Message: text})
	if err != nil {
		return domain.Wrap(domain.ErrTransportFailed, "encode message", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return domain.Wrap(domain.ErrTransportFailed, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return domain.Wrap(domain.ErrTransportFailed, "send message", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return domain.Wrap(domain.ErrTransportFailed,
			fmt.Sprintf("unexpected status %d", resp.StatusCode),
			fmt.Errorf("%s", bytes.TrimSpace(detail)))
	}
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	c.log.Debug("message sent", zap.String("to", to))
	return nil
}
