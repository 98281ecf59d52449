// Package email sends transactional mail through the platform's email
// service. Delivery is best-effort: callers log failures and never block an
// auth flow on them.
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 10 * time.Second

// Sender delivers a templated message to one recipient. Implementations must
// be safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, template, to string, data map[string]any) error
}

// Client calls the email service's internal send endpoint, authenticated with
// the shared service secret.
type Client struct {
	BaseURL    string
	Secret     string
	HTTPClient *http.Client
}

// NewClient returns a Client for the email service at baseURL.
func NewClient(baseURL, secret string) *Client {
	return &Client{
		BaseURL:    baseURL,
		Secret:     secret,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

type sendRequest struct {
	Type string         `json:"type"`
	To   string         `json:"to"`
	Data map[string]any `json:"data"`
}

type sendResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Send posts one message to the email service.
func (c *Client) Send(ctx context.Context, template, to string, data map[string]any) error {
	raw, err := json.Marshal(sendRequest{Type: template, To: to, Data: data})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/v1/internal/send", bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-email-secret", c.Secret)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("email: send failed status=%d body=%s", resp.StatusCode, string(b))
	}
	var out sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("email: decode response: %w", err)
	}
	if !out.Success {
		return fmt.Errorf("email: service error: %s", out.Error)
	}
	return nil
}

// Noop is a Sender that drops all mail. Used in tests and local runs without
// an email service.
type Noop struct{}

// Send discards the message.
func (Noop) Send(ctx context.Context, template, to string, data map[string]any) error { return nil }
