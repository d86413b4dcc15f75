// Package relay posts hook events to the observability relay.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dotcommander/pai/internal/models"
)

// DefaultTimeout bounds one relay POST so a dead relay never stalls a hook.
const DefaultTimeout = 3 * time.Second

// Client sends envelopes to the relay URL. It never retries.
type Client struct {
	url  string
	http *http.Client
}

// NewClient returns a Client for url using DefaultTimeout.
func NewClient(url string) *Client {
	return &Client{url: url, http: &http.Client{Timeout: DefaultTimeout}}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

// URL returns the relay endpoint.
func (c *Client) URL() string { return c.url }

// Send posts env as JSON. Callers treat errors as non-fatal.
func (c *Client) Send(ctx context.Context, env models.Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post to relay: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("relay returned status %d", resp.StatusCode)
	}
	return nil
}
