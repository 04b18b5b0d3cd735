// Package webhook implements the Notifier port as a JSON POST to an incoming webhook.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/ericfisherdev/prnotifier/internal/domain/model"
	"github.com/ericfisherdev/prnotifier/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Notifier = (*Client)(nil)

// maxErrorBody caps how much of a failed response body is kept in the error.
const maxErrorBody = 512

// Client posts messages to a webhook URL. It performs exactly one request per
// Post; there are no retries.
type Client struct {
	http *http.Client
}

// NewClient creates a Client using httpClient, or http.DefaultClient when nil.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{http: httpClient}
}

// Post serializes msg to JSON and POSTs it to webhookURL. Any transport error
// or non-2xx status is returned; the latter wraps driven.ErrWebhookStatus.
func (c *Client) Post(ctx context.Context, webhookURL string, msg model.Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding webhook message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("posting webhook: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("posting webhook: %w: %d %s", driven.ErrWebhookStatus, resp.StatusCode, bytes.TrimSpace(snippet))
	}

	_, _ = io.Copy(io.Discard, resp.Body)

	slog.Debug("webhook delivered", "status", resp.StatusCode, "blocks", len(msg.Blocks), "bytes", len(body))
	return nil
}
