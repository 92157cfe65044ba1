// Package push implements the HTTP client for the external push-notification
// gateway. Delivery is best-effort: the notifier logs failures and moves on,
// and nothing here ever touches domain state.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client posts multicast messages to the gateway.
type Client struct {
	url       string
	serverKey string
	http      *http.Client
}

// NewClient constructs a push gateway client.
func NewClient(url, serverKey string) *Client {
	return &Client{
		url:       url,
		serverKey: serverKey,
		http:      &http.Client{Timeout: 10 * time.Second},
	}
}

// NewClientWithHTTP is used by tests to inject a transport.
func NewClientWithHTTP(url, serverKey string, httpClient *http.Client) *Client {
	c := NewClient(url, serverKey)
	if httpClient != nil {
		c.http = httpClient
	}
	return c
}

type message struct {
	RegistrationIDs []string     `json:"registration_ids"`
	Notification    notification `json:"notification"`
}

type notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type sendResponse struct {
	Success int `json:"success"`
	Failure int `json:"failure"`
}

// Send delivers one notification to a batch of device tokens and reports the
// per-token success and failure counts from the gateway.
func (c *Client) Send(ctx context.Context, tokens []string, title, body string) (success, failure int, err error) {
	if len(tokens) == 0 {
		return 0, 0, nil
	}

	payload, err := json.Marshal(message{
		RegistrationIDs: tokens,
		Notification:    notification{Title: title, Body: body},
	})
	if err != nil {
		return 0, 0, fmt.Errorf("marshal push message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return 0, 0, fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.serverKey != "" {
		req.Header.Set("Authorization", "key="+c.serverKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, len(tokens), fmt.Errorf("push gateway returned %d", resp.StatusCode)
	}

	var result sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, 0, fmt.Errorf("decode push response: %w", err)
	}
	return result.Success, result.Failure, nil
}
