// Package payment implements the eSewa-compatible gateway client used to
// verify manual payments.
package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hangaroo/backend/internal/model"
)

// Client calls the gateway's transaction-status endpoint. It never retries;
// a failed verification is a rejected join attempt and the caller may try
// again with the same reference.
type Client struct {
	baseURL     string
	productCode string
	http        *http.Client
}

// NewClient constructs a gateway client.
func NewClient(baseURL, productCode string) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		productCode: productCode,
		http:        &http.Client{Timeout: 15 * time.Second},
	}
}

// NewClientWithHTTP is used by tests to inject a transport.
func NewClientWithHTTP(baseURL, productCode string, httpClient *http.Client) *Client {
	c := NewClient(baseURL, productCode)
	if httpClient != nil {
		c.http = httpClient
	}
	return c
}

type statusResponse struct {
	Status string `json:"status"`
}

// Status asks the gateway for the state of a reference code. Transport
// failures, non-2xx responses, and undecodable bodies all surface as
// ErrGatewayUnavailable; a decoded answer is returned verbatim as a
// PaymentStatus for the caller to judge.
func (c *Client) Status(ctx context.Context, refID string, amount float64) (model.PaymentStatus, error) {
	query := url.Values{}
	query.Set("product_code", c.productCode)
	query.Set("total_amount", strconv.FormatFloat(amount, 'f', -1, 64))
	query.Set("transaction_uuid", refID)
	endpoint := c.baseURL + "/api/epay/txn/status?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build status request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: status endpoint returned %d", model.ErrGatewayUnavailable, resp.StatusCode)
	}

	var body statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: decode status response: %v", model.ErrGatewayUnavailable, err)
	}
	if body.Status == "" {
		return "", fmt.Errorf("%w: empty status in response", model.ErrGatewayUnavailable)
	}

	return model.PaymentStatus(strings.ToUpper(body.Status)), nil
}
