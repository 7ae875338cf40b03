// Package provider implements the upstream virtual-number provider client.
// Both cancel and status lookups may fail independently; callers never
// assume they succeed.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"numshop/internal/common/config"
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(cfg config.ProviderConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// PurchaseNumber provisions a number upstream. This is the non-atomic half
// of the two-system commit; the caller owns reconciliation if the local
// commit afterwards fails.
func (c *Client) PurchaseNumber(ctx context.Context, req PurchaseRequest) (*Activation, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal purchase request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/v1/activations", c.baseURL), bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("purchase failed (status %d): %s", resp.StatusCode, string(body))
	}

	var activation Activation
	if err := json.Unmarshal(body, &activation); err != nil {
		return nil, fmt.Errorf("failed to unmarshal activation: %w", err)
	}
	if activation.ActivationID == "" {
		return nil, fmt.Errorf("provider returned activation without an id")
	}

	return &activation, nil
}

// CancelNumber releases an activation upstream.
func (c *Client) CancelNumber(ctx context.Context, activationID string) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		fmt.Sprintf("%s/v1/activations/%s", c.baseURL, url.PathEscape(activationID)), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("cancel failed (status %d): %s", resp.StatusCode, string(body))
	}

	return nil
}

// GetStatus fetches the activation state, including any received messages.
func (c *Client) GetStatus(ctx context.Context, activationID string) (*Status, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/v1/activations/%s", c.baseURL, url.PathEscape(activationID)), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status lookup failed (status %d): %s", resp.StatusCode, string(body))
	}

	var status Status
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status: %w", err)
	}

	return &status, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)
}
