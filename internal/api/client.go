// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the Astro chat and search
// endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the API client.
type ClientConfig struct {
	// BaseURL is the chat API base URL
	BaseURL string

	// SearchURL is the search API base URL
	SearchURL string

	// Key is the bearer token sent with every request
	Key string

	// Timeout for requests (default: 30s)
	Timeout time.Duration

	// RequestsPerSec paces outbound requests (0 = unpaced)
	RequestsPerSec float64
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		Timeout:        30 * time.Second,
		RequestsPerSec: 2,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the Astro chat and search endpoints.
//
// Chat performs exactly one attempt; retry sequencing is owned by the send
// orchestrator so the state machine stays in one place. The Client is
// thread-safe for concurrent use.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new API client.
func NewClient(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	var limiter *rate.Limiter
	if config.RequestsPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSec), 1)
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		limiter: limiter,
	}
}

// =============================================================================
// CHAT
// =============================================================================

// Chat sends one chat request and returns the model's response.
//
// A 2xx status with an empty or structurally unexpected body is an
// ErrTypeInvalidResponse, which is fatal and never retried.
func (c *Client) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	body, err := c.post(ctx, c.config.BaseURL+"/chat", req)
	if err != nil {
		return nil, err
	}

	var result ChatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	if strings.TrimSpace(result.Response) == "" {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "empty response from API"}
	}

	return &result, nil
}

// =============================================================================
// SEARCH
// =============================================================================

// Search fetches ranked web snippets for a query.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	req := SearchRequest{Query: query, MaxResults: maxResults}

	body, err := c.post(ctx, c.config.SearchURL+"/search", req)
	if err != nil {
		return nil, err
	}

	var results []SearchResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode search results", Cause: err}
	}

	return results, nil
}

// =============================================================================
// TRANSPORT
// =============================================================================

// post issues one JSON POST and returns the raw body on 2xx.
func (c *Client) post(ctx context.Context, url string, payload any) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &ClientError{Type: ErrTypeConnection, Message: "request cancelled", Cause: err}
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.Key != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Key)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &ClientError{Type: ErrTypeTimeout, Message: "request timed out", Cause: err}
		}
		// http.Client wraps its own timeout in a *url.Error
		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, &ClientError{Type: ErrTypeTimeout, Message: "request timed out", Cause: err}
		}
		return nil, &ClientError{Type: ErrTypeConnection, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to read response", Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Carry the server's detail when it sends one
		var apiErr struct {
			Error string `json:"error"`
		}
		detail := ""
		if err := json.Unmarshal(data, &apiErr); err == nil {
			detail = apiErr.Error
		}
		return nil, statusError(resp.StatusCode, detail)
	}

	return data, nil
}
