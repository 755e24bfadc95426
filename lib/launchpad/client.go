// Copyright 2026 The Custodia Authors
// SPDX-License-Identifier: Apache-2.0

// Package launchpad is the HTTP client for the remote launch platform:
// the sponsored fee-collection endpoint and the token indexer. The
// platform only ever receives an address, a claim message, and a
// signature over that message — signatures authorize a claim but cannot
// be inverted into the key, so nothing secret crosses this boundary.
package launchpad

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// maxResponseBytes bounds how much of a response body is read. The
// platform's responses are small JSON documents; anything larger is a
// misbehaving server.
const maxResponseBytes = 1 << 20

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// BaseURL is the platform's API root (e.g. "https://api.launch.example").
	BaseURL string
	// HTTPClient is used for all requests. If nil, http.DefaultClient is used.
	HTTPClient *http.Client
	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Client talks to the launch platform's REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient validates the configuration and returns a client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("launchpad: BaseURL is required")
	}
	if _, err := url.Parse(config.BaseURL); err != nil {
		return nil, fmt.Errorf("launchpad: invalid BaseURL %q: %w", config.BaseURL, err)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// APIError is the platform's structured error envelope, carried alongside
// the HTTP status code.
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("launchpad: %d: %s", e.StatusCode, e.Message)
}

// CollectRequest authorizes a sponsored fee claim. Message is the signed
// claim statement (address + timestamp) and Signature the wallet's
// EIP-191 signature over it.
type CollectRequest struct {
	Address   string `json:"address"`
	Message   string `json:"message"`
	Signature string `json:"signature"`
}

// CollectResponse is the platform's answer to a sponsored claim: the
// platform pays gas and reports the resulting transaction.
type CollectResponse struct {
	Success         bool   `json:"success"`
	TransactionHash string `json:"transactionHash"`
	Message         string `json:"message,omitempty"`
}

// CollectFees submits a sponsored fee claim. The platform verifies the
// signature against the address and, if the claim is valid, executes the
// on-chain collection at its own expense.
func (c *Client) CollectFees(ctx context.Context, request CollectRequest) (*CollectResponse, error) {
	body, err := c.doRequest(ctx, http.MethodPost, "/api/fees/collect", request)
	if err != nil {
		return nil, err
	}

	var response CollectResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("launchpad: parsing collect response: %w", err)
	}
	c.logger.Info("sponsored fee claim submitted",
		"address", request.Address, "tx", response.TransactionHash, "success", response.Success)
	return &response, nil
}

// TokenStatus is the indexer's view of a launched token.
type TokenStatus struct {
	Address   string `json:"address"`
	Name      string `json:"name"`
	Symbol    string `json:"symbol"`
	Launched  bool   `json:"launched"`
	Graduated bool   `json:"graduated"`
}

// TokenStatus looks up a launched token by contract address.
func (c *Client) TokenStatus(ctx context.Context, address string) (*TokenStatus, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/api/tokens/"+url.PathEscape(address), nil)
	if err != nil {
		return nil, err
	}

	var status TokenStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("launchpad: parsing token status: %w", err)
	}
	return &status, nil
}

// doRequest performs one JSON request/response round-trip. Non-2xx
// responses decode into *APIError; a non-JSON error body fails loud with
// the raw payload.
func (c *Client) doRequest(ctx context.Context, method, path string, requestBody any) ([]byte, error) {
	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("launchpad: encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("launchpad: creating request: %w", err)
	}
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("launchpad: request to %s %s failed: %w", method, path, err)
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("launchpad: reading response body: %w", err)
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return responseBody, nil
	}

	var apiError APIError
	if jsonErr := json.Unmarshal(responseBody, &apiError); jsonErr != nil || apiError.Message == "" {
		return nil, fmt.Errorf("launchpad: unexpected %d response from %s %s: %s",
			response.StatusCode, method, path, string(responseBody))
	}
	apiError.StatusCode = response.StatusCode
	return nil, &apiError
}
