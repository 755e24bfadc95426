// Copyright 2026 The Custodia Authors
// SPDX-License-Identifier: Apache-2.0

package launchpad

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientConfig{
		BaseURL: server.URL,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	if _, err := NewClient(ClientConfig{}); err == nil {
		t.Fatal("NewClient with empty BaseURL succeeded, want error")
	}
}

func TestCollectFees(t *testing.T) {
	var received CollectRequest
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/fees/collect" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		json.NewEncoder(w).Encode(CollectResponse{
			Success:         true,
			TransactionHash: "0xdeadbeef",
		})
	})

	request := CollectRequest{
		Address:   "0x00000000000000000000000000000000000000aa",
		Message:   "claim:0xaa:2026-08-26T00:00:00Z",
		Signature: "0xsig",
	}
	response, err := client.CollectFees(context.Background(), request)
	if err != nil {
		t.Fatalf("CollectFees: %v", err)
	}

	if !response.Success {
		t.Error("Success = false, want true")
	}
	if response.TransactionHash != "0xdeadbeef" {
		t.Errorf("TransactionHash = %q, want %q", response.TransactionHash, "0xdeadbeef")
	}
	if received != request {
		t.Errorf("platform received %+v, want %+v", received, request)
	}
}

func TestCollectFeesAPIError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"error": "signature does not match address"})
	})

	_, err := client.CollectFees(context.Background(), CollectRequest{})
	var apiError *APIError
	if !errors.As(err, &apiError) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiError.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %d, want 403", apiError.StatusCode)
	}
	if apiError.Message != "signature does not match address" {
		t.Errorf("Message = %q", apiError.Message)
	}
}

func TestCollectFeesNonJSONError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "upstream exploded")
	})

	_, err := client.CollectFees(context.Background(), CollectRequest{})
	if err == nil {
		t.Fatal("CollectFees succeeded against 502, want error")
	}
	var apiError *APIError
	if errors.As(err, &apiError) {
		t.Fatalf("non-JSON body decoded into APIError: %v", apiError)
	}
}

func TestTokenStatus(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tokens/0xabc" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(TokenStatus{
			Address:  "0xabc",
			Name:     "Creator Coin",
			Symbol:   "CC",
			Launched: true,
		})
	})

	status, err := client.TokenStatus(context.Background(), "0xabc")
	if err != nil {
		t.Fatalf("TokenStatus: %v", err)
	}
	if !status.Launched || status.Symbol != "CC" {
		t.Errorf("status = %+v", status)
	}
}
