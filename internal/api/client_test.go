// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(chatURL, searchURL string) *Client {
	return NewClient(&ClientConfig{
		BaseURL:        chatURL,
		SearchURL:      searchURL,
		Key:            "test-key",
		RequestsPerSec: 0, // unpaced in tests
	})
}

// =============================================================================
// CHAT TESTS
// =============================================================================

func TestChatSuccess(t *testing.T) {
	var gotReq ChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat" {
			t.Errorf("path = %q, want /chat", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q", auth)
		}
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(ChatResponse{Response: "Hi!"})
	}))
	defer server.Close()

	client := newTestClient(server.URL, "")
	resp, err := client.Chat(context.Background(), &ChatRequest{Input: "Hello", Context: "ctx"})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if resp.Response != "Hi!" {
		t.Errorf("Response = %q, want %q", resp.Response, "Hi!")
	}
	if gotReq.Input != "Hello" {
		t.Errorf("server saw Input = %q, want Hello", gotReq.Input)
	}
}

func TestChatEmptyBodyIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, "")
	_, err := client.Chat(context.Background(), &ChatRequest{Input: "Hello"})
	if err == nil {
		t.Fatal("expected error for empty response field")
	}

	var clientErr *ClientError
	if !errors.As(err, &clientErr) {
		t.Fatalf("expected *ClientError, got %T", err)
	}
	if clientErr.Type != ErrTypeInvalidResponse {
		t.Errorf("Type = %v, want ErrTypeInvalidResponse", clientErr.Type)
	}
	if clientErr.Retryable() {
		t.Error("malformed body must not be retryable")
	}
}

func TestChatMalformedJSONIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, "")
	_, err := client.Chat(context.Background(), &ChatRequest{Input: "Hello"})
	if !errors.As(err, new(*ClientError)) {
		t.Fatalf("expected *ClientError, got %v", err)
	}
	if IsRetryable(err) {
		t.Error("malformed JSON must not be retryable")
	}
}

func TestChatStatusClassification(t *testing.T) {
	tests := []struct {
		status    int
		retryable bool
		code      string
	}{
		{http.StatusTooManyRequests, true, "API429"},
		{http.StatusServiceUnavailable, true, "API503"},
		{http.StatusGatewayTimeout, true, "API504"},
		{http.StatusNotFound, false, "API404"},
		{http.StatusUnauthorized, false, "API401"},
		{http.StatusInternalServerError, false, "API500"},
		{http.StatusBadRequest, false, "API400"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := newTestClient(server.URL, "")
			_, err := client.Chat(context.Background(), &ChatRequest{Input: "x"})
			if err == nil {
				t.Fatal("expected error")
			}
			if got := IsRetryable(err); got != tt.retryable {
				t.Errorf("IsRetryable = %v, want %v", got, tt.retryable)
			}
			if got := ErrorCode(err); got != tt.code {
				t.Errorf("ErrorCode = %q, want %q", got, tt.code)
			}
		})
	}
}

func TestChatServerErrorDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"input too long"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, "")
	_, err := client.Chat(context.Background(), &ChatRequest{Input: "x"})
	if err == nil || err.Error() != "input too long" {
		t.Errorf("err = %v, want server detail", err)
	}
}

func TestChatConnectionRefused(t *testing.T) {
	client := newTestClient("http://127.0.0.1:1", "")
	_, err := client.Chat(context.Background(), &ChatRequest{Input: "x"})
	if err == nil {
		t.Fatal("expected connection error")
	}
	if code := ErrorCode(err); code != "NET000" {
		t.Errorf("ErrorCode = %q, want NET000", code)
	}
}

// =============================================================================
// SEARCH TESTS
// =============================================================================

func TestSearchSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %q, want /search", r.URL.Path)
		}
		var req SearchRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.MaxResults != 3 {
			t.Errorf("MaxResults = %d, want 3", req.MaxResults)
		}
		json.NewEncoder(w).Encode([]SearchResult{
			{Title: "Black holes", Snippet: "A region of spacetime...", URL: "https://example.com/bh"},
		})
	}))
	defer server.Close()

	client := newTestClient("", server.URL)
	results, err := client.Search(context.Background(), "black holes", 3)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 || results[0].Title != "Black holes" {
		t.Errorf("results = %+v", results)
	}
}

func TestSearchBadBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"an array"}`))
	}))
	defer server.Close()

	client := newTestClient("", server.URL)
	if _, err := client.Search(context.Background(), "q", 3); err == nil {
		t.Error("expected decode error")
	}
}

// =============================================================================
// ERROR CODE TESTS
// =============================================================================

func TestErrorCodeFallback(t *testing.T) {
	if code := ErrorCode(errors.New("plain")); code != "ERR000" {
		t.Errorf("ErrorCode = %q, want ERR000", code)
	}
}

func TestClientErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &ClientError{Type: ErrTypeConnection, Message: "wrapped", Cause: cause}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the cause")
	}
}
