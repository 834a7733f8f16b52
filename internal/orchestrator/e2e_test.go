// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jeranaias/astro-tui/internal/api"
	"github.com/jeranaias/astro-tui/internal/quota"
	"github.com/jeranaias/astro-tui/internal/store"
	"github.com/jeranaias/astro-tui/internal/util"
)

// endpoint is a scriptable chat server: each request pops the next status
// from the script; a zero status answers 200 with the fixed response.
type endpoint struct {
	script   []int
	response string
	calls    atomic.Int64
}

func (e *endpoint) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := e.calls.Add(1)
		idx := int(n) - 1
		if idx < len(e.script) && e.script[idx] != 0 {
			w.WriteHeader(e.script[idx])
			return
		}
		json.NewEncoder(w).Encode(api.ChatResponse{Response: e.response})
	}
}

func newE2E(t *testing.T, ep *endpoint, limit int) (*Orchestrator, *store.Store, *quota.Tracker, string) {
	t.Helper()
	server := httptest.NewServer(ep.handler())
	t.Cleanup(server.Close)

	client := api.NewClient(&api.ClientConfig{BaseURL: server.URL, Key: "k"})
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "conversations.json"), nil)
	if err != nil {
		t.Fatalf("store.Open failed: %v", err)
	}
	tracker := quota.New(filepath.Join(dir, "quota.json"), limit, 24*time.Hour)
	orch := New(st, tracker, client, nil, nil, Options{RetryDelay: time.Millisecond})
	return orch, st, tracker, st.Create().ID
}

func TestE2ESuccessfulSend(t *testing.T) {
	ep := &endpoint{response: "Black holes are regions of spacetime."}
	orch, st, tracker, convID := newE2E(t, ep, 9000)
	before := tracker.Remaining()

	res := orch.Send(context.Background(), convID, "What are black holes?", false)
	if res.Err != nil {
		t.Fatalf("Send failed: %v", res.Err)
	}
	if got := ep.calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}

	wantCost := quota.EstimateCost(util.CountRunes(res.Content))
	if got := tracker.Remaining(); got != before-wantCost {
		t.Errorf("remaining = %d, want %d", got, before-wantCost)
	}

	conv, _ := st.Get(convID)
	if conv.HasPendingSend() {
		t.Error("placeholder left loading")
	}
}

func TestE2ERateLimitedTwiceThenSuccess(t *testing.T) {
	ep := &endpoint{script: []int{429, 429, 0}, response: "Recovered."}
	orch, _, tracker, convID := newE2E(t, ep, 9000)
	before := tracker.Remaining()

	res := orch.Send(context.Background(), convID, "Hello", false)
	if res.Err != nil {
		t.Fatalf("Send failed: %v", res.Err)
	}
	if got := ep.calls.Load(); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}

	// same net charge as an unretried success
	wantCost := quota.EstimateCost(util.CountRunes(res.Content))
	if got := tracker.Remaining(); got != before-wantCost {
		t.Errorf("remaining = %d, want %d", got, before-wantCost)
	}
}

func TestE2ENotFoundFailsOnceWithRefund(t *testing.T) {
	ep := &endpoint{script: []int{404}}
	orch, st, tracker, convID := newE2E(t, ep, 9000)
	before := tracker.Remaining()

	res := orch.Send(context.Background(), convID, "Hello", false)
	if res.Err == nil {
		t.Fatal("expected error")
	}
	if got := ep.calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
	if got := tracker.Remaining(); got != before {
		t.Errorf("remaining = %d, want %d (full refund)", got, before)
	}

	conv, _ := st.Get(convID)
	last := conv.GetLastMessage()
	if !last.IsError || !strings.Contains(last.Content, "API404") {
		t.Errorf("stored error = %+v", last)
	}
}

func TestE2EExhaustedQuotaMakesNoCalls(t *testing.T) {
	ep := &endpoint{response: "unreachable"}
	orch, _, _, convID := newE2E(t, ep, 0)

	res := orch.Send(context.Background(), convID, "Hello", false)
	if got := ep.calls.Load(); got != 0 {
		t.Errorf("calls = %d, want 0", got)
	}
	if res.Code != "QUOTA001" || !strings.Contains(res.Err.Error(), "limit reached") {
		t.Errorf("res = %+v, want QUOTA001 limit-reached", res)
	}
}

func TestE2EMalformedBodyIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"unexpected": true}`))
	}))
	defer server.Close()

	client := api.NewClient(&api.ClientConfig{BaseURL: server.URL})
	dir := t.TempDir()
	st, _ := store.Open(filepath.Join(dir, "c.json"), nil)
	tracker := quota.New("", 9000, 24*time.Hour)
	orch := New(st, tracker, client, nil, nil, Options{RetryDelay: time.Millisecond})
	convID := st.Create().ID
	before := tracker.Remaining()

	res := orch.Send(context.Background(), convID, "Hello", false)
	if res.Err == nil {
		t.Fatal("expected error")
	}
	if res.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1 (malformed body never retried)", res.Attempts)
	}
	if got := tracker.Remaining(); got != before {
		t.Errorf("remaining = %d, want %d (full refund)", got, before)
	}
}
