// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package quota tracks the per-user character budget for chat requests.
package quota

import (
	"encoding/json"
	"math"
	"os"
	"sync"
	"time"

	"github.com/jeranaias/astro-tui/internal/util"
)

// CostMultiplier converts character counts to estimated cost. A rough proxy
// for token count; intentionally pessimistic.
const CostMultiplier = 1.5

// =============================================================================
// QUOTA STATE
// =============================================================================

// State is the persisted quota snapshot.
type State struct {
	Remaining   int       `json:"remaining"`
	Limit       int       `json:"limit"`
	LastRefresh time.Time `json:"last_refresh"`
}

// =============================================================================
// TRACKER
// =============================================================================

// Tracker gates chat sends against a character budget with a periodic
// refresh. All mutations clamp Remaining to [0, Limit] and persist the
// state before returning.
//
// The tracker is safe for concurrent use: the refresh tick runs alongside
// in-flight sends.
type Tracker struct {
	mu sync.Mutex

	state    State
	interval time.Duration
	path     string

	// onChange, when set, is notified after every mutation so display
	// components can refresh without polling.
	onChange func(State)
}

// New creates a tracker with the given budget and refresh interval,
// persisting state at path. Existing state on disk is loaded when its
// limit matches; a changed limit (tier switch) resets the budget.
func New(path string, limit int, interval time.Duration) *Tracker {
	t := &Tracker{
		state: State{
			Remaining:   limit,
			Limit:       limit,
			LastRefresh: time.Now(),
		},
		interval: interval,
		path:     path,
	}

	if data, err := os.ReadFile(path); err == nil {
		var saved State
		if err := json.Unmarshal(data, &saved); err == nil && saved.Limit == limit {
			t.state = saved
			t.clampLocked()
		}
	}

	return t
}

// OnChange registers a callback invoked after every state mutation.
func (t *Tracker) OnChange(fn func(State)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onChange = fn
}

// =============================================================================
// COST ESTIMATION
// =============================================================================

// EstimateCost converts a character count to estimated quota cost.
func EstimateCost(chars int) int {
	if chars <= 0 {
		return 0
	}
	return int(math.Ceil(float64(chars) * CostMultiplier))
}

// =============================================================================
// OPERATIONS
// =============================================================================

// Check reports whether a send with the given estimated cost may proceed.
// Runs a refresh check first so a stale window never blocks a send.
func (t *Tracker) Check(estimatedCost int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.maybeRefreshLocked()
	return t.state.Remaining >= estimatedCost
}

// Debit consumes budget. Clamped at zero.
func (t *Tracker) Debit(cost int) {
	if cost <= 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Remaining -= cost
	t.clampLocked()
	t.persistLocked()
}

// Credit returns budget, typically refunding a failed send. Clamped at the
// limit so repeated refunds can never mint extra quota.
func (t *Tracker) Credit(cost int) {
	if cost <= 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Remaining += cost
	t.clampLocked()
	t.persistLocked()
}

// MaybeRefresh resets the budget if the refresh interval has elapsed.
// Returns true when a reset happened.
func (t *Tracker) MaybeRefresh() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.maybeRefreshLocked()
}

// State returns a copy of the current state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Remaining returns the current remaining budget.
func (t *Tracker) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Remaining
}

// RetryIn returns how long until the next refresh makes budget available.
// Zero when budget is already available.
func (t *Tracker) RetryIn() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state.Remaining > 0 {
		return 0
	}
	next := t.state.LastRefresh.Add(t.interval)
	d := time.Until(next)
	if d < 0 {
		return 0
	}
	return d
}

// =============================================================================
// INTERNAL
// =============================================================================

// maybeRefreshLocked resets the budget when the window has elapsed.
// Caller holds t.mu.
func (t *Tracker) maybeRefreshLocked() bool {
	if time.Since(t.state.LastRefresh) < t.interval {
		return false
	}
	t.state.Remaining = t.state.Limit
	t.state.LastRefresh = time.Now()
	t.persistLocked()
	return true
}

// clampLocked enforces 0 <= Remaining <= Limit. Caller holds t.mu.
func (t *Tracker) clampLocked() {
	if t.state.Remaining < 0 {
		t.state.Remaining = 0
	}
	if t.state.Remaining > t.state.Limit {
		t.state.Remaining = t.state.Limit
	}
}

// persistLocked writes state to disk and fires the change callback.
// Persistence failures are deliberately non-fatal: quota is a soft local
// gate and must never take the UI down. Caller holds t.mu.
func (t *Tracker) persistLocked() {
	if t.path != "" {
		if data, err := json.MarshalIndent(t.state, "", "  "); err == nil {
			_ = util.AtomicWriteFile(t.path, data, 0644)
		}
	}
	if t.onChange != nil {
		t.onChange(t.state)
	}
}
