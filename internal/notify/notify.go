// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package notify is the notification center for user-facing events.
package notify

import (
	"sync"
	"time"
)

// =============================================================================
// NOTIFICATION CODES
// =============================================================================

// Stable machine codes for notifications that do not originate from an
// HTTP status. API-originated failures carry their API/NET code instead.
const (
	CodeQuotaExhausted = "QUOTA001"
	CodeConversation   = "CONV001"
	CodeInputEmpty     = "INPUT001"
	CodeInputTooLong   = "INPUT002"
	CodeSearchFailed   = "SRCH001"
	CodeStoreFailed    = "STORE001"
	CodeExportFailed   = "EXPORT001"
	CodeIndexFailed    = "IDX001"
)

// =============================================================================
// NOTIFICATION TYPES
// =============================================================================

// Kind classifies a notification for display styling.
type Kind int

const (
	// KindInfo is an informational notification
	KindInfo Kind = iota
	// KindError is an error notification
	KindError
	// KindWarning is a warning notification
	KindWarning
	// KindSuccess is a success notification
	KindSuccess
)

// Auto-dismiss durations per kind. Errors linger longest so the code can
// be read and reported.
const (
	InfoDuration    = 4 * time.Second
	SuccessDuration = 4 * time.Second
	WarningDuration = 6 * time.Second
	ErrorDuration   = 8 * time.Second
)

// Notification is one user-facing event: a human message plus a machine
// code for support correlation.
type Notification struct {
	ID        int
	Code      string
	Message   string
	Kind      Kind
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired reports whether the notification should be dismissed.
func (n *Notification) IsExpired() bool {
	return time.Since(n.CreatedAt) >= n.Duration
}

// TimeRemaining returns how long until auto-dismiss.
func (n *Notification) TimeRemaining() time.Duration {
	remaining := n.Duration - time.Since(n.CreatedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// =============================================================================
// NOTIFICATION CENTER
// =============================================================================

// maxVisible bounds the stack; older notifications fall off the end.
const maxVisible = 5

// Center collects notifications for the toast stack, newest first.
// Safe for concurrent use: background sends post here from their own
// goroutines.
type Center struct {
	mu     sync.Mutex
	items  []Notification
	nextID int
}

// NewCenter creates an empty notification center.
func NewCenter() *Center {
	return &Center{nextID: 1}
}

// Add posts a notification and returns its ID.
func (c *Center) Add(kind Kind, code, message string) int {
	var dur time.Duration
	switch kind {
	case KindError:
		dur = ErrorDuration
	case KindWarning:
		dur = WarningDuration
	case KindSuccess:
		dur = SuccessDuration
	default:
		dur = InfoDuration
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	n := Notification{
		ID:        c.nextID,
		Code:      code,
		Message:   message,
		Kind:      kind,
		CreatedAt: time.Now(),
		Duration:  dur,
	}
	c.nextID++

	c.items = append([]Notification{n}, c.items...)
	if len(c.items) > maxVisible {
		c.items = c.items[:maxVisible]
	}
	return n.ID
}

// Error posts an error notification.
func (c *Center) Error(code, message string) int {
	return c.Add(KindError, code, message)
}

// Warning posts a warning notification.
func (c *Center) Warning(code, message string) int {
	return c.Add(KindWarning, code, message)
}

// Info posts an informational notification.
func (c *Center) Info(message string) int {
	return c.Add(KindInfo, "", message)
}

// Success posts a success notification.
func (c *Center) Success(message string) int {
	return c.Add(KindSuccess, "", message)
}

// Remove dismisses a notification by ID.
func (c *Center) Remove(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, n := range c.items {
		if n.ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// Tick drops expired notifications and returns the remaining stack.
// Called from the UI's periodic tick.
func (c *Center) Tick() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	active := c.items[:0]
	for _, n := range c.items {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	c.items = active

	out := make([]Notification, len(c.items))
	copy(out, c.items)
	return out
}

// Active returns a copy of the current stack, newest first.
func (c *Center) Active() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Notification, len(c.items))
	copy(out, c.items)
	return out
}

// HasActive reports whether anything is on screen.
func (c *Center) HasActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items) > 0
}

// Clear dismisses everything.
func (c *Center) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}
