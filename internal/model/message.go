// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Astro"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation.
type Message struct {
	// Identity
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`

	// Content
	Content string `json:"content"`

	// IsLoading marks an assistant placeholder that has not yet been
	// resolved to a response or an error string. Every placeholder is
	// resolved before its send settles; a true value never persists.
	IsLoading bool `json:"is_loading,omitempty"`

	// IsError marks an assistant message whose content is an error string
	// rather than a model response. Errored exchanges are excluded from
	// the history sent to the API.
	IsError bool `json:"is_error,omitempty"`
}

// NewMessage creates a new message with a generated ID.
func NewMessage(role Role, content string) *Message {
	return &Message{
		ID:        generateID(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) *Message {
	return NewMessage(RoleUser, content)
}

// NewAssistantPlaceholder creates a loading assistant message awaiting a
// response from the API.
func NewAssistantPlaceholder() *Message {
	return &Message{
		ID:        generateID(),
		Role:      RoleAssistant,
		Timestamp: time.Now(),
		IsLoading: true,
	}
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// Resolve fills a loading placeholder with the final response content.
func (m *Message) Resolve(content string) {
	m.Content = content
	m.IsLoading = false
	m.IsError = false
}

// ResolveError fills a loading placeholder with an error string.
func (m *Message) ResolveError(errText string) {
	m.Content = errText
	m.IsLoading = false
	m.IsError = true
}

// IsResolved reports whether the message has a terminal outcome
// (real content or an error string).
func (m *Message) IsResolved() bool {
	return !m.IsLoading
}

// Preview returns a truncated single-line preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m *Message) Preview(maxLen int) string {
	content := strings.ReplaceAll(m.Content, "\n", " ")
	runes := []rune(content)
	if len(runes) <= maxLen {
		return content
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// IsEmpty returns true if the message has no content.
func (m *Message) IsEmpty() bool {
	return len(m.Content) == 0
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateID creates a unique message ID.
func generateID() string {
	return "msg_" + uuid.NewString()
}
