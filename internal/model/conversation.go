// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"time"

	"github.com/google/uuid"
)

// DefaultTitle is the title of a conversation the user has not renamed and
// that has not yet been auto-titled.
const DefaultTitle = "New Conversation"

// MaxMessages is the maximum number of messages kept per conversation.
// When exceeded, the oldest messages are pruned to bound memory and
// persistence size.
const MaxMessages = 1000

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation holds a complete chat conversation with history and metadata.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Messages []*Message `json:"messages"`
}

// NewConversation creates a new empty conversation with a generated ID and
// the default title.
func NewConversation() *Conversation {
	now := time.Now()
	return &Conversation{
		ID:        generateConversationID(),
		Title:     DefaultTitle,
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  make([]*Message, 0),
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// AddMessage appends a message to the conversation.
func (c *Conversation) AddMessage(msg *Message) {
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = time.Now()
	c.pruneOldMessages()
}

// AddUserMessage creates and appends a user message.
func (c *Conversation) AddUserMessage(content string) *Message {
	msg := NewUserMessage(content)
	c.AddMessage(msg)
	return msg
}

// AddAssistantPlaceholder creates and appends a loading assistant message.
func (c *Conversation) AddAssistantPlaceholder() *Message {
	msg := NewAssistantPlaceholder()
	c.AddMessage(msg)
	return msg
}

// GetLastMessage returns the most recent message, or nil if empty.
func (c *Conversation) GetLastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// GetLastAssistantMessage returns the most recent assistant message, or nil.
func (c *Conversation) GetLastAssistantMessage() *Message {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == RoleAssistant {
			return c.Messages[i]
		}
	}
	return nil
}

// GetMessageByID returns a message by its ID, or nil.
func (c *Conversation) GetMessageByID(id string) *Message {
	for _, msg := range c.Messages {
		if msg.ID == id {
			return msg
		}
	}
	return nil
}

// HasPendingSend reports whether an assistant placeholder is still awaiting
// resolution. The UI keeps input disabled while this is true.
func (c *Conversation) HasPendingSend() bool {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == RoleAssistant && c.Messages[i].IsLoading {
			return true
		}
	}
	return false
}

// MessageCount returns the number of messages.
func (c *Conversation) MessageCount() int {
	return len(c.Messages)
}

// IsEmpty returns true if there are no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// =============================================================================
// EXCHANGE TRACKING
// =============================================================================

// CompletedExchanges counts the contiguous user/assistant pairs where the
// assistant message resolved to real content. Used by auto-titling, which
// fires once a conversation reaches two full exchanges.
func (c *Conversation) CompletedExchanges() int {
	count := 0
	for i := 0; i+1 < len(c.Messages); i++ {
		if c.Messages[i].Role != RoleUser {
			continue
		}
		next := c.Messages[i+1]
		if next.Role == RoleAssistant && next.IsResolved() && !next.IsError {
			count++
			i++
		}
	}
	return count
}

// HasDefaultTitle reports whether the conversation still carries the
// default title.
func (c *Conversation) HasDefaultTitle() bool {
	return c.Title == "" || c.Title == DefaultTitle
}

// =============================================================================
// TITLE MANAGEMENT
// =============================================================================

// SetTitle sets the conversation title.
func (c *Conversation) SetTitle(title string) {
	c.Title = title
	c.UpdatedAt = time.Now()
}

// GetTitle returns the conversation title or the default.
func (c *Conversation) GetTitle() string {
	if c.Title != "" {
		return c.Title
	}
	return DefaultTitle
}

// Preview returns a short preview of the conversation for list display.
func (c *Conversation) Preview() string {
	for _, msg := range c.Messages {
		if msg.Role == RoleUser && !msg.IsEmpty() {
			return msg.Preview(80)
		}
	}
	return "Empty conversation"
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// Clone creates a deep copy of the conversation.
func (c *Conversation) Clone() *Conversation {
	clone := &Conversation{
		ID:        c.ID,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Messages:  make([]*Message, len(c.Messages)),
	}
	for i, msg := range c.Messages {
		msgCopy := *msg
		clone.Messages[i] = &msgCopy
	}
	return clone
}

// pruneOldMessages drops the oldest messages once the conversation exceeds
// MaxMessages.
func (c *Conversation) pruneOldMessages() {
	if len(c.Messages) <= MaxMessages {
		return
	}
	c.Messages = c.Messages[len(c.Messages)-MaxMessages:]
}

// generateConversationID creates a unique conversation ID.
func generateConversationID() string {
	return "conv_" + uuid.NewString()
}
