// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

// =============================================================================
// HISTORY PAIRS
// =============================================================================

// HistoryEntry is one completed user/assistant exchange in the wire format
// expected by the chat endpoint.
type HistoryEntry struct {
	Input    string `json:"input"`
	Response string `json:"response"`
}

// MaxHistoryEntries bounds the rolling history sent with each request.
const MaxHistoryEntries = 6

// BuildHistory derives wire-format history from the conversation's message
// sequence. Only contiguous, completed user→assistant pairs are included:
// an unresolved trailing user message is excluded, as are placeholders still
// loading and assistant messages that resolved to an error string.
func (c *Conversation) BuildHistory() []HistoryEntry {
	history := make([]HistoryEntry, 0, len(c.Messages)/2)

	for i := 0; i+1 < len(c.Messages); i++ {
		if c.Messages[i].Role != RoleUser {
			continue
		}
		next := c.Messages[i+1]
		if next.Role != RoleAssistant || !next.IsResolved() || next.IsError || next.IsEmpty() {
			continue
		}
		history = append(history, HistoryEntry{
			Input:    c.Messages[i].Content,
			Response: next.Content,
		})
		i++
	}

	// Keep only the most recent entries for context
	if len(history) > MaxHistoryEntries {
		history = history[len(history)-MaxHistoryEntries:]
	}

	return history
}
