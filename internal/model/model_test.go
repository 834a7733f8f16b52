// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"testing"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewUserMessage(t *testing.T) {
	msg := NewUserMessage("Hello")

	if msg.Role != RoleUser {
		t.Errorf("Role = %q, want %q", msg.Role, RoleUser)
	}
	if msg.Content != "Hello" {
		t.Errorf("Content = %q, want %q", msg.Content, "Hello")
	}
	if !strings.HasPrefix(msg.ID, "msg_") {
		t.Errorf("ID should start with 'msg_', got %q", msg.ID)
	}
	if msg.IsLoading {
		t.Error("User messages should never be loading")
	}
}

func TestAssistantPlaceholderResolve(t *testing.T) {
	msg := NewAssistantPlaceholder()

	if !msg.IsLoading {
		t.Fatal("Placeholder should start loading")
	}
	if msg.IsResolved() {
		t.Fatal("Placeholder should not be resolved")
	}

	msg.Resolve("Hi there!")

	if msg.IsLoading {
		t.Error("Resolved message should not be loading")
	}
	if msg.IsError {
		t.Error("Resolved message should not be an error")
	}
	if msg.Content != "Hi there!" {
		t.Errorf("Content = %q, want %q", msg.Content, "Hi there!")
	}
}

func TestAssistantPlaceholderResolveError(t *testing.T) {
	msg := NewAssistantPlaceholder()
	msg.ResolveError("Sorry, I encountered an error. Please try again.")

	if msg.IsLoading {
		t.Error("Errored message should not be loading")
	}
	if !msg.IsError {
		t.Error("Errored message should carry the error flag")
	}
	if msg.Content == "" {
		t.Error("Errored message should carry an error string")
	}
}

func TestMessagePreview(t *testing.T) {
	tests := []struct {
		name    string
		content string
		maxLen  int
		want    string
	}{
		{"short", "hi", 10, "hi"},
		{"exact", "hello", 5, "hello"},
		{"truncated", "hello world", 8, "hello..."},
		{"newlines flattened", "a\nb", 10, "a b"},
		{"unicode", "héllo wörld", 8, "héllo..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := NewUserMessage(tt.content)
			if got := msg.Preview(tt.maxLen); got != tt.want {
				t.Errorf("Preview(%d) = %q, want %q", tt.maxLen, got, tt.want)
			}
		})
	}
}

// =============================================================================
// CONVERSATION TESTS
// =============================================================================

func TestNewConversation(t *testing.T) {
	conv := NewConversation()

	if !strings.HasPrefix(conv.ID, "conv_") {
		t.Errorf("ID should start with 'conv_', got %q", conv.ID)
	}
	if conv.Title != DefaultTitle {
		t.Errorf("Title = %q, want %q", conv.Title, DefaultTitle)
	}
	if !conv.IsEmpty() {
		t.Error("New conversation should be empty")
	}
	if !conv.HasDefaultTitle() {
		t.Error("New conversation should carry the default title")
	}
}

func TestConversationHasPendingSend(t *testing.T) {
	conv := NewConversation()
	conv.AddUserMessage("Hello")

	if conv.HasPendingSend() {
		t.Error("No placeholder yet, should not be pending")
	}

	placeholder := conv.AddAssistantPlaceholder()
	if !conv.HasPendingSend() {
		t.Error("Loading placeholder should mark the conversation pending")
	}

	placeholder.Resolve("Hi!")
	if conv.HasPendingSend() {
		t.Error("Resolved placeholder should clear the pending state")
	}
}

func TestConversationCompletedExchanges(t *testing.T) {
	conv := NewConversation()
	if conv.CompletedExchanges() != 0 {
		t.Error("Empty conversation has no exchanges")
	}

	conv.AddUserMessage("A")
	conv.AddAssistantPlaceholder().Resolve("B")
	conv.AddUserMessage("C")
	conv.AddAssistantPlaceholder().ResolveError("boom")
	conv.AddUserMessage("E")

	// Only A/B completed; C's reply errored, E is unanswered.
	if got := conv.CompletedExchanges(); got != 1 {
		t.Errorf("CompletedExchanges() = %d, want 1", got)
	}
}

func TestConversationPrune(t *testing.T) {
	conv := NewConversation()
	for i := 0; i < MaxMessages+10; i++ {
		conv.AddUserMessage("msg")
	}
	if got := conv.MessageCount(); got != MaxMessages {
		t.Errorf("MessageCount() = %d, want %d", got, MaxMessages)
	}
}

func TestConversationClone(t *testing.T) {
	conv := NewConversation()
	conv.AddUserMessage("original")

	clone := conv.Clone()
	clone.Messages[0].Content = "mutated"

	if conv.Messages[0].Content != "original" {
		t.Error("Mutating the clone should not affect the original")
	}
}

// =============================================================================
// HISTORY TESTS
// =============================================================================

func TestBuildHistoryExcludesTrailingUser(t *testing.T) {
	conv := NewConversation()
	conv.AddUserMessage("A")
	conv.AddAssistantPlaceholder().Resolve("B")
	conv.AddUserMessage("C")

	history := conv.BuildHistory()

	if len(history) != 1 {
		t.Fatalf("len(history) = %d, want 1", len(history))
	}
	if history[0].Input != "A" || history[0].Response != "B" {
		t.Errorf("history[0] = %+v, want {A B}", history[0])
	}
}

func TestBuildHistoryExcludesErrorsAndLoading(t *testing.T) {
	conv := NewConversation()
	conv.AddUserMessage("A")
	conv.AddAssistantPlaceholder().ResolveError("failed")
	conv.AddUserMessage("C")
	conv.AddAssistantPlaceholder() // still loading

	if history := conv.BuildHistory(); len(history) != 0 {
		t.Errorf("len(history) = %d, want 0", len(history))
	}
}

func TestBuildHistoryBounded(t *testing.T) {
	conv := NewConversation()
	for i := 0; i < MaxHistoryEntries+4; i++ {
		conv.AddUserMessage("Q")
		conv.AddAssistantPlaceholder().Resolve("A")
	}

	history := conv.BuildHistory()
	if len(history) != MaxHistoryEntries {
		t.Errorf("len(history) = %d, want %d", len(history), MaxHistoryEntries)
	}
}

func TestBuildHistoryEmpty(t *testing.T) {
	conv := NewConversation()
	if history := conv.BuildHistory(); len(history) != 0 {
		t.Errorf("len(history) = %d, want 0", len(history))
	}
}
