// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the Astro chat and search
// endpoints.
package api

import "github.com/jeranaias/astro-tui/internal/model"

// =============================================================================
// CHAT WIRE TYPES
// =============================================================================

// ChatRequest is the outbound chat payload.
type ChatRequest struct {
	// Input is the user's message
	Input string `json:"input"`

	// Context is the system/context string, including any search block
	Context string `json:"context"`

	// History is the rolling window of completed exchanges
	History []model.HistoryEntry `json:"history"`

	// SearchResults carries augmentation snippets when search mode is on
	SearchResults []SearchResult `json:"searchResults,omitempty"`

	// MaxTokens caps the response length
	MaxTokens int `json:"maxTokens,omitempty"`
}

// ChatResponse is the expected chat endpoint reply.
type ChatResponse struct {
	Response string `json:"response"`
}

// =============================================================================
// SEARCH WIRE TYPES
// =============================================================================

// SearchRequest is the outbound search payload.
type SearchRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"maxResults"`
}

// SearchResult is one ranked web snippet.
type SearchResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}
