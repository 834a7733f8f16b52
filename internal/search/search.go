// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package search augments chat requests with web snippets.
package search

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jeranaias/astro-tui/internal/api"
)

// =============================================================================
// AUGMENTOR
// =============================================================================

// DefaultMaxResults bounds how many snippets are folded into the context.
const DefaultMaxResults = 3

// Searcher is the slice of the API client the augmentor needs.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]api.SearchResult, error)
}

// Augmentor fetches web snippets for a query and folds them into the
// request context. Search is strictly best-effort: any failure leaves the
// request untouched and the send proceeds without augmentation.
type Augmentor struct {
	searcher   Searcher
	maxResults int
	logger     *zap.Logger
}

// New creates an augmentor. maxResults <= 0 falls back to the default.
func New(searcher Searcher, maxResults int, logger *zap.Logger) *Augmentor {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Augmentor{searcher: searcher, maxResults: maxResults, logger: logger}
}

// Augment fetches snippets for query and returns the context string with a
// search block appended, plus the raw results for the wire payload.
//
// On any failure (including zero results) it returns the context unchanged
// and nil results. The caller never sees an error from augmentation.
func (a *Augmentor) Augment(ctx context.Context, query, requestContext string) (string, []api.SearchResult) {
	results, err := a.searcher.Search(ctx, query, a.maxResults)
	if err != nil {
		a.logger.Warn("search augmentation failed, sending without it", zap.Error(err))
		return requestContext, nil
	}
	if len(results) == 0 {
		return requestContext, nil
	}
	if len(results) > a.maxResults {
		results = results[:a.maxResults]
	}

	return requestContext + FormatBlock(results), results
}

// FormatBlock renders search results as a context block with an
// instruction to cite sources.
func FormatBlock(results []api.SearchResult) string {
	var b strings.Builder
	b.WriteString("\n\nWeb search results:\n")
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s\n%s\nSource: %s\n", i+1, r.Title, r.Snippet, r.URL)
	}
	b.WriteString("\nUse these results to inform your answer and cite sources where relevant.")
	return b.String()
}
