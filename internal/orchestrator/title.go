// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/jeranaias/astro-tui/internal/api"
	"github.com/jeranaias/astro-tui/internal/model"
	"github.com/jeranaias/astro-tui/internal/util"
)

// =============================================================================
// AUTO-TITLING
// =============================================================================

// MaxTitleRunes bounds generated titles for list display.
const MaxTitleRunes = 25

const titleContext = "Generate a short title (3 to 5 words) summarizing the " +
	"topic of the conversation that starts with the following message. " +
	"Respond with the title only, no quotes or punctuation."

var (
	// generated titles keep letters, digits, spaces, and hyphens only
	titleDisallowed = regexp.MustCompile(`[^\p{L}\p{N} -]+`)
	titlePrefix     = regexp.MustCompile(`(?i)^(title|here is a title|sure)[:,]?\s*`)
	titleSpaces     = regexp.MustCompile(`\s+`)
)

// maybeAutoTitle renames a conversation once it has at least two full
// exchanges and still carries the default title. Every failure path is
// silent: titling is cosmetic and must never surface an error mid-chat.
func (o *Orchestrator) maybeAutoTitle(ctx context.Context, convID string) {
	conv, err := o.store.Get(convID)
	if err != nil {
		return
	}
	if !conv.HasDefaultTitle() || conv.CompletedExchanges() < 2 {
		return
	}

	seed := firstUserMessage(conv)
	if seed == "" {
		return
	}

	resp, err := o.client.Chat(ctx, &api.ChatRequest{
		Input:     seed,
		Context:   titleContext,
		MaxTokens: 16,
	})
	if err != nil {
		o.logger.Info("title generation failed", zap.String("conversation", convID), zap.Error(err))
		return
	}

	title := CleanTitle(resp.Response)
	if title == "" {
		return
	}
	if err := o.store.Rename(convID, title); err != nil {
		o.logger.Info("title rename failed", zap.String("conversation", convID), zap.Error(err))
	}
}

// CleanTitle normalizes a generated title: strips punctuation, emoji,
// and assistant preambles, collapses whitespace, and hard-truncates.
// No ellipsis on truncation since titles must stay punctuation-free.
func CleanTitle(raw string) string {
	s := util.FirstLine(raw)
	s = titleDisallowed.ReplaceAllString(s, "")
	s = titlePrefix.ReplaceAllString(s, "")
	s = titleSpaces.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > MaxTitleRunes {
		s = string(r[:MaxTitleRunes])
	}
	return strings.TrimSpace(s)
}

func firstUserMessage(conv *model.Conversation) string {
	for _, m := range conv.Messages {
		if m.Role == model.RoleUser && !m.IsEmpty() {
			return m.Content
		}
	}
	return ""
}
