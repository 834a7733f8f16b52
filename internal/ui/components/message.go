// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/astro-tui/internal/model"
	"github.com/jeranaias/astro-tui/internal/postproc"
	"github.com/jeranaias/astro-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGE RENDERING
// =============================================================================

// Markdowner styles message content for terminal display. Satisfied by
// postproc.Renderer; nil-safe implementations pass text through.
type Markdowner interface {
	Render(markdown string) string
}

// MessageOptions controls message bubble rendering.
type MessageOptions struct {
	Width          int
	ShowTimestamps bool

	// Spinner is the current loading frame, shown for unresolved
	// placeholders.
	Spinner string

	// Renderer styles assistant markdown; user text stays plain.
	Renderer Markdowner
}

// RenderMessage renders one message as a labelled bubble.
func RenderMessage(m *model.Message, opts MessageOptions) string {
	width := opts.Width
	if width < 20 {
		width = 20
	}
	bubbleWidth := width * 3 / 4

	label := styles.RoleLabelStyle.Render(m.Role.DisplayName())
	if opts.ShowTimestamps {
		label += " " + styles.TimestampStyle.Render(m.Timestamp.Format("15:04"))
	}

	var body string
	var bubble lipgloss.Style
	switch {
	case m.IsLoading:
		bubble = styles.AssistantBubbleStyle
		body = opts.Spinner + " thinking"
	case m.IsError:
		bubble = styles.ErrorBubbleStyle
		body = styles.StatusIndicators.Error + " " + m.Content
	case m.Role == model.RoleAssistant:
		bubble = styles.AssistantBubbleStyle
		// the sanitize boundary holds even without a markdown renderer
		body = postproc.SanitizeMarkdown(m.Content)
		if opts.Renderer != nil {
			body = opts.Renderer.Render(m.Content)
		}
	default:
		bubble = styles.UserBubbleStyle
		body = m.Content
	}

	rendered := bubble.MaxWidth(bubbleWidth).Render(body)
	block := lipgloss.JoinVertical(lipgloss.Left, label, rendered)

	// user messages align right, assistant messages left
	if m.Role == model.RoleUser {
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, block)
	}
	return block
}
