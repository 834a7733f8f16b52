// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package postproc

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// Renderer turns cleaned markdown into styled terminal output. Rendering
// is display-only: the store always holds the cleaned markdown, so a
// render failure degrades to plain text instead of losing content.
type Renderer struct {
	renderer *glamour.TermRenderer
}

// NewRenderer creates a renderer for the given wrap width and theme.
// theme is "dark" or "light"; anything else auto-detects.
func NewRenderer(width int, theme string) (*Renderer, error) {
	var styleOpt glamour.TermRendererOption
	switch theme {
	case "dark":
		styleOpt = glamour.WithStandardStyle("dark")
	case "light":
		styleOpt = glamour.WithStandardStyle("light")
	default:
		styleOpt = glamour.WithAutoStyle()
	}

	r, err := glamour.NewTermRenderer(
		styleOpt,
		glamour.WithWordWrap(width),
		glamour.WithEmoji(),
	)
	if err != nil {
		return nil, err
	}
	return &Renderer{renderer: r}, nil
}

// Render sanitizes and styles markdown for terminal display, falling
// back to the sanitized text on failure. Sanitization happens here, at
// the display boundary, so it runs even when glamour is unavailable.
func (r *Renderer) Render(markdown string) string {
	sanitized := SanitizeMarkdown(markdown)
	if r == nil || r.renderer == nil {
		return sanitized
	}
	out, err := r.renderer.Render(sanitized)
	if err != nil {
		return sanitized
	}
	return strings.TrimRight(out, "\n")
}
