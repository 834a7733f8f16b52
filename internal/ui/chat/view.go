// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/astro-tui/internal/ui/components"
	"github.com/jeranaias/astro-tui/internal/ui/styles"
	"github.com/jeranaias/astro-tui/internal/util"
)

// =============================================================================
// VIEWPORT CONTENT
// =============================================================================

// refreshViewport re-renders the active conversation into the viewport
// and scrolls to the newest message.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	conv, err := m.store.Get(m.activeConvID)
	if err != nil {
		return
	}

	if len(conv.Messages) == 0 {
		m.viewport.SetContent(styles.HintStyle.Render("\n  Ask Astro anything to get started."))
		return
	}

	opts := components.MessageOptions{
		Width:          m.viewport.Width,
		ShowTimestamps: m.showTimes,
		Spinner:        m.spinner.View(),
		Renderer:       m.renderer,
	}

	blocks := make([]string, 0, len(conv.Messages))
	for _, msg := range conv.Messages {
		blocks = append(blocks, components.RenderMessage(msg, opts))
	}

	m.viewport.SetContent(strings.Join(blocks, "\n\n"))
	m.viewport.GotoBottom()
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the whole shell.
func (m *Model) View() string {
	if !m.ready {
		return "starting..."
	}

	switch m.mode {
	case modeWelcome:
		return m.renderWelcomeOverlay()
	case modePalette:
		return m.palette.Render(m.width, m.height)
	case modeRename:
		return m.renderRenameOverlay()
	case modeContentSearch:
		return m.renderSearchOverlay()
	}

	header := m.renderHeader()
	body := m.viewport.View()
	if len(m.toasts) > 0 {
		body = overlayBottom(body, components.RenderToastStack(m.toasts, m.width, 0), m.width)
	}

	inputStyle := styles.InputBoxFocusedStyle
	if m.sending {
		inputStyle = styles.InputBoxStyle
	}
	input := inputStyle.Width(m.width - 2).Render(m.textarea.View())

	status := components.RenderStatusBar(components.StatusBarData{
		Tier:           string(m.grant.Tier),
		QuotaRemaining: m.quotaState.Remaining,
		QuotaLimit:     m.quotaState.Limit,
		SearchEnabled:  m.searchEnabled,
		Sending:        m.sending,
		Width:          m.width,
	})

	return lipgloss.JoinVertical(lipgloss.Left, header, body, input, status)
}

// overlayBottom replaces the bottom lines of a region with an overlay so
// the frame keeps its exact height while toasts are visible.
func overlayBottom(region, overlay string, width int) string {
	regionLines := strings.Split(region, "\n")
	overlayLines := strings.Split(lipgloss.PlaceHorizontal(width, lipgloss.Right, overlay), "\n")

	keep := len(regionLines) - len(overlayLines)
	if keep < 0 {
		keep = 0
		overlayLines = overlayLines[len(overlayLines)-len(regionLines):]
	}
	return strings.Join(append(regionLines[:keep], overlayLines...), "\n")
}

func (m *Model) renderHeader() string {
	title := "Astro"
	if conv, err := m.store.Get(m.activeConvID); err == nil {
		title = "Astro  -  " + util.TruncateRunes(conv.GetTitle(), 50)
	}
	return styles.HeaderStyle.Width(m.width).Render(title)
}

// =============================================================================
// OVERLAYS
// =============================================================================

func (m *Model) renderWelcomeOverlay() string {
	var b strings.Builder
	b.WriteString(styles.RoleLabelStyle.Render("Welcome to Astro"))
	b.WriteString("\n\n")
	b.WriteString("Astro is in public beta. Conversations stay on this\n")
	b.WriteString("machine, responses may be imperfect, and features are\n")
	b.WriteString("subject to change.")
	b.WriteString("\n\n")
	b.WriteString(styles.HintStyle.Render("enter accept  ctrl+c quit"))

	box := styles.PaletteStyle.Width(58).Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m *Model) renderRenameOverlay() string {
	var b strings.Builder
	b.WriteString(styles.RoleLabelStyle.Render("Rename conversation"))
	b.WriteString("\n\n")
	b.WriteString(m.renameBuf + "_")
	b.WriteString("\n\n")
	b.WriteString(styles.HintStyle.Render("enter save  esc cancel"))

	box := styles.PaletteStyle.Width(50).Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m *Model) renderSearchOverlay() string {
	var b strings.Builder
	b.WriteString(styles.RoleLabelStyle.Render("Search messages"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "query: %s_\n\n", m.searchBuf)

	if len(m.searchHits) == 0 {
		b.WriteString(styles.HintStyle.Render("enter to search"))
	}
	for i, hit := range m.searchHits {
		line := util.PadRight(util.TruncateRunes(hit.Title, 24), 26) + hit.Snippet
		line = util.TruncateRunes(line, 64)
		if i == m.searchIdx {
			b.WriteString(styles.PaletteSelectedStyle.Render("> " + line))
		} else {
			b.WriteString(styles.PaletteRowStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.HintStyle.Render("enter open  esc close"))

	box := styles.PaletteStyle.Width(70).Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
