// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/astro-tui/internal/model"
	"github.com/jeranaias/astro-tui/internal/ui/styles"
	"github.com/jeranaias/astro-tui/internal/util"
)

// =============================================================================
// CONVERSATION PALETTE
// =============================================================================

// PaletteItem is one row in the conversation palette.
type PaletteItem struct {
	ID      string
	Title   string
	Preview string
	Updated string
}

// Palette is the conversation switcher overlay: a filterable list of
// conversations ordered most recent first.
type Palette struct {
	items    []PaletteItem
	filtered []PaletteItem
	query    string
	cursor   int
}

// NewPalette creates an empty palette.
func NewPalette() *Palette {
	return &Palette{}
}

// SetConversations loads the palette from the store's listing.
func (p *Palette) SetConversations(convs []*model.Conversation) {
	items := make([]PaletteItem, 0, len(convs))
	for _, c := range convs {
		items = append(items, PaletteItem{
			ID:      c.ID,
			Title:   c.GetTitle(),
			Preview: c.Preview(),
			Updated: c.UpdatedAt.Format("Jan 2 15:04"),
		})
	}
	p.items = items
	p.applyFilter()
}

// SetQuery filters rows by title, case-insensitively.
func (p *Palette) SetQuery(query string) {
	p.query = query
	p.applyFilter()
}

// Query returns the current filter text.
func (p *Palette) Query() string { return p.query }

func (p *Palette) applyFilter() {
	q := strings.ToLower(strings.TrimSpace(p.query))
	p.filtered = p.filtered[:0]
	for _, item := range p.items {
		if q == "" || strings.Contains(strings.ToLower(item.Title), q) {
			p.filtered = append(p.filtered, item)
		}
	}
	if p.cursor >= len(p.filtered) {
		p.cursor = len(p.filtered) - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

// MoveUp moves the selection up.
func (p *Palette) MoveUp() {
	if p.cursor > 0 {
		p.cursor--
	}
}

// MoveDown moves the selection down.
func (p *Palette) MoveDown() {
	if p.cursor < len(p.filtered)-1 {
		p.cursor++
	}
}

// Selected returns the highlighted conversation ID, or "" when the
// filter matches nothing.
func (p *Palette) Selected() string {
	if p.cursor < 0 || p.cursor >= len(p.filtered) {
		return ""
	}
	return p.filtered[p.cursor].ID
}

// Len returns the number of visible rows.
func (p *Palette) Len() int { return len(p.filtered) }

// Render draws the palette overlay.
func (p *Palette) Render(width, height int) string {
	boxWidth := width - 10
	if boxWidth > 70 {
		boxWidth = 70
	}
	if boxWidth < 30 {
		boxWidth = 30
	}
	maxRows := height - 8
	if maxRows < 3 {
		maxRows = 3
	}

	var b strings.Builder
	b.WriteString(styles.RoleLabelStyle.Render("Conversations"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("filter: %s\n", p.query))

	rows := p.filtered
	if len(rows) > maxRows {
		// keep the cursor visible
		start := p.cursor - maxRows/2
		if start < 0 {
			start = 0
		}
		if start+maxRows > len(rows) {
			start = len(rows) - maxRows
		}
		rows = rows[start : start+maxRows]
	}

	if len(rows) == 0 {
		b.WriteString(styles.HintStyle.Render("no matches"))
	}
	for _, item := range rows {
		line := util.TruncateRunes(item.Title, 30)
		line = util.PadRight(line, 32) + styles.TimestampStyle.Render(item.Updated)
		if item.ID == p.Selected() {
			b.WriteString(styles.PaletteSelectedStyle.Render("> " + line))
		} else {
			b.WriteString(styles.PaletteRowStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.HintStyle.Render("enter switch  ^R rename  ^D delete  esc close"))

	box := styles.PaletteStyle.Width(boxWidth).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
