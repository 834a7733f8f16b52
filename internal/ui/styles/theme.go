// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// SHARED COMPONENT STYLES
// =============================================================================

// HeaderStyle renders the top title bar.
var HeaderStyle = lipgloss.NewStyle().
	Foreground(Cyan).
	Background(SurfaceDim).
	Bold(true).
	Padding(0, 1)

// StatusBarStyle renders the bottom status line.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(TextSecondary).
	Background(SurfaceDim).
	Padding(0, 1)

// StatusBarAlertStyle highlights low-quota warnings in the status bar.
var StatusBarAlertStyle = lipgloss.NewStyle().
	Foreground(Amber).
	Background(SurfaceDim).
	Bold(true)

// InputBoxStyle frames the message input area.
var InputBoxStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(Overlay).
	Padding(0, 1)

// InputBoxFocusedStyle frames the input when it has focus.
var InputBoxFocusedStyle = InputBoxStyle.Copy().
	BorderForeground(Cyan)

// UserBubbleStyle frames user messages.
var UserBubbleStyle = lipgloss.NewStyle().
	Foreground(UserBubbleFg).
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(UserBubbleBorder).
	Padding(0, 1)

// AssistantBubbleStyle frames assistant messages.
var AssistantBubbleStyle = lipgloss.NewStyle().
	Foreground(AssistantBubbleFg).
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(AssistantBubbleBorder).
	Padding(0, 1)

// ErrorBubbleStyle frames errored assistant messages.
var ErrorBubbleStyle = lipgloss.NewStyle().
	Foreground(Rose).
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(Rose).
	Padding(0, 1)

// RoleLabelStyle renders the sender name above a bubble.
var RoleLabelStyle = lipgloss.NewStyle().
	Foreground(TextSecondary).
	Bold(true)

// TimestampStyle renders message timestamps.
var TimestampStyle = lipgloss.NewStyle().
	Foreground(TextMuted)

// PaletteStyle frames the conversation palette overlay.
var PaletteStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(Purple).
	Padding(0, 1)

// PaletteSelectedStyle highlights the selected palette row.
var PaletteSelectedStyle = lipgloss.NewStyle().
	Background(SelectionBg).
	Foreground(TextPrimary).
	Bold(true)

// PaletteRowStyle renders an unselected palette row.
var PaletteRowStyle = lipgloss.NewStyle().
	Foreground(TextSecondary)

// HintStyle renders key hints.
var HintStyle = lipgloss.NewStyle().
	Foreground(TextMuted).
	Italic(true)
