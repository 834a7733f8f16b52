// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the astro TUI.
//
// This file renders the notification stack as non-blocking toasts in the
// bottom-right corner, inspired by lazygit's popup/toast system. Unlike
// modal error dialogs, toasts auto-dismiss and never steal input focus.
package components

import (
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/astro-tui/internal/notify"
	"github.com/jeranaias/astro-tui/internal/ui/styles"
)

// =============================================================================
// TOAST MESSAGES
// =============================================================================

// ToastTickMsg is sent periodically to expire toasts.
type ToastTickMsg struct {
	Time time.Time
}

// ToastTickCmd returns a command that ticks toasts every 100ms.
func ToastTickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return ToastTickMsg{Time: t}
	})
}

// =============================================================================
// TOAST RENDERING
// =============================================================================

// RenderToast renders a single notification as a toast box.
func RenderToast(n notify.Notification, width int) string {
	maxWidth := 60
	if width > 0 && width-8 < maxWidth {
		maxWidth = width - 8
	}
	if maxWidth < 30 {
		maxWidth = 30
	}

	var accent lipgloss.AdaptiveColor
	var icon string
	switch n.Kind {
	case notify.KindError:
		accent = styles.Rose
		icon = styles.StatusIndicators.Error
	case notify.KindWarning:
		accent = styles.Amber
		icon = styles.StatusIndicators.Warning
	case notify.KindSuccess:
		accent = styles.Emerald
		icon = styles.StatusIndicators.Success
	default:
		accent = styles.Cyan
		icon = styles.StatusIndicators.Info
	}

	message := n.Message
	if n.Code != "" {
		message += " (" + n.Code + ")"
	}

	iconStyle := lipgloss.NewStyle().Foreground(accent).Bold(true)
	messageStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary).
		Width(maxWidth - 8)

	content := iconStyle.Render(icon+" ") + messageStyle.Render(message)

	hints := []string{"[x] Dismiss"}
	if secs := int(n.TimeRemaining().Seconds()); secs > 0 {
		hints = append(hints, strconv.Itoa(secs)+"s")
	}
	content += "\n" + styles.HintStyle.Render(strings.Join(hints, "  "))

	toastStyle := lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 2).
		MaxWidth(maxWidth)

	return toastStyle.Render(content)
}

// RenderToastStack renders notifications stacked in the bottom-right
// corner, newest at the top of the stack.
func RenderToastStack(items []notify.Notification, width, height int) string {
	if len(items) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(items))
	for _, n := range items {
		rendered = append(rendered, RenderToast(n, width))
	}

	stack := lipgloss.JoinVertical(lipgloss.Right, rendered...)
	positioned := lipgloss.NewStyle().
		MarginRight(2).
		MarginBottom(1).
		Render(stack)

	if width > 0 && height > 0 {
		return lipgloss.Place(
			width, height,
			lipgloss.Right, lipgloss.Bottom,
			positioned,
		)
	}
	return positioned
}
