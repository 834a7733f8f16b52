// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/astro-tui/internal/ui/styles"
	"github.com/jeranaias/astro-tui/internal/util"
)

// =============================================================================
// STATUS BAR
// =============================================================================

// lowQuotaFraction is the threshold below which the quota display turns
// into a warning.
const lowQuotaFraction = 0.1

// StatusBarData is everything the status bar displays.
type StatusBarData struct {
	Tier           string
	QuotaRemaining int
	QuotaLimit     int
	SearchEnabled  bool
	Sending        bool
	Width          int
}

// RenderStatusBar renders the bottom status line: tier, quota, search
// mode, and key hints.
func RenderStatusBar(d StatusBarData) string {
	quota := fmt.Sprintf("quota %d/%d", d.QuotaRemaining, d.QuotaLimit)
	quotaSegment := quota
	if d.QuotaLimit > 0 && float64(d.QuotaRemaining) < float64(d.QuotaLimit)*lowQuotaFraction {
		quotaSegment = styles.StatusBarAlertStyle.Render(styles.StatusIndicators.Warning + " " + quota)
	}

	segments := []string{
		strings.ToUpper(d.Tier),
		quotaSegment,
	}
	if d.SearchEnabled {
		segments = append(segments, "search on")
	}
	if d.Sending {
		segments = append(segments, "sending...")
	}

	left := strings.Join(segments, "  |  ")
	hints := styles.HintStyle.Render("^N new  ^K conversations  ^S search  ^E export  ^C quit")

	gap := d.Width - lipgloss.Width(left) - lipgloss.Width(hints) - 2
	if gap < 1 {
		gap = 1
	}
	line := left + util.PadRight("", gap) + hints

	return styles.StatusBarStyle.Width(d.Width).Render(line)
}
