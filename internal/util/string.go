// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across astro-tui.
package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// =============================================================================
// STRING HELPERS
// =============================================================================

// TruncateRunes truncates a string to maxLen runes, appending "..." when
// truncated. Rune-based so multi-byte characters are never split.
func TruncateRunes(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// PadRight pads a string with spaces to the given display width.
// Uses runewidth so wide characters line up in table output.
func PadRight(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// CountRunes returns the number of runes in a string. Used for the input
// character cap, which counts characters rather than bytes.
func CountRunes(s string) int {
	return len([]rune(s))
}

// FirstLine returns the first line of a string with surrounding space
// trimmed.
func FirstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
