// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the astro TUI.
//
// Colors are defined once as lipgloss.AdaptiveColor pairs so every
// component renders correctly on both light and dark terminals, and
// shared component styles live here rather than in the components that
// use them so the look stays consistent.
package styles
