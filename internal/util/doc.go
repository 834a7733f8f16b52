// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across astro-tui: an atomic
// file writer used by every persistence path, and rune-safe string helpers
// for previews and fixed-width display.
package util
