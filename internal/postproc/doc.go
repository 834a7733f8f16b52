// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package postproc cleans raw model output before storage and display.
//
// Cleaning is a fixed sequence of pure transforms (whitespace
// normalization, boilerplate stripping, punctuation dedup, citation
// formatting) applied to prose only; code fences persist byte for
// byte. Each transform is idempotent, so cleaning already-clean text
// is a no-op.
//
// HTML sanitization is the display boundary, not a storage transform:
// Renderer runs bluemonday's strict policy over prose (code fences and
// inline spans stay literal, the renderer shows them as inert text)
// before glamour styles the markdown, and degrades to the sanitized
// plain text on failure rather than dropping content. Stored text is
// the cleaned markdown, so history round-trips to the API unmangled.
package postproc
