// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes conversations to shareable files.
//
// Two formats are supported: Markdown for reading and JSON for tooling.
// Both drop unresolved placeholders; Markdown keeps errored messages
// with a label. Files are written atomically into the chosen output
// directory with a timestamped name derived from the title.
package export
