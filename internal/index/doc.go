// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package index provides full-text search across conversation messages.
//
// The index is a SQLite FTS5 table over resolved message content, kept
// in sync incrementally after each persist and rebuilt wholesale on
// startup or when the data file changes externally. A Watcher observes
// the conversations file for writes from a second running instance.
//
// RELIABILITY: the index is derivative state. Every operation here may
// fail without affecting chat; callers log and fall back to title-only
// search.
package index
