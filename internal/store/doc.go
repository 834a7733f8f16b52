// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store persists conversations and preferences on disk.
//
// The conversation store writes the whole collection as one JSON file
// with an atomic write (temp file, fsync, rename) after every mutation,
// so a crash never leaves a torn file. Conversations are ordered most
// recently updated first, and two structural invariants are enforced
// here rather than in the UI: creating a conversation reuses an
// existing empty one with the default title, and deleting the last
// conversation immediately creates a replacement.
//
// RELIABILITY: persistence failures after a successful mutation are
// logged and swallowed; the in-memory state stays authoritative for the
// running session so a full disk cannot wedge the chat loop.
package store
