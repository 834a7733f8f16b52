// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the Bubble Tea shell for the astro client.
//
// The shell owns presentation only: conversation state lives in the
// store, send semantics in the orchestrator, and quota in the tracker.
// Keyboard input is routed by mode (chat, conversation palette, rename,
// content search), and background work (sends, quota refresh, toast
// expiry) arrives as messages so the UI goroutine never blocks.
package chat
