// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the astro TUI.
//
// Components here are pure render helpers and small stateful widgets
// (toast stack, message bubbles, status bar, conversation palette) used
// by the chat shell. They hold no application state beyond what they
// display; all mutations go through the store and orchestrator.
package components
