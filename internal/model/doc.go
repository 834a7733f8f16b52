// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// A Conversation is an ordered message list with identity and timestamps.
// Messages carry a role (user or assistant) plus loading/error state for the
// in-flight assistant placeholder. BuildHistory derives the wire-format
// history pairs sent to the chat endpoint: only contiguous completed
// exchanges are included, so a trailing unanswered user message never leaks
// into the request context.
package model
