// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package quota tracks the per-user character budget for chat requests.
//
// The budget refreshes on a tier-based interval: once the window elapses,
// Remaining resets to Limit. Sends are gated before any network call, the
// orchestrator debits the estimated cost up front, and failed sends are
// credited back in full so errors never permanently consume quota.
// Remaining is clamped to [0, Limit] on every mutation and persisted
// atomically after each change.
package quota
