// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package orchestrator drives the send pipeline for chat messages.
//
// A send moves through a fixed sequence: pre-flight quota gate, message
// append with a loading placeholder, optional search augmentation, the
// retry loop (transient failures only, fixed delay, bounded attempts),
// response cleaning, and quota settlement. Two invariants hold on every
// path out of Send:
//
//   - the placeholder is resolved to content or an error string, never
//     left loading
//   - quota settles exactly: a failed send costs nothing, a successful
//     one costs the response estimate and nothing more
//
// Auto-titling piggybacks on successful sends and is strictly cosmetic;
// its failures are logged and swallowed.
package orchestrator
