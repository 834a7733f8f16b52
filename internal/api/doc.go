// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the Astro chat and search
// endpoints.
//
// Errors are classified into transient (429, 503, 504, transport timeout)
// and fatal (everything else, including a 2xx with a malformed body), and
// every failure carries a stable code string for support correlation.
// The client performs one attempt per call; retry sequencing lives in the
// orchestrator's state machine. Outbound requests are paced client-side
// with a token-bucket limiter.
package api
