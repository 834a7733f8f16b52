// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package access maps access keys to feature tiers: permissions, local
// quota budget, and the tier's quota refresh interval. Purely a client-side
// feature gate; server-side enforcement is out of scope.
package access
