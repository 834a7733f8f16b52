// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package access maps access keys to feature tiers.
package access

// =============================================================================
// TIER TYPE
// =============================================================================

// Tier categorizes what a key unlocks.
type Tier string

const (
	TierFree    Tier = "free"
	TierPlus    Tier = "plus"
	TierPro     Tier = "pro"
	TierPartner Tier = "partner"
)

// =============================================================================
// GRANT TYPE
// =============================================================================

// Grant describes the features and quota attached to a tier.
//
// This is a client-side feature gate, not a security boundary: the hosted
// API enforces real limits server-side. Keys here only shape the local UI
// and local quota bookkeeping.
type Grant struct {
	Tier Tier `json:"tier"`

	// Permissions is the set of optional features unlocked
	Permissions []string `json:"permissions"`

	// QuotaLimit is the local character budget per refresh window
	QuotaLimit int `json:"quota_limit"`

	// RefreshHours is the tier's quota refresh interval in hours
	RefreshHours int `json:"refresh_hours"`
}

// HasPermission reports whether the grant includes a named permission.
func (g Grant) HasPermission(name string) bool {
	for _, p := range g.Permissions {
		if p == name {
			return true
		}
	}
	return false
}

// Permission names.
const (
	PermSearch    = "search"
	PermExport    = "export"
	PermLongInput = "long_input"
)

// =============================================================================
// KEY TABLE
// =============================================================================

// grants is the static key table. Unknown keys fall back to the free tier.
var grants = map[string]Grant{
	"": freeGrant,
	"astro-plus-2024": {
		Tier:         TierPlus,
		Permissions:  []string{PermSearch, PermExport},
		QuotaLimit:   27000,
		RefreshHours: 12,
	},
	"astro-pro-2024": {
		Tier:         TierPro,
		Permissions:  []string{PermSearch, PermExport, PermLongInput},
		QuotaLimit:   90000,
		RefreshHours: 6,
	},
	"astro-partner-nova": {
		Tier:         TierPartner,
		Permissions:  []string{PermSearch, PermExport, PermLongInput},
		QuotaLimit:   250000,
		RefreshHours: 1,
	},
}

var freeGrant = Grant{
	Tier:         TierFree,
	Permissions:  []string{PermExport},
	QuotaLimit:   9000,
	RefreshHours: 24,
}

// Lookup resolves an access key to its grant. Unknown keys map to the
// free tier rather than failing.
func Lookup(key string) Grant {
	if g, ok := grants[key]; ok {
		return g
	}
	return freeGrant
}

// IsKnown reports whether a key exists in the table.
func IsKnown(key string) bool {
	_, ok := grants[key]
	return ok
}
