// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package access

import "testing"

func TestLookupKnownKey(t *testing.T) {
	g := Lookup("astro-pro-2024")
	if g.Tier != TierPro {
		t.Errorf("Tier = %q, want %q", g.Tier, TierPro)
	}
	if !g.HasPermission(PermSearch) {
		t.Error("pro tier should have search permission")
	}
	if g.QuotaLimit <= 0 || g.RefreshHours <= 0 {
		t.Errorf("grant should carry quota settings, got %+v", g)
	}
}

func TestLookupUnknownKeyFallsBackToFree(t *testing.T) {
	g := Lookup("not-a-real-key")
	if g.Tier != TierFree {
		t.Errorf("Tier = %q, want %q", g.Tier, TierFree)
	}
	if g.HasPermission(PermSearch) {
		t.Error("free tier should not have search permission")
	}
}

func TestLookupEmptyKey(t *testing.T) {
	g := Lookup("")
	if g.Tier != TierFree {
		t.Errorf("Tier = %q, want %q", g.Tier, TierFree)
	}
}

func TestIsKnown(t *testing.T) {
	if !IsKnown("astro-plus-2024") {
		t.Error("plus key should be known")
	}
	if IsKnown("bogus") {
		t.Error("bogus key should be unknown")
	}
}

func TestTierRefreshIntervalsShrinkWithTier(t *testing.T) {
	free := Lookup("")
	plus := Lookup("astro-plus-2024")
	pro := Lookup("astro-pro-2024")

	if !(free.RefreshHours > plus.RefreshHours && plus.RefreshHours > pro.RefreshHours) {
		t.Errorf("refresh hours should shrink with tier: free=%d plus=%d pro=%d",
			free.RefreshHours, plus.RefreshHours, pro.RefreshHours)
	}
}
