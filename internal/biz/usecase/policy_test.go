package usecase

import (
	"testing"
	"time"

	"github.com/pulsecheck/engage/internal/biz/domain"
)

func TestDailyCap_PerTierAndLevel(t *testing.T) {
	policy := NewRatePolicy(DefaultRateTable(), NewPersonaRegistry())

	cases := []struct {
		tier  domain.Tier
		level domain.InteractionLevel
		cap   int
	}{
		{domain.TierFree, domain.LevelMinimal, 5},
		{domain.TierFree, domain.LevelModerate, 10},
		{domain.TierFree, domain.LevelHigh, 20},
		{domain.TierPremium, domain.LevelMinimal, 10},
		{domain.TierPremium, domain.LevelModerate, 25},
		{domain.TierPremium, domain.LevelHigh, UnlimitedCap},
	}
	for _, tc := range cases {
		got := policy.DailyCap(tc.tier, tc.level, false)
		if got != tc.cap {
			t.Errorf("DailyCap(%s, %s) = %d, want %d", tc.tier, tc.level, got, tc.cap)
		}
	}
}

func TestCooldown_PerTierAndLevel(t *testing.T) {
	policy := NewRatePolicy(DefaultRateTable(), NewPersonaRegistry())

	cases := []struct {
		tier     domain.Tier
		level    domain.InteractionLevel
		cooldown time.Duration
	}{
		{domain.TierFree, domain.LevelMinimal, 60 * time.Minute},
		{domain.TierFree, domain.LevelModerate, 30 * time.Minute},
		{domain.TierFree, domain.LevelHigh, 15 * time.Minute},
		{domain.TierPremium, domain.LevelMinimal, 30 * time.Minute},
		{domain.TierPremium, domain.LevelModerate, 15 * time.Minute},
		{domain.TierPremium, domain.LevelHigh, 5 * time.Minute},
	}
	for _, tc := range cases {
		got := policy.Cooldown(tc.tier, tc.level, false)
		if got != tc.cooldown {
			t.Errorf("Cooldown(%s, %s) = %v, want %v", tc.tier, tc.level, got, tc.cooldown)
		}
	}
}

func TestTestingMode_LiftsCapAndCooldown(t *testing.T) {
	policy := NewRatePolicy(DefaultRateTable(), NewPersonaRegistry())

	if got := policy.DailyCap(domain.TierFree, domain.LevelMinimal, true); got != UnlimitedCap {
		t.Errorf("Expected unlimited cap in testing mode, got %d", got)
	}
	if got := policy.Cooldown(domain.TierFree, domain.LevelMinimal, true); got != 0 {
		t.Errorf("Expected zero cooldown in testing mode, got %v", got)
	}
}

func TestLimits_UnknownEnumFallsBack(t *testing.T) {
	policy := NewRatePolicy(DefaultRateTable(), NewPersonaRegistry())

	// Unknown tier and level must behave like FREE/MODERATE.
	if got := policy.DailyCap("GOLD", "EXTREME", false); got != 10 {
		t.Errorf("Expected fallback cap 10, got %d", got)
	}
	if got := policy.Cooldown("GOLD", "EXTREME", false); got != 30*time.Minute {
		t.Errorf("Expected fallback cooldown 30m, got %v", got)
	}
}

func TestEligiblePersonas_DefaultIsWholeRegistry(t *testing.T) {
	registry := NewPersonaRegistry()
	policy := NewRatePolicy(DefaultRateTable(), registry)

	pref := domain.DefaultPreference("user-1")
	got := policy.EligiblePersonas(pref)

	if len(got) != len(registry.List()) {
		t.Fatalf("Expected %d personas, got %d", len(registry.List()), len(got))
	}
	// Registry order must be preserved.
	for i, p := range registry.List() {
		if got[i] != p.ID {
			t.Errorf("Position %d: got %s, want %s", i, got[i], p.ID)
		}
	}
}

func TestEligiblePersonas_PreferredNarrows(t *testing.T) {
	policy := NewRatePolicy(DefaultRateTable(), NewPersonaRegistry())

	pref := domain.DefaultPreference("user-1")
	pref.PreferredPersonas = []string{"sage", "pulse"}

	got := policy.EligiblePersonas(pref)
	if len(got) != 2 {
		t.Fatalf("Expected 2 personas, got %v", got)
	}
	// Registry order wins over preference-list order.
	if got[0] != "pulse" || got[1] != "sage" {
		t.Errorf("Expected [pulse sage], got %v", got)
	}
}

func TestEligiblePersonas_BlockedAlwaysExcluded(t *testing.T) {
	policy := NewRatePolicy(DefaultRateTable(), NewPersonaRegistry())

	pref := domain.DefaultPreference("user-1")
	pref.PreferredPersonas = []string{"pulse", "sage"}
	pref.BlockedPersonas = []string{"sage"}

	got := policy.EligiblePersonas(pref)
	if len(got) != 1 || got[0] != "pulse" {
		t.Errorf("Expected [pulse], got %v", got)
	}
}

func TestEligiblePersonas_AllBlocked(t *testing.T) {
	policy := NewRatePolicy(DefaultRateTable(), NewPersonaRegistry())

	pref := domain.DefaultPreference("user-1")
	pref.BlockedPersonas = []string{"pulse", "sage", "spark", "anchor"}

	if got := policy.EligiblePersonas(pref); len(got) != 0 {
		t.Errorf("Expected no eligible personas, got %v", got)
	}
}
