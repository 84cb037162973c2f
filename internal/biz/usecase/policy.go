package usecase

import (
	"time"

	"github.com/pulsecheck/engage/internal/biz/domain"
)

// UnlimitedCap is the daily-cap sentinel for tiers without a limit.
const UnlimitedCap = -1

// RateLimits holds the per-(tier, level) limits.
type RateLimits struct {
	DailyCap int
	Cooldown time.Duration
}

// RateTable maps (tier, interaction level) to limits. The numbers are
// configuration, not invariants; deployments tune them.
type RateTable map[domain.Tier]map[domain.InteractionLevel]RateLimits

// DefaultRateTable returns the default limits.
func DefaultRateTable() RateTable {
	return RateTable{
		domain.TierFree: {
			domain.LevelMinimal:  {DailyCap: 5, Cooldown: 60 * time.Minute},
			domain.LevelModerate: {DailyCap: 10, Cooldown: 30 * time.Minute},
			domain.LevelHigh:     {DailyCap: 20, Cooldown: 15 * time.Minute},
		},
		domain.TierPremium: {
			domain.LevelMinimal:  {DailyCap: 10, Cooldown: 30 * time.Minute},
			domain.LevelModerate: {DailyCap: 25, Cooldown: 15 * time.Minute},
			domain.LevelHigh:     {DailyCap: UnlimitedCap, Cooldown: 5 * time.Minute},
		},
	}
}

// RatePolicy answers cap, cooldown and persona-eligibility questions.
// Pure lookups; the testing-mode flag is passed in per call so the policy
// never caches scheduler state.
type RatePolicy struct {
	table    RateTable
	registry *PersonaRegistry
}

// NewRatePolicy creates a policy over the given table and persona registry.
func NewRatePolicy(table RateTable, registry *PersonaRegistry) *RatePolicy {
	return &RatePolicy{table: table, registry: registry}
}

// limits resolves the table entry, falling back to FREE/MODERATE for
// unknown enum values.
func (p *RatePolicy) limits(tier domain.Tier, level domain.InteractionLevel) RateLimits {
	byLevel, ok := p.table[tier]
	if !ok {
		byLevel = p.table[domain.TierFree]
	}
	limits, ok := byLevel[level]
	if !ok {
		limits = byLevel[domain.LevelModerate]
	}
	return limits
}

// DailyCap returns the max replies per rolling 24h window. UnlimitedCap
// means no limit. Testing mode lifts the cap.
func (p *RatePolicy) DailyCap(tier domain.Tier, level domain.InteractionLevel, testingMode bool) int {
	if testingMode {
		return UnlimitedCap
	}
	return p.limits(tier, level).DailyCap
}

// Cooldown returns the minimum gap between replies for the same
// (user, persona) pair. Testing mode overrides it to zero.
func (p *RatePolicy) Cooldown(tier domain.Tier, level domain.InteractionLevel, testingMode bool) time.Duration {
	if testingMode {
		return 0
	}
	return p.limits(tier, level).Cooldown
}

// EligiblePersonas returns the persona ids the user may receive replies
// from, in registry order: the preferred set when non-empty, otherwise the
// whole registry, minus blocked personas.
func (p *RatePolicy) EligiblePersonas(pref *domain.UserAiPreference) []string {
	preferred := make(map[string]bool, len(pref.PreferredPersonas))
	for _, id := range pref.PreferredPersonas {
		preferred[id] = true
	}

	var out []string
	for _, persona := range p.registry.List() {
		if len(preferred) > 0 && !preferred[persona.ID] {
			continue
		}
		if pref.IsBlocked(persona.ID) {
			continue
		}
		out = append(out, persona.ID)
	}
	return out
}
