package domain

import "time"

// Tier represents the user's subscription tier.
type Tier string

const (
	TierFree    Tier = "FREE"
	TierPremium Tier = "PREMIUM"
)

// InteractionLevel represents how much proactive AI engagement a user wants.
type InteractionLevel string

const (
	LevelMinimal  InteractionLevel = "MINIMAL"
	LevelModerate InteractionLevel = "MODERATE"
	LevelHigh     InteractionLevel = "HIGH"
)

// UserAiPreference holds a user's AI engagement settings.
// Mutated by user settings actions elsewhere; read-only to the engine.
type UserAiPreference struct {
	UserID            string
	InteractionLevel  InteractionLevel
	Tier              Tier
	PreferredPersonas []string
	BlockedPersonas   []string
	UpdatedAt         time.Time
}

// DefaultPreference returns the preference used when a user has never
// written one. Missing preferences are not an error.
func DefaultPreference(userID string) *UserAiPreference {
	return &UserAiPreference{
		UserID:           userID,
		InteractionLevel: LevelModerate,
		Tier:             TierFree,
	}
}

// Normalize fills unset enum fields with their defaults: MODERATE for the
// interaction level and FREE for the tier.
func (p *UserAiPreference) Normalize() {
	switch p.InteractionLevel {
	case LevelMinimal, LevelModerate, LevelHigh:
	default:
		p.InteractionLevel = LevelModerate
	}
	switch p.Tier {
	case TierFree, TierPremium:
	default:
		p.Tier = TierFree
	}
}

// IsBlocked reports whether the user has blocked the given persona.
func (p *UserAiPreference) IsBlocked(personaID string) bool {
	for _, id := range p.BlockedPersonas {
		if id == personaID {
			return true
		}
	}
	return false
}
