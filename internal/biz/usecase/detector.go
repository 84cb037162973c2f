package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pulsecheck/engage/internal/biz/domain"
	"github.com/pulsecheck/engage/internal/biz/repo"
)

// DetectorConfig bounds the opportunity scan.
type DetectorConfig struct {
	Lookback       time.Duration // how far back entries are considered
	MinEntryLength int           // entries shorter than this are never eligible
}

// DefaultDetectorConfig returns the default scan bounds.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		Lookback:       48 * time.Hour,
		MinEntryLength: 25,
	}
}

// OpportunityDetector computes, for one user, the set of (entry, persona)
// pairs eligible for a new AI reply. Read-only; it owns the policy for what
// counts as a valid candidate pair.
type OpportunityDetector struct {
	storage repo.StorageRepo
	policy  *RatePolicy
	config  DetectorConfig
}

// NewOpportunityDetector creates a detector.
func NewOpportunityDetector(storage repo.StorageRepo, policy *RatePolicy, config DetectorConfig) *OpportunityDetector {
	return &OpportunityDetector{storage: storage, policy: policy, config: config}
}

// FindOpportunities scans the user's recent entries as of the given time.
// Results are ordered oldest-entry-first, then persona-registry order, so
// cycles are reproducible. Candidates cut by cooldown or the daily cap are
// returned as skips. A storage failure aborts detection for this user only.
func (d *OpportunityDetector) FindOpportunities(
	ctx context.Context,
	userID string,
	asOf time.Time,
	testingMode bool,
) ([]domain.EngagementOpportunity, []domain.SkippedOpportunity, error) {
	pref, err := d.storage.GetPreference(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("get preference for %s: %w", userID, err)
	}
	if pref == nil {
		pref = domain.DefaultPreference(userID)
	} else {
		// Preferences are read-only to the engine; normalize a copy.
		copied := *pref
		pref = &copied
	}
	pref.Normalize()

	entries, err := d.storage.GetRecentEntries(ctx, userID, asOf.Add(-d.config.Lookback))
	if err != nil {
		return nil, nil, fmt.Errorf("get recent entries for %s: %w", userID, err)
	}
	if len(entries) == 0 {
		return nil, nil, nil
	}

	entryIDs := make([]string, 0, len(entries))
	for _, e := range entries {
		entryIDs = append(entryIDs, e.ID)
	}
	entryReplies, err := d.storage.GetRepliesForEntries(ctx, entryIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("get replies for %s: %w", userID, err)
	}

	cooldown := d.policy.Cooldown(pref.Tier, pref.InteractionLevel, testingMode)
	replyWindow := 24 * time.Hour
	if cooldown > replyWindow {
		replyWindow = cooldown
	}
	recentReplies, err := d.storage.GetRecentReplies(ctx, userID, asOf.Add(-replyWindow))
	if err != nil {
		return nil, nil, fmt.Errorf("get recent replies for %s: %w", userID, err)
	}

	// Uniqueness invariant: at most one reply per (entry, persona) pair.
	replied := make(map[string]bool, len(entryReplies))
	for _, r := range entryReplies {
		replied[r.JournalEntryID+"/"+r.PersonaID] = true
	}

	// Last reply time per persona drives the cooldown check; the 24h count
	// drives the daily cap.
	lastByPersona := make(map[string]time.Time)
	usedToday := 0
	for _, r := range recentReplies {
		if r.CreatedAt.After(lastByPersona[r.PersonaID]) {
			lastByPersona[r.PersonaID] = r.CreatedAt
		}
		if asOf.Sub(r.CreatedAt) <= 24*time.Hour {
			usedToday++
		}
	}

	eligible := d.policy.EligiblePersonas(pref)
	dailyCap := d.policy.DailyCap(pref.Tier, pref.InteractionLevel, testingMode)

	sorted := make([]*domain.JournalEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	var opportunities []domain.EngagementOpportunity
	var skips []domain.SkippedOpportunity
	// Opportunities emitted in this scan execute seconds apart, so a persona
	// emitted once already occupies its cooldown slot for the rest of it.
	emitted := make(map[string]bool)
	for _, entry := range sorted {
		if !entry.IsSubstantial(d.config.MinEntryLength) {
			continue
		}
		if domain.LooksLikeAiReply(entry.Content) {
			continue
		}
		for _, personaID := range eligible {
			if replied[entry.ID+"/"+personaID] {
				continue
			}
			if cooldown > 0 {
				last, ok := lastByPersona[personaID]
				if emitted[personaID] || (ok && asOf.Sub(last) < cooldown) {
					skips = append(skips, domain.SkippedOpportunity{
						JournalEntryID: entry.ID,
						UserID:         userID,
						PersonaID:      personaID,
						Reason:         domain.SkipCooldownActive,
					})
					continue
				}
			}
			if dailyCap != UnlimitedCap && usedToday+len(opportunities) >= dailyCap {
				skips = append(skips, domain.SkippedOpportunity{
					JournalEntryID: entry.ID,
					UserID:         userID,
					PersonaID:      personaID,
					Reason:         domain.SkipDailyCapReached,
				})
				continue
			}
			opportunities = append(opportunities, domain.EngagementOpportunity{
				JournalEntryID: entry.ID,
				UserID:         userID,
				PersonaID:      personaID,
				Reason:         "no_existing_reply",
			})
			emitted[personaID] = true
		}
	}
	return opportunities, skips, nil
}
