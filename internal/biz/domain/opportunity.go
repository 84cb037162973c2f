package domain

// Skip reasons recorded when a candidate pair does not become a reply.
const (
	SkipDailyCapReached  = "daily_cap_reached"
	SkipCooldownActive   = "cooldown_active"
	SkipSafetyBlocked    = "safety_blocked"
	SkipDuplicateReply   = "duplicate_reply"
	SkipGenerationFailed = "generation_failed"
)

// EngagementOpportunity is a candidate (journal entry, persona) pair eligible
// for an automated reply. Produced per cycle, consumed within the same cycle,
// never persisted; only its outcome (an AiReply or a skip) survives.
type EngagementOpportunity struct {
	JournalEntryID string
	UserID         string
	PersonaID      string
	Reason         string
}

// SkippedOpportunity records a candidate pair that was cut before dispatch,
// with the reason it was cut.
type SkippedOpportunity struct {
	JournalEntryID string
	UserID         string
	PersonaID      string
	Reason         string
}
