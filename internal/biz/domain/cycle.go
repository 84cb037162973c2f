package domain

import (
	"time"

	"github.com/google/uuid"
)

// Cycle types.
const (
	CycleTypeScheduled = "scheduled"
	CycleTypeManual    = "manual"
)

// CycleRecord is the append-only audit record of one scheduler pass.
type CycleRecord struct {
	CycleID             string    `json:"cycle_id"`
	CycleType           string    `json:"cycle_type"`
	Timestamp           time.Time `json:"timestamp"`
	UsersProcessed      int       `json:"users_processed"`
	OpportunitiesFound  int       `json:"opportunities_found"`
	EngagementsExecuted int       `json:"engagements_executed"`
	Skipped             int       `json:"skipped"`
	DurationSeconds     float64   `json:"duration_seconds"`
	Errors              []string  `json:"errors,omitempty"`
	Failed              bool      `json:"failed"` // true when the cycle itself aborted, not just per-user errors
}

// NewCycleRecord starts an audit record for a cycle of the given type.
func NewCycleRecord(cycleType string) *CycleRecord {
	return &CycleRecord{
		CycleID:   uuid.NewString(),
		CycleType: cycleType,
		Timestamp: time.Now(),
	}
}
