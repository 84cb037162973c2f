package usecase

import (
	"sync"

	"github.com/pulsecheck/engage/internal/biz/domain"
)

// CycleLog is the append-only, bounded in-memory audit log of scheduler
// cycles. One writer (the scheduler) appends; readers are safe concurrently.
type CycleLog struct {
	mu       sync.RWMutex
	records  []*domain.CycleRecord // oldest first
	capacity int
}

// NewCycleLog creates a log retaining the last capacity records.
func NewCycleLog(capacity int) *CycleLog {
	if capacity <= 0 {
		capacity = 50
	}
	return &CycleLog{capacity: capacity}
}

// Append records a completed cycle, dropping the oldest record past
// capacity. Past records are never mutated.
func (l *CycleLog) Append(record *domain.CycleRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, record)
	if len(l.records) > l.capacity {
		l.records = l.records[len(l.records)-l.capacity:]
	}
}

// Recent returns up to n records, most recent first.
func (l *CycleLog) Recent(n int) []*domain.CycleRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if n <= 0 || n > len(l.records) {
		n = len(l.records)
	}
	out := make([]*domain.CycleRecord, 0, n)
	for i := len(l.records) - 1; i >= len(l.records)-n; i-- {
		out = append(out, l.records[i])
	}
	return out
}

// AggregateSuccessRate returns executed / (executed + errors) over retained
// records, 1.0 when nothing has run. Repeated failures surface here as a
// declining rate rather than as errors to status callers.
func (l *CycleLog) AggregateSuccessRate() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	executed, failures := 0, 0
	for _, r := range l.records {
		executed += r.EngagementsExecuted
		failures += len(r.Errors)
	}
	if executed+failures == 0 {
		return 1.0
	}
	return float64(executed) / float64(executed+failures)
}

// Len returns the number of retained records.
func (l *CycleLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}
