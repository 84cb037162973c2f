package usecase

import (
	"fmt"
	"testing"

	"github.com/pulsecheck/engage/internal/biz/domain"
)

func TestCycleLog_AppendAndRecent(t *testing.T) {
	log := NewCycleLog(10)

	for i := 0; i < 3; i++ {
		r := domain.NewCycleRecord(domain.CycleTypeScheduled)
		r.UsersProcessed = i
		log.Append(r)
	}

	if log.Len() != 3 {
		t.Fatalf("Expected 3 records, got %d", log.Len())
	}

	recent := log.Recent(2)
	if len(recent) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(recent))
	}
	// Most recent first.
	if recent[0].UsersProcessed != 2 || recent[1].UsersProcessed != 1 {
		t.Errorf("Expected newest-first ordering, got %d then %d",
			recent[0].UsersProcessed, recent[1].UsersProcessed)
	}
}

func TestCycleLog_BoundedRetention(t *testing.T) {
	log := NewCycleLog(5)

	for i := 0; i < 8; i++ {
		r := domain.NewCycleRecord(domain.CycleTypeScheduled)
		r.UsersProcessed = i
		log.Append(r)
	}

	if log.Len() != 5 {
		t.Fatalf("Expected retention of 5, got %d", log.Len())
	}

	recent := log.Recent(0)
	if len(recent) != 5 {
		t.Fatalf("Expected all 5 retained records, got %d", len(recent))
	}
	// Oldest three were dropped.
	if recent[len(recent)-1].UsersProcessed != 3 {
		t.Errorf("Expected oldest retained record to be cycle 3, got %d",
			recent[len(recent)-1].UsersProcessed)
	}
}

func TestCycleLog_SuccessRateEmptyIsOne(t *testing.T) {
	log := NewCycleLog(10)
	if got := log.AggregateSuccessRate(); got != 1.0 {
		t.Errorf("Expected 1.0 with no records, got %f", got)
	}
}

func TestCycleLog_SuccessRateAggregates(t *testing.T) {
	log := NewCycleLog(10)

	ok := domain.NewCycleRecord(domain.CycleTypeScheduled)
	ok.EngagementsExecuted = 9
	log.Append(ok)

	failed := domain.NewCycleRecord(domain.CycleTypeScheduled)
	failed.Errors = []string{"user-1: generation failed"}
	log.Append(failed)

	// 9 executed, 1 error: 0.9.
	if got := log.AggregateSuccessRate(); got != 0.9 {
		t.Errorf("Expected 0.9, got %f", got)
	}
}

func TestCycleLog_SuccessRateOnlyErrors(t *testing.T) {
	log := NewCycleLog(10)

	r := domain.NewCycleRecord(domain.CycleTypeManual)
	for i := 0; i < 4; i++ {
		r.Errors = append(r.Errors, fmt.Sprintf("user-%d: boom", i))
	}
	log.Append(r)

	if got := log.AggregateSuccessRate(); got != 0.0 {
		t.Errorf("Expected 0.0 with only errors, got %f", got)
	}
}

func TestCycleLog_RecentMoreThanRetained(t *testing.T) {
	log := NewCycleLog(10)
	log.Append(domain.NewCycleRecord(domain.CycleTypeScheduled))

	recent := log.Recent(100)
	if len(recent) != 1 {
		t.Errorf("Expected 1 record, got %d", len(recent))
	}
}
