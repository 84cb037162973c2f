package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pulsecheck/engage/internal/biz/domain"
	"github.com/pulsecheck/engage/internal/biz/repo"
	"github.com/pulsecheck/engage/internal/biz/usecase"
)

// ErrCycleRunning is returned by ManualCycle while another cycle is in
// flight. Concurrent cycles are disallowed by design.
var ErrCycleRunning = errors.New("cycle already running")

// SchedulerConfig holds the engagement scheduler's knobs.
type SchedulerConfig struct {
	CycleInterval time.Duration // gap between scheduled ticks
	Lookback      time.Duration // active-user window
	TestingMode   bool          // initial testing-mode state
}

// DefaultSchedulerConfig returns the production defaults.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		CycleInterval: 5 * time.Minute,
		Lookback:      48 * time.Hour,
	}
}

// Status is the scheduler's observable state.
type Status struct {
	Running     bool    `json:"running"`
	TestingMode bool    `json:"testing_mode"`
	CyclesRun   int     `json:"cycles_run"`
	SuccessRate float64 `json:"success_rate"`
}

// LastAction summarizes the engine's view of one user, for debugging.
type LastAction struct {
	LastJournalEntry *domain.JournalEntry `json:"last_journal_entry"`
	LastAiComment    *domain.AiReply      `json:"last_ai_comment"`
	NextScheduledAt  time.Time            `json:"next_scheduled_at"`
	FlowStatus       string               `json:"flow_status"`
}

// EngagementScheduler runs the periodic engagement loop: for every active
// user it detects opportunities, generates drafts, gates them through the
// safety filter and persists approved replies. One cycle runs at a time;
// testing mode and the running flag are owned here and read per evaluation,
// never cached by collaborators.
type EngagementScheduler struct {
	storage   repo.StorageRepo
	generator repo.GeneratorRepo
	detector  *usecase.OpportunityDetector
	filter    *usecase.SafetyFilter
	registry  *usecase.PersonaRegistry
	cycleLog  *usecase.CycleLog
	config    SchedulerConfig

	mu          sync.Mutex // guards running, testingMode, nextTickAt, cyclesRun, stopCh
	running     bool
	testingMode bool
	nextTickAt  time.Time
	cyclesRun   int // monotonic; the cycle log is bounded
	stopCh      chan struct{}
	wg          sync.WaitGroup

	cycleMu sync.Mutex // held for the duration of one cycle
}

// NewEngagementScheduler creates a scheduler.
func NewEngagementScheduler(
	storage repo.StorageRepo,
	generator repo.GeneratorRepo,
	detector *usecase.OpportunityDetector,
	filter *usecase.SafetyFilter,
	registry *usecase.PersonaRegistry,
	cycleLog *usecase.CycleLog,
	config SchedulerConfig,
) *EngagementScheduler {
	return &EngagementScheduler{
		storage:     storage,
		generator:   generator,
		detector:    detector,
		filter:      filter,
		registry:    registry,
		cycleLog:    cycleLog,
		config:      config,
		testingMode: config.TestingMode,
	}
}

// Start begins periodic ticking. The first cycle runs immediately.
func (s *EngagementScheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	s.wg.Add(1)
	go s.loop(stopCh)
	fmt.Printf("[Scheduler] Started with interval %v\n", s.config.CycleInterval)
}

// Stop cancels future ticks. An in-flight cycle is allowed to complete.
func (s *EngagementScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	fmt.Println("[Scheduler] Stopped")
}

func (s *EngagementScheduler) loop(stopCh chan struct{}) {
	defer s.wg.Done()

	s.tick()

	ticker := time.NewTicker(s.config.CycleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick()
		case <-stopCh:
			return
		}
	}
}

// tick runs one scheduled cycle. If a manual cycle is already in flight the
// tick is skipped; the next one picks the work up.
func (s *EngagementScheduler) tick() {
	s.mu.Lock()
	s.nextTickAt = time.Now().Add(s.config.CycleInterval)
	s.mu.Unlock()

	if !s.cycleMu.TryLock() {
		fmt.Println("[Scheduler] Tick skipped: cycle already running")
		return
	}
	defer s.cycleMu.Unlock()
	s.runCycle(context.Background(), domain.CycleTypeScheduled)
}

// ManualCycle triggers an out-of-band cycle without disturbing the periodic
// schedule. Returns ErrCycleRunning if a cycle is already in flight.
func (s *EngagementScheduler) ManualCycle(ctx context.Context, cycleType string) (*domain.CycleRecord, error) {
	if cycleType == "" {
		cycleType = domain.CycleTypeManual
	}
	if !s.cycleMu.TryLock() {
		return nil, ErrCycleRunning
	}
	defer s.cycleMu.Unlock()
	return s.runCycle(ctx, cycleType), nil
}

// EnableTestingMode removes cooldown and cap restrictions globally. Takes
// effect on the next opportunity-detection pass.
func (s *EngagementScheduler) EnableTestingMode() {
	s.mu.Lock()
	s.testingMode = true
	s.mu.Unlock()
	fmt.Println("[Scheduler] Testing mode enabled")
}

// DisableTestingMode restores normal cooldown and cap behavior.
func (s *EngagementScheduler) DisableTestingMode() {
	s.mu.Lock()
	s.testingMode = false
	s.mu.Unlock()
	fmt.Println("[Scheduler] Testing mode disabled")
}

// TestingMode reports the current testing-mode state.
func (s *EngagementScheduler) TestingMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.testingMode
}

// Status reports the true current state, including after failures.
func (s *EngagementScheduler) Status() Status {
	s.mu.Lock()
	running, testing, cycles := s.running, s.testingMode, s.cyclesRun
	s.mu.Unlock()
	return Status{
		Running:     running,
		TestingMode: testing,
		CyclesRun:   cycles,
		SuccessRate: s.cycleLog.AggregateSuccessRate(),
	}
}

// LastAction reports the engine's view of one user's engagement flow.
func (s *EngagementScheduler) LastAction(ctx context.Context, userID string) (*LastAction, error) {
	since := time.Now().Add(-s.config.Lookback)

	entries, err := s.storage.GetRecentEntries(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("get recent entries: %w", err)
	}
	replies, err := s.storage.GetRecentReplies(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("get recent replies: %w", err)
	}

	action := &LastAction{FlowStatus: "no_recent_activity"}
	for _, e := range entries {
		if action.LastJournalEntry == nil || e.CreatedAt.After(action.LastJournalEntry.CreatedAt) {
			action.LastJournalEntry = e
		}
	}
	for _, r := range replies {
		if action.LastAiComment == nil || r.CreatedAt.After(action.LastAiComment.CreatedAt) {
			action.LastAiComment = r
		}
	}

	s.mu.Lock()
	if s.running {
		action.NextScheduledAt = s.nextTickAt
	}
	s.mu.Unlock()

	switch {
	case action.LastJournalEntry == nil:
	case action.LastAiComment == nil || action.LastAiComment.CreatedAt.Before(action.LastJournalEntry.CreatedAt):
		action.FlowStatus = "reply_pending"
	default:
		action.FlowStatus = "up_to_date"
	}
	return action, nil
}

// runCycle executes one full pass over all active users. The caller must
// hold cycleMu. A panic escaping per-user isolation is recorded as a failed
// cycle; the scheduler keeps ticking.
func (s *EngagementScheduler) runCycle(ctx context.Context, cycleType string) (record *domain.CycleRecord) {
	record = domain.NewCycleRecord(cycleType)
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			record.Failed = true
			record.Errors = append(record.Errors, fmt.Sprintf("cycle panic: %v", r))
		}
		record.DurationSeconds = time.Since(start).Seconds()
		s.mu.Lock()
		s.cyclesRun++
		s.mu.Unlock()
		s.cycleLog.Append(record)
		fmt.Printf("[Scheduler] Cycle %s (%s): users=%d opportunities=%d executed=%d skipped=%d errors=%d in %.2fs\n",
			record.CycleID, record.CycleType, record.UsersProcessed, record.OpportunitiesFound,
			record.EngagementsExecuted, record.Skipped, len(record.Errors), record.DurationSeconds)
	}()

	asOf := time.Now()
	testing := s.TestingMode()

	users, err := s.storage.GetActiveUsers(ctx, asOf.Add(-s.config.Lookback))
	if err != nil {
		record.Failed = true
		record.Errors = append(record.Errors, fmt.Sprintf("get active users: %v", err))
		return record
	}

	for _, userID := range users {
		s.processUser(ctx, userID, asOf, testing, record)
		record.UsersProcessed++
	}
	return record
}

// processUser handles one user's opportunities. Errors and panics here are
// isolated: they are recorded on the cycle and never abort other users.
func (s *EngagementScheduler) processUser(ctx context.Context, userID string, asOf time.Time, testing bool, record *domain.CycleRecord) {
	defer func() {
		if r := recover(); r != nil {
			record.Errors = append(record.Errors, fmt.Sprintf("%s: panic: %v", userID, r))
		}
	}()

	opportunities, skips, err := s.detector.FindOpportunities(ctx, userID, asOf, testing)
	if err != nil {
		record.Errors = append(record.Errors, fmt.Sprintf("%s: %v", userID, err))
		return
	}
	record.OpportunitiesFound += len(opportunities)
	record.Skipped += len(skips)
	if len(opportunities) == 0 {
		return
	}

	// Snapshot the entries once for reply generation.
	entries, err := s.storage.GetRecentEntries(ctx, userID, asOf.Add(-s.config.Lookback))
	if err != nil {
		record.Errors = append(record.Errors, fmt.Sprintf("%s: %v", userID, err))
		return
	}
	byID := make(map[string]*domain.JournalEntry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}

	for _, opp := range opportunities {
		entry, ok := byID[opp.JournalEntryID]
		if !ok {
			continue
		}
		s.dispatch(ctx, opp, entry, record)
	}
}

// dispatch generates, gates and persists one reply. The duplicate re-check
// happens immediately before persisting; the persist step is authoritative
// and a duplicate signal discards the reply without retry.
func (s *EngagementScheduler) dispatch(ctx context.Context, opp domain.EngagementOpportunity, entry *domain.JournalEntry, record *domain.CycleRecord) {
	persona, err := s.registry.Get(opp.PersonaID)
	if err != nil {
		record.Errors = append(record.Errors, fmt.Sprintf("%s: %v", opp.UserID, err))
		return
	}

	draft, err := s.generator.Generate(ctx, persona, entry)
	if err != nil {
		record.Errors = append(record.Errors, fmt.Sprintf("%s: %s: %v", opp.UserID, domain.SkipGenerationFailed, err))
		return
	}

	verdict := s.filter.Check(draft)
	if !verdict.Allowed {
		record.Skipped++
		fmt.Printf("[Scheduler] Draft blocked for %s/%s: %s:%s\n",
			opp.UserID, opp.PersonaID, domain.SkipSafetyBlocked, verdict.MatchedCategory)
		return
	}

	existing, err := s.storage.GetRepliesForEntries(ctx, []string{opp.JournalEntryID})
	if err != nil {
		record.Errors = append(record.Errors, fmt.Sprintf("%s: %v", opp.UserID, err))
		return
	}
	for _, r := range existing {
		if r.PersonaID == opp.PersonaID {
			record.Skipped++
			return
		}
	}

	reply := domain.NewAiReply(opp.JournalEntryID, opp.UserID, opp.PersonaID, draft, time.Now())
	if err := s.storage.SaveReply(ctx, reply); err != nil {
		if errors.Is(err, repo.ErrDuplicateReply) {
			record.Skipped++
			fmt.Printf("[Scheduler] Duplicate reply discarded for %s/%s\n", opp.JournalEntryID, opp.PersonaID)
			return
		}
		record.Errors = append(record.Errors, fmt.Sprintf("%s: save reply: %v", opp.UserID, err))
		return
	}
	record.EngagementsExecuted++
}
