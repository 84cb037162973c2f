package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pulsecheck/engage/internal/biz/domain"
	"github.com/pulsecheck/engage/internal/biz/repo"
	"github.com/pulsecheck/engage/internal/biz/usecase"
	"github.com/pulsecheck/engage/internal/service"
)

// MockStorage implements repo.StorageRepo for testing
type MockStorage struct {
	entries map[string][]*domain.JournalEntry
	replies []*domain.AiReply
}

func newMockStorage() *MockStorage {
	return &MockStorage{entries: make(map[string][]*domain.JournalEntry)}
}

func (m *MockStorage) GetActiveUsers(ctx context.Context, since time.Time) ([]string, error) {
	var users []string
	for userID := range m.entries {
		users = append(users, userID)
	}
	return users, nil
}

func (m *MockStorage) GetRecentEntries(ctx context.Context, userID string, since time.Time) ([]*domain.JournalEntry, error) {
	return m.entries[userID], nil
}

func (m *MockStorage) GetRepliesForEntries(ctx context.Context, entryIDs []string) ([]*domain.AiReply, error) {
	return nil, nil
}

func (m *MockStorage) GetRecentReplies(ctx context.Context, userID string, since time.Time) ([]*domain.AiReply, error) {
	return m.replies, nil
}

func (m *MockStorage) SaveReply(ctx context.Context, reply *domain.AiReply) error {
	m.replies = append(m.replies, reply)
	return nil
}

func (m *MockStorage) GetPreference(ctx context.Context, userID string) (*domain.UserAiPreference, error) {
	return nil, nil
}

func (m *MockStorage) Close() error { return nil }

type MockGenerator struct{}

func (m *MockGenerator) Generate(ctx context.Context, persona domain.Persona, entry *domain.JournalEntry) (string, error) {
	return "What a week. Which part are you most relieved to have behind you?", nil
}

func newTestServer() (*Server, *service.EngagementScheduler, *MockStorage) {
	storage := newMockStorage()
	registry := usecase.NewPersonaRegistry()
	policy := usecase.NewRatePolicy(usecase.DefaultRateTable(), registry)
	detector := usecase.NewOpportunityDetector(storage, policy, usecase.DefaultDetectorConfig())
	cycleLog := usecase.NewCycleLog(50)
	scheduler := service.NewEngagementScheduler(
		storage, &MockGenerator{}, detector, usecase.NewSafetyFilter(), registry, cycleLog,
		service.SchedulerConfig{CycleInterval: time.Hour, Lookback: 48 * time.Hour},
	)
	return NewServer(scheduler, cycleLog, 0), scheduler, storage
}

var _ repo.StorageRepo = (*MockStorage)(nil)

func TestHandleStatus(t *testing.T) {
	server, _, _ := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/scheduler/status", nil)
	w := httptest.NewRecorder()
	server.handleStatus(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var status service.Status
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if status.Running {
		t.Error("Expected running=false before Start")
	}
	if status.SuccessRate != 1.0 {
		t.Errorf("Expected success_rate 1.0, got %f", status.SuccessRate)
	}
}

func TestHandleStatus_MethodNotAllowed(t *testing.T) {
	server, _, _ := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/scheduler/status", nil)
	w := httptest.NewRecorder()
	server.handleStatus(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", w.Code)
	}
}

func TestHandleManualCycle(t *testing.T) {
	server, _, storage := newTestServer()
	storage.entries["user-1"] = []*domain.JournalEntry{{
		ID: "e1", UserID: "user-1",
		Content:   "I finally finished the project that has been hanging over me for a month.",
		CreatedAt: time.Now().Add(-time.Hour),
	}}

	body := bytes.NewBufferString(`{"cycle_type":"manual"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/scheduler/manual-cycle", body)
	w := httptest.NewRecorder()
	server.handleManualCycle(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var record domain.CycleRecord
	if err := json.Unmarshal(w.Body.Bytes(), &record); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if record.CycleType != domain.CycleTypeManual {
		t.Errorf("Expected manual cycle, got %s", record.CycleType)
	}
	if record.UsersProcessed != 1 {
		t.Errorf("Expected 1 user processed, got %d", record.UsersProcessed)
	}
}

func TestHandleManualCycle_EmptyBody(t *testing.T) {
	server, _, _ := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/scheduler/manual-cycle", nil)
	w := httptest.NewRecorder()
	server.handleManualCycle(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200 with no body, got %d", w.Code)
	}
}

func TestHandleTestingMode(t *testing.T) {
	server, scheduler, _ := newTestServer()

	body := bytes.NewBufferString(`{"enabled":true}`)
	req := httptest.NewRequest(http.MethodPost, "/api/scheduler/testing-mode", body)
	w := httptest.NewRecorder()
	server.handleTestingMode(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !scheduler.TestingMode() {
		t.Error("Expected testing mode enabled")
	}

	body = bytes.NewBufferString(`{"enabled":false}`)
	req = httptest.NewRequest(http.MethodPost, "/api/scheduler/testing-mode", body)
	w = httptest.NewRecorder()
	server.handleTestingMode(w, req)

	if scheduler.TestingMode() {
		t.Error("Expected testing mode disabled")
	}
}

func TestHandleTestingMode_BadBody(t *testing.T) {
	server, _, _ := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/scheduler/testing-mode", bytes.NewBufferString("{"))
	w := httptest.NewRecorder()
	server.handleTestingMode(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestHandleRecentCycles(t *testing.T) {
	server, _, _ := newTestServer()

	// Run two cycles so the log has records.
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/scheduler/manual-cycle", nil)
		server.handleManualCycle(httptest.NewRecorder(), req)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/cycles/recent?limit=1", nil)
	w := httptest.NewRecorder()
	server.handleRecentCycles(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var result struct {
		Cycles      []domain.CycleRecord `json:"cycles"`
		SuccessRate float64              `json:"success_rate"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if len(result.Cycles) != 1 {
		t.Errorf("Expected 1 cycle with limit=1, got %d", len(result.Cycles))
	}
	if result.SuccessRate != 1.0 {
		t.Errorf("Expected success_rate 1.0, got %f", result.SuccessRate)
	}
}

func TestHandleUsers_LastAction(t *testing.T) {
	server, _, storage := newTestServer()
	storage.entries["user-1"] = []*domain.JournalEntry{{
		ID: "e1", UserID: "user-1",
		Content:   "Slept badly again but the morning walk helped more than expected.",
		CreatedAt: time.Now().Add(-time.Hour),
	}}

	req := httptest.NewRequest(http.MethodGet, "/api/users/user-1/last-action", nil)
	w := httptest.NewRecorder()
	server.handleUsers(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var action service.LastAction
	if err := json.Unmarshal(w.Body.Bytes(), &action); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if action.FlowStatus != "reply_pending" {
		t.Errorf("Expected reply_pending, got %s", action.FlowStatus)
	}
	if action.LastJournalEntry == nil || action.LastJournalEntry.ID != "e1" {
		t.Errorf("Expected last entry e1, got %+v", action.LastJournalEntry)
	}
}

func TestHandleUsers_BadPath(t *testing.T) {
	server, _, _ := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/users/user-1/unknown", nil)
	w := httptest.NewRecorder()
	server.handleUsers(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}
