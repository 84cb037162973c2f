package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/pulsecheck/engage/internal/biz/usecase"
	"github.com/pulsecheck/engage/internal/service"
)

// Server exposes the scheduler's operational control surface over HTTP.
// This is the surface the deployment's ops scripts and the engage-mcp
// binary talk to.
type Server struct {
	scheduler *service.EngagementScheduler
	cycleLog  *usecase.CycleLog

	server *http.Server
	port   int
}

// NewServer creates a new ops API server
func NewServer(scheduler *service.EngagementScheduler, cycleLog *usecase.CycleLog, port int) *Server {
	return &Server{
		scheduler: scheduler,
		cycleLog:  cycleLog,
		port:      port,
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	mux := http.NewServeMux()

	// Scheduler control
	mux.HandleFunc("/api/scheduler/status", s.handleStatus)
	mux.HandleFunc("/api/scheduler/start", s.handleStart)
	mux.HandleFunc("/api/scheduler/stop", s.handleStop)
	mux.HandleFunc("/api/scheduler/manual-cycle", s.handleManualCycle)
	mux.HandleFunc("/api/scheduler/testing-mode", s.handleTestingMode)

	// Audit log
	mux.HandleFunc("/api/cycles/recent", s.handleRecentCycles)

	// Per-user debugging
	mux.HandleFunc("/api/users/", s.handleUsers)

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	s.server = &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", s.port),
		Handler: mux,
	}

	fmt.Printf("[API] Starting HTTP server on port %d\n", s.port)
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server
func (s *Server) Stop() error {
	if s.server != nil {
		return s.server.Shutdown(context.Background())
	}
	return nil
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.scheduler.Status())
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.scheduler.Start()
	writeJSON(w, http.StatusOK, s.scheduler.Status())
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.scheduler.Stop()
	writeJSON(w, http.StatusOK, s.scheduler.Status())
}

func (s *Server) handleManualCycle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		CycleType string `json:"cycle_type"`
	}
	// Body is optional; an empty cycle type means a plain manual cycle.
	_ = json.NewDecoder(r.Body).Decode(&req)

	record, err := s.scheduler.ManualCycle(r.Context(), req.CycleType)
	if err != nil {
		if errors.Is(err, service.ErrCycleRunning) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "cycle already running"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleTestingMode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Enabled {
		s.scheduler.EnableTestingMode()
	} else {
		s.scheduler.DisableTestingMode()
	}
	writeJSON(w, http.StatusOK, s.scheduler.Status())
}

func (s *Server) handleRecentCycles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 10
	if val := r.URL.Query().Get("limit"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"cycles":       s.cycleLog.Recent(limit),
		"success_rate": s.cycleLog.AggregateSuccessRate(),
	})
}

// handleUsers routes /api/users/{userID}/last-action
func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/users/")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "last-action" {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	action, err := s.scheduler.LastAction(r.Context(), parts[0])
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, action)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
