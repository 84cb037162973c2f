package mcp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client is the HTTP client for the engine's ops API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new ops API client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SchedulerStatus mirrors the engine's status payload
type SchedulerStatus struct {
	Running     bool    `json:"running"`
	TestingMode bool    `json:"testing_mode"`
	CyclesRun   int     `json:"cycles_run"`
	SuccessRate float64 `json:"success_rate"`
}

// CycleRecord mirrors the engine's cycle audit payload
type CycleRecord struct {
	CycleID             string   `json:"cycle_id"`
	CycleType           string   `json:"cycle_type"`
	Timestamp           string   `json:"timestamp"`
	UsersProcessed      int      `json:"users_processed"`
	OpportunitiesFound  int      `json:"opportunities_found"`
	EngagementsExecuted int      `json:"engagements_executed"`
	Skipped             int      `json:"skipped"`
	DurationSeconds     float64  `json:"duration_seconds"`
	Errors              []string `json:"errors,omitempty"`
	Failed              bool     `json:"failed"`
}

// GetStatus gets the scheduler status
func (c *Client) GetStatus() (*SchedulerStatus, error) {
	var status SchedulerStatus
	if err := c.get("/api/scheduler/status", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// TriggerCycle triggers a manual cycle
func (c *Client) TriggerCycle(cycleType string) (*CycleRecord, error) {
	var record CycleRecord
	body := map[string]string{"cycle_type": cycleType}
	if err := c.post("/api/scheduler/manual-cycle", body, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// SetTestingMode toggles the global testing-mode override
func (c *Client) SetTestingMode(enabled bool) (*SchedulerStatus, error) {
	var status SchedulerStatus
	body := map[string]bool{"enabled": enabled}
	if err := c.post("/api/scheduler/testing-mode", body, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// RecentCycles gets the most recent cycle records
func (c *Client) RecentCycles(limit int) ([]CycleRecord, float64, error) {
	var result struct {
		Cycles      []CycleRecord `json:"cycles"`
		SuccessRate float64       `json:"success_rate"`
	}
	if err := c.get(fmt.Sprintf("/api/cycles/recent?limit=%d", limit), &result); err != nil {
		return nil, 0, err
	}
	return result.Cycles, result.SuccessRate, nil
}

// LastAction gets the engine's view of one user's engagement flow
func (c *Client) LastAction(userID string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.get(fmt.Sprintf("/api/users/%s/last-action", url.PathEscape(userID)), &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// ============ HTTP Helpers ============

func (c *Client) get(path string, result interface{}) error {
	resp, err := c.httpClient.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("HTTP GET failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) post(path string, body interface{}, result interface{}) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal body: %w", err)
	}

	resp, err := c.httpClient.Post(c.baseURL+path, "application/json", bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("HTTP POST failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
