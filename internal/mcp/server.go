package mcp

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// OpsServer provides MCP tools for driving the engagement engine's
// operational control surface: the manual-verification workflow
// (trigger a cycle, flip testing mode, inspect results) as agent tools.
type OpsServer struct {
	server *mcp.Server
}

var (
	globalClient *Client
	clientMu     sync.Mutex
)

// NewOpsServer creates an MCP server backed by the given ops API client.
func NewOpsServer(client *Client) *OpsServer {
	clientMu.Lock()
	globalClient = client
	clientMu.Unlock()

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "pulsecheck-ops",
		Version: "v1.0.0",
	}, nil)

	s := &OpsServer{server: server}
	s.registerTools()
	return s
}

// Run starts the MCP server with stdio transport
func (s *OpsServer) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *OpsServer) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "pulse_get_status",
		Description: "Get the engagement scheduler's current status: running flag, testing mode, cycles run and aggregate success rate.",
	}, handleGetStatus)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "pulse_trigger_cycle",
		Description: "Trigger a manual engagement cycle out of band and return its audit record. Fails with 'cycle already running' if one is in flight.",
	}, handleTriggerCycle)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "pulse_set_testing_mode",
		Description: "Enable or disable testing mode. While enabled, cooldowns and daily caps are lifted globally for rapid manual verification.",
	}, handleSetTestingMode)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "pulse_recent_cycles",
		Description: "Get the most recent engagement cycle audit records, newest first, plus the aggregate success rate.",
	}, handleRecentCycles)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "pulse_last_action",
		Description: "Get the engine's view of one user: last journal entry, last AI comment, next scheduled cycle and flow status.",
	}, handleLastAction)
}

func opsClient() *Client {
	clientMu.Lock()
	defer clientMu.Unlock()
	return globalClient
}

// GetStatusInput is the input for pulse_get_status
type GetStatusInput struct{}

// GetStatusOutput is the output for pulse_get_status
type GetStatusOutput struct {
	Status *SchedulerStatus `json:"status,omitempty"`
	Error  string           `json:"error,omitempty"`
}

func handleGetStatus(ctx context.Context, req *mcp.CallToolRequest, input GetStatusInput) (*mcp.CallToolResult, GetStatusOutput, error) {
	status, err := opsClient().GetStatus()
	if err != nil {
		return nil, GetStatusOutput{Error: err.Error()}, nil
	}
	return nil, GetStatusOutput{Status: status}, nil
}

// TriggerCycleInput is the input for pulse_trigger_cycle
type TriggerCycleInput struct {
	CycleType string `json:"cycle_type,omitempty" jsonschema:"description=Optional label for the cycle (defaults to 'manual')"`
}

// TriggerCycleOutput is the output for pulse_trigger_cycle
type TriggerCycleOutput struct {
	Record *CycleRecord `json:"record,omitempty"`
	Error  string       `json:"error,omitempty"`
}

func handleTriggerCycle(ctx context.Context, req *mcp.CallToolRequest, input TriggerCycleInput) (*mcp.CallToolResult, TriggerCycleOutput, error) {
	record, err := opsClient().TriggerCycle(input.CycleType)
	if err != nil {
		return nil, TriggerCycleOutput{Error: err.Error()}, nil
	}
	return nil, TriggerCycleOutput{Record: record}, nil
}

// SetTestingModeInput is the input for pulse_set_testing_mode
type SetTestingModeInput struct {
	Enabled bool `json:"enabled" jsonschema:"description=true to lift cooldowns and caps globally"`
}

// SetTestingModeOutput is the output for pulse_set_testing_mode
type SetTestingModeOutput struct {
	Status *SchedulerStatus `json:"status,omitempty"`
	Error  string           `json:"error,omitempty"`
}

func handleSetTestingMode(ctx context.Context, req *mcp.CallToolRequest, input SetTestingModeInput) (*mcp.CallToolResult, SetTestingModeOutput, error) {
	status, err := opsClient().SetTestingMode(input.Enabled)
	if err != nil {
		return nil, SetTestingModeOutput{Error: err.Error()}, nil
	}
	return nil, SetTestingModeOutput{Status: status}, nil
}

// RecentCyclesInput is the input for pulse_recent_cycles
type RecentCyclesInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"description=Maximum number of records to return (default 10)"`
}

// RecentCyclesOutput is the output for pulse_recent_cycles
type RecentCyclesOutput struct {
	Cycles      []CycleRecord `json:"cycles,omitempty"`
	SuccessRate float64       `json:"success_rate"`
	Error       string        `json:"error,omitempty"`
}

func handleRecentCycles(ctx context.Context, req *mcp.CallToolRequest, input RecentCyclesInput) (*mcp.CallToolResult, RecentCyclesOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}
	cycles, rate, err := opsClient().RecentCycles(limit)
	if err != nil {
		return nil, RecentCyclesOutput{Error: err.Error()}, nil
	}
	return nil, RecentCyclesOutput{Cycles: cycles, SuccessRate: rate}, nil
}

// LastActionInput is the input for pulse_last_action
type LastActionInput struct {
	UserID string `json:"user_id" jsonschema:"description=The user id to inspect"`
}

// LastActionOutput is the output for pulse_last_action
type LastActionOutput struct {
	Action json.RawMessage `json:"action,omitempty"`
	Error  string          `json:"error,omitempty"`
}

func handleLastAction(ctx context.Context, req *mcp.CallToolRequest, input LastActionInput) (*mcp.CallToolResult, LastActionOutput, error) {
	action, err := opsClient().LastAction(input.UserID)
	if err != nil {
		return nil, LastActionOutput{Error: err.Error()}, nil
	}
	return nil, LastActionOutput{Action: action}, nil
}
