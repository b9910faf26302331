// Package wfstate defines the workflow state record threaded through every
// node of the orchestrator graph, and the reducer that merges node deltas
// into it.
package wfstate

import "time"

// StateVersion is the only state_version this build understands. A loaded
// state carrying any other value is rejected before the graph runs.
const StateVersion = "v1"

// AnalysisMode selects the routing branch taken after route_query.
type AnalysisMode string

const (
	ModeStandard AnalysisMode = "standard"
	ModeDeep     AnalysisMode = "deep"
)

// Role identifies the speaker of a conversation history turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Impact is the coarse severity/value scale used by insights and
// recommendations.
type Impact string

const (
	ImpactLow    Impact = "low"
	ImpactMedium Impact = "medium"
	ImpactHigh   Impact = "high"
)

// Turn is one entry of the conversation history.
type Turn struct {
	Role    Role
	Content string
}

// Insight is a single analytical observation surfaced to the user.
type Insight struct {
	Type        string
	Title       string
	Description string
	Confidence  float64 // [0,1]
	Impact      Impact
}

// Recommendation is a single suggested action.
type Recommendation struct {
	Title       string
	Description string
	Priority    string
	Effort      string
	Impact      Impact
	Confidence  float64
}

// NodeHistoryEntry records one node's execution window and outcome. Entries
// are append-only; the reducer never removes or rewrites one.
type NodeHistoryEntry struct {
	Node       string
	StartedAt  time.Time
	FinishedAt time.Time
	Outcome    string
}

// ExecutionError is a structured record of a failure encountered while
// executing SQL against an engine.
type ExecutionError struct {
	Kind    string
	Message string
}

func (e *ExecutionError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// State is the single record threaded through every node. Every field has
// an explicit absence encoding: pointer types where zero value and absence
// are semantically distinct, plain value types where zero value already
// means absent.
type State struct {
	// identity
	StateVersion    string
	ConversationID  string
	UserID          string
	OrganizationID  string
	ProjectID       string

	// input
	Query        string
	DataSourceID *string
	AnalysisMode AnalysisMode

	// SQL stage
	SQLQuery            *string
	QueryExecutionError *ExecutionError

	// result stage
	QueryResult         []map[string]any
	QueryResultColumns  []string
	QueryResultRowCount int

	// chart stage
	EChartsConfig map[string]any
	ChartType     string
	ChartTitle    string

	// insights stage
	Insights          []Insight
	Recommendations   []Recommendation
	ExecutiveSummary  string

	// conversational branch output
	Message   string
	Narration string
	Analysis  string

	// control
	CurrentStage            string
	RetryCount              int
	ErrorRecoveryCount      int
	QueryExecutionRetryCount int
	NodeHistory             []NodeHistoryEntry
	CriticalFailure         bool
	WorkflowComplete        bool

	// progress
	ProgressPercentage float64
	ProgressMessage    string
	Error              string

	// memory
	ConversationHistory []Turn

	// metadata
	ExecutionMetadata map[string]any
}

// New returns a State with StateVersion, ExecutionMetadata, and the counters
// initialized, ready to be threaded into the graph's start node.
func New(conversationID, userID, orgID, projectID, query string, dataSourceID *string, mode AnalysisMode) State {
	if mode == "" {
		mode = ModeStandard
	}
	return State{
		StateVersion:      StateVersion,
		ConversationID:    conversationID,
		UserID:            userID,
		OrganizationID:    orgID,
		ProjectID:         projectID,
		Query:             query,
		DataSourceID:      dataSourceID,
		AnalysisMode:      mode,
		ExecutionMetadata: map[string]any{},
	}
}

