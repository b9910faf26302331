package workflow

import (
	"context"
	"fmt"

	"github.com/nlquery/orchestrator/graph"
	"github.com/nlquery/orchestrator/internal/extract"
	"github.com/nlquery/orchestrator/internal/memory"
	"github.com/nlquery/orchestrator/internal/wfstate"
)

// FinalResult is the wire contract spec.md §6 describes: the subset of
// final State a caller actually needs, with Success computed by
// extract.Meaningful rather than trusted from any single node.
type FinalResult struct {
	ConversationID   string
	SQLQuery         string
	QueryResult      []map[string]any
	EChartsConfig    map[string]any
	ChartData        []map[string]any
	Insights         []wfstate.Insight
	Recommendations  []wfstate.Recommendation
	Narration        string
	ExecutiveSummary string
	Success          bool
	Error            string
	Duplicate        bool
}

// Finalize extracts the canonical result from a completed run's final
// state, translating any raw error into the user-facing wording
// FriendlyError produces.
func Finalize(s wfstate.State) FinalResult {
	c := extract.FromState(s)
	r := FinalResult{
		ConversationID:   s.ConversationID,
		SQLQuery:         c.SQLQuery,
		QueryResult:      c.QueryResult,
		EChartsConfig:    c.EChartsConfig,
		ChartData:        c.ChartData,
		Insights:         c.Insights,
		Recommendations:  c.Recommendations,
		Narration:        c.Narration,
		ExecutiveSummary: c.ExecutiveSummary,
		Success:          c.Success,
	}
	if s.Error != "" {
		r.Error = FriendlyError(s.Error, s.Query)
	}
	return r
}

// Runner executes one conversational turn against a built graph.Engine,
// wrapping it with the conversation-memory load, dedup check, and turn
// persistence spec.md §4.11 and §6 describe. Nodes themselves never see
// the memory store.
type Runner struct {
	Engine  *graph.Engine[wfstate.State]
	Events  *StreamHub // set from workflow.Build's second return value to enable Stream
	Memory  memory.Store
	History int // number of prior turns to load into State.ConversationHistory; 0 means DefaultHistoryTurns
}

// DefaultHistoryTurns is how many prior turns are loaded when Runner.History
// is left at its zero value.
const DefaultHistoryTurns = 10

// Execute runs one turn: it loads recent history, checks for a duplicate
// submission within memory.DedupWindow, runs the graph, persists both
// sides of the new turn, and returns the finalized result.
func (r Runner) Execute(ctx context.Context, runID string, initial wfstate.State) (FinalResult, error) {
	if r.Memory != nil {
		dup, err := r.Memory.RecentlyAnswered(ctx, initial.ConversationID, initial.Query)
		if err != nil {
			return FinalResult{}, fmt.Errorf("workflow: checking dedup: %w", err)
		}
		if dup {
			return FinalResult{ConversationID: initial.ConversationID, Duplicate: true}, nil
		}

		n := r.History
		if n <= 0 {
			n = DefaultHistoryTurns
		}
		turns, err := r.Memory.LoadLastN(ctx, initial.ConversationID, n)
		if err != nil {
			return FinalResult{}, fmt.Errorf("workflow: loading history: %w", err)
		}
		initial.ConversationHistory = turns

		if err := r.Memory.SaveUser(ctx, initial.ConversationID, initial.Query); err != nil {
			return FinalResult{}, fmt.Errorf("workflow: saving user turn: %w", err)
		}
	}

	final, err := r.Engine.Run(ctx, runID, initial)
	if err != nil {
		return FinalResult{}, fmt.Errorf("workflow: running graph: %w", err)
	}

	result := Finalize(final)

	if r.Memory != nil {
		reply := result.Narration
		if reply == "" {
			reply = result.ExecutiveSummary
		}
		if reply == "" && result.Error != "" {
			reply = result.Error
		}
		if reply != "" {
			if err := r.Memory.SaveAI(ctx, initial.ConversationID, reply); err != nil {
				return result, fmt.Errorf("workflow: saving ai turn: %w", err)
			}
		}
	}

	return result, nil
}
