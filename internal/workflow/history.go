package workflow

import (
	"context"
	"time"

	"github.com/nlquery/orchestrator/graph"
	"github.com/nlquery/orchestrator/internal/wfstate"
)

// historyNode wraps a node so every run is recorded in State.NodeHistory,
// the per-node execution log spec.md §3/§4.1 requires the supervisor to
// maintain. Wrapping here, rather than in each node, keeps the bookkeeping
// in one place and guarantees no node can forget it.
type historyNode struct {
	id    string
	inner graph.Node[wfstate.State]
}

func (h historyNode) Run(ctx context.Context, s wfstate.State) graph.NodeResult[wfstate.State] {
	start := time.Now()
	result := h.inner.Run(ctx, s)

	outcome := "ok"
	if result.Err != nil || result.Delta.Error != "" {
		outcome = "error"
	}

	result.Delta.NodeHistory = []wfstate.NodeHistoryEntry{{
		Node:       h.id,
		StartedAt:  start,
		FinishedAt: time.Now(),
		Outcome:    outcome,
	}}
	return result
}
