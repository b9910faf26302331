package nodes

import (
	"context"

	"github.com/nlquery/orchestrator/graph"
	"github.com/nlquery/orchestrator/internal/wfstate"
)

// CriticalFailure is the terminal failure path: it records that the run
// could not complete and ends the workflow.
type CriticalFailure struct{}

func (CriticalFailure) Run(ctx context.Context, s wfstate.State) graph.NodeResult[wfstate.State] {
	delta := wfstate.State{
		CriticalFailure:    true,
		WorkflowComplete:   true,
		ProgressPercentage: 100,
		ProgressMessage:    "Analysis failed",
	}
	if s.Error == "" {
		delta.Error = "workflow terminated after exhausting error recovery"
	}
	return graph.NodeResult[wfstate.State]{Delta: delta, Route: graph.Stop()}
}
