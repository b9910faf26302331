package nodes

import (
	"context"
	"fmt"

	"github.com/nlquery/orchestrator/graph"
	"github.com/nlquery/orchestrator/internal/wfstate"
)

// ConversationalEnd closes out a turn that never reached SQL generation
// (no data source selected), ensuring a message is always present.
type ConversationalEnd struct{}

func (ConversationalEnd) Run(ctx context.Context, s wfstate.State) graph.NodeResult[wfstate.State] {
	delta := wfstate.State{}

	message := s.Message
	if message == "" && s.Narration == "" {
		message = fmt.Sprintf("I understand you're asking: %s. To perform data analysis, please select a data source first. I'm here to help coordinate the analysis once you do!", s.Query)
		delta.Message = message
		delta.Narration = message
	}
	if s.Analysis == "" {
		if message == "" {
			message = s.Narration
		}
		delta.Analysis = message
	}

	delta.ProgressPercentage = 100
	delta.ProgressMessage = "Conversational response complete"
	delta.WorkflowComplete = true
	return graph.NodeResult[wfstate.State]{Delta: delta, Route: graph.Stop()}
}
