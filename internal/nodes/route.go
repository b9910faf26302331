// Package nodes implements the workflow's graph.Node[wfstate.State]
// handlers. Routing between nodes is left to internal/workflow's Connect()
// edges, which read each node's decision back out of Delta.CurrentStage.
// Nodes that end a run (ConversationalEnd, CriticalFailure,
// DeepFileAnalysis, GenerateInsights, and UnifiedChartInsights on success)
// set Route to graph.Stop(); the others leave Route at its zero value.
package nodes

import (
	"context"
	"fmt"

	"github.com/nlquery/orchestrator/graph"
	"github.com/nlquery/orchestrator/internal/wfstate"
)

// Routing decisions, mirrored 1:1 from _route_condition's return values so
// internal/workflow's Connect() table reads exactly like the original
// add_conditional_edges mapping.
const (
	StageDeepFileAnalysis  = "routed_to_deep_file_analysis"
	StageConversational    = "conversational"
	StageNL2SQL            = "routed_to_nl2sql"
	StageError             = "error"
)

// Route is the entry node: it decides which of nl2sql, deep file
// analysis, or the conversational dead-end this turn takes, grounded on
// _route_condition in the original orchestrator.
type Route struct{}

func (Route) Run(ctx context.Context, s wfstate.State) graph.NodeResult[wfstate.State] {
	delta := wfstate.State{}

	if s.CriticalFailure || s.Error != "" {
		delta.CurrentStage = StageError
		return graph.NodeResult[wfstate.State]{Delta: delta}
	}

	if s.AnalysisMode == wfstate.ModeDeep {
		delta.CurrentStage = StageDeepFileAnalysis
		return graph.NodeResult[wfstate.State]{Delta: delta}
	}

	if s.DataSourceID == nil {
		msg := s.Message
		if msg == "" && s.Narration == "" {
			msg = fmt.Sprintf("I understand you're asking: %s. To perform data analysis, please select a data source first. I'm here to help coordinate the analysis once you do!", s.Query)
			delta.Message = msg
			delta.Narration = msg
			delta.Analysis = msg
		}
		delta.CurrentStage = StageConversational
		delta.ProgressPercentage = 100
		delta.ProgressMessage = "Conversational response generated"
		return graph.NodeResult[wfstate.State]{Delta: delta}
	}

	delta.CurrentStage = StageNL2SQL
	return graph.NodeResult[wfstate.State]{Delta: delta}
}
