package nodes

import (
	"context"

	"github.com/nlquery/orchestrator/graph"
	"github.com/nlquery/orchestrator/internal/llm"
	"github.com/nlquery/orchestrator/internal/wfstate"
)

// GenerateInsights produces business insights, recommendations, and an
// executive summary from the query result. It is the terminal node of
// both the unified-fallback and separate-generation paths.
type GenerateInsights struct {
	Gen llm.Generator
}

func (g GenerateInsights) Run(ctx context.Context, s wfstate.State) graph.NodeResult[wfstate.State] {
	delta := wfstate.State{}

	parsed, err := requestInsights(ctx, g.Gen, s.Query, s.QueryResult)
	if err != nil {
		delta.Error = "generate_insights: " + err.Error()
		delta.WorkflowComplete = true
		return graph.NodeResult[wfstate.State]{Delta: delta, Route: graph.Stop()}
	}

	delta.Insights = toInsights(parsed.Insights)
	delta.Recommendations = toRecommendations(parsed.Recommendations)
	delta.ExecutiveSummary = parsed.ExecutiveSummary
	delta.WorkflowComplete = true
	delta.ProgressPercentage = 100
	return graph.NodeResult[wfstate.State]{Delta: delta, Route: graph.Stop()}
}
