package nodes

import (
	"context"

	"github.com/nlquery/orchestrator/graph"
	"github.com/nlquery/orchestrator/internal/llm"
	"github.com/nlquery/orchestrator/internal/wfstate"
)

// Stage values for the edge following UnifiedChartInsights, mirrored from
// _unified_fallback_condition's four return strings.
const (
	StageSuccess          = "success"
	StageFallbackChart    = "fallback_chart"
	StageFallbackInsights = "fallback_insights"
)

// UnifiedChartInsights attempts chart and insight generation in one model
// call; _unified_fallback_condition (reimplemented in internal/workflow's
// Connect table) decides whether either half needs a separate retry.
type UnifiedChartInsights struct {
	Gen llm.Generator
}

func (u UnifiedChartInsights) Run(ctx context.Context, s wfstate.State) graph.NodeResult[wfstate.State] {
	delta := wfstate.State{}

	if s.CriticalFailure {
		delta.CurrentStage = StageError
		return graph.NodeResult[wfstate.State]{Delta: delta}
	}

	chart, chartErr := requestChart(ctx, u.Gen, s.Query, s.QueryResult)
	insights, insightsErr := requestInsights(ctx, u.Gen, s.Query, s.QueryResult)

	hasChart := chartErr == nil && len(chart.EChartsConfig) > 0
	hasInsights := insightsErr == nil && (len(insights.Insights) > 0 || len(insights.Recommendations) > 0 || insights.ExecutiveSummary != "")

	if hasChart {
		delta.EChartsConfig = chart.EChartsConfig
		delta.ChartType = chart.ChartType
		delta.ChartTitle = chart.ChartTitle
	}
	if hasInsights {
		delta.Insights = toInsights(insights.Insights)
		delta.Recommendations = toRecommendations(insights.Recommendations)
		delta.ExecutiveSummary = insights.ExecutiveSummary
	}

	switch {
	case hasChart && hasInsights:
		delta.CurrentStage = StageSuccess
		delta.WorkflowComplete = true
		delta.ProgressPercentage = 100
		// Success terminates the workflow directly: there is no real node
		// named "END" for a Connect() edge to target, so the node sets
		// Route itself here, matching add_conditional_edges' "success": END.
		return graph.NodeResult[wfstate.State]{Delta: delta, Route: graph.Stop()}
	case hasChart && !hasInsights:
		delta.CurrentStage = StageFallbackInsights
	case !hasChart && hasInsights:
		delta.CurrentStage = StageFallbackChart
	default:
		delta.CurrentStage = StageError
	}

	return graph.NodeResult[wfstate.State]{Delta: delta}
}
