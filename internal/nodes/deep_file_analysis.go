package nodes

import (
	"context"

	"github.com/nlquery/orchestrator/graph"
	"github.com/nlquery/orchestrator/internal/datasource"
	"github.com/nlquery/orchestrator/internal/dialect"
	"github.com/nlquery/orchestrator/internal/executor"
	"github.com/nlquery/orchestrator/internal/llm"
	"github.com/nlquery/orchestrator/internal/nl2sql"
	"github.com/nlquery/orchestrator/internal/sqlguard"
	"github.com/nlquery/orchestrator/internal/wfstate"
)

// DeepFileAnalysis is the single-node shortcut taken when AnalysisMode is
// "deep": it runs generation, execution, charting, and insights in one
// pass and routes straight to the end, since the original system's deep
// file analysis path "already includes charts, insights, and
// recommendations" by the time it reaches its own END edge.
type DeepFileAnalysis struct {
	Gen     llm.Generator
	Sources datasource.Service
	Exec    *executor.Executor
}

func (d DeepFileAnalysis) Run(ctx context.Context, s wfstate.State) graph.NodeResult[wfstate.State] {
	delta := wfstate.State{WorkflowComplete: true, ProgressPercentage: 100}

	if s.DataSourceID == nil {
		delta.Error = "deep_file_analysis: no data source selected"
		return graph.NodeResult[wfstate.State]{Delta: delta, Route: graph.Stop()}
	}

	desc, err := d.Sources.GetByID(ctx, *s.DataSourceID)
	if err != nil {
		delta.Error = "deep_file_analysis: " + err.Error()
		return graph.NodeResult[wfstate.State]{Delta: delta, Route: graph.Stop()}
	}

	genResp := nl2sql.Generate(ctx, d.Gen, nl2sql.Request{
		Query:      s.Query,
		Schema:     sqlguard.Schema(desc.Schema),
		Adapter:    dialect.ForSubKind(desc.SubKind),
		SourceKind: string(desc.Kind),
	})
	if !genResp.Success {
		delta.Error = "deep_file_analysis: " + genResp.Error
		return graph.NodeResult[wfstate.State]{Delta: delta, Route: graph.Stop()}
	}
	delta.SQLQuery = &genResp.SQLQuery

	result := d.Exec.Execute(ctx, executor.Request{
		SQLText:   genResp.SQLQuery,
		Source:    desc,
		ReadOnly:  true,
		Shape:     executor.ShapeOf(genResp.SQLQuery),
		OrgID:     s.OrganizationID,
		ProjectID: s.ProjectID,
	})
	if !result.Success {
		if result.Error != nil {
			delta.Error = "deep_file_analysis: " + result.Error.Message
		}
		return graph.NodeResult[wfstate.State]{Delta: delta, Route: graph.Stop()}
	}
	delta.QueryResult = result.Data
	delta.QueryResultColumns = result.Columns
	delta.QueryResultRowCount = result.RowCount

	if chart, err := requestChart(ctx, d.Gen, s.Query, result.Data); err == nil {
		delta.EChartsConfig = chart.EChartsConfig
		delta.ChartType = chart.ChartType
		delta.ChartTitle = chart.ChartTitle
	}
	if insights, err := requestInsights(ctx, d.Gen, s.Query, result.Data); err == nil {
		delta.Insights = toInsights(insights.Insights)
		delta.Recommendations = toRecommendations(insights.Recommendations)
		delta.ExecutiveSummary = insights.ExecutiveSummary
	}

	return graph.NodeResult[wfstate.State]{Delta: delta, Route: graph.Stop()}
}
