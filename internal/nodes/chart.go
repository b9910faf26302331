package nodes

import (
	"context"

	"github.com/nlquery/orchestrator/graph"
	"github.com/nlquery/orchestrator/internal/llm"
	"github.com/nlquery/orchestrator/internal/wfstate"
)

// GenerateChart produces an ECharts config from the query result, used
// both as the unified path's fallback and the deep-file-analysis path.
type GenerateChart struct {
	Gen llm.Generator
}

func (g GenerateChart) Run(ctx context.Context, s wfstate.State) graph.NodeResult[wfstate.State] {
	delta := wfstate.State{}

	parsed, err := requestChart(ctx, g.Gen, s.Query, s.QueryResult)
	if err != nil {
		delta.Error = "generate_chart: " + err.Error()
		return graph.NodeResult[wfstate.State]{Delta: delta}
	}

	delta.EChartsConfig = parsed.EChartsConfig
	delta.ChartType = parsed.ChartType
	delta.ChartTitle = parsed.ChartTitle
	return graph.NodeResult[wfstate.State]{Delta: delta}
}
