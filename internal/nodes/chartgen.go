package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/nlquery/orchestrator/internal/extract"
	"github.com/nlquery/orchestrator/internal/llm"
	"github.com/nlquery/orchestrator/internal/wfstate"
)

// chartJSON is the model's expected chart-generation response shape.
type chartJSON struct {
	EChartsConfig map[string]any `json:"echarts_config"`
	ChartType     string         `json:"chart_type"`
	ChartTitle    string         `json:"chart_title"`
}

// insightsJSON is the model's expected insights-generation response shape.
// Insights is intentionally `[]any`: the model may return bare strings or
// partially-shaped objects, normalized downstream by extract.NormalizeRawInsight.
type insightsJSON struct {
	Insights         []any              `json:"insights"`
	Recommendations  []recommendationDTO `json:"recommendations"`
	ExecutiveSummary string             `json:"executive_summary"`
}

type recommendationDTO struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Priority    string  `json:"priority"`
	Effort      string  `json:"effort"`
	Impact      string  `json:"impact"`
	Confidence  float64 `json:"confidence"`
}

func sampleResultForPrompt(rows []map[string]any, limit int) string {
	if len(rows) > limit {
		rows = rows[:limit]
	}
	var b strings.Builder
	for i, row := range rows {
		fmt.Fprintf(&b, "%d: %v\n", i+1, row)
	}
	return b.String()
}

func requestChart(ctx context.Context, gen llm.Generator, query string, rows []map[string]any) (chartJSON, error) {
	out, err := gen.Generate(ctx, llm.Request{
		SystemContext: "You turn tabular query results into an Apache ECharts option object. Respond with JSON containing echarts_config, chart_type, and chart_title.",
		Prompt:        fmt.Sprintf("Question: %s\nData sample:\n%s", query, sampleResultForPrompt(rows, 50)),
		MaxTokens:     1024,
		Temperature:   0.3,
	})
	if err != nil || !out.Success {
		return chartJSON{}, fmt.Errorf("chart generation failed: %s", errOrAPI(err, out.Error))
	}
	var parsed chartJSON
	if err := extract.JSON(out.Content, &parsed); err != nil {
		return chartJSON{}, err
	}
	return parsed, nil
}

func requestInsights(ctx context.Context, gen llm.Generator, query string, rows []map[string]any) (insightsJSON, error) {
	out, err := gen.Generate(ctx, llm.Request{
		SystemContext: "You are a business analyst. Given a question and query results, produce actionable insights and recommendations as JSON with keys insights, recommendations, executive_summary.",
		Prompt:        fmt.Sprintf("Question: %s\nData sample:\n%s", query, sampleResultForPrompt(rows, 50)),
		MaxTokens:     1536,
		Temperature:   0.4,
	})
	if err != nil || !out.Success {
		return insightsJSON{}, fmt.Errorf("insights generation failed: %s", errOrAPI(err, out.Error))
	}
	var parsed insightsJSON
	if err := extract.JSON(out.Content, &parsed); err != nil {
		return insightsJSON{}, err
	}
	return parsed, nil
}

func errOrAPI(err error, apiErr string) string {
	if err != nil {
		return err.Error()
	}
	return apiErr
}

func toRecommendations(dtos []recommendationDTO) []wfstate.Recommendation {
	out := make([]wfstate.Recommendation, 0, len(dtos))
	for _, d := range dtos {
		impact := wfstate.Impact(d.Impact)
		if impact == "" {
			impact = wfstate.ImpactMedium
		}
		out = append(out, wfstate.Recommendation{
			Title:       d.Title,
			Description: d.Description,
			Priority:    d.Priority,
			Effort:      d.Effort,
			Impact:      impact,
			Confidence:  d.Confidence,
		})
	}
	return out
}

func toInsights(raw []any) []wfstate.Insight {
	out := make([]wfstate.Insight, 0, len(raw))
	for i, r := range raw {
		out = append(out, extract.NormalizeRawInsight(r, i))
	}
	return out
}
