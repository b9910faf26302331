package workflow

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/nlquery/orchestrator/graph/model"
	"github.com/nlquery/orchestrator/internal/cache"
	"github.com/nlquery/orchestrator/internal/datasource"
	"github.com/nlquery/orchestrator/internal/executor"
	"github.com/nlquery/orchestrator/internal/llm"
	"github.com/nlquery/orchestrator/internal/wfstate"
)

func newTestExecutor() *executor.Executor {
	return executor.New([]executor.Engine{executor.NewEmbedded()}, cache.NoopScoped[executor.Result]{}, cache.NewLocalLRU[executor.Result](8))
}

func newTestSources() *datasource.StaticService {
	svc := datasource.NewStaticService()
	svc.Register(executor.Descriptor{
		ID:   "ds-1",
		Kind: executor.SourceFile,
		Schema: map[string][]string{
			"data": {"month", "total"},
		},
		InlineSample: []map[string]any{
			{"month": "2024-01", "total": 100.0},
			{"month": "2024-02", "total": 150.0},
		},
	})
	return svc
}

func TestExecute_ConversationalBranchWhenNoDataSource(t *testing.T) {
	gen := llm.NewChatModelGenerator(&model.MockChatModel{})
	eng, hub, err := Build(Deps{Gen: gen, Sources: newTestSources(), Exec: newTestExecutor()}, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	r := Runner{Engine: eng, Events: hub}
	initial := wfstate.New("c1", "u1", "o1", "p1", "how's business going?", nil, wfstate.ModeStandard)

	result, err := r.Execute(context.Background(), "run-1", initial)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Narration == "" {
		t.Fatal("expected a conversational narration")
	}
	if result.Error != "" {
		t.Fatalf("unexpected error: %q", result.Error)
	}
}

func TestExecute_StandardPathRunsSQLThroughUnified(t *testing.T) {
	sqlResp, _ := json.Marshal(map[string]string{"sql_query": "SELECT month, total FROM data"})
	chartResp, _ := json.Marshal(map[string]any{
		"echarts_config": map[string]any{"type": "line"},
		"chart_type":     "line",
		"chart_title":    "Monthly totals",
	})
	insightsResp, _ := json.Marshal(map[string]any{
		"insights":         []any{"Totals are rising month over month."},
		"recommendations":  []any{},
		"executive_summary": "Revenue trended upward across the two observed months, which is a healthy signal worth monitoring going forward.",
	})

	gen := llm.NewChatModelGenerator(&model.MockChatModel{
		Responses: []model.ChatOut{
			{Text: string(sqlResp)},
			{Text: string(chartResp)},
			{Text: string(insightsResp)},
		},
	})

	eng, hub, err := Build(Deps{Gen: gen, Sources: newTestSources(), Exec: newTestExecutor()}, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	r := Runner{Engine: eng, Events: hub}
	dsID := "ds-1"
	initial := wfstate.New("c2", "u1", "o1", "p1", "show me monthly totals", &dsID, wfstate.ModeStandard)

	result, err := r.Execute(context.Background(), "run-2", initial)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected a meaningful result, got %+v", result)
	}
	if result.SQLQuery == "" {
		t.Fatal("expected SQLQuery to be populated")
	}
}

func TestStream_StandardPathYieldsProgressThenOneComplete(t *testing.T) {
	sqlResp, _ := json.Marshal(map[string]string{"sql_query": "SELECT month, total FROM data"})
	chartResp, _ := json.Marshal(map[string]any{
		"echarts_config": map[string]any{"type": "line"},
		"chart_type":     "line",
		"chart_title":    "Monthly totals",
	})
	insightsResp, _ := json.Marshal(map[string]any{
		"insights":          []any{"Totals are rising month over month."},
		"recommendations":   []any{},
		"executive_summary": "Revenue trended upward across the two observed months, which is a healthy signal worth monitoring going forward.",
	})

	gen := llm.NewChatModelGenerator(&model.MockChatModel{
		Responses: []model.ChatOut{
			{Text: string(sqlResp)},
			{Text: string(chartResp)},
			{Text: string(insightsResp)},
		},
	})

	eng, hub, err := Build(Deps{Gen: gen, Sources: newTestSources(), Exec: newTestExecutor()}, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	r := Runner{Engine: eng, Events: hub}
	dsID := "ds-1"
	initial := wfstate.New("c3", "u1", "o1", "p1", "show me monthly totals", &dsID, wfstate.ModeStandard)

	events, err := r.Stream(context.Background(), "run-3", initial)
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}

	var saw []StreamEvent
	for ev := range events {
		saw = append(saw, ev)
	}

	if len(saw) == 0 {
		t.Fatal("expected at least one streamed event")
	}
	terminal := saw[len(saw)-1]
	if terminal.Type != "complete" {
		t.Fatalf("expected the final event to be type complete, got %q", terminal.Type)
	}
	if terminal.Result == nil || !terminal.Result.Success {
		t.Fatalf("expected a successful final result, got %+v", terminal.Result)
	}
	for _, ev := range saw[:len(saw)-1] {
		if ev.Type == "complete" || ev.Type == "error" {
			t.Fatalf("terminal event type %q seen before the end of the stream", ev.Type)
		}
	}
}

func TestFriendlyError_TranslatesSQLGenerationFailure(t *testing.T) {
	got := FriendlyError("SQL generation failed: table not found", "top products")
	if got == "" || got == "SQL generation failed: table not found" {
		t.Fatalf("expected a translated message, got %q", got)
	}
}

func TestFriendlyError_PassesThroughAlreadyFriendlyMessage(t *testing.T) {
	msg := "Please select a data source to continue."
	if got := FriendlyError(msg, "q"); got != msg {
		t.Fatalf("expected passthrough, got %q", got)
	}
}
