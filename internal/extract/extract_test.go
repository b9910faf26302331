package extract

import (
	"testing"

	"github.com/nlquery/orchestrator/internal/wfstate"
)

func TestJSON_StripsCodeFenceAndLocatesObject(t *testing.T) {
	text := "Here is the result:\n```json\n{\"sql_query\": \"SELECT 1\", \"confidence\": 0.9}\n```\nThanks."
	var out struct {
		SQLQuery   string  `json:"sql_query"`
		Confidence float64 `json:"confidence"`
	}
	if err := JSON(text, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.SQLQuery != "SELECT 1" || out.Confidence != 0.9 {
		t.Fatalf("unexpected decode: %+v", out)
	}
}

func TestJSON_HandlesNestedBraces(t *testing.T) {
	text := `prefix {"a": {"b": 1}, "c": "}"} suffix`
	var out map[string]any
	if err := JSON(text, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestJSON_NoObjectFound(t *testing.T) {
	if err := JSON("no json here", &struct{}{}); err == nil {
		t.Fatal("expected error when no JSON object present")
	}
}

func TestMeaningful_ORLogic(t *testing.T) {
	cases := []struct {
		name string
		c    Canonical
		want bool
	}{
		{"sql only", Canonical{SQLQuery: "SELECT 1"}, true},
		{"rows only", Canonical{QueryResult: []map[string]any{{"a": 1}}}, true},
		{"chart only", Canonical{EChartsConfig: map[string]any{"title": "x"}}, true},
		{"insights only", Canonical{Insights: []wfstate.Insight{{Title: "x"}}}, true},
		{"long narration", Canonical{Narration: pad("x", 60)}, true},
		{"short narration", Canonical{Narration: "too short"}, false},
		{"nothing", Canonical{}, false},
	}
	for _, tc := range cases {
		if got := Meaningful(tc.c); got != tc.want {
			t.Errorf("%s: Meaningful() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func pad(s string, n int) string {
	out := ""
	for len(out) < n {
		out += s
	}
	return out
}

func TestNormalizeRawInsight_BareString(t *testing.T) {
	ins := NormalizeRawInsight("sales grew 20%", 0)
	if ins.Type != "general" || ins.Title != "Insight 1" || ins.Description != "sales grew 20%" {
		t.Fatalf("unexpected normalization: %+v", ins)
	}
	if ins.Confidence != 0.7 || ins.Impact != wfstate.ImpactMedium {
		t.Fatalf("unexpected defaults: %+v", ins)
	}
}

func TestFromState_SuccessReflectsMeaningful(t *testing.T) {
	s := wfstate.New("c", "u", "o", "p", "q", nil, wfstate.ModeStandard)
	c := FromState(s)
	if c.Success {
		t.Fatal("expected empty state to be non-meaningful")
	}

	sql := "SELECT 1"
	s.SQLQuery = &sql
	c2 := FromState(s)
	if !c2.Success {
		t.Fatal("expected state with sql_query to be meaningful")
	}
}
