package wfstate

import "testing"

func strPtr(s string) *string { return &s }

func TestReduce_ReplacesNonZeroFields(t *testing.T) {
	prev := New("c1", "u1", "o1", "p1", "hello", nil, ModeStandard)

	delta := State{SQLQuery: strPtr("SELECT 1"), CurrentStage: "routed_to_nl2sql"}
	next := Reduce(prev, delta)

	if next.SQLQuery == nil || *next.SQLQuery != "SELECT 1" {
		t.Fatalf("expected SQLQuery to be set, got %v", next.SQLQuery)
	}
	if next.CurrentStage != "routed_to_nl2sql" {
		t.Fatalf("expected current_stage routed_to_nl2sql, got %q", next.CurrentStage)
	}
	if next.Query != "hello" {
		t.Fatalf("expected Query to be preserved, got %q", next.Query)
	}
}

func TestReduce_NodeHistoryAppendsOnly(t *testing.T) {
	prev := New("c1", "u1", "o1", "p1", "hello", nil, ModeStandard)
	prev.NodeHistory = []NodeHistoryEntry{{Node: "route_query", Outcome: "ok"}}

	delta := State{NodeHistory: []NodeHistoryEntry{{Node: "nl2sql", Outcome: "ok"}}}
	next := Reduce(prev, delta)

	if len(next.NodeHistory) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(next.NodeHistory))
	}
	if next.NodeHistory[0].Node != "route_query" || next.NodeHistory[1].Node != "nl2sql" {
		t.Fatalf("unexpected history order: %+v", next.NodeHistory)
	}
}

func TestReduce_CriticalFailureFreezesCounters(t *testing.T) {
	prev := New("c1", "u1", "o1", "p1", "hello", nil, ModeStandard)
	prev.CriticalFailure = true
	prev.RetryCount = 1

	delta := State{RetryCount: 2}
	next := Reduce(prev, delta)

	if next.RetryCount != 1 {
		t.Fatalf("expected RetryCount to stay frozen at 1, got %d", next.RetryCount)
	}
}

func TestReduce_ProgressNeverDecreasesOutsideErrorRecovery(t *testing.T) {
	prev := New("c1", "u1", "o1", "p1", "hello", nil, ModeStandard)
	prev.ProgressPercentage = 60

	delta := State{ProgressPercentage: 30, CurrentStage: "execute_query"}
	next := Reduce(prev, delta)
	if next.ProgressPercentage != 60 {
		t.Fatalf("expected progress to stay at 60, got %v", next.ProgressPercentage)
	}

	delta2 := State{ProgressPercentage: 30, CurrentStage: "error_recovery"}
	next2 := Reduce(prev, delta2)
	if next2.ProgressPercentage != 30 {
		t.Fatalf("expected progress to drop to 30 during error_recovery, got %v", next2.ProgressPercentage)
	}
}

func TestValidate_RejectsUnknownStateVersion(t *testing.T) {
	s := New("c1", "u1", "o1", "p1", "hello", nil, ModeStandard)
	s.StateVersion = "v99"

	err := Validate(s)
	if err == nil {
		t.Fatal("expected error for unknown state_version")
	}
}

func TestValidate_ColumnsMustMatchFirstRow(t *testing.T) {
	s := New("c1", "u1", "o1", "p1", "hello", nil, ModeStandard)
	s.QueryResult = []map[string]any{{"month": "2024-01", "total": 10.0}}
	s.QueryResultColumns = []string{"month", "total"}
	s.QueryResultRowCount = 1

	if err := Validate(s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s.QueryResultColumns = []string{"month"}
	if err := Validate(s); err == nil {
		t.Fatal("expected error for mismatched columns")
	}
}

func TestCounterExceeded(t *testing.T) {
	s := New("c1", "u1", "o1", "p1", "hello", nil, ModeStandard)
	if CounterExceeded(s) {
		t.Fatal("fresh state should not exceed counters")
	}
	s.ErrorRecoveryCount = 2
	if !CounterExceeded(s) {
		t.Fatal("expected ErrorRecoveryCount=2 to exceed cap")
	}
}
