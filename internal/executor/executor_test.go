package executor

import (
	"context"
	"testing"

	"github.com/nlquery/orchestrator/internal/cache"
)

func TestSelectEngine_SizeThresholds(t *testing.T) {
	e := New(nil, nil, nil)

	cases := []struct {
		name string
		req  Request
		want EngineTag
	}{
		{"small database goes direct sql", Request{DataSize: 100, Source: Descriptor{Kind: SourceDatabase}}, EngineDirectSQL},
		{"small file stays embedded", Request{DataSize: 100, Source: Descriptor{Kind: SourceFile}}, EngineEmbedded},
		{"mid aggregation heavy", Request{DataSize: 5_000_000, Source: Descriptor{Kind: SourceDatabase}, Shape: QueryShape{HasAggregations: true}}, EngineAggregation},
		{"mid non-aggregation stays embedded then overridden for db", Request{DataSize: 5_000_000, Source: Descriptor{Kind: SourceDatabase}}, EngineDirectSQL},
		{"huge goes big data", Request{DataSize: 500_000_000, Source: Descriptor{Kind: SourceDatabase}}, EngineBigData},
		{"file source never gets aggregation", Request{DataSize: 5_000_000, Source: Descriptor{Kind: SourceFile}, Shape: QueryShape{HasAggregations: true}}, EngineEmbedded},
		{"api source never gets direct sql", Request{DataSize: 100, Source: Descriptor{Kind: SourceAPI}}, EngineDataFrame},
		{"override wins outright", Request{DataSize: 100, Source: Descriptor{Kind: SourceFile}, EngineOverride: EngineBigData}, EngineBigData},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := e.selectEngine(tc.req); got != tc.want {
				t.Errorf("selectEngine() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestSample_NoSamplingUnderThreshold(t *testing.T) {
	rows := make([]map[string]any, 10)
	for i := range rows {
		rows[i] = map[string]any{"n": i}
	}
	r := Result{Data: rows, RowCount: 10}
	out := sample(r, DefaultSamplePolicy())
	if out.IsSampled {
		t.Fatal("expected no sampling under threshold")
	}
	if len(out.Data) != 10 {
		t.Fatalf("expected all rows kept, got %d", len(out.Data))
	}
}

func TestSample_HeadTailSplitPreservesRowCount(t *testing.T) {
	rows := make([]map[string]any, 2000)
	for i := range rows {
		rows[i] = map[string]any{"n": i}
	}
	r := Result{Data: rows, RowCount: 2000}
	policy := DefaultSamplePolicy()
	out := sample(r, policy)

	if !out.IsSampled {
		t.Fatal("expected sampling over threshold")
	}
	if len(out.Data) != policy.Head+policy.Tail {
		t.Fatalf("expected %d sampled rows, got %d", policy.Head+policy.Tail, len(out.Data))
	}
	if out.RowCount != 2000 {
		t.Fatalf("expected RowCount to remain the true count, got %d", out.RowCount)
	}
	first := out.Data[0]["n"].(int)
	last := out.Data[len(out.Data)-1]["n"].(int)
	if first != 0 || last != 1999 {
		t.Fatalf("expected head+tail rows, got first=%v last=%v", first, last)
	}
}

func TestExecute_EmbeddedEngineInlineSample(t *testing.T) {
	ex := New([]Engine{NewEmbedded()}, cache.NoopScoped[Result]{}, cache.NewLocalLRU[Result](8))

	req := Request{
		SQLText: "SELECT n FROM data WHERE n > 1 ORDER BY n",
		Source: Descriptor{
			ID:   "inline-1",
			Kind: SourceFile,
			InlineSample: []map[string]any{
				{"n": 1}, {"n": 2}, {"n": 3},
			},
		},
		DataSize: 3,
	}

	result := ex.Execute(context.Background(), req)
	if !result.Success {
		t.Fatalf("expected success, got error: %+v", result.Error)
	}
	if result.RowCount != 2 {
		t.Fatalf("expected 2 rows, got %d: %+v", result.RowCount, result.Data)
	}
	if result.EngineUsed != EngineEmbedded {
		t.Fatalf("expected embedded engine, got %s", result.EngineUsed)
	}
}

func TestExecute_CacheHitSecondCall(t *testing.T) {
	lru := cache.NewLocalLRU[Result](8)
	ex := New([]Engine{NewEmbedded()}, cache.NoopScoped[Result]{}, lru)

	req := Request{
		SQLText: "SELECT n FROM data",
		Source: Descriptor{
			ID:           "inline-2",
			Kind:         SourceFile,
			InlineSample: []map[string]any{{"n": 1}},
		},
	}

	first := ex.Execute(context.Background(), req)
	if first.Cached {
		t.Fatal("first call should not be a cache hit")
	}

	second := ex.Execute(context.Background(), req)
	if !second.Cached {
		t.Fatal("second identical call should be a cache hit")
	}
}
