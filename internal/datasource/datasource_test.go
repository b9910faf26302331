package datasource

import (
	"context"
	"testing"

	"github.com/nlquery/orchestrator/internal/executor"
)

func TestStaticService_RegisterAndLookup(t *testing.T) {
	s := NewStaticService()
	s.Register(executor.Descriptor{
		ID:     "src1",
		Kind:   executor.SourceFile,
		Schema: map[string][]string{"data": {"id", "amount"}},
	})

	ctx := context.Background()
	d, err := s.GetByID(ctx, "src1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if d.Kind != executor.SourceFile {
		t.Fatalf("unexpected kind: %v", d.Kind)
	}

	schema, err := s.GetSchema(ctx, "src1")
	if err != nil {
		t.Fatalf("GetSchema: %v", err)
	}
	if len(schema["data"]) != 2 {
		t.Fatalf("unexpected schema: %+v", schema)
	}
}

func TestStaticService_UnknownID(t *testing.T) {
	s := NewStaticService()
	if _, err := s.GetByID(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for unknown source id")
	}
}
