package memory

import (
	"context"
	"testing"

	"github.com/nlquery/orchestrator/internal/wfstate"
)

func TestSQLiteStore_SaveAndLoadLastN(t *testing.T) {
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	if err := s.SaveUser(ctx, "c1", "how many orders last week"); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}
	if err := s.SaveAI(ctx, "c1", "there were 42 orders"); err != nil {
		t.Fatalf("SaveAI: %v", err)
	}
	if err := s.SaveUser(ctx, "c1", "and the week before"); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}

	turns, err := s.LoadLastN(ctx, "c1", 2)
	if err != nil {
		t.Fatalf("LoadLastN: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].Role != wfstate.RoleAssistant || turns[1].Role != wfstate.RoleUser {
		t.Fatalf("unexpected ordering/roles: %+v", turns)
	}
}

func TestSQLiteStore_LoadLastN_IsolatedByConversation(t *testing.T) {
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	s.SaveUser(ctx, "c1", "q1")
	s.SaveUser(ctx, "c2", "q2")

	turns, err := s.LoadLastN(ctx, "c1", 10)
	if err != nil {
		t.Fatalf("LoadLastN: %v", err)
	}
	if len(turns) != 1 || turns[0].Content != "q1" {
		t.Fatalf("expected only c1's turn, got %+v", turns)
	}
}

func TestRecentlyAnswered_DedupsWithinWindow(t *testing.T) {
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	dup, err := s.RecentlyAnswered(ctx, "c1", "how many orders")
	if err != nil {
		t.Fatalf("RecentlyAnswered: %v", err)
	}
	if dup {
		t.Fatal("expected first submission to not be a duplicate")
	}

	dup, err = s.RecentlyAnswered(ctx, "c1", "how many orders")
	if err != nil {
		t.Fatalf("RecentlyAnswered: %v", err)
	}
	if !dup {
		t.Fatal("expected immediate resubmission to be a duplicate")
	}

	dup, err = s.RecentlyAnswered(ctx, "c1", "a different question")
	if err != nil {
		t.Fatalf("RecentlyAnswered: %v", err)
	}
	if dup {
		t.Fatal("expected a different query to not be a duplicate")
	}
}
