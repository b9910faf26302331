package cache

import (
	"context"
	"testing"
	"time"
)

func TestContentKey_DeterministicAndDistinct(t *testing.T) {
	a := ContentKey("org1", "proj1", "src1", "embedded_analytic", "", "SELECT 1")
	b := ContentKey("org1", "proj1", "src1", "embedded_analytic", "", "SELECT 1")
	if a != b {
		t.Fatal("expected identical inputs to produce identical keys")
	}

	c := ContentKey("org1", "proj1", "src1", "embedded_analytic", "", "SELECT 2")
	if a == c {
		t.Fatal("expected different SQL text to produce a different key")
	}

	d := ContentKey("org2", "proj1", "src1", "embedded_analytic", "", "SELECT 1")
	if a == d {
		t.Fatal("expected different org scope to produce a different key")
	}
}

func TestLocalLRU_RoundTrip(t *testing.T) {
	l := NewLocalLRU[string](2)
	if _, ok := l.Get("missing"); ok {
		t.Fatal("expected miss on empty cache")
	}

	l.Add("a", "value-a")
	if v, ok := l.Get("a"); !ok || v != "value-a" {
		t.Fatalf("expected hit with value-a, got %q ok=%v", v, ok)
	}
}

func TestNoopScoped_AlwaysMisses(t *testing.T) {
	var s NoopScoped[int]
	s.Set(context.Background(), "k", 42, time.Minute)
	if _, ok := s.Get(context.Background(), "k"); ok {
		t.Fatal("expected NoopScoped to never report a hit")
	}
}
