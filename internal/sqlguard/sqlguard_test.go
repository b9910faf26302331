package sqlguard

import (
	"testing"

	"github.com/nlquery/orchestrator/internal/dialect"
)

func TestCheckReadOnly(t *testing.T) {
	if err := CheckReadOnly("SELECT * FROM data"); err != nil {
		t.Fatalf("unexpected error for safe SELECT: %v", err)
	}
	for _, sql := range []string{
		"DROP TABLE data",
		"select * from data; DELETE FROM data",
		"UPDATE data SET x=1",
		"INSERT INTO data VALUES (1)",
	} {
		if err := CheckReadOnly(sql); err == nil {
			t.Errorf("expected rejection for %q", sql)
		}
	}
}

func TestCheckSyntax(t *testing.T) {
	if err := CheckSyntax(`SELECT * FROM data WHERE x = 'a'`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := CheckSyntax(`SELECT * FROM data WHERE x = 'a`); err == nil {
		t.Fatal("expected unbalanced-quote error")
	}
	if err := CheckSyntax(`SELECT x, y`); err == nil {
		t.Fatal("expected missing-FROM error")
	}
	if err := CheckSyntax(`SELECT * FROM data WHERE x =`); err == nil {
		t.Fatal("expected truncation error")
	}
}

func TestCheckSchemaGrounding(t *testing.T) {
	schema := Schema{"data": {"Date", "Amount"}}
	if err := CheckSchemaGrounding(`SELECT * FROM data`, schema); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := CheckSchemaGrounding(`SELECT * FROM unknown_table`, schema); err == nil {
		t.Fatal("expected unknown table error")
	}
	// Empty schema skips grounding rather than failing.
	if err := CheckSchemaGrounding(`SELECT * FROM unknown_table`, Schema{}); err != nil {
		t.Fatalf("expected grounding to be skipped for empty schema, got %v", err)
	}
}

func TestInjectLimit(t *testing.T) {
	out := InjectLimit("SELECT * FROM data", 1000)
	want := "SELECT * FROM data LIMIT 1000"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}

	noop := InjectLimit("SELECT * FROM data LIMIT 10", 1000)
	if noop != "SELECT * FROM data LIMIT 10" {
		t.Fatalf("expected no change, got %q", noop)
	}

	countNoop := InjectLimit("SELECT COUNT(*) FROM data", 1000)
	if countNoop != "SELECT COUNT(*) FROM data" {
		t.Fatalf("expected no LIMIT on COUNT query, got %q", countNoop)
	}
}

func TestRewriteFileTable(t *testing.T) {
	f := dialect.NewFile()
	out := RewriteFileTable(`SELECT * FROM sales_table`, f, "data")
	want := `SELECT * FROM "data"`
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}
