package dialect

import "testing"

func TestFile_RewriteDateTrunc(t *testing.T) {
	f := NewFile()
	in := `SELECT DATE_TRUNC('month', "Date") AS m, SUM("Amount") FROM data GROUP BY m`
	out := f.Rewrite(in)
	want := `SELECT date_trunc('month', "Date") AS m, SUM("Amount") FROM data GROUP BY m`
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestFile_RewriteSubstringSimple(t *testing.T) {
	f := NewFile()
	in := `SELECT SUBSTRING("Email" FROM 5) FROM data`
	out := f.Rewrite(in)
	want := `SELECT SUBSTRING("Email", 5) FROM data`
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestDetectFileReferences(t *testing.T) {
	sql := `SELECT * FROM file_1765031881 a JOIN "file_1765033843" b ON a.id = b.id`
	refs := DetectFileReferences(sql)
	if len(refs) != 2 {
		t.Fatalf("expected 2 file references, got %v", refs)
	}
}

func TestClickHouse_GroupByAliasRewrite(t *testing.T) {
	c := NewClickHouse()
	in := "SELECT toMonth(dt) AS m, count() FROM aiser.events GROUP BY m"
	out := c.Rewrite(in)
	want := "SELECT toMonth(dt) AS m, count() FROM aiser.events GROUP BY toMonth(dt)"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestClickHouse_LagToNeighborShim(t *testing.T) {
	c := NewClickHouse()
	in := "SELECT x, lag(x) OVER (ORDER BY ts) FROM aiser.s"
	out := c.Rewrite(in)
	want := "SELECT x, neighbor(x, -1) OVER (ORDER BY ts) FROM aiser.s"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestClickHouse_NoRewriteWhenNoAlias(t *testing.T) {
	c := NewClickHouse()
	in := "SELECT toMonth(dt), count() FROM aiser.events GROUP BY toMonth(dt)"
	out := c.Rewrite(in)
	if out != in {
		t.Fatalf("expected no rewrite, got %q", out)
	}
}

func TestForSubKind(t *testing.T) {
	cases := map[string]string{
		"clickhouse": "clickhouse",
		"postgres":   "postgres",
		"mysql":      "mysql",
		"csv":        "file",
		"":           "file",
	}
	for subKind, want := range cases {
		if got := ForSubKind(subKind).Name(); got != want {
			t.Errorf("ForSubKind(%q).Name() = %q, want %q", subKind, got, want)
		}
	}
}
