package dialect

import (
	"fmt"
	"regexp"
)

// defaultTable is the canonical table name the embedded engine loads a
// single file's rows into.
const defaultTable = "data"

var (
	dateTruncRe = regexp.MustCompile(`(?i)DATE_TRUNC\s*\(`)

	// SUBSTRING(col FROM "pattern") + offset) style, e.g.
	// SUBSTRING("Email" FROM "@"(POSITION...)) — matches the teacher's
	// two-step rewrite: a "complex" form carrying a nested call, and a
	// simple numeric-offset form.
	substringComplexRe = regexp.MustCompile(`(?i)SUBSTRING\s*\(([^,]+?)\s+FROM\s+(".*?"\(.*?\))\s*\)`)
	substringSimpleRe  = regexp.MustCompile(`(?i)SUBSTRING\s*\(([^,]+?)\s+FROM\s+(\d+)\s*\)`)

	fileRefRe = regexp.MustCompile(`(?i)(?:["'` + "`" + `]?)?(file_\d+)(?:["'` + "`" + `]?)?`)
)

// File is the dialect adapter for the embedded analytic engine (in-process
// columnar SQL over registered files), grounded on
// multi_engine_query_service.py's DuckDBEngine rewrite block.
type File struct{}

// NewFile constructs the embedded-engine dialect adapter.
func NewFile() *File { return &File{} }

func (*File) Name() string { return "file" }

// Rewrite translates warehouse-flavored SQL into the embedded engine's
// accepted syntax: DATE_TRUNC -> date_trunc, and ClickHouse-style
// SUBSTRING(col FROM pattern [+ offset]) -> SUBSTRING(col, POSITION(pattern
// IN col) [+ offset]).
func (*File) Rewrite(sql string) string {
	out := dateTruncRe.ReplaceAllString(sql, "date_trunc(")

	if substringComplexRe.MatchString(out) {
		out = substringComplexRe.ReplaceAllString(out, `SUBSTRING($1, POSITION($2)`)
	}
	if substringSimpleRe.MatchString(out) {
		out = substringSimpleRe.ReplaceAllString(out, `SUBSTRING($1, $2)`)
	}
	return out
}

func (*File) QuoteIdent(name string) string {
	return fmt.Sprintf("%q", name)
}

// TableRef returns the per-file view alias when fileID is non-empty,
// otherwise the canonical "data" table used for single-file loads.
func (*File) TableRef(fileID string) string {
	if fileID == "" {
		return defaultTable
	}
	return fileID
}

// DetectFileReferences finds every file_<digits>-shaped table reference in
// a query, deduplicated and lower-cased, so the embedded engine knows which
// per-file views to register before a multi-file join executes.
func DetectFileReferences(sql string) []string {
	matches := fileRefRe.FindAllStringSubmatch(sql, -1)
	seen := map[string]bool{}
	var out []string
	for _, m := range matches {
		id := toLower(m[1])
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
