// Package sqlguard implements the static and schema-aware checks the
// validate_sql node runs before any SQL reaches an engine: read-only
// enforcement, syntax sanity, schema grounding, file-table rewriting, and
// dialect-appropriate LIMIT injection.
package sqlguard

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nlquery/orchestrator/internal/dialect"
)

// dangerousKeywords mirrors multi_engine_query_service.py's blocklist:
// an occurrence anywhere in the uppercased text rejects the query outright.
var dangerousKeywords = []string{
	"DROP", "DELETE", "UPDATE", "INSERT", "ALTER", "CREATE", "TRUNCATE", "GRANT", "REVOKE",
}

// Schema maps table name (lower-cased) to its declared column names.
type Schema map[string][]string

// Result is the outcome of validating one SQL statement.
type Result struct {
	SQL       string
	Rewritten bool
	Err       error
}

// CheckReadOnly rejects any SQL whose uppercased form contains one of the
// DDL/DML verbs in dangerousKeywords, wherever it appears. It is intentionally a substring check against the
// uppercased text, matching the teacher source's own blocklist semantics
// rather than a full parser.
func CheckReadOnly(sql string) error {
	upper := strings.ToUpper(sql)
	for _, kw := range dangerousKeywords {
		if strings.Contains(upper, kw) {
			return fmt.Errorf("sqlguard: query contains disallowed keyword %s", kw)
		}
	}
	return nil
}

// CheckSyntax runs the cheap structural sanity checks spec.md §4.3/§4.4
// name: balanced quotes and parentheses, a FROM clause when SELECT is
// present, and no sign of truncation.
func CheckSyntax(sql string) error {
	trimmed := strings.TrimSpace(sql)
	if trimmed == "" {
		return fmt.Errorf("sqlguard: empty SQL")
	}

	if !balanced(trimmed, '\'') {
		return fmt.Errorf("sqlguard: unbalanced single quotes")
	}
	if !balancedDouble(trimmed) {
		return fmt.Errorf("sqlguard: unbalanced double quotes")
	}
	if depth := parenDepth(trimmed); depth != 0 {
		return fmt.Errorf("sqlguard: unbalanced parentheses")
	}

	upper := strings.ToUpper(trimmed)
	if strings.HasPrefix(upper, "SELECT") && !strings.Contains(upper, "FROM") {
		return fmt.Errorf("sqlguard: SELECT statement missing FROM clause")
	}

	if looksTruncated(trimmed) {
		return fmt.Errorf("sqlguard: SQL appears truncated")
	}

	return nil
}

func balanced(s string, quote byte) bool {
	count := 0
	for i := 0; i < len(s); i++ {
		if s[i] == quote {
			count++
		}
	}
	return count%2 == 0
}

func balancedDouble(s string) bool {
	return balanced(s, '"')
}

func parenDepth(s string) int {
	depth := 0
	for _, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth < 0 {
			return depth
		}
	}
	return depth
}

var trailingOperatorRe = regexp.MustCompile(`(?i)(,|AND|OR|WHERE|=|<|>|\+|-)\s*$`)

func looksTruncated(sql string) bool {
	return trailingOperatorRe.MatchString(strings.TrimRight(sql, "; \t\n"))
}

var tableRefRe = regexp.MustCompile(`(?i)\bFROM\s+([A-Za-z0-9_."` + "`" + `]+)|\bJOIN\s+([A-Za-z0-9_."` + "`" + `]+)`)

// CheckSchemaGrounding verifies every referenced table exists in the
// declared schema, case-insensitively, matching either the qualified or
// unqualified form. An empty schema SKIPS grounding (not a failure) so the
// underlying engine can report its own, more precise error.
func CheckSchemaGrounding(sql string, schema Schema) error {
	if len(schema) == 0 {
		return nil
	}

	for _, m := range tableRefRe.FindAllStringSubmatch(sql, -1) {
		ref := firstNonEmpty(m[1], m[2])
		if ref == "" {
			continue
		}
		name := unqualify(stripQuotes(ref))
		if _, ok := schema[strings.ToLower(name)]; !ok {
			return fmt.Errorf("sqlguard: table %q not found in declared schema", name)
		}
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func stripQuotes(s string) string {
	return strings.NewReplacer(`"`, "", "`", "", "'", "").Replace(s)
}

func unqualify(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}

// RewriteFileTable replaces any unrecognized table reference with the
// canonical file table name for a file-source query, quoting it per the
// adapter's identifier rule. It is a no-op when canonicalTable is empty.
func RewriteFileTable(sql string, adapter dialect.Adapter, canonicalTable string) string {
	if canonicalTable == "" {
		return sql
	}
	return tableRefRe.ReplaceAllStringFunc(sql, func(match string) string {
		parts := tableRefRe.FindStringSubmatch(match)
		ref := firstNonEmpty(parts[1], parts[2])
		if ref == "" {
			return match
		}
		kw := match[:len(match)-len(ref)]
		return kw + adapter.QuoteIdent(canonicalTable)
	})
}

var (
	limitRe = regexp.MustCompile(`(?i)\bLIMIT\s+\d+`)
	countRe = regexp.MustCompile(`(?i)\bCOUNT\s*\(`)
)

// InjectLimit appends a dialect-appropriate LIMIT clause when neither LIMIT
// nor an aggregate COUNT(...) is present, defaulting to 1000 rows.
func InjectLimit(sql string, defaultLimit int) string {
	if defaultLimit <= 0 {
		defaultLimit = 1000
	}
	if limitRe.MatchString(sql) || countRe.MatchString(sql) {
		return sql
	}
	trimmed := strings.TrimRight(strings.TrimSpace(sql), ";")
	return fmt.Sprintf("%s LIMIT %d", trimmed, defaultLimit)
}
