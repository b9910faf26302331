// Package dialect holds per-engine SQL rewrite adapters. Each adapter
// translates generated or validated SQL into the concrete syntax its target
// engine accepts, so the rest of the executor never special-cases a dialect
// string.
package dialect

// Adapter rewrites SQL for one concrete execution engine and knows how to
// quote identifiers and refer to a registered file-backed table.
type Adapter interface {
	// Name identifies the dialect for logging and prompt hints.
	Name() string

	// Rewrite applies all of this dialect's pre-execution SQL translations.
	Rewrite(sql string) string

	// QuoteIdent quotes an identifier using this dialect's quoting rule.
	QuoteIdent(name string) string

	// TableRef returns how a file-backed table should be referred to in
	// generated SQL, given its canonical file id.
	TableRef(fileID string) string
}

// ForSubKind returns the adapter for a data-source sub_kind (e.g. "csv",
// "clickhouse", "postgres"). Unknown sub-kinds get the File adapter, since
// the embedded engine is the default target.
func ForSubKind(subKind string) Adapter {
	switch subKind {
	case "clickhouse":
		return NewClickHouse()
	case "postgres", "postgresql":
		return NewPostgres()
	case "mysql":
		return NewMySQL()
	default:
		return NewFile()
	}
}
