package dialect

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	lagRe = regexp.MustCompile(`(?i)\blag\s*\(\s*([^)]+)\s*\)\s+OVER\s*\(([^)]*ORDER\s+BY\s+[^)]+)\)`)

	// selectListRe captures the SELECT list and aliasPairRe extracts its
	// "<expr> AS <alias>" pairs, used to resolve a GROUP BY alias back to its
	// defining expression.
	selectListRe = regexp.MustCompile(`(?is)SELECT\s+(.*?)\s+FROM\s`)
	aliasPairRe  = regexp.MustCompile(`(?i)(.+?)\s+AS\s+([A-Za-z_][A-Za-z0-9_]*)\s*$`)
	groupByRe    = regexp.MustCompile(`(?is)GROUP\s+BY\s+(.+?)(\s+ORDER\s+BY|\s+LIMIT|\s+HAVING|$)`)
)

// ClickHouse is the dialect adapter for the ClickHouse-class Direct-SQL
// engine, grounded on multi_engine_query_service.py's DirectSQLEngine
// ClickHouse HTTP path.
type ClickHouse struct{}

// NewClickHouse constructs the ClickHouse dialect adapter.
func NewClickHouse() *ClickHouse { return &ClickHouse{} }

func (*ClickHouse) Name() string { return "clickhouse" }

// Rewrite applies the window-function compatibility shim (lag -> neighbor)
// and the GROUP BY alias -> expression rewrite ClickHouse requires (it does
// not accept a SELECT alias inside GROUP BY).
func (c *ClickHouse) Rewrite(sql string) string {
	out := lagRe.ReplaceAllString(sql, `neighbor($1, -1) OVER ($2)`)
	out = RewriteGroupByAlias(out)
	return out
}

func (*ClickHouse) QuoteIdent(name string) string {
	return fmt.Sprintf("`%s`", name)
}

// TableRef qualifies a file-backed table as database.table; ClickHouse
// queries are never generated against file sources in practice, but the
// adapter still provides a definite answer.
func (*ClickHouse) TableRef(fileID string) string {
	if fileID == "" {
		return "default." + defaultTable
	}
	return "default." + fileID
}

// RewriteGroupByAlias rewrites "GROUP BY <alias>" to "GROUP BY <expr>" when
// <alias> is defined in the SELECT list as "<expr> AS <alias>", since
// ClickHouse (unlike the embedded and Direct-SQL engines) requires GROUP BY
// to repeat the exact SELECT expression rather than its alias.
func RewriteGroupByAlias(sql string) string {
	selMatch := selectListRe.FindStringSubmatch(sql)
	gbMatch := groupByRe.FindStringSubmatch(sql)
	if selMatch == nil || gbMatch == nil {
		return sql
	}

	aliasToExpr := map[string]string{}
	for _, item := range splitTopLevel(selMatch[1]) {
		item = strings.TrimSpace(item)
		if m := aliasPairRe.FindStringSubmatch(item); m != nil {
			aliasToExpr[strings.ToLower(strings.TrimSpace(m[2]))] = strings.TrimSpace(m[1])
		}
	}
	if len(aliasToExpr) == 0 {
		return sql
	}

	groupItems := splitTopLevel(gbMatch[1])
	rewroteAny := false
	for i, item := range groupItems {
		key := strings.ToLower(strings.TrimSpace(item))
		if expr, ok := aliasToExpr[key]; ok {
			groupItems[i] = expr
			rewroteAny = true
		}
	}
	if !rewroteAny {
		return sql
	}

	newGroupClause := "GROUP BY " + strings.Join(groupItems, ", ")
	return strings.Replace(sql, gbMatch[0], newGroupClause+gbMatch[2], 1)
}

// splitTopLevel splits a comma-separated list of SQL expressions, ignoring
// commas nested inside parentheses.
func splitTopLevel(s string) []string {
	var parts []string
	depth := 0
	last := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[last:i])
				last = i + 1
			}
		}
	}
	parts = append(parts, s[last:])
	return parts
}
