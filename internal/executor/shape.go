package executor

import "strings"

// ShapeOf derives a QueryShape from SQL text by substring inspection. It is
// a coarse heuristic, not a parser: good enough to steer engine selection,
// not to validate the query.
func ShapeOf(sqlText string) QueryShape {
	upper := strings.ToUpper(sqlText)
	return QueryShape{
		HasJoins:        strings.Contains(upper, "JOIN"),
		HasAggregations: containsAny(upper, "GROUP BY", "SUM(", "AVG(", "COUNT(", "MIN(", "MAX("),
		HasSubqueries:   strings.Contains(upper, "(SELECT"),
		HasWindowFuncs:  strings.Contains(upper, "OVER ("),
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
