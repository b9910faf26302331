// Package nl2sql turns a natural-language question plus a declared schema
// into a dialect-correct SQL query, and enforces the programmatic checks
// that run after the model call: placeholder rejection, corruption
// detection, and cleanup.
package nl2sql

import (
	"regexp"
	"strings"
)

// placeholderPatterns are substrings that mark a model response as an
// unfilled template rather than real SQL, grounded on nl2sql_agent.py's
// final placeholder check.
var placeholderPatterns = []string{
	"table_name",
	"where condition",
	"column_name",
	"avg(column_name)",
	"sum(column_name)",
	"count(column_name)",
	"select * from table_name",
	"from table_name where",
}

// IsPlaceholder reports whether sql still contains an unfilled template
// token.
func IsPlaceholder(sql string) bool {
	lower := strings.ToLower(sql)
	for _, p := range placeholderPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// corruptionPatterns catch visibly broken model output: repeated short
// character groups, instructions in place of SQL, and embedded JSON
// artifacts, grounded on nl2sql_agent.py's _fix_common_errors corruption
// check.
var corruptionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(.{2,3})\1{4,}`),
	regexp.MustCompile(`(?i)select.*bucket.*aggregations`),
	regexp.MustCompile(`"detail":\s*"`),
	regexp.MustCompile(`(?i)reasoning_steps.*sql_query`),
}

// IsCorrupted reports whether sql shows one of the severe-corruption
// signatures that mean it must be discarded rather than lightly repaired.
func IsCorrupted(sql string) bool {
	for _, re := range corruptionPatterns {
		if re.MatchString(sql) {
			return true
		}
	}
	return !balancedQuotes(sql)
}

func balancedQuotes(sql string) bool {
	single := strings.Count(sql, "'")
	double := strings.Count(sql, "\"")
	return single%2 == 0 && double%2 == 0
}

var (
	codeFenceRe  = regexp.MustCompile("(?s)```(?:sql)?\\s*(.*?)\\s*```")
	wrapQuoteRe  = regexp.MustCompile(`^['"]+|['"]+$`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Clean strips wrapping quotes, markdown fences, and escape sequences from
// a raw model response, and collapses internal whitespace, per spec.md
// §4.3 rule 3.
func Clean(raw string) string {
	s := raw
	if m := codeFenceRe.FindStringSubmatch(s); m != nil {
		s = m[1]
	}
	s = strings.TrimSpace(s)
	s = wrapQuoteRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, `\n`, " ")
	s = strings.ReplaceAll(s, `\"`, `"`)
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// GenerationError is returned when the model's SQL output fails the
// post-generation checks. The edge function routes these to error_recovery.
type GenerationError struct {
	Reason string
}

func (e *GenerationError) Error() string { return e.Reason }

// Validate runs Clean then the placeholder/corruption checks, returning the
// cleaned SQL or a GenerationError describing why it was rejected.
func Validate(raw string) (string, error) {
	cleaned := Clean(raw)
	if cleaned == "" {
		return "", &GenerationError{Reason: "empty SQL generated"}
	}
	if IsPlaceholder(cleaned) {
		return "", &GenerationError{Reason: "placeholder SQL template detected"}
	}
	if IsCorrupted(cleaned) {
		return "", &GenerationError{Reason: "corrupted SQL output detected"}
	}
	return cleaned, nil
}
