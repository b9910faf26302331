package nl2sql

import (
	"context"
	"fmt"
	"strings"

	"github.com/nlquery/orchestrator/internal/dialect"
	"github.com/nlquery/orchestrator/internal/extract"
	"github.com/nlquery/orchestrator/internal/llm"
	"github.com/nlquery/orchestrator/internal/sqlguard"
)

type modelJSON struct {
	SQLQuery       string   `json:"sql_query"`
	Explanation    string   `json:"explanation"`
	Confidence     float64  `json:"confidence"`
	ReasoningSteps []string `json:"reasoning_steps"`
}

func parseModelJSON(text string) (modelJSON, error) {
	var out modelJSON
	if err := extract.JSON(text, &out); err != nil {
		return modelJSON{}, err
	}
	return out, nil
}

// Request carries everything the node needs to produce one SQL query.
type Request struct {
	Query       string
	Schema      sqlguard.Schema
	PriorSQL    string
	Adapter     dialect.Adapter
	SourceKind  string // "file", "database", "warehouse", "api"
}

// Response is the structured output of one generation attempt.
type Response struct {
	SQLQuery       string
	Dialect        string
	Explanation    string
	Confidence     float64
	ReasoningSteps []string
	Success        bool
	Error          string
}

// hintsFor builds the dialect-specific generation hints spec.md §4.3 rule 4
// describes: the embedded engine's function/date preferences for file
// sources, and ClickHouse's CTE/window-function/GROUP-BY restrictions.
func hintsFor(req Request) string {
	switch req.Adapter.Name() {
	case "clickhouse":
		return strings.Join([]string{
			"Target dialect: ClickHouse.",
			"Do not use CTEs or window functions.",
			"GROUP BY must repeat the exact SELECT expression; never use an alias in GROUP BY.",
			"Qualify every table as database.table.",
		}, " ")
	default:
		return strings.Join([]string{
			"Target dialect: embedded analytic engine (DuckDB-compatible).",
			"Prefer date_trunc, CAST(... AS DATE), and COUNT(DISTINCT ...).",
			"Do not use warehouse-specific functions.",
			fmt.Sprintf("The table name is %q unless a file id is given.", req.Adapter.TableRef("")),
			"Guard against empty strings defensively in WHERE clauses.",
		}, " ")
	}
}

func schemaDescription(schema sqlguard.Schema) string {
	if len(schema) == 0 {
		return "(no schema declared)"
	}
	var b strings.Builder
	for table, cols := range schema {
		fmt.Fprintf(&b, "%s(%s)\n", table, strings.Join(cols, ", "))
	}
	return b.String()
}

// Generate calls the model once, applies the syntax pre-check and the
// ClickHouse GROUP BY auto-rewrite, and returns a structured Response. It
// never panics or returns a raw model error to the caller: failures are
// reported via Response.Success=false, matching spec.md §4.3's failure-mode
// contract.
func Generate(ctx context.Context, gen llm.Generator, req Request) Response {
	prompt := buildPrompt(req)

	out, err := gen.Generate(ctx, llm.Request{
		Prompt:        prompt,
		SystemContext: "You are a SQL generation engine. Respond with a JSON object containing sql_query, explanation, confidence, and reasoning_steps.",
		MaxTokens:     1024,
		Temperature:   0.2,
	})
	if err != nil || !out.Success {
		return Response{Success: false, Error: errString(err, out.Error)}
	}

	parsed, perr := parseModelJSON(out.Content)
	if perr != nil {
		return Response{Success: false, Error: perr.Error()}
	}

	cleaned, verr := Validate(parsed.SQLQuery)
	if verr != nil {
		return Response{Success: false, Error: verr.Error(), ReasoningSteps: parsed.ReasoningSteps}
	}

	if sqlguard.CheckSyntax(cleaned) != nil {
		return Response{Success: false, Error: "SQL failed syntax pre-check", ReasoningSteps: parsed.ReasoningSteps}
	}

	if req.Adapter.Name() == "clickhouse" {
		cleaned = dialect.RewriteGroupByAlias(cleaned)
	}

	return Response{
		SQLQuery:       cleaned,
		Dialect:        req.Adapter.Name(),
		Explanation:    parsed.Explanation,
		Confidence:     parsed.Confidence,
		ReasoningSteps: parsed.ReasoningSteps,
		Success:        true,
	}
}

func buildPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n", req.Query)
	fmt.Fprintf(&b, "Schema:\n%s\n", schemaDescription(req.Schema))
	if req.PriorSQL != "" {
		fmt.Fprintf(&b, "Prior SQL (for follow-up refinement): %s\n", req.PriorSQL)
	}
	fmt.Fprintf(&b, "%s\n", hintsFor(req))
	return b.String()
}

func errString(err error, apiErr string) string {
	if err != nil {
		return err.Error()
	}
	if apiErr != "" {
		return apiErr
	}
	return "model call failed"
}
