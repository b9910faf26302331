package executor

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Aggregation is the Cube-like pre-aggregation service engine, chosen for
// aggregation-heavy queries over mid-sized data per spec.md §4.5. It speaks
// a small JSON-over-HTTP protocol: POST /query with the rewritten SQL,
// GET /ready for health.
type Aggregation struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewAggregation builds a client for the aggregation service at baseURL.
func NewAggregation(baseURL, apiKey string) *Aggregation {
	return &Aggregation{baseURL: baseURL, apiKey: apiKey, client: defaultHTTPClient()}
}

func (a *Aggregation) Tag() EngineTag { return EngineAggregation }

func (a *Aggregation) Ping(ctx context.Context) error {
	if a.baseURL == "" {
		return fmt.Errorf("aggregation engine: no base URL configured")
	}
	return pingGet(ctx, a.client, a.baseURL+"/ready")
}

type aggregationQueryBody struct {
	SQL      string `json:"sql"`
	SourceID string `json:"source_id"`
}

type aggregationResponse struct {
	Rows    []map[string]any `json:"rows"`
	Columns []string         `json:"columns"`
}

func (a *Aggregation) Execute(ctx context.Context, req Request) Result {
	start := time.Now()
	headers := map[string]string{}
	if a.apiKey != "" {
		headers["Authorization"] = "Bearer " + a.apiKey
	}

	var out aggregationResponse
	_, err := httpJSON(ctx, a.client, http.MethodPost, a.baseURL+"/query", headers,
		aggregationQueryBody{SQL: req.SQLText, SourceID: req.Source.ID}, &out)
	if err != nil {
		return Result{Success: false, Error: &Error{Kind: ErrTransient, Message: err.Error()}}
	}

	return Result{
		Success:         true,
		Data:            out.Rows,
		Columns:         out.Columns,
		RowCount:        len(out.Rows),
		ExecutionTimeMS: time.Since(start).Milliseconds(),
	}
}
