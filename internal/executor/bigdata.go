package executor

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// BigData fronts a cluster query gateway (e.g. a Spark or Presto-class
// coordinator) for sources spec.md §4.5 marks as at or above the big-data
// threshold. The client is constructed lazily on first use, since the
// cluster endpoint is often provisioned on demand and shouldn't be dialed
// at process startup for a feature most requests never touch.
type BigData struct {
	baseURLFunc func() (string, error)

	mu      sync.Mutex
	baseURL string
	client  *http.Client
}

// NewBigData defers resolution of the cluster URL to resolve, called the
// first time the engine is actually exercised and again on later calls
// until one succeeds.
func NewBigData(resolve func() (string, error)) *BigData {
	return &BigData{baseURLFunc: resolve}
}

func (b *BigData) Tag() EngineTag { return EngineBigData }

func (b *BigData) ensure() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.client != nil {
		return nil
	}
	url, err := b.baseURLFunc()
	if err != nil {
		return err
	}
	b.baseURL = url
	b.client = defaultHTTPClient()
	return nil
}

func (b *BigData) Ping(ctx context.Context) error {
	if err := b.ensure(); err != nil {
		return err
	}
	return pingGet(ctx, b.client, b.baseURL+"/health")
}

type bigDataQueryBody struct {
	SQL string `json:"sql"`
}

type bigDataResponse struct {
	Rows     []map[string]any `json:"rows"`
	Columns  []string         `json:"columns"`
	RowCount int              `json:"row_count"`
}

func (b *BigData) Execute(ctx context.Context, req Request) Result {
	if err := b.ensure(); err != nil {
		return Result{Success: false, Error: &Error{Kind: ErrEngineUnavail, Message: err.Error()}}
	}

	start := time.Now()
	var out bigDataResponse
	_, err := httpJSON(ctx, b.client, http.MethodPost, b.baseURL+"/v1/query", nil,
		bigDataQueryBody{SQL: req.SQLText}, &out)
	if err != nil {
		return Result{Success: false, Error: &Error{Kind: ErrTransient, Message: fmt.Sprintf("big data cluster: %v", err)}}
	}

	rowCount := out.RowCount
	if rowCount == 0 {
		rowCount = len(out.Rows)
	}

	return Result{
		Success:         true,
		Data:            out.Rows,
		Columns:         out.Columns,
		RowCount:        rowCount,
		ExecutionTimeMS: time.Since(start).Milliseconds(),
	}
}
