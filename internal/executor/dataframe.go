package executor

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// DataFrame fetches tabular data from an API or ad-hoc file endpoint (CSV
// or JSON) and hands it to Embedded for SQL execution, per spec.md §4.5's
// description of the Data-Frame engine as a thin fetch-then-delegate path
// rather than a SQL engine of its own.
type DataFrame struct {
	client   *http.Client
	embedded *Embedded
}

// NewDataFrame wires a DataFrame engine over a shared Embedded delegate.
func NewDataFrame(embedded *Embedded) *DataFrame {
	return &DataFrame{client: defaultHTTPClient(), embedded: embedded}
}

func (d *DataFrame) Tag() EngineTag { return EngineDataFrame }

func (d *DataFrame) Ping(ctx context.Context) error { return nil }

func (d *DataFrame) Execute(ctx context.Context, req Request) Result {
	rows, err := d.fetch(ctx, req.Source)
	if err != nil {
		return Result{Success: false, Error: &Error{Kind: ErrTransient, Message: err.Error()}}
	}

	delegated := req
	delegated.Source.ConnectionInfo = map[string]any{}
	delegated.Source.InlineSample = rows
	return d.embedded.Execute(ctx, delegated)
}

func (d *DataFrame) fetch(ctx context.Context, src Descriptor) ([]map[string]any, error) {
	if len(src.InlineSample) > 0 {
		return src.InlineSample, nil
	}

	url := str2(src.ConnectionInfo, "url")
	if url == "" {
		return nil, fmt.Errorf("data frame source %q has neither inline sample nor fetch url", src.ID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	switch str2(src.ConnectionInfo, "format") {
	case "csv":
		return parseCSV(raw)
	default:
		return parseJSONRows(raw)
	}
}

func parseCSV(raw []byte) ([]map[string]any, error) {
	r := csv.NewReader(bytes.NewReader(raw))
	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}

	var out []map[string]any
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make(map[string]any, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func parseJSONRows(raw []byte) ([]map[string]any, error) {
	var rows []map[string]any
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("data frame: expected a JSON array of objects: %w", err)
	}
	return rows, nil
}
