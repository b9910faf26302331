package executor

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

// DirectSQL dials a remote database directly, used for database/warehouse
// sources per spec.md §4.5. Postgres and MySQL go through database/sql
// with their respective drivers; ClickHouse has no driver in the pack so
// it goes over its native HTTP interface, matching spec.md §6's
// description of a "ClickHouse-class direct engine".
type DirectSQL struct {
	clickhouseClient *http.Client
}

// NewDirectSQL builds the direct-connection engine.
func NewDirectSQL() *DirectSQL {
	return &DirectSQL{clickhouseClient: defaultHTTPClient()}
}

func (d *DirectSQL) Tag() EngineTag { return EngineDirectSQL }

func (d *DirectSQL) Ping(ctx context.Context) error {
	return nil
}

func (d *DirectSQL) Execute(ctx context.Context, req Request) Result {
	switch req.Source.SubKind {
	case "clickhouse":
		return d.executeClickHouse(ctx, req)
	case "mysql":
		return d.executeSQL(ctx, "mysql", mysqlDSN(req.Source.ConnectionInfo), req)
	default:
		return d.executeSQL(ctx, "postgres", postgresDSN(req.Source.ConnectionInfo), req)
	}
}

func (d *DirectSQL) executeSQL(ctx context.Context, driver, dsn string, req Request) Result {
	start := time.Now()
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return Result{Success: false, Error: &Error{Kind: ErrEngineUnavail, Message: err.Error()}}
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, req.SQLText)
	if err != nil {
		return Result{Success: false, Error: &Error{Kind: ErrSyntactic, Message: err.Error()}}
	}
	defer rows.Close()

	data, columns, err := scanRows(rows)
	if err != nil {
		return Result{Success: false, Error: &Error{Kind: ErrPermanent, Message: err.Error()}}
	}

	return Result{
		Success:         true,
		Data:            data,
		Columns:         columns,
		RowCount:        len(data),
		ExecutionTimeMS: time.Since(start).Milliseconds(),
	}
}

func mysqlDSN(info map[string]any) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s",
		str2(info, "user"), str2(info, "password"), str2(info, "host"), str2(info, "port"), str2(info, "database"))
}

func postgresDSN(info map[string]any) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		str2(info, "host"), str2(info, "port"), str2(info, "user"), str2(info, "password"), str2(info, "database"), defaultSSLMode(info))
}

func defaultSSLMode(info map[string]any) string {
	if v := str2(info, "sslmode"); v != "" {
		return v
	}
	return "require"
}

func str2(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// executeClickHouse speaks ClickHouse's native HTTP interface directly:
// the query is posted as the request body with FORMAT JSON appended, and
// credentials go over HTTP Basic Auth, since there is no ClickHouse driver
// in the dependency set.
func (d *DirectSQL) executeClickHouse(ctx context.Context, req Request) Result {
	start := time.Now()
	info := req.Source.ConnectionInfo
	url := fmt.Sprintf("%s://%s:%s/", schemeOf(info), str2(info, "host"), str2(info, "port"))

	sqlText := req.SQLText
	if !strings.Contains(strings.ToUpper(sqlText), "FORMAT JSON") {
		sqlText = strings.TrimRight(strings.TrimSpace(sqlText), ";") + " FORMAT JSON"
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(sqlText))
	if err != nil {
		return Result{Success: false, Error: &Error{Kind: ErrPermanent, Message: err.Error()}}
	}
	if user := str2(info, "user"); user != "" {
		httpReq.SetBasicAuth(user, str2(info, "password"))
	}

	resp, err := d.clickhouseClient.Do(httpReq)
	if err != nil {
		return Result{Success: false, Error: &Error{Kind: ErrTransient, Message: err.Error()}}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{Success: false, Error: &Error{Kind: ErrTransient, Message: err.Error()}}
	}
	if resp.StatusCode >= 400 {
		return Result{Success: false, Error: &Error{Kind: ErrSyntactic, Message: string(raw)}}
	}

	data, columns, err := parseClickHouseJSON(raw)
	if err != nil {
		return Result{Success: false, Error: &Error{Kind: ErrPermanent, Message: err.Error()}}
	}

	return Result{
		Success:         true,
		Data:            data,
		Columns:         columns,
		RowCount:        len(data),
		ExecutionTimeMS: time.Since(start).Milliseconds(),
	}
}

func schemeOf(info map[string]any) string {
	if v, ok := info["secure"].(bool); ok && v {
		return "https"
	}
	return "http"
}
