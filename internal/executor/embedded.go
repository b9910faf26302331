package executor

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Embedded is the default, in-process analytic engine: a modernc.org/sqlite
// database either opened from a file path in the source's connection info,
// or built on the fly from an inline sample, per spec.md §4.5's
// description of the Embedded Analytic engine as the path used for "most
// file-backed and small data sources".
type Embedded struct {
	open func(ctx context.Context, d Descriptor) (*sql.DB, func(), error)
}

// NewEmbedded builds the default engine, opening a file-backed or
// in-memory database per descriptor.
func NewEmbedded() *Embedded {
	return &Embedded{open: openSQLite}
}

func (e *Embedded) Tag() EngineTag { return EngineEmbedded }

func (e *Embedded) Ping(ctx context.Context) error { return nil }

func (e *Embedded) Execute(ctx context.Context, req Request) Result {
	start := time.Now()
	db, cleanup, err := e.open(ctx, req.Source)
	if err != nil {
		return Result{Success: false, Error: &Error{Kind: ErrEngineUnavail, Message: err.Error()}}
	}
	defer cleanup()

	rows, err := db.QueryContext(ctx, req.SQLText)
	if err != nil {
		return Result{Success: false, Error: classifySQLiteError(err)}
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

func openSQLite(ctx context.Context, d Descriptor) (*sql.DB, func(), error) {
	dsn := ":memory:"
	if path, ok := d.ConnectionInfo["sqlite_path"].(string); ok && path != "" {
		dsn = path
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, func() {}, err
	}
	if dsn == ":memory:" && len(d.InlineSample) > 0 {
		if err := loadInline(ctx, db, d.InlineSample); err != nil {
			db.Close()
			return nil, func() {}, err
		}
	}
	return db, func() { db.Close() }, nil
}

// loadInline materializes InlineSample rows into a table named "data",
// with one column of type ANY per key of the first row; no column types
// are inferred. This is the path a file data source with no durable SQLite file
// takes: the executor loads what was parsed from the uploaded file once
// per request.
func loadInline(ctx context.Context, db *sql.DB, rows []map[string]any) error {
	if len(rows) == 0 {
		return nil
	}
	cols := make([]string, 0, len(rows[0]))
	for c := range rows[0] {
		cols = append(cols, c)
	}

	createSQL := "CREATE TABLE data ("
	for i, c := range cols {
		if i > 0 {
			createSQL += ", "
		}
		createSQL += fmt.Sprintf("%q ANY", c)
	}
	createSQL += ")"
	if _, err := db.ExecContext(ctx, createSQL); err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	placeholders := ""
	for i := range cols {
		if i > 0 {
			placeholders += ", "
		}
		placeholders += "?"
	}
	insertSQL := fmt.Sprintf("INSERT INTO data VALUES (%s)", placeholders)
	for _, row := range rows {
		vals := make([]any, len(cols))
		for i, c := range cols {
			vals[i] = row[c]
		}
		if _, err := tx.ExecContext(ctx, insertSQL, vals...); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func scanRows(rows *sql.Rows) ([]map[string]any, []string, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var out []map[string]any
	for rows.Next() {
		vals := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make(map[string]any, len(columns))
		for i, c := range columns {
			row[c] = vals[i]
		}
		out = append(out, row)
	}
	return out, columns, rows.Err()
}

func classifySQLiteError(err error) *Error {
	return &Error{Kind: ErrSyntactic, Message: err.Error()}
}
