// Package engine executes generated SQL against DuckDB and returns
// generically scanned result sets.
package engine

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// QueryResult is a fully materialized result set. Rows hold the driver's
// native values; callers serialize them as needed.
type QueryResult struct {
	QueryID  string          `json:"query_id"`
	Columns  []string        `json:"columns"`
	Rows     [][]interface{} `json:"rows"`
	RowCount int             `json:"row_count"`
}

// Executor runs queries on one DuckDB connection pool. Every query gets a
// generated query ID that appears in the audit log and the result.
type Executor struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewExecutor creates an executor over db. A nil logger defaults to
// slog.Default.
func NewExecutor(db *sql.DB, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{db: db, logger: logger}
}

// Query executes sqlText with the given placeholder arguments and scans the
// whole result set into memory.
func (e *Executor) Query(ctx context.Context, sqlText string, args ...interface{}) (*QueryResult, error) {
	queryID := uuid.NewString()
	start := time.Now()

	e.logger.Info("executing query", "query_id", queryID, "sql", sqlText)

	rows, err := e.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		e.logger.Error("query failed", "query_id", queryID, "error", err)
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	var resultRows [][]interface{}
	for rows.Next() {
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		resultRows = append(resultRows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	e.logger.Info("query completed",
		"query_id", queryID,
		"row_count", len(resultRows),
		"duration_ms", time.Since(start).Milliseconds())

	return &QueryResult{
		QueryID:  queryID,
		Columns:  cols,
		Rows:     resultRows,
		RowCount: len(resultRows),
	}, nil
}

// Ping verifies the connection is alive.
func (e *Executor) Ping(ctx context.Context) error {
	return e.db.PingContext(ctx)
}
