package engine_test

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cubemap/internal/engine"
)

func openDuckDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("duckdb", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestQuery(t *testing.T) {
	db := openDuckDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `CREATE TABLE sales (region VARCHAR, amount INTEGER)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO sales VALUES ('west', 10), ('west', 5), ('east', 7)`)
	require.NoError(t, err)

	exec := engine.NewExecutor(db, quietLogger())
	result, err := exec.Query(ctx,
		"SELECT region, SUM(amount) AS amount FROM sales WHERE region = ? GROUP BY region", "west")
	require.NoError(t, err)

	assert.NotEmpty(t, result.QueryID)
	assert.Equal(t, []string{"region", "amount"}, result.Columns)
	require.Equal(t, 1, result.RowCount)
	assert.Equal(t, "west", result.Rows[0][0])
}

func TestQuery_EmptyResult(t *testing.T) {
	db := openDuckDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `CREATE TABLE empty_facts (id INTEGER)`)
	require.NoError(t, err)

	exec := engine.NewExecutor(db, quietLogger())
	result, err := exec.Query(ctx, "SELECT id FROM empty_facts")
	require.NoError(t, err)
	assert.Equal(t, 0, result.RowCount)
	assert.Empty(t, result.Rows)
}

func TestQuery_SQLError(t *testing.T) {
	db := openDuckDB(t)

	exec := engine.NewExecutor(db, quietLogger())
	_, err := exec.Query(context.Background(), "SELECT * FROM no_such_table")
	require.Error(t, err)
}

func TestPing(t *testing.T) {
	db := openDuckDB(t)

	exec := engine.NewExecutor(db, quietLogger())
	require.NoError(t, exec.Ping(context.Background()))
}
