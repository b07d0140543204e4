package service_test

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cubemap/internal/domain"
	"cubemap/internal/engine"
	"cubemap/internal/mapper"
	"cubemap/internal/service"
	"cubemap/internal/sqlgen"
)

func testCubes() []*domain.Cube {
	region := &domain.Dimension{Name: "region"}
	region.Levels = []*domain.Level{{
		Name:       "default",
		Attributes: []*domain.Attribute{{Name: "region", Dimension: region}},
	}}

	sales := &domain.Cube{
		Name:       "sales",
		Label:      "Sales",
		FactTable:  "sales",
		Measures:   []*domain.Attribute{{Name: "amount"}},
		Dimensions: []*domain.Dimension{region},
	}

	returns := &domain.Cube{
		Name:     "returns",
		Measures: []*domain.Attribute{{Name: "quantity"}},
	}

	return []*domain.Cube{sales, returns}
}

func newWorkspace(t *testing.T, exec *engine.Executor) *service.Workspace {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ws, err := service.New(testCubes(), mapper.Config{}, exec, logger)
	require.NoError(t, err)
	return ws
}

func TestListCubes(t *testing.T) {
	ws := newWorkspace(t, nil)

	infos := ws.ListCubes()
	require.Len(t, infos, 2)
	assert.Equal(t, "sales", infos[0].Name)
	assert.Equal(t, "Sales", infos[0].Label)
	assert.Equal(t, []string{"amount"}, infos[0].Measures)
	assert.Equal(t, []string{"region"}, infos[0].Dimensions)
	assert.Equal(t, "returns", infos[1].Name)
}

func TestCube_NotFound(t *testing.T) {
	ws := newWorkspace(t, nil)

	_, err := ws.Cube("inventory")
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestNew_InvalidModel(t *testing.T) {
	bad := &domain.Cube{
		Name:  "bad",
		Joins: []domain.JoinSpec{{Master: domain.ListRef{"only_one"}, Detail: domain.StringRef("d.id")}},
	}

	_, err := service.New([]*domain.Cube{bad}, mapper.Config{}, nil, nil)
	var valErr *domain.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, err.Error(), "bad")
}

func TestNew_DetailIsFactTable(t *testing.T) {
	bad := &domain.Cube{
		Name:     "sales",
		Measures: []*domain.Attribute{{Name: "amount"}},
		Joins: []domain.JoinSpec{
			{Master: domain.StringRef("sales.id"), Detail: domain.StringRef("sales.parent_id")},
		},
	}

	_, err := service.New([]*domain.Cube{bad}, mapper.Config{}, nil, nil)
	var valErr *domain.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, err.Error(), "fact table")
}

func joinedWorkspace(t *testing.T) *service.Workspace {
	t.Helper()

	customer := &domain.Dimension{Name: "customer"}
	customer.Levels = []*domain.Level{{
		Name: "default",
		Attributes: []*domain.Attribute{
			{Name: "id", Dimension: customer},
			{Name: "name", Dimension: customer},
		},
	}}

	orders := &domain.Cube{
		Name:       "orders",
		Measures:   []*domain.Attribute{{Name: "amount"}},
		Dimensions: []*domain.Dimension{customer},
		Joins: []domain.JoinSpec{
			{Master: domain.StringRef("orders.customer_id"), Detail: domain.StringRef("dim_customer.id")},
		},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ws, err := service.New([]*domain.Cube{orders}, mapper.Config{DimensionPrefix: "dim_"}, nil, logger)
	require.NoError(t, err)
	return ws
}

func TestRelevantJoins(t *testing.T) {
	ws := joinedWorkspace(t)

	joins, err := ws.RelevantJoins("orders", []string{"customer.name"}, "")
	require.NoError(t, err)
	require.Len(t, joins, 1)
	assert.Equal(t, "orders.customer_id", joins[0].Master)
	assert.Equal(t, "dim_customer.id", joins[0].Detail)
}

func TestRelevantJoins_FactOnly(t *testing.T) {
	ws := joinedWorkspace(t)

	joins, err := ws.RelevantJoins("orders", []string{"amount"}, "")
	require.NoError(t, err)
	assert.Empty(t, joins)
	assert.NotNil(t, joins)
}

func TestRelevantJoins_UnknownAttribute(t *testing.T) {
	ws := joinedWorkspace(t)

	_, err := ws.RelevantJoins("orders", []string{"customer.phone"}, "")
	var valErr *domain.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, err.Error(), "customer.phone")
}

func TestRelevantJoins_UnknownCube(t *testing.T) {
	ws := joinedWorkspace(t)

	_, err := ws.RelevantJoins("inventory", []string{"amount"}, "")
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestExplainFacts(t *testing.T) {
	ws := joinedWorkspace(t)

	plan, err := ws.ExplainFacts("orders", []string{"amount", "customer.name"}, nil, "", 5)
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT orders.amount AS amount, dim_customer.name AS customer_name "+
			"FROM orders "+
			"LEFT JOIN dim_customer ON orders.customer_id = dim_customer.id "+
			"LIMIT 5",
		plan.SQL)
	require.Len(t, plan.Joins, 1)
}

func TestAttributes(t *testing.T) {
	ws := newWorkspace(t, nil)

	attrs, err := ws.Attributes("sales", "")
	require.NoError(t, err)
	require.Len(t, attrs, 2)
	assert.Equal(t, "amount", attrs[0].Ref)
	assert.Equal(t, "sales.amount", attrs[0].Physical)
	assert.Equal(t, "region", attrs[1].Ref)
	assert.Equal(t, "sales.region", attrs[1].Physical)
}

func TestExplainAggregate(t *testing.T) {
	ws := newWorkspace(t, nil)

	plan, err := ws.ExplainAggregate("sales", sqlgen.AggregateRequest{
		Measures:  []string{"amount"},
		Drilldown: []string{"region"},
	})
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT sales.region AS region, SUM(sales.amount) AS amount "+
			"FROM sales GROUP BY sales.region ORDER BY sales.region",
		plan.SQL)
	assert.Empty(t, plan.Args)
	assert.NotNil(t, plan.Joins)
}

func TestAggregate_NoExecutor(t *testing.T) {
	ws := newWorkspace(t, nil)

	_, err := ws.Aggregate(context.Background(), "sales", sqlgen.AggregateRequest{Measures: []string{"amount"}})
	var valErr *domain.ValidationError
	require.ErrorAs(t, err, &valErr)
}

func TestAggregate(t *testing.T) {
	db, err := sql.Open("duckdb", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	_, err = db.ExecContext(ctx, `CREATE TABLE sales (region VARCHAR, amount INTEGER)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO sales VALUES ('east', 7), ('west', 10), ('west', 5)`)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ws := newWorkspace(t, engine.NewExecutor(db, logger))

	result, err := ws.Aggregate(ctx, "sales", sqlgen.AggregateRequest{
		Measures:  []string{"amount"},
		Drilldown: []string{"region"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"region", "amount"}, result.Columns)
	require.Equal(t, 2, result.RowCount)
	assert.Equal(t, "east", result.Rows[0][0])
	assert.Equal(t, "west", result.Rows[1][0])
}
