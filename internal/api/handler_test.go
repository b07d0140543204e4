package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cubemap/internal/api"
	"cubemap/internal/domain"
	"cubemap/internal/mapper"
	"cubemap/internal/middleware"
	"cubemap/internal/service"
)

func testHandler(t *testing.T) http.Handler {
	t.Helper()

	region := &domain.Dimension{Name: "region"}
	region.Levels = []*domain.Level{{
		Name:       "default",
		Attributes: []*domain.Attribute{{Name: "region", Dimension: region}},
	}}

	sales := &domain.Cube{
		Name:       "sales",
		Label:      "Sales",
		FactTable:  "fct_sales",
		Measures:   []*domain.Attribute{{Name: "amount"}},
		Dimensions: []*domain.Dimension{region},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ws, err := service.New([]*domain.Cube{sales}, mapper.Config{}, nil, logger)
	require.NoError(t, err)

	return api.NewHandler(ws, logger).Routes(middleware.RateLimitConfig{})
}

func doRequest(t *testing.T, handler http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var payload map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	}
	return rec, payload
}

func TestHealth(t *testing.T) {
	handler := testHandler(t)

	rec, payload := doRequest(t, handler, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", payload["status"])
	assert.Equal(t, float64(1), payload["cubes"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestListCubes(t *testing.T) {
	handler := testHandler(t)

	rec, payload := doRequest(t, handler, http.MethodGet, "/v1/cubes", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	cubes := payload["cubes"].([]interface{})
	require.Len(t, cubes, 1)
	assert.Equal(t, "sales", cubes[0].(map[string]interface{})["name"])
}

func TestGetCube(t *testing.T) {
	handler := testHandler(t)

	rec, payload := doRequest(t, handler, http.MethodGet, "/v1/cubes/sales", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sales", payload["name"])
	assert.Equal(t, "fct_sales", payload["fact_table"])

	dims := payload["dimensions"].([]interface{})
	require.Len(t, dims, 1)
	assert.Equal(t, true, dims[0].(map[string]interface{})["flat"])
}

func TestGetCube_NotFound(t *testing.T) {
	handler := testHandler(t)

	rec, payload := doRequest(t, handler, http.MethodGet, "/v1/cubes/inventory", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, payload["error"], "inventory")
	assert.NotEmpty(t, payload["request_id"])
}

func TestAttributes(t *testing.T) {
	handler := testHandler(t)

	rec, payload := doRequest(t, handler, http.MethodGet, "/v1/cubes/sales/attributes", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	attrs := payload["attributes"].([]interface{})
	require.Len(t, attrs, 2)
	first := attrs[0].(map[string]interface{})
	assert.Equal(t, "amount", first["ref"])
	assert.Equal(t, "fct_sales.amount", first["physical"])
}

func TestExplainSQL(t *testing.T) {
	handler := testHandler(t)

	rec, payload := doRequest(t, handler, http.MethodPost, "/v1/cubes/sales/sql", map[string]interface{}{
		"measures":  []string{"amount"},
		"drilldown": []string{"region"},
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, payload["sql"], "SUM(fct_sales.amount)")
	assert.Contains(t, payload["sql"], "GROUP BY fct_sales.region")
}

func TestExplainSQL_InvalidBody(t *testing.T) {
	handler := testHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/cubes/sales/sql", bytes.NewReader([]byte("{broken")))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExplainSQL_UnknownMeasure(t *testing.T) {
	handler := testHandler(t)

	rec, payload := doRequest(t, handler, http.MethodPost, "/v1/cubes/sales/sql", map[string]interface{}{
		"measures": []string{"revenue"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, payload["error"], "revenue")
}

func TestFactsSQL(t *testing.T) {
	handler := testHandler(t)

	rec, payload := doRequest(t, handler, http.MethodPost, "/v1/cubes/sales/facts", map[string]interface{}{
		"attributes": []string{"amount", "region"},
		"limit":      25,
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, payload["sql"], "fct_sales.amount AS amount")
	assert.Contains(t, payload["sql"], "LIMIT 25")
}

func TestFactsSQL_NoAttributes(t *testing.T) {
	handler := testHandler(t)

	rec, _ := doRequest(t, handler, http.MethodPost, "/v1/cubes/sales/facts", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAggregate_NoDatabase(t *testing.T) {
	handler := testHandler(t)

	rec, payload := doRequest(t, handler, http.MethodPost, "/v1/cubes/sales/aggregate", map[string]interface{}{
		"measures": []string{"amount"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, payload["error"], "no database")
}
