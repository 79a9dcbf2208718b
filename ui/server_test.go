package ui

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stokhos/adapters/llm/heuristic"
	"stokhos/adapters/stats/engine"
	"stokhos/app"
	"stokhos/internal"
)

func newTestServer() *Server {
	logger := internal.NewLogger(internal.LogLevelError)
	service := app.NewAnalysisService(logger, heuristic.NewSummarizer(), nil, engine.SelfDependenceConfig{})
	return NewServer(service, heuristic.NewSummarizer(), logger)
}

func postJSON(t *testing.T, server *Server, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleAnalyze(t *testing.T) {
	server := newTestServer()
	rec := postJSON(t, server, "/api/analyze", map[string]interface{}{
		"mode": "cross_sectional",
		"variables": []map[string]interface{}{
			{"name": "color", "state_space": []string{"red", "blue"}, "measurement": "nominal"},
		},
		"rows": [][]string{{"red"}, {"red"}, {"blue"}},
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result app.DatasetResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.InDelta(t, 2.0/3.0, result.Analysis.Joint["red"], 1e-9)
	assert.Equal(t, 3, result.Analysis.SampleSize)
}

func TestHandleAnalyze_BadMode(t *testing.T) {
	server := newTestServer()
	rec := postJSON(t, server, "/api/analyze", map[string]interface{}{
		"mode": "diagonal",
		"variables": []map[string]interface{}{
			{"name": "color", "state_space": []string{"red"}, "measurement": "nominal"},
		},
		"rows": [][]string{{"red"}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAnalyze_MalformedBody(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", bytes.NewReader([]byte("{")))
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSelfDependence_ResourceRejection(t *testing.T) {
	logger := internal.NewLogger(internal.LogLevelError)
	service := app.NewAnalysisService(logger, nil, nil, engine.SelfDependenceConfig{MaxJointStates: 8})
	server := NewServer(service, nil, logger)

	rec := postJSON(t, server, "/api/self-dependence", map[string]interface{}{
		"traces":      [][]string{{"a", "b", "a", "b"}, {"b", "a", "b", "a"}},
		"state_space": []string{"a", "b"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandleEstimate(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/self-dependence/estimate?states=2&steps=4", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 16.0, body["joint_states"])
	assert.Equal(t, true, body["feasible"])
}

func TestHandleEstimate_BadQuery(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/self-dependence/estimate?states=two&steps=4", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleTransitions(t *testing.T) {
	server := newTestServer()
	rec := postJSON(t, server, "/api/transitions", map[string]interface{}{
		"trace": []string{"a", "b", "a", "b"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []interface{}{"a", "b"}, body["states"])
}

func TestHandleSummary_RendersHTML(t *testing.T) {
	server := newTestServer()
	rec := postJSON(t, server, "/api/summary", map[string]interface{}{
		"self_dependence": map[string]interface{}{
			"orders":     []interface{}{},
			"conclusion": "The process shows memory beyond a single step.",
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["summary"], "memory beyond a single step")
	assert.Contains(t, body["summary_html"], "<p>")
}

func TestHandleListRuns_WithoutPersistence(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/runs", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestHandleGetRun_NotFound(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/runs/does-not-exist", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
