package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crescent-wealth/advisor-cli/internal/advisor"
	"github.com/crescent-wealth/advisor-cli/internal/catalog"
	"github.com/crescent-wealth/advisor-cli/internal/config"
	"github.com/crescent-wealth/advisor-cli/internal/monitoring"
)

func testServer(t *testing.T, minTurns int) (*apiServer, http.Handler) {
	t.Helper()

	cfg = &config.Config{}
	cfg.Advisor.MinTurns = minTurns
	cfg.Advisor.ProjectionYears = 30
	cfg.Advisor.DefaultTargetWealth = 1000000
	cfg.Advisor.ProviderTimeoutSecs = 8
	cfg.Server.AllowedOrigins = []string{"*"}
	cfg.Server.RateLimitRPS = 1000
	cfg.Server.RateLimitBurst = 1000

	cat, err := catalog.Load()
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	api := &apiServer{
		catalog:   cat,
		validator: advisor.NewValidator(cat),
		provider:  advisor.NewStaticProvider(cat, minTurns, 30, 1000000),
		metrics:   monitoring.New(reg),
		sessions:  make(map[string]*sessionSlot),
	}
	return api, api.routes(reg)
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeStepResponse(t *testing.T, rec *httptest.ResponseRecorder) stepResponse {
	t.Helper()
	var resp stepResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestServer_Health(t *testing.T) {
	_, h := testServer(t, 10)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_Catalog(t *testing.T) {
	_, h := testServer(t, 10)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/catalog", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Products []catalog.Product `json:"products"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Products, 4)
}

func TestServer_SessionLifecycle(t *testing.T) {
	_, h := testServer(t, 10)

	rec := postJSON(t, h, "/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeStepResponse(t, rec)
	require.NotEmpty(t, created.SessionID)
	assert.Equal(t, "in_progress", created.State)
	assert.Equal(t, 0, created.HistoryLen)

	// The opening step is the life-goals galaxy.
	var galaxy struct {
		Type     string `json:"type"`
		Progress int    `json:"progress"`
	}
	raw, err := json.Marshal(created.Step)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &galaxy))
	assert.Equal(t, "galaxy", galaxy.Type)
	assert.Equal(t, 10, galaxy.Progress)

	// Answer with goals; the next step is the monthly slider.
	rec = postJSON(t, h, "/sessions/"+created.SessionID+"/answer", map[string]any{
		"answer": []map[string]any{{"category": "House", "cost": 400000, "year": 2036}},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	next := decodeStepResponse(t, rec)
	assert.Equal(t, 1, next.HistoryLen)
	assert.Equal(t, 400000.0, next.TargetWealth)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/"+created.SessionID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	fetched := decodeStepResponse(t, rec)
	assert.Equal(t, created.SessionID, fetched.SessionID)
	assert.Equal(t, 1, fetched.HistoryLen)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/sessions/"+created.SessionID, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/"+created.SessionID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_AnswerUnknownSession(t *testing.T) {
	_, h := testServer(t, 10)
	rec := postJSON(t, h, "/sessions/nope/answer", map[string]any{"answer": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_AnswerBadBody(t *testing.T) {
	_, h := testServer(t, 10)
	rec := postJSON(t, h, "/sessions", nil)
	created := decodeStepResponse(t, rec)

	req := httptest.NewRequest(http.MethodPost, "/sessions/"+created.SessionID+"/answer", bytes.NewReader([]byte("not json")))
	out := httptest.NewRecorder()
	h.ServeHTTP(out, req)
	assert.Equal(t, http.StatusBadRequest, out.Code)

	rec = postJSON(t, h, "/sessions/"+created.SessionID+"/answer", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_TerminatedSessionConflicts(t *testing.T) {
	_, h := testServer(t, 2)

	rec := postJSON(t, h, "/sessions", nil)
	created := decodeStepResponse(t, rec)

	// Two answers hit the minimum turn count and terminate the session.
	rec = postJSON(t, h, "/sessions/"+created.SessionID+"/answer", map[string]any{"answer": "a house by the sea"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = postJSON(t, h, "/sessions/"+created.SessionID+"/answer", map[string]any{"answer": 800})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "terminal", decodeStepResponse(t, rec).State)

	rec = postJSON(t, h, "/sessions/"+created.SessionID+"/answer", map[string]any{"answer": "more"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "restart required")
}

func TestServer_RateLimit(t *testing.T) {
	_, h := testServer(t, 10)
	cfg.Server.RateLimitRPS = 0.001
	cfg.Server.RateLimitBurst = 1

	rec := postJSON(t, h, "/sessions", nil)
	created := decodeStepResponse(t, rec)

	rec = postJSON(t, h, "/sessions/"+created.SessionID+"/answer", map[string]any{"answer": "first"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = postJSON(t, h, "/sessions/"+created.SessionID+"/answer", map[string]any{"answer": "second"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
