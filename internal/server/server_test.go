package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordan/content-calendar/internal/genservice"
	"github.com/jordan/content-calendar/internal/jobs"
	"github.com/jordan/content-calendar/internal/pipeline"
	"github.com/jordan/content-calendar/internal/store"
	"github.com/jordan/content-calendar/internal/types"
)

type stubGenerator struct {
	selectErr error
}

func (g *stubGenerator) SelectKeywords(_ context.Context, _ string, keywords []types.Keyword, count int) ([]types.Keyword, error) {
	if g.selectErr != nil {
		return nil, g.selectErr
	}
	if len(keywords) > count {
		keywords = keywords[:count]
	}
	return keywords, nil
}

func (g *stubGenerator) GeneratePost(_ context.Context, _, _, _, _ string) (*genservice.PostDraft, error) {
	return &genservice.PostDraft{Title: "title", Body: "body"}, nil
}

func (g *stubGenerator) GenerateComment(_ context.Context, _, _, _, _, _ string) (string, error) {
	return "comment", nil
}

type testEnv struct {
	server     *Server
	dispatcher *jobs.Dispatcher
	registry   jobs.Registry
}

func newTestEnv(gen genservice.Generator) *testEnv {
	registry := jobs.NewMemoryRegistry()
	dispatcher := jobs.NewDispatcher()
	gateway := store.NewGateway(nil, rand.New(rand.NewSource(1)))
	runner := pipeline.NewRunner(gateway, gen, registry, rand.New(rand.NewSource(1)), func() time.Time {
		return time.Date(2025, time.June, 4, 11, 30, 0, 0, time.UTC)
	})
	srv := New(Config{Port: 0}, registry, dispatcher, runner, nil)
	return &testEnv{server: srv, dispatcher: dispatcher, registry: registry}
}

func (e *testEnv) do(t *testing.T, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	env := newTestEnv(&stubGenerator{})
	w := env.do(t, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decodeBody(t, w)["status"])
}

func TestStartReturnsJobID(t *testing.T) {
	env := newTestEnv(&stubGenerator{})
	w := env.do(t, http.MethodPost, "/api/generate/start", []byte(`{"posts_per_week":2}`))

	require.Equal(t, http.StatusAccepted, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["ok"])
	jobID, _ := body["job_id"].(string)
	require.NotEmpty(t, jobID)

	// The job exists immediately; its status is pending or running until
	// the detached runner finishes.
	sw := env.do(t, http.MethodGet, "/api/generate/status?id="+jobID, nil)
	assert.Equal(t, http.StatusOK, sw.Code)
	status, _ := decodeBody(t, sw)["status"].(string)
	assert.Contains(t, []string{"pending", "running", "success"}, status)
}

func TestStartMalformedBodyTolerated(t *testing.T) {
	env := newTestEnv(&stubGenerator{})
	w := env.do(t, http.MethodPost, "/api/generate/start", []byte(`{not json`))

	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestStartRejectsInvalidPostsPerWeek(t *testing.T) {
	env := newTestEnv(&stubGenerator{})
	w := env.do(t, http.MethodPost, "/api/generate/start", []byte(`{"posts_per_week":99}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_request", decodeBody(t, w)["error"])
}

func TestStatusContract(t *testing.T) {
	env := newTestEnv(&stubGenerator{})

	w := env.do(t, http.MethodGet, "/api/generate/status", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "missing_id", decodeBody(t, w)["error"])

	w = env.do(t, http.MethodGet, "/api/generate/status?id=nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decodeBody(t, w)["error"])
}

func TestResultContract(t *testing.T) {
	env := newTestEnv(&stubGenerator{})

	w := env.do(t, http.MethodGet, "/api/generate/result", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "missing_id", decodeBody(t, w)["error"])

	w = env.do(t, http.MethodGet, "/api/generate/result?id=nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decodeBody(t, w)["error"])

	// A job that has not run yet is not ready.
	require.NoError(t, env.registry.Create("job-pending"))
	w = env.do(t, http.MethodGet, "/api/generate/result?id=job-pending", nil)
	assert.Equal(t, http.StatusAccepted, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, "not_ready", body["error"])
	assert.Equal(t, "pending", body["status"])
}

func TestStartThenPollToSuccess(t *testing.T) {
	env := newTestEnv(&stubGenerator{})

	w := env.do(t, http.MethodPost, "/api/generate/start", []byte(`{"posts_per_week":3}`))
	require.Equal(t, http.StatusAccepted, w.Code)
	jobID := decodeBody(t, w)["job_id"].(string)

	env.dispatcher.Drain()

	w = env.do(t, http.MethodGet, "/api/generate/result?id="+jobID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["ok"])

	result, ok := body["result"].(map[string]any)
	require.True(t, ok)
	posts, ok := result["posts"].([]any)
	require.True(t, ok)
	assert.Len(t, posts, 3)

	// Terminal polls are stable: same payload every time.
	first := w.Body.String()
	again := env.do(t, http.MethodGet, "/api/generate/result?id="+jobID, nil)
	assert.Equal(t, first, again.Body.String())
}

func TestStartThenPollToError(t *testing.T) {
	env := newTestEnv(&stubGenerator{selectErr: errors.New("scoring down")})

	w := env.do(t, http.MethodPost, "/api/generate/start", []byte(`{}`))
	require.Equal(t, http.StatusAccepted, w.Code)
	jobID := decodeBody(t, w)["job_id"].(string)

	env.dispatcher.Drain()

	sw := env.do(t, http.MethodGet, "/api/generate/status?id="+jobID, nil)
	require.Equal(t, http.StatusOK, sw.Code)
	sb := decodeBody(t, sw)
	assert.Equal(t, "error", sb["status"])
	assert.Equal(t, pipeline.CodeKeywordScoringFailed, sb["error"])

	rw := env.do(t, http.MethodGet, "/api/generate/result?id="+jobID, nil)
	assert.Equal(t, http.StatusInternalServerError, rw.Code)
	rb := decodeBody(t, rw)
	assert.Equal(t, false, rb["ok"])
	assert.Equal(t, pipeline.CodeKeywordScoringFailed, rb["error"])
}

func TestGenerateCalendarSync(t *testing.T) {
	env := newTestEnv(&stubGenerator{})
	w := env.do(t, http.MethodPost, "/api/generate-calendar", []byte(`{"posts_per_week":1}`))

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["ok"])
	posts, ok := body["posts"].([]any)
	require.True(t, ok)
	assert.Len(t, posts, 1)
}

func TestGenerateCalendarSyncFailure(t *testing.T) {
	env := newTestEnv(&stubGenerator{selectErr: errors.New("scoring down")})
	w := env.do(t, http.MethodPost, "/api/generate-calendar", []byte(`{}`))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, pipeline.CodeKeywordScoringFailed, body["error"])
}

func TestCalendarWithoutStore(t *testing.T) {
	env := newTestEnv(&stubGenerator{})
	w := env.do(t, http.MethodGet, "/api/calendar", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["ok"])
	posts, ok := body["posts"].([]any)
	require.True(t, ok)
	assert.Empty(t, posts)
	assert.NotEmpty(t, body["week_start"])
}

func TestGetPostWithoutStore(t *testing.T) {
	env := newTestEnv(&stubGenerator{})
	w := env.do(t, http.MethodGet, "/api/post/some-id", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decodeBody(t, w)["error"])
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(&stubGenerator{})
	w := env.do(t, http.MethodOptions, "/api/generate/start", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
