package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/couchcryptid/weather-history-harvester/internal/adapter/http"
	"github.com/couchcryptid/weather-history-harvester/internal/harvest"
	"github.com/couchcryptid/weather-history-harvester/internal/observability"
)

type stubHarvester struct {
	err      error
	progress harvest.Progress
}

func (s *stubHarvester) CheckReadiness(_ context.Context) error { return s.err }
func (s *stubHarvester) Progress() harvest.Progress             { return s.progress }

func newTestServer(h *stubHarvester) *httpadapter.Server {
	return httpadapter.NewServer(":0", h, h, slog.Default())
}

func get(t *testing.T, srv *httpadapter.Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := get(t, newTestServer(&stubHarvester{}), "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenSessionOpen(t *testing.T) {
	rec := get(t, newTestServer(&stubHarvester{}), "/readyz")

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503WithoutSession(t *testing.T) {
	rec := get(t, newTestServer(&stubHarvester{err: errors.New("browser session is not open")}), "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "browser session is not open", body["error"])
}

func TestReadyzFollowsHarvesterSession(t *testing.T) {
	h := harvest.New(nil, "", nil, nil, slog.Default(), observability.NewMetricsForTesting())
	srv := httpadapter.NewServer(":0", h, h, slog.Default())

	rec := get(t, srv, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "browser session is not open")
}

func TestStatusReportsProgress(t *testing.T) {
	want := harvest.Progress{Start: "2024-01-01", End: "2024-12-31", CurrentDay: "2024-03-05", Recorded: 60, Skipped: 2, Failed: 2, Rows: 2880}
	rec := get(t, newTestServer(&stubHarvester{progress: want}), "/status")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var got harvest.Progress
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, want, got)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, newTestServer(&stubHarvester{}), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
