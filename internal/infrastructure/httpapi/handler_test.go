package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LayoffTracker/internal/domain"
	"LayoffTracker/internal/usecase"
)

type fakeSyncer struct {
	summary domain.SyncSummary
	err     error
}

func (f *fakeSyncer) Sync(context.Context) (domain.SyncSummary, error) {
	return f.summary, f.err
}

type fakeLister struct {
	events []domain.LayoffEvent
	err    error
}

func (f *fakeLister) List(context.Context) ([]domain.LayoffEvent, error) {
	return f.events, f.err
}

type fakeSweeper struct {
	duplicates domain.CleanupResult
	oversized  domain.CleanupResult
	err        error
}

func (f *fakeSweeper) CleanupDuplicates(context.Context) (domain.CleanupResult, error) {
	return f.duplicates, f.err
}

func (f *fakeSweeper) CleanupOversized(context.Context) (domain.CleanupResult, error) {
	return f.oversized, f.err
}

func newTestRouter(t *testing.T, syncer Syncer, lister Lister, sweeper Sweeper) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return NewRouter(NewHandler(syncer, lister, sweeper, nil), RouterOptions{
		CORSOrigins: []string{"http://localhost:5173"},
		Gatherer:    prometheus.NewRegistry(),
	})
}

func serve(t *testing.T, r http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequestWithContext(t.Context(), method, path, nil)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestListLayoffs(t *testing.T) {
	lister := &fakeLister{events: []domain.LayoffEvent{{
		ID:               7,
		CompanyName:      "Acme",
		LayoffDate:       time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		EmployeesLaidOff: domain.IntPtr(1200),
		Country:          domain.CountryUSA,
		Industry:         domain.DefaultIndustry,
		SourceURL:        "https://example.com/acme",
	}}}
	r := newTestRouter(t, &fakeSyncer{}, lister, &fakeSweeper{})

	w := serve(t, r, http.MethodGet, "/api/layoffs")
	require.Equal(t, http.StatusOK, w.Code)

	var body []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "Acme", body[0]["company_name"])
	assert.Equal(t, float64(1200), body[0]["employees_laid_off"])
	assert.Equal(t, "https://example.com/acme", body[0]["source_url"])
}

func TestListLayoffsError(t *testing.T) {
	r := newTestRouter(t, &fakeSyncer{}, &fakeLister{err: errors.New("database unavailable")}, &fakeSweeper{})

	w := serve(t, r, http.MethodGet, "/api/layoffs")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"database unavailable"}`, w.Body.String())
}

func TestSyncLayoffs(t *testing.T) {
	syncer := &fakeSyncer{summary: domain.SyncSummary{
		Message:      "Sync complete",
		Saved:        2,
		Skipped:      5,
		TotalFetched: 7,
		Events:       []domain.LayoffEvent{{CompanyName: "hidden"}},
	}}
	r := newTestRouter(t, syncer, &fakeLister{}, &fakeSweeper{})

	w := serve(t, r, http.MethodPost, "/api/layoffs/sync")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Sync complete","saved":2,"skipped":5,"total_fetched":7}`, w.Body.String())
}

func TestSyncLayoffsConflict(t *testing.T) {
	r := newTestRouter(t, &fakeSyncer{err: fmt.Errorf("manual trigger: %w", usecase.ErrSyncInProgress)}, &fakeLister{}, &fakeSweeper{})

	w := serve(t, r, http.MethodPost, "/api/layoffs/sync")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "sync already in progress")
}

func TestCleanupRoutes(t *testing.T) {
	sweeper := &fakeSweeper{
		duplicates: domain.CleanupResult{Message: "Cleanup complete", Deleted: 3},
		oversized:  domain.CleanupResult{Message: "Large entries cleanup complete", Deleted: 1},
	}
	r := newTestRouter(t, &fakeSyncer{}, &fakeLister{}, sweeper)

	w := serve(t, r, http.MethodPost, "/api/layoffs/cleanup")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Cleanup complete","deleted":3}`, w.Body.String())

	w = serve(t, r, http.MethodPost, "/api/layoffs/cleanup-large")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Large entries cleanup complete","deleted":1}`, w.Body.String())
}

func TestCleanupError(t *testing.T) {
	r := newTestRouter(t, &fakeSyncer{}, &fakeLister{}, &fakeSweeper{err: errors.New("delete failed")})

	w := serve(t, r, http.MethodPost, "/api/layoffs/cleanup-large")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"delete failed"}`, w.Body.String())
}

func TestStatusHealthAndMetrics(t *testing.T) {
	r := newTestRouter(t, &fakeSyncer{}, &fakeLister{}, &fakeSweeper{})

	w := serve(t, r, http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Layoff Tracker API is running")

	w = serve(t, r, http.MethodGet, "/health")
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())

	w = serve(t, r, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter(t, &fakeSyncer{}, &fakeLister{}, &fakeSweeper{})

	req, err := http.NewRequestWithContext(t.Context(), http.MethodOptions, "/api/layoffs/sync", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}
