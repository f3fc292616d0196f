package rest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/italolelis/batch_restyler/internal/orchestrator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedSource struct {
	snap orchestrator.Snapshot
}

func (s *fixedSource) Snapshot() orchestrator.Snapshot { return s.snap }

func TestHealthz(t *testing.T) {
	handler := NewStatusHandler(&fixedSource{}, nil)

	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestStatus_ReflectsSnapshot(t *testing.T) {
	source := &fixedSource{snap: orchestrator.Snapshot{
		StartedAt:    time.Now().Add(-5 * time.Minute),
		TotalFiles:   7,
		TotalBatches: 3,
		CurrentBatch: 2,
		Phase:        orchestrator.PhaseIdling,
		Uploaded:     6,
		Succeeded:    2,
		Failed:       1,
	}}

	handler := NewStatusHandler(source, nil)

	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got struct {
		TotalFiles   int    `json:"total_files"`
		TotalBatches int    `json:"total_batches"`
		CurrentBatch int    `json:"current_batch"`
		Phase        string `json:"phase"`
		Uploaded     int    `json:"uploaded"`
		Succeeded    int    `json:"succeeded"`
		Failed       int    `json:"failed"`
		Running      string `json:"running"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

	assert.Equal(t, 7, got.TotalFiles)
	assert.Equal(t, 3, got.TotalBatches)
	assert.Equal(t, 2, got.CurrentBatch)
	assert.Equal(t, "idling", got.Phase)
	assert.Equal(t, 6, got.Uploaded)
	assert.Equal(t, 2, got.Succeeded)
	assert.Equal(t, 1, got.Failed)
	assert.NotEmpty(t, got.Running)
}

func TestStatus_BeforeRunStarts(t *testing.T) {
	handler := NewStatusHandler(&fixedSource{}, nil)

	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.NotContains(t, got, "running")
}

func TestMetrics_MountedWhenProvided(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("# HELP"))
	})

	handler := NewStatusHandler(&fixedSource{}, metrics)

	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "# HELP")
}
