// Package rest serves the run's read-only observability surface. The
// endpoints observe the controller's published snapshot; nothing here can
// drive or alter the run.
package rest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/italolelis/batch_restyler/internal/logctx"
	"github.com/italolelis/batch_restyler/internal/orchestrator"
)

// ProgressSource exposes the controller's current progress view.
type ProgressSource interface {
	Snapshot() orchestrator.Snapshot
}

// StatusHandler wires the status and metrics endpoints.
type StatusHandler struct {
	source  ProgressSource
	metrics http.Handler
}

func NewStatusHandler(source ProgressSource, metrics http.Handler) *StatusHandler {
	return &StatusHandler{source: source, metrics: metrics}
}

func (h *StatusHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", h.handleHealth)
	r.Get("/status", h.handleStatus)

	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics)
	}

	return r
}

func (h *StatusHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type statusResponse struct {
	orchestrator.Snapshot
	Running string `json:"running,omitempty"`
}

func (h *StatusHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	logger := logctx.LoggerFromContext(r.Context())

	snap := h.source.Snapshot()

	resp := statusResponse{Snapshot: snap}
	if !snap.StartedAt.IsZero() {
		resp.Running = humanize.RelTime(snap.StartedAt, time.Now(), "", "")
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error("failed to encode status response", "err", err)
	}
}
