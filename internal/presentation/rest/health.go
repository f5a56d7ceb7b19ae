package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// ServiceName is reported by the probes.
const ServiceName = "factoring-engine"

// readinessTimeout bounds the store ping of one readiness probe.
const readinessTimeout = 2 * time.Second

// Pinger is satisfied by the memory store and the postgres unit of work.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves liveness, readiness and metrics over HTTP.
type HealthHandler struct {
	store   Pinger
	metrics http.Handler
	logger  *slog.Logger
}

// NewHealthHandler creates the probe handler. metrics may be nil, in which
// case /metrics is not mounted.
func NewHealthHandler(store Pinger, metrics http.Handler, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{store: store, metrics: metrics, logger: logger}
}

// RegisterRoutes attaches the probe routes to the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.liveness)
	mux.HandleFunc("GET /readyz", h.readiness)
	if h.metrics != nil {
		mux.Handle("GET /metrics", h.metrics)
	}
}

func (h *HealthHandler) liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": ServiceName,
	})
}

func (h *HealthHandler) readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("readiness check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "unavailable",
			"service": ServiceName,
			"store":   "unreachable",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ready",
		"service": ServiceName,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck
}
