package handler

import (
	"net/http"

	"github.com/adoptly/adoptly/internal/metrics"
)

// MetricsHandler exposes the in-memory counter snapshot.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Snapshot handles GET /metrics. Admin only.
func (h *MetricsHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, h.snapshotter.Snapshot())
}
