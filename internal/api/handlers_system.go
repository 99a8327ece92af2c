package api

import (
	"net/http"

	"github.com/merfai/merf-go/internal/metrics"
	"github.com/merfai/merf-go/internal/service"
)

type SystemHandler struct {
	dreams  *service.DreamService
	metrics *metrics.Collector
}

func NewSystemHandler(dreams *service.DreamService, mc *metrics.Collector) *SystemHandler {
	return &SystemHandler{dreams: dreams, metrics: mc}
}

type healthResponse struct {
	Status string `json:"status"`
	DB     string `json:"db"`
}

// Health handles GET /healthz. The database check is a cheap single-row
// list, not a full table scan.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", DB: "ok"}
	status := http.StatusOK

	if _, err := h.dreams.List(r.Context(), 1); err != nil {
		resp.Status = "degraded"
		resp.DB = err.Error()
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, resp)
}

// Stats handles GET /api/stats.
func (h *SystemHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if h.metrics == nil {
		writeError(w, http.StatusServiceUnavailable, "metrics collection disabled")
		return
	}
	writeJSON(w, http.StatusOK, h.metrics.Snapshot())
}
