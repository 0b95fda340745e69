package handlers

import (
	"log/slog"
	"net/http"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	logger  *slog.Logger
	version string
}

// NewHealthHandler creates a new health check handler
func NewHealthHandler(logger *slog.Logger, version string) *HealthHandler {
	return &HealthHandler{
		logger:  logger,
		version: version,
	}
}

// HealthResponse is the health check payload
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// Health handles GET /healthz. Clients probe this endpoint to decide
// whether the server is reachable.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(h.logger, w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: h.version,
	})
}
