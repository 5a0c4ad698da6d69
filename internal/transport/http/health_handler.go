package http

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/render"

	"csvaudit/internal/infrastructure"
)

// HealthResponse is the body of the health endpoints
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Uptime    string            `json:"uptime"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	version string
	dataDir string
	started time.Time
	logger  *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version, dataDir string, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		version: version,
		dataDir: dataDir,
		started: time.Now(),
		logger:  infrastructure.WithComponent(logger, "health_handler"),
	}
}

// HealthCheck handles GET /healthz. It reports liveness only.
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.response("ok", nil))
}

// ReadinessCheck handles GET /readyz: the data directory must be readable
func (h *HealthHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"data_dir": "ok"}
	status := "ok"

	info, err := os.Stat(h.dataDir)
	switch {
	case err != nil:
		checks["data_dir"] = "missing"
		status = "unavailable"
	case !info.IsDir():
		checks["data_dir"] = "not a directory"
		status = "unavailable"
	}

	if status != "ok" {
		h.logger.WarnContext(r.Context(), "readiness check failed", slog.Any("checks", checks))
		render.Status(r, http.StatusServiceUnavailable)
	}
	render.JSON(w, r, h.response(status, checks))
}

func (h *HealthHandler) response(status string, checks map[string]string) HealthResponse {
	return HealthResponse{
		Status:    status,
		Version:   h.version,
		Uptime:    time.Since(h.started).Round(time.Second).String(),
		Timestamp: time.Now().UTC(),
		Checks:    checks,
	}
}
