package http

import (
	"log/slog"
	"net/http"

	"csvaudit/internal/infrastructure"
	"csvaudit/internal/websocket"
)

// ProgressHandler streams directory audit progress over a websocket
type ProgressHandler struct {
	hub    *websocket.Hub
	logger *slog.Logger
}

// NewProgressHandler creates a handler attaching clients to hub
func NewProgressHandler(hub *websocket.Hub, logger *slog.Logger) *ProgressHandler {
	return &ProgressHandler{
		hub:    hub,
		logger: infrastructure.WithComponent(logger, "progress_handler"),
	}
}

// ServeHTTP handles GET /ws
func (h *ProgressHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	websocket.ServeWS(h.hub, w, r, h.logger)
}
