package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsHandler serves the Prometheus scrape endpoint
type MetricsHandler struct {
	handler http.Handler
}

// NewMetricsHandler wraps a ready scrape handler. A nil handler serves
// the default Prometheus registry.
func NewMetricsHandler(handler http.Handler) *MetricsHandler {
	if handler == nil {
		handler = promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{})
	}
	return &MetricsHandler{handler: handler}
}

// ServeHTTP handles GET /metrics
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.handler.ServeHTTP(w, r)
}
