package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/soclens/soclens/internal/handlers"
	"github.com/soclens/soclens/internal/middleware"
	"github.com/soclens/soclens/internal/stream"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	LogStream   *stream.Endpoint
	AlertStream *stream.Endpoint
	Ingest      *handlers.IngestHandler
	List        *handlers.ListHandler
	Health      *handlers.HealthHandler
}

// NewRouter constructs a ServeMux with the API routes registered and
// the middleware chain applied.
func NewRouter(h Handlers) http.Handler {
	mux := http.NewServeMux()

	// Live event distribution
	mux.Handle("/api/logs/stream", h.LogStream)
	mux.Handle("/api/alerts/stream", h.AlertStream)

	// Alert ingestion and read-back
	mux.Handle("/api/alerts/ingest", h.Ingest)
	mux.Handle("/api/alerts/list", h.List)

	// Health endpoints
	mux.HandleFunc("/healthz", h.Health.Health)
	mux.HandleFunc("/readyz", h.Health.Ready)

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	cors := middleware.CORS(middleware.DefaultCORSConfig())
	return cors(middleware.RequestID(mux))
}
