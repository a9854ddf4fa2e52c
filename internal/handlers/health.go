package handlers

import (
	"net/http"

	"github.com/soclens/soclens/internal/bus"
	"github.com/soclens/soclens/internal/store"
)

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	store *store.AlertStore
	bus   *bus.Bus
}

// NewHealthHandler creates probe handlers over the shared state.
func NewHealthHandler(s *store.AlertStore, b *bus.Bus) *HealthHandler {
	return &HealthHandler{store: s, bus: b}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
		"stats": map[string]int{
			"alerts_stored":     h.store.Len(),
			"log_subscribers":   h.bus.SubscriberCount(bus.TopicLog),
			"alert_subscribers": h.bus.SubscriberCount(bus.TopicAlert),
		},
	})
}
