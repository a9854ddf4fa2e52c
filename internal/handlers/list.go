package handlers

import (
	"net/http"
	"strconv"

	"github.com/soclens/soclens/internal/models"
	"github.com/soclens/soclens/internal/store"
)

// DefaultListLimit is how many alerts the list endpoint returns when
// the caller does not ask for a specific count.
const DefaultListLimit = 200

// ListHandler is the read-only projection over the alert store.
type ListHandler struct {
	store *store.AlertStore
}

// NewListHandler creates the list endpoint over s.
func NewListHandler(s *store.AlertStore) *ListHandler {
	return &ListHandler{store: s}
}

func (h *ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed.")
		return
	}

	limit := DefaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeMessage(w, http.StatusBadRequest, "limit must be a positive integer.")
			return
		}
		limit = n
	}
	if limit > h.store.Capacity() {
		limit = h.store.Capacity()
	}

	writeJSON(w, http.StatusOK, map[string][]models.Alert{
		"alerts": h.store.List(limit),
	})
}
