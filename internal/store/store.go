// Package store holds the bounded in-memory alert buffer. Nothing is
// persisted; a restart starts empty.
package store

import (
	"sync"

	"github.com/soclens/soclens/internal/models"
)

// DefaultCapacity bounds the store when no capacity is configured.
const DefaultCapacity = 500

// DefaultListLimit is how many alerts List returns when asked for zero.
const DefaultListLimit = 100

// AlertStore retains the most recent alerts, newest first.
// Safe for concurrent use.
type AlertStore struct {
	mu       sync.Mutex
	capacity int
	alerts   []models.Alert
}

// New creates a store bounded at capacity alerts. Non-positive values
// fall back to DefaultCapacity.
func New(capacity int) *AlertStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &AlertStore{
		capacity: capacity,
		alerts:   make([]models.Alert, 0, capacity),
	}
}

// Add inserts alert at the front. When the store exceeds its capacity
// the oldest entries are dropped.
func (s *AlertStore) Add(alert models.Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.alerts = append([]models.Alert{alert}, s.alerts...)
	if len(s.alerts) > s.capacity {
		s.alerts = s.alerts[:s.capacity]
	}
}

// List returns up to limit alerts, newest first, without mutating the
// store. Non-positive limits fall back to DefaultListLimit; limits past
// the stored count are truncated.
func (s *AlertStore) List(limit int) []models.Alert {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if limit > len(s.alerts) {
		limit = len(s.alerts)
	}
	out := make([]models.Alert, limit)
	copy(out, s.alerts[:limit])
	return out
}

// Len returns the number of alerts currently held.
func (s *AlertStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.alerts)
}

// Capacity returns the configured bound.
func (s *AlertStore) Capacity() int {
	return s.capacity
}
