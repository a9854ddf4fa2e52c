// Package audit appends ingested alerts to a newline-delimited JSON
// file. Writes are best effort: an audit failure never fails the
// request that triggered it.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/soclens/soclens/internal/models"
)

// DefaultPath is where ingest audit records land unless configured.
const DefaultPath = "/tmp/alerts_ingest.log"

// Record is one audit line: when the alert was accepted and the full
// alert as stored.
type Record struct {
	T     string       `json:"t"`
	Alert models.Alert `json:"alert"`
}

// Writer appends records to a fixed local path, serialized so lines
// never interleave.
type Writer struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewWriter creates a writer appending to path. Empty path falls back
// to DefaultPath. The file is created lazily on first append.
func NewWriter(path string) *Writer {
	if path == "" {
		path = DefaultPath
	}
	return &Writer{path: path, now: time.Now}
}

// Path returns the audit log location.
func (w *Writer) Path() string {
	return w.path
}

// Append writes one record. The returned error is informational;
// callers log it and move on.
func (w *Writer) Append(alert models.Alert) error {
	line, err := json.Marshal(Record{
		T:     models.Timestamp(w.now()),
		Alert: alert,
	})
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}
	line = append(line, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("append audit record: %w", err)
	}
	return nil
}
