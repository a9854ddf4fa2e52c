package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soclens/soclens/internal/models"
)

func testAlert(id string) models.Alert {
	return models.Alert{
		ID:        id,
		Time:      "2026-09-01T10:00:00Z",
		Host:      "WEB-SERVER-03",
		AlertType: models.AlertBeaconing,
		Score:     0.82,
		Status:    models.StatusNew,
	}
}

func readRecords(t *testing.T, path string) []Record {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var recs []Record
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var rec Record
		require.NoError(t, json.Unmarshal(sc.Bytes(), &rec))
		recs = append(recs, rec)
	}
	require.NoError(t, sc.Err())
	return recs
}

func TestAppendWritesOneLinePerRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	w := NewWriter(path)
	w.now = func() time.Time {
		return time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC)
	}

	require.NoError(t, w.Append(testAlert("alert-1")))
	require.NoError(t, w.Append(testAlert("alert-2")))

	recs := readRecords(t, path)
	require.Len(t, recs, 2)
	assert.Equal(t, "2026-09-01T10:30:00Z", recs[0].T)
	assert.Equal(t, "alert-1", recs[0].Alert.ID)
	assert.Equal(t, "alert-2", recs[1].Alert.ID)
	assert.Equal(t, models.AlertBeaconing, recs[0].Alert.AlertType)
}

func TestAppendCreatesFileLazily(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	w := NewWriter(path)

	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err), "file must not exist before first append")

	require.NoError(t, w.Append(testAlert("alert-1")))

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestAppendReturnsErrorOnUnwritablePath(t *testing.T) {
	// A directory cannot be opened for appending.
	w := NewWriter(t.TempDir())

	err := w.Append(testAlert("alert-1"))
	assert.Error(t, err)
}

func TestNewWriterDefaultsPath(t *testing.T) {
	assert.Equal(t, DefaultPath, NewWriter("").Path())
	assert.Equal(t, "/var/log/soclens.ndjson", NewWriter("/var/log/soclens.ndjson").Path())
}
