package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soclens/soclens/internal/audit"
	"github.com/soclens/soclens/internal/bus"
	"github.com/soclens/soclens/internal/models"
	"github.com/soclens/soclens/internal/store"
	"github.com/soclens/soclens/internal/validator"
)

const testToken = "sekrit-token"

func validPayload() map[string]any {
	return map[string]any{
		"host":                      "WEB-SERVER-03",
		"alertType":                 "Beaconing",
		"score":                     0.82,
		"mitreTactic":               "TA0011",
		"srcIp":                     "10.10.1.5",
		"dstIp":                     "198.51.100.55",
		"evidence":                  "Regular 60s callbacks to a rare external host",
		"ruleBasedScore":            0.7,
		"anomalyDetectionScore":     0.9,
		"supervisedClassifierScore": 0.85,
		"topRuleHits":               []string{"Beacon Interval Regularity"},
		"topFeatures":               []string{"interval:60s"},
	}
}

type ingestFixture struct {
	handler *IngestHandler
	store   *store.AlertStore
	bus     *bus.Bus
	audit   string
}

func newIngestFixture(t *testing.T, token string) *ingestFixture {
	t.Helper()
	s := store.New(10)
	b := bus.New(nil)
	auditPath := filepath.Join(t.TempDir(), "audit.log")
	return &ingestFixture{
		handler: NewIngestHandler(s, b, audit.NewWriter(auditPath), token, nil),
		store:   s,
		bus:     b,
		audit:   auditPath,
	}
}

func (f *ingestFixture) post(t *testing.T, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch v := body.(type) {
	case string:
		buf.WriteString(v)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(v))
	}

	req := httptest.NewRequest(http.MethodPost, "/api/alerts/ingest", &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

func TestIngestAcceptsValidAlert(t *testing.T) {
	f := newIngestFixture(t, testToken)

	var published []models.Alert
	f.bus.Subscribe(bus.TopicAlert, func(payload any) {
		published = append(published, payload.(models.Alert))
	})

	rr := f.post(t, testToken, validPayload())
	require.Equal(t, http.StatusAccepted, rr.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "Alert ingested successfully.", resp["message"])
	assert.True(t, strings.HasPrefix(resp["alertId"], "alert-"))

	// Stored, newest first.
	stored := f.store.List(1)
	require.Len(t, stored, 1)
	assert.Equal(t, resp["alertId"], stored[0].ID)
	assert.Equal(t, models.AlertBeaconing, stored[0].AlertType)
	assert.Equal(t, models.StatusNew, stored[0].Status)
	assert.NotEmpty(t, stored[0].Time)

	// Fanned out on the bus.
	require.Len(t, published, 1)
	assert.Equal(t, resp["alertId"], published[0].ID)

	// Audited as one NDJSON line.
	data, err := os.ReadFile(f.audit)
	require.NoError(t, err)
	var rec audit.Record
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &rec))
	assert.Equal(t, resp["alertId"], rec.Alert.ID)
}

func TestIngestRejectsMissingToken(t *testing.T) {
	f := newIngestFixture(t, testToken)

	rr := f.post(t, "", validPayload())

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, 0, f.store.Len(), "no mutation before auth")
}

func TestIngestRejectsWrongToken(t *testing.T) {
	f := newIngestFixture(t, testToken)

	rr := f.post(t, "wrong-token", validPayload())

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestIngestRejectsWrongTokenEvenWithInvalidBody(t *testing.T) {
	f := newIngestFixture(t, testToken)

	rr := f.post(t, "wrong-token", "{not json")

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestIngestFailsClosedWithoutServerToken(t *testing.T) {
	f := newIngestFixture(t, "")

	rr := f.post(t, testToken, validPayload())

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, 0, f.store.Len())
}

func TestIngestRejectsMalformedJSON(t *testing.T) {
	f := newIngestFixture(t, testToken)

	rr := f.post(t, testToken, "{truncated")

	require.Equal(t, http.StatusBadRequest, rr.Code)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "Invalid JSON body.", resp["message"])
}

func TestIngestRejectsOutOfRangeScore(t *testing.T) {
	f := newIngestFixture(t, testToken)

	payload := validPayload()
	payload["score"] = 1.5

	rr := f.post(t, testToken, payload)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	var resp struct {
		Message string                `json:"message"`
		Errors  validator.FieldErrors `json:"errors"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "Invalid alert payload.", resp.Message)
	assert.Contains(t, resp.Errors, "score")
	assert.Equal(t, 0, f.store.Len(), "no mutation on validation failure")
}

func TestIngestRejectsUnknownAlertType(t *testing.T) {
	f := newIngestFixture(t, testToken)

	payload := validPayload()
	payload["alertType"] = "SomethingElse"

	rr := f.post(t, testToken, payload)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	var resp struct {
		Errors validator.FieldErrors `json:"errors"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Contains(t, resp.Errors, "alertType")
}

func TestIngestAssignsFreshIDPerSubmission(t *testing.T) {
	f := newIngestFixture(t, testToken)

	first := f.post(t, testToken, validPayload())
	second := f.post(t, testToken, validPayload())
	require.Equal(t, http.StatusAccepted, first.Code)
	require.Equal(t, http.StatusAccepted, second.Code)

	var a, b map[string]string
	require.NoError(t, json.NewDecoder(first.Body).Decode(&a))
	require.NoError(t, json.NewDecoder(second.Body).Decode(&b))
	assert.NotEqual(t, a["alertId"], b["alertId"], "no deduplication")
	assert.Equal(t, 2, f.store.Len())
}

func TestIngestSurvivesAuditFailure(t *testing.T) {
	s := store.New(10)
	b := bus.New(nil)
	// A directory path makes every append fail.
	f := &ingestFixture{
		handler: NewIngestHandler(s, b, audit.NewWriter(t.TempDir()), testToken, nil),
		store:   s,
		bus:     b,
	}

	rr := f.post(t, testToken, validPayload())

	assert.Equal(t, http.StatusAccepted, rr.Code, "audit failure must not fail the request")
	assert.Equal(t, 1, s.Len())
}

func TestIngestRejectsNonPOST(t *testing.T) {
	f := newIngestFixture(t, testToken)

	req := httptest.NewRequest(http.MethodGet, "/api/alerts/ingest", nil)
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
