package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/soclens/soclens/internal/audit"
	"github.com/soclens/soclens/internal/bus"
	"github.com/soclens/soclens/internal/logging"
	"github.com/soclens/soclens/internal/metrics"
	"github.com/soclens/soclens/internal/models"
	"github.com/soclens/soclens/internal/store"
	"github.com/soclens/soclens/internal/validator"
)

// IngestHandler accepts externally generated alerts, validates them,
// stores them and fans them out to connected alert streams.
// Resubmitting an identical payload produces a fresh alert each time;
// there is no deduplication.
type IngestHandler struct {
	store *store.AlertStore
	bus   *bus.Bus
	audit *audit.Writer
	token string
	log   *logging.Logger
}

// NewIngestHandler wires the ingestion boundary. token is the shared
// bearer secret; an empty token makes every request fail with 500
// until the server is configured.
func NewIngestHandler(s *store.AlertStore, b *bus.Bus, a *audit.Writer, token string, log *logging.Logger) *IngestHandler {
	if log == nil {
		log = logging.Default()
	}
	return &IngestHandler{store: s, bus: b, audit: a, token: token, log: log}
}

func (h *IngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed.")
		return
	}

	if h.token == "" {
		h.log.ErrorContext(r.Context(), "ingest token is not configured on the server")
		metrics.AlertsRejected.WithLabelValues("unconfigured").Inc()
		writeMessage(w, http.StatusInternalServerError, "Server configuration error.")
		return
	}

	if !h.authorized(r) {
		metrics.AlertsRejected.WithLabelValues("unauthorized").Inc()
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req models.IngestAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.AlertsRejected.WithLabelValues("malformed").Inc()
		writeMessage(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	if errs := validator.ValidateIngest(&req); errs.Any() {
		h.log.InfoContext(r.Context(), "rejected invalid alert payload",
			"fields", errs.Fields())
		metrics.AlertsRejected.WithLabelValues("validation").Inc()
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message": "Invalid alert payload.",
			"errors":  errs,
		})
		return
	}

	alert := newAlert(&req)

	h.store.Add(alert)
	h.bus.Publish(bus.TopicAlert, alert)
	metrics.EventsPublished.WithLabelValues(bus.TopicAlert).Inc()
	metrics.AlertsIngested.Inc()

	// Best effort: a failed audit write never fails the request.
	if err := h.audit.Append(alert); err != nil {
		metrics.AuditWriteErrors.Inc()
		h.log.WarnContext(r.Context(), "failed to write ingest audit record",
			logging.AlertID(alert.ID), logging.Error(err))
	}

	h.log.InfoContext(r.Context(), "alert ingested",
		logging.AlertID(alert.ID),
		"alert_type", alert.AlertType,
		"host", alert.Host,
	)

	writeJSON(w, http.StatusAccepted, map[string]string{
		"message": "Alert ingested successfully.",
		"alertId": alert.ID,
	})
}

func (h *IngestHandler) authorized(r *http.Request) bool {
	got := []byte(r.Header.Get("Authorization"))
	want := []byte("Bearer " + h.token)
	if len(got) != len(want) {
		return false
	}
	return subtle.ConstantTimeCompare(got, want) == 1
}

// newAlert lifts a validated request into a full alert with the
// server-derived fields assigned.
func newAlert(req *models.IngestAlertRequest) models.Alert {
	return models.Alert{
		ID:          models.NewAlertID(),
		Time:        models.Timestamp(timeNow()),
		Host:        req.Host,
		AlertType:   models.AlertType(req.AlertType),
		Score:       *req.Score,
		MitreTactic: req.MitreTactic,
		SrcIP:       req.SrcIP,
		DstIP:       req.DstIP,
		Evidence:    req.Evidence,
		Status:      models.StatusNew,

		RuleBasedScore:            *req.RuleBasedScore,
		AnomalyDetectionScore:     *req.AnomalyDetectionScore,
		SupervisedClassifierScore: *req.SupervisedClassifierScore,
		TopRuleHits:               req.TopRuleHits,
		TopFeatures:               req.TopFeatures,
	}
}
