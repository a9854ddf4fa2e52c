package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Event distribution metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soclens_events_published_total",
			Help: "Total number of events published per topic",
		},
		[]string{"topic"},
	)

	StreamClients = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "soclens_stream_clients",
			Help: "Currently connected stream clients per topic",
		},
		[]string{"topic"},
	)

	StreamDrops = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soclens_stream_dropped_frames_total",
			Help: "Frames dropped because a client could not keep up",
		},
		[]string{"topic"},
	)

	// Ingestion metrics
	AlertsIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "soclens_alerts_ingested_total",
			Help: "Alerts accepted via the ingest endpoint",
		},
	)

	AlertsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soclens_alerts_rejected_total",
			Help: "Alerts rejected by the ingest endpoint",
		},
		[]string{"reason"},
	)

	AuditWriteErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "soclens_audit_write_errors_total",
			Help: "Failed appends to the ingest audit log",
		},
	)

	// Generator metrics
	GeneratorTicks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "soclens_generator_ticks_total",
			Help: "Scenario generator timer ticks",
		},
	)
)
