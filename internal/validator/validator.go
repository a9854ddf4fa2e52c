// Package validator checks incoming alert payloads at the ingestion
// boundary. Nothing past this boundary re-validates.
package validator

import (
	"fmt"
	"sort"

	"github.com/soclens/soclens/internal/models"
)

// FieldErrors collects validation failures keyed by JSON field name.
type FieldErrors map[string][]string

// Add records a failure message against field.
func (f FieldErrors) Add(field, msg string) {
	f[field] = append(f[field], msg)
}

// Any reports whether at least one failure was recorded.
func (f FieldErrors) Any() bool {
	return len(f) > 0
}

// Fields returns the failing field names, sorted.
func (f FieldErrors) Fields() []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateIngest checks an ingest payload: required fields present, the
// alert type inside the closed enum, and every score within [0,1].
func ValidateIngest(req *models.IngestAlertRequest) FieldErrors {
	errs := make(FieldErrors)

	requireString(errs, "host", req.Host)
	requireString(errs, "mitreTactic", req.MitreTactic)
	requireString(errs, "srcIp", req.SrcIP)
	requireString(errs, "dstIp", req.DstIP)
	requireString(errs, "evidence", req.Evidence)

	if req.AlertType == "" {
		errs.Add("alertType", "required")
	} else if !models.AlertType(req.AlertType).Valid() {
		errs.Add("alertType", fmt.Sprintf("unknown alert type %q", req.AlertType))
	}

	requireScore(errs, "score", req.Score)
	requireScore(errs, "ruleBasedScore", req.RuleBasedScore)
	requireScore(errs, "anomalyDetectionScore", req.AnomalyDetectionScore)
	requireScore(errs, "supervisedClassifierScore", req.SupervisedClassifierScore)

	if req.TopRuleHits == nil {
		errs.Add("topRuleHits", "required")
	}
	if req.TopFeatures == nil {
		errs.Add("topFeatures", "required")
	}

	return errs
}

func requireString(errs FieldErrors, field, value string) {
	if value == "" {
		errs.Add(field, "required")
	}
}

func requireScore(errs FieldErrors, field string, value *float64) {
	if value == nil {
		errs.Add(field, "required")
		return
	}
	if *value < 0 || *value > 1 {
		errs.Add(field, fmt.Sprintf("must be between 0 and 1, got %v", *value))
	}
}
