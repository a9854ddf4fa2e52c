package models

import (
	"fmt"
	"math/rand"
	"time"
)

// AlertStatus tracks the triage state of an alert.
type AlertStatus string

const (
	StatusNew           AlertStatus = "New"
	StatusInvestigating AlertStatus = "Investigating"
	StatusResolved      AlertStatus = "Resolved"
)

// AlertType is the closed set of detection categories.
type AlertType string

const (
	AlertDataExfiltration  AlertType = "DataExfiltration"
	AlertDNSExfiltration   AlertType = "DNSExfiltration"
	AlertFileStaging       AlertType = "FileStaging"
	AlertNetworkAnomaly    AlertType = "NetworkAnomaly"
	AlertProcessAnomaly    AlertType = "ProcessAnomaly"
	AlertLateralMovement   AlertType = "LateralMovement"
	AlertBeaconing         AlertType = "Beaconing"
	AlertFileAccess        AlertType = "FileAccess"
	AlertNetcatExecution   AlertType = "NetcatExecution"
	AlertShortTCPConnBurst AlertType = "ShortTcpConnectionBurst"
)

// AlertTypes lists every valid alert type, in a stable order.
func AlertTypes() []AlertType {
	return []AlertType{
		AlertDataExfiltration,
		AlertDNSExfiltration,
		AlertFileStaging,
		AlertNetworkAnomaly,
		AlertProcessAnomaly,
		AlertLateralMovement,
		AlertBeaconing,
		AlertFileAccess,
		AlertNetcatExecution,
		AlertShortTCPConnBurst,
	}
}

// Valid reports whether t is one of the known alert types.
func (t AlertType) Valid() bool {
	for _, known := range AlertTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// Alert is one detected security event with its severity score and
// supporting evidence. The three sub-scores expose how the composite
// score was derived.
type Alert struct {
	ID          string      `json:"id"`
	Time        string      `json:"time"`
	Host        string      `json:"host"`
	AlertType   AlertType   `json:"alertType"`
	Score       float64     `json:"score"`
	MitreTactic string      `json:"mitreTactic"`
	SrcIP       string      `json:"srcIp"`
	DstIP       string      `json:"dstIp"`
	Evidence    string      `json:"evidence"`
	Status      AlertStatus `json:"status"`

	RuleBasedScore            float64  `json:"ruleBasedScore"`
	AnomalyDetectionScore     float64  `json:"anomalyDetectionScore"`
	SupervisedClassifierScore float64  `json:"supervisedClassifierScore"`
	TopRuleHits               []string `json:"topRuleHits"`
	TopFeatures               []string `json:"topFeatures"`
}

// IngestAlertRequest is the alert payload accepted by the ingest endpoint:
// an Alert minus the server-derived id, time and status. Score fields are
// pointers so that absent and zero can be told apart during validation.
type IngestAlertRequest struct {
	Host        string   `json:"host"`
	AlertType   string   `json:"alertType"`
	Score       *float64 `json:"score"`
	MitreTactic string   `json:"mitreTactic"`
	SrcIP       string   `json:"srcIp"`
	DstIP       string   `json:"dstIp"`
	Evidence    string   `json:"evidence"`

	RuleBasedScore            *float64 `json:"ruleBasedScore"`
	AnomalyDetectionScore     *float64 `json:"anomalyDetectionScore"`
	SupervisedClassifierScore *float64 `json:"supervisedClassifierScore"`
	TopRuleHits               []string `json:"topRuleHits"`
	TopFeatures               []string `json:"topFeatures"`
}

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewAlertID generates a unique alert identifier: millisecond timestamp
// plus a random base36 suffix. IDs are never reused.
func NewAlertID() string {
	suffix := make([]byte, 5)
	for i := range suffix {
		suffix[i] = idAlphabet[rand.Intn(len(idAlphabet))]
	}
	return fmt.Sprintf("alert-%d-%s", time.Now().UnixMilli(), suffix)
}

// Timestamp renders t in the ISO-8601 form used on the wire.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
