// Package seeder generates synthetic alerts and pushes them at a
// running server's ingest endpoint. It exists to exercise the ingest
// path and to fill the dashboard during demos.
package seeder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/soclens/soclens/internal/logging"
	"github.com/soclens/soclens/internal/models"
)

// Config controls one seeding run.
type Config struct {
	URL      string
	Token    string
	Count    int
	Interval time.Duration
}

// Result summarizes a seeding run.
type Result struct {
	Sent   int
	Failed int
}

var tactics = []string{
	"TA0001", "TA0002", "TA0003", "TA0005",
	"TA0007", "TA0008", "TA0009", "TA0010", "TA0011",
}

var ruleHits = []string{
	"Anomalous Data Transfer Size",
	"Suspicious Compression Activity",
	"DNS Tunneling Heuristic",
	"Rare Parent-Child Process Pair",
	"Beacon Interval Regularity",
	"Netcat Listener Detected",
}

// Seeder produces randomized but schema-valid ingest payloads.
type Seeder struct {
	cfg    Config
	client *http.Client
	faker  *gofakeit.Faker
	rng    *rand.Rand
	log    *logging.Logger
}

// New creates a seeder. The zero Interval sends as fast as the server
// acknowledges.
func New(cfg Config, log *logging.Logger) *Seeder {
	if log == nil {
		log = logging.Default()
	}
	seed := time.Now().UnixNano()
	return &Seeder{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		faker:  gofakeit.New(seed),
		rng:    rand.New(rand.NewSource(seed)),
		log:    log,
	}
}

// Payload builds one random alert request. Every payload passes the
// server-side ingest validation.
func (s *Seeder) Payload() models.IngestAlertRequest {
	types := models.AlertTypes()
	alertType := types[s.rng.Intn(len(types))]
	host := s.faker.DomainName()

	return models.IngestAlertRequest{
		Host:        host,
		AlertType:   string(alertType),
		Score:       scoreP(s.rng.Float64()),
		MitreTactic: tactics[s.rng.Intn(len(tactics))],
		SrcIP:       s.faker.IPv4Address(),
		DstIP:       s.faker.IPv4Address(),
		Evidence:    fmt.Sprintf("%s activity observed on %s", alertType, host),

		RuleBasedScore:            scoreP(s.rng.Float64()),
		AnomalyDetectionScore:     scoreP(s.rng.Float64()),
		SupervisedClassifierScore: scoreP(s.rng.Float64()),
		TopRuleHits:               []string{ruleHits[s.rng.Intn(len(ruleHits))]},
		TopFeatures:               []string{"src_ip:" + s.faker.IPv4Address(), "user:" + s.faker.Username()},
	}
}

// Run posts cfg.Count payloads, pausing cfg.Interval between sends.
// Individual failures are logged and counted, not fatal.
func (s *Seeder) Run(ctx context.Context) (Result, error) {
	var res Result
	for i := 0; i < s.cfg.Count; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := s.post(ctx, s.Payload()); err != nil {
			s.log.Warn("failed to send alert", logging.Error(err))
			res.Failed++
		} else {
			res.Sent++
		}
		if s.cfg.Interval > 0 && i < s.cfg.Count-1 {
			select {
			case <-ctx.Done():
				return res, ctx.Err()
			case <-time.After(s.cfg.Interval):
			}
		}
	}
	return res, nil
}

func (s *Seeder) post(ctx context.Context, payload models.IngestAlertRequest) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.cfg.URL+"/api/alerts/ingest", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("ingest returned status %d", resp.StatusCode)
	}
	return nil
}

func scoreP(v float64) *float64 {
	return &v
}
