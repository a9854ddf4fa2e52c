// Package scenario produces the synthetic telemetry feed: a fixed
// four-step data-exfiltration storyline interleaved with background
// noise, emitted onto the event bus on a timer.
package scenario

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/soclens/soclens/internal/bus"
	"github.com/soclens/soclens/internal/logging"
	"github.com/soclens/soclens/internal/metrics"
	"github.com/soclens/soclens/internal/models"
)

// Log line severities embedded in the rendered stream.
const (
	SeverityInfo     = "INFO"
	SeverityWarning  = "WARNING"
	SeverityCritical = "CRITICAL"
	SeveritySystem   = "system"
)

// DefaultTickInterval is the cadence of the live feed.
const DefaultTickInterval = 1500 * time.Millisecond

// narrativeSteps is the number of fixed storyline stages.
const narrativeSteps = 4

// Simulated fleet. The scenario host is excluded from filler lines so
// its activity stands out as the storyline escalates.
var fleetIPs = map[string]string{
	"Strive-Linux":      "10.214.252.84",
	"Mano-Linux-Debian": "10.214.252.85",
	"WEB-SERVER-03":     "10.10.1.5",
	"DEV-STATION-11":    "10.0.0.14",
	"DB-SERVER-01":      "10.0.0.8",
}

var users = []string{"jdoe", "admin", "svc_account", "guest", "dsmith"}

var externalIPs = []string{"8.8.8.8", "1.1.1.1", "208.67.222.222", "198.51.100.55"}

// Storyline constants.
const (
	scenarioHost   = "Mano-Linux-Debian"
	scenarioUser   = "dsmith"
	exfilDomain    = "transfer.sh"
	exfilIP        = "185.199.108.153"
	sensitiveFile  = "/home/dsmith/documents/project_europa_brief.docx"
	stagingFile    = "/tmp/archive.zip"
	dnsExfilDomain = "c2-server-blog.com"
)

// Generator walks the exfiltration storyline and fills the gaps with
// synthetic noise. State survives timer stops: a reconnecting client
// resumes the storyline where it left off.
type Generator struct {
	mu    sync.Mutex
	bus   *bus.Bus
	log   *logging.Logger
	rng   *rand.Rand
	faker *gofakeit.Faker
	now   func() time.Time

	step       int
	logCounter int
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock substitutes the wall clock, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithSeed seeds the generator's randomness, for deterministic tests.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.rng = rand.New(rand.NewSource(seed))
		g.faker = gofakeit.New(seed)
	}
}

// NewGenerator creates a generator publishing to b.
func NewGenerator(b *bus.Bus, log *logging.Logger, opts ...Option) *Generator {
	if log == nil {
		log = logging.Default()
	}
	g := &Generator{
		bus:   b,
		log:   log,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		faker: gofakeit.New(time.Now().UnixNano()),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Tick advances the feed by one interval: either a storyline step, a
// storyline reset, or one filler log line. Safe to call directly from
// tests without a timer.
func (g *Generator) Tick() {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch {
	case g.logCounter > 20 && g.logCounter%15 == 0 && g.step < narrativeSteps:
		g.runStep(g.step)
		g.step++
	case g.step == narrativeSteps && g.logCounter%40 == 0:
		g.step = 0
		g.emitLog("[system] Scenario reset. Waiting for next execution cycle.", SeveritySystem)
	default:
		g.publishLog(g.fillerLine())
	}

	g.logCounter++
	metrics.GeneratorTicks.Inc()
}

// AnnounceConnected emits the system line marking the feed going live.
func (g *Generator) AnnounceConnected() {
	g.emitLog("[system] Live log stream connected.", SeveritySystem)
}

func (g *Generator) runStep(step int) {
	switch step {
	case 0:
		// Discovery: the user reads a sensitive file.
		g.emitLog(fmt.Sprintf("[file] user=%s host=%s action=read path=%s",
			scenarioUser, scenarioHost, sensitiveFile), SeverityInfo)
	case 1:
		// Staging: the file is compressed into an archive.
		g.emitLog(fmt.Sprintf("[process] user=%s host=%s process=zip ppid=bash cmdline=%q",
			scenarioUser, scenarioHost, "zip "+stagingFile+" "+sensitiveFile), SeverityWarning)
		a := g.baseAlert()
		a.AlertType = models.AlertFileStaging
		a.Host = scenarioHost
		a.SrcIP = fleetIPs[scenarioHost]
		a.Score = 0.78
		a.MitreTactic = "TA0009"
		a.Evidence = "zip process used to create archive " + stagingFile
		a.TopRuleHits = []string{"Suspicious Compression Activity"}
		a.TopFeatures = []string{"process:zip", "cmdline:zip", "file_path:" + stagingFile}
		g.publishAlert(a)
	case 2:
		// Exfiltration: a large upload leaves the network.
		g.emitLog(fmt.Sprintf("[net] src=%s dst=%s:443 protocol=tcp bytes_sent=12582912",
			fleetIPs[scenarioHost], exfilIP), SeverityCritical)
		a := g.baseAlert()
		a.AlertType = models.AlertDataExfiltration
		a.Host = scenarioHost
		a.SrcIP = fleetIPs[scenarioHost]
		a.DstIP = exfilIP
		a.Score = 0.95
		a.MitreTactic = "TA0010"
		a.Evidence = fmt.Sprintf("Large upload (12.5MB) to %s (%s)", exfilDomain, exfilIP)
		a.TopRuleHits = []string{"Exfiltration to File Sharing Site", "Anomalous Data Transfer Size"}
		a.TopFeatures = []string{"dst_ip:" + exfilIP, "bytes_sent>10MB", "domain:" + exfilDomain}
		g.publishAlert(a)
	case 3:
		// Stealthier exfiltration over DNS.
		const encodedData = "4a6f686e20446f65207061796c6f6164"
		g.emitLog(fmt.Sprintf("[dns] host=%s query=%s.%s type=A",
			scenarioHost, encodedData, dnsExfilDomain), SeverityWarning)
		a := g.baseAlert()
		a.AlertType = models.AlertDNSExfiltration
		a.Host = scenarioHost
		a.SrcIP = fleetIPs[scenarioHost]
		a.Score = 0.88
		a.MitreTactic = "TA0010"
		a.Evidence = "Anomalous DNS query pattern detected to " + dnsExfilDomain
		a.TopRuleHits = []string{"DNS Tunneling Heuristic", "High-entropy Subdomain"}
		a.TopFeatures = []string{"domain:" + dnsExfilDomain, "query_length>64", "entropy_level:high"}
		g.publishAlert(a)
	}
}

// baseAlert builds an alert with plausible defaults; narrative steps
// overwrite the fields that matter for their stage.
func (g *Generator) baseAlert() models.Alert {
	srcHost := g.randomHost(false)
	return models.Alert{
		ID:          models.NewAlertID(),
		Time:        models.Timestamp(g.now()),
		Host:        "unknown",
		AlertType:   models.AlertNetworkAnomaly,
		Score:       0.5,
		MitreTactic: "TA0005",
		SrcIP:       fleetIPs[srcHost],
		DstIP:       fmt.Sprintf("203.0.113.%d", g.rng.Intn(254)+1),
		Evidence:    "N/A",
		Status:      models.StatusNew,

		RuleBasedScore:            g.rng.Float64(),
		AnomalyDetectionScore:     g.rng.Float64(),
		SupervisedClassifierScore: g.rng.Float64(),
		TopRuleHits:               []string{},
		TopFeatures:               []string{},
	}
}

// fillerLine renders one background log line with weighted category
// selection: dns 40%, http 20%, auth success 20%, auth failure 10%,
// firewall 10%.
func (g *Generator) fillerLine() string {
	ts := models.Timestamp(g.now())
	host := g.randomHost(true)
	user := users[g.rng.Intn(len(users))]

	r := g.rng.Float64()
	switch {
	case r < 0.4:
		return fmt.Sprintf("%s [INFO] [dns] host=%s query for %s from %s",
			ts, host, g.faker.DomainName(), fleetIPs[host])
	case r < 0.6:
		return fmt.Sprintf("%s [INFO] [http] host=%s user=%s GET /index.html from %s",
			ts, host, user, externalIPs[g.rng.Intn(len(externalIPs))])
	case r < 0.8:
		return fmt.Sprintf("%s [INFO] [auth] user=%s host=%s action=login_success src_ip=192.168.1.100",
			ts, user, host)
	case r < 0.9:
		return fmt.Sprintf("%s [WARNING] [auth] user=root host=%s action=login_failed src_ip=103.44.22.11",
			ts, host)
	default:
		return fmt.Sprintf("%s [INFO] [firewall] host=corp-firewall-01 action=allow src=%s dst=%s port=443",
			ts, fleetIPs[host], externalIPs[g.rng.Intn(len(externalIPs))])
	}
}

// randomHost picks a fleet host; excludeScenario keeps the storyline
// host out of the background noise.
func (g *Generator) randomHost(excludeScenario bool) string {
	names := make([]string, 0, len(fleetIPs))
	for name := range fleetIPs {
		if excludeScenario && name == scenarioHost {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names[g.rng.Intn(len(names))]
}

func (g *Generator) emitLog(msg, severity string) {
	g.publishLog(fmt.Sprintf("%s [%s] %s", models.Timestamp(g.now()), severity, msg))
}

func (g *Generator) publishLog(line string) {
	g.bus.Publish(bus.TopicLog, line)
	metrics.EventsPublished.WithLabelValues(bus.TopicLog).Inc()
}

func (g *Generator) publishAlert(a models.Alert) {
	g.bus.Publish(bus.TopicAlert, a)
	metrics.EventsPublished.WithLabelValues(bus.TopicAlert).Inc()
}
