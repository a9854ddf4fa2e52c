package scenario

import (
	"sync"
	"time"

	"github.com/soclens/soclens/internal/logging"
)

// Controller ties the generator's timer to the log stream's subscriber
// count: the timer runs while at least one client is connected and
// stops on the 1->0 edge. At most one timer runs regardless of how
// many clients are connected.
type Controller struct {
	mu       sync.Mutex
	gen      *Generator
	interval time.Duration
	stopCh   chan struct{}
	log      *logging.Logger
}

// NewController creates a controller driving gen every interval.
// Non-positive intervals fall back to DefaultTickInterval.
func NewController(gen *Generator, interval time.Duration, log *logging.Logger) *Controller {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	if log == nil {
		log = logging.Default()
	}
	return &Controller{
		gen:      gen,
		interval: interval,
		log:      log,
	}
}

// StreamOpened is called by the log stream endpoint after a client
// subscribes; subscribers is the count the endpoint observed. The
// observation is not atomic with registration, so two first clients
// connecting at once can both read a count past 1. Any live subscriber
// therefore starts the timer; Start swallows the duplicates.
func (c *Controller) StreamOpened(subscribers int) {
	if subscribers >= 1 {
		c.Start()
	}
}

// StreamClosed is called after a client unsubscribes; subscribers is
// the remaining count.
func (c *Controller) StreamClosed(subscribers int) {
	if subscribers == 0 {
		c.Stop()
	}
}

// Start launches the timer. Idempotent: a running controller is left
// untouched. Generator state is not reset, so a returning audience
// resumes the storyline mid-flight.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopCh != nil {
		return
	}
	c.stopCh = make(chan struct{})

	c.gen.AnnounceConnected()
	c.log.Info("scenario generator started")

	go c.run(c.stopCh)
}

// Stop halts the timer. Idempotent. No timer survives the last
// subscriber leaving.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopCh == nil {
		return
	}
	close(c.stopCh)
	c.stopCh = nil

	c.log.Info("scenario generator stopped")
}

// Running reports whether the timer is active.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopCh != nil
}

func (c *Controller) run(stop chan struct{}) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.gen.Tick()
		}
	}
}
