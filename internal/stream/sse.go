// Package stream adapts event bus topics into per-client Server-Sent
// Event responses.
package stream

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/soclens/soclens/internal/bus"
	"github.com/soclens/soclens/internal/logging"
	"github.com/soclens/soclens/internal/metrics"
)

// clientBuffer is how many frames a client may fall behind before
// frames are dropped. Delivery to a stalled client is best effort:
// once its buffer fills, further frames are counted in StreamDrops and
// discarded rather than blocking the publisher.
const clientBuffer = 64

// readyFrame is the handshake sent on the alert stream before any event.
var readyFrame = []byte(`{"ready":true}`)

// Lifecycle is notified on subscriber-count edges. The log stream uses
// it to start and stop the scenario generator.
type Lifecycle interface {
	StreamOpened(subscribers int)
	StreamClosed(subscribers int)
}

// Endpoint exposes one bus topic as a text/event-stream response.
// Each connected client owns one subscription for the lifetime of its
// request; the subscription is released on any exit path.
type Endpoint struct {
	bus       *bus.Bus
	topic     string
	encode    func(payload any) ([]byte, error)
	handshake []byte
	hooks     Lifecycle
	log       *logging.Logger
}

// NewLogStream builds the endpoint for the raw log line feed. hooks
// drives the generator lifecycle off the subscriber count. A nil log
// falls back to the process default.
func NewLogStream(b *bus.Bus, hooks Lifecycle, log *logging.Logger) *Endpoint {
	if log == nil {
		log = logging.Default()
	}
	return &Endpoint{
		bus:   b,
		topic: bus.TopicLog,
		encode: func(payload any) ([]byte, error) {
			line, ok := payload.(string)
			if !ok {
				return nil, fmt.Errorf("log payload is %T, want string", payload)
			}
			return []byte(line), nil
		},
		hooks: hooks,
		log:   log,
	}
}

// NewAlertStream builds the endpoint for the JSON alert feed. A nil
// log falls back to the process default.
func NewAlertStream(b *bus.Bus, log *logging.Logger) *Endpoint {
	if log == nil {
		log = logging.Default()
	}
	return &Endpoint{
		bus:       b,
		topic:     bus.TopicAlert,
		encode:    json.Marshal,
		handshake: readyFrame,
		log:       log,
	}
}

func (e *Endpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	frames := make(chan []byte, clientBuffer)
	sub := e.bus.Subscribe(e.topic, func(payload any) {
		data, err := e.encode(payload)
		if err != nil {
			e.log.WarnContext(r.Context(), "failed to encode stream payload",
				logging.Topic(e.topic), logging.Error(err))
			return
		}
		select {
		case frames <- data:
		default:
			// Client is not draining; drop rather than stall the bus.
			metrics.StreamDrops.WithLabelValues(e.topic).Inc()
		}
	})

	metrics.StreamClients.WithLabelValues(e.topic).Inc()
	defer func() {
		e.bus.Unsubscribe(sub)
		metrics.StreamClients.WithLabelValues(e.topic).Dec()
		if e.hooks != nil {
			e.hooks.StreamClosed(e.bus.SubscriberCount(e.topic))
		}
		e.log.InfoContext(r.Context(), "stream client disconnected", logging.Topic(e.topic))
	}()

	e.log.InfoContext(r.Context(), "stream client connected", logging.Topic(e.topic))
	if e.hooks != nil {
		e.hooks.StreamOpened(e.bus.SubscriberCount(e.topic))
	}

	if e.handshake != nil {
		if err := writeFrame(w, flusher, e.handshake); err != nil {
			return
		}
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case data := <-frames:
			if err := writeFrame(w, flusher, data); err != nil {
				e.log.WarnContext(ctx, "stream write failed",
					logging.Topic(e.topic), logging.Error(err))
				return
			}
		}
	}
}

func writeFrame(w http.ResponseWriter, flusher http.Flusher, data []byte) error {
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}
