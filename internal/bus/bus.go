// Package bus implements the in-process publish/subscribe channel that
// decouples the scenario generator and the ingest endpoint from the
// connected stream clients.
package bus

import (
	"log/slog"
	"sync"

	"github.com/soclens/soclens/internal/logging"
)

// Topic names carried by the bus.
const (
	TopicLog   = "log"
	TopicAlert = "alert"
)

// Handler receives every payload published on a subscribed topic.
// Handlers run synchronously on the publisher's goroutine and must not
// publish back onto the bus.
type Handler func(payload any)

type subscriber struct {
	topic   string
	fn      Handler
	removed bool // guarded by Bus.mu
}

// Subscription is an opaque handle identifying one active subscription.
// The zero value is inert: unsubscribing it is a no-op.
type Subscription struct {
	s *subscriber
}

// Bus fans published payloads out to topic subscribers in subscription
// order. Registration and delivery are serialized independently so a
// handler may unsubscribe another subscription mid-delivery without
// deadlocking.
type Bus struct {
	mu     sync.Mutex
	topics map[string][]*subscriber

	// deliverMu serializes delivery so every subscriber observes
	// publishes on a topic in the exact order Publish was called.
	deliverMu sync.Mutex

	log *logging.Logger
}

// New creates an empty Bus. The logger records handler failures; pass
// nil to use the process default.
func New(log *logging.Logger) *Bus {
	if log == nil {
		log = logging.Default()
	}
	return &Bus{
		topics: make(map[string][]*subscriber),
		log:    log,
	}
}

// Subscribe registers fn to be invoked for every subsequent publish on
// topic, after all previously registered handlers.
func (b *Bus) Subscribe(topic string, fn Handler) Subscription {
	sub := &subscriber{topic: topic, fn: fn}

	b.mu.Lock()
	b.topics[topic] = append(b.topics[topic], sub)
	b.mu.Unlock()

	return Subscription{s: sub}
}

// Unsubscribe removes the subscription. Idempotent: repeated calls and
// calls with the zero Subscription are no-ops.
func (b *Bus) Unsubscribe(sub Subscription) {
	if sub.s == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if sub.s.removed {
		return
	}
	sub.s.removed = true

	subs := b.topics[sub.s.topic]
	for i, s := range subs {
		if s == sub.s {
			b.topics[sub.s.topic] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(b.topics[sub.s.topic]) == 0 {
		delete(b.topics, sub.s.topic)
	}
}

// Publish delivers payload to every active subscriber of topic, in
// subscription order. A handler that panics is logged and skipped; the
// remaining handlers still run. Subscriptions removed before their turn
// in the delivery loop are not invoked.
func (b *Bus) Publish(topic string, payload any) {
	b.deliverMu.Lock()
	defer b.deliverMu.Unlock()

	b.mu.Lock()
	snapshot := make([]*subscriber, len(b.topics[topic]))
	copy(snapshot, b.topics[topic])
	b.mu.Unlock()

	for _, sub := range snapshot {
		b.mu.Lock()
		alive := !sub.removed
		b.mu.Unlock()
		if !alive {
			continue
		}
		b.invoke(topic, sub, payload)
	}
}

func (b *Bus) invoke(topic string, sub *subscriber, payload any) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("subscriber handler panicked",
				logging.Topic(topic),
				slog.Any("panic", r),
			)
		}
	}()
	sub.fn(payload)
}

// SubscriberCount returns the number of active subscriptions on topic.
func (b *Bus) SubscriberCount(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.topics[topic])
}
