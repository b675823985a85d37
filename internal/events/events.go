// Package events publishes domain events (post published, newsletter signup,
// author reviewed) to Kafka for downstream consumers such as the mailer.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/newsdesk/newsdesk/pkg/logger"
	"github.com/newsdesk/newsdesk/pkg/metrics"
)

// Event types.
const (
	PostPublished        = "post.published"
	NewsletterSubscribed = "newsletter.subscribed"
	AuthorReviewed       = "author.reviewed"
)

// Event is the envelope written to the bus. Key partitions related events.
type Event struct {
	Type       string                 `json:"type"`
	Key        string                 `json:"key"`
	OccurredAt time.Time              `json:"occurredAt"`
	Data       map[string]interface{} `json:"data"`
}

// New builds an event stamped with the current time.
func New(typ, key string, data map[string]interface{}) Event {
	return Event{Type: typ, Key: key, OccurredAt: time.Now().UTC(), Data: data}
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// LogPublisher only logs events; used when no broker is configured.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, e Event) error {
	logger.Debugf("event %s key=%s (no broker configured)", e.Type, e.Key)
	return nil
}

func (LogPublisher) Close() error { return nil }

// MemoryPublisher records events (tests).
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (m *MemoryPublisher) Publish(_ context.Context, e Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

func (m *MemoryPublisher) Close() error { return nil }

// Events returns a copy of everything published so far.
func (m *MemoryPublisher) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}

// Emit publishes e and logs failures; request paths never fail on event delivery.
func Emit(ctx context.Context, p Publisher, e Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, e); err != nil {
		metrics.EventsPublished.WithLabelValues(e.Type, "error").Inc()
		logger.Warnf("publish %s (key=%s) failed: %v", e.Type, e.Key, err)
		return
	}
	metrics.EventsPublished.WithLabelValues(e.Type, "ok").Inc()
}
