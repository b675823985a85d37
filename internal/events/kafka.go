package events

import (
	"context"
	"errors"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/newsdesk/newsdesk/pkg/logger"
	kafka "github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafka.Writer used here.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher buffers events and writes them from a single background
// worker so request handlers never block on the broker.
type KafkaPublisher struct {
	writer messageWriter
	queue  chan Event
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// ErrQueueFull is returned when the buffer is saturated.
var ErrQueueFull = errors.New("event queue full")

// ErrClosed is returned after Close.
var ErrClosed = errors.New("publisher closed")

// NewKafkaPublisher creates a publisher writing to topic on brokers.
func NewKafkaPublisher(brokers []string, topic string, buffer int) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		RequiredAcks: kafka.RequireAll,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
	}
	return newKafkaPublisher(w, buffer)
}

func newKafkaPublisher(w messageWriter, buffer int) *KafkaPublisher {
	if buffer <= 0 {
		buffer = 1024
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &KafkaPublisher{writer: w, queue: make(chan Event, buffer), ctx: ctx, cancel: cancel}
	p.wg.Add(1)
	go p.run()
	return p
}

func (p *KafkaPublisher) run() {
	defer p.wg.Done()
	for e := range p.queue {
		msg, err := encode(e)
		if err != nil {
			logger.Errorf("encode event %s: %v", e.Type, err)
			continue
		}
		if err := p.writer.WriteMessages(p.ctx, msg); err != nil {
			logger.Warnf("kafka write %s (key=%s): %v", e.Type, e.Key, err)
		}
	}
}

func encode(e Event) (kafka.Message, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(e.Key),
		Value: b,
		Time:  e.OccurredAt,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(e.Type)},
		},
	}, nil
}

// Publish enqueues e without waiting for the broker.
func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.queue <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

// Close drains queued events and closes the writer.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
	p.cancel()
	return p.writer.Close()
}
