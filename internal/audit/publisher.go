package audit

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrQueueFull is returned by Emit when the async queue has no room.
var ErrQueueFull = errors.New("audit queue full")

// Publisher captures structured audit events. It is append-only and uses the
// storage layer for persistence so tests can swap sinks easily. With a queue
// configured, Emit only enqueues and a Worker drains into the store.
type Publisher struct {
	store   Store
	queue   chan Event
	logger  *slog.Logger
	metrics *Metrics
}

type Option func(*Publisher)

// WithQueue makes Emit asynchronous with the given buffer size.
func WithQueue(size int) Option {
	return func(p *Publisher) {
		if size > 0 {
			p.queue = make(chan Event, size)
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	p.metrics.incEmitted(event)
	if p.queue == nil {
		return p.store.Append(ctx, event)
	}
	select {
	case p.queue <- event:
		p.metrics.setDepth(len(p.queue))
		return nil
	default:
		p.metrics.incDropped()
		return ErrQueueFull
	}
}

// Worker returns a worker draining this publisher's queue, or nil when the
// publisher is synchronous.
func (p *Publisher) Worker() *Worker {
	if p.queue == nil {
		return nil
	}
	return NewWorker(p.store, p.queue, p.logger, p.metrics)
}
