// Package realtime pushes "tally changed" signals to connected clients.
// Signals carry no authoritative state; consumers re-query the tally.
package realtime

import (
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SubscriberQueueSize is the per-subscriber channel buffer.
const SubscriberQueueSize = 16

// EventType names a realtime signal.
type EventType string

const (
	EventTallyChanged EventType = "tally_changed"
	// EventResync asks every client to refetch everything, e.g. after the
	// cross-instance bridge reconnects and may have missed notifications.
	EventResync EventType = "resync"
)

// Event is one signal. CandidateID is empty for resync events.
type Event struct {
	Type        EventType `json:"type"`
	CandidateID string    `json:"candidate_id,omitempty"`
	VotesCount  int64     `json:"votes_count,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// SubscriberID identifies a subscription.
type SubscriberID int

type subscriber struct {
	candidateID string
	ch          chan Event
}

func (s *subscriber) wants(evt Event) bool {
	return s.candidateID == "" || evt.CandidateID == "" || evt.CandidateID == s.candidateID
}

// Bus fans events out to subscribers. Publish never blocks: a subscriber whose
// buffer is full misses the signal, which is safe because the next signal
// triggers a full refetch anyway.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[SubscriberID]*subscriber
	lastID      SubscriberID
	closed      bool
	logger      *slog.Logger
	metrics     *busMetrics
}

type busMetrics struct {
	published   *prometheus.CounterVec
	dropped     prometheus.Counter
	subscribers prometheus.Gauge
}

// NewBus creates a bus. reg may be nil to skip metrics.
func NewBus(reg prometheus.Registerer, logger *slog.Logger) *Bus {
	b := &Bus{
		subscribers: make(map[SubscriberID]*subscriber),
		logger:      logger,
	}
	if reg != nil {
		f := promauto.With(reg)
		b.metrics = &busMetrics{
			published: f.NewCounterVec(prometheus.CounterOpts{
				Name: "ballot_realtime_events_published_total",
				Help: "Realtime events published by type",
			}, []string{"type"}),
			dropped: f.NewCounter(prometheus.CounterOpts{
				Name: "ballot_realtime_events_dropped_total",
				Help: "Realtime events dropped because a subscriber buffer was full",
			}),
			subscribers: f.NewGauge(prometheus.GaugeOpts{
				Name: "ballot_realtime_subscribers",
				Help: "Currently connected realtime subscribers",
			}),
		}
	}
	return b
}

// Subscribe registers a subscriber. A non-empty candidateID filters tally
// events to that candidate; resync events always pass.
func (b *Bus) Subscribe(candidateID string) (SubscriberID, <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan Event, SubscriberQueueSize)
	if b.closed {
		close(ch)
		return 0, ch
	}
	b.lastID++
	b.subscribers[b.lastID] = &subscriber{candidateID: candidateID, ch: ch}
	if b.metrics != nil {
		b.metrics.subscribers.Inc()
	}
	return b.lastID, ch
}

// Unsubscribe removes the subscriber and closes its channel. Safe to call twice.
func (b *Bus) Unsubscribe(id SubscriberID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	sub, ok := b.subscribers[id]
	if !ok {
		return
	}
	delete(b.subscribers, id)
	close(sub.ch)
	if b.metrics != nil {
		b.metrics.subscribers.Dec()
	}
}

// Publish delivers evt to every matching subscriber without blocking.
func (b *Bus) Publish(evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for id, sub := range b.subscribers {
		if !sub.wants(evt) {
			continue
		}
		select {
		case sub.ch <- evt:
		default:
			if b.metrics != nil {
				b.metrics.dropped.Inc()
			}
			if b.logger != nil {
				b.logger.Debug("realtime subscriber buffer full", "subscriber", id, "type", evt.Type)
			}
		}
	}
	if b.metrics != nil {
		b.metrics.published.WithLabelValues(string(evt.Type)).Inc()
	}
}

// Len reports the number of active subscribers.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close unsubscribes everyone. Later subscriptions receive a closed channel.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subscribers {
		close(sub.ch)
		delete(b.subscribers, id)
	}
	if b.metrics != nil {
		b.metrics.subscribers.Set(0)
	}
}
