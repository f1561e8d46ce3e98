package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
)

const (
	listenerMinReconnect = 10 * time.Second
	listenerMaxReconnect = time.Minute
	listenerPingInterval = 90 * time.Second
)

// Listener bridges PostgreSQL notifications on Channel into the local bus.
type Listener struct {
	url    string
	bus    *Bus
	logger *slog.Logger
}

func NewListener(url string, bus *Bus, logger *slog.Logger) *Listener {
	return &Listener{url: url, bus: bus, logger: logger}
}

// Run listens until ctx is cancelled. After a reconnect it publishes a resync
// event since notifications sent while disconnected are lost.
func (l *Listener) Run(ctx context.Context) error {
	listener := pq.NewListener(l.url, listenerMinReconnect, listenerMaxReconnect,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				l.logger.WarnContext(ctx, "realtime listener event", "event", int(ev), "error", err)
			}
		})
	defer listener.Close()

	if err := listener.Listen(Channel); err != nil {
		return fmt.Errorf("listen %s: %w", Channel, err)
	}
	l.logger.InfoContext(ctx, "realtime listener started", "channel", Channel)

	ping := time.NewTicker(listenerPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n := <-listener.Notify:
			if n == nil {
				l.bus.Publish(Event{Type: EventResync})
				continue
			}
			l.dispatch(ctx, n.Extra)
		case <-ping.C:
			go func() {
				_ = listener.Ping()
			}()
		}
	}
}

func (l *Listener) dispatch(ctx context.Context, payload string) {
	evt, err := DecodeEvent(payload)
	if err != nil {
		l.logger.WarnContext(ctx, "invalid realtime payload", "error", err)
		return
	}
	l.bus.Publish(evt)
}

// DecodeEvent parses a NOTIFY payload.
func DecodeEvent(payload string) (Event, error) {
	var evt Event
	if err := json.Unmarshal([]byte(payload), &evt); err != nil {
		return Event{}, fmt.Errorf("decode realtime event: %w", err)
	}
	switch evt.Type {
	case EventTallyChanged, EventResync:
	default:
		return Event{}, fmt.Errorf("unknown realtime event type %q", evt.Type)
	}
	return evt, nil
}
