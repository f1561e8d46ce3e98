package realtime

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"
)

// Channel is the PostgreSQL NOTIFY channel shared by all instances.
const Channel = "tally_changes"

// Notifier announces tally changes. With a database it publishes through
// NOTIFY so every instance's Listener delivers the event, this one included;
// without one, or when NOTIFY fails, it publishes straight to the local bus.
type Notifier struct {
	bus    *Bus
	db     *sql.DB
	logger *slog.Logger
}

func NewNotifier(bus *Bus, db *sql.DB, logger *slog.Logger) *Notifier {
	return &Notifier{bus: bus, db: db, logger: logger}
}

// NotifyTallyChanged is called after a vote commits.
func (n *Notifier) NotifyTallyChanged(ctx context.Context, candidateID string, votesCount int64) {
	evt := Event{
		Type:        EventTallyChanged,
		CandidateID: candidateID,
		VotesCount:  votesCount,
		Timestamp:   time.Now(),
	}
	if n.db != nil {
		payload, err := json.Marshal(evt)
		if err == nil {
			_, err = n.db.ExecContext(ctx, `SELECT pg_notify($1, $2)`, Channel, string(payload))
		}
		if err == nil {
			return
		}
		n.logger.WarnContext(ctx, "pg_notify failed, publishing locally", "error", err)
	}
	n.bus.Publish(evt)
}

// NotifyResync tells every client to refetch, e.g. after a reconciliation.
func (n *Notifier) NotifyResync(ctx context.Context) {
	evt := Event{Type: EventResync, Timestamp: time.Now()}
	if n.db != nil {
		payload, _ := json.Marshal(evt)
		if _, err := n.db.ExecContext(ctx, `SELECT pg_notify($1, $2)`, Channel, string(payload)); err == nil {
			return
		}
	}
	n.bus.Publish(evt)
}
