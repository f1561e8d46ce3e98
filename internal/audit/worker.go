package audit

import (
	"context"
	"log/slog"
	"time"
)

// drainTimeout bounds how long shutdown waits to flush queued events.
const drainTimeout = 5 * time.Second

// Worker consumes audit events from a channel and persists them. A failed
// append is logged and counted; the worker keeps going.
type Worker struct {
	store   Store
	inbox   <-chan Event
	logger  *slog.Logger
	metrics *Metrics
}

func NewWorker(store Store, inbox <-chan Event, logger *slog.Logger, metrics *Metrics) *Worker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Worker{store: store, inbox: inbox, logger: logger, metrics: metrics}
}

// Run persists events until ctx is cancelled, then flushes what is already
// queued before returning ctx.Err().
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain(ctx)
			return ctx.Err()
		case event := <-w.inbox:
			w.persist(ctx, event)
		}
	}
}

func (w *Worker) drain(ctx context.Context) {
	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), drainTimeout)
	defer cancel()
	for {
		select {
		case event := <-w.inbox:
			w.persist(flushCtx, event)
		default:
			return
		}
		if flushCtx.Err() != nil {
			return
		}
	}
}

func (w *Worker) persist(ctx context.Context, event Event) {
	if err := w.store.Append(ctx, event); err != nil {
		w.metrics.incSinkFailure()
		w.logger.WarnContext(ctx, "failed to persist audit event",
			"action", event.Action,
			"request_id", event.RequestID,
			"error", err,
		)
	}
	w.metrics.setDepth(len(w.inbox))
}
