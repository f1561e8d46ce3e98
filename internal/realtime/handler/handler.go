package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ballot/internal/platform/middleware"
	"ballot/internal/realtime"
	dErrors "ballot/pkg/domain-errors"
	"ballot/pkg/platform/httputil"
)

// DefaultHeartbeat keeps idle proxies from closing the stream.
const DefaultHeartbeat = 15 * time.Second

// Handler serves the Server-Sent Events stream of tally signals.
type Handler struct {
	bus       *realtime.Bus
	logger    *slog.Logger
	heartbeat time.Duration
}

// New creates a realtime Handler. A non-positive heartbeat uses DefaultHeartbeat.
func New(bus *realtime.Bus, logger *slog.Logger, heartbeat time.Duration) *Handler {
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeat
	}
	return &Handler{bus: bus, logger: logger, heartbeat: heartbeat}
}

// Register mounts GET /api/realtime. It must sit outside any request timeout.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/realtime", h.handleStream)
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "streaming unsupported"))
		return
	}

	candidateID := r.URL.Query().Get("candidate_id")
	id, events := h.bus.Subscribe(candidateID)
	defer h.bus.Unsubscribe(id)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	h.logger.DebugContext(ctx, "realtime stream opened",
		"request_id", requestID,
		"candidate_id", candidateID,
	)

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.DebugContext(ctx, "realtime stream closed", "request_id", requestID)
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			if err := writeEvent(w, evt); err != nil {
				h.logger.DebugContext(ctx, "realtime write failed", "request_id", requestID, "error", err)
				return
			}
			flusher.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, evt realtime.Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Type, data)
	return err
}
