package voterclient

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ballot/internal/realtime"
	"ballot/internal/voting/models"
)

// ErrStreamClosed is returned by Watch once reconnects are exhausted.
var ErrStreamClosed = errors.New("realtime stream closed")

// Watch streams tally signals and calls onTally with the freshly fetched
// candidates of categoryID after connecting and after every signal. A
// dropped stream is retried up to the reconnect limit with a linear delay;
// the attempt counter resets after each successful connection.
func (c *Client) Watch(ctx context.Context, categoryID string, onTally func([]*models.Candidate)) error {
	attempt := 0
	for {
		connected, err := c.stream(ctx, categoryID, onTally)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if connected {
			attempt = 0
		}
		if attempt >= c.maxReconnects {
			return fmt.Errorf("%w after %d reconnects: %w", ErrStreamClosed, attempt, err)
		}
		attempt++
		delay := time.Duration(attempt) * c.reconnectStep
		c.logger.InfoContext(ctx, "reconnecting realtime stream",
			"attempt", attempt,
			"max_attempts", c.maxReconnects,
			"delay", delay,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

// stream runs one SSE connection until it ends. connected reports whether
// the server accepted the subscription.
func (c *Client) stream(ctx context.Context, categoryID string, onTally func([]*models.Candidate)) (connected bool, err error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/realtime", nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "text/event-stream")

	streaming := *c.http
	streaming.Timeout = 0
	resp, err := streaming.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, decodeAPIError(resp)
	}

	c.refresh(ctx, categoryID, onTally)

	var data strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if data.Len() > 0 {
				c.dispatch(ctx, data.String(), categoryID, onTally)
				data.Reset()
			}
		case strings.HasPrefix(line, ":"):
			// heartbeat
		case strings.HasPrefix(line, "data:"):
			data.WriteString(strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		}
	}
	if err := scanner.Err(); err != nil {
		return true, err
	}
	return true, ErrStreamClosed
}

func (c *Client) dispatch(ctx context.Context, payload, categoryID string, onTally func([]*models.Candidate)) {
	evt, err := realtime.DecodeEvent(payload)
	if err != nil {
		c.logger.WarnContext(ctx, "ignoring realtime event", "error", err)
		return
	}
	c.logger.DebugContext(ctx, "realtime signal", "type", evt.Type, "candidate_id", evt.CandidateID)
	c.refresh(ctx, categoryID, onTally)
}

func (c *Client) refresh(ctx context.Context, categoryID string, onTally func([]*models.Candidate)) {
	candidates, err := c.Candidates(ctx, categoryID)
	if err != nil {
		c.logger.WarnContext(ctx, "refresh tally failed", "category_id", categoryID, "error", err)
		return
	}
	onTally(candidates)
}
