package store

import (
	"context"
	"log/slog"
	"time"

	"ballot/internal/cooldown/metrics"
)

// StartCleanup purges expired entries from s every interval until ctx is
// cancelled. Purge failures are logged and retried on the next tick.
func StartCleanup(ctx context.Context, s Store, interval time.Duration, logger *slog.Logger, m *metrics.Metrics) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n, err := s.DeleteExpired(ctx, time.Now())
			if err != nil {
				logger.WarnContext(ctx, "cooldown cleanup failed", "error", err)
				continue
			}
			m.AddPurged(n)
			if n > 0 {
				logger.DebugContext(ctx, "cooldown cleanup", "removed", n)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
