package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"ballot/internal/voting/models"
)

// Snapshotter is the part of Service the scheduler drives.
type Snapshotter interface {
	SnapshotDailyTotal(ctx context.Context) (models.DailyTotal, error)
}

// StartSnapshots runs SnapshotDailyTotal on schedule until ctx is cancelled.
// schedule accepts standard five-field cron expressions and descriptors such
// as "@daily".
func StartSnapshots(ctx context.Context, svc Snapshotter, schedule string, logger *slog.Logger) error {
	c := cron.New(cron.WithLogger(cron.DiscardLogger))
	_, err := c.AddFunc(schedule, func() {
		if _, err := svc.SnapshotDailyTotal(ctx); err != nil {
			logger.ErrorContext(ctx, "daily snapshot failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid snapshot schedule %q: %w", schedule, err)
	}
	c.Start()
	logger.InfoContext(ctx, "daily snapshot scheduled", "schedule", schedule)
	<-ctx.Done()
	<-c.Stop().Done()
	return ctx.Err()
}
