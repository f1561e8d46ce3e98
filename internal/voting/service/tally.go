package service

import (
	"context"
	"time"

	"ballot/internal/audit"
	"ballot/internal/voting/models"
	dErrors "ballot/pkg/domain-errors"
	"ballot/pkg/requestcontext"
)

// Stats reports the total, the top candidates and growth against
// yesterday's snapshot.
func (s *Service) Stats(ctx context.Context) (models.Stats, error) {
	candidates, err := s.store.ListCandidates(ctx, "")
	if err != nil {
		return models.Stats{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load tallies")
	}
	yesterday := day(requestcontext.Now(ctx)).AddDate(0, 0, -1)
	previous, err := s.store.GetDailyTotal(ctx, yesterday)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to load previous daily total",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		previous = nil
	}
	return models.ComputeStats(candidates, previous), nil
}

// SnapshotDailyTotal records today's overall total, replacing an earlier
// snapshot of the same day.
func (s *Service) SnapshotDailyTotal(ctx context.Context) (models.DailyTotal, error) {
	candidates, err := s.store.ListCandidates(ctx, "")
	if err != nil {
		return models.DailyTotal{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load tallies")
	}
	var total int64
	for _, c := range candidates {
		total += c.VotesCount
	}
	snapshot := models.DailyTotal{Date: day(requestcontext.Now(ctx)), TotalVotes: total}
	if err := s.store.SaveDailyTotal(ctx, snapshot); err != nil {
		return models.DailyTotal{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save daily total")
	}
	s.metrics.IncSnapshot()
	s.logger.InfoContext(ctx, "daily total recorded",
		"date", snapshot.Date.Format(time.DateOnly),
		"total_votes", total,
	)
	return snapshot, nil
}

// Reconcile recomputes every tally from the vote ledger and returns how many
// candidates were corrected. Clients are told to refetch when anything moved.
func (s *Service) Reconcile(ctx context.Context) (int, error) {
	changed, err := s.store.Reconcile(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to reconcile tallies")
	}
	s.metrics.AddCorrected(changed)
	s.emit(ctx, audit.Event{
		Action:    audit.ActionTallyReconciled,
		Outcome:   audit.OutcomeAccepted,
		RequestID: requestcontext.RequestID(ctx),
	})
	if changed > 0 {
		s.logger.WarnContext(ctx, "tally drift corrected",
			"candidates", changed,
			"request_id", requestcontext.RequestID(ctx),
		)
		if s.notifier != nil {
			s.notifier.NotifyResync(ctx)
		}
	}
	return changed, nil
}

func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
