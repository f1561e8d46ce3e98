package store

import (
	"context"
	"log/slog"
	"time"

	"ballot/internal/cooldown/metrics"
	"ballot/internal/cooldown/models"
	"ballot/pkg/platform/circuit"
)

// FallbackStore serves from a primary store and switches to a local fallback
// while the primary's circuit is open. Writes always reach the fallback so it
// can answer during an outage.
type FallbackStore struct {
	primary  Store
	fallback Store
	breaker  *circuit.Breaker
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type FallbackOption func(*FallbackStore)

func WithFallbackLogger(logger *slog.Logger) FallbackOption {
	return func(f *FallbackStore) {
		f.logger = logger
	}
}

func WithFallbackMetrics(m *metrics.Metrics) FallbackOption {
	return func(f *FallbackStore) {
		f.metrics = m
	}
}

// NewFallback wires primary behind breaker with fallback as the degraded path.
func NewFallback(primary, fallback Store, breaker *circuit.Breaker, opts ...FallbackOption) *FallbackStore {
	f := &FallbackStore{primary: primary, fallback: fallback, breaker: breaker, logger: slog.Default()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *FallbackStore) Get(ctx context.Context, scope, identifier string, now time.Time) (*models.Entry, error) {
	e, err := f.primary.Get(ctx, scope, identifier, now)
	if err == nil {
		if f.success(ctx) {
			return e, nil
		}
		// Still recovering: prefer whichever store knows about the identifier.
		if e != nil {
			return e, nil
		}
		return f.fallback.Get(ctx, scope, identifier, now)
	}
	f.failure(ctx, err)
	f.metrics.IncFallback()
	return f.fallback.Get(ctx, scope, identifier, now)
}

func (f *FallbackStore) Put(ctx context.Context, entry *models.Entry) error {
	if err := f.fallback.Put(ctx, entry); err != nil {
		return err
	}
	if err := f.primary.Put(ctx, entry); err != nil {
		f.failure(ctx, err)
		f.metrics.IncFallback()
		return nil
	}
	f.success(ctx)
	return nil
}

// Claim is decided by the primary while it answers and mirrored into the
// fallback. During an outage the fallback decides alone.
func (f *FallbackStore) Claim(ctx context.Context, entry *models.Entry, now time.Time) (*models.Entry, error) {
	existing, err := f.primary.Claim(ctx, entry, now)
	if err != nil {
		f.failure(ctx, err)
		f.metrics.IncFallback()
		return f.fallback.Claim(ctx, entry, now)
	}
	authoritative := f.success(ctx)
	if existing != nil {
		return existing, nil
	}

	local, err := f.fallback.Claim(ctx, entry, now)
	if err != nil {
		return nil, err
	}
	if local == nil {
		return nil, nil
	}
	// Still recovering: a window recorded during the outage wins.
	if !authoritative {
		if err := f.primary.Put(ctx, local); err != nil {
			f.failure(ctx, err)
		}
		return local, nil
	}
	if err := f.fallback.Put(ctx, entry); err != nil {
		return nil, err
	}
	return nil, nil
}

func (f *FallbackStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	n, err := f.fallback.DeleteExpired(ctx, now)
	if err != nil {
		return n, err
	}
	m, err := f.primary.DeleteExpired(ctx, now)
	if err != nil {
		f.failure(ctx, err)
		return n, nil
	}
	return n + m, nil
}

// success reports whether the primary is authoritative after this success.
func (f *FallbackStore) success(ctx context.Context) bool {
	usePrimary, change := f.breaker.RecordSuccess()
	if change.Closed {
		f.logger.InfoContext(ctx, "cooldown store circuit closed", "breaker", f.breaker.Name())
		f.metrics.SetBreakerOpen(false)
	}
	return usePrimary
}

func (f *FallbackStore) failure(ctx context.Context, err error) {
	_, change := f.breaker.RecordFailure()
	if change.Opened {
		f.logger.WarnContext(ctx, "cooldown store circuit opened, serving from fallback",
			"breaker", f.breaker.Name(),
			"error", err,
		)
		f.metrics.SetBreakerOpen(true)
		return
	}
	f.logger.DebugContext(ctx, "cooldown primary store failed", "error", err)
}
