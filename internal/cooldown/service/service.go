package service

import (
	"context"
	"log/slog"
	"time"

	"ballot/internal/cooldown/metrics"
	"ballot/internal/cooldown/models"
	dErrors "ballot/pkg/domain-errors"
	"ballot/pkg/requestcontext"
)

type Store interface {
	Get(ctx context.Context, scope, identifier string, now time.Time) (*models.Entry, error)
	Put(ctx context.Context, entry *models.Entry) error
	Claim(ctx context.Context, entry *models.Entry, now time.Time) (*models.Entry, error)
}

// Gate enforces one accepted attempt per identifier per window.
type Gate struct {
	store   Store
	window  time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Gate)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) {
		g.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gate) {
		g.metrics = m
	}
}

// WithWindow overrides the default 24h window.
func WithWindow(d time.Duration) Option {
	return func(g *Gate) {
		if d > 0 {
			g.window = d
		}
	}
}

func New(store Store, opts ...Option) *Gate {
	g := &Gate{store: store, window: models.DefaultWindow, logger: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gate) Window() time.Duration {
	return g.window
}

// Check reports whether identifier may proceed in scope at the request time.
func (g *Gate) Check(ctx context.Context, scope, identifier string) (models.Decision, error) {
	if identifier == "" {
		return models.Decision{}, dErrors.New(dErrors.CodeBadRequest, "cooldown identifier required")
	}
	now := requestcontext.Now(ctx)
	entry, err := g.store.Get(ctx, scope, identifier, now)
	if err != nil {
		return models.Decision{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "cooldown lookup failed")
	}
	if entry == nil {
		g.metrics.IncCheck(scope, true)
		return models.Decision{Allowed: true}, nil
	}
	return g.decide(ctx, scope, now, entry), nil
}

// Record starts a new window for identifier in scope.
func (g *Gate) Record(ctx context.Context, scope, identifier string) error {
	if identifier == "" {
		return dErrors.New(dErrors.CodeBadRequest, "cooldown identifier required")
	}
	if err := g.store.Put(ctx, g.entry(scope, identifier, requestcontext.Now(ctx))); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "cooldown record failed")
	}
	return nil
}

// Acquire is Check and Record as one step: it starts a window unless one is
// running, so of two concurrent attempts exactly one is allowed.
func (g *Gate) Acquire(ctx context.Context, scope, identifier string) (models.Decision, error) {
	if identifier == "" {
		return models.Decision{}, dErrors.New(dErrors.CodeBadRequest, "cooldown identifier required")
	}
	now := requestcontext.Now(ctx)
	existing, err := g.store.Claim(ctx, g.entry(scope, identifier, now), now)
	if err != nil {
		return models.Decision{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "cooldown claim failed")
	}
	if existing == nil {
		g.metrics.IncCheck(scope, true)
		return models.Decision{Allowed: true, LastVoteAt: now}, nil
	}
	return g.decide(ctx, scope, now, existing), nil
}

func (g *Gate) entry(scope, identifier string, now time.Time) *models.Entry {
	return &models.Entry{
		Scope:      scope,
		Identifier: identifier,
		LastVoteAt: now,
		ExpiresAt:  now.Add(g.window),
	}
}

func (g *Gate) decide(ctx context.Context, scope string, now time.Time, entry *models.Entry) models.Decision {
	elapsed := now.Sub(entry.LastVoteAt)
	if elapsed < 0 {
		elapsed = 0
	}
	remaining := models.RemainingHours(g.window, elapsed)
	decision := models.Decision{
		Allowed:        remaining == 0,
		LastVoteAt:     entry.LastVoteAt,
		RemainingHours: remaining,
	}
	g.metrics.IncCheck(scope, decision.Allowed)
	if !decision.Allowed {
		g.logger.InfoContext(ctx, "cooldown active",
			"scope", scope,
			"remaining_hours", remaining,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	return decision
}
