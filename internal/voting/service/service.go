// Package service runs the vote workflow: the incognito gate, identity
// collection, the duplicate check ahead of the cooldown gate, the
// verification/vote/tally transaction, and the side effects that follow a
// committed vote.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"ballot/internal/audit"
	cdmodels "ballot/internal/cooldown/models"
	"ballot/internal/identity"
	"ballot/internal/voting/metrics"
	"ballot/internal/voting/models"
	"ballot/internal/voting/store"
	dErrors "ballot/pkg/domain-errors"
	"ballot/pkg/platform/sentinel"
)

// Store is the persistence the service needs beyond the transactional Ledger.
type Store interface {
	RunInTx(ctx context.Context, fn func(store.Ledger) error) error
	ListCategories(ctx context.Context) ([]*models.Category, error)
	ListCandidates(ctx context.Context, categoryID string) ([]*models.Candidate, error)
	GetCandidate(ctx context.Context, id string) (*models.Candidate, error)
	// FindVerification is the pre-transaction duplicate check; the
	// transaction repeats it.
	FindVerification(ctx context.Context, fingerprint, ip string) (*models.Verification, error)
	Reconcile(ctx context.Context) (int, error)
	SaveDailyTotal(ctx context.Context, total models.DailyTotal) error
	GetDailyTotal(ctx context.Context, date time.Time) (*models.DailyTotal, error)
}

type IdentityCollector interface {
	Collect(ctx context.Context, sig identity.Signals) (models.Identity, error)
}

type CooldownGate interface {
	Check(ctx context.Context, scope, identifier string) (cdmodels.Decision, error)
	Record(ctx context.Context, scope, identifier string) error
	Acquire(ctx context.Context, scope, identifier string) (cdmodels.Decision, error)
}

// Notifier announces committed tally changes. Delivery is best effort.
type Notifier interface {
	NotifyTallyChanged(ctx context.Context, candidateID string, votesCount int64)
	NotifyResync(ctx context.Context)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// ProxyDetector flags VPN or proxy addresses. No detector is configured by default.
type ProxyDetector interface {
	IsProxy(ctx context.Context, ip string) (bool, error)
}

// Service coordinates vote submission and the tally reads.
type Service struct {
	store     Store
	collector IdentityCollector
	cooldown  CooldownGate
	notifier  Notifier
	auditor   AuditPublisher
	proxy     ProxyDetector
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

type Option func(*Service)

func WithCooldown(g CooldownGate) Option {
	return func(s *Service) {
		s.cooldown = g
	}
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = p
	}
}

func WithProxyDetector(d ProxyDetector) Option {
	return func(s *Service) {
		s.proxy = d
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(st Store, collector IdentityCollector, opts ...Option) *Service {
	s := &Service{
		store:     st,
		collector: collector,
		logger:    slog.Default(),
		tracer:    otel.Tracer("ballot/voting"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) ListCategories(ctx context.Context) ([]*models.Category, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list categories")
	}
	return categories, nil
}

// ListCandidates returns the candidates of categoryID ordered by tally.
func (s *Service) ListCandidates(ctx context.Context, categoryID string) ([]*models.Candidate, error) {
	if categoryID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "category id required")
	}
	candidates, err := s.store.ListCandidates(ctx, categoryID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list candidates")
	}
	models.SortByVotes(candidates)
	return candidates, nil
}

func (s *Service) GetCandidate(ctx context.Context, id string) (*models.Candidate, error) {
	candidate, err := s.store.GetCandidate(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "candidate not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to get candidate")
	}
	return candidate, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"request_id", event.RequestID,
			"error", err,
		)
	}
}
