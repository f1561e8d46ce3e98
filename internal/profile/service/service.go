package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"ballot/internal/audit"
	"ballot/internal/profile/models"
	votemodels "ballot/internal/voting/models"
	"ballot/pkg/platform/sentinel"
	"ballot/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, p *models.Profile) error
	FindByID(ctx context.Context, id string) (*models.Profile, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service registers voter profiles.
type Service struct {
	store   Store
	auditor AuditPublisher
	logger  *slog.Logger
}

type Option func(*Service)

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = p
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a profile. Failures are *votemodels.VoteError with kind
// INVALID_REQUEST, EMAIL_EXISTS or PROFILE_CREATE_ERROR.
func (s *Service) Register(ctx context.Context, reg models.Registration) (*models.Profile, error) {
	reg.Normalize()
	if field := reg.Validate(); field != "" {
		return nil, votemodels.NewVoteError(votemodels.ErrInvalidRequest, errors.New("invalid "+field))
	}

	profile := &models.Profile{
		ID:        uuid.NewString(),
		FirstName: reg.FirstName,
		LastName:  reg.LastName,
		Email:     reg.Email,
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := s.store.Create(ctx, profile); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, votemodels.NewVoteError(votemodels.ErrEmailExists, err)
		}
		s.logger.ErrorContext(ctx, "failed to create profile",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, votemodels.NewVoteError(votemodels.ErrProfileCreate, err)
	}

	if s.auditor != nil {
		if err := s.auditor.Emit(ctx, audit.Event{
			Action:         audit.ActionProfileRegistered,
			Outcome:        audit.OutcomeAccepted,
			VoterProfileID: profile.ID,
			RequestID:      requestcontext.RequestID(ctx),
		}); err != nil {
			s.logger.WarnContext(ctx, "failed to emit audit event", "error", err)
		}
	}
	return profile, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Profile, error) {
	return s.store.FindByID(ctx, id)
}
