package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"ballot/internal/audit"
	cdmodels "ballot/internal/cooldown/models"
	"ballot/internal/identity"
	"ballot/internal/voting/models"
	"ballot/internal/voting/store"
	"ballot/pkg/platform/sentinel"
	"ballot/pkg/requestcontext"
)

// VoteRequest is one vote attempt. An empty VoterProfileID is replaced by a
// generated anonymous profile id.
type VoteRequest struct {
	CandidateID    string
	VoterProfileID string
	Signals        identity.Signals
}

// Receipt describes an accepted vote.
type Receipt struct {
	VoteID         string
	VerificationID string
	CandidateID    string
	VotesCount     int64
}

// SubmitVote runs the full vote workflow. Rejections are *models.VoteError;
// use models.ResultFromError to build the client response.
func (s *Service) SubmitVote(ctx context.Context, req VoteRequest) (*Receipt, error) {
	started := time.Now()
	ctx, span := s.tracer.Start(ctx, "voting.SubmitVote")
	defer span.End()
	span.SetAttributes(attribute.String("candidate_id", req.CandidateID))

	receipt, ident, err := s.submit(ctx, req)

	event := audit.Event{
		Action:         audit.ActionVoteSubmitted,
		CandidateID:    req.CandidateID,
		VoterProfileID: req.VoterProfileID,
		IP:             ident.IP,
		Fingerprint:    ident.Fingerprint,
		AgentSignature: ident.AgentSignature,
		RequestID:      requestcontext.RequestID(ctx),
	}
	if err != nil {
		kind := models.KindOf(err)
		span.SetStatus(codes.Error, string(kind))
		span.SetAttributes(attribute.String("rejection", string(kind)))
		s.metrics.ObserveVote(string(kind), started)
		event.Outcome = audit.OutcomeRejected
		event.Reason = string(kind)
		s.emit(ctx, event)
		s.logger.InfoContext(ctx, "vote rejected",
			"candidate_id", req.CandidateID,
			"kind", kind,
			"error", err,
			"request_id", event.RequestID,
		)
		return nil, err
	}

	s.metrics.ObserveVote("accepted", started)
	event.Outcome = audit.OutcomeAccepted
	event.VoterProfileID = receipt.voterProfileID
	event.VerificationID = receipt.VerificationID
	s.emit(ctx, event)

	if s.notifier != nil {
		s.notifier.NotifyTallyChanged(ctx, receipt.CandidateID, receipt.VotesCount)
	}
	s.logger.InfoContext(ctx, "vote accepted",
		"candidate_id", receipt.CandidateID,
		"vote_id", receipt.VoteID,
		"votes_count", receipt.VotesCount,
		"request_id", event.RequestID,
	)
	return &receipt.Receipt, nil
}

type submitted struct {
	Receipt
	voterProfileID string
}

func (s *Service) submit(ctx context.Context, req VoteRequest) (*submitted, models.Identity, error) {
	if req.CandidateID == "" {
		return nil, models.Identity{}, models.NewVoteError(models.ErrInvalidRequest, nil)
	}
	if req.Signals.Incognito() {
		return nil, models.Identity{}, models.NewVoteError(models.ErrIncognitoMode, nil)
	}

	ident, err := s.collector.Collect(ctx, req.Signals)
	if err != nil {
		if errors.Is(err, identity.ErrNoFingerprintSignal) {
			return nil, models.Identity{}, models.NewVoteError(models.ErrInvalidRequest, err)
		}
		return nil, models.Identity{}, models.NewVoteError(models.ErrVerification, err)
	}

	// A known voter is a duplicate whatever the cooldown says.
	existing, err := s.store.FindVerification(ctx, ident.Fingerprint, ident.IP)
	if err != nil {
		return nil, ident, models.NewVoteError(models.ErrVerification, err)
	}
	if existing != nil {
		return nil, ident, models.NewVoteError(models.ErrDuplicateVote, nil)
	}

	if err := s.checkVoteCooldown(ctx, ident.IP); err != nil {
		return nil, ident, err
	}

	profileID := req.VoterProfileID
	if profileID == "" {
		profileID = uuid.NewString()
	}

	now := requestcontext.Now(ctx)
	verification := &models.Verification{
		ID:                 uuid.NewString(),
		UserProfileID:      profileID,
		IPAddress:          ident.IP,
		BrowserFingerprint: ident.Fingerprint,
		UserAgent:          ident.UserAgent,
		IsIncognito:        ident.Incognito,
		CreatedAt:          now,
	}
	vote := &models.Vote{
		ID:             uuid.NewString(),
		CandidateID:    req.CandidateID,
		VoterProfileID: profileID,
		VerificationID: verification.ID,
		Status:         models.VoteStatusVerified,
		CreatedAt:      now,
	}

	var count int64
	err = s.store.RunInTx(ctx, func(l store.Ledger) error {
		var txErr error
		count, txErr = castVote(ctx, l, ident, verification, vote)
		return txErr
	})
	if err != nil {
		var ve *models.VoteError
		if errors.As(err, &ve) {
			return nil, ident, ve
		}
		return nil, ident, models.NewVoteError(models.ErrVoteSubmission, err)
	}

	if ident.HasKnownIP() && s.cooldown != nil {
		if err := s.cooldown.Record(ctx, cdmodels.ScopeVote, ident.IP); err != nil {
			s.logger.WarnContext(ctx, "failed to record vote cooldown",
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
	}

	return &submitted{
		Receipt: Receipt{
			VoteID:         vote.ID,
			VerificationID: verification.ID,
			CandidateID:    vote.CandidateID,
			VotesCount:     count,
		},
		voterProfileID: profileID,
	}, ident, nil
}

// castVote is the transactional body: candidate check, duplicate lookup,
// verification insert, vote insert and tally increment.
func castVote(ctx context.Context, l store.Ledger, ident models.Identity, v *models.Verification, vote *models.Vote) (int64, error) {
	candidate, err := l.GetCandidate(ctx, vote.CandidateID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return 0, models.NewVoteError(models.ErrCandidateNotFound, err)
		}
		return 0, models.NewVoteError(models.ErrVoteSubmission, err)
	}
	if !candidate.IsActive {
		return 0, models.NewVoteError(models.ErrCandidateNotFound, sentinel.ErrInvalidState)
	}

	existing, err := l.FindVerification(ctx, ident.Fingerprint, ident.IP)
	if err != nil {
		return 0, models.NewVoteError(models.ErrVerification, err)
	}
	if existing != nil {
		return 0, models.NewVoteError(models.ErrDuplicateVote, nil)
	}

	if err := l.CreateVerification(ctx, v); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return 0, models.NewVoteError(models.ErrDuplicateVote, err)
		}
		return 0, models.NewVoteError(models.ErrVerificationCreate, err)
	}

	if err := l.InsertVote(ctx, vote); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrAlreadyUsed):
			return 0, models.NewVoteError(models.ErrDuplicateVote, err)
		case errors.Is(err, sentinel.ErrNotFound):
			return 0, models.NewVoteError(models.ErrCandidateNotFound, err)
		default:
			return 0, models.NewVoteError(models.ErrVoteSubmission, err)
		}
	}

	count, err := l.IncrementTally(ctx, vote.CandidateID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return 0, models.NewVoteError(models.ErrCandidateNotFound, err)
		}
		return 0, models.NewVoteError(models.ErrVoteSubmission, err)
	}
	return count, nil
}

// ValidateVote is the standalone pre-vote check keyed on the server-observed
// IP: it rejects proxies and a second attempt inside the window, and records
// the attempt when allowed. Clients that cannot be located share the
// "unknown" key.
func (s *Service) ValidateVote(ctx context.Context, clientIP string) error {
	ctx, span := s.tracer.Start(ctx, "voting.ValidateVote")
	defer span.End()

	ip := identity.NormalizeIP(clientIP)
	err := s.validate(ctx, ip)

	event := audit.Event{
		Action:    audit.ActionVoteValidated,
		Outcome:   audit.OutcomeAccepted,
		IP:        ip,
		RequestID: requestcontext.RequestID(ctx),
	}
	outcome := "accepted"
	if err != nil {
		kind := models.KindOf(err)
		span.SetStatus(codes.Error, string(kind))
		outcome = string(kind)
		event.Outcome = audit.OutcomeRejected
		event.Reason = outcome
	}
	s.metrics.IncValidation(outcome)
	s.emit(ctx, event)
	return err
}

func (s *Service) validate(ctx context.Context, ip string) error {
	if s.proxy != nil && ip != models.UnknownIP {
		isProxy, err := s.proxy.IsProxy(ctx, ip)
		if err != nil {
			s.logger.WarnContext(ctx, "proxy detection failed",
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
		} else if isProxy {
			return models.NewVoteError(models.ErrProxyDetected, nil)
		}
	}

	if s.cooldown == nil {
		return nil
	}
	decision, err := s.cooldown.Acquire(ctx, cdmodels.ScopeValidate, ip)
	if err != nil {
		return models.NewVoteError(models.ErrVerification, err)
	}
	if !decision.Allowed {
		return models.NewCooldownError(decision.RemainingHours)
	}
	return nil
}

// checkVoteCooldown rejects an IP inside the vote window. Unlocated callers
// are skipped and a store failure only logs.
func (s *Service) checkVoteCooldown(ctx context.Context, ip string) error {
	if s.cooldown == nil || ip == "" || ip == models.UnknownIP {
		return nil
	}
	decision, err := s.cooldown.Check(ctx, cdmodels.ScopeVote, ip)
	if err != nil {
		s.logger.WarnContext(ctx, "cooldown check failed, continuing",
			"scope", cdmodels.ScopeVote,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil
	}
	if !decision.Allowed {
		return models.NewCooldownError(decision.RemainingHours)
	}
	return nil
}
