package voterclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	cooldownmodels "ballot/internal/cooldown/models"
	"ballot/internal/voting/models"
)

// VoteInput is one vote submission. Nil storage flags are filled from the local
// state's own availability check.
type VoteInput struct {
	CandidateID    string
	VoterProfileID string
	LocalStorage   *bool
	IndexedDB      *bool
}

type voteBody struct {
	CandidateID    string `json:"candidate_id"`
	VoterProfileID string `json:"voter_profile_id,omitempty"`
	Fingerprint    string `json:"fingerprint,omitempty"`
	ReportedIP     string `json:"reported_ip,omitempty"`
	LocalStorage   bool   `json:"local_storage"`
	IndexedDB      bool   `json:"indexed_db"`
}

// CanVote applies the client cooldown from the last cast vote. A pending
// validation does not count.
func (c *Client) CanVote() (cooldownmodels.Decision, error) {
	at, token, err := c.state.LastVote()
	if err != nil {
		return cooldownmodels.Decision{}, err
	}
	if at.IsZero() || token == "" {
		return cooldownmodels.Decision{Allowed: true}, nil
	}
	elapsed := c.now().Sub(at)
	if elapsed >= c.window {
		return cooldownmodels.Decision{Allowed: true, LastVoteAt: at}, nil
	}
	return cooldownmodels.Decision{
		LastVoteAt:     at,
		RemainingHours: cooldownmodels.RemainingHours(c.window, elapsed),
	}, nil
}

// ValidateVote asks the server to check and record the validation cooldown
// for this device's IP. On success a pending validation token is stored; the
// local vote cooldown only starts once SubmitVote succeeds.
func (c *Client) ValidateVote(ctx context.Context) error {
	var result models.VoteResult
	if err := c.do(ctx, http.MethodPost, "/api/validate-vote", nil, &result); err != nil {
		c.logger.WarnContext(ctx, "validate vote failed", "error", err)
		return &models.VoteError{Kind: models.ErrVerification, Message: models.MsgClientValidateRetry, Err: err}
	}
	if !result.Success {
		return resultError(result)
	}
	if err := c.state.SetValidation(uuid.NewString(), c.now()); err != nil {
		return fmt.Errorf("store validation: %w", err)
	}
	return nil
}

// SubmitVote casts a vote. Incognito and locally cooled-down devices are
// rejected without a network call.
func (c *Client) SubmitVote(ctx context.Context, in VoteInput) (models.VoteResult, error) {
	body := voteBody{
		CandidateID:    in.CandidateID,
		VoterProfileID: in.VoterProfileID,
		LocalStorage:   c.storageFlag(in.LocalStorage),
		IndexedDB:      c.storageFlag(in.IndexedDB),
	}
	if !body.LocalStorage || !body.IndexedDB {
		return rejected(models.NewVoteError(models.ErrIncognitoMode, nil))
	}

	decision, err := c.CanVote()
	if err != nil {
		return models.VoteResult{}, err
	}
	if !decision.Allowed {
		return rejected(models.NewCooldownError(decision.RemainingHours))
	}

	if body.Fingerprint, err = c.state.DeviceID(); err != nil {
		return models.VoteResult{}, err
	}
	body.ReportedIP = c.reportedIP(ctx)

	var result models.VoteResult
	if err := c.do(ctx, http.MethodPost, "/api/votes", body, &result); err != nil {
		return models.VoteResult{}, err
	}
	if !result.Success {
		return result, resultError(result)
	}

	if err := c.state.SetVote(in.CandidateID); err != nil {
		return result, fmt.Errorf("store vote selection: %w", err)
	}
	if err := c.state.RecordVote(result.VoteID, c.now()); err != nil {
		return result, fmt.Errorf("record vote: %w", err)
	}
	if err := c.state.ClearValidation(); err != nil {
		c.logger.WarnContext(ctx, "clear validation failed", "error", err)
	}
	return result, nil
}

func (c *Client) storageFlag(reported *bool) bool {
	if reported != nil {
		return *reported
	}
	return c.state.Available()
}

// reportedIP is best effort; the server falls back to what it observes.
func (c *Client) reportedIP(ctx context.Context) string {
	if c.ipLookup == nil {
		return ""
	}
	ip, err := c.ipLookup.LookupIP(ctx)
	if err != nil {
		c.logger.DebugContext(ctx, "public ip lookup failed", "error", err)
		return ""
	}
	return ip
}

func rejected(ve *models.VoteError) (models.VoteResult, error) {
	return models.ResultFromError(ve), ve
}

func resultError(result models.VoteResult) error {
	kind := result.Error
	if kind == "" {
		kind = models.ErrUnknown
	}
	return &models.VoteError{Kind: kind, Message: result.Message}
}

// IsRejection reports whether err is a vote rejection rather than a
// transport or local state failure.
func IsRejection(err error) bool {
	var ve *models.VoteError
	return errors.As(err, &ve)
}
