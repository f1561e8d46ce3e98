// Package store persists the vote ledgers: verifications, votes, candidate
// tallies and daily totals. Stores are pure I/O and report uniqueness and
// lookup failures through pkg/platform/sentinel errors.
package store

import (
	"context"

	"ballot/internal/voting/models"
)

// Ledger is the set of operations a vote transaction runs.
type Ledger interface {
	GetCandidate(ctx context.Context, id string) (*models.Candidate, error)
	// FindVerification returns the verification matching fingerprint OR ip,
	// or nil when none exists. The unknown IP sentinel never matches.
	FindVerification(ctx context.Context, fingerprint, ip string) (*models.Verification, error)
	CreateVerification(ctx context.Context, v *models.Verification) error
	InsertVote(ctx context.Context, v *models.Vote) error
	IncrementTally(ctx context.Context, candidateID string) (int64, error)
}

const dateLayout = "2006-01-02"
