// Package store persists cooldown entries keyed by (scope, identifier).
package store

import (
	"context"
	"errors"
	"time"

	"ballot/internal/cooldown/models"
)

// Store is the persistence contract shared by every backend.
type Store interface {
	// Get returns the entry, or nil when none is stored or it has expired at now.
	Get(ctx context.Context, scope, identifier string, now time.Time) (*models.Entry, error)
	Put(ctx context.Context, entry *models.Entry) error
	// Claim writes entry only when no unexpired entry for its key exists at
	// now, as one atomic step. It returns nil when the write happened and the
	// blocking entry otherwise.
	Claim(ctx context.Context, entry *models.Entry, now time.Time) (*models.Entry, error)
	// DeleteExpired removes entries expired at now and returns how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// ErrClaimContended is returned when a claim lost to a write that was gone
// again by the time it was read back.
var ErrClaimContended = errors.New("cooldown claim contended")
