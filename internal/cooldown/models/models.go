package models

import (
	"math"
	"time"
)

// Scopes partition cooldown keys so the vote workflow and the standalone
// validation endpoint keep independent windows.
const (
	ScopeVote     = "vote"
	ScopeValidate = "validate"
)

// DefaultWindow is the cooldown window length.
const DefaultWindow = 24 * time.Hour

// Entry records the last accepted attempt for an identifier.
type Entry struct {
	Scope      string
	Identifier string
	LastVoteAt time.Time
	ExpiresAt  time.Time
}

// Expired reports whether the entry no longer blocks at now.
func (e *Entry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// Decision is the result of a cooldown check.
type Decision struct {
	Allowed        bool
	LastVoteAt     time.Time
	RemainingHours int
}

// RemainingHours returns ceil((window - elapsed) / 1h), never below zero.
func RemainingHours(window, elapsed time.Duration) int {
	remaining := window - elapsed
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(float64(remaining) / float64(time.Hour)))
}
