package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) and services translate them into vote error kinds or domain errors.
//
//   - ErrNotFound: entity does not exist in store
//   - ErrAlreadyUsed: a uniqueness rule rejected the write (fingerprint, IP, email, verification)
//   - ErrInvalidState: entity in wrong state for the operation (inactive candidate)
//   - ErrUnavailable: backing store temporarily unavailable
var (
	ErrNotFound     = errors.New("not found")
	ErrAlreadyUsed  = errors.New("already used")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
