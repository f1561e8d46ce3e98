package audit

import "time"

// Action names an audited operation.
type Action string

const (
	ActionVoteSubmitted     Action = "vote_submitted"
	ActionVoteValidated     Action = "vote_validated"
	ActionProfileRegistered Action = "profile_registered"
	ActionTallyReconciled   Action = "tally_reconciled"
)

// Outcome of an audited operation.
type Outcome string

const (
	OutcomeAccepted Outcome = "accepted"
	OutcomeRejected Outcome = "rejected"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp      time.Time `json:"timestamp"`
	Action         Action    `json:"action"`
	Outcome        Outcome   `json:"outcome"`
	CandidateID    string    `json:"candidate_id,omitempty"`
	VoterProfileID string    `json:"voter_profile_id,omitempty"`
	VerificationID string    `json:"verification_id,omitempty"`
	// Reason is the error kind for rejected attempts.
	Reason         string `json:"reason,omitempty"`
	IP             string `json:"ip,omitempty"`
	Fingerprint    string `json:"fingerprint,omitempty"`
	AgentSignature string `json:"agent_signature,omitempty"`
	RequestID      string `json:"request_id,omitempty"`
}

// Key partitions events in ordered sinks. Attempts for the same candidate
// stay together; everything else falls back to the action.
func (e Event) Key() string {
	if e.CandidateID != "" {
		return e.CandidateID
	}
	return string(e.Action)
}
