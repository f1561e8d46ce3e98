package handler

// VoteRequest is the body of POST /api/votes. The storage flags are
// pointers so an omitted flag counts as available.
type VoteRequest struct {
	CandidateID    string `json:"candidate_id"`
	VoterProfileID string `json:"voter_profile_id,omitempty"`
	Fingerprint    string `json:"fingerprint,omitempty"`
	ReportedIP     string `json:"reported_ip,omitempty"`
	LocalStorage   *bool  `json:"local_storage,omitempty"`
	IndexedDB      *bool  `json:"indexed_db,omitempty"`
}

func available(v *bool) bool {
	return v == nil || *v
}

// ReconcileResponse is returned by POST /admin/tally/reconcile.
type ReconcileResponse struct {
	Corrected int `json:"corrected"`
}
