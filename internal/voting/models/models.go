package models

import (
	"sort"
	"time"
)

// UnknownIP is the sentinel recorded when no client address could be
// resolved. It never counts as an IP match.
const UnknownIP = "unknown"

// VoteStatus is the lifecycle state of a vote record.
type VoteStatus string

const (
	VoteStatusVerified VoteStatus = "verified"
	VoteStatusPending  VoteStatus = "pending"
	VoteStatusRejected VoteStatus = "rejected"
)

// Category groups candidates.
type Category struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

// Candidate is a votable entry. VotesCount is the denormalized tally.
type Candidate struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Image      string `json:"image"`
	CategoryID string `json:"category_id"`
	VotesCount int64  `json:"votes_count"`
	IsActive   bool   `json:"is_active"`
}

// Identity is the best-effort device identity for one vote attempt.
type Identity struct {
	Fingerprint string
	IP          string
	Incognito   bool
	UserAgent   string
	// AgentSignature is a user-agent digest shared by similar devices.
	AgentSignature string
}

// HasKnownIP reports whether IP can take part in duplicate matching.
func (i Identity) HasKnownIP() bool {
	return i.IP != "" && i.IP != UnknownIP
}

// Verification is the append-only record created once per identity.
type Verification struct {
	ID                 string    `json:"id"`
	UserProfileID      string    `json:"user_profile_id"`
	IPAddress          string    `json:"ip_address"`
	BrowserFingerprint string    `json:"browser_fingerprint"`
	UserAgent          string    `json:"user_agent"`
	IsIncognito        bool      `json:"is_incognito"`
	CreatedAt          time.Time `json:"created_at"`
}

// Vote is the append-only record of one accepted vote.
type Vote struct {
	ID             string     `json:"id"`
	CandidateID    string     `json:"candidate_id"`
	VoterProfileID string     `json:"voter_profile_id"`
	VerificationID string     `json:"verification_id"`
	Status         VoteStatus `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
}

// DailyTotal is a snapshot of the overall tally for one day.
type DailyTotal struct {
	Date       time.Time `json:"date"`
	TotalVotes int64     `json:"total_votes"`
}

// Leader is one entry of the stats leaderboard.
type Leader struct {
	CandidateID string `json:"candidate_id"`
	Name        string `json:"name"`
	Votes       int64  `json:"votes"`
	Percent     int    `json:"percent"`
}

// Stats summarizes the current tally.
type Stats struct {
	TotalVotes  int64    `json:"total_votes"`
	Leaders     []Leader `json:"leaders"`
	DailyGrowth float64  `json:"daily_growth"`
}

// LeaderCount is the size of the stats leaderboard.
const LeaderCount = 3

// ComputeStats derives totals, the top candidates and growth against the
// previous day's total. A missing or zero previous total yields no growth.
func ComputeStats(candidates []*Candidate, previous *DailyTotal) Stats {
	sorted := make([]*Candidate, len(candidates))
	copy(sorted, candidates)
	SortByVotes(sorted)

	var total int64
	for _, c := range sorted {
		total += c.VotesCount
	}

	leaders := make([]Leader, 0, LeaderCount)
	for _, c := range sorted {
		if len(leaders) == LeaderCount {
			break
		}
		leaders = append(leaders, Leader{
			CandidateID: c.ID,
			Name:        c.Name,
			Votes:       c.VotesCount,
			Percent:     Percent(c.VotesCount, total),
		})
	}

	stats := Stats{TotalVotes: total, Leaders: leaders}
	if previous != nil && previous.TotalVotes > 0 {
		stats.DailyGrowth = float64(total-previous.TotalVotes) / float64(previous.TotalVotes) * 100
	}
	return stats
}

// Percent returns round(votes/total*100), or 0 when total is zero.
func Percent(votes, total int64) int {
	if total <= 0 {
		return 0
	}
	return int((votes*200 + total) / (total * 2))
}

// SortByVotes orders candidates by tally descending, then id for stability.
func SortByVotes(cs []*Candidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].VotesCount != cs[j].VotesCount {
			return cs[i].VotesCount > cs[j].VotesCount
		}
		return cs[i].ID < cs[j].ID
	})
}
