package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for the vote workflow.
type Metrics struct {
	VoteAttempts   *prometheus.CounterVec
	VoteDuration   prometheus.Histogram
	Validations    *prometheus.CounterVec
	TallyCorrected prometheus.Counter
	SnapshotsTaken prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		VoteAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ballot_vote_attempts_total",
			Help: "Vote submissions by outcome (accepted or the rejection kind)",
		}, []string{"outcome"}),
		VoteDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "ballot_vote_duration_seconds",
			Help:    "Time spent processing a vote submission",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}),
		Validations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ballot_vote_validations_total",
			Help: "Pre-vote validations by outcome",
		}, []string{"outcome"}),
		TallyCorrected: f.NewCounter(prometheus.CounterOpts{
			Name: "ballot_tally_corrected_total",
			Help: "Candidate tallies corrected by reconciliation",
		}),
		SnapshotsTaken: f.NewCounter(prometheus.CounterOpts{
			Name: "ballot_daily_snapshots_total",
			Help: "Daily total snapshots recorded",
		}),
	}
}

func (m *Metrics) ObserveVote(outcome string, started time.Time) {
	if m == nil {
		return
	}
	m.VoteAttempts.WithLabelValues(outcome).Inc()
	m.VoteDuration.Observe(time.Since(started).Seconds())
}

func (m *Metrics) IncValidation(outcome string) {
	if m == nil {
		return
	}
	m.Validations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) AddCorrected(n int) {
	if m == nil {
		return
	}
	m.TallyCorrected.Add(float64(n))
}

func (m *Metrics) IncSnapshot() {
	if m == nil {
		return
	}
	m.SnapshotsTaken.Inc()
}
