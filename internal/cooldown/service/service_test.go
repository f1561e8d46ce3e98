package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"ballot/internal/cooldown/metrics"
	"ballot/internal/cooldown/models"
	"ballot/internal/cooldown/store"
	"ballot/internal/platform/logger"
	dErrors "ballot/pkg/domain-errors"
	"ballot/pkg/requestcontext"
)

type GateSuite struct {
	suite.Suite
	store   *store.InMemoryStore
	metrics *metrics.Metrics
	gate    *Gate
	start   time.Time
}

func TestGateSuite(t *testing.T) {
	suite.Run(t, new(GateSuite))
}

func (s *GateSuite) SetupTest() {
	s.store = store.NewInMemory()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.gate = New(s.store, WithLogger(logger.Discard()), WithMetrics(s.metrics))
	s.start = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
}

func (s *GateSuite) at(d time.Duration) context.Context {
	return requestcontext.WithTime(context.Background(), s.start.Add(d))
}

func (s *GateSuite) TestFirstAttemptAllowed() {
	d, err := s.gate.Check(s.at(0), models.ScopeValidate, "203.0.113.1")
	s.Require().NoError(err)
	s.True(d.Allowed)
	s.Zero(d.RemainingHours)
}

func (s *GateSuite) TestSecondAttemptWithinWindowBlocked() {
	s.Require().NoError(s.gate.Record(s.at(0), models.ScopeValidate, "203.0.113.1"))

	s.Run("one minute later", func() {
		d, err := s.gate.Check(s.at(time.Minute), models.ScopeValidate, "203.0.113.1")
		s.Require().NoError(err)
		s.False(d.Allowed)
		s.Equal(24, d.RemainingHours)
		s.Equal(s.start, d.LastVoteAt)
	})

	s.Run("ninety minutes later", func() {
		d, err := s.gate.Check(s.at(90*time.Minute), models.ScopeValidate, "203.0.113.1")
		s.Require().NoError(err)
		s.Equal(23, d.RemainingHours)
	})

	s.Run("window elapsed", func() {
		d, err := s.gate.Check(s.at(24*time.Hour), models.ScopeValidate, "203.0.113.1")
		s.Require().NoError(err)
		s.True(d.Allowed)
	})

	s.Equal(float64(2), testutil.ToFloat64(s.metrics.Checks.WithLabelValues(models.ScopeValidate, "blocked")))
}

func (s *GateSuite) TestScopesAndIdentifiersIndependent() {
	s.Require().NoError(s.gate.Record(s.at(0), models.ScopeValidate, "203.0.113.1"))

	d, err := s.gate.Check(s.at(time.Minute), models.ScopeVote, "203.0.113.1")
	s.Require().NoError(err)
	s.True(d.Allowed)

	d, err = s.gate.Check(s.at(time.Minute), models.ScopeValidate, "203.0.113.2")
	s.Require().NoError(err)
	s.True(d.Allowed)
}

func (s *GateSuite) TestCustomWindow() {
	gate := New(s.store, WithWindow(2*time.Hour))
	s.Require().NoError(gate.Record(s.at(0), models.ScopeVote, "id"))
	d, err := gate.Check(s.at(30*time.Minute), models.ScopeVote, "id")
	s.Require().NoError(err)
	s.Equal(2, d.RemainingHours)
}

func (s *GateSuite) TestEmptyIdentifierRejected() {
	_, err := s.gate.Check(s.at(0), models.ScopeVote, "")
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	s.True(dErrors.HasCode(s.gate.Record(s.at(0), models.ScopeVote, ""), dErrors.CodeBadRequest))
}

type failingStore struct{}

func (failingStore) Get(context.Context, string, string, time.Time) (*models.Entry, error) {
	return nil, errors.New("connection refused")
}

func (failingStore) Put(context.Context, *models.Entry) error {
	return errors.New("connection refused")
}

func (failingStore) Claim(context.Context, *models.Entry, time.Time) (*models.Entry, error) {
	return nil, errors.New("connection refused")
}

func (s *GateSuite) TestStoreFailureIsUnavailable() {
	gate := New(failingStore{})
	_, err := gate.Check(s.at(0), models.ScopeVote, "id")
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	s.True(dErrors.HasCode(gate.Record(s.at(0), models.ScopeVote, "id"), dErrors.CodeUnavailable))
	_, err = gate.Acquire(s.at(0), models.ScopeValidate, "id")
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
}

func (s *GateSuite) TestAcquireStartsWindowOnce() {
	d, err := s.gate.Acquire(s.at(0), models.ScopeValidate, "203.0.113.1")
	s.Require().NoError(err)
	s.True(d.Allowed)
	s.Equal(s.start, d.LastVoteAt)

	d, err = s.gate.Acquire(s.at(90*time.Minute), models.ScopeValidate, "203.0.113.1")
	s.Require().NoError(err)
	s.False(d.Allowed)
	s.Equal(23, d.RemainingHours)
	s.Equal(s.start, d.LastVoteAt, "a blocked attempt does not move the window")

	d, err = s.gate.Acquire(s.at(24*time.Hour), models.ScopeValidate, "203.0.113.1")
	s.Require().NoError(err)
	s.True(d.Allowed)

	_, err = s.gate.Acquire(s.at(0), models.ScopeValidate, "")
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *GateSuite) TestConcurrentAcquireAllowsOne() {
	const attempts = 40
	var wg sync.WaitGroup
	var allowed atomic.Int32
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := s.gate.Acquire(s.at(0), models.ScopeValidate, "203.0.113.1")
			if err == nil && d.Allowed {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), allowed.Load())
	s.Equal(float64(attempts-1), testutil.ToFloat64(s.metrics.Checks.WithLabelValues(models.ScopeValidate, "blocked")))
}
