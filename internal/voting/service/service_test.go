package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks
import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"ballot/internal/audit"
	cdmodels "ballot/internal/cooldown/models"
	cdservice "ballot/internal/cooldown/service"
	cdstore "ballot/internal/cooldown/store"
	"ballot/internal/identity"
	"ballot/internal/platform/logger"
	"ballot/internal/voting/models"
	"ballot/internal/voting/service/mocks"
	"ballot/internal/voting/store"
	dErrors "ballot/pkg/domain-errors"
	"ballot/pkg/requestcontext"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.6099.109 Safari/537.36"

type ServiceSuite struct {
	suite.Suite
	ctx       context.Context
	ctrl      *gomock.Controller
	store     *store.InMemoryStore
	collector *mocks.MockIdentityCollector
	gate      *mocks.MockCooldownGate
	notifier  *mocks.MockNotifier
	auditor   *audit.InMemoryStore
	svc       *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = requestcontext.WithRequestID(context.Background(), "req-test")
	s.ctrl = gomock.NewController(s.T())
	s.store = store.NewInMemory()
	s.Require().NoError(s.store.Seed(s.ctx, models.SeedCategories, models.SeedCandidates))
	s.collector = mocks.NewMockIdentityCollector(s.ctrl)
	s.gate = mocks.NewMockCooldownGate(s.ctrl)
	s.notifier = mocks.NewMockNotifier(s.ctrl)
	s.auditor = audit.NewInMemoryStore()
	s.svc = New(s.store, s.collector,
		WithCooldown(s.gate),
		WithNotifier(s.notifier),
		WithAuditPublisher(audit.NewPublisher(s.auditor)),
		WithLogger(logger.Discard()),
	)
}

func signals(ip string) identity.Signals {
	return identity.Signals{
		ServerIP:     ip,
		UserAgent:    chromeUA,
		LocalStorage: true,
		IndexedDB:    true,
	}
}

func ident(fp, ip string) models.Identity {
	return models.Identity{Fingerprint: fp, IP: ip, UserAgent: chromeUA}
}

func (s *ServiceSuite) expectAllowed(ip string) {
	s.gate.EXPECT().Check(gomock.Any(), cdmodels.ScopeVote, ip).Return(cdmodels.Decision{Allowed: true}, nil)
}

func (s *ServiceSuite) auditEvents() []audit.Event {
	events, err := s.auditor.ListAll(s.ctx)
	s.Require().NoError(err)
	return events
}

func (s *ServiceSuite) countRows() (verifications, votes int64) {
	verifications, err := s.store.CountVerifications(s.ctx)
	s.Require().NoError(err)
	for _, c := range models.SeedCandidates {
		n, err := s.store.CountVotes(s.ctx, c.ID)
		s.Require().NoError(err)
		votes += n
	}
	return verifications, votes
}

func (s *ServiceSuite) TestSubmitVoteFreshIdentity() {
	s.Require().NoError(s.store.SetTally(s.ctx, "cat1-a", 5))
	s.expectAllowed("203.0.113.7")
	s.collector.EXPECT().Collect(gomock.Any(), gomock.Any()).Return(ident("fp-1", "203.0.113.7"), nil)
	s.gate.EXPECT().Record(gomock.Any(), cdmodels.ScopeVote, "203.0.113.7").Return(nil)
	s.notifier.EXPECT().NotifyTallyChanged(gomock.Any(), "cat1-a", int64(6))

	receipt, err := s.svc.SubmitVote(s.ctx, VoteRequest{CandidateID: "cat1-a", VoterProfileID: "profile-1", Signals: signals("203.0.113.7")})
	s.Require().NoError(err)

	s.Equal(int64(6), receipt.VotesCount)
	s.NotEmpty(receipt.VoteID)
	s.NotEmpty(receipt.VerificationID)

	candidate, err := s.store.GetCandidate(s.ctx, "cat1-a")
	s.Require().NoError(err)
	s.Equal(int64(6), candidate.VotesCount)

	found, err := s.store.FindVerification(s.ctx, "fp-1", "")
	s.Require().NoError(err)
	s.Require().NotNil(found)
	s.Equal(receipt.VerificationID, found.ID)
	s.Equal("profile-1", found.UserProfileID)

	events := s.auditEvents()
	s.Require().Len(events, 1)
	s.Equal(audit.OutcomeAccepted, events[0].Outcome)
	s.Equal(receipt.VerificationID, events[0].VerificationID)
	s.Equal("req-test", events[0].RequestID)
}

func (s *ServiceSuite) TestSubmitVoteGeneratesAnonymousProfile() {
	s.expectAllowed("203.0.113.8")
	s.collector.EXPECT().Collect(gomock.Any(), gomock.Any()).Return(ident("fp-anon", "203.0.113.8"), nil)
	s.gate.EXPECT().Record(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	s.notifier.EXPECT().NotifyTallyChanged(gomock.Any(), "cat2-a", int64(1))

	receipt, err := s.svc.SubmitVote(s.ctx, VoteRequest{CandidateID: "cat2-a", Signals: signals("203.0.113.8")})
	s.Require().NoError(err)

	found, err := s.store.FindVerification(s.ctx, "fp-anon", "")
	s.Require().NoError(err)
	s.Require().NotNil(found)
	s.NotEmpty(found.UserProfileID)
	s.Equal(receipt.VerificationID, found.ID)
}

func (s *ServiceSuite) TestSubmitVoteDuplicateFingerprint() {
	s.seedVerification("fp-dup", "198.51.100.1")
	before, beforeVotes := s.countRows()

	s.collector.EXPECT().Collect(gomock.Any(), gomock.Any()).Return(ident("fp-dup", "198.51.100.2"), nil)

	_, err := s.svc.SubmitVote(s.ctx, VoteRequest{CandidateID: "cat3-a", Signals: signals("198.51.100.2")})

	s.Equal(models.ErrDuplicateVote, models.KindOf(err))
	after, afterVotes := s.countRows()
	s.Equal(before, after)
	s.Equal(beforeVotes, afterVotes)

	events := s.auditEvents()
	s.Require().Len(events, 1)
	s.Equal(audit.OutcomeRejected, events[0].Outcome)
	s.Equal(string(models.ErrDuplicateVote), events[0].Reason)
}

func (s *ServiceSuite) TestSubmitVoteDuplicateIPForAnyCandidate() {
	s.seedVerification("fp-a", "198.51.100.9")

	s.collector.EXPECT().Collect(gomock.Any(), gomock.Any()).Return(ident("fp-b", "198.51.100.9"), nil)

	_, err := s.svc.SubmitVote(s.ctx, VoteRequest{CandidateID: "cat2-e", Signals: signals("198.51.100.9")})
	s.Equal(models.ErrDuplicateVote, models.KindOf(err))
}

func (s *ServiceSuite) TestSubmitVoteUnknownIPDoesNotMatch() {
	s.seedVerification("fp-x", models.UnknownIP)

	s.collector.EXPECT().Collect(gomock.Any(), gomock.Any()).Return(ident("fp-y", models.UnknownIP), nil)
	s.notifier.EXPECT().NotifyTallyChanged(gomock.Any(), "cat1-b", int64(1))

	_, err := s.svc.SubmitVote(s.ctx, VoteRequest{CandidateID: "cat1-b", Signals: signals("")})
	s.NoError(err)
}

func (s *ServiceSuite) TestSubmitVoteIncognitoRejectedBeforeAnyWork() {
	sig := signals("203.0.113.7")
	sig.IndexedDB = false

	_, err := s.svc.SubmitVote(s.ctx, VoteRequest{CandidateID: "cat1-a", Signals: sig})

	var ve *models.VoteError
	s.Require().ErrorAs(err, &ve)
	s.Equal(models.ErrIncognitoMode, ve.Kind)
	s.Equal(models.MsgIncognito, ve.Message)
	verifications, votes := s.countRows()
	s.Zero(verifications)
	s.Zero(votes)
}

func (s *ServiceSuite) TestSubmitVoteCooldownActive() {
	s.collector.EXPECT().Collect(gomock.Any(), gomock.Any()).Return(ident("fp-cool", "203.0.113.7"), nil)
	s.gate.EXPECT().Check(gomock.Any(), cdmodels.ScopeVote, "203.0.113.7").
		Return(cdmodels.Decision{Allowed: false, RemainingHours: 5}, nil)

	_, err := s.svc.SubmitVote(s.ctx, VoteRequest{CandidateID: "cat1-a", Signals: signals("203.0.113.7")})

	var ve *models.VoteError
	s.Require().ErrorAs(err, &ve)
	s.Equal(models.ErrCooldownActive, ve.Kind)
	s.Equal(models.CooldownMessage(5), ve.Message)
}

func (s *ServiceSuite) TestSubmitVoteCooldownFailureFailsOpen() {
	s.gate.EXPECT().Check(gomock.Any(), cdmodels.ScopeVote, "203.0.113.7").
		Return(cdmodels.Decision{}, dErrors.New(dErrors.CodeUnavailable, "down"))
	s.collector.EXPECT().Collect(gomock.Any(), gomock.Any()).Return(ident("fp-open", "203.0.113.7"), nil)
	s.gate.EXPECT().Record(gomock.Any(), cdmodels.ScopeVote, "203.0.113.7").Return(errors.New("still down"))
	s.notifier.EXPECT().NotifyTallyChanged(gomock.Any(), "cat1-a", int64(1))

	_, err := s.svc.SubmitVote(s.ctx, VoteRequest{CandidateID: "cat1-a", Signals: signals("203.0.113.7")})
	s.NoError(err)
}

func (s *ServiceSuite) TestSubmitVoteRejections() {
	tests := []struct {
		name        string
		candidateID string
		collectErr  error
		gated       bool
		want        models.ErrorKind
	}{
		{name: "missing candidate id", candidateID: "", want: models.ErrInvalidRequest},
		{name: "unknown candidate", candidateID: "cat9-z", gated: true, want: models.ErrCandidateNotFound},
		{name: "missing fingerprint", candidateID: "cat1-a", collectErr: identity.ErrNoFingerprintSignal, want: models.ErrInvalidRequest},
		{name: "collector failure", candidateID: "cat1-a", collectErr: errors.New("collector down"), want: models.ErrVerification},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			if tt.candidateID != "" {
				s.collector.EXPECT().Collect(gomock.Any(), gomock.Any()).Return(ident("fp-"+tt.name, "203.0.113.50"), tt.collectErr)
			}
			if tt.gated {
				s.expectAllowed("203.0.113.50")
			}
			_, err := s.svc.SubmitVote(s.ctx, VoteRequest{CandidateID: tt.candidateID, Signals: signals("203.0.113.50")})
			s.Equal(tt.want, models.KindOf(err))
		})
	}
}

func (s *ServiceSuite) TestSubmitVoteInactiveCandidate() {
	st := mocks.NewMockStore(s.ctrl)
	svc := New(st, s.collector, WithLogger(logger.Discard()))
	s.collector.EXPECT().Collect(gomock.Any(), gomock.Any()).Return(ident("fp-i", "203.0.113.60"), nil)
	st.EXPECT().FindVerification(gomock.Any(), "fp-i", "203.0.113.60").Return(nil, nil)
	st.EXPECT().RunInTx(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, fn func(store.Ledger) error) error {
		return fn(inactiveLedger{})
	})

	_, err := svc.SubmitVote(s.ctx, VoteRequest{CandidateID: "cat1-a", Signals: signals("203.0.113.60")})
	s.Equal(models.ErrCandidateNotFound, models.KindOf(err))
}

func (s *ServiceSuite) TestSubmitVoteStorageFailureDoesNotLeak() {
	st := mocks.NewMockStore(s.ctrl)
	svc := New(st, s.collector, WithLogger(logger.Discard()))
	s.collector.EXPECT().Collect(gomock.Any(), gomock.Any()).Return(ident("fp-s", "203.0.113.61"), nil)
	st.EXPECT().FindVerification(gomock.Any(), "fp-s", "203.0.113.61").Return(nil, nil)
	st.EXPECT().RunInTx(gomock.Any(), gomock.Any()).Return(errors.New("pq: connection reset by peer"))

	_, err := svc.SubmitVote(s.ctx, VoteRequest{CandidateID: "cat1-a", Signals: signals("203.0.113.61")})

	s.Equal(models.ErrVoteSubmission, models.KindOf(err))
	result := models.ResultFromError(err)
	s.False(result.Success)
	s.Equal(models.MsgVoteSubmission, result.Message)
	s.NotContains(result.Message, "pq")
}

func (s *ServiceSuite) TestSubmitVoteLookupFailure() {
	st := mocks.NewMockStore(s.ctrl)
	svc := New(st, s.collector, WithLogger(logger.Discard()))
	s.collector.EXPECT().Collect(gomock.Any(), gomock.Any()).Return(ident("fp-l", "203.0.113.62"), nil)
	st.EXPECT().FindVerification(gomock.Any(), "fp-l", "203.0.113.62").Return(nil, errors.New("pq: timeout"))

	_, err := svc.SubmitVote(s.ctx, VoteRequest{CandidateID: "cat1-a", Signals: signals("203.0.113.62")})
	s.Equal(models.ErrVerification, models.KindOf(err))
}

func (s *ServiceSuite) TestRepeatVoteIsDuplicateDespiteCooldown() {
	gate := cdservice.New(cdstore.NewInMemory())
	svc := New(s.store, identity.NewCollector(), WithCooldown(gate), WithLogger(logger.Discard()))

	sig := signals("203.0.113.90")
	sig.VisitorID = "device-a"
	_, err := svc.SubmitVote(s.ctx, VoteRequest{CandidateID: "cat1-a", Signals: sig})
	s.Require().NoError(err)
	before, beforeVotes := s.countRows()

	_, err = svc.SubmitVote(s.ctx, VoteRequest{CandidateID: "cat2-a", Signals: sig})
	s.Equal(models.ErrDuplicateVote, models.KindOf(err), "same device")

	sig.VisitorID = "device-b"
	_, err = svc.SubmitVote(s.ctx, VoteRequest{CandidateID: "cat3-a", Signals: sig})
	s.Equal(models.ErrDuplicateVote, models.KindOf(err), "same IP")

	after, afterVotes := s.countRows()
	s.Equal(before, after)
	s.Equal(beforeVotes, afterVotes)
}

func (s *ServiceSuite) TestCooldownAppliesToUnknownVoters() {
	gate := cdservice.New(cdstore.NewInMemory())
	s.Require().NoError(gate.Record(s.ctx, cdmodels.ScopeVote, "203.0.113.91"))
	svc := New(s.store, identity.NewCollector(), WithCooldown(gate), WithLogger(logger.Discard()))

	sig := signals("203.0.113.91")
	sig.VisitorID = "device-c"
	_, err := svc.SubmitVote(s.ctx, VoteRequest{CandidateID: "cat1-a", Signals: sig})
	s.Equal(models.ErrCooldownActive, models.KindOf(err))
}

func (s *ServiceSuite) TestVisitorIDIsTheDeviceKey() {
	svc := New(s.store, identity.NewCollector(), WithLogger(logger.Discard()))

	a := signals("203.0.113.1")
	a.AcceptLanguage = "ar"
	b := signals("198.51.100.200")
	b.AcceptLanguage = "ar"

	_, err := svc.SubmitVote(s.ctx, VoteRequest{CandidateID: "cat1-a", Signals: a})
	s.Equal(models.ErrInvalidRequest, models.KindOf(err), "no visitor id")

	a.VisitorID = "device-1"
	b.VisitorID = "device-2"
	_, err = svc.SubmitVote(s.ctx, VoteRequest{CandidateID: "cat1-a", Signals: a})
	s.Require().NoError(err)
	_, err = svc.SubmitVote(s.ctx, VoteRequest{CandidateID: "cat1-a", Signals: b})
	s.Require().NoError(err, "same browser build on another device")

	count, err := s.store.CountVotes(s.ctx, "cat1-a")
	s.Require().NoError(err)
	s.Equal(int64(2), count)
}

func (s *ServiceSuite) TestSequentialVotesKeepTallyInSync() {
	svc := New(s.store, identity.NewCollector(), WithLogger(logger.Discard()))
	for i := 0; i < 7; i++ {
		sig := signals(fmt.Sprintf("192.0.2.%d", i+1))
		sig.VisitorID = fmt.Sprintf("visitor-%d", i)
		_, err := svc.SubmitVote(s.ctx, VoteRequest{CandidateID: "cat2-b", Signals: sig})
		s.Require().NoError(err)
	}

	candidate, err := s.store.GetCandidate(s.ctx, "cat2-b")
	s.Require().NoError(err)
	count, err := s.store.CountVotes(s.ctx, "cat2-b")
	s.Require().NoError(err)
	s.Equal(int64(7), count)
	s.Equal(count, candidate.VotesCount)
}

func (s *ServiceSuite) TestConcurrentSubmissionsFromOneIdentity() {
	svc := New(s.store, identity.NewCollector(), WithLogger(logger.Discard()))
	const attempts = 30

	var wg sync.WaitGroup
	var accepted, duplicates atomic.Int32
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			candidate := models.SeedCandidates[i%len(models.SeedCandidates)].ID
			sig := signals("192.0.2.200")
			sig.VisitorID = "same-device"
			_, err := svc.SubmitVote(s.ctx, VoteRequest{CandidateID: candidate, Signals: sig})
			switch models.KindOf(err) {
			case models.ErrDuplicateVote:
				duplicates.Add(1)
			default:
				if err == nil {
					accepted.Add(1)
				}
			}
		}(i)
	}
	wg.Wait()

	s.Equal(int32(1), accepted.Load())
	s.Equal(int32(attempts-1), duplicates.Load())
	verifications, votes := s.countRows()
	s.Equal(int64(1), verifications)
	s.Equal(int64(1), votes)
}

func (s *ServiceSuite) seedVerification(fp, ip string) {
	svc := New(s.store, fixedCollector{ident(fp, ip)}, WithLogger(logger.Discard()))
	_, err := svc.SubmitVote(s.ctx, VoteRequest{CandidateID: "cat1-c", Signals: signals(ip)})
	s.Require().NoError(err)
}

type fixedCollector struct {
	identity models.Identity
}

func (f fixedCollector) Collect(context.Context, identity.Signals) (models.Identity, error) {
	return f.identity, nil
}

type inactiveLedger struct{ store.Ledger }

func (inactiveLedger) GetCandidate(_ context.Context, id string) (*models.Candidate, error) {
	return &models.Candidate{ID: id, IsActive: false}, nil
}

func TestValidateVoteCooldownWindow(t *testing.T) {
	gate := cdservice.New(cdstore.NewInMemory())
	svc := New(store.NewInMemory(), identity.NewCollector(), WithCooldown(gate), WithLogger(logger.Discard()))

	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), start)
	require.NoError(t, svc.ValidateVote(ctx, "203.0.113.7"))

	later := requestcontext.WithTime(context.Background(), start.Add(90*time.Minute))
	err := svc.ValidateVote(later, "203.0.113.7")
	var ve *models.VoteError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, models.ErrCooldownActive, ve.Kind)
	assert.Equal(t, models.CooldownMessage(23), ve.Message)

	assert.NoError(t, svc.ValidateVote(later, "203.0.113.8"), "other IPs are independent")

	nextDay := requestcontext.WithTime(context.Background(), start.Add(24*time.Hour))
	assert.NoError(t, svc.ValidateVote(nextDay, "203.0.113.7"))
}

func TestValidateVoteUnknownIPSharesOneKey(t *testing.T) {
	gate := cdservice.New(cdstore.NewInMemory())
	svc := New(store.NewInMemory(), identity.NewCollector(), WithCooldown(gate), WithLogger(logger.Discard()))

	require.NoError(t, svc.ValidateVote(context.Background(), ""))
	err := svc.ValidateVote(context.Background(), "not-an-ip")
	assert.Equal(t, models.ErrCooldownActive, models.KindOf(err))
}

func TestValidateVoteConcurrentAttemptsAllowOne(t *testing.T) {
	gate := cdservice.New(cdstore.NewInMemory())
	svc := New(store.NewInMemory(), identity.NewCollector(), WithCooldown(gate), WithLogger(logger.Discard()))

	const attempts = 25
	var wg sync.WaitGroup
	var allowed, cooling atomic.Int32
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := svc.ValidateVote(context.Background(), "203.0.113.30")
			switch {
			case err == nil:
				allowed.Add(1)
			case models.KindOf(err) == models.ErrCooldownActive:
				cooling.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), allowed.Load())
	assert.Equal(t, int32(attempts-1), cooling.Load())
}

func TestValidateVoteProxyDetected(t *testing.T) {
	ctrl := gomock.NewController(t)
	proxy := mocks.NewMockProxyDetector(ctrl)
	proxy.EXPECT().IsProxy(gomock.Any(), "203.0.113.7").Return(true, nil)

	svc := New(store.NewInMemory(), identity.NewCollector(), WithProxyDetector(proxy), WithLogger(logger.Discard()))
	err := svc.ValidateVote(context.Background(), "203.0.113.7")

	assert.Equal(t, models.ErrProxyDetected, models.KindOf(err))
}

func TestValidateVoteGateFailureRejects(t *testing.T) {
	ctrl := gomock.NewController(t)
	gate := mocks.NewMockCooldownGate(ctrl)
	gate.EXPECT().Acquire(gomock.Any(), cdmodels.ScopeValidate, "203.0.113.7").
		Return(cdmodels.Decision{}, errors.New("redis: connection refused"))

	svc := New(store.NewInMemory(), identity.NewCollector(), WithCooldown(gate), WithLogger(logger.Discard()))
	err := svc.ValidateVote(context.Background(), "203.0.113.7")

	result := models.ResultFromError(err)
	assert.Equal(t, models.ErrVerification, result.Error)
	assert.Equal(t, models.MsgVerificationError, result.Message)
}

func TestReconcileRepairsDriftAndNotifies(t *testing.T) {
	ctrl := gomock.NewController(t)
	notifier := mocks.NewMockNotifier(ctrl)
	notifier.EXPECT().NotifyResync(gomock.Any())

	st := store.NewInMemory()
	ctx := context.Background()
	require.NoError(t, st.Seed(ctx, models.SeedCategories, models.SeedCandidates))
	require.NoError(t, st.SetTally(ctx, "cat1-a", 40))

	svc := New(st, identity.NewCollector(), WithNotifier(notifier), WithLogger(logger.Discard()))
	changed, err := svc.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	candidate, err := st.GetCandidate(ctx, "cat1-a")
	require.NoError(t, err)
	assert.Zero(t, candidate.VotesCount)

	changed, err = svc.Reconcile(ctx)
	require.NoError(t, err)
	assert.Zero(t, changed)
}

func TestStatsAndDailySnapshot(t *testing.T) {
	st := store.NewInMemory()
	base := context.Background()
	require.NoError(t, st.Seed(base, models.SeedCategories, models.SeedCandidates))
	require.NoError(t, st.SetTally(base, "cat1-a", 50))
	require.NoError(t, st.SetTally(base, "cat2-a", 30))
	require.NoError(t, st.SetTally(base, "cat3-a", 20))

	svc := New(st, identity.NewCollector(), WithLogger(logger.Discard()))

	yesterday := requestcontext.WithTime(base, time.Date(2025, 3, 1, 23, 0, 0, 0, time.UTC))
	snap, err := svc.SnapshotDailyTotal(yesterday)
	require.NoError(t, err)
	assert.Equal(t, int64(100), snap.TotalVotes)

	require.NoError(t, st.SetTally(base, "cat1-a", 75))
	today := requestcontext.WithTime(base, time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC))
	stats, err := svc.Stats(today)
	require.NoError(t, err)

	assert.Equal(t, int64(125), stats.TotalVotes)
	require.Len(t, stats.Leaders, models.LeaderCount)
	assert.Equal(t, "cat1-a", stats.Leaders[0].CandidateID)
	assert.Equal(t, 60, stats.Leaders[0].Percent)
	assert.InDelta(t, 25.0, stats.DailyGrowth, 0.001)
}

func TestStatsWithoutSnapshotHasNoGrowth(t *testing.T) {
	st := store.NewInMemory()
	require.NoError(t, st.Seed(context.Background(), models.SeedCategories, models.SeedCandidates))
	svc := New(st, identity.NewCollector(), WithLogger(logger.Discard()))

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalVotes)
	assert.Zero(t, stats.DailyGrowth)
}

func TestGetCandidateNotFound(t *testing.T) {
	svc := New(store.NewInMemory(), identity.NewCollector(), WithLogger(logger.Discard()))
	_, err := svc.GetCandidate(context.Background(), "missing")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestListCandidatesRequiresCategory(t *testing.T) {
	svc := New(store.NewInMemory(), identity.NewCollector(), WithLogger(logger.Discard()))
	_, err := svc.ListCandidates(context.Background(), "")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestStartSnapshotsRejectsBadSchedule(t *testing.T) {
	svc := New(store.NewInMemory(), identity.NewCollector(), WithLogger(logger.Discard()))
	err := StartSnapshots(context.Background(), svc, "not a schedule", logger.Discard())
	assert.Error(t, err)
}

func TestStartSnapshotsStopsOnCancel(t *testing.T) {
	svc := New(store.NewInMemory(), identity.NewCollector(), WithLogger(logger.Discard()))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- StartSnapshots(ctx, svc, "@every 1h", logger.Discard()) }()
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
