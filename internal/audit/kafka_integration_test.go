//go:build integration

package audit_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"ballot/internal/audit"
	"ballot/pkg/testutil/containers"
)

type KafkaStoreSuite struct {
	suite.Suite
	redpanda *containers.RedpandaContainer
	store    *audit.KafkaStore
	topic    string
}

func TestKafkaStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaStoreSuite))
}

func (s *KafkaStoreSuite) SetupSuite() {
	ctx := context.Background()
	mgr := containers.GetManager()
	s.redpanda = mgr.GetRedpanda(s.T())
	s.topic = "vote-audit-test"

	store, err := audit.NewKafkaStore(ctx, s.redpanda.Brokers, s.topic)
	s.Require().NoError(err)
	s.store = store
	s.Require().NoError(s.store.EnsureTopic(ctx, 1, 1))
}

func (s *KafkaStoreSuite) TearDownSuite() {
	if s.store != nil {
		s.store.Close()
	}
}

func (s *KafkaStoreSuite) TestEnsureTopicIsIdempotent() {
	s.NoError(s.store.EnsureTopic(context.Background(), 1, 1))
}

func (s *KafkaStoreSuite) TestAppendProducesKeyedJSON() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := s.store.Append(ctx, audit.Event{
		Timestamp:   time.Now(),
		Action:      audit.ActionVoteSubmitted,
		Outcome:     audit.OutcomeAccepted,
		CandidateID: "cat1-a",
		RequestID:   "req-1",
	})
	s.Require().NoError(err)

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.redpanda.Brokers...),
		kgo.ConsumeTopics(s.topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	var got *kgo.Record
	for got == nil {
		fetches := consumer.PollFetches(ctx)
		s.Require().NoError(ctx.Err())
		fetches.EachRecord(func(r *kgo.Record) {
			if string(r.Key) == "cat1-a" {
				got = r
			}
		})
	}

	var evt audit.Event
	s.Require().NoError(json.Unmarshal(got.Value, &evt))
	s.Equal(audit.ActionVoteSubmitted, evt.Action)
	s.Equal("req-1", evt.RequestID)
}
