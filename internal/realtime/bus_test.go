package realtime

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"ballot/internal/platform/logger"
)

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case evt, ok := <-ch:
		require.True(t, ok, "channel closed")
		return evt
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func assertNoEvent(t *testing.T, ch <-chan Event) {
	t.Helper()
	select {
	case evt := <-ch:
		t.Fatalf("unexpected event %+v", evt)
	default:
	}
}

func TestBusDeliversToMatchingSubscribers(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := NewBus(nil, logger.Discard())
	defer bus.Close()

	_, all := bus.Subscribe("")
	_, onlyA := bus.Subscribe("cat1-a")
	_, onlyB := bus.Subscribe("cat1-b")

	bus.Publish(Event{Type: EventTallyChanged, CandidateID: "cat1-a", VotesCount: 6})

	got := receive(t, all)
	assert.Equal(t, "cat1-a", got.CandidateID)
	assert.Equal(t, int64(6), got.VotesCount)
	assert.False(t, got.Timestamp.IsZero())

	assert.Equal(t, "cat1-a", receive(t, onlyA).CandidateID)
	assertNoEvent(t, onlyB)
}

func TestBusResyncReachesFilteredSubscribers(t *testing.T) {
	bus := NewBus(nil, logger.Discard())
	defer bus.Close()

	_, onlyB := bus.Subscribe("cat1-b")
	bus.Publish(Event{Type: EventResync})

	assert.Equal(t, EventResync, receive(t, onlyB).Type)
}

func TestBusUnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus(nil, logger.Discard())
	defer bus.Close()

	id, ch := bus.Subscribe("")
	require.Equal(t, 1, bus.Len())

	bus.Unsubscribe(id)
	bus.Unsubscribe(id)

	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, bus.Len())
}

func TestBusCloseClosesAllAndRejectsNewSubscribers(t *testing.T) {
	bus := NewBus(nil, logger.Discard())
	_, a := bus.Subscribe("")
	_, b := bus.Subscribe("cat2-a")

	bus.Close()
	bus.Close()

	_, ok := <-a
	assert.False(t, ok)
	_, ok = <-b
	assert.False(t, ok)

	_, late := bus.Subscribe("")
	_, ok = <-late
	assert.False(t, ok)

	// publishing after close is a no-op
	bus.Publish(Event{Type: EventTallyChanged, CandidateID: "cat1-a"})
}

func TestBusPublishDoesNotBlockOnFullSubscriber(t *testing.T) {
	reg := prometheus.NewRegistry()
	bus := NewBus(reg, logger.Discard())
	defer bus.Close()

	_, slow := bus.Subscribe("")

	done := make(chan struct{})
	go func() {
		for i := 0; i < SubscriberQueueSize+5; i++ {
			bus.Publish(Event{Type: EventTallyChanged, CandidateID: "cat1-a", VotesCount: int64(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}

	assert.Len(t, slow, SubscriberQueueSize)
	assert.Equal(t, float64(5), testutil.ToFloat64(bus.metrics.dropped))
	assert.Equal(t, float64(1), testutil.ToFloat64(bus.metrics.subscribers))
}

func TestBusConcurrentSubscribeAndPublish(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := NewBus(nil, logger.Discard())
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			id, ch := bus.Subscribe("")
			bus.Publish(Event{Type: EventTallyChanged, CandidateID: "cat1-a"})
			bus.Unsubscribe(id)
			for range ch {
			}
		}()
		go func() {
			defer wg.Done()
			bus.Publish(Event{Type: EventResync})
		}()
	}
	wg.Wait()
	bus.Close()
	assert.Equal(t, 0, bus.Len())
}

func TestNotifierWithoutDatabasePublishesLocally(t *testing.T) {
	bus := NewBus(nil, logger.Discard())
	defer bus.Close()
	_, ch := bus.Subscribe("")

	n := NewNotifier(bus, nil, logger.Discard())
	n.NotifyTallyChanged(context.Background(), "cat3-b", 11)
	n.NotifyResync(context.Background())

	evt := receive(t, ch)
	assert.Equal(t, EventTallyChanged, evt.Type)
	assert.Equal(t, "cat3-b", evt.CandidateID)
	assert.Equal(t, int64(11), evt.VotesCount)
	assert.Equal(t, EventResync, receive(t, ch).Type)
}

func TestDecodeEvent(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    EventType
		wantErr bool
	}{
		{name: "tally", payload: `{"type":"tally_changed","candidate_id":"cat1-a","votes_count":3}`, want: EventTallyChanged},
		{name: "resync", payload: `{"type":"resync"}`, want: EventResync},
		{name: "unknown type", payload: `{"type":"other"}`, wantErr: true},
		{name: "not json", payload: `nope`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evt, err := DecodeEvent(tt.payload)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, evt.Type)
		})
	}
}
