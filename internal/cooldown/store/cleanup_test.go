package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ballot/internal/cooldown/metrics"
	"ballot/internal/cooldown/models"
	"ballot/internal/platform/logger"
)

func TestStartCleanupPurgesUntilCancelled(t *testing.T) {
	s := NewInMemory()
	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, s.Put(context.Background(), entryAt(models.ScopeVote, "old", past, time.Hour)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- StartCleanup(ctx, s, 5*time.Millisecond, logger.Discard(), metrics.New(prometheus.NewRegistry()))
	}()

	assert.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(time.Second):
		t.Fatal("cleanup did not stop")
	}
}
