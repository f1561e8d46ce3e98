package requestcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUnsetValuesAreZero(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, Client{}, ClientFrom(ctx))
	assert.Empty(t, ClientIP(ctx))
	assert.Empty(t, RequestID(ctx))
	assert.WithinDuration(t, time.Now(), Now(ctx), time.Second)
}

func TestStoredValuesAreReturned(t *testing.T) {
	fixed := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	ctx := WithClient(context.Background(), Client{IP: "203.0.113.7", UserAgent: "curl/8.0", AcceptLanguage: "ar-MA"})
	ctx = WithRequestID(ctx, "req-1")
	ctx = WithTime(ctx, fixed)

	assert.Equal(t, "203.0.113.7", ClientIP(ctx))
	assert.Equal(t, "curl/8.0", UserAgent(ctx))
	assert.Equal(t, "ar-MA", AcceptLanguage(ctx))
	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Equal(t, fixed, Now(ctx))
}

func TestWithClientReplaces(t *testing.T) {
	ctx := WithClient(context.Background(), Client{IP: "198.51.100.1", UserAgent: "a"})
	ctx = WithClient(ctx, Client{IP: "198.51.100.2"})

	assert.Equal(t, "198.51.100.2", ClientIP(ctx))
	assert.Empty(t, UserAgent(ctx))
}
