package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ballot/internal/cooldown/models"
)

const cooldownKeyPrefix = "cooldown:"

// RedisStore keeps entries as JSON values whose TTL matches the window, so
// expiry needs no cleanup.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedis(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

type redisEntry struct {
	LastVoteAt time.Time `json:"last_vote_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

func redisKey(scope, identifier string) string {
	return cooldownKeyPrefix + scope + ":" + identifier
}

func (s *RedisStore) Get(ctx context.Context, scope, identifier string, now time.Time) (*models.Entry, error) {
	raw, err := s.client.Get(ctx, redisKey(scope, identifier)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cooldown: %w", err)
	}
	var re redisEntry
	if err := json.Unmarshal(raw, &re); err != nil {
		return nil, fmt.Errorf("decode cooldown: %w", err)
	}
	e := &models.Entry{Scope: scope, Identifier: identifier, LastVoteAt: re.LastVoteAt, ExpiresAt: re.ExpiresAt}
	if e.Expired(now) {
		return nil, nil
	}
	return e, nil
}

func (s *RedisStore) Put(ctx context.Context, entry *models.Entry) error {
	ttl := time.Until(entry.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(redisEntry{LastVoteAt: entry.LastVoteAt, ExpiresAt: entry.ExpiresAt})
	if err != nil {
		return fmt.Errorf("encode cooldown: %w", err)
	}
	if err := s.client.Set(ctx, redisKey(entry.Scope, entry.Identifier), raw, ttl).Err(); err != nil {
		return fmt.Errorf("put cooldown: %w", err)
	}
	return nil
}

// Claim is SET NX PX; the key's TTL is the window, so an expired entry is
// already gone.
func (s *RedisStore) Claim(ctx context.Context, entry *models.Entry, now time.Time) (*models.Entry, error) {
	ttl := entry.ExpiresAt.Sub(now)
	if ttl <= 0 {
		return nil, nil
	}
	raw, err := json.Marshal(redisEntry{LastVoteAt: entry.LastVoteAt, ExpiresAt: entry.ExpiresAt})
	if err != nil {
		return nil, fmt.Errorf("encode cooldown: %w", err)
	}
	ok, err := s.client.SetNX(ctx, redisKey(entry.Scope, entry.Identifier), raw, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("claim cooldown: %w", err)
	}
	if ok {
		return nil, nil
	}
	existing, err := s.Get(ctx, entry.Scope, entry.Identifier, now)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrClaimContended
	}
	return existing, nil
}

// DeleteExpired is a no-op; Redis expires keys itself.
func (s *RedisStore) DeleteExpired(context.Context, time.Time) (int, error) {
	return 0, nil
}
