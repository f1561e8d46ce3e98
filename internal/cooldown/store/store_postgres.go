package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ballot/internal/cooldown/models"
)

// PostgresStore persists entries in vote_cooldowns so windows survive
// restarts and are shared between instances.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, scope, identifier string, now time.Time) (*models.Entry, error) {
	query := `
		SELECT scope, identifier, last_vote_at, expires_at
		FROM vote_cooldowns
		WHERE scope = $1 AND identifier = $2 AND expires_at > $3
	`
	var e models.Entry
	err := s.db.QueryRowContext(ctx, query, scope, identifier, now).Scan(&e.Scope, &e.Identifier, &e.LastVoteAt, &e.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cooldown: %w", err)
	}
	return &e, nil
}

func (s *PostgresStore) Put(ctx context.Context, entry *models.Entry) error {
	query := `
		INSERT INTO vote_cooldowns (scope, identifier, last_vote_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (scope, identifier) DO UPDATE SET
			last_vote_at = EXCLUDED.last_vote_at,
			expires_at = EXCLUDED.expires_at
	`
	if _, err := s.db.ExecContext(ctx, query, entry.Scope, entry.Identifier, entry.LastVoteAt, entry.ExpiresAt); err != nil {
		return fmt.Errorf("put cooldown: %w", err)
	}
	return nil
}

// Claim relies on the row lock taken by ON CONFLICT: a concurrent claimant
// re-reads the winner's row and its WHERE no longer matches.
func (s *PostgresStore) Claim(ctx context.Context, entry *models.Entry, now time.Time) (*models.Entry, error) {
	query := `
		INSERT INTO vote_cooldowns (scope, identifier, last_vote_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (scope, identifier) DO UPDATE SET
			last_vote_at = EXCLUDED.last_vote_at,
			expires_at = EXCLUDED.expires_at
		WHERE vote_cooldowns.expires_at <= $5
		RETURNING scope
	`
	var scope string
	err := s.db.QueryRowContext(ctx, query, entry.Scope, entry.Identifier, entry.LastVoteAt, entry.ExpiresAt, now).Scan(&scope)
	if err == nil {
		return nil, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("claim cooldown: %w", err)
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

func (s *PostgresStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM vote_cooldowns WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired cooldowns: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired cooldowns: %w", err)
	}
	return int(n), nil
}
