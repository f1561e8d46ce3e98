package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// Constraint names referenced by stores when mapping violations.
const (
	ConstraintVerificationFingerprint = "voter_verifications_fingerprint_key"
	ConstraintVerificationIP          = "voter_verifications_ip_key"
	ConstraintVoteVerification        = "votes_verification_id_key"
	ConstraintProfileEmail            = "user_profiles_email_key"
)

// CreateSchema creates all tables. Safe to call multiple times.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS categories (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    position INT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS candidates (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    image TEXT NOT NULL DEFAULT '',
    category_id TEXT NOT NULL REFERENCES categories(id),
    votes_count BIGINT NOT NULL DEFAULT 0 CHECK (votes_count >= 0),
    is_active BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE INDEX IF NOT EXISTS idx_candidates_category ON candidates(category_id, votes_count DESC);

CREATE TABLE IF NOT EXISTS voter_verifications (
    id UUID PRIMARY KEY,
    user_profile_id TEXT NOT NULL,
    ip_address TEXT NOT NULL,
    browser_fingerprint TEXT NOT NULL,
    user_agent TEXT NOT NULL DEFAULT '',
    is_incognito BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS voter_verifications_fingerprint_key
    ON voter_verifications(browser_fingerprint);
CREATE UNIQUE INDEX IF NOT EXISTS voter_verifications_ip_key
    ON voter_verifications(ip_address) WHERE ip_address <> 'unknown';

CREATE TABLE IF NOT EXISTS votes (
    id UUID PRIMARY KEY,
    candidate_id TEXT NOT NULL REFERENCES candidates(id),
    voter_profile_id TEXT NOT NULL,
    verification_id UUID NOT NULL REFERENCES voter_verifications(id),
    status TEXT NOT NULL DEFAULT 'verified' CHECK (status IN ('verified', 'pending', 'rejected')),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT votes_verification_id_key UNIQUE (verification_id)
);

CREATE INDEX IF NOT EXISTS idx_votes_candidate ON votes(candidate_id);

CREATE TABLE IF NOT EXISTS vote_cooldowns (
    scope TEXT NOT NULL,
    identifier TEXT NOT NULL,
    last_vote_at TIMESTAMPTZ NOT NULL,
    expires_at TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (scope, identifier)
);

CREATE INDEX IF NOT EXISTS idx_vote_cooldowns_expires ON vote_cooldowns(expires_at);

CREATE TABLE IF NOT EXISTS votes_history (
    date DATE PRIMARY KEY,
    total_votes BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS user_profiles (
    id UUID PRIMARY KEY,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL,
    email TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS user_profiles_email_key ON user_profiles(lower(email));
`
