package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ballot/internal/platform/postgres"
	"ballot/internal/voting/models"
	"ballot/pkg/platform/sentinel"
	txrunner "ballot/pkg/platform/tx"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresStore persists the ledgers in PostgreSQL. Uniqueness is enforced by
// indexes; conflicts surface as sentinel.ErrAlreadyUsed.
type PostgresStore struct {
	db      *sql.DB
	q       querier
	timeout time.Duration
}

// NewPostgres constructs a store on db.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, q: db}
}

// NewPostgresTx binds a store to an open transaction.
func NewPostgresTx(tx *sql.Tx) *PostgresStore {
	return &PostgresStore{q: tx}
}

// WithTxTimeout sets the transaction timeout applied when ctx has no deadline.
func (s *PostgresStore) WithTxTimeout(d time.Duration) *PostgresStore {
	s.timeout = d
	return s
}

// RunInTx runs fn inside a database transaction committed only when fn succeeds.
func (s *PostgresStore) RunInTx(ctx context.Context, fn func(Ledger) error) error {
	if s.db == nil {
		return fn(s)
	}
	return txrunner.Run(ctx, s.db, s.timeout, func(tx *sql.Tx) error {
		return fn(NewPostgresTx(tx))
	})
}

// Seed inserts the reference categories and candidates, leaving existing rows untouched.
func (s *PostgresStore) Seed(ctx context.Context, categories []models.Category, candidates []models.Candidate) error {
	for _, c := range categories {
		_, err := s.q.ExecContext(ctx, `
			INSERT INTO categories (id, name, position) VALUES ($1, $2, $3)
			ON CONFLICT (id) DO NOTHING
		`, c.ID, c.Name, c.Position)
		if err != nil {
			return fmt.Errorf("seed category %s: %w", c.ID, err)
		}
	}
	for _, c := range candidates {
		_, err := s.q.ExecContext(ctx, `
			INSERT INTO candidates (id, name, image, category_id, votes_count, is_active)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO NOTHING
		`, c.ID, c.Name, c.Image, c.CategoryID, c.VotesCount, c.IsActive)
		if err != nil {
			return fmt.Errorf("seed candidate %s: %w", c.ID, err)
		}
	}
	return nil
}

func (s *PostgresStore) ListCategories(ctx context.Context) ([]*models.Category, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT id, name, position FROM categories ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []*models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Position); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

const candidateColumns = `id, name, image, category_id, votes_count, is_active`

func scanCandidate(row interface{ Scan(...any) error }) (*models.Candidate, error) {
	var c models.Candidate
	if err := row.Scan(&c.ID, &c.Name, &c.Image, &c.CategoryID, &c.VotesCount, &c.IsActive); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCandidates returns candidates of categoryID ordered by tally, or every
// candidate when categoryID is empty.
func (s *PostgresStore) ListCandidates(ctx context.Context, categoryID string) ([]*models.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates
		WHERE ($1 = '' OR category_id = $1)
		ORDER BY votes_count DESC, id`
	rows, err := s.q.QueryContext(ctx, query, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	var out []*models.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetCandidate(ctx context.Context, id string) (*models.Candidate, error) {
	c, err := scanCandidate(s.q.QueryRowContext(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get candidate: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) FindVerification(ctx context.Context, fingerprint, ip string) (*models.Verification, error) {
	query := `
		SELECT id, user_profile_id, ip_address, browser_fingerprint, user_agent, is_incognito, created_at
		FROM voter_verifications
		WHERE browser_fingerprint = $1
		   OR (ip_address = $2 AND ip_address <> 'unknown')
		ORDER BY created_at
		LIMIT 1
	`
	var v models.Verification
	err := s.q.QueryRowContext(ctx, query, fingerprint, ip).Scan(
		&v.ID, &v.UserProfileID, &v.IPAddress, &v.BrowserFingerprint, &v.UserAgent, &v.IsIncognito, &v.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find verification: %w", err)
	}
	return &v, nil
}

// CreateVerification inserts v unless its fingerprint or known IP is already
// recorded, in which case it returns sentinel.ErrAlreadyUsed.
func (s *PostgresStore) CreateVerification(ctx context.Context, v *models.Verification) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO voter_verifications (id, user_profile_id, ip_address, browser_fingerprint, user_agent, is_incognito, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, v.ID, v.UserProfileID, v.IPAddress, v.BrowserFingerprint, v.UserAgent, v.IsIncognito, v.CreatedAt)
	if err != nil {
		if isVerificationConflict(err) {
			return fmt.Errorf("create verification: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("create verification: %w", err)
	}
	return nil
}

func isVerificationConflict(err error) bool {
	return postgres.IsUniqueViolation(err, postgres.ConstraintVerificationFingerprint) ||
		postgres.IsUniqueViolation(err, postgres.ConstraintVerificationIP)
}

// InsertVote records v. A second vote for the same verification returns
// sentinel.ErrAlreadyUsed and an unknown candidate sentinel.ErrNotFound.
func (s *PostgresStore) InsertVote(ctx context.Context, v *models.Vote) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO votes (id, candidate_id, voter_profile_id, verification_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, v.ID, v.CandidateID, v.VoterProfileID, v.VerificationID, string(v.Status), v.CreatedAt)
	if err != nil {
		switch {
		case postgres.IsUniqueViolation(err, postgres.ConstraintVoteVerification):
			return fmt.Errorf("insert vote: %w", sentinel.ErrAlreadyUsed)
		case postgres.IsForeignKeyViolation(err):
			return fmt.Errorf("insert vote: %w", sentinel.ErrNotFound)
		}
		return fmt.Errorf("insert vote: %w", err)
	}
	return nil
}

// IncrementTally adds one vote to an active candidate and returns the new count.
func (s *PostgresStore) IncrementTally(ctx context.Context, candidateID string) (int64, error) {
	var count int64
	err := s.q.QueryRowContext(ctx, `
		UPDATE candidates SET votes_count = votes_count + 1
		WHERE id = $1 AND is_active
		RETURNING votes_count
	`, candidateID).Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, sentinel.ErrNotFound
		}
		return 0, fmt.Errorf("increment tally: %w", err)
	}
	return count, nil
}

// CountVotes counts vote records for candidateID, or all votes when empty.
func (s *PostgresStore) CountVotes(ctx context.Context, candidateID string) (int64, error) {
	var n int64
	err := s.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM votes WHERE ($1 = '' OR candidate_id = $1)`, candidateID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count votes: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) CountVerifications(ctx context.Context) (int64, error) {
	var n int64
	if err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM voter_verifications`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count verifications: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) SetTally(ctx context.Context, candidateID string, count int64) error {
	res, err := s.q.ExecContext(ctx, `UPDATE candidates SET votes_count = $2 WHERE id = $1`, candidateID, count)
	if err != nil {
		return fmt.Errorf("set tally: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// Reconcile recomputes every tally from the vote ledger and returns the
// number of candidates whose tally changed.
func (s *PostgresStore) Reconcile(ctx context.Context) (int, error) {
	res, err := s.q.ExecContext(ctx, `
		UPDATE candidates c
		SET votes_count = counted.n
		FROM (
			SELECT cand.id, COUNT(v.id) AS n
			FROM candidates cand
			LEFT JOIN votes v ON v.candidate_id = cand.id
			GROUP BY cand.id
		) counted
		WHERE c.id = counted.id AND c.votes_count <> counted.n
	`)
	if err != nil {
		return 0, fmt.Errorf("reconcile tallies: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reconcile tallies: %w", err)
	}
	return int(n), nil
}

func (s *PostgresStore) SaveDailyTotal(ctx context.Context, total models.DailyTotal) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO votes_history (date, total_votes) VALUES ($1, $2)
		ON CONFLICT (date) DO UPDATE SET total_votes = EXCLUDED.total_votes
	`, total.Date.Format(dateLayout), total.TotalVotes)
	if err != nil {
		return fmt.Errorf("save daily total: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetDailyTotal(ctx context.Context, date time.Time) (*models.DailyTotal, error) {
	var total models.DailyTotal
	err := s.q.QueryRowContext(ctx,
		`SELECT date, total_votes FROM votes_history WHERE date = $1`, date.Format(dateLayout),
	).Scan(&total.Date, &total.TotalVotes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get daily total: %w", err)
	}
	return &total, nil
}
