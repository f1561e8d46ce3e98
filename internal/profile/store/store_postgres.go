package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ballot/internal/platform/postgres"
	"ballot/internal/profile/models"
	"ballot/pkg/platform/sentinel"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, p *models.Profile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_profiles (id, first_name, last_name, email, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, p.ID, p.FirstName, p.LastName, p.Email, p.CreatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err, postgres.ConstraintProfileEmail) {
			return fmt.Errorf("email %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	return s.findOne(ctx, `WHERE id = $1`, id)
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.Profile, error) {
	return s.findOne(ctx, `WHERE lower(email) = lower($1)`, email)
}

func (s *PostgresStore) findOne(ctx context.Context, where string, arg any) (*models.Profile, error) {
	var p models.Profile
	err := s.db.QueryRowContext(ctx, `
		SELECT id, first_name, last_name, email, created_at
		FROM user_profiles `+where, arg).
		Scan(&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return &p, nil
}
