package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: UniqueViolation, ConstraintName: ConstraintVerificationFingerprint}
	wrapped := fmt.Errorf("insert: %w", pgErr)

	assert.True(t, IsUniqueViolation(wrapped, ""))
	assert.True(t, IsUniqueViolation(wrapped, ConstraintVerificationFingerprint))
	assert.False(t, IsUniqueViolation(wrapped, ConstraintVoteVerification))
	assert.False(t, IsUniqueViolation(errors.New("boom"), ""))
	assert.False(t, IsForeignKeyViolation(wrapped))
	assert.True(t, IsForeignKeyViolation(&pgconn.PgError{Code: ForeignKeyViolation}))
}
