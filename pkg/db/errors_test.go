package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "ux_users_email_active"}
	wrapped := fmt.Errorf("insert user: %w", pgErr)

	assert.True(t, IsUniqueViolation(wrapped, ""))
	assert.True(t, IsUniqueViolation(wrapped, "email"))
	assert.False(t, IsUniqueViolation(wrapped, "phone"))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}, ""))

	sqliteErr := errors.New("UNIQUE constraint failed: users.phone")
	assert.True(t, IsUniqueViolation(sqliteErr, "phone"))
	assert.False(t, IsUniqueViolation(sqliteErr, "email"))

	assert.False(t, IsUniqueViolation(nil, ""))
	assert.False(t, IsUniqueViolation(errors.New("boom"), ""))
}
