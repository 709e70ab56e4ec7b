package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/noble-diary/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", sql.ErrNoRows, store.ErrNotFound},
		{"check violation", &pgconn.PgError{Code: checkViolationCode, ConstraintName: "snapshots_version_check"}, store.ErrInvalidSnapshot},
		{"not null violation", &pgconn.PgError{Code: notNullViolationCode, ColumnName: "payload"}, store.ErrInvalidSnapshot},
		{"connection failure", &pgconn.PgError{Code: "08006"}, store.ErrUnavailable},
		{"admin shutdown", fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: adminShutdownCode}), store.ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := MapError(tt.err)
			assert.ErrorIs(t, mapped, tt.want)
		})
	}

	assert.NoError(t, MapError(nil))

	other := errors.New("something else")
	assert.Equal(t, other, MapError(other))
}

func TestIsCheckConstraintViolation(t *testing.T) {
	assert.True(t, IsCheckConstraintViolation(&pgconn.PgError{Code: checkViolationCode}))
	assert.False(t, IsCheckConstraintViolation(errors.New("nope")))
}
