package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/noble-diary/internal/store"
)

// PostgreSQL error codes
const (
	// checkViolationCode is the PostgreSQL error code for check constraint violations
	checkViolationCode = "23514"

	// notNullViolationCode is the PostgreSQL error code for not null violations
	notNullViolationCode = "23502"

	// connectionExceptionClass prefixes every connection failure code (08xxx)
	connectionExceptionClass = "08"

	// adminShutdownCode is raised when the server is shutting down
	adminShutdownCode = "57P01"
)

// MapError maps a database error to the matching store error, wrapping
// the original to keep its detail.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == checkViolationCode:
			return fmt.Errorf(
				"%w: check constraint violation (%s): %v",
				store.ErrInvalidSnapshot,
				pgErr.ConstraintName,
				err,
			)
		case pgErr.Code == notNullViolationCode:
			return fmt.Errorf(
				"%w: not null violation (%s): %v",
				store.ErrInvalidSnapshot,
				pgErr.ColumnName,
				err,
			)
		case pgErr.Code == adminShutdownCode,
			strings.HasPrefix(pgErr.Code, connectionExceptionClass):
			return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
		}
	}

	return err
}

// IsCheckConstraintViolation checks if the given error is a PostgreSQL check constraint violation.
func IsCheckConstraintViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == checkViolationCode
}
