package postgres

import (
	"errors"
	"fmt"

	"github.com/dafibh/nexus/nexus-backend/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres SQLSTATE codes surfaced as domain errors
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// mapWriteError converts constraint violations into domain errors so callers can use errors.Is
func mapWriteError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s", domain.ErrReferenceNotFound, pgErr.ConstraintName)
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", domain.ErrAlreadyExists, pgErr.ConstraintName)
		}
	}
	return err
}
