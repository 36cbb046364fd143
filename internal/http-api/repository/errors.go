package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicate is returned when an insert violates a unique constraint.
// The database is the single source of truth for uniqueness: concurrent
// writers racing on the same key are serialized by the constraint, and
// the loser surfaces here.
var ErrDuplicate = errors.New("duplicate key value")

// uniqueViolation is the Postgres error code for unique_violation.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
