package repo

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
)

func pgCode(err error) string {
	var pge *pgconn.PgError
	if errors.As(err, &pge) {
		return pge.Code
	}
	return ""
}

// IsDuplicate reports whether err is a unique violation from Postgres or
// ErrDuplicate from the in-memory store.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate) || pgCode(err) == pgUniqueViolation
}

// IsConstraint reports whether a write was rejected by a CHECK constraint,
// such as a negative point balance or an inverted restock range.
func IsConstraint(err error) bool {
	return pgCode(err) == pgCheckViolation
}
