package repo

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestConstraintErrors(t *testing.T) {
	unique := fmt.Errorf("create user: %w", &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})
	check := &pgconn.PgError{Code: "23514", ConstraintName: "inventory_range_check"}

	assert.True(t, IsDuplicate(unique))
	assert.True(t, IsDuplicate(fmt.Errorf("memory: %w", ErrDuplicate)))
	assert.False(t, IsDuplicate(check))
	assert.True(t, IsConstraint(check))
	assert.False(t, IsConstraint(unique))
	assert.False(t, IsConstraint(errors.New("plain")))
	assert.False(t, IsDuplicate(nil))
}
