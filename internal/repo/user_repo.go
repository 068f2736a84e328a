package repo

import (
	"context"

	dom "nekocare/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGUserRepo implements UserRepo with Postgres.
type PGUserRepo struct {
	db *pgxpool.Pool
}

// NewPGUserRepo returns a new PGUserRepo.
func NewPGUserRepo(db *pgxpool.Pool) *PGUserRepo {
	return &PGUserRepo{db: db}
}

// GetByUsername returns the user by username.
func (r *PGUserRepo) GetByUsername(ctx context.Context, username string) (dom.User, error) {
	var u dom.User
	err := r.db.QueryRow(ctx,
		`SELECT id, household_id, username, password_hash, created_at FROM users WHERE username = $1`,
		username,
	).Scan(&u.ID, &u.HouseholdID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	return u, err
}

// GetByID returns the user by id.
func (r *PGUserRepo) GetByID(ctx context.Context, id int64) (dom.User, error) {
	var u dom.User
	err := r.db.QueryRow(ctx,
		`SELECT id, household_id, username, password_hash, created_at FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.HouseholdID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	return u, err
}

// Create inserts a new household member and returns it.
func (r *PGUserRepo) Create(ctx context.Context, householdID int64, username, passwordHash string) (dom.User, error) {
	query := `
		INSERT INTO users (household_id, username, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, household_id, username, password_hash, created_at`
	var u dom.User
	err := r.db.QueryRow(ctx, query, householdID, username, passwordHash).Scan(
		&u.ID, &u.HouseholdID, &u.Username, &u.PasswordHash, &u.CreatedAt,
	)
	return u, err
}
