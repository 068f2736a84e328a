package repo

import (
	"context"

	dom "nekocare/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PGHouseholdRepo struct {
	db *pgxpool.Pool
}

func NewPGHouseholdRepo(db *pgxpool.Pool) *PGHouseholdRepo {
	return &PGHouseholdRepo{db: db}
}

// CreateHousehold inserts the household together with its settings row.
func (r *PGHouseholdRepo) CreateHousehold(ctx context.Context, name string, dayStartHour int) (dom.Household, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return dom.Household{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var h dom.Household
	if err := tx.QueryRow(ctx, `INSERT INTO households (name) VALUES ($1) RETURNING id, name, created_at`, name).
		Scan(&h.ID, &h.Name, &h.CreatedAt); err != nil {
		return dom.Household{}, err
	}
	if _, err := tx.Exec(ctx, `INSERT INTO household_settings (household_id, day_start_hour) VALUES ($1, $2)`,
		h.ID, dayStartHour); err != nil {
		return dom.Household{}, err
	}
	return h, tx.Commit(ctx)
}

func (r *PGHouseholdRepo) AddCat(ctx context.Context, c dom.Cat) (dom.Cat, error) {
	var out dom.Cat
	err := r.db.QueryRow(ctx, `
		INSERT INTO cats (household_id, name, photo_path, sort_order)
		VALUES ($1, $2, $3, $4)
		RETURNING id, household_id, name, photo_path, sort_order, created_at`,
		c.HouseholdID, c.Name, c.PhotoPath, c.SortOrder,
	).Scan(&out.ID, &out.HouseholdID, &out.Name, &out.PhotoPath, &out.SortOrder, &out.CreatedAt)
	return out, err
}

func (r *PGHouseholdRepo) SetDayStartHour(ctx context.Context, householdID int64, hour int) (dom.Settings, error) {
	if err := execOne(ctx, r.db, `
		UPDATE household_settings SET day_start_hour = $2, updated_at = NOW() WHERE household_id = $1`,
		householdID, hour); err != nil {
		return dom.Settings{}, err
	}
	return getSettings(ctx, r.db, householdID)
}
