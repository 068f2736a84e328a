package repo

import (
	"context"
	"errors"

	dom "nekocare/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGThemeRepo struct {
	db *pgxpool.Pool
}

func NewPGThemeRepo(db *pgxpool.Pool) *PGThemeRepo {
	return &PGThemeRepo{db: db}
}

func getSettings(ctx context.Context, q querier, householdID int64) (dom.Settings, error) {
	var s dom.Settings
	err := q.QueryRow(ctx, `
		SELECT household_id, day_start_hour, active_theme_id, layout, points, updated_at
		FROM household_settings WHERE household_id = $1`, householdID,
	).Scan(&s.HouseholdID, &s.DayStartHour, &s.ActiveThemeID, &s.Layout, &s.Points, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return defaultSettings(householdID), nil
	}
	return s, err
}

func (r *PGThemeRepo) ListThemes(ctx context.Context) ([]dom.Theme, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, price FROM themes ORDER BY price, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.Theme
	for rows.Next() {
		var t dom.Theme
		if err := rows.Scan(&t.ID, &t.Name, &t.Price); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func (r *PGThemeRepo) OwnedThemes(ctx context.Context, householdID int64) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT theme_id FROM theme_purchases WHERE household_id = $1 ORDER BY purchased_at`, householdID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (r *PGThemeRepo) PurchaseTheme(ctx context.Context, householdID int64, themeID string) (dom.Settings, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return dom.Settings{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var price int
	if err := tx.QueryRow(ctx, `SELECT price FROM themes WHERE id = $1`, themeID).Scan(&price); err != nil {
		return dom.Settings{}, err
	}
	var points int
	if err := tx.QueryRow(ctx, `SELECT points FROM household_settings WHERE household_id = $1 FOR UPDATE`,
		householdID).Scan(&points); err != nil {
		return dom.Settings{}, err
	}
	var owned bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM theme_purchases WHERE household_id = $1 AND theme_id = $2)`,
		householdID, themeID).Scan(&owned); err != nil {
		return dom.Settings{}, err
	}
	if owned {
		return dom.Settings{}, ErrAlreadyOwned
	}
	if points < price {
		return dom.Settings{}, ErrInsufficientPoints
	}
	if _, err := tx.Exec(ctx, `
		UPDATE household_settings SET points = points - $2, active_theme_id = $3, updated_at = NOW()
		WHERE household_id = $1`, householdID, price, themeID); err != nil {
		return dom.Settings{}, err
	}
	if _, err := tx.Exec(ctx, `INSERT INTO theme_purchases (household_id, theme_id) VALUES ($1, $2)`,
		householdID, themeID); err != nil {
		return dom.Settings{}, err
	}
	s, err := getSettings(ctx, tx, householdID)
	if err != nil {
		return dom.Settings{}, err
	}
	return s, tx.Commit(ctx)
}

func (r *PGThemeRepo) AddPoints(ctx context.Context, householdID int64, n int) error {
	return execOne(ctx, r.db, `
		UPDATE household_settings SET points = points + $2, updated_at = NOW() WHERE household_id = $1`,
		householdID, n)
}

func (r *PGThemeRepo) SetLayout(ctx context.Context, householdID int64, layout string) (dom.Settings, error) {
	if err := execOne(ctx, r.db, `
		UPDATE household_settings SET layout = $2, updated_at = NOW() WHERE household_id = $1`,
		householdID, layout); err != nil {
		return dom.Settings{}, err
	}
	return getSettings(ctx, r.db, householdID)
}
