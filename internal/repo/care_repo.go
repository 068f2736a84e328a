package repo

import (
	"context"
	"time"

	dom "nekocare/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGCareRepo struct {
	db *pgxpool.Pool
}

func NewPGCareRepo(db *pgxpool.Pool) *PGCareRepo {
	return &PGCareRepo{db: db}
}

func (r *PGCareRepo) GetSettings(ctx context.Context, householdID int64) (dom.Settings, error) {
	return getSettings(ctx, r.db, householdID)
}

func (r *PGCareRepo) ListCats(ctx context.Context, householdID int64) ([]dom.Cat, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, household_id, name, photo_path, sort_order, created_at
		FROM cats WHERE household_id = $1 ORDER BY sort_order, id`, householdID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.Cat
	for rows.Next() {
		var c dom.Cat
		if err := rows.Scan(&c.ID, &c.HouseholdID, &c.Name, &c.PhotoPath, &c.SortOrder, &c.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

const taskDefColumns = `id, household_id, title, icon, frequency, meal_slots, frequency_count,
	per_cat, target_cat_ids, enabled, sort_order, created_at`

func scanTaskDef(row pgx.Row) (dom.CareTaskDef, error) {
	var (
		d     dom.CareTaskDef
		slots []string
	)
	err := row.Scan(&d.ID, &d.HouseholdID, &d.Title, &d.Icon, &d.Frequency, &slots, &d.FrequencyCount,
		&d.PerCat, &d.TargetCatIDs, &d.Enabled, &d.SortOrder, &d.CreatedAt)
	d.MealSlots = stringsToSlots(slots)
	return d, err
}

func (r *PGCareRepo) ListTaskDefs(ctx context.Context, householdID int64) ([]dom.CareTaskDef, error) {
	rows, err := r.db.Query(ctx, `SELECT `+taskDefColumns+`
		FROM care_task_defs WHERE household_id = $1 AND enabled ORDER BY sort_order, id`, householdID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.CareTaskDef
	for rows.Next() {
		d, err := scanTaskDef(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

func (r *PGCareRepo) GetTaskDef(ctx context.Context, householdID, id int64) (dom.CareTaskDef, error) {
	return scanTaskDef(r.db.QueryRow(ctx, `SELECT `+taskDefColumns+`
		FROM care_task_defs WHERE household_id = $1 AND id = $2`, householdID, id))
}

func (r *PGCareRepo) CreateTaskDef(ctx context.Context, d dom.CareTaskDef) (dom.CareTaskDef, error) {
	return scanTaskDef(r.db.QueryRow(ctx, `
		INSERT INTO care_task_defs (household_id, title, icon, frequency, meal_slots, frequency_count,
			per_cat, target_cat_ids, enabled, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE, $9)
		RETURNING `+taskDefColumns,
		d.HouseholdID, d.Title, d.Icon, d.Frequency, slotsToStrings(d.MealSlots), d.FrequencyCount,
		d.PerCat, d.TargetCatIDs, d.SortOrder,
	))
}

func (r *PGCareRepo) UpdateTaskDef(ctx context.Context, householdID, id int64, d dom.CareTaskDef) (dom.CareTaskDef, error) {
	return scanTaskDef(r.db.QueryRow(ctx, `
		UPDATE care_task_defs SET title = $3, icon = $4, frequency = $5, meal_slots = $6,
			frequency_count = $7, per_cat = $8, target_cat_ids = $9, sort_order = $10
		WHERE household_id = $1 AND id = $2
		RETURNING `+taskDefColumns,
		householdID, id, d.Title, d.Icon, d.Frequency, slotsToStrings(d.MealSlots),
		d.FrequencyCount, d.PerCat, d.TargetCatIDs, d.SortOrder,
	))
}

func (r *PGCareRepo) DisableTaskDef(ctx context.Context, householdID, id int64) error {
	return execOne(ctx, r.db, `UPDATE care_task_defs SET enabled = FALSE WHERE household_id = $1 AND id = $2`, householdID, id)
}

const noticeDefColumns = `id, household_id, title, kind, category, input_type, choices, normal_values,
	enabled, sort_order, created_at`

func scanNoticeDef(row pgx.Row) (dom.NoticeDef, error) {
	var d dom.NoticeDef
	err := row.Scan(&d.ID, &d.HouseholdID, &d.Title, &d.Kind, &d.Category, &d.InputType, &d.Choices,
		&d.NormalValues, &d.Enabled, &d.SortOrder, &d.CreatedAt)
	return d, err
}

func (r *PGCareRepo) ListNoticeDefs(ctx context.Context, householdID int64) ([]dom.NoticeDef, error) {
	rows, err := r.db.Query(ctx, `SELECT `+noticeDefColumns+`
		FROM notice_defs WHERE household_id = $1 AND enabled ORDER BY sort_order, id`, householdID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.NoticeDef
	for rows.Next() {
		d, err := scanNoticeDef(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

func (r *PGCareRepo) GetNoticeDef(ctx context.Context, householdID, id int64) (dom.NoticeDef, error) {
	return scanNoticeDef(r.db.QueryRow(ctx, `SELECT `+noticeDefColumns+`
		FROM notice_defs WHERE household_id = $1 AND id = $2`, householdID, id))
}

func (r *PGCareRepo) CreateNoticeDef(ctx context.Context, d dom.NoticeDef) (dom.NoticeDef, error) {
	return scanNoticeDef(r.db.QueryRow(ctx, `
		INSERT INTO notice_defs (household_id, title, kind, category, input_type, choices, normal_values,
			enabled, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, $8)
		RETURNING `+noticeDefColumns,
		d.HouseholdID, d.Title, d.Kind, d.Category, d.InputType, d.Choices, d.NormalValues, d.SortOrder,
	))
}

func (r *PGCareRepo) DisableNoticeDef(ctx context.Context, householdID, id int64) error {
	return execOne(ctx, r.db, `UPDATE notice_defs SET enabled = FALSE WHERE household_id = $1 AND id = $2`, householdID, id)
}

func (r *PGCareRepo) ListCareLogs(ctx context.Context, householdID int64, since time.Time) ([]dom.CareLog, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, household_id, type, cat_id, done_by, done_at
		FROM care_logs WHERE household_id = $1 AND done_at >= $2 ORDER BY done_at, id`, householdID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.CareLog
	for rows.Next() {
		var l dom.CareLog
		if err := rows.Scan(&l.ID, &l.HouseholdID, &l.Type, &l.CatID, &l.DoneBy, &l.DoneAt); err != nil {
			return nil, err
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

func (r *PGCareRepo) AddCareLog(ctx context.Context, l dom.CareLog) (dom.CareLog, error) {
	var out dom.CareLog
	err := r.db.QueryRow(ctx, `
		INSERT INTO care_logs (household_id, type, cat_id, done_by, done_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, household_id, type, cat_id, done_by, done_at`,
		l.HouseholdID, l.Type, l.CatID, l.DoneBy, l.DoneAt,
	).Scan(&out.ID, &out.HouseholdID, &out.Type, &out.CatID, &out.DoneBy, &out.DoneAt)
	return out, err
}

func (r *PGCareRepo) DeleteCareLog(ctx context.Context, householdID, id int64) error {
	return execOne(ctx, r.db, `DELETE FROM care_logs WHERE household_id = $1 AND id = $2`, householdID, id)
}

const observationColumns = `id, household_id, cat_id, type, value, recorded_by, recorded_at, acknowledged_at`

func scanObservation(row pgx.Row) (dom.Observation, error) {
	var o dom.Observation
	err := row.Scan(&o.ID, &o.HouseholdID, &o.CatID, &o.Type, &o.Value, &o.RecordedBy, &o.RecordedAt, &o.AcknowledgedAt)
	return o, err
}

func (r *PGCareRepo) ListObservations(ctx context.Context, householdID int64, since time.Time) ([]dom.Observation, error) {
	rows, err := r.db.Query(ctx, `SELECT `+observationColumns+`
		FROM observations WHERE household_id = $1 AND recorded_at >= $2 ORDER BY recorded_at, id`, householdID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.Observation
	for rows.Next() {
		o, err := scanObservation(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

func (r *PGCareRepo) AddObservation(ctx context.Context, o dom.Observation) (dom.Observation, error) {
	return scanObservation(r.db.QueryRow(ctx, `
		INSERT INTO observations (household_id, cat_id, type, value, recorded_by, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+observationColumns,
		o.HouseholdID, o.CatID, o.Type, o.Value, o.RecordedBy, o.RecordedAt,
	))
}

func (r *PGCareRepo) AcknowledgeObservation(ctx context.Context, householdID, id int64, at time.Time) (dom.Observation, error) {
	return scanObservation(r.db.QueryRow(ctx, `
		UPDATE observations SET acknowledged_at = COALESCE(acknowledged_at, $3)
		WHERE household_id = $1 AND id = $2
		RETURNING `+observationColumns, householdID, id, at))
}

const inventoryColumns = `id, household_id, label, range_min, range_max, alert_days, last_bought,
	stock_level, enabled, updated_at`

func scanInventory(row pgx.Row) (dom.InventoryItem, error) {
	var it dom.InventoryItem
	err := row.Scan(&it.ID, &it.HouseholdID, &it.Label, &it.RangeMin, &it.RangeMax, &it.AlertDays,
		&it.LastBought, &it.StockLevel, &it.Enabled, &it.UpdatedAt)
	return it, err
}

func (r *PGCareRepo) ListInventory(ctx context.Context, householdID int64) ([]dom.InventoryItem, error) {
	rows, err := r.db.Query(ctx, `SELECT `+inventoryColumns+`
		FROM inventory WHERE household_id = $1 AND enabled ORDER BY id`, householdID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.InventoryItem
	for rows.Next() {
		it, err := scanInventory(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

func (r *PGCareRepo) CreateInventoryItem(ctx context.Context, it dom.InventoryItem) (dom.InventoryItem, error) {
	return scanInventory(r.db.QueryRow(ctx, `
		INSERT INTO inventory (household_id, label, range_min, range_max, alert_days, last_bought, stock_level, enabled)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)
		RETURNING `+inventoryColumns,
		it.HouseholdID, it.Label, it.RangeMin, it.RangeMax, it.AlertDays, it.LastBought, it.StockLevel,
	))
}

// UpdateInventoryItem applies patch; NULL parameters keep the stored value.
func (r *PGCareRepo) UpdateInventoryItem(ctx context.Context, householdID, id int64, p dom.InventoryPatch) (dom.InventoryItem, error) {
	return scanInventory(r.db.QueryRow(ctx, `
		UPDATE inventory SET
			label = COALESCE($3, label),
			range_min = COALESCE($4, range_min),
			range_max = COALESCE($5, range_max),
			alert_days = COALESCE($6, alert_days),
			last_bought = COALESCE($7, last_bought),
			stock_level = COALESCE($8, stock_level),
			enabled = COALESCE($9, enabled),
			updated_at = NOW()
		WHERE household_id = $1 AND id = $2
		RETURNING `+inventoryColumns,
		householdID, id, p.Label, p.RangeMin, p.RangeMax, p.AlertDays, p.LastBought, p.StockLevel, p.Enabled,
	))
}

func (r *PGCareRepo) ListIncidents(ctx context.Context, householdID int64, openOnly bool) ([]dom.Incident, error) {
	return listIncidents(ctx, r.db, householdID, openOnly)
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// execOne runs a statement that must touch exactly one row.
func execOne(ctx context.Context, db execer, sql string, args ...any) error {
	tag, err := db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
