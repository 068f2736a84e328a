package repo

import (
	"context"

	dom "nekocare/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGIncidentRepo struct {
	db *pgxpool.Pool
}

func NewPGIncidentRepo(db *pgxpool.Pool) *PGIncidentRepo {
	return &PGIncidentRepo{db: db}
}

const incidentColumns = `id, household_id, cat_id, type, note, photos, status, created_by, created_at, updated_at`

func scanIncident(row pgx.Row) (dom.Incident, error) {
	var inc dom.Incident
	err := row.Scan(&inc.ID, &inc.HouseholdID, &inc.CatID, &inc.Type, &inc.Note, &inc.Photos,
		&inc.Status, &inc.CreatedBy, &inc.CreatedAt, &inc.UpdatedAt)
	return inc, err
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *PGIncidentRepo) Create(ctx context.Context, inc dom.Incident) (dom.Incident, error) {
	return scanIncident(r.db.QueryRow(ctx, `
		INSERT INTO incidents (household_id, cat_id, type, note, photos, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+incidentColumns,
		inc.HouseholdID, inc.CatID, inc.Type, inc.Note, nonNil(inc.Photos), inc.Status, inc.CreatedBy,
	))
}

func (r *PGIncidentRepo) Get(ctx context.Context, householdID, id int64) (dom.Incident, error) {
	return getIncident(ctx, r.db, householdID, id)
}

func getIncident(ctx context.Context, q querier, householdID, id int64) (dom.Incident, error) {
	inc, err := scanIncident(q.QueryRow(ctx, `SELECT `+incidentColumns+`
		FROM incidents WHERE household_id = $1 AND id = $2`, householdID, id))
	if err != nil {
		return dom.Incident{}, err
	}
	byID, err := loadUpdates(ctx, q, []int64{inc.ID})
	if err != nil {
		return dom.Incident{}, err
	}
	inc.Updates = byID[inc.ID]
	return inc, nil
}

func (r *PGIncidentRepo) List(ctx context.Context, householdID int64, openOnly bool) ([]dom.Incident, error) {
	return listIncidents(ctx, r.db, householdID, openOnly)
}

func listIncidents(ctx context.Context, q querier, householdID int64, openOnly bool) ([]dom.Incident, error) {
	rows, err := q.Query(ctx, `SELECT `+incidentColumns+`
		FROM incidents WHERE household_id = $1 AND (NOT $2 OR status <> 'resolved')
		ORDER BY created_at DESC, id DESC`, householdID, openOnly)
	if err != nil {
		return nil, err
	}
	var (
		list []dom.Incident
		ids  []int64
	)
	for rows.Next() {
		inc, err := scanIncident(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		list = append(list, inc)
		ids = append(ids, inc.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return list, nil
	}
	byID, err := loadUpdates(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i].Updates = byID[list[i].ID]
	}
	return list, nil
}

func loadUpdates(ctx context.Context, q querier, ids []int64) (map[int64][]dom.IncidentUpdate, error) {
	rows, err := q.Query(ctx, `
		SELECT id, incident_id, note, photos, status, created_by, created_at
		FROM incident_updates WHERE incident_id = ANY($1) ORDER BY created_at, id`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[int64][]dom.IncidentUpdate, len(ids))
	for rows.Next() {
		var u dom.IncidentUpdate
		if err := rows.Scan(&u.ID, &u.IncidentID, &u.Note, &u.Photos, &u.Status, &u.CreatedBy, &u.CreatedAt); err != nil {
			return nil, err
		}
		out[u.IncidentID] = append(out[u.IncidentID], u)
	}
	return out, rows.Err()
}

// AppendUpdate inserts the update and applies its status and photos to the
// incident in one transaction. The incident row is locked so concurrent
// status changes serialize.
func (r *PGIncidentRepo) AppendUpdate(ctx context.Context, householdID, incidentID int64, u dom.IncidentUpdate) (dom.Incident, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return dom.Incident{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var cur dom.IncidentStatus
	if err := tx.QueryRow(ctx, `SELECT status FROM incidents WHERE household_id = $1 AND id = $2 FOR UPDATE`,
		householdID, incidentID).Scan(&cur); err != nil {
		return dom.Incident{}, err
	}
	if err := checkTransition(cur, u.Status); err != nil {
		return dom.Incident{}, err
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO incident_updates (incident_id, note, photos, status, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		incidentID, u.Note, nonNil(u.Photos), u.Status, u.CreatedBy, u.CreatedAt); err != nil {
		return dom.Incident{}, err
	}
	if _, err := tx.Exec(ctx, `
		UPDATE incidents SET
			status = COALESCE($2, status),
			photos = photos || $3::text[],
			updated_at = $4
		WHERE id = $1`, incidentID, u.Status, nonNil(u.Photos), u.CreatedAt); err != nil {
		return dom.Incident{}, err
	}
	inc, err := getIncident(ctx, tx, householdID, incidentID)
	if err != nil {
		return dom.Incident{}, err
	}
	return inc, tx.Commit(ctx)
}

func nonNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}
