package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nekocare/internal/care"
	dom "nekocare/internal/domain"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned by every repository when a row does not exist (or
// belongs to another household). It is pgx.ErrNoRows so callers can match
// either.
var ErrNotFound = pgx.ErrNoRows

var (
	ErrInsufficientPoints = errors.New("insufficient footprint points")
	ErrAlreadyOwned       = errors.New("theme already owned")
	// ErrInvalidTransition is returned by AppendUpdate when the incident's
	// current status does not allow the requested one.
	ErrInvalidTransition = errors.New("invalid incident status transition")
	// ErrDuplicate is returned by MemoryStore where Postgres would raise a
	// unique violation.
	ErrDuplicate = errors.New("duplicate key")
)

// CareRepo is the care data backend: the read accessors the engine needs
// plus the writes the app performs.
type CareRepo interface {
	care.CareDataRepository

	GetTaskDef(ctx context.Context, householdID, id int64) (dom.CareTaskDef, error)
	CreateTaskDef(ctx context.Context, d dom.CareTaskDef) (dom.CareTaskDef, error)
	UpdateTaskDef(ctx context.Context, householdID, id int64, d dom.CareTaskDef) (dom.CareTaskDef, error)
	DisableTaskDef(ctx context.Context, householdID, id int64) error

	GetNoticeDef(ctx context.Context, householdID, id int64) (dom.NoticeDef, error)
	CreateNoticeDef(ctx context.Context, d dom.NoticeDef) (dom.NoticeDef, error)
	DisableNoticeDef(ctx context.Context, householdID, id int64) error

	AddCareLog(ctx context.Context, l dom.CareLog) (dom.CareLog, error)
	DeleteCareLog(ctx context.Context, householdID, id int64) error

	AddObservation(ctx context.Context, o dom.Observation) (dom.Observation, error)
	AcknowledgeObservation(ctx context.Context, householdID, id int64, at time.Time) (dom.Observation, error)

	CreateInventoryItem(ctx context.Context, it dom.InventoryItem) (dom.InventoryItem, error)
	UpdateInventoryItem(ctx context.Context, householdID, id int64, patch dom.InventoryPatch) (dom.InventoryItem, error)
}

// IncidentRepo stores incidents and their append-only update timeline.
type IncidentRepo interface {
	Create(ctx context.Context, inc dom.Incident) (dom.Incident, error)
	Get(ctx context.Context, householdID, id int64) (dom.Incident, error)
	List(ctx context.Context, householdID int64, openOnly bool) ([]dom.Incident, error)
	// AppendUpdate adds u to the timeline; a non-nil u.Status also moves the
	// incident to that status and u.Photos are added to the incident photos.
	// The transition is checked against the status held under the row lock.
	AppendUpdate(ctx context.Context, householdID, incidentID int64, u dom.IncidentUpdate) (dom.Incident, error)
}

// ThemeRepo backs footprint points and cosmetic themes.
type ThemeRepo interface {
	ListThemes(ctx context.Context) ([]dom.Theme, error)
	OwnedThemes(ctx context.Context, householdID int64) ([]string, error)
	// PurchaseTheme deducts the theme price and activates it atomically.
	PurchaseTheme(ctx context.Context, householdID int64, themeID string) (dom.Settings, error)
	AddPoints(ctx context.Context, householdID int64, n int) error
	SetLayout(ctx context.Context, householdID int64, layout string) (dom.Settings, error)
}

// HouseholdRepo manages households, cats and settings.
type HouseholdRepo interface {
	CreateHousehold(ctx context.Context, name string, dayStartHour int) (dom.Household, error)
	AddCat(ctx context.Context, c dom.Cat) (dom.Cat, error)
	SetDayStartHour(ctx context.Context, householdID int64, hour int) (dom.Settings, error)
}

// UserRepo provides user persistence.
type UserRepo interface {
	GetByUsername(ctx context.Context, username string) (dom.User, error)
	GetByID(ctx context.Context, id int64) (dom.User, error)
	Create(ctx context.Context, householdID int64, username, passwordHash string) (dom.User, error)
}

func slotsToStrings(slots []dom.MealSlot) []string {
	if slots == nil {
		return nil
	}
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = string(s)
	}
	return out
}

func stringsToSlots(ss []string) []dom.MealSlot {
	if ss == nil {
		return nil
	}
	out := make([]dom.MealSlot, len(ss))
	for i, s := range ss {
		out[i] = dom.MealSlot(s)
	}
	return out
}

// checkTransition validates moving an incident from cur to next. A nil next
// or an unchanged status is always allowed.
func checkTransition(cur dom.IncidentStatus, next *dom.IncidentStatus) error {
	if next == nil || *next == cur || care.CanTransition(cur, *next) {
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, cur, *next)
}

func defaultSettings(householdID int64) dom.Settings {
	return dom.Settings{HouseholdID: householdID, DayStartHour: dom.DefaultDayStartHour, Layout: "default"}
}
