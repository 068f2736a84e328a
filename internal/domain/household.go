package domain

import "time"

// Household groups members, cats and all care data. Every row in the care
// tables is scoped to exactly one household.
type Household struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

type Cat struct {
	ID          int64
	HouseholdID int64
	Name        string
	PhotoPath   string
	SortOrder   int
	CreatedAt   time.Time
}

// Settings are per-household preferences read by the care engine.
type Settings struct {
	HouseholdID   int64
	DayStartHour  int
	ActiveThemeID string
	Layout        string
	Points        int
	UpdatedAt     time.Time
}

const DefaultDayStartHour = 4
