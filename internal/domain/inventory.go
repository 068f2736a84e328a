package domain

import "time"

type StockLevel string

const (
	StockFull  StockLevel = "full"
	StockHalf  StockLevel = "half"
	StockLow   StockLevel = "low"
	StockEmpty StockLevel = "empty"
)

// InventoryItem tracks a consumable supply. RangeMin/RangeMax are the typical
// number of days one purchase lasts.
type InventoryItem struct {
	ID          int64
	HouseholdID int64
	Label       string
	RangeMin    int
	RangeMax    int
	// AlertDays overrides RangeMax as the restock threshold when set.
	AlertDays  *int
	LastBought *time.Time
	StockLevel StockLevel
	Enabled    bool
	UpdatedAt  time.Time
}

// RestockThreshold returns the number of days after purchase at which the
// item needs restocking.
func (i InventoryItem) RestockThreshold() int {
	if i.AlertDays != nil && *i.AlertDays > 0 {
		return *i.AlertDays
	}
	return i.RangeMax
}

// InventoryPatch is a partial update; nil fields are left untouched.
type InventoryPatch struct {
	Label      *string
	RangeMin   *int
	RangeMax   *int
	AlertDays  *int
	LastBought *time.Time
	StockLevel *StockLevel
	Enabled    *bool
}
