package care

import dom "nekocare/internal/domain"

// InventoryThresholds tune restock alerts. Soon is how many days before the
// restock threshold an item starts showing up; Urgent and Critical are days
// past the threshold.
type InventoryThresholds struct {
	Soon     int
	Urgent   int
	Critical int
}

func DefaultThresholds() InventoryThresholds {
	return InventoryThresholds{Soon: 3, Urgent: 3, Critical: 7}
}

// Options are the caller-supplied inputs shared by the resolvers and the
// aggregator.
type Options struct {
	DayStartHour int
	// ActiveCatID resolves per-cat tasks; 0 means no cat is selected.
	ActiveCatID int64
	Thresholds  InventoryThresholds
	Overlay     Overlay
}

// DefaultOptions returns options with the household defaults applied.
func DefaultOptions() Options {
	return Options{
		DayStartHour: dom.DefaultDayStartHour,
		Thresholds:   DefaultThresholds(),
	}
}
