// Package realtime fans row-change events out to household subscribers.
package realtime

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Table names carried by events.
const (
	TableCareLogs     = "care_logs"
	TableObservations = "observations"
	TableInventory    = "inventory"
	TableIncidents    = "incidents"
	TableCareTaskDefs = "care_task_defs"
	TableNoticeDefs   = "notice_defs"
	TableSettings     = "household_settings"
	TableCats         = "cats"
)

// Event is one row change. Row holds the JSON encoding of the row after the
// change and is empty for deletes.
type Event struct {
	ID          string          `json:"id"`
	Table       string          `json:"table"`
	Op          Op              `json:"op"`
	RowID       int64           `json:"row_id"`
	HouseholdID int64           `json:"household_id"`
	At          time.Time       `json:"at"`
	Row         json.RawMessage `json:"row,omitempty"`
}

// NewEvent builds an event with a fresh id. row may be nil.
func NewEvent(table string, op Op, householdID, rowID int64, row any, at time.Time) (Event, error) {
	ev := Event{
		ID:          uuid.NewString(),
		Table:       table,
		Op:          op,
		RowID:       rowID,
		HouseholdID: householdID,
		At:          at,
	}
	if row != nil && op != OpDelete {
		b, err := json.Marshal(row)
		if err != nil {
			return Event{}, fmt.Errorf("encode %s row %d: %w", table, rowID, err)
		}
		ev.Row = b
	}
	return ev, nil
}
