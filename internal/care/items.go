package care

import (
	"time"

	dom "nekocare/internal/domain"
)

type ItemKind string

const (
	KindTask       ItemKind = "task"
	KindNotice     ItemKind = "notice"
	KindUnrecorded ItemKind = "unrecorded"
	KindInventory  ItemKind = "inventory"
	KindIncident   ItemKind = "incident"
)

// Severity scale anchors.
const (
	SeverityTaskMin    = 40
	SeverityTaskMax    = 80
	SeverityUrgent     = 80
	SeverityAlert      = 60
	SeverityUnrecorded = 60
	SeverityAbnormal   = 70
	SeverityIncident   = 100
)

// Item is one row of the aggregated feed.
type Item struct {
	ID       string
	Kind     ItemKind
	Title    string
	Body     string
	Severity int
	CatID    int64
	Payload  Payload
}

// IsAlert reports whether the item is surfaced outside the routine checklist.
func (i Item) IsAlert() bool { return i.Severity >= SeverityAlert }

// IsUrgent is a styling hint only; urgent items are not filtered.
func (i Item) IsUrgent() bool { return i.Severity >= SeverityUrgent }

// Payload is the closed set of per-kind item details.
type Payload interface {
	payloadKind() ItemKind
}

type TaskPayload struct {
	DefID     int64
	Slot      dom.MealSlot
	Frequency dom.Frequency
	Count     int
	Goal      int
	// LogType is what a client posts to complete the occurrence.
	LogType    string
	Optimistic bool
}

func (TaskPayload) payloadKind() ItemKind { return KindTask }

type NoticePayload struct {
	DefID         int64
	ObservationID int64
	Value         string
	Choices       []string
	Unrecorded    bool
	Optimistic    bool
}

func (p NoticePayload) payloadKind() ItemKind {
	if p.Unrecorded {
		return KindUnrecorded
	}
	return KindNotice
}

type InventoryPayload struct {
	ItemID     int64
	DaysSince  int
	Threshold  int
	StockLevel dom.StockLevel
	LastBought *time.Time
}

func (InventoryPayload) payloadKind() ItemKind { return KindInventory }

type IncidentPayload struct {
	IncidentID int64
	Type       dom.IncidentType
	Status     dom.IncidentStatus
	Photos     []string
	Updates    int
	CreatedAt  time.Time
}

func (IncidentPayload) payloadKind() ItemKind { return KindIncident }
