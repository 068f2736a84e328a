package domain

import (
	"strings"
	"time"
)

// MealSlot is one of the fixed day bands a scheduled task can occur in.
type MealSlot string

const (
	SlotMorning MealSlot = "morning"
	SlotNoon    MealSlot = "noon"
	SlotEvening MealSlot = "evening"
	SlotNight   MealSlot = "night"
)

// AllSlots is the fixed slot order: morning < noon < evening < night.
var AllSlots = []MealSlot{SlotMorning, SlotNoon, SlotEvening, SlotNight}

// Index returns the slot position in AllSlots, or -1 for an unknown slot.
func (s MealSlot) Index() int {
	for i, v := range AllSlots {
		if v == s {
			return i
		}
	}
	return -1
}

func (s MealSlot) Valid() bool { return s.Index() >= 0 }

type Frequency string

const (
	FreqOnceDaily  Frequency = "once-daily"
	FreqTwiceDaily Frequency = "twice-daily"
	FreqThreeDaily Frequency = "three-times-daily"
	FreqFourDaily  Frequency = "four-times-daily"
	FreqAsNeeded   Frequency = "as-needed"
	FreqWeekly     Frequency = "weekly"
	FreqMonthly    Frequency = "monthly"
)

func (f Frequency) Valid() bool {
	switch f {
	case FreqOnceDaily, FreqTwiceDaily, FreqThreeDaily, FreqFourDaily,
		FreqAsNeeded, FreqWeekly, FreqMonthly:
		return true
	}
	return false
}

// DefaultSlots derives the meal slots a frequency implies. Weekly, monthly and
// as-needed tasks have no slots and are tracked by goal count instead.
func (f Frequency) DefaultSlots() []MealSlot {
	switch f {
	case FreqOnceDaily:
		return []MealSlot{SlotMorning}
	case FreqTwiceDaily:
		return []MealSlot{SlotMorning, SlotEvening}
	case FreqThreeDaily:
		return []MealSlot{SlotMorning, SlotNoon, SlotEvening}
	case FreqFourDaily:
		return []MealSlot{SlotMorning, SlotNoon, SlotEvening, SlotNight}
	default:
		return nil
	}
}

// CareTaskDef is a recurring chore definition (feeding, litter, medication...).
type CareTaskDef struct {
	ID          int64
	HouseholdID int64
	Title       string
	Icon        string
	Frequency   Frequency
	// MealSlots overrides the slots derived from Frequency when non-nil.
	MealSlots      []MealSlot
	FrequencyCount int
	PerCat         bool
	TargetCatIDs   []int64
	Enabled        bool
	SortOrder      int
	CreatedAt      time.Time
}

// Slots returns the effective meal slots of the definition.
func (d CareTaskDef) Slots() []MealSlot {
	if d.MealSlots != nil {
		return d.MealSlots
	}
	return d.Frequency.DefaultSlots()
}

// GoalCount is the number of completions required per period for a task
// without slots.
func (d CareTaskDef) GoalCount() int {
	if d.FrequencyCount < 1 {
		return 1
	}
	return d.FrequencyCount
}

// AppliesTo reports whether the definition targets the given cat. A zero
// catID means "no cat selected" and matches everything.
func (d CareTaskDef) AppliesTo(catID int64) bool {
	if catID == 0 || len(d.TargetCatIDs) == 0 {
		return true
	}
	for _, id := range d.TargetCatIDs {
		if id == catID {
			return true
		}
	}
	return false
}

// CareLog is an append-only completion record. Type is the task definition id,
// optionally suffixed with ":slot".
type CareLog struct {
	ID          int64
	HouseholdID int64
	Type        string
	CatID       *int64
	DoneBy      int64
	DoneAt      time.Time
}

// LogType builds the log type key for a definition and an optional slot.
func LogType(defID int64, slot MealSlot) string {
	base := formatID(defID)
	if slot == "" {
		return base
	}
	return base + ":" + string(slot)
}

// SplitLogType splits "12:morning" into "12" and the slot.
func SplitLogType(t string) (string, MealSlot) {
	base, slot, ok := strings.Cut(t, ":")
	if !ok {
		return t, ""
	}
	return base, MealSlot(slot)
}

type NoticeCategory string

const (
	CategoryEating   NoticeCategory = "eating"
	CategoryToilet   NoticeCategory = "toilet"
	CategoryBehavior NoticeCategory = "behavior"
	CategoryHealth   NoticeCategory = "health"
	CategoryOther    NoticeCategory = "other"
)

type InputType string

const (
	InputOKNotice InputType = "ok-notice"
	InputCount    InputType = "count"
	InputChoice   InputType = "choice"
)

// NoticeDef is a health-observation checklist item.
type NoticeDef struct {
	ID          int64
	HouseholdID int64
	Title       string
	Kind        string
	Category    NoticeCategory
	InputType   InputType
	Choices     []string
	// NormalValues overrides the canonical normal token for this notice.
	NormalValues []string
	Enabled      bool
	SortOrder    int
	CreatedAt    time.Time
}

const NoticeKind = "notice"

// Observation is a recorded notice value for one cat.
type Observation struct {
	ID             int64
	HouseholdID    int64
	CatID          int64
	Type           string
	Value          string
	RecordedBy     int64
	RecordedAt     time.Time
	AcknowledgedAt *time.Time
}
