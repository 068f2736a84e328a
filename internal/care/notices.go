package care

import (
	"slices"
	"strconv"
	"strings"
	"time"

	dom "nekocare/internal/domain"
)

// NormalToken is the canonical "nothing unusual" value. An observation is
// abnormal when it carries any other non-empty value, unless the notice
// definition configures its own normal values.
const NormalToken = "いつも通り"

var (
	eatingChoices   = []string{"完食", "半分", "少し", "なし"}
	stoolChoices    = []string{"普通", "ゆるい", "硬い", "なし"}
	toiletChoices   = []string{"普通", "多め", "少なめ", "気になる"}
	behaviorChoices = []string{"普通", "多め", "気になる"}
	defaultChoices  = []string{"あり", "なし"}
)

// Choices returns the valid values of a notice: its own choices, or a default
// set picked by category.
func Choices(def dom.NoticeDef) []string {
	if len(def.Choices) > 0 {
		return def.Choices
	}
	switch def.Category {
	case dom.CategoryEating:
		return eatingChoices
	case dom.CategoryToilet:
		if strings.Contains(def.Title, "うんち") || strings.Contains(def.Title, "便") {
			return stoolChoices
		}
		return toiletChoices
	case dom.CategoryBehavior:
		return behaviorChoices
	default:
		return defaultChoices
	}
}

// NormalValues returns the values that count as normal for def.
func NormalValues(def dom.NoticeDef) []string {
	if len(def.NormalValues) > 0 {
		return def.NormalValues
	}
	return []string{NormalToken}
}

// IsAbnormal reports whether value is a recorded, non-normal value for def.
func IsAbnormal(def dom.NoticeDef, value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	return !slices.Contains(NormalValues(def), value)
}

// AcceptsValue reports whether value may be recorded for def.
func AcceptsValue(def dom.NoticeDef, value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	switch def.InputType {
	case dom.InputCount:
		_, err := strconv.Atoi(value)
		return err == nil || slices.Contains(NormalValues(def), value)
	case dom.InputChoice:
		return slices.Contains(Choices(def), value) || slices.Contains(NormalValues(def), value)
	default:
		return true
	}
}

// ResolvedNotice is a notice's state for one cat on one business day.
type ResolvedNotice struct {
	Def           dom.NoticeDef
	CatID         int64
	Done          bool
	Value         string
	Abnormal      bool
	Acknowledged  bool
	ObservationID int64
	RecordedAt    *time.Time
	Choices       []string
	Optimistic    bool
}

// Key returns the overlay key of the notice.
func (n ResolvedNotice) Key() string { return NoticeKey(n.CatID, n.Def.ID) }

func isNotice(def dom.NoticeDef) bool {
	return def.Kind == "" || def.Kind == dom.NoticeKind
}

// ResolveNotices determines, for each enabled notice, whether catID has an
// observation recorded on the business day today and whether its value is
// abnormal. The latest observation of the day wins. Optimistic values in
// opts.Overlay take priority over recorded ones.
func ResolveNotices(defs []dom.NoticeDef, observations []dom.Observation, catID int64, today time.Time, opts Options) []ResolvedNotice {
	if catID == 0 {
		return nil
	}
	latest := make(map[string]dom.Observation)
	for _, o := range observations {
		if o.CatID != catID {
			continue
		}
		if !SameDay(BusinessDate(o.RecordedAt.In(today.Location()), opts.DayStartHour), today) {
			continue
		}
		if cur, ok := latest[o.Type]; !ok || o.RecordedAt.After(cur.RecordedAt) {
			latest[o.Type] = o
		}
	}

	var out []ResolvedNotice
	for _, def := range defs {
		if !def.Enabled || !isNotice(def) {
			continue
		}
		n := ResolvedNotice{Def: def, CatID: catID, Choices: Choices(def)}
		if o, ok := latest[strconv.FormatInt(def.ID, 10)]; ok {
			n.Done = true
			n.Value = o.Value
			n.ObservationID = o.ID
			n.Acknowledged = o.AcknowledgedAt != nil
			at := o.RecordedAt
			n.RecordedAt = &at
		}
		if v, ok := opts.Overlay.Lookup(n.Key()); ok {
			if v != n.Value {
				n.Acknowledged = false
			}
			n.Value = v
			n.Done = strings.TrimSpace(v) != ""
			n.Optimistic = opts.Overlay.IsPending(n.Key())
		}
		n.Abnormal = n.Done && IsAbnormal(def, n.Value)
		out = append(out, n)
	}
	return out
}
