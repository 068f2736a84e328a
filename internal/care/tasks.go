package care

import (
	"strconv"
	"time"

	dom "nekocare/internal/domain"
)

type TaskStatus string

const (
	TaskDone      TaskStatus = "done"
	TaskPending   TaskStatus = "pending"
	TaskNotYetDue TaskStatus = "not-yet-due"
)

// ResolvedTask is the state of one task occurrence. Slot-based definitions
// produce one per slot; goal-based definitions produce one per period.
type ResolvedTask struct {
	Def    dom.CareTaskDef
	Slot   dom.MealSlot
	CatID  int64
	Status TaskStatus
	// Count and Goal are set for goal-based tasks.
	Count int
	Goal  int
	// LogID and DoneAt point at the completing log entry, if any.
	LogID  int64
	DoneAt *time.Time
	// SlotsLate is how many slot bands have started since Slot became due.
	SlotsLate int
	// Elapsed is the share of the goal period already gone, in [0,1].
	Elapsed    float64
	Optimistic bool
}

// Key returns the overlay key of the occurrence.
func (t ResolvedTask) Key() string { return TaskKey(t.Def.ID, t.Slot, t.CatID) }

// TaskResolution is the outcome of ResolveTasks.
type TaskResolution struct {
	Tasks             []ResolvedTask
	TotalSlotsDue     int
	CompletedSlotsDue int
}

// Progress is the completed share of due occurrences. Nothing due counts as
// fully complete.
func (r TaskResolution) Progress() float64 {
	if r.TotalSlotsDue <= 0 {
		return 1.0
	}
	return float64(r.CompletedSlotsDue) / float64(r.TotalSlotsDue)
}

// ResolveTasks determines, for every enabled definition and every slot,
// whether the occurrence is done, pending or not yet due at now. Slots are
// due in the order the business day reaches them, so right after the reset
// nothing is due until the next band starts.
func ResolveTasks(defs []dom.CareTaskDef, logs []dom.CareLog, now time.Time, opts Options) TaskResolution {
	byDef := indexLogs(logs)
	elapsed := minutesIntoDay(now, opts.DayStartHour)

	var res TaskResolution
	for _, def := range defs {
		if !def.Enabled || !def.AppliesTo(opts.ActiveCatID) {
			continue
		}
		catID := int64(0)
		if def.PerCat {
			catID = opts.ActiveCatID
		}
		entries := byDef[strconv.FormatInt(def.ID, 10)]

		slots := def.Slots()
		if len(slots) == 0 {
			t := resolveGoal(def, entries, catID, now, opts)
			res.Tasks = append(res.Tasks, t)
			res.TotalSlotsDue += t.Goal
			res.CompletedSlotsDue += min(t.Count, t.Goal)
			continue
		}

		start := DayStart(now, opts.DayStartHour)
		end := start.AddDate(0, 0, 1)
		for _, slot := range slots {
			off, ok := slotOffset(slot, opts.DayStartHour)
			if !ok {
				continue
			}
			t := ResolvedTask{Def: def, Slot: slot, CatID: catID}
			if off > elapsed {
				t.Status = TaskNotYetDue
				res.Tasks = append(res.Tasks, t)
				continue
			}
			t.SlotsLate = slotsStartedBetween(off, elapsed, opts.DayStartHour)
			t.Status = TaskPending
			if l, ok := findSlotLog(entries, def, slot, catID, start, end); ok {
				t.Status = TaskDone
				t.LogID = l.ID
				doneAt := l.DoneAt
				t.DoneAt = &doneAt
			}
			if v, ok := opts.Overlay.Lookup(t.Key()); ok {
				if v == TaskValueDone {
					t.Status = TaskDone
				} else {
					t.Status = TaskPending
				}
				t.Optimistic = opts.Overlay.IsPending(t.Key())
			}
			res.TotalSlotsDue++
			if t.Status == TaskDone {
				res.CompletedSlotsDue++
			}
			res.Tasks = append(res.Tasks, t)
		}
	}
	return res
}

func resolveGoal(def dom.CareTaskDef, entries []dom.CareLog, catID int64, now time.Time, opts Options) ResolvedTask {
	start := PeriodStart(def.Frequency, now, opts.DayStartHour)
	end := PeriodEnd(def.Frequency, now, opts.DayStartHour)
	t := ResolvedTask{Def: def, CatID: catID, Goal: def.GoalCount()}

	for _, l := range entries {
		if !inPeriod(l, start, end) || !catMatches(def, l, catID) {
			continue
		}
		t.Count++
		if t.DoneAt == nil || l.DoneAt.After(*t.DoneAt) {
			doneAt := l.DoneAt
			t.DoneAt = &doneAt
			t.LogID = l.ID
		}
	}
	if v, ok := opts.Overlay.Lookup(t.Key()); ok && v == TaskValueDone {
		t.Count++
		t.Optimistic = opts.Overlay.IsPending(t.Key())
	}

	if span := end.Sub(start); span > 0 {
		t.Elapsed = clamp01(float64(now.Sub(start)) / float64(span))
	}
	if t.Count >= t.Goal {
		t.Status = TaskDone
	} else {
		t.Status = TaskPending
	}
	return t
}

// findSlotLog returns the latest log completing def at slot within the
// business day. A bare definition id also completes a single-slot task.
func findSlotLog(entries []dom.CareLog, def dom.CareTaskDef, slot dom.MealSlot, catID int64, start, end time.Time) (dom.CareLog, bool) {
	var (
		best  dom.CareLog
		found bool
	)
	bareOK := len(def.Slots()) == 1
	for _, l := range entries {
		_, s := dom.SplitLogType(l.Type)
		if s != slot && !(s == "" && bareOK) {
			continue
		}
		if !inPeriod(l, start, end) || !catMatches(def, l, catID) {
			continue
		}
		if !found || l.DoneAt.After(best.DoneAt) {
			best, found = l, true
		}
	}
	return best, found
}

func inPeriod(l dom.CareLog, start, end time.Time) bool {
	return !l.DoneAt.Before(start) && l.DoneAt.Before(end)
}

// catMatches applies per-cat tracking: when a cat is active, per-cat tasks only
// count that cat's entries. Household-wide tasks count every entry.
func catMatches(def dom.CareTaskDef, l dom.CareLog, catID int64) bool {
	if !def.PerCat || catID == 0 {
		return true
	}
	return l.CatID != nil && *l.CatID == catID
}

func indexLogs(logs []dom.CareLog) map[string][]dom.CareLog {
	out := make(map[string][]dom.CareLog)
	for _, l := range logs {
		base, _ := dom.SplitLogType(l.Type)
		out[base] = append(out[base], l)
	}
	return out
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}
