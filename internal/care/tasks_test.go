package care

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dom "nekocare/internal/domain"
)

func opts4() Options {
	o := DefaultOptions()
	o.DayStartHour = 4
	return o
}

func logAt(id int64, typ string, when time.Time) dom.CareLog {
	return dom.CareLog{ID: id, Type: typ, DoneAt: when}
}

func catPtr(id int64) *int64 { return &id }

func TestResolveTasks_NoDefsIsComplete(t *testing.T) {
	res := ResolveTasks(nil, nil, at(2024, 6, 2, 9, 0), opts4())
	assert.Equal(t, 0, res.TotalSlotsDue)
	assert.Equal(t, 1.0, res.Progress())
	assert.False(t, math.IsNaN(res.Progress()))
}

func TestResolveTasks_FutureSlotExcluded(t *testing.T) {
	defs := []dom.CareTaskDef{{
		ID: 1, Title: "夜ごはん", Frequency: dom.FreqOnceDaily,
		MealSlots: []dom.MealSlot{dom.SlotEvening}, Enabled: true,
	}}
	res := ResolveTasks(defs, nil, at(2024, 6, 2, 9, 0), opts4())

	assert.Equal(t, 0, res.TotalSlotsDue)
	assert.Equal(t, 0, res.CompletedSlotsDue)
	require.Len(t, res.Tasks, 1)
	assert.Equal(t, TaskNotYetDue, res.Tasks[0].Status)
}

func TestResolveTasks_TwiceDailyAtNoon(t *testing.T) {
	defs := []dom.CareTaskDef{{ID: 7, Title: "ごはん", Frequency: dom.FreqTwiceDaily, Enabled: true}}
	now := at(2024, 6, 2, 13, 0)

	res := ResolveTasks(defs, nil, now, opts4())
	assert.Equal(t, 1, res.TotalSlotsDue)
	assert.Equal(t, 0, res.CompletedSlotsDue)
	require.Len(t, res.Tasks, 2)
	assert.Equal(t, dom.SlotMorning, res.Tasks[0].Slot)
	assert.Equal(t, TaskPending, res.Tasks[0].Status)
	assert.Equal(t, 1, res.Tasks[0].SlotsLate)
	assert.Equal(t, dom.SlotEvening, res.Tasks[1].Slot)
	assert.Equal(t, TaskNotYetDue, res.Tasks[1].Status)

	logs := []dom.CareLog{logAt(1, "7:morning", at(2024, 6, 2, 7, 30))}
	res = ResolveTasks(defs, logs, now, opts4())
	assert.Equal(t, 1, res.TotalSlotsDue)
	assert.Equal(t, 1, res.CompletedSlotsDue)
	assert.Equal(t, TaskDone, res.Tasks[0].Status)
	assert.Equal(t, int64(1), res.Tasks[0].LogID)
}

func TestResolveTasks_YesterdaysLogDoesNotCount(t *testing.T) {
	defs := []dom.CareTaskDef{{ID: 7, Frequency: dom.FreqOnceDaily, Enabled: true}}
	logs := []dom.CareLog{logAt(1, "7:morning", at(2024, 6, 1, 7, 30))}

	res := ResolveTasks(defs, logs, at(2024, 6, 2, 9, 0), opts4())
	assert.Equal(t, 1, res.TotalSlotsDue)
	assert.Equal(t, 0, res.CompletedSlotsDue)
}

func TestResolveTasks_BareTypeCompletesSingleSlotTask(t *testing.T) {
	defs := []dom.CareTaskDef{
		{ID: 7, Frequency: dom.FreqOnceDaily, Enabled: true},
		{ID: 8, Frequency: dom.FreqTwiceDaily, Enabled: true},
	}
	logs := []dom.CareLog{
		logAt(1, "7", at(2024, 6, 2, 8, 0)),
		logAt(2, "8", at(2024, 6, 2, 8, 0)),
	}
	res := ResolveTasks(defs, logs, at(2024, 6, 2, 21, 0), opts4())
	assert.Equal(t, 3, res.TotalSlotsDue)
	assert.Equal(t, 1, res.CompletedSlotsDue)
}

func TestResolveTasks_GoalCountCapped(t *testing.T) {
	defs := []dom.CareTaskDef{{ID: 3, Title: "ブラッシング", Frequency: dom.FreqAsNeeded, FrequencyCount: 3, Enabled: true}}
	now := at(2024, 6, 2, 20, 0)
	logs := []dom.CareLog{
		logAt(1, "3", at(2024, 6, 2, 8, 0)),
		logAt(2, "3", at(2024, 6, 2, 12, 0)),
	}

	res := ResolveTasks(defs, logs, now, opts4())
	assert.Equal(t, 3, res.TotalSlotsDue)
	assert.Equal(t, 2, res.CompletedSlotsDue)
	assert.Equal(t, TaskPending, res.Tasks[0].Status)

	logs = append(logs, logAt(3, "3", at(2024, 6, 2, 15, 0)), logAt(4, "3", at(2024, 6, 2, 18, 0)))
	res = ResolveTasks(defs, logs, now, opts4())
	assert.Equal(t, 3, res.TotalSlotsDue)
	assert.Equal(t, 3, res.CompletedSlotsDue)
	assert.Equal(t, 4, res.Tasks[0].Count)
	assert.Equal(t, TaskDone, res.Tasks[0].Status)
	assert.Equal(t, int64(4), res.Tasks[0].LogID)
}

func TestResolveTasks_AsNeededDefaultsToOne(t *testing.T) {
	defs := []dom.CareTaskDef{{ID: 3, Frequency: dom.FreqAsNeeded, Enabled: true}}
	res := ResolveTasks(defs, nil, at(2024, 6, 2, 20, 0), opts4())
	assert.Equal(t, 1, res.TotalSlotsDue)
	assert.Equal(t, 0.0, res.Progress())
}

func TestResolveTasks_BusinessDayBeforeReset(t *testing.T) {
	now := at(2024, 6, 2, 2, 0)
	defs := []dom.CareTaskDef{
		{ID: 1, Frequency: dom.FreqTwiceDaily, Enabled: true},
		{ID: 2, Frequency: dom.FreqAsNeeded, FrequencyCount: 2, Enabled: true},
	}
	logs := []dom.CareLog{
		logAt(1, "1:morning", at(2024, 6, 1, 23, 50)),
		logAt(2, "1:evening", at(2024, 6, 2, 1, 0)),
		logAt(3, "2", at(2024, 6, 1, 23, 50)),
		logAt(4, "2", at(2024, 6, 2, 1, 0)),
		// previous business day
		logAt(5, "2", at(2024, 6, 1, 3, 0)),
	}

	res := ResolveTasks(defs, logs, now, opts4())
	assert.Equal(t, 4, res.TotalSlotsDue)
	assert.Equal(t, 4, res.CompletedSlotsDue)
	assert.Equal(t, 1.0, res.Progress())
}

func TestResolveTasks_WeeklyAndMonthlyPeriods(t *testing.T) {
	now := at(2024, 6, 5, 10, 0) // Wednesday
	defs := []dom.CareTaskDef{
		{ID: 1, Frequency: dom.FreqWeekly, Enabled: true},
		{ID: 2, Frequency: dom.FreqMonthly, FrequencyCount: 2, Enabled: true},
	}
	logs := []dom.CareLog{
		logAt(1, "1", at(2024, 6, 2, 10, 0)), // Sunday, last week
		logAt(2, "2", at(2024, 5, 31, 10, 0)),
		logAt(3, "2", at(2024, 6, 1, 10, 0)),
	}

	res := ResolveTasks(defs, logs, now, opts4())
	assert.Equal(t, 3, res.TotalSlotsDue)
	assert.Equal(t, 1, res.CompletedSlotsDue)
	assert.Equal(t, TaskPending, res.Tasks[0].Status)
	assert.Equal(t, 0, res.Tasks[0].Count)
	assert.Equal(t, 1, res.Tasks[1].Count)

	logs = append(logs, logAt(4, "1", at(2024, 6, 3, 4, 0)))
	res = ResolveTasks(defs, logs, now, opts4())
	assert.Equal(t, TaskDone, res.Tasks[0].Status)
}

func TestResolveTasks_DisabledAndTargetedDefs(t *testing.T) {
	defs := []dom.CareTaskDef{
		{ID: 1, Frequency: dom.FreqOnceDaily, Enabled: false},
		{ID: 2, Frequency: dom.FreqOnceDaily, Enabled: true, PerCat: true, TargetCatIDs: []int64{10}},
	}
	o := opts4()
	o.ActiveCatID = 11
	res := ResolveTasks(defs, nil, at(2024, 6, 2, 9, 0), o)
	assert.Empty(t, res.Tasks)
	assert.Equal(t, 1.0, res.Progress())

	o.ActiveCatID = 10
	res = ResolveTasks(defs, nil, at(2024, 6, 2, 9, 0), o)
	require.Len(t, res.Tasks, 1)
	assert.Equal(t, int64(2), res.Tasks[0].Def.ID)
}

func TestResolveTasks_PerCatUsesActiveCat(t *testing.T) {
	defs := []dom.CareTaskDef{
		{ID: 1, Frequency: dom.FreqOnceDaily, Enabled: true, PerCat: true},
		{ID: 2, Frequency: dom.FreqOnceDaily, Enabled: true},
	}
	logs := []dom.CareLog{
		{ID: 1, Type: "1:morning", CatID: catPtr(10), DoneAt: at(2024, 6, 2, 7, 0)},
		{ID: 2, Type: "2:morning", CatID: catPtr(10), DoneAt: at(2024, 6, 2, 7, 0)},
	}
	o := opts4()
	o.ActiveCatID = 11
	res := ResolveTasks(defs, logs, at(2024, 6, 2, 9, 0), o)
	assert.Equal(t, TaskPending, res.Tasks[0].Status)
	assert.Equal(t, int64(11), res.Tasks[0].CatID)
	assert.Equal(t, TaskDone, res.Tasks[1].Status, "household-wide task ignores the cat")

	o.ActiveCatID = 10
	res = ResolveTasks(defs, logs, at(2024, 6, 2, 9, 0), o)
	assert.Equal(t, TaskDone, res.Tasks[0].Status)
}

func TestResolveTasks_OverlayMarksDone(t *testing.T) {
	defs := []dom.CareTaskDef{
		{ID: 1, Frequency: dom.FreqOnceDaily, Enabled: true},
		{ID: 2, Frequency: dom.FreqAsNeeded, Enabled: true},
	}
	now := at(2024, 6, 2, 9, 0)
	o := opts4()
	o.Overlay = Overlay{}.
		Begin(TaskKey(1, dom.SlotMorning, 0), TaskValueDone, now).
		Begin(TaskKey(2, "", 0), TaskValueDone, now)

	res := ResolveTasks(defs, nil, now, o)
	assert.Equal(t, 2, res.CompletedSlotsDue)
	assert.True(t, res.Tasks[0].Optimistic)
	assert.True(t, res.Tasks[1].Optimistic)

	o.Overlay = o.Overlay.Fail(TaskKey(1, dom.SlotMorning, 0))
	res = ResolveTasks(defs, nil, now, o)
	assert.Equal(t, 1, res.CompletedSlotsDue)
	assert.Equal(t, TaskPending, res.Tasks[0].Status)
}

func TestResolveTasks_NothingDueRightAfterReset(t *testing.T) {
	defs := []dom.CareTaskDef{{ID: 1, Title: "ごはん", Frequency: dom.FreqFourDaily, Enabled: true}}
	now := at(2024, 6, 2, 4, 30)

	res := ResolveTasks(defs, nil, now, opts4())
	assert.Equal(t, 0, res.TotalSlotsDue)
	assert.Equal(t, 1.0, res.Progress())
	require.Len(t, res.Tasks, 4)
	for _, task := range res.Tasks {
		assert.Equal(t, TaskNotYetDue, task.Status, task.Slot)
	}

	feed := Aggregate(res, nil, nil, nil, now, opts4())
	assert.Empty(t, feed.AllItems)
	assert.Equal(t, at(2024, 6, 2, 0, 0), feed.BusinessDate)
}

func TestResolveTasks_PreviousDayBeforeLateReset(t *testing.T) {
	defs := []dom.CareTaskDef{{ID: 1, Frequency: dom.FreqFourDaily, Enabled: true}}
	o := DefaultOptions()
	o.DayStartHour = 6

	// 05:30 still belongs to June 1; all of its slots are due.
	res := ResolveTasks(defs, nil, at(2024, 6, 2, 5, 30), o)
	assert.Equal(t, 4, res.TotalSlotsDue)
	assert.Equal(t, 3, res.Tasks[0].SlotsLate)
	assert.Equal(t, 0, res.Tasks[3].SlotsLate)

	// After the reset the morning band is already running.
	res = ResolveTasks(defs, nil, at(2024, 6, 2, 6, 30), o)
	assert.Equal(t, 1, res.TotalSlotsDue)
	assert.Equal(t, TaskPending, res.Tasks[0].Status)
	assert.Equal(t, 0, res.Tasks[0].SlotsLate)
}

func TestResolveTasks_MiddayReset(t *testing.T) {
	defs := []dom.CareTaskDef{{ID: 1, Frequency: dom.FreqFourDaily, Enabled: true}}
	o := DefaultOptions()
	o.DayStartHour = 12

	// The business day starts at noon, so its morning is tomorrow.
	res := ResolveTasks(defs, nil, at(2024, 6, 2, 13, 0), o)
	assert.Equal(t, 1, res.TotalSlotsDue)
	assert.Equal(t, TaskNotYetDue, res.Tasks[0].Status)
	assert.Equal(t, TaskPending, res.Tasks[1].Status)

	res = ResolveTasks(defs, nil, at(2024, 6, 3, 6, 0), o)
	assert.Equal(t, 4, res.TotalSlotsDue)
	assert.Equal(t, 3, res.Tasks[1].SlotsLate)
}
