package care

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dom "nekocare/internal/domain"
)

func daysAgo(now time.Time, n int) *time.Time {
	t := now.AddDate(0, 0, -n)
	return &t
}

func fixture(now time.Time) Snapshot {
	return Snapshot{
		HouseholdID: 1,
		Settings:    dom.Settings{HouseholdID: 1, DayStartHour: 4},
		Cats:        []dom.Cat{{ID: 10, Name: "タマ"}, {ID: 11, Name: "ミケ"}},
		TaskDefs: []dom.CareTaskDef{
			{ID: 1, Title: "ごはん", Frequency: dom.FreqTwiceDaily, Enabled: true},
			{ID: 2, Title: "トイレ掃除", Frequency: dom.FreqOnceDaily, Enabled: true},
			{ID: 3, Title: "爪切り", Frequency: dom.FreqWeekly, Enabled: true},
		},
		Logs: []dom.CareLog{
			{ID: 1, Type: "2:morning", DoneAt: now.Add(-2 * time.Hour)},
		},
		NoticeDefs: noticeDefs(),
		Observations: []dom.Observation{
			obs(1, 10, "1", NormalToken, now.Add(-time.Hour)),
			obs(2, 10, "2", "ゆるい", now.Add(-time.Hour)),
		},
		Inventory: []dom.InventoryItem{
			{ID: 1, Label: "フード", RangeMax: 20, LastBought: daysAgo(now, 30), Enabled: true},
			{ID: 2, Label: "砂", RangeMax: 20, LastBought: daysAgo(now, 5), Enabled: true},
		},
		Incidents: []dom.Incident{
			{ID: 1, CatID: 10, Type: dom.IncidentVomit, Status: dom.IncidentActive, CreatedAt: now.Add(-time.Hour)},
			{ID: 2, CatID: 11, Type: dom.IncidentInjury, Status: dom.IncidentResolved},
			{ID: 3, CatID: 11, Type: dom.IncidentAppetite, Status: dom.IncidentMonitoring},
		},
	}
}

func kinds(items []Item) []ItemKind {
	out := make([]ItemKind, len(items))
	for i, it := range items {
		out[i] = it.Kind
	}
	return out
}

func TestAggregate_OrderAndContents(t *testing.T) {
	now := at(2024, 6, 5, 13, 0)
	snap := fixture(now)

	feed := snap.Today(10, now, DefaultOptions())

	assert.Equal(t, at(2024, 6, 5, 0, 0), feed.BusinessDate)
	assert.Equal(t, dom.SlotNoon, feed.Slot)
	assert.Equal(t, []ItemKind{
		KindIncident, KindIncident, // open incidents, input order
		KindInventory,  // 30 days on a 20 day range: critical
		KindNotice,     // abnormal stool
		KindUnrecorded, // 元気 not recorded
		KindTask,       // ごはん morning, one slot late
		KindTask,       // 爪切り weekly, early in the week
	}, kinds(feed.AllItems))

	assert.Equal(t, "incident:1", feed.AllItems[0].ID)
	assert.Equal(t, "incident:3", feed.AllItems[1].ID)
	for _, it := range feed.AllItems[:2] {
		assert.Equal(t, SeverityIncident, it.Severity)
	}
	assert.Equal(t, 90, feed.AllItems[2].Severity)
	assert.Equal(t, SeverityAbnormal, feed.AllItems[3].Severity)
	assert.Equal(t, "ゆるい", feed.AllItems[3].Body)
	assert.Equal(t, SeverityUnrecorded, feed.AllItems[4].Severity)
	assert.Equal(t, 60, feed.AllItems[5].Severity)
	assert.Equal(t, "task:1:morning:0", feed.AllItems[5].ID)

	require.Len(t, feed.CareItems, 2)
	assert.Len(t, feed.AlertItems, 6)

	// due: 1:morning, 2:morning, weekly goal 1
	assert.Equal(t, 3, feed.TotalCareTasks)
	assert.Equal(t, 1, feed.CompletedCareTasks)
	assert.InDelta(t, 1.0/3.0, feed.Progress, 1e-9)
}

func TestAggregate_Idempotent(t *testing.T) {
	now := at(2024, 6, 5, 21, 0)
	snap := fixture(now)

	a := snap.Today(0, now, DefaultOptions())
	b := snap.Today(0, now, DefaultOptions())
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("aggregate not idempotent (-first +second):\n%s", diff)
	}
}

func TestAggregate_AllCatsWhenNoneSelected(t *testing.T) {
	now := at(2024, 6, 5, 13, 0)
	feed := fixture(now).Today(0, now, DefaultOptions())

	var unrecorded []int64
	for _, it := range feed.AllItems {
		if it.Kind == KindUnrecorded {
			unrecorded = append(unrecorded, it.CatID)
		}
	}
	// cat 10 misses 元気; cat 11 misses all three notices
	assert.Equal(t, []int64{10, 11, 11, 11}, unrecorded)
}

func TestAggregate_EmptyIsComplete(t *testing.T) {
	feed := Aggregate(TaskResolution{}, nil, nil, nil, at(2024, 6, 5, 9, 0), DefaultOptions())
	assert.Empty(t, feed.AllItems)
	assert.Equal(t, 1.0, feed.Progress)
}

func TestAggregate_IncidentsBeforeEverything(t *testing.T) {
	now := at(2024, 6, 5, 9, 0)
	incidents := []dom.Incident{{ID: 9, Type: dom.IncidentOther, Status: dom.IncidentActive}}
	inv := []dom.InventoryItem{{ID: 1, RangeMax: 1, LastBought: daysAgo(now, 100), StockLevel: dom.StockEmpty, Enabled: true}}
	notices := []ResolvedNotice{{Def: dom.NoticeDef{ID: 1}, CatID: 10}}

	feed := Aggregate(TaskResolution{}, notices, inv, incidents, now, DefaultOptions())
	require.Len(t, feed.AllItems, 3)
	assert.Equal(t, KindIncident, feed.AllItems[0].Kind)
	assert.Equal(t, 100, feed.AllItems[0].Severity)
	for _, it := range feed.AllItems[1:] {
		assert.Less(t, it.Severity, 100)
	}
}

func TestInventoryItem_Thresholds(t *testing.T) {
	now := at(2024, 6, 5, 9, 0)
	th := DefaultThresholds()
	alert := 10

	tests := []struct {
		name     string
		item     dom.InventoryItem
		emit     bool
		severity int
	}{
		{"past range", dom.InventoryItem{RangeMax: 20, LastBought: daysAgo(now, 30), Enabled: true}, true, 90},
		{"fresh", dom.InventoryItem{RangeMax: 20, LastBought: daysAgo(now, 5), Enabled: true}, false, 0},
		{"on threshold", dom.InventoryItem{RangeMax: 20, LastBought: daysAgo(now, 20), Enabled: true}, true, 60},
		{"urgent", dom.InventoryItem{RangeMax: 20, LastBought: daysAgo(now, 24), Enabled: true}, true, 75},
		{"soon", dom.InventoryItem{RangeMax: 20, LastBought: daysAgo(now, 18), Enabled: true}, true, 40},
		{"override", dom.InventoryItem{RangeMax: 20, AlertDays: &alert, LastBought: daysAgo(now, 10), Enabled: true}, true, 60},
		{"disabled", dom.InventoryItem{RangeMax: 20, LastBought: daysAgo(now, 30)}, false, 0},
		{"never bought", dom.InventoryItem{RangeMax: 20, Enabled: true}, false, 0},
		{"empty stock", dom.InventoryItem{RangeMax: 20, StockLevel: dom.StockEmpty, Enabled: true}, true, 90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it, ok := inventoryItem(tt.item, now, th)
			assert.Equal(t, tt.emit, ok)
			if tt.emit {
				assert.Equal(t, KindInventory, it.Kind)
				assert.Equal(t, tt.severity, it.Severity)
			}
		})
	}
}

func TestTaskSeverity(t *testing.T) {
	assert.Equal(t, 40, TaskSeverity(ResolvedTask{Slot: dom.SlotNoon}))
	assert.Equal(t, 60, TaskSeverity(ResolvedTask{Slot: dom.SlotMorning, SlotsLate: 1}))
	assert.Equal(t, 80, TaskSeverity(ResolvedTask{Slot: dom.SlotMorning, SlotsLate: 3}))
	assert.Equal(t, 40, TaskSeverity(ResolvedTask{Elapsed: 0}))
	assert.Equal(t, 60, TaskSeverity(ResolvedTask{Elapsed: 0.5}))
	assert.Equal(t, 80, TaskSeverity(ResolvedTask{Elapsed: 1}))

	it := taskItem(ResolvedTask{Def: dom.CareTaskDef{ID: 1}, Slot: dom.SlotMorning, SlotsLate: 3, Status: TaskPending})
	assert.True(t, it.IsUrgent())
}
