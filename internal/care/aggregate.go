package care

import (
	"fmt"
	"math"
	"sort"
	"time"

	dom "nekocare/internal/domain"
)

// Feed is the aggregated "what still needs doing" view.
type Feed struct {
	BusinessDate time.Time
	Slot         dom.MealSlot
	AllItems     []Item
	// CareItems are the pending task items, in feed order.
	CareItems []Item
	// AlertItems are all items with severity >= SeverityAlert.
	AlertItems         []Item
	Progress           float64
	TotalCareTasks     int
	CompletedCareTasks int
}

// Aggregate merges pending tasks, unrecorded or abnormal notices, restock
// alerts and open incidents into one list ordered by severity, highest first.
// Equal severities keep input order: incidents, notices, inventory, tasks.
func Aggregate(tasks TaskResolution, notices []ResolvedNotice, inventory []dom.InventoryItem, incidents []dom.Incident, now time.Time, opts Options) Feed {
	var items []Item
	for _, inc := range incidents {
		if !inc.Open() {
			continue
		}
		items = append(items, incidentItem(inc))
	}
	for _, n := range notices {
		if it, ok := noticeItem(n); ok {
			items = append(items, it)
		}
	}
	for _, inv := range inventory {
		if it, ok := inventoryItem(inv, now, opts.Thresholds); ok {
			items = append(items, it)
		}
	}
	for _, t := range tasks.Tasks {
		if t.Status != TaskPending {
			continue
		}
		items = append(items, taskItem(t))
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Severity > items[j].Severity
	})

	feed := Feed{
		BusinessDate:       BusinessDate(now, opts.DayStartHour),
		Slot:               CurrentSlot(now.Hour()),
		AllItems:           items,
		Progress:           tasks.Progress(),
		TotalCareTasks:     tasks.TotalSlotsDue,
		CompletedCareTasks: tasks.CompletedSlotsDue,
	}
	for _, it := range items {
		if it.Kind == KindTask {
			feed.CareItems = append(feed.CareItems, it)
		}
		if it.IsAlert() {
			feed.AlertItems = append(feed.AlertItems, it)
		}
	}
	return feed
}

// TaskSeverity grows with lateness: a slot-based task gains 20 per slot it
// has been left behind; a goal-based task scales with the share of its period
// already elapsed. The result stays within [SeverityTaskMin, SeverityTaskMax].
func TaskSeverity(t ResolvedTask) int {
	var s int
	if t.Slot != "" {
		s = SeverityTaskMin + 20*t.SlotsLate
	} else {
		s = SeverityTaskMin + int(math.Round(t.Elapsed*float64(SeverityTaskMax-SeverityTaskMin)))
	}
	return max(SeverityTaskMin, min(s, SeverityTaskMax))
}

func taskItem(t ResolvedTask) Item {
	body := string(t.Slot)
	if t.Slot == "" {
		body = fmt.Sprintf("%d/%d", min(t.Count, t.Goal), t.Goal)
	}
	return Item{
		ID:       t.Key(),
		Kind:     KindTask,
		Title:    t.Def.Title,
		Body:     body,
		Severity: TaskSeverity(t),
		CatID:    t.CatID,
		Payload: TaskPayload{
			DefID:      t.Def.ID,
			Slot:       t.Slot,
			Frequency:  t.Def.Frequency,
			Count:      t.Count,
			Goal:       t.Goal,
			LogType:    dom.LogType(t.Def.ID, t.Slot),
			Optimistic: t.Optimistic,
		},
	}
}

func noticeItem(n ResolvedNotice) (Item, bool) {
	p := NoticePayload{
		DefID:         n.Def.ID,
		ObservationID: n.ObservationID,
		Value:         n.Value,
		Choices:       n.Choices,
		Optimistic:    n.Optimistic,
	}
	switch {
	case !n.Done:
		p.Unrecorded = true
		return Item{
			ID:       fmt.Sprintf("unrecorded:%d:%d", n.CatID, n.Def.ID),
			Kind:     KindUnrecorded,
			Title:    n.Def.Title,
			Severity: SeverityUnrecorded,
			CatID:    n.CatID,
			Payload:  p,
		}, true
	case n.Abnormal && !n.Acknowledged:
		return Item{
			ID:       fmt.Sprintf("notice:%d:%d", n.CatID, n.Def.ID),
			Kind:     KindNotice,
			Title:    n.Def.Title,
			Body:     n.Value,
			Severity: SeverityAbnormal,
			CatID:    n.CatID,
			Payload:  p,
		}, true
	}
	return Item{}, false
}

// inventoryItem emits a restock item once the days since the last purchase
// reach the item's threshold. Items within th.Soon days of the threshold
// show up below alert severity; an empty stock level is always critical.
func inventoryItem(inv dom.InventoryItem, now time.Time, th InventoryThresholds) (Item, bool) {
	if !inv.Enabled {
		return Item{}, false
	}
	threshold := inv.RestockThreshold()
	p := InventoryPayload{
		ItemID:     inv.ID,
		Threshold:  threshold,
		StockLevel: inv.StockLevel,
		LastBought: inv.LastBought,
	}
	severity := -1
	if inv.LastBought != nil && threshold > 0 {
		p.DaysSince = DaysBetween(inv.LastBought.In(now.Location()), now)
		over := p.DaysSince - threshold
		switch {
		case over >= th.Critical && th.Critical > 0:
			severity = 90
		case over >= th.Urgent && th.Urgent > 0:
			severity = 75
		case over >= 0:
			severity = SeverityAlert
		case th.Soon > 0 && over >= -th.Soon:
			severity = SeverityTaskMin
		}
	}
	if inv.StockLevel == dom.StockEmpty {
		severity = max(severity, 90)
	}
	if severity < 0 {
		return Item{}, false
	}
	body := ""
	if inv.LastBought != nil {
		body = fmt.Sprintf("%d/%d", p.DaysSince, threshold)
	}
	return Item{
		ID:       fmt.Sprintf("inventory:%d", inv.ID),
		Kind:     KindInventory,
		Title:    inv.Label,
		Body:     body,
		Severity: severity,
		Payload:  p,
	}, true
}

func incidentItem(inc dom.Incident) Item {
	return Item{
		ID:       fmt.Sprintf("incident:%d", inc.ID),
		Kind:     KindIncident,
		Title:    string(inc.Type),
		Body:     inc.Note,
		Severity: SeverityIncident,
		CatID:    inc.CatID,
		Payload: IncidentPayload{
			IncidentID: inc.ID,
			Type:       inc.Type,
			Status:     inc.Status,
			Photos:     inc.Photos,
			Updates:    len(inc.Updates),
			CreatedAt:  inc.CreatedAt,
		},
	}
}
