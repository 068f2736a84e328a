package care

import (
	"context"
	"fmt"
	"strconv"
	"time"

	dom "nekocare/internal/domain"

	"golang.org/x/sync/errgroup"
)

// CareDataRepository is the read side of the data backend the engine needs.
type CareDataRepository interface {
	GetSettings(ctx context.Context, householdID int64) (dom.Settings, error)
	ListCats(ctx context.Context, householdID int64) ([]dom.Cat, error)
	ListTaskDefs(ctx context.Context, householdID int64) ([]dom.CareTaskDef, error)
	ListCareLogs(ctx context.Context, householdID int64, since time.Time) ([]dom.CareLog, error)
	ListNoticeDefs(ctx context.Context, householdID int64) ([]dom.NoticeDef, error)
	ListObservations(ctx context.Context, householdID int64, since time.Time) ([]dom.Observation, error)
	ListInventory(ctx context.Context, householdID int64) ([]dom.InventoryItem, error)
	ListIncidents(ctx context.Context, householdID int64, openOnly bool) ([]dom.Incident, error)
}

// Snapshot is the household state one feed computation runs over.
type Snapshot struct {
	HouseholdID  int64
	LoadedAt     time.Time
	Settings     dom.Settings
	Cats         []dom.Cat
	TaskDefs     []dom.CareTaskDef
	Logs         []dom.CareLog
	NoticeDefs   []dom.NoticeDef
	Observations []dom.Observation
	Inventory    []dom.InventoryItem
	Incidents    []dom.Incident
}

// LoadSnapshot reads everything needed to compute the feed at now. Logs are
// loaded back to the longest goal period; observations back to the start of
// the business day.
func LoadSnapshot(ctx context.Context, r CareDataRepository, householdID int64, now time.Time) (Snapshot, error) {
	settings, err := r.GetSettings(ctx, householdID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("settings: %w", err)
	}
	snap := Snapshot{HouseholdID: householdID, LoadedAt: now, Settings: settings}
	dayStart := settings.DayStartHour

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.Cats, err = r.ListCats(gctx, householdID)
		return wrap("cats", err)
	})
	g.Go(func() (err error) {
		snap.TaskDefs, err = r.ListTaskDefs(gctx, householdID)
		return wrap("task defs", err)
	})
	g.Go(func() (err error) {
		snap.Logs, err = r.ListCareLogs(gctx, householdID, LookbackStart(now, dayStart))
		return wrap("care logs", err)
	})
	g.Go(func() (err error) {
		snap.NoticeDefs, err = r.ListNoticeDefs(gctx, householdID)
		return wrap("notice defs", err)
	})
	g.Go(func() (err error) {
		snap.Observations, err = r.ListObservations(gctx, householdID, DayStart(now, dayStart))
		return wrap("observations", err)
	})
	g.Go(func() (err error) {
		snap.Inventory, err = r.ListInventory(gctx, householdID)
		return wrap("inventory", err)
	})
	g.Go(func() (err error) {
		snap.Incidents, err = r.ListIncidents(gctx, householdID, true)
		return wrap("incidents", err)
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func wrap(what string, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}

// Today computes the feed for catID at now. With catID 0, per-cat tasks are
// resolved household-wide and notices are resolved for every cat.
func (s Snapshot) Today(catID int64, now time.Time, opts Options) Feed {
	opts.DayStartHour = s.Settings.DayStartHour
	opts.ActiveCatID = catID

	tasks := ResolveTasks(s.TaskDefs, s.Logs, now, opts)
	today := BusinessDate(now, opts.DayStartHour)

	var notices []ResolvedNotice
	if catID != 0 {
		notices = ResolveNotices(s.NoticeDefs, s.Observations, catID, today, opts)
	} else {
		for _, c := range s.Cats {
			notices = append(notices, ResolveNotices(s.NoticeDefs, s.Observations, c.ID, today, opts)...)
		}
	}
	return Aggregate(tasks, notices, s.Inventory, s.Incidents, now, opts)
}

// Authority returns the backend-confirmed value of every task occurrence and
// notice recorded in the current periods, keyed like an Overlay. It is the
// input Reconcile needs.
func (s Snapshot) Authority(now time.Time) map[string]Authoritative {
	dayStart := s.Settings.DayStartHour
	out := make(map[string]Authoritative)
	defs := make(map[string]dom.CareTaskDef, len(s.TaskDefs))
	for _, d := range s.TaskDefs {
		defs[strconv.FormatInt(d.ID, 10)] = d
	}
	for _, l := range s.Logs {
		base, slot := dom.SplitLogType(l.Type)
		def, ok := defs[base]
		if !ok {
			continue
		}
		start := PeriodStart(def.Frequency, now, dayStart)
		if len(def.Slots()) > 0 {
			start = DayStart(now, dayStart)
			if slot == "" && len(def.Slots()) == 1 {
				slot = def.Slots()[0]
			}
		}
		if l.DoneAt.Before(start) {
			continue
		}
		// Per-cat logs also confirm the household-wide occurrence, which is
		// what the feed shows when no cat is selected.
		keys := []string{TaskKey(def.ID, slot, 0)}
		if def.PerCat && l.CatID != nil && *l.CatID != 0 {
			keys = append(keys, TaskKey(def.ID, slot, *l.CatID))
		}
		for _, key := range keys {
			if a, ok := out[key]; !ok || l.DoneAt.After(a.At) {
				out[key] = Authoritative{Value: TaskValueDone, At: l.DoneAt}
			}
		}
	}
	today := BusinessDate(now, dayStart)
	for _, o := range s.Observations {
		if !SameDay(BusinessDate(o.RecordedAt.In(now.Location()), dayStart), today) {
			continue
		}
		key := NoticeKey(o.CatID, dom.ParseID(o.Type))
		if a, ok := out[key]; !ok || o.RecordedAt.After(a.At) {
			out[key] = Authoritative{Value: o.Value, At: o.RecordedAt}
		}
	}
	return out
}
