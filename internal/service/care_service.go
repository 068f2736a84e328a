package service

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"
	"time"

	"nekocare/internal/care"
	dom "nekocare/internal/domain"
	"nekocare/internal/realtime"
	"nekocare/internal/repo"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// CareService runs the care engine over the household's data and performs
// the care writes: logs, observations, inventory and definitions.
type CareService struct {
	repo         repo.CareRepo
	points       repo.ThemeRepo
	thresholds   care.InventoryThresholds
	pointsPerLog int

	notify notifier
	cache  SnapshotCache
	log    *zap.Logger
	now    func() time.Time
	sf     singleflight.Group
}

// NewCareService creates a CareService. points may be nil to disable
// footprint points.
func NewCareService(r repo.CareRepo, points repo.ThemeRepo, th care.InventoryThresholds, pointsPerLog int, d Deps) *CareService {
	return &CareService{
		repo:         r,
		points:       points,
		thresholds:   th,
		pointsPerLog: pointsPerLog,
		notify:       d.notifier(),
		cache:        d.Cache,
		log:          d.logger(),
		now:          d.clock(),
	}
}

// FeedResult is the computed feed plus what the caller needs to render it.
type FeedResult struct {
	care.Feed
	Cats []dom.Cat
	// Overlay holds the caller's optimistic entries that are still unresolved
	// after reconciling with backend state.
	Overlay care.Overlay
}

// Feed computes the household's feed at the current time. catID 0 means no
// cat is selected. overlay may be nil.
func (s *CareService) Feed(ctx context.Context, householdID, catID int64, overlay care.Overlay) (FeedResult, error) {
	now := s.now()
	snap, err := s.snapshot(ctx, householdID, now)
	if err != nil {
		return FeedResult{}, err
	}
	if catID != 0 && !hasCat(snap.Cats, catID) {
		return FeedResult{}, invalid("unknown cat %d", catID)
	}
	remaining := care.Reconcile(overlay, snap.Authority(now))
	feed := snap.Today(catID, now, care.Options{Thresholds: s.thresholds, Overlay: remaining})
	return FeedResult{Feed: feed, Cats: snap.Cats, Overlay: remaining}, nil
}

// Snapshot returns the household state the feed is computed from.
func (s *CareService) Snapshot(ctx context.Context, householdID int64) (care.Snapshot, error) {
	return s.snapshot(ctx, householdID, s.now())
}

func (s *CareService) snapshot(ctx context.Context, householdID int64, now time.Time) (care.Snapshot, error) {
	key := "snapshot:" + strconv.FormatInt(householdID, 10)
	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		cacheable := false
		var version int64
		if s.cache != nil {
			snap, ok, err := s.cache.Get(ctx, householdID)
			if err != nil {
				s.log.Warn("snapshot cache read failed", zap.Int64("household_id", householdID), zap.Error(err))
			}
			if ok && sameBusinessDay(snap, now) {
				return snap, nil
			}
			if version, err = s.cache.Version(ctx, householdID); err != nil {
				s.log.Warn("snapshot version read failed", zap.Int64("household_id", householdID), zap.Error(err))
			} else {
				cacheable = true
			}
		}
		snap, err := care.LoadSnapshot(ctx, s.repo, householdID, now)
		if err != nil {
			s.log.Error("load snapshot", zap.Int64("household_id", householdID), zap.Error(err))
			return nil, err
		}
		if cacheable {
			stored, err := s.cache.Set(ctx, snap, version)
			if err != nil {
				s.log.Warn("snapshot cache write failed", zap.Int64("household_id", householdID), zap.Error(err))
			} else if !stored {
				s.log.Debug("stale snapshot not cached", zap.Int64("household_id", householdID))
			}
		}
		return snap, nil
	})
	if err != nil {
		return care.Snapshot{}, err
	}
	return v.(care.Snapshot), nil
}

// sameBusinessDay reports whether a cached snapshot still covers now's
// business day; observations are only loaded for the day they were read.
func sameBusinessDay(snap care.Snapshot, now time.Time) bool {
	dsh := snap.Settings.DayStartHour
	return care.SameDay(care.BusinessDate(snap.LoadedAt.In(now.Location()), dsh), care.BusinessDate(now, dsh))
}

func hasCat(cats []dom.Cat, id int64) bool {
	return slices.ContainsFunc(cats, func(c dom.Cat) bool { return c.ID == id })
}

func (s *CareService) requireCat(ctx context.Context, householdID, catID int64) error {
	cats, err := s.repo.ListCats(ctx, householdID)
	if err != nil {
		return err
	}
	if !hasCat(cats, catID) {
		return invalid("unknown cat %d", catID)
	}
	return nil
}

func (s *CareService) award(ctx context.Context, householdID int64) {
	if s.points == nil || s.pointsPerLog <= 0 {
		return
	}
	if err := s.points.AddPoints(ctx, householdID, s.pointsPerLog); err != nil {
		s.log.Warn("award points failed", zap.Int64("household_id", householdID), zap.Error(err))
	}
}

// ---- care logs ----

// AddCareLog records a task completion. logType is "<defID>" or
// "<defID>:<slot>"; catID is required for per-cat tasks and ignored otherwise.
func (s *CareService) AddCareLog(ctx context.Context, householdID, userID int64, logType string, catID *int64) (dom.CareLog, error) {
	base, slot := dom.SplitLogType(strings.TrimSpace(logType))
	defID := dom.ParseID(base)
	if defID == 0 {
		return dom.CareLog{}, invalid("malformed log type %q", logType)
	}
	def, err := s.repo.GetTaskDef(ctx, householdID, defID)
	if err != nil {
		if errors.Is(mapRepoErr(err), ErrNotFound) {
			return dom.CareLog{}, invalid("unknown task %d", defID)
		}
		return dom.CareLog{}, err
	}
	if !def.Enabled {
		return dom.CareLog{}, invalid("task %d is disabled", defID)
	}

	slots := def.Slots()
	switch {
	case slot != "" && !slices.Contains(slots, slot):
		return dom.CareLog{}, invalid("task %d has no %s slot", defID, slot)
	case slot == "" && len(slots) == 1:
		slot = slots[0]
	case slot == "" && len(slots) > 1:
		return dom.CareLog{}, invalid("task %d needs a slot", defID)
	}

	if def.PerCat {
		if catID == nil || *catID == 0 {
			return dom.CareLog{}, invalid("task %d is per cat", defID)
		}
		if err := s.requireCat(ctx, householdID, *catID); err != nil {
			return dom.CareLog{}, err
		}
		if !def.AppliesTo(*catID) {
			return dom.CareLog{}, invalid("task %d does not apply to cat %d", defID, *catID)
		}
	} else {
		catID = nil
	}

	l, err := s.repo.AddCareLog(ctx, dom.CareLog{
		HouseholdID: householdID,
		Type:        dom.LogType(defID, slot),
		CatID:       catID,
		DoneBy:      userID,
		DoneAt:      s.now(),
	})
	if err != nil {
		return dom.CareLog{}, err
	}
	s.award(ctx, householdID)
	s.notify.changed(ctx, householdID, realtime.TableCareLogs, realtime.OpInsert, l.ID, l, l.DoneAt)
	return l, nil
}

// UndoCareLog deletes a completion record.
func (s *CareService) UndoCareLog(ctx context.Context, householdID, id int64) error {
	if err := s.repo.DeleteCareLog(ctx, householdID, id); err != nil {
		return mapRepoErr(err)
	}
	s.notify.changed(ctx, householdID, realtime.TableCareLogs, realtime.OpDelete, id, nil, s.now())
	return nil
}

// ---- observations ----

// AddObservation records a notice value for a cat. The value must be one of
// the notice's choices or a normal value.
func (s *CareService) AddObservation(ctx context.Context, householdID, userID, catID, noticeID int64, value string) (dom.Observation, error) {
	value = strings.TrimSpace(value)
	def, err := s.repo.GetNoticeDef(ctx, householdID, noticeID)
	if err != nil {
		if errors.Is(mapRepoErr(err), ErrNotFound) {
			return dom.Observation{}, invalid("unknown notice %d", noticeID)
		}
		return dom.Observation{}, err
	}
	if !def.Enabled {
		return dom.Observation{}, invalid("notice %d is disabled", noticeID)
	}
	if !care.AcceptsValue(def, value) {
		return dom.Observation{}, invalid("value %q is not valid for notice %d", value, noticeID)
	}
	if err := s.requireCat(ctx, householdID, catID); err != nil {
		return dom.Observation{}, err
	}

	o, err := s.repo.AddObservation(ctx, dom.Observation{
		HouseholdID: householdID,
		CatID:       catID,
		Type:        strconv.FormatInt(noticeID, 10),
		Value:       value,
		RecordedBy:  userID,
		RecordedAt:  s.now(),
	})
	if err != nil {
		return dom.Observation{}, err
	}
	s.award(ctx, householdID)
	s.notify.changed(ctx, householdID, realtime.TableObservations, realtime.OpInsert, o.ID, o, o.RecordedAt)
	return o, nil
}

// AcknowledgeObservation marks an abnormal observation as seen.
func (s *CareService) AcknowledgeObservation(ctx context.Context, householdID, id int64) (dom.Observation, error) {
	o, err := s.repo.AcknowledgeObservation(ctx, householdID, id, s.now())
	if err != nil {
		return dom.Observation{}, mapRepoErr(err)
	}
	s.notify.changed(ctx, householdID, realtime.TableObservations, realtime.OpUpdate, o.ID, o, s.now())
	return o, nil
}

// ---- inventory ----

func (s *CareService) ListInventory(ctx context.Context, householdID int64) ([]dom.InventoryItem, error) {
	return s.repo.ListInventory(ctx, householdID)
}

func validStock(l dom.StockLevel) bool {
	switch l {
	case dom.StockFull, dom.StockHalf, dom.StockLow, dom.StockEmpty:
		return true
	}
	return false
}

func validRange(lo, hi int) error {
	if lo < 0 || hi < 1 || lo > hi {
		return invalid("range must satisfy 0 <= min <= max, max >= 1")
	}
	return nil
}

func (s *CareService) CreateInventoryItem(ctx context.Context, it dom.InventoryItem) (dom.InventoryItem, error) {
	it.Label = strings.TrimSpace(it.Label)
	if it.Label == "" {
		return dom.InventoryItem{}, invalid("label is required")
	}
	if err := validRange(it.RangeMin, it.RangeMax); err != nil {
		return dom.InventoryItem{}, err
	}
	if it.AlertDays != nil && *it.AlertDays < 1 {
		return dom.InventoryItem{}, invalid("alert days must be positive")
	}
	if it.StockLevel == "" {
		it.StockLevel = dom.StockFull
	}
	if !validStock(it.StockLevel) {
		return dom.InventoryItem{}, invalid("unknown stock level %q", it.StockLevel)
	}
	out, err := s.repo.CreateInventoryItem(ctx, it)
	if err != nil {
		return dom.InventoryItem{}, mapRepoErr(err)
	}
	s.notify.changed(ctx, it.HouseholdID, realtime.TableInventory, realtime.OpInsert, out.ID, out, s.now())
	return out, nil
}

// InventoryUpdate is a partial update of an inventory item. Bought records a
// purchase today: lastBought becomes the current business date and the stock
// level resets to full unless the patch sets one.
type InventoryUpdate struct {
	Patch  dom.InventoryPatch
	Bought bool
}

func (s *CareService) UpdateInventoryItem(ctx context.Context, householdID, id int64, u InventoryUpdate) (dom.InventoryItem, error) {
	p := u.Patch
	if p.Label != nil {
		l := strings.TrimSpace(*p.Label)
		if l == "" {
			return dom.InventoryItem{}, invalid("label is required")
		}
		p.Label = &l
	}
	if p.StockLevel != nil && !validStock(*p.StockLevel) {
		return dom.InventoryItem{}, invalid("unknown stock level %q", *p.StockLevel)
	}
	if p.AlertDays != nil && *p.AlertDays < 1 {
		return dom.InventoryItem{}, invalid("alert days must be positive")
	}
	if p.RangeMin != nil || p.RangeMax != nil {
		cur, err := s.inventoryItem(ctx, householdID, id)
		if err != nil {
			return dom.InventoryItem{}, err
		}
		lo, hi := cur.RangeMin, cur.RangeMax
		if p.RangeMin != nil {
			lo = *p.RangeMin
		}
		if p.RangeMax != nil {
			hi = *p.RangeMax
		}
		if err := validRange(lo, hi); err != nil {
			return dom.InventoryItem{}, err
		}
	}
	now := s.now()
	if u.Bought {
		today := care.BusinessDate(now, s.dayStartHour(ctx, householdID))
		p.LastBought = &today
		if p.StockLevel == nil {
			full := dom.StockFull
			p.StockLevel = &full
		}
	}

	it, err := s.repo.UpdateInventoryItem(ctx, householdID, id, p)
	if err != nil {
		return dom.InventoryItem{}, mapRepoErr(err)
	}
	s.notify.changed(ctx, householdID, realtime.TableInventory, realtime.OpUpdate, it.ID, it, now)
	return it, nil
}

func (s *CareService) inventoryItem(ctx context.Context, householdID, id int64) (dom.InventoryItem, error) {
	items, err := s.repo.ListInventory(ctx, householdID)
	if err != nil {
		return dom.InventoryItem{}, err
	}
	for _, it := range items {
		if it.ID == id {
			return it, nil
		}
	}
	return dom.InventoryItem{}, ErrNotFound
}

func (s *CareService) dayStartHour(ctx context.Context, householdID int64) int {
	st, err := s.repo.GetSettings(ctx, householdID)
	if err != nil {
		s.log.Warn("read settings failed", zap.Int64("household_id", householdID), zap.Error(err))
		return dom.DefaultDayStartHour
	}
	return st.DayStartHour
}

// ---- definitions ----

func (s *CareService) ListTaskDefs(ctx context.Context, householdID int64) ([]dom.CareTaskDef, error) {
	return s.repo.ListTaskDefs(ctx, householdID)
}

func validateTaskDef(d *dom.CareTaskDef) error {
	d.Title = strings.TrimSpace(d.Title)
	if d.Title == "" {
		return invalid("title is required")
	}
	if !d.Frequency.Valid() {
		return invalid("unknown frequency %q", d.Frequency)
	}
	seen := make(map[dom.MealSlot]bool, len(d.MealSlots))
	for _, sl := range d.MealSlots {
		if !sl.Valid() {
			return invalid("unknown meal slot %q", sl)
		}
		if seen[sl] {
			return invalid("duplicate meal slot %q", sl)
		}
		seen[sl] = true
	}
	if d.FrequencyCount < 0 {
		return invalid("frequency count must not be negative")
	}
	return nil
}

func (s *CareService) CreateTaskDef(ctx context.Context, d dom.CareTaskDef) (dom.CareTaskDef, error) {
	if err := validateTaskDef(&d); err != nil {
		return dom.CareTaskDef{}, err
	}
	out, err := s.repo.CreateTaskDef(ctx, d)
	if err != nil {
		return dom.CareTaskDef{}, mapRepoErr(err)
	}
	s.notify.changed(ctx, d.HouseholdID, realtime.TableCareTaskDefs, realtime.OpInsert, out.ID, out, s.now())
	return out, nil
}

func (s *CareService) UpdateTaskDef(ctx context.Context, householdID, id int64, d dom.CareTaskDef) (dom.CareTaskDef, error) {
	if err := validateTaskDef(&d); err != nil {
		return dom.CareTaskDef{}, err
	}
	d.HouseholdID = householdID
	out, err := s.repo.UpdateTaskDef(ctx, householdID, id, d)
	if err != nil {
		return dom.CareTaskDef{}, mapRepoErr(err)
	}
	s.notify.changed(ctx, householdID, realtime.TableCareTaskDefs, realtime.OpUpdate, out.ID, out, s.now())
	return out, nil
}

// DeleteTaskDef disables the definition; its logs are kept.
func (s *CareService) DeleteTaskDef(ctx context.Context, householdID, id int64) error {
	if err := s.repo.DisableTaskDef(ctx, householdID, id); err != nil {
		return mapRepoErr(err)
	}
	s.notify.changed(ctx, householdID, realtime.TableCareTaskDefs, realtime.OpDelete, id, nil, s.now())
	return nil
}

func (s *CareService) ListNoticeDefs(ctx context.Context, householdID int64) ([]dom.NoticeDef, error) {
	return s.repo.ListNoticeDefs(ctx, householdID)
}

func (s *CareService) CreateNoticeDef(ctx context.Context, d dom.NoticeDef) (dom.NoticeDef, error) {
	d.Title = strings.TrimSpace(d.Title)
	if d.Title == "" {
		return dom.NoticeDef{}, invalid("title is required")
	}
	if d.Kind == "" {
		d.Kind = dom.NoticeKind
	}
	switch d.Category {
	case dom.CategoryEating, dom.CategoryToilet, dom.CategoryBehavior, dom.CategoryHealth, dom.CategoryOther:
	case "":
		d.Category = dom.CategoryOther
	default:
		return dom.NoticeDef{}, invalid("unknown category %q", d.Category)
	}
	switch d.InputType {
	case dom.InputOKNotice, dom.InputCount, dom.InputChoice:
	case "":
		d.InputType = dom.InputOKNotice
	default:
		return dom.NoticeDef{}, invalid("unknown input type %q", d.InputType)
	}
	for _, c := range d.Choices {
		if strings.TrimSpace(c) == "" {
			return dom.NoticeDef{}, invalid("choices must not be blank")
		}
	}
	out, err := s.repo.CreateNoticeDef(ctx, d)
	if err != nil {
		return dom.NoticeDef{}, mapRepoErr(err)
	}
	s.notify.changed(ctx, d.HouseholdID, realtime.TableNoticeDefs, realtime.OpInsert, out.ID, out, s.now())
	return out, nil
}

// DeleteNoticeDef disables the notice; its observations are kept.
func (s *CareService) DeleteNoticeDef(ctx context.Context, householdID, id int64) error {
	if err := s.repo.DisableNoticeDef(ctx, householdID, id); err != nil {
		return mapRepoErr(err)
	}
	s.notify.changed(ctx, householdID, realtime.TableNoticeDefs, realtime.OpDelete, id, nil, s.now())
	return nil
}
