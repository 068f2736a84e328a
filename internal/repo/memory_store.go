package repo

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	dom "nekocare/internal/domain"
)

// MemoryStore is an in-memory implementation of every repository. It backs
// demo mode and tests; rows are copied in and out so callers never share
// mutable state with the store.
type MemoryStore struct {
	mu  sync.RWMutex
	seq int64
	now func() time.Time

	households map[int64]dom.Household
	settings   map[int64]dom.Settings
	cats       map[int64]dom.Cat
	taskDefs   map[int64]dom.CareTaskDef
	logs       map[int64]dom.CareLog
	noticeDefs map[int64]dom.NoticeDef
	obs        map[int64]dom.Observation
	inventory  map[int64]dom.InventoryItem
	incidents  map[int64]dom.Incident
	users      map[int64]dom.User
	themes     map[string]dom.Theme
	purchases  []dom.ThemePurchase
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:        time.Now,
		households: make(map[int64]dom.Household),
		settings:   make(map[int64]dom.Settings),
		cats:       make(map[int64]dom.Cat),
		taskDefs:   make(map[int64]dom.CareTaskDef),
		logs:       make(map[int64]dom.CareLog),
		noticeDefs: make(map[int64]dom.NoticeDef),
		obs:        make(map[int64]dom.Observation),
		inventory:  make(map[int64]dom.InventoryItem),
		incidents:  make(map[int64]dom.Incident),
		users:      make(map[int64]dom.User),
		themes:     make(map[string]dom.Theme),
	}
}

// SetClock replaces the clock used for created/updated timestamps.
func (m *MemoryStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *MemoryStore) nextID() int64 {
	m.seq++
	return m.seq
}

func sortedByID[T any](rows map[int64]T, keep func(T) bool) []T {
	ids := make([]int64, 0, len(rows))
	for id, r := range rows {
		if keep(r) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, rows[id])
	}
	return out
}

// ---- households, settings, themes ----

func (m *MemoryStore) CreateHousehold(_ context.Context, name string, dayStartHour int) (dom.Household, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := dom.Household{ID: m.nextID(), Name: name, CreatedAt: m.now()}
	m.households[h.ID] = h
	s := defaultSettings(h.ID)
	s.DayStartHour = dayStartHour
	s.UpdatedAt = h.CreatedAt
	m.settings[h.ID] = s
	return h, nil
}

func (m *MemoryStore) AddCat(_ context.Context, c dom.Cat) (dom.Cat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.households[c.HouseholdID]; !ok {
		return dom.Cat{}, ErrNotFound
	}
	c.ID = m.nextID()
	c.CreatedAt = m.now()
	m.cats[c.ID] = c
	return c, nil
}

func (m *MemoryStore) SetDayStartHour(_ context.Context, householdID int64, hour int) (dom.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.settings[householdID]
	if !ok {
		return dom.Settings{}, ErrNotFound
	}
	s.DayStartHour = hour
	s.UpdatedAt = m.now()
	m.settings[householdID] = s
	return s, nil
}

func (m *MemoryStore) GetSettings(_ context.Context, householdID int64) (dom.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.settings[householdID]; ok {
		return s, nil
	}
	return defaultSettings(householdID), nil
}

// PutTheme adds or replaces a purchasable theme.
func (m *MemoryStore) PutTheme(t dom.Theme) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.themes[t.ID] = t
}

func (m *MemoryStore) ListThemes(_ context.Context) ([]dom.Theme, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]dom.Theme, 0, len(m.themes))
	for _, t := range m.themes {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Price != out[j].Price {
			return out[i].Price < out[j].Price
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) OwnedThemes(_ context.Context, householdID int64) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []string
	for _, p := range m.purchases {
		if p.HouseholdID == householdID {
			out = append(out, p.ThemeID)
		}
	}
	return out, nil
}

func (m *MemoryStore) PurchaseTheme(_ context.Context, householdID int64, themeID string) (dom.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.themes[themeID]
	if !ok {
		return dom.Settings{}, ErrNotFound
	}
	s, ok := m.settings[householdID]
	if !ok {
		return dom.Settings{}, ErrNotFound
	}
	for _, p := range m.purchases {
		if p.HouseholdID == householdID && p.ThemeID == themeID {
			return dom.Settings{}, ErrAlreadyOwned
		}
	}
	if s.Points < t.Price {
		return dom.Settings{}, ErrInsufficientPoints
	}
	s.Points -= t.Price
	s.ActiveThemeID = themeID
	s.UpdatedAt = m.now()
	m.settings[householdID] = s
	m.purchases = append(m.purchases, dom.ThemePurchase{HouseholdID: householdID, ThemeID: themeID, PurchasedAt: s.UpdatedAt})
	return s, nil
}

func (m *MemoryStore) AddPoints(_ context.Context, householdID int64, n int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.settings[householdID]
	if !ok {
		return ErrNotFound
	}
	s.Points += n
	m.settings[householdID] = s
	return nil
}

func (m *MemoryStore) SetLayout(_ context.Context, householdID int64, layout string) (dom.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.settings[householdID]
	if !ok {
		return dom.Settings{}, ErrNotFound
	}
	s.Layout = layout
	s.UpdatedAt = m.now()
	m.settings[householdID] = s
	return s, nil
}

// ---- care data ----

func (m *MemoryStore) ListCats(_ context.Context, householdID int64) ([]dom.Cat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := sortedByID(m.cats, func(c dom.Cat) bool { return c.HouseholdID == householdID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func copyTaskDef(d dom.CareTaskDef) dom.CareTaskDef {
	d.MealSlots = slices.Clone(d.MealSlots)
	d.TargetCatIDs = slices.Clone(d.TargetCatIDs)
	return d
}

func (m *MemoryStore) ListTaskDefs(_ context.Context, householdID int64) ([]dom.CareTaskDef, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := sortedByID(m.taskDefs, func(d dom.CareTaskDef) bool { return d.HouseholdID == householdID && d.Enabled })
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	for i := range out {
		out[i] = copyTaskDef(out[i])
	}
	return out, nil
}

func (m *MemoryStore) GetTaskDef(_ context.Context, householdID, id int64) (dom.CareTaskDef, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.taskDefs[id]
	if !ok || d.HouseholdID != householdID {
		return dom.CareTaskDef{}, ErrNotFound
	}
	return copyTaskDef(d), nil
}

func (m *MemoryStore) CreateTaskDef(_ context.Context, d dom.CareTaskDef) (dom.CareTaskDef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d = copyTaskDef(d)
	d.ID = m.nextID()
	d.Enabled = true
	d.CreatedAt = m.now()
	m.taskDefs[d.ID] = d
	return copyTaskDef(d), nil
}

func (m *MemoryStore) UpdateTaskDef(_ context.Context, householdID, id int64, d dom.CareTaskDef) (dom.CareTaskDef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.taskDefs[id]
	if !ok || cur.HouseholdID != householdID {
		return dom.CareTaskDef{}, ErrNotFound
	}
	d = copyTaskDef(d)
	d.ID, d.HouseholdID, d.Enabled, d.CreatedAt = cur.ID, cur.HouseholdID, cur.Enabled, cur.CreatedAt
	m.taskDefs[id] = d
	return copyTaskDef(d), nil
}

func (m *MemoryStore) DisableTaskDef(_ context.Context, householdID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.taskDefs[id]
	if !ok || d.HouseholdID != householdID {
		return ErrNotFound
	}
	d.Enabled = false
	m.taskDefs[id] = d
	return nil
}

func copyNoticeDef(d dom.NoticeDef) dom.NoticeDef {
	d.Choices = slices.Clone(d.Choices)
	d.NormalValues = slices.Clone(d.NormalValues)
	return d
}

func (m *MemoryStore) ListNoticeDefs(_ context.Context, householdID int64) ([]dom.NoticeDef, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := sortedByID(m.noticeDefs, func(d dom.NoticeDef) bool { return d.HouseholdID == householdID && d.Enabled })
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	for i := range out {
		out[i] = copyNoticeDef(out[i])
	}
	return out, nil
}

func (m *MemoryStore) GetNoticeDef(_ context.Context, householdID, id int64) (dom.NoticeDef, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.noticeDefs[id]
	if !ok || d.HouseholdID != householdID {
		return dom.NoticeDef{}, ErrNotFound
	}
	return copyNoticeDef(d), nil
}

func (m *MemoryStore) CreateNoticeDef(_ context.Context, d dom.NoticeDef) (dom.NoticeDef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d = copyNoticeDef(d)
	d.ID = m.nextID()
	d.Enabled = true
	d.CreatedAt = m.now()
	m.noticeDefs[d.ID] = d
	return copyNoticeDef(d), nil
}

func (m *MemoryStore) DisableNoticeDef(_ context.Context, householdID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.noticeDefs[id]
	if !ok || d.HouseholdID != householdID {
		return ErrNotFound
	}
	d.Enabled = false
	m.noticeDefs[id] = d
	return nil
}

func (m *MemoryStore) ListCareLogs(_ context.Context, householdID int64, since time.Time) ([]dom.CareLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := sortedByID(m.logs, func(l dom.CareLog) bool {
		return l.HouseholdID == householdID && !l.DoneAt.Before(since)
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].DoneAt.Before(out[j].DoneAt) })
	return out, nil
}

func (m *MemoryStore) AddCareLog(_ context.Context, l dom.CareLog) (dom.CareLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l.ID = m.nextID()
	if l.DoneAt.IsZero() {
		l.DoneAt = m.now()
	}
	m.logs[l.ID] = l
	return l, nil
}

func (m *MemoryStore) DeleteCareLog(_ context.Context, householdID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.logs[id]
	if !ok || l.HouseholdID != householdID {
		return ErrNotFound
	}
	delete(m.logs, id)
	return nil
}

func (m *MemoryStore) ListObservations(_ context.Context, householdID int64, since time.Time) ([]dom.Observation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := sortedByID(m.obs, func(o dom.Observation) bool {
		return o.HouseholdID == householdID && !o.RecordedAt.Before(since)
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].RecordedAt.Before(out[j].RecordedAt) })
	return out, nil
}

func (m *MemoryStore) AddObservation(_ context.Context, o dom.Observation) (dom.Observation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o.ID = m.nextID()
	if o.RecordedAt.IsZero() {
		o.RecordedAt = m.now()
	}
	m.obs[o.ID] = o
	return o, nil
}

func (m *MemoryStore) AcknowledgeObservation(_ context.Context, householdID, id int64, at time.Time) (dom.Observation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.obs[id]
	if !ok || o.HouseholdID != householdID {
		return dom.Observation{}, ErrNotFound
	}
	if o.AcknowledgedAt == nil {
		o.AcknowledgedAt = &at
		m.obs[id] = o
	}
	return o, nil
}

func (m *MemoryStore) ListInventory(_ context.Context, householdID int64) ([]dom.InventoryItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedByID(m.inventory, func(it dom.InventoryItem) bool {
		return it.HouseholdID == householdID && it.Enabled
	}), nil
}

func (m *MemoryStore) CreateInventoryItem(_ context.Context, it dom.InventoryItem) (dom.InventoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it.ID = m.nextID()
	it.Enabled = true
	it.UpdatedAt = m.now()
	m.inventory[it.ID] = it
	return it, nil
}

func (m *MemoryStore) UpdateInventoryItem(_ context.Context, householdID, id int64, p dom.InventoryPatch) (dom.InventoryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.inventory[id]
	if !ok || it.HouseholdID != householdID {
		return dom.InventoryItem{}, ErrNotFound
	}
	if p.Label != nil {
		it.Label = *p.Label
	}
	if p.RangeMin != nil {
		it.RangeMin = *p.RangeMin
	}
	if p.RangeMax != nil {
		it.RangeMax = *p.RangeMax
	}
	if p.AlertDays != nil {
		v := *p.AlertDays
		it.AlertDays = &v
	}
	if p.LastBought != nil {
		v := *p.LastBought
		it.LastBought = &v
	}
	if p.StockLevel != nil {
		it.StockLevel = *p.StockLevel
	}
	if p.Enabled != nil {
		it.Enabled = *p.Enabled
	}
	it.UpdatedAt = m.now()
	m.inventory[id] = it
	return it, nil
}

func (m *MemoryStore) ListIncidents(ctx context.Context, householdID int64, openOnly bool) ([]dom.Incident, error) {
	return m.Incidents().List(ctx, householdID, openOnly)
}

// ---- incidents ----

// Incidents returns the store's IncidentRepo view.
func (m *MemoryStore) Incidents() IncidentRepo { return memIncidents{m} }

type memIncidents struct{ m *MemoryStore }

func copyIncident(inc dom.Incident) dom.Incident {
	inc.Photos = slices.Clone(inc.Photos)
	inc.Updates = slices.Clone(inc.Updates)
	return inc
}

func (r memIncidents) Create(_ context.Context, inc dom.Incident) (dom.Incident, error) {
	m := r.m
	m.mu.Lock()
	defer m.mu.Unlock()
	inc = copyIncident(inc)
	inc.ID = m.nextID()
	inc.CreatedAt = m.now()
	inc.UpdatedAt = inc.CreatedAt
	inc.Updates = nil
	m.incidents[inc.ID] = inc
	return copyIncident(inc), nil
}

func (r memIncidents) Get(_ context.Context, householdID, id int64) (dom.Incident, error) {
	m := r.m
	m.mu.RLock()
	defer m.mu.RUnlock()
	inc, ok := m.incidents[id]
	if !ok || inc.HouseholdID != householdID {
		return dom.Incident{}, ErrNotFound
	}
	return copyIncident(inc), nil
}

func (r memIncidents) List(_ context.Context, householdID int64, openOnly bool) ([]dom.Incident, error) {
	m := r.m
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := sortedByID(m.incidents, func(inc dom.Incident) bool {
		return inc.HouseholdID == householdID && (!openOnly || inc.Open())
	})
	slices.Reverse(out)
	for i := range out {
		out[i] = copyIncident(out[i])
	}
	return out, nil
}

func (r memIncidents) AppendUpdate(_ context.Context, householdID, incidentID int64, u dom.IncidentUpdate) (dom.Incident, error) {
	m := r.m
	m.mu.Lock()
	defer m.mu.Unlock()
	inc, ok := m.incidents[incidentID]
	if !ok || inc.HouseholdID != householdID {
		return dom.Incident{}, ErrNotFound
	}
	if err := checkTransition(inc.Status, u.Status); err != nil {
		return dom.Incident{}, err
	}
	inc = copyIncident(inc)
	u.ID = m.nextID()
	u.IncidentID = incidentID
	u.Photos = slices.Clone(u.Photos)
	if u.CreatedAt.IsZero() {
		u.CreatedAt = m.now()
	}
	inc.Updates = append(inc.Updates, u)
	inc.Photos = append(inc.Photos, u.Photos...)
	if u.Status != nil {
		inc.Status = *u.Status
	}
	inc.UpdatedAt = u.CreatedAt
	m.incidents[incidentID] = inc
	return copyIncident(inc), nil
}

// ---- users ----

// Users returns the store's UserRepo view.
func (m *MemoryStore) Users() UserRepo { return memUsers{m} }

type memUsers struct{ m *MemoryStore }

func (r memUsers) GetByUsername(_ context.Context, username string) (dom.User, error) {
	m := r.m
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return dom.User{}, ErrNotFound
}

func (r memUsers) GetByID(_ context.Context, id int64) (dom.User, error) {
	m := r.m
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return dom.User{}, ErrNotFound
	}
	return u, nil
}

func (r memUsers) Create(_ context.Context, householdID int64, username, passwordHash string) (dom.User, error) {
	m := r.m
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Username, username) {
			return dom.User{}, ErrDuplicate
		}
	}
	u := dom.User{ID: m.nextID(), HouseholdID: householdID, Username: username, PasswordHash: passwordHash, CreatedAt: m.now()}
	m.users[u.ID] = u
	return u, nil
}
