package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"nekocare/internal/care"
	dom "nekocare/internal/domain"
	"nekocare/internal/realtime"
	"nekocare/internal/repo"
)

var jst = time.FixedZone("JST", 9*60*60)

type recorder struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (r *recorder) Publish(_ context.Context, ev realtime.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) tables() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, ev := range r.events {
		out = append(out, ev.Table+":"+string(ev.Op))
	}
	return out
}

type memCache struct {
	mu          sync.Mutex
	snaps       map[int64]care.Snapshot
	versions    map[int64]int64
	gets        int
	invalidated int
}

func newMemCache() *memCache {
	return &memCache{snaps: make(map[int64]care.Snapshot), versions: make(map[int64]int64)}
}

func (c *memCache) Get(_ context.Context, id int64) (care.Snapshot, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	s, ok := c.snaps[id]
	return s, ok, nil
}

func (c *memCache) Version(_ context.Context, id int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[id], nil
}

func (c *memCache) Set(_ context.Context, s care.Snapshot, version int64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.versions[s.HouseholdID] != version {
		return false, nil
	}
	c.snaps[s.HouseholdID] = s
	return true, nil
}

func (c *memCache) Invalidate(_ context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated++
	c.versions[id]++
	delete(c.snaps, id)
	return nil
}

type fixture struct {
	store *repo.MemoryStore
	hid   int64
	cat   dom.Cat
	now   time.Time
	pub   *recorder
	cache *memCache
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store: repo.NewMemoryStore(),
		now:   time.Date(2025, 3, 10, 13, 0, 0, 0, jst),
		pub:   &recorder{},
		cache: newMemCache(),
	}
	f.store.SetClock(func() time.Time { return f.now })
	ctx := context.Background()
	h, err := f.store.CreateHousehold(ctx, "home", 4)
	require.NoError(t, err)
	f.hid = h.ID
	f.cat, err = f.store.AddCat(ctx, dom.Cat{HouseholdID: h.ID, Name: "Mugi"})
	require.NoError(t, err)
	return f
}

func (f *fixture) deps() Deps {
	return Deps{
		Cache:     f.cache,
		Publisher: f.pub,
		Log:       zap.NewNop(),
		Location:  jst,
		Now:       func() time.Time { return f.now },
	}
}

func (f *fixture) careService() *CareService {
	return NewCareService(f.store, f.store, care.DefaultThresholds(), 1, f.deps())
}
