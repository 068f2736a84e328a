package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nekocare/internal/care"
	dom "nekocare/internal/domain"
	"nekocare/internal/repo"
	"nekocare/internal/storage"
)

func (f *fixture) incidentService(t *testing.T) *IncidentService {
	t.Helper()
	signer := storage.NewURLSigner("test-key", "http://localhost/media", time.Hour)
	return NewIncidentService(f.store.Incidents(), f.store, storage.NewStore(t.TempDir()), signer, f.deps())
}

func TestIncidentService_Lifecycle(t *testing.T) {
	f := newFixture(t)
	svc := f.incidentService(t)
	ctx := context.Background()

	inc, err := svc.Create(ctx, f.hid, 1, NewIncident{CatID: f.cat.ID, Type: dom.IncidentVomit, Note: " 朝に吐いた "})
	require.NoError(t, err)
	assert.Equal(t, dom.IncidentActive, inc.Status)
	assert.Equal(t, "朝に吐いた", inc.Note)

	feed, err := f.careService().Feed(ctx, f.hid, 0, nil)
	require.NoError(t, err)
	require.NotEmpty(t, feed.AllItems)
	assert.Equal(t, care.KindIncident, feed.AllItems[0].Kind)
	assert.Equal(t, care.SeverityIncident, feed.AllItems[0].Severity)

	inc, err = svc.AddUpdate(ctx, f.hid, 1, inc.ID, IncidentChange{Note: "様子を見る", Status: "watching"})
	require.NoError(t, err)
	assert.Equal(t, dom.IncidentMonitoring, inc.Status)

	inc, err = svc.AddUpdate(ctx, f.hid, 1, inc.ID, IncidentChange{Status: "resolved"})
	require.NoError(t, err)
	assert.Equal(t, dom.IncidentResolved, inc.Status)
	assert.Len(t, inc.Updates, 2)

	_, err = svc.AddUpdate(ctx, f.hid, 1, inc.ID, IncidentChange{Status: "active"})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	inc, err = svc.AddUpdate(ctx, f.hid, 1, inc.ID, IncidentChange{Note: "後日談"})
	require.NoError(t, err)
	assert.Equal(t, dom.IncidentResolved, inc.Status)

	open, err := svc.List(ctx, f.hid, true)
	require.NoError(t, err)
	assert.Empty(t, open)

	feed, err = f.careService().Feed(ctx, f.hid, 0, nil)
	require.NoError(t, err)
	for _, it := range feed.AllItems {
		assert.NotEqual(t, care.KindIncident, it.Kind)
	}
	assert.Contains(t, f.pub.tables(), "incidents:update")
}

func TestIncidentService_Validation(t *testing.T) {
	f := newFixture(t)
	svc := f.incidentService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, f.hid, 1, NewIncident{CatID: f.cat.ID, Type: "sneeze"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Create(ctx, f.hid, 1, NewIncident{CatID: 999, Type: dom.IncidentVomit})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Create(ctx, f.hid, 1, NewIncident{CatID: f.cat.ID, Type: dom.IncidentVomit, Status: "resolved"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Create(ctx, f.hid, 1, NewIncident{CatID: f.cat.ID, Type: dom.IncidentVomit, Photos: []string{"households/999/incidents/a.jpg"}})
	assert.ErrorIs(t, err, ErrValidation)

	inc, err := svc.Create(ctx, f.hid, 1, NewIncident{CatID: f.cat.ID, Type: dom.IncidentInjury, Status: "hospital"})
	require.NoError(t, err)
	assert.Equal(t, dom.IncidentActive, inc.Status)

	_, err = svc.AddUpdate(ctx, f.hid, 1, inc.ID, IncidentChange{})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.AddUpdate(ctx, f.hid, 1, inc.ID, IncidentChange{Status: "gone"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.AddUpdate(ctx, f.hid, 1, 999, IncidentChange{Note: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Get(ctx, f.hid, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIncidentService_Photos(t *testing.T) {
	f := newFixture(t)
	svc := f.incidentService(t)
	ctx := context.Background()

	_, err := svc.UploadPhoto(ctx, f.hid, "vomit.gif", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrValidation)

	p, err := svc.UploadPhoto(ctx, f.hid, "IMG_001.JPG", strings.NewReader("img"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p, "households/"))
	assert.True(t, strings.HasSuffix(p, ".jpg"))

	inc, err := svc.Create(ctx, f.hid, 1, NewIncident{CatID: f.cat.ID, Type: dom.IncidentVomit, Photos: []string{p}})
	require.NoError(t, err)
	assert.Equal(t, []string{p}, inc.Photos)

	u, err := svc.PhotoURL(p, storage.ImageOptions{Width: 200})
	require.NoError(t, err)
	assert.Contains(t, u, "token=")
}

// resolvingRepo resolves the incident right after AddUpdate has read it, as a
// concurrent request would.
type resolvingRepo struct {
	repo.IncidentRepo
	once sync.Once
}

func (r *resolvingRepo) Get(ctx context.Context, householdID, id int64) (dom.Incident, error) {
	inc, err := r.IncidentRepo.Get(ctx, householdID, id)
	if err != nil {
		return inc, err
	}
	r.once.Do(func() {
		resolved := dom.IncidentResolved
		_, err = r.IncidentRepo.AppendUpdate(ctx, householdID, id, dom.IncidentUpdate{Status: &resolved})
	})
	return inc, err
}

func TestIncidentService_ResolvedStaysTerminalUnderRace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inc, err := f.incidentService(t).Create(ctx, f.hid, 1, NewIncident{CatID: f.cat.ID, Type: dom.IncidentVomit})
	require.NoError(t, err)

	racing := NewIncidentService(&resolvingRepo{IncidentRepo: f.store.Incidents()}, f.store, nil, nil, f.deps())
	_, err = racing.AddUpdate(ctx, f.hid, 1, inc.ID, IncidentChange{Status: "monitoring"})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	got, err := f.store.Incidents().Get(ctx, f.hid, inc.ID)
	require.NoError(t, err)
	assert.Equal(t, dom.IncidentResolved, got.Status)
	assert.Len(t, got.Updates, 1)
}
