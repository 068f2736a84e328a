package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"
	"time"

	"nekocare/internal/care"
	dom "nekocare/internal/domain"
	"nekocare/internal/realtime"
	"nekocare/internal/repo"
	"nekocare/internal/storage"
)

// PhotoStore persists uploaded photos. *storage.Store implements it.
type PhotoStore interface {
	Put(ctx context.Context, path string, r io.Reader) (string, error)
}

// URLSigner turns object paths into public URLs. *storage.URLSigner
// implements it.
type URLSigner interface {
	PublicURL(path string, opts storage.ImageOptions) (string, error)
}

var photoExts = []string{"jpg", "jpeg", "png", "webp", "heic"}

// IncidentService manages incident reports and their timelines.
type IncidentService struct {
	repo   repo.IncidentRepo
	cats   care.CareDataRepository
	photos PhotoStore
	signer URLSigner
	notify notifier
	now    func() time.Time
}

func NewIncidentService(r repo.IncidentRepo, cats care.CareDataRepository, photos PhotoStore, signer URLSigner, d Deps) *IncidentService {
	return &IncidentService{repo: r, cats: cats, photos: photos, signer: signer, notify: d.notifier(), now: d.clock()}
}

// NewIncident is the input of Create.
type NewIncident struct {
	CatID  int64
	Type   dom.IncidentType
	Note   string
	Photos []string
	// Status defaults to active; any alias accepted by care.ParseStatus works.
	Status string
}

func (s *IncidentService) checkPhotos(householdID int64, photos []string) error {
	prefix := fmt.Sprintf("households/%d/", householdID)
	for _, p := range photos {
		if !strings.HasPrefix(p, prefix) || strings.Contains(p, "..") {
			return invalid("photo %q does not belong to this household", p)
		}
	}
	return nil
}

func (s *IncidentService) Create(ctx context.Context, householdID, userID int64, in NewIncident) (dom.Incident, error) {
	if !in.Type.Valid() {
		return dom.Incident{}, invalid("unknown incident type %q", in.Type)
	}
	status := dom.IncidentActive
	if in.Status != "" {
		st, ok := care.ParseStatus(in.Status)
		if !ok || st == dom.IncidentResolved {
			return dom.Incident{}, invalid("invalid initial status %q", in.Status)
		}
		status = st
	}
	cats, err := s.cats.ListCats(ctx, householdID)
	if err != nil {
		return dom.Incident{}, err
	}
	if !hasCat(cats, in.CatID) {
		return dom.Incident{}, invalid("unknown cat %d", in.CatID)
	}
	if err := s.checkPhotos(householdID, in.Photos); err != nil {
		return dom.Incident{}, err
	}

	inc, err := s.repo.Create(ctx, dom.Incident{
		HouseholdID: householdID,
		CatID:       in.CatID,
		Type:        in.Type,
		Note:        strings.TrimSpace(in.Note),
		Photos:      in.Photos,
		Status:      status,
		CreatedBy:   userID,
	})
	if err != nil {
		return dom.Incident{}, err
	}
	s.notify.changed(ctx, householdID, realtime.TableIncidents, realtime.OpInsert, inc.ID, inc, s.now())
	return inc, nil
}

func (s *IncidentService) Get(ctx context.Context, householdID, id int64) (dom.Incident, error) {
	inc, err := s.repo.Get(ctx, householdID, id)
	return inc, mapRepoErr(err)
}

func (s *IncidentService) List(ctx context.Context, householdID int64, openOnly bool) ([]dom.Incident, error) {
	return s.repo.List(ctx, householdID, openOnly)
}

// IncidentChange is one timeline entry to append.
type IncidentChange struct {
	Note   string
	Photos []string
	// Status, when set, moves the incident; aliases are accepted.
	Status string
}

// AddUpdate appends to the incident timeline. A status change must be allowed
// by care.CanTransition; resolved incidents accept notes but no status change.
func (s *IncidentService) AddUpdate(ctx context.Context, householdID, userID, incidentID int64, ch IncidentChange) (dom.Incident, error) {
	note := strings.TrimSpace(ch.Note)
	inc, err := s.repo.Get(ctx, householdID, incidentID)
	if err != nil {
		return dom.Incident{}, mapRepoErr(err)
	}

	var status *dom.IncidentStatus
	if ch.Status != "" {
		st, ok := care.ParseStatus(ch.Status)
		if !ok {
			return dom.Incident{}, invalid("unknown status %q", ch.Status)
		}
		if st != inc.Status {
			if !care.CanTransition(inc.Status, st) {
				return dom.Incident{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, inc.Status, st)
			}
			status = &st
		}
	}
	if note == "" && len(ch.Photos) == 0 && status == nil {
		return dom.Incident{}, invalid("update needs a note, photos or a status change")
	}
	if err := s.checkPhotos(householdID, ch.Photos); err != nil {
		return dom.Incident{}, err
	}

	out, err := s.repo.AppendUpdate(ctx, householdID, incidentID, dom.IncidentUpdate{
		Note:      note,
		Photos:    ch.Photos,
		Status:    status,
		CreatedBy: userID,
		CreatedAt: s.now(),
	})
	if err != nil {
		return dom.Incident{}, mapRepoErr(err)
	}
	s.notify.changed(ctx, householdID, realtime.TableIncidents, realtime.OpUpdate, out.ID, out, s.now())
	return out, nil
}

// UploadPhoto stores a photo for the household and returns its object path.
func (s *IncidentService) UploadPhoto(ctx context.Context, householdID int64, filename string, r io.Reader) (string, error) {
	if s.photos == nil {
		return "", invalid("photo uploads are disabled")
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if !slices.Contains(photoExts, ext) {
		return "", invalid("unsupported photo type %q", ext)
	}
	return s.photos.Put(ctx, storage.ObjectPath(householdID, ext), r)
}

// PhotoURL signs a public URL for a stored photo.
func (s *IncidentService) PhotoURL(p string, opts storage.ImageOptions) (string, error) {
	if s.signer == nil {
		return p, nil
	}
	return s.signer.PublicURL(p, opts)
}
