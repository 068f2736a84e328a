package service

import (
	"context"
	"strings"
	"time"

	dom "nekocare/internal/domain"
	"nekocare/internal/realtime"
	"nekocare/internal/repo"
)

// HouseholdService manages cats and household settings.
type HouseholdService struct {
	repo   repo.HouseholdRepo
	care   repo.CareRepo
	notify notifier
	now    func() time.Time
}

func NewHouseholdService(r repo.HouseholdRepo, care repo.CareRepo, d Deps) *HouseholdService {
	return &HouseholdService{repo: r, care: care, notify: d.notifier(), now: d.clock()}
}

func (s *HouseholdService) ListCats(ctx context.Context, householdID int64) ([]dom.Cat, error) {
	return s.care.ListCats(ctx, householdID)
}

func (s *HouseholdService) AddCat(ctx context.Context, householdID int64, name, photoPath string) (dom.Cat, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return dom.Cat{}, invalid("name is required")
	}
	cats, err := s.care.ListCats(ctx, householdID)
	if err != nil {
		return dom.Cat{}, err
	}
	c, err := s.repo.AddCat(ctx, dom.Cat{HouseholdID: householdID, Name: name, PhotoPath: photoPath, SortOrder: len(cats)})
	if err != nil {
		return dom.Cat{}, mapRepoErr(err)
	}
	s.notify.changed(ctx, householdID, realtime.TableCats, realtime.OpInsert, c.ID, c, s.now())
	return c, nil
}

func (s *HouseholdService) Settings(ctx context.Context, householdID int64) (dom.Settings, error) {
	return s.care.GetSettings(ctx, householdID)
}

// SetDayStartHour moves the business-day boundary of the household.
func (s *HouseholdService) SetDayStartHour(ctx context.Context, householdID int64, hour int) (dom.Settings, error) {
	if hour < 0 || hour > 23 {
		return dom.Settings{}, invalid("day start hour must be within 0..23")
	}
	st, err := s.repo.SetDayStartHour(ctx, householdID, hour)
	if err != nil {
		return dom.Settings{}, mapRepoErr(err)
	}
	s.notify.changed(ctx, householdID, realtime.TableSettings, realtime.OpUpdate, householdID, st, s.now())
	return st, nil
}
