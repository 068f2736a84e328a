package service

import (
	"context"
	"slices"
	"strings"
	"time"

	dom "nekocare/internal/domain"
	"nekocare/internal/realtime"
	"nekocare/internal/repo"
)

// Layouts a household can pick for its home screen.
var Layouts = []string{"default", "compact", "cards", "timeline"}

// ThemeService sells cosmetic themes for footprint points.
type ThemeService struct {
	repo   repo.ThemeRepo
	care   repo.CareRepo
	notify notifier
	now    func() time.Time
}

func NewThemeService(r repo.ThemeRepo, care repo.CareRepo, d Deps) *ThemeService {
	return &ThemeService{repo: r, care: care, notify: d.notifier(), now: d.clock()}
}

// Shop is the theme catalog as seen by one household.
type Shop struct {
	Themes   []dom.Theme
	Owned    []string
	Settings dom.Settings
}

func (s *ThemeService) Shop(ctx context.Context, householdID int64) (Shop, error) {
	themes, err := s.repo.ListThemes(ctx)
	if err != nil {
		return Shop{}, err
	}
	owned, err := s.repo.OwnedThemes(ctx, householdID)
	if err != nil {
		return Shop{}, err
	}
	st, err := s.care.GetSettings(ctx, householdID)
	if err != nil {
		return Shop{}, err
	}
	return Shop{Themes: themes, Owned: owned, Settings: st}, nil
}

// Purchase buys and activates a theme.
func (s *ThemeService) Purchase(ctx context.Context, householdID int64, themeID string) (dom.Settings, error) {
	themeID = strings.TrimSpace(themeID)
	if themeID == "" {
		return dom.Settings{}, invalid("theme id is required")
	}
	st, err := s.repo.PurchaseTheme(ctx, householdID, themeID)
	if err != nil {
		return dom.Settings{}, mapRepoErr(err)
	}
	s.notify.changed(ctx, householdID, realtime.TableSettings, realtime.OpUpdate, householdID, st, s.now())
	return st, nil
}

func (s *ThemeService) SetLayout(ctx context.Context, householdID int64, layout string) (dom.Settings, error) {
	layout = strings.TrimSpace(layout)
	if !slices.Contains(Layouts, layout) {
		return dom.Settings{}, invalid("unknown layout %q", layout)
	}
	st, err := s.repo.SetLayout(ctx, householdID, layout)
	if err != nil {
		return dom.Settings{}, mapRepoErr(err)
	}
	s.notify.changed(ctx, householdID, realtime.TableSettings, realtime.OpUpdate, householdID, st, s.now())
	return st, nil
}
