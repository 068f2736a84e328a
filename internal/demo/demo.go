// Package demo seeds a household with sample cats, definitions and supplies.
package demo

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	dom "nekocare/internal/domain"
	"nekocare/internal/repo"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

type Seed struct {
	Household    string `yaml:"household"`
	DayStartHour int    `yaml:"day_start_hour"`
	Points       int    `yaml:"points"`
	User         struct {
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"user"`
	Cats []struct {
		Name      string `yaml:"name"`
		PhotoPath string `yaml:"photo_path"`
	} `yaml:"cats"`
	TaskDefs []struct {
		Title          string   `yaml:"title"`
		Icon           string   `yaml:"icon"`
		Frequency      string   `yaml:"frequency"`
		MealSlots      []string `yaml:"meal_slots"`
		FrequencyCount int      `yaml:"frequency_count"`
		PerCat         bool     `yaml:"per_cat"`
	} `yaml:"task_defs"`
	NoticeDefs []struct {
		Title        string   `yaml:"title"`
		Category     string   `yaml:"category"`
		InputType    string   `yaml:"input_type"`
		Choices      []string `yaml:"choices"`
		NormalValues []string `yaml:"normal_values"`
	} `yaml:"notice_defs"`
	Inventory []struct {
		Label         string `yaml:"label"`
		RangeMin      int    `yaml:"range_min"`
		RangeMax      int    `yaml:"range_max"`
		BoughtDaysAgo int    `yaml:"bought_days_ago"`
		StockLevel    string `yaml:"stock_level"`
	} `yaml:"inventory"`
	Themes []dom.Theme `yaml:"themes"`
}

// Parse decodes a seed document.
func Parse(data []byte) (Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Seed{}, fmt.Errorf("parse seed: %w", err)
	}
	if s.Household == "" || s.User.Username == "" {
		return Seed{}, fmt.Errorf("parse seed: household and user.username are required")
	}
	return s, nil
}

// Default returns the embedded sample data.
func Default() Seed {
	s, err := Parse(seedYAML)
	if err != nil {
		panic(err)
	}
	return s
}

// Target is where a seed is written.
type Target struct {
	Households repo.HouseholdRepo
	Care       repo.CareRepo
	Users      repo.UserRepo
	Points     repo.ThemeRepo
	// PutTheme registers catalog themes. Nil when the catalog is managed
	// elsewhere (Postgres seeds it in a migration).
	PutTheme func(dom.Theme)
}

// Memory targets a MemoryStore.
func Memory(m *repo.MemoryStore) Target {
	return Target{Households: m, Care: m, Users: m.Users(), Points: m, PutTheme: m.PutTheme}
}

// Result identifies what Apply created.
type Result struct {
	Household dom.Household
	User      dom.User
	Cats      []dom.Cat
}

// Apply writes s into t. Purchase dates are relative to now.
func (s Seed) Apply(ctx context.Context, t Target, now time.Time) (Result, error) {
	if t.PutTheme != nil {
		for _, th := range s.Themes {
			t.PutTheme(th)
		}
	}
	hh, err := t.Households.CreateHousehold(ctx, s.Household, s.DayStartHour)
	if err != nil {
		return Result{}, fmt.Errorf("household: %w", err)
	}
	res := Result{Household: hh}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.User.Password), bcrypt.DefaultCost)
	if err != nil {
		return Result{}, err
	}
	if res.User, err = t.Users.Create(ctx, hh.ID, s.User.Username, string(hash)); err != nil {
		return Result{}, fmt.Errorf("user: %w", err)
	}

	for i, c := range s.Cats {
		cat, err := t.Households.AddCat(ctx, dom.Cat{HouseholdID: hh.ID, Name: c.Name, PhotoPath: c.PhotoPath, SortOrder: i})
		if err != nil {
			return Result{}, fmt.Errorf("cat %s: %w", c.Name, err)
		}
		res.Cats = append(res.Cats, cat)
	}

	for i, d := range s.TaskDefs {
		def := dom.CareTaskDef{
			HouseholdID:    hh.ID,
			Title:          d.Title,
			Icon:           d.Icon,
			Frequency:      dom.Frequency(d.Frequency),
			FrequencyCount: d.FrequencyCount,
			PerCat:         d.PerCat,
			Enabled:        true,
			SortOrder:      i,
		}
		if d.MealSlots != nil {
			def.MealSlots = make([]dom.MealSlot, len(d.MealSlots))
			for j, sl := range d.MealSlots {
				def.MealSlots[j] = dom.MealSlot(sl)
			}
		}
		if _, err := t.Care.CreateTaskDef(ctx, def); err != nil {
			return Result{}, fmt.Errorf("task %s: %w", d.Title, err)
		}
	}

	for i, d := range s.NoticeDefs {
		if _, err := t.Care.CreateNoticeDef(ctx, dom.NoticeDef{
			HouseholdID:  hh.ID,
			Title:        d.Title,
			Kind:         dom.NoticeKind,
			Category:     dom.NoticeCategory(d.Category),
			InputType:    dom.InputType(d.InputType),
			Choices:      d.Choices,
			NormalValues: d.NormalValues,
			Enabled:      true,
			SortOrder:    i,
		}); err != nil {
			return Result{}, fmt.Errorf("notice %s: %w", d.Title, err)
		}
	}

	for _, it := range s.Inventory {
		bought := now.AddDate(0, 0, -it.BoughtDaysAgo)
		level := dom.StockLevel(it.StockLevel)
		if level == "" {
			level = dom.StockFull
		}
		if _, err := t.Care.CreateInventoryItem(ctx, dom.InventoryItem{
			HouseholdID: hh.ID,
			Label:       it.Label,
			RangeMin:    it.RangeMin,
			RangeMax:    it.RangeMax,
			LastBought:  &bought,
			StockLevel:  level,
			Enabled:     true,
		}); err != nil {
			return Result{}, fmt.Errorf("inventory %s: %w", it.Label, err)
		}
	}

	if s.Points > 0 {
		if err := t.Points.AddPoints(ctx, hh.ID, s.Points); err != nil {
			return Result{}, fmt.Errorf("points: %w", err)
		}
	}
	return res, nil
}
