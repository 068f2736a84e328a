package domain

import "time"

// Theme is a cosmetic layout/theme bought with footprint points.
type Theme struct {
	ID    string
	Name  string
	Price int
}

type ThemePurchase struct {
	HouseholdID int64
	ThemeID     string
	PurchasedAt time.Time
}
