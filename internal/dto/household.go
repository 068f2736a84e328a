package dto

import "time"

type CatRequest struct {
	Name      string `json:"name" binding:"required,min=1,max=60"`
	PhotoPath string `json:"photo_path"`
}

type CatResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	PhotoPath string    `json:"photo_path,omitempty"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

type SettingsResponse struct {
	DayStartHour  int    `json:"day_start_hour"`
	ActiveThemeID string `json:"active_theme_id"`
	Layout        string `json:"layout"`
	Points        int    `json:"points"`
}

type DayStartRequest struct {
	Hour *int `json:"hour" binding:"required,min=0,max=23"`
}

type LayoutRequest struct {
	Layout string `json:"layout" binding:"required"`
}

type ThemeResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int    `json:"price"`
	Owned bool   `json:"owned"`
}

type ShopResponse struct {
	Themes   []ThemeResponse  `json:"themes"`
	Settings SettingsResponse `json:"settings"`
}
