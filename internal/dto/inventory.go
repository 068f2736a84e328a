package dto

import "time"

type InventoryCreateRequest struct {
	Label      string `json:"label" binding:"required,min=1,max=120"`
	RangeMin   int    `json:"range_min"`
	RangeMax   int    `json:"range_max" binding:"required"`
	AlertDays  *int   `json:"alert_days"`
	LastBought Date   `json:"last_bought"`
	StockLevel string `json:"stock_level"`
}

// InventoryPatchRequest is a partial update; bought=true records a purchase
// today.
type InventoryPatchRequest struct {
	Label      *string `json:"label"`
	RangeMin   *int    `json:"range_min"`
	RangeMax   *int    `json:"range_max"`
	AlertDays  *int    `json:"alert_days"`
	LastBought *Date   `json:"last_bought"`
	StockLevel *string `json:"stock_level"`
	Enabled    *bool   `json:"enabled"`
	Bought     bool    `json:"bought"`
}

type InventoryResponse struct {
	ID         int64      `json:"id"`
	Label      string     `json:"label"`
	RangeMin   int        `json:"range_min"`
	RangeMax   int        `json:"range_max"`
	AlertDays  *int       `json:"alert_days"`
	LastBought *time.Time `json:"last_bought"`
	StockLevel string     `json:"stock_level"`
	Enabled    bool       `json:"enabled"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
