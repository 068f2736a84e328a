package dto

import "time"

type IncidentCreateRequest struct {
	CatID  int64    `json:"cat_id" binding:"required"`
	Type   string   `json:"type" binding:"required"`
	Note   string   `json:"note" binding:"max=2000"`
	Photos []string `json:"photos"`
	Status string   `json:"status"`
}

type IncidentUpdateRequest struct {
	Note   string   `json:"note" binding:"max=2000"`
	Photos []string `json:"photos"`
	Status string   `json:"status"`
}

type PhotoResponse struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

type IncidentUpdateResponse struct {
	ID        int64           `json:"id"`
	Note      string          `json:"note"`
	Photos    []PhotoResponse `json:"photos"`
	Status    *string         `json:"status"`
	CreatedBy int64           `json:"created_by"`
	CreatedAt time.Time       `json:"created_at"`
}

type IncidentResponse struct {
	ID          int64                    `json:"id"`
	CatID       int64                    `json:"cat_id"`
	Type        string                   `json:"type"`
	Note        string                   `json:"note"`
	Photos      []PhotoResponse          `json:"photos"`
	Status      string                   `json:"status"`
	StatusLabel string                   `json:"status_label"`
	CreatedBy   int64                    `json:"created_by"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
	Updates     []IncidentUpdateResponse `json:"updates"`
}

type ListIncidentsResponse struct {
	Items []IncidentResponse `json:"items"`
}
