package dto

import "time"

// OverlayEntry is one optimistic value a client holds for a feed item.
// Phase is "pending" (default), "confirmed" or "reverting".
type OverlayEntry struct {
	Key   string    `json:"key" binding:"required"`
	Value string    `json:"value"`
	Phase string    `json:"phase"`
	Since time.Time `json:"since"`
}

// FeedRequest is the body of POST /care/feed.
type FeedRequest struct {
	CatID   int64          `json:"cat_id"`
	Overlay []OverlayEntry `json:"overlay" binding:"dive"`
}

type FeedResponse struct {
	BusinessDate       string         `json:"business_date"`
	Slot               string         `json:"slot"`
	Progress           float64        `json:"progress"`
	TotalCareTasks     int            `json:"total_care_tasks"`
	CompletedCareTasks int            `json:"completed_care_tasks"`
	CareItems          []ItemResponse `json:"care_items"`
	AlertItems         []ItemResponse `json:"alert_items"`
	AllItems           []ItemResponse `json:"all_items"`
	// Overlay lists the submitted entries still awaiting the backend.
	Overlay []OverlayEntry `json:"overlay"`
	Cats    []CatResponse  `json:"cats"`
}

// ItemResponse is one feed row. Payload is one of TaskPayload,
// NoticePayload, InventoryPayload or IncidentPayload depending on Kind.
type ItemResponse struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	Title    string `json:"title"`
	Body     string `json:"body,omitempty"`
	Severity int    `json:"severity"`
	Urgent   bool   `json:"urgent"`
	CatID    *int64 `json:"cat_id,omitempty"`
	Payload  any    `json:"payload"`
}

type TaskPayload struct {
	DefID      int64  `json:"def_id"`
	Slot       string `json:"slot,omitempty"`
	Frequency  string `json:"frequency"`
	Count      int    `json:"count"`
	Goal       int    `json:"goal"`
	LogType    string `json:"log_type"`
	Optimistic bool   `json:"optimistic"`
}

type NoticePayload struct {
	DefID         int64    `json:"def_id"`
	ObservationID int64    `json:"observation_id,omitempty"`
	Value         string   `json:"value,omitempty"`
	Choices       []string `json:"choices"`
	Unrecorded    bool     `json:"unrecorded"`
	Optimistic    bool     `json:"optimistic"`
}

type InventoryPayload struct {
	ItemID     int64      `json:"item_id"`
	DaysSince  int        `json:"days_since"`
	Threshold  int        `json:"threshold"`
	StockLevel string     `json:"stock_level"`
	LastBought *time.Time `json:"last_bought"`
}

type IncidentPayload struct {
	IncidentID int64     `json:"incident_id"`
	Type       string    `json:"type"`
	Status     string    `json:"status"`
	Photos     []string  `json:"photos"`
	Updates    int       `json:"updates"`
	CreatedAt  time.Time `json:"created_at"`
}

// AddCareLogRequest completes a task occurrence. Type is "<def id>" or
// "<def id>:<slot>".
type AddCareLogRequest struct {
	Type  string `json:"type" binding:"required"`
	CatID *int64 `json:"cat_id"`
}

type CareLogResponse struct {
	ID     int64     `json:"id"`
	Type   string    `json:"type"`
	CatID  *int64    `json:"cat_id"`
	DoneBy int64     `json:"done_by"`
	DoneAt time.Time `json:"done_at"`
}

// TaskDefRequest creates or replaces a task definition. Omitting meal_slots
// derives them from frequency; an empty list makes the task goal based.
type TaskDefRequest struct {
	Title          string   `json:"title" binding:"required,min=1,max=120"`
	Icon           string   `json:"icon" binding:"max=32"`
	Frequency      string   `json:"frequency" binding:"required"`
	MealSlots      []string `json:"meal_slots"`
	FrequencyCount int      `json:"frequency_count" binding:"min=0"`
	PerCat         bool     `json:"per_cat"`
	TargetCatIDs   []int64  `json:"target_cat_ids"`
	SortOrder      int      `json:"sort_order"`
}

type TaskDefResponse struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Icon           string    `json:"icon"`
	Frequency      string    `json:"frequency"`
	MealSlots      []string  `json:"meal_slots"`
	FrequencyCount int       `json:"frequency_count"`
	PerCat         bool      `json:"per_cat"`
	TargetCatIDs   []int64   `json:"target_cat_ids"`
	SortOrder      int       `json:"sort_order"`
	CreatedAt      time.Time `json:"created_at"`
}

type NoticeDefRequest struct {
	Title        string   `json:"title" binding:"required,min=1,max=120"`
	Category     string   `json:"category"`
	InputType    string   `json:"input_type"`
	Choices      []string `json:"choices"`
	NormalValues []string `json:"normal_values"`
	SortOrder    int      `json:"sort_order"`
}

type NoticeDefResponse struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Kind         string    `json:"kind"`
	Category     string    `json:"category"`
	InputType    string    `json:"input_type"`
	Choices      []string  `json:"choices"`
	NormalValues []string  `json:"normal_values"`
	SortOrder    int       `json:"sort_order"`
	CreatedAt    time.Time `json:"created_at"`
}

type ObservationRequest struct {
	CatID    int64  `json:"cat_id" binding:"required"`
	NoticeID int64  `json:"notice_id" binding:"required"`
	Value    string `json:"value" binding:"required"`
}

type ObservationResponse struct {
	ID             int64      `json:"id"`
	CatID          int64      `json:"cat_id"`
	NoticeID       int64      `json:"notice_id"`
	Value          string     `json:"value"`
	RecordedBy     int64      `json:"recorded_by"`
	RecordedAt     time.Time  `json:"recorded_at"`
	AcknowledgedAt *time.Time `json:"acknowledged_at"`
}
