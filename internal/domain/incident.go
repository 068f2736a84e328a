package domain

import "time"

type IncidentType string

const (
	IncidentVomit    IncidentType = "vomit"
	IncidentDiarrhea IncidentType = "diarrhea"
	IncidentInjury   IncidentType = "injury"
	IncidentAppetite IncidentType = "appetite"
	IncidentEnergy   IncidentType = "energy"
	IncidentToilet   IncidentType = "toilet"
	IncidentOther    IncidentType = "other"
)

func (t IncidentType) Valid() bool {
	switch t {
	case IncidentVomit, IncidentDiarrhea, IncidentInjury, IncidentAppetite,
		IncidentEnergy, IncidentToilet, IncidentOther:
		return true
	}
	return false
}

// IncidentStatus is the canonical incident lifecycle state.
type IncidentStatus string

const (
	IncidentActive     IncidentStatus = "active"
	IncidentMonitoring IncidentStatus = "monitoring"
	IncidentResolved   IncidentStatus = "resolved"
)

// Incident is a user-initiated health or behavior concern report.
type Incident struct {
	ID          int64
	HouseholdID int64
	CatID       int64
	Type        IncidentType
	Note        string
	Photos      []string
	Status      IncidentStatus
	CreatedBy   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Updates     []IncidentUpdate
}

func (i Incident) Open() bool { return i.Status != IncidentResolved }

// IncidentUpdate is an append-only entry on an incident timeline. Status is
// set only when the update changes the incident status.
type IncidentUpdate struct {
	ID         int64
	IncidentID int64
	Note       string
	Photos     []string
	Status     *IncidentStatus
	CreatedBy  int64
	CreatedAt  time.Time
}
