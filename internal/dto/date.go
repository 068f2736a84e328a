package dto

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Date parses a JSON calendar date as either date-only ("2006-01-02") or
// RFC3339. Only the date part is kept; In resolves it in a time zone.
type Date struct {
	t        *time.Time
	dateOnly bool
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil || strings.TrimSpace(*raw) == "" {
		d.t = nil
		return nil
	}
	s := strings.TrimSpace(*raw)
	layouts := []string{
		"2006-01-02",
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			d.t = &parsed
			d.dateOnly = layout == "2006-01-02"
			return nil
		}
	}
	return fmt.Errorf("date: use YYYY-MM-DD or an RFC3339 datetime")
}

// In returns midnight of the date in loc, or nil when unset. A datetime is
// first converted to loc.
func (d Date) In(loc *time.Location) *time.Time {
	if d.t == nil {
		return nil
	}
	t := *d.t
	if !d.dateOnly {
		t = t.In(loc)
	}
	y, m, day := t.Date()
	out := time.Date(y, m, day, 0, 0, 0, 0, loc)
	return &out
}

// FormatDate renders a business date.
func FormatDate(t time.Time) string { return t.Format("2006-01-02") }
