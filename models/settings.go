package models

import "time"

// Settings is the single global settings row.
type Settings struct {
	ID         int        `json:"id" db:"id"`
	FreezeDate *time.Time `json:"freeze_date,omitempty" db:"freeze_date"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}

// FrozenAt reports whether self-service profile edits are blocked at the
// given instant: the freeze takes effect after end of day on FreezeDate.
func (s *Settings) FrozenAt(now time.Time) bool {
	if s == nil || s.FreezeDate == nil {
		return false
	}
	d := s.FreezeDate
	endOfDay := time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), d.Location())
	return now.After(endOfDay)
}
