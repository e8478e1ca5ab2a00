package models

import "time"

type CalendarEvent struct {
	ID       int       `json:"id" db:"id"`
	SportID  *int      `json:"sport_id,omitempty" db:"sport_id"`
	Title    string    `json:"title" db:"title"`
	Venue    *string   `json:"venue,omitempty" db:"venue"`
	StartsAt time.Time `json:"starts_at" db:"starts_at"`
	EndsAt   *time.Time `json:"ends_at,omitempty" db:"ends_at"`

	Sport *Sport `json:"sport,omitempty" db:"-"`
}
