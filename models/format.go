package models

// TournamentFormat describes how one sport's competition is run
// (knockout, round robin, pools then finals, ...).
type TournamentFormat struct {
	ID          int     `json:"id" db:"id"`
	SportID     int     `json:"sport_id" db:"sport_id"`
	Name        string  `json:"name" db:"name"`
	Description *string `json:"description,omitempty" db:"description"`
	Rounds      *int    `json:"rounds,omitempty" db:"rounds"`

	Sport *Sport `json:"sport,omitempty" db:"-"`
}
