package models

// Convenor is the named contact responsible for one sport.
type Convenor struct {
	ID      int     `json:"id" db:"id"`
	Name    string  `json:"name" db:"name"`
	Phone   string  `json:"phone" db:"phone"`
	Email   *string `json:"email,omitempty" db:"email"`
	SportID int     `json:"sport_id" db:"sport_id"`

	Sport *Sport `json:"sport,omitempty" db:"-"`
}
