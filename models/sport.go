package models

import "time"

// SportType matches the sport_type ENUM in the sports table.
type SportType string

const (
	SportTypeIndividual SportType = "individual"
	SportTypeTeam       SportType = "team"
)

func (t SportType) Valid() bool {
	return t == SportTypeIndividual || t == SportTypeTeam
}

// Sport is one node of the two-level taxonomy: a top-level category
// (ParentID nil) or a sub-sport under exactly one category.
type Sport struct {
	ID       int        `json:"id" db:"id"`
	Name     string     `json:"name" db:"name"`
	Type     SportType  `json:"type" db:"type"`
	ParentID *int       `json:"parent_id,omitempty" db:"parent_id"`
	Active   bool       `json:"active" db:"active"`
	Venue    *string    `json:"venue,omitempty" db:"venue"`
	Timings  *string    `json:"timings,omitempty" db:"timings"`
	Date     *time.Time `json:"date,omitempty" db:"event_date"`
	Gender   *string    `json:"gender,omitempty" db:"gender"`
	MinAge   *int       `json:"min_age,omitempty" db:"min_age"`
	MaxAge   *int       `json:"max_age,omitempty" db:"max_age"`

	// Embedded sports-admin credentials, distinct from the users table.
	AdminUsername     *string `json:"admin_username,omitempty" db:"admin_username"`
	AdminEmail        *string `json:"admin_email,omitempty" db:"admin_email"`
	AdminPasswordHash *string `json:"-" db:"admin_password_hash"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`

	Parent   *Sport  `json:"parent,omitempty" db:"-"`
	Children []Sport `json:"children,omitempty" db:"-"`

	// IDs of sports this one cannot be combined with. Edges are written
	// symmetrically but read in both directions regardless.
	IncompatibleSportIDs []int `json:"incompatible_sport_ids,omitempty" db:"-"`
}

// IsChild reports whether the sport sits under a parent category.
func (s *Sport) IsChild() bool {
	return s.ParentID != nil
}
