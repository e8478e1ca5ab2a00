package models

import "time"

// UserRole matches the role ENUM in the users table.
type UserRole string

const (
	RoleAdmin          UserRole = "admin"
	RoleCommunityAdmin UserRole = "community_admin"
	RoleSportsAdmin    UserRole = "sports_admin"
	RoleVolunteerAdmin UserRole = "volunteer_admin"
	RoleVolunteer      UserRole = "volunteer"
	RoleUser           UserRole = "user"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleCommunityAdmin, RoleSportsAdmin, RoleVolunteerAdmin, RoleVolunteer, RoleUser:
		return true
	}
	return false
}

type User struct {
	ID           int       `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        *string   `json:"email,omitempty" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         UserRole  `json:"role" db:"role"`
	CommunityID  *int      `json:"community_id,omitempty" db:"community_id"`
	SportID      *int      `json:"sport_id,omitempty" db:"sport_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	Community *Community `json:"community,omitempty" db:"-"`
	Sport     *Sport     `json:"sport,omitempty" db:"-"`
}
