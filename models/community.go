package models

import "time"

type Community struct {
	ID            int     `json:"id" db:"id"`
	Name          string  `json:"name" db:"name"`
	Active        bool    `json:"active" db:"active"`
	ContactPerson string  `json:"contact_person" db:"contact_person"`
	Phone         string  `json:"phone" db:"phone"`
	Email         string  `json:"email" db:"email"`
	PasswordHash  *string `json:"-" db:"password_hash"`

	// Embedded community-admin credentials, distinct from the users table.
	AdminUsername     *string `json:"admin_username,omitempty" db:"admin_username"`
	AdminEmail        *string `json:"admin_email,omitempty" db:"admin_email"`
	AdminPasswordHash *string `json:"-" db:"admin_password_hash"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Contacts []CommunityContact `json:"contacts,omitempty" db:"-"`
}

type CommunityContact struct {
	ID          int     `json:"id" db:"id"`
	CommunityID int     `json:"community_id" db:"community_id"`
	Name        string  `json:"name" db:"name"`
	Phone       string  `json:"phone" db:"phone"`
	Email       *string `json:"email,omitempty" db:"email"`
	Role        *string `json:"role,omitempty" db:"role"`
}
