package models

import "time"

type Department struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

type Volunteer struct {
	ID           int       `json:"id" db:"id"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	Gender       string    `json:"gender" db:"gender"`
	DateOfBirth  time.Time `json:"date_of_birth" db:"date_of_birth"`
	Email        string    `json:"email" db:"email"`
	Phone        string    `json:"phone" db:"phone"`
	DepartmentID int       `json:"department_id" db:"department_id"`
	SportID      *int      `json:"sport_id,omitempty" db:"sport_id"`
	UserID       *int      `json:"user_id,omitempty" db:"user_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	Department *Department `json:"department,omitempty" db:"-"`
	Sport      *Sport      `json:"sport,omitempty" db:"-"`
}
