package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/sportsfest/registration-system/models"
)

var (
	ErrVolunteerNotFound        = errors.New("volunteer not found")
	ErrVolunteerEmailConflict   = errors.New("volunteer with this email is already registered")
	ErrDepartmentNotFound       = errors.New("department not found")
	ErrDepartmentNameConflict   = errors.New("department name is already in use")
	ErrVolunteerSportInvalid    = errors.New("volunteer sport reference is invalid")
	ErrVolunteerDeptInvalid     = errors.New("volunteer department reference is invalid")
)

type VolunteerFilter struct {
	DepartmentID *int
	SportID      *int
}

type VolunteerRepository interface {
	Create(ctx context.Context, v *models.Volunteer) error
	GetByID(ctx context.Context, id int) (*models.Volunteer, error)
	GetByUserID(ctx context.Context, userID int) (*models.Volunteer, error)
	List(ctx context.Context, filter VolunteerFilter) ([]models.Volunteer, error)
	Update(ctx context.Context, v *models.Volunteer) error
	Delete(ctx context.Context, id int) error

	CreateDepartment(ctx context.Context, d *models.Department) error
	ListDepartments(ctx context.Context) ([]models.Department, error)
	DeleteDepartment(ctx context.Context, id int) error
}

type postgresVolunteerRepository struct {
	db *sql.DB
}

func NewPostgresVolunteerRepository(db *sql.DB) VolunteerRepository {
	return &postgresVolunteerRepository{db: db}
}

const volunteerColumns = `id, first_name, last_name, gender, date_of_birth, email, phone,
	department_id, sport_id, user_id, created_at`

func scanVolunteer(row interface{ Scan(...interface{}) error }) (*models.Volunteer, error) {
	var v models.Volunteer
	err := row.Scan(
		&v.ID,
		&v.FirstName,
		&v.LastName,
		&v.Gender,
		&v.DateOfBirth,
		&v.Email,
		&v.Phone,
		&v.DepartmentID,
		&v.SportID,
		&v.UserID,
		&v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *postgresVolunteerRepository) Create(ctx context.Context, v *models.Volunteer) error {
	query := `
		INSERT INTO volunteers (first_name, last_name, gender, date_of_birth, email, phone,
			department_id, sport_id, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		v.FirstName,
		v.LastName,
		v.Gender,
		v.DateOfBirth,
		v.Email,
		v.Phone,
		v.DepartmentID,
		v.SportID,
		v.UserID,
	).Scan(&v.ID, &v.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				return ErrVolunteerEmailConflict
			case "23503":
				switch pqErr.Constraint {
				case "volunteers_department_id_fkey":
					return ErrVolunteerDeptInvalid
				case "volunteers_sport_id_fkey":
					return ErrVolunteerSportInvalid
				}
			}
		}
		return fmt.Errorf("failed to create volunteer: %w", err)
	}
	return nil
}

func (r *postgresVolunteerRepository) GetByID(ctx context.Context, id int) (*models.Volunteer, error) {
	query := `SELECT ` + volunteerColumns + ` FROM volunteers WHERE id = $1`
	v, err := scanVolunteer(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVolunteerNotFound
		}
		return nil, err
	}
	return v, nil
}

func (r *postgresVolunteerRepository) GetByUserID(ctx context.Context, userID int) (*models.Volunteer, error) {
	query := `SELECT ` + volunteerColumns + ` FROM volunteers WHERE user_id = $1`
	v, err := scanVolunteer(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVolunteerNotFound
		}
		return nil, err
	}
	return v, nil
}

func (r *postgresVolunteerRepository) List(ctx context.Context, filter VolunteerFilter) ([]models.Volunteer, error) {
	query := `SELECT ` + volunteerColumns + ` FROM volunteers`
	args := make([]interface{}, 0, 2)
	where := ""
	appendCond := func(cond string, arg interface{}) {
		args = append(args, arg)
		if where == "" {
			where = " WHERE "
		} else {
			where += " AND "
		}
		where += fmt.Sprintf(cond, len(args))
	}
	if filter.DepartmentID != nil {
		appendCond("department_id = $%d", *filter.DepartmentID)
	}
	if filter.SportID != nil {
		appendCond("sport_id = $%d", *filter.SportID)
	}
	query += where + ` ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	volunteers := make([]models.Volunteer, 0)
	for rows.Next() {
		v, scanErr := scanVolunteer(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		volunteers = append(volunteers, *v)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return volunteers, nil
}

func (r *postgresVolunteerRepository) Update(ctx context.Context, v *models.Volunteer) error {
	query := `
		UPDATE volunteers
		SET first_name = $1, last_name = $2, gender = $3, date_of_birth = $4, email = $5,
			phone = $6, department_id = $7, sport_id = $8
		WHERE id = $9`

	result, err := r.db.ExecContext(ctx, query,
		v.FirstName,
		v.LastName,
		v.Gender,
		v.DateOfBirth,
		v.Email,
		v.Phone,
		v.DepartmentID,
		v.SportID,
		v.ID,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrVolunteerEmailConflict
		}
		return fmt.Errorf("failed to update volunteer: %w", err)
	}
	return checkAffectedRows(result, ErrVolunteerNotFound)
}

func (r *postgresVolunteerRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM volunteers WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete volunteer: %w", err)
	}
	return checkAffectedRows(result, ErrVolunteerNotFound)
}

func (r *postgresVolunteerRepository) CreateDepartment(ctx context.Context, d *models.Department) error {
	query := `INSERT INTO departments (name) VALUES ($1) RETURNING id`
	err := r.db.QueryRowContext(ctx, query, d.Name).Scan(&d.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrDepartmentNameConflict
		}
		return fmt.Errorf("failed to create department: %w", err)
	}
	return nil
}

func (r *postgresVolunteerRepository) ListDepartments(ctx context.Context) ([]models.Department, error) {
	query := `SELECT id, name FROM departments ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	departments := make([]models.Department, 0)
	for rows.Next() {
		var d models.Department
		if scanErr := rows.Scan(&d.ID, &d.Name); scanErr != nil {
			return nil, scanErr
		}
		departments = append(departments, d)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return departments, nil
}

func (r *postgresVolunteerRepository) DeleteDepartment(ctx context.Context, id int) error {
	query := `DELETE FROM departments WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrVolunteerDeptInvalid
		}
		return fmt.Errorf("failed to delete department: %w", err)
	}
	return checkAffectedRows(result, ErrDepartmentNotFound)
}
