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
	ErrConvenorNotFound     = errors.New("convenor not found")
	ErrConvenorSportInvalid = errors.New("convenor sport reference is invalid")
)

type ConvenorRepository interface {
	Create(ctx context.Context, c *models.Convenor) error
	GetByID(ctx context.Context, id int) (*models.Convenor, error)
	List(ctx context.Context, sportID *int) ([]models.Convenor, error)
	Update(ctx context.Context, c *models.Convenor) error
	Delete(ctx context.Context, id int) error
}

type postgresConvenorRepository struct {
	db *sql.DB
}

func NewPostgresConvenorRepository(db *sql.DB) ConvenorRepository {
	return &postgresConvenorRepository{db: db}
}

func (r *postgresConvenorRepository) Create(ctx context.Context, c *models.Convenor) error {
	query := `
		INSERT INTO convenors (name, phone, email, sport_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query, c.Name, c.Phone, c.Email, c.SportID).Scan(&c.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrConvenorSportInvalid
		}
		return fmt.Errorf("failed to create convenor: %w", err)
	}
	return nil
}

func (r *postgresConvenorRepository) GetByID(ctx context.Context, id int) (*models.Convenor, error) {
	query := `SELECT id, name, phone, email, sport_id FROM convenors WHERE id = $1`
	var c models.Convenor
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.SportID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConvenorNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *postgresConvenorRepository) List(ctx context.Context, sportID *int) ([]models.Convenor, error) {
	query := `SELECT id, name, phone, email, sport_id FROM convenors`
	args := []interface{}{}
	if sportID != nil {
		query += ` WHERE sport_id = $1`
		args = append(args, *sportID)
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	convenors := make([]models.Convenor, 0)
	for rows.Next() {
		var c models.Convenor
		if scanErr := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.SportID); scanErr != nil {
			return nil, scanErr
		}
		convenors = append(convenors, c)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return convenors, nil
}

func (r *postgresConvenorRepository) Update(ctx context.Context, c *models.Convenor) error {
	query := `UPDATE convenors SET name = $1, phone = $2, email = $3, sport_id = $4 WHERE id = $5`
	result, err := r.db.ExecContext(ctx, query, c.Name, c.Phone, c.Email, c.SportID, c.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrConvenorSportInvalid
		}
		return fmt.Errorf("failed to update convenor: %w", err)
	}
	return checkAffectedRows(result, ErrConvenorNotFound)
}

func (r *postgresConvenorRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM convenors WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete convenor: %w", err)
	}
	return checkAffectedRows(result, ErrConvenorNotFound)
}
