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
	ErrFormatNotFound     = errors.New("tournament format not found")
	ErrFormatSportInvalid = errors.New("tournament format sport reference is invalid")
)

type FormatRepository interface {
	Create(ctx context.Context, f *models.TournamentFormat) error
	GetByID(ctx context.Context, id int) (*models.TournamentFormat, error)
	ListBySport(ctx context.Context, sportID int) ([]models.TournamentFormat, error)
	ListAll(ctx context.Context) ([]models.TournamentFormat, error)
	Update(ctx context.Context, f *models.TournamentFormat) error
	Delete(ctx context.Context, id int) error
}

type postgresFormatRepository struct {
	db *sql.DB
}

func NewPostgresFormatRepository(db *sql.DB) FormatRepository {
	return &postgresFormatRepository{db: db}
}

const formatColumns = `id, sport_id, name, description, rounds`

func scanFormat(row interface{ Scan(...interface{}) error }) (*models.TournamentFormat, error) {
	var f models.TournamentFormat
	if err := row.Scan(&f.ID, &f.SportID, &f.Name, &f.Description, &f.Rounds); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *postgresFormatRepository) Create(ctx context.Context, f *models.TournamentFormat) error {
	query := `
		INSERT INTO tournament_formats (sport_id, name, description, rounds)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query, f.SportID, f.Name, f.Description, f.Rounds).Scan(&f.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrFormatSportInvalid
		}
		return fmt.Errorf("failed to create tournament format: %w", err)
	}
	return nil
}

func (r *postgresFormatRepository) GetByID(ctx context.Context, id int) (*models.TournamentFormat, error) {
	query := `SELECT ` + formatColumns + ` FROM tournament_formats WHERE id = $1`
	f, err := scanFormat(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFormatNotFound
		}
		return nil, err
	}
	return f, nil
}

func (r *postgresFormatRepository) ListBySport(ctx context.Context, sportID int) ([]models.TournamentFormat, error) {
	query := `SELECT ` + formatColumns + ` FROM tournament_formats WHERE sport_id = $1 ORDER BY name ASC`
	return r.list(ctx, query, sportID)
}

func (r *postgresFormatRepository) ListAll(ctx context.Context) ([]models.TournamentFormat, error) {
	query := `SELECT ` + formatColumns + ` FROM tournament_formats ORDER BY sport_id ASC, name ASC`
	return r.list(ctx, query)
}

func (r *postgresFormatRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.TournamentFormat, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	formats := make([]models.TournamentFormat, 0)
	for rows.Next() {
		f, scanErr := scanFormat(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		formats = append(formats, *f)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return formats, nil
}

func (r *postgresFormatRepository) Update(ctx context.Context, f *models.TournamentFormat) error {
	query := `
		UPDATE tournament_formats
		SET sport_id = $1, name = $2, description = $3, rounds = $4
		WHERE id = $5`

	result, err := r.db.ExecContext(ctx, query, f.SportID, f.Name, f.Description, f.Rounds, f.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrFormatSportInvalid
		}
		return fmt.Errorf("failed to update tournament format: %w", err)
	}
	return checkAffectedRows(result, ErrFormatNotFound)
}

func (r *postgresFormatRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM tournament_formats WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete tournament format: %w", err)
	}
	return checkAffectedRows(result, ErrFormatNotFound)
}
