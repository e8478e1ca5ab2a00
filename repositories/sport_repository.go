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
	ErrSportNotFound     = errors.New("sport not found")
	ErrSportNameConflict = errors.New("sport name conflict")
	ErrSportInUse        = errors.New("sport cannot be deleted as it is in use")
)

type SportRepository interface {
	Create(ctx context.Context, sport *models.Sport) error
	GetByID(ctx context.Context, id int) (*models.Sport, error)
	GetAll(ctx context.Context, activeOnly bool) ([]models.Sport, error)
	ListByParent(ctx context.Context, parentID int) ([]models.Sport, error)
	Update(ctx context.Context, sport *models.Sport) error
	UpdateLogoKey(ctx context.Context, id int, logoKey *string) error
	Delete(ctx context.Context, id int) error

	// Incompatibility edges. Add writes both directions in one transaction;
	// reads return neighbours in either direction.
	AddIncompatibility(ctx context.Context, sportID, otherID int) error
	RemoveIncompatibility(ctx context.Context, sportID, otherID int) error
	ListIncompatibleIDs(ctx context.Context, sportID int) ([]int, error)
	IncompatiblePairsWithin(ctx context.Context, sportIDs []int) ([][2]int, error)

	GetByAdminLogin(ctx context.Context, login string) (*models.Sport, error)
}

type postgresSportRepository struct {
	db *sql.DB
}

func NewPostgresSportRepository(db *sql.DB) SportRepository {
	return &postgresSportRepository{db: db}
}

const sportColumns = `id, name, type, parent_id, active, venue, timings, event_date, gender,
	min_age, max_age, admin_username, admin_email, admin_password_hash, logo_key`

func scanSport(row interface{ Scan(...interface{}) error }) (*models.Sport, error) {
	var s models.Sport
	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.Type,
		&s.ParentID,
		&s.Active,
		&s.Venue,
		&s.Timings,
		&s.Date,
		&s.Gender,
		&s.MinAge,
		&s.MaxAge,
		&s.AdminUsername,
		&s.AdminEmail,
		&s.AdminPasswordHash,
		&s.LogoKey,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *postgresSportRepository) Create(ctx context.Context, sport *models.Sport) error {
	query := `
		INSERT INTO sports (name, type, parent_id, active, venue, timings, event_date, gender,
			min_age, max_age, admin_username, admin_email, admin_password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		sport.Name,
		sport.Type,
		sport.ParentID,
		sport.Active,
		sport.Venue,
		sport.Timings,
		sport.Date,
		sport.Gender,
		sport.MinAge,
		sport.MaxAge,
		sport.AdminUsername,
		sport.AdminEmail,
		sport.AdminPasswordHash,
	).Scan(&sport.ID)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				return ErrSportNameConflict
			case "23503":
				return ErrSportNotFound // invalid parent_id
			}
		}
		return fmt.Errorf("failed to create sport: %w", err)
	}
	return nil
}

func (r *postgresSportRepository) GetByID(ctx context.Context, id int) (*models.Sport, error) {
	query := `SELECT ` + sportColumns + ` FROM sports WHERE id = $1`
	sport, err := scanSport(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSportNotFound
		}
		return nil, err
	}
	return sport, nil
}

func (r *postgresSportRepository) GetAll(ctx context.Context, activeOnly bool) ([]models.Sport, error) {
	query := `SELECT ` + sportColumns + ` FROM sports`
	if activeOnly {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sports := make([]models.Sport, 0)
	for rows.Next() {
		s, scanErr := scanSport(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		sports = append(sports, *s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return sports, nil
}

func (r *postgresSportRepository) ListByParent(ctx context.Context, parentID int) ([]models.Sport, error) {
	query := `SELECT ` + sportColumns + ` FROM sports WHERE parent_id = $1 ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sports := make([]models.Sport, 0)
	for rows.Next() {
		s, scanErr := scanSport(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		sports = append(sports, *s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return sports, nil
}

func (r *postgresSportRepository) Update(ctx context.Context, sport *models.Sport) error {
	query := `
		UPDATE sports
		SET name = $1, type = $2, parent_id = $3, active = $4, venue = $5, timings = $6,
			event_date = $7, gender = $8, min_age = $9, max_age = $10,
			admin_username = $11, admin_email = $12, admin_password_hash = $13
		WHERE id = $14`

	result, err := r.db.ExecContext(ctx, query,
		sport.Name,
		sport.Type,
		sport.ParentID,
		sport.Active,
		sport.Venue,
		sport.Timings,
		sport.Date,
		sport.Gender,
		sport.MinAge,
		sport.MaxAge,
		sport.AdminUsername,
		sport.AdminEmail,
		sport.AdminPasswordHash,
		sport.ID,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrSportNameConflict
		}
		return fmt.Errorf("failed to update sport: %w", err)
	}
	return checkAffectedRows(result, ErrSportNotFound)
}

func (r *postgresSportRepository) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	query := `UPDATE sports SET logo_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, logoKey, id)
	if err != nil {
		return fmt.Errorf("failed to update sport logo key: %w", err)
	}
	return checkAffectedRows(result, ErrSportNotFound)
}

func (r *postgresSportRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM sports WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrSportInUse
		}
		return fmt.Errorf("failed to delete sport: %w", err)
	}
	return checkAffectedRows(result, ErrSportNotFound)
}

func (r *postgresSportRepository) AddIncompatibility(ctx context.Context, sportID, otherID int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO sport_incompatibilities (sport_id, incompatible_sport_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`

	if _, err := tx.ExecContext(ctx, query, sportID, otherID); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrSportNotFound
		}
		return fmt.Errorf("failed to add incompatibility edge: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, otherID, sportID); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrSportNotFound
		}
		return fmt.Errorf("failed to add reverse incompatibility edge: %w", err)
	}
	return tx.Commit()
}

func (r *postgresSportRepository) RemoveIncompatibility(ctx context.Context, sportID, otherID int) error {
	query := `
		DELETE FROM sport_incompatibilities
		WHERE (sport_id = $1 AND incompatible_sport_id = $2)
		   OR (sport_id = $2 AND incompatible_sport_id = $1)`

	_, err := r.db.ExecContext(ctx, query, sportID, otherID)
	if err != nil {
		return fmt.Errorf("failed to remove incompatibility edge: %w", err)
	}
	return nil
}

func (r *postgresSportRepository) ListIncompatibleIDs(ctx context.Context, sportID int) ([]int, error) {
	query := `
		SELECT incompatible_sport_id FROM sport_incompatibilities WHERE sport_id = $1
		UNION
		SELECT sport_id FROM sport_incompatibilities WHERE incompatible_sport_id = $1`

	rows, err := r.db.QueryContext(ctx, query, sportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, scanErr
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// IncompatiblePairsWithin returns every declared conflict between members of
// the given set, checking edges in both directions. Legacy rows written
// before edges became symmetric are still honoured.
func (r *postgresSportRepository) IncompatiblePairsWithin(ctx context.Context, sportIDs []int) ([][2]int, error) {
	if len(sportIDs) < 2 {
		return nil, nil
	}
	query := `
		SELECT sport_id, incompatible_sport_id
		FROM sport_incompatibilities
		WHERE sport_id = ANY($1) AND incompatible_sport_id = ANY($1)`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(sportIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pairs := make([][2]int, 0)
	for rows.Next() {
		var a, b int
		if scanErr := rows.Scan(&a, &b); scanErr != nil {
			return nil, scanErr
		}
		pairs = append(pairs, [2]int{a, b})
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return pairs, nil
}

func (r *postgresSportRepository) GetByAdminLogin(ctx context.Context, login string) (*models.Sport, error) {
	query := `SELECT ` + sportColumns + ` FROM sports
		WHERE admin_username = $1 OR admin_email = $1`
	sport, err := scanSport(r.db.QueryRowContext(ctx, query, login))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSportNotFound
		}
		return nil, err
	}
	return sport, nil
}
