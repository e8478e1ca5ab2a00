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
	ErrCalendarEventNotFound = errors.New("calendar event not found")
	ErrCalendarSportInvalid  = errors.New("calendar event sport reference is invalid")
)

type CalendarRepository interface {
	Create(ctx context.Context, e *models.CalendarEvent) error
	GetByID(ctx context.Context, id int) (*models.CalendarEvent, error)
	List(ctx context.Context, sportID *int) ([]models.CalendarEvent, error)
	Update(ctx context.Context, e *models.CalendarEvent) error
	Delete(ctx context.Context, id int) error
}

type postgresCalendarRepository struct {
	db *sql.DB
}

func NewPostgresCalendarRepository(db *sql.DB) CalendarRepository {
	return &postgresCalendarRepository{db: db}
}

const calendarColumns = `id, sport_id, title, venue, starts_at, ends_at`

func scanCalendarEvent(row interface{ Scan(...interface{}) error }) (*models.CalendarEvent, error) {
	var e models.CalendarEvent
	if err := row.Scan(&e.ID, &e.SportID, &e.Title, &e.Venue, &e.StartsAt, &e.EndsAt); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *postgresCalendarRepository) Create(ctx context.Context, e *models.CalendarEvent) error {
	query := `
		INSERT INTO calendar_events (sport_id, title, venue, starts_at, ends_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query, e.SportID, e.Title, e.Venue, e.StartsAt, e.EndsAt).Scan(&e.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrCalendarSportInvalid
		}
		return fmt.Errorf("failed to create calendar event: %w", err)
	}
	return nil
}

func (r *postgresCalendarRepository) GetByID(ctx context.Context, id int) (*models.CalendarEvent, error) {
	query := `SELECT ` + calendarColumns + ` FROM calendar_events WHERE id = $1`
	e, err := scanCalendarEvent(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCalendarEventNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *postgresCalendarRepository) List(ctx context.Context, sportID *int) ([]models.CalendarEvent, error) {
	query := `SELECT ` + calendarColumns + ` FROM calendar_events`
	args := []interface{}{}
	if sportID != nil {
		query += ` WHERE sport_id = $1`
		args = append(args, *sportID)
	}
	query += ` ORDER BY starts_at ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]models.CalendarEvent, 0)
	for rows.Next() {
		e, scanErr := scanCalendarEvent(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		events = append(events, *e)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *postgresCalendarRepository) Update(ctx context.Context, e *models.CalendarEvent) error {
	query := `
		UPDATE calendar_events
		SET sport_id = $1, title = $2, venue = $3, starts_at = $4, ends_at = $5
		WHERE id = $6`

	result, err := r.db.ExecContext(ctx, query, e.SportID, e.Title, e.Venue, e.StartsAt, e.EndsAt, e.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrCalendarSportInvalid
		}
		return fmt.Errorf("failed to update calendar event: %w", err)
	}
	return checkAffectedRows(result, ErrCalendarEventNotFound)
}

func (r *postgresCalendarRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM calendar_events WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete calendar event: %w", err)
	}
	return checkAffectedRows(result, ErrCalendarEventNotFound)
}
