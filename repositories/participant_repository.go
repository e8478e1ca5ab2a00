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
	ErrParticipantNotFound         = errors.New("participant not found")
	ErrParticipantEmailConflict    = errors.New("participant with this email already registered for the community")
	ErrParticipantCommunityInvalid = errors.New("participant community is invalid")
	ErrParticipantSportInvalid     = errors.New("participant sport reference is invalid")
)

// ParticipantFilter narrows list queries to the caller's scope.
type ParticipantFilter struct {
	CommunityID *int
	SportID     *int
	Status      *models.ParticipantStatus
}

type ParticipantRepository interface {
	Create(ctx context.Context, q SQLExecutor, p *models.Participant) error
	GetByID(ctx context.Context, id int) (*models.Participant, error)
	GetByIDForUpdate(ctx context.Context, q SQLExecutor, id int) (*models.Participant, error)
	GetByUserID(ctx context.Context, userID int) (*models.Participant, error)
	FindByEmailAndCommunity(ctx context.Context, email string, communityID int) (*models.Participant, error)
	List(ctx context.Context, filter ParticipantFilter) ([]models.Participant, error)
	Update(ctx context.Context, p *models.Participant) error
	UpdateStatusAndPending(ctx context.Context, q SQLExecutor, id int, status models.ParticipantStatus, pending models.SportSelectionList) error
	ReplaceSports(ctx context.Context, q SQLExecutor, id int, sports models.SportSelectionList) error
	Delete(ctx context.Context, id int) error
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

const participantColumns = `id, first_name, last_name, gender, date_of_birth, email, phone,
	community_id, status, next_of_kin, team_name, notes, pending_sports, user_id, created_at`

func scanParticipant(row interface{ Scan(...interface{}) error }) (*models.Participant, error) {
	var p models.Participant
	err := row.Scan(
		&p.ID,
		&p.FirstName,
		&p.LastName,
		&p.Gender,
		&p.DateOfBirth,
		&p.Email,
		&p.Phone,
		&p.CommunityID,
		&p.Status,
		&p.NextOfKin,
		&p.TeamName,
		&p.Notes,
		&p.PendingSports,
		&p.UserID,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postgresParticipantRepository) Create(ctx context.Context, q SQLExecutor, p *models.Participant) error {
	if q == nil {
		q = r.db
	}
	query := `
		INSERT INTO participants (first_name, last_name, gender, date_of_birth, email, phone,
			community_id, status, next_of_kin, team_name, notes, pending_sports, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at`

	err := q.QueryRowContext(ctx, query,
		p.FirstName,
		p.LastName,
		p.Gender,
		p.DateOfBirth,
		p.Email,
		p.Phone,
		p.CommunityID,
		p.Status,
		p.NextOfKin,
		p.TeamName,
		p.Notes,
		p.PendingSports,
		p.UserID,
	).Scan(&p.ID, &p.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				return ErrParticipantEmailConflict
			case "23503":
				if pqErr.Constraint == "participants_community_id_fkey" {
					return ErrParticipantCommunityInvalid
				}
			}
		}
		return fmt.Errorf("failed to create participant: %w", err)
	}

	if len(p.Sports) > 0 {
		if err := r.insertSports(ctx, q, p.ID, p.Sports); err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresParticipantRepository) insertSports(ctx context.Context, q SQLExecutor, participantID int, sports models.SportSelectionList) error {
	query := `INSERT INTO participant_sports (participant_id, sport_id, notes) VALUES ($1, $2, $3)`
	for _, sel := range sports {
		if _, err := q.ExecContext(ctx, query, participantID, sel.SportID, sel.Notes); err != nil {
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
				return ErrParticipantSportInvalid
			}
			return fmt.Errorf("failed to link participant sport: %w", err)
		}
	}
	return nil
}

func (r *postgresParticipantRepository) loadSports(ctx context.Context, q SQLExecutor, participantID int) (models.SportSelectionList, error) {
	query := `
		SELECT sport_id, notes
		FROM participant_sports
		WHERE participant_id = $1
		ORDER BY sport_id ASC`

	rows, err := q.QueryContext(ctx, query, participantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sports := make(models.SportSelectionList, 0)
	for rows.Next() {
		var sel models.SportSelection
		if scanErr := rows.Scan(&sel.SportID, &sel.Notes); scanErr != nil {
			return nil, scanErr
		}
		sports = append(sports, sel)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return sports, nil
}

func (r *postgresParticipantRepository) GetByID(ctx context.Context, id int) (*models.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants WHERE id = $1`
	p, err := scanParticipant(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}
	if p.Sports, err = r.loadSports(ctx, r.db, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

// GetByIDForUpdate locks the row so the status transition and the
// pending-sports apply step happen against a stable read.
func (r *postgresParticipantRepository) GetByIDForUpdate(ctx context.Context, q SQLExecutor, id int) (*models.Participant, error) {
	if q == nil {
		q = r.db
	}
	query := `SELECT ` + participantColumns + ` FROM participants WHERE id = $1 FOR UPDATE`
	p, err := scanParticipant(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}
	if p.Sports, err = r.loadSports(ctx, q, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *postgresParticipantRepository) GetByUserID(ctx context.Context, userID int) (*models.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants WHERE user_id = $1`
	p, err := scanParticipant(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}
	if p.Sports, err = r.loadSports(ctx, r.db, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *postgresParticipantRepository) FindByEmailAndCommunity(ctx context.Context, email string, communityID int) (*models.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants
		WHERE LOWER(email) = LOWER($1) AND community_id = $2`
	p, err := scanParticipant(r.db.QueryRowContext(ctx, query, email, communityID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresParticipantRepository) List(ctx context.Context, filter ParticipantFilter) ([]models.Participant, error) {
	query := `SELECT p.id, p.first_name, p.last_name, p.gender, p.date_of_birth,
		p.email, p.phone, p.community_id, p.status, p.next_of_kin, p.team_name, p.notes,
		p.pending_sports, p.user_id, p.created_at
		FROM participants p`

	args := make([]interface{}, 0, 3)
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

	if filter.SportID != nil {
		// A staged selection counts: the sports admin reviewing a proposed
		// change must be able to discover the participant who proposed it.
		appendCond(`(EXISTS (SELECT 1 FROM participant_sports ps
			WHERE ps.participant_id = p.id AND ps.sport_id = $%[1]d)
			OR EXISTS (SELECT 1 FROM jsonb_array_elements(COALESCE(p.pending_sports, '[]'::jsonb)) sel
			WHERE (sel->>'sport_id')::int = $%[1]d))`, *filter.SportID)
	}
	if filter.CommunityID != nil {
		appendCond("p.community_id = $%d", *filter.CommunityID)
	}
	if filter.Status != nil {
		appendCond("p.status = $%d", *filter.Status)
	}

	query += where + ` ORDER BY p.id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	participants := make([]models.Participant, 0)
	for rows.Next() {
		p, scanErr := scanParticipant(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		participants = append(participants, *p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	for i := range participants {
		if participants[i].Sports, err = r.loadSports(ctx, r.db, participants[i].ID); err != nil {
			return nil, err
		}
	}
	return participants, nil
}

func (r *postgresParticipantRepository) Update(ctx context.Context, p *models.Participant) error {
	query := `
		UPDATE participants
		SET first_name = $1, last_name = $2, gender = $3, date_of_birth = $4, email = $5,
			phone = $6, next_of_kin = $7, team_name = $8, notes = $9
		WHERE id = $10`

	result, err := r.db.ExecContext(ctx, query,
		p.FirstName,
		p.LastName,
		p.Gender,
		p.DateOfBirth,
		p.Email,
		p.Phone,
		p.NextOfKin,
		p.TeamName,
		p.Notes,
		p.ID,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrParticipantEmailConflict
		}
		return fmt.Errorf("failed to update participant: %w", err)
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *postgresParticipantRepository) UpdateStatusAndPending(ctx context.Context, q SQLExecutor, id int, status models.ParticipantStatus, pending models.SportSelectionList) error {
	if q == nil {
		q = r.db
	}
	query := `UPDATE participants SET status = $1, pending_sports = $2 WHERE id = $3`
	result, err := q.ExecContext(ctx, query, status, pending, id)
	if err != nil {
		return fmt.Errorf("failed to update participant status: %w", err)
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *postgresParticipantRepository) ReplaceSports(ctx context.Context, q SQLExecutor, id int, sports models.SportSelectionList) error {
	if q == nil {
		q = r.db
	}
	if _, err := q.ExecContext(ctx, `DELETE FROM participant_sports WHERE participant_id = $1`, id); err != nil {
		return fmt.Errorf("failed to clear participant sports: %w", err)
	}
	return r.insertSports(ctx, q, id, sports)
}

func (r *postgresParticipantRepository) Delete(ctx context.Context, id int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM participant_sports WHERE participant_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete participant sports: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM participants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete participant: %w", err)
	}
	if err := checkAffectedRows(result, ErrParticipantNotFound); err != nil {
		return err
	}
	return tx.Commit()
}
