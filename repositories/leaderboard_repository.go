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
	ErrLeaderboardEntryNotFound = errors.New("leaderboard entry not found")
	ErrLeaderboardEntryConflict = errors.New("leaderboard entry already exists for this community and sport")
	ErrLeaderboardRefInvalid    = errors.New("leaderboard community or sport reference is invalid")
)

type LeaderboardRepository interface {
	Create(ctx context.Context, e *models.LeaderboardEntry) error
	GetByID(ctx context.Context, id int) (*models.LeaderboardEntry, error)
	ListBySport(ctx context.Context, sportID int) ([]models.LeaderboardEntry, error)
	ListAll(ctx context.Context) ([]models.LeaderboardEntry, error)
	Update(ctx context.Context, e *models.LeaderboardEntry) error
	Delete(ctx context.Context, id int) error
	OverallStandings(ctx context.Context) ([]models.OverallStanding, error)
}

type postgresLeaderboardRepository struct {
	db *sql.DB
}

func NewPostgresLeaderboardRepository(db *sql.DB) LeaderboardRepository {
	return &postgresLeaderboardRepository{db: db}
}

const leaderboardColumns = `id, community_id, sport_id, score, position, medal, updated_at`

func scanLeaderboardEntry(row interface{ Scan(...interface{}) error }) (*models.LeaderboardEntry, error) {
	var e models.LeaderboardEntry
	err := row.Scan(&e.ID, &e.CommunityID, &e.SportID, &e.Score, &e.Position, &e.Medal, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *postgresLeaderboardRepository) Create(ctx context.Context, e *models.LeaderboardEntry) error {
	query := `
		INSERT INTO leaderboard_entries (community_id, sport_id, score, position, medal)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		e.CommunityID, e.SportID, e.Score, e.Position, e.Medal,
	).Scan(&e.ID, &e.UpdatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				return ErrLeaderboardEntryConflict
			case "23503":
				return ErrLeaderboardRefInvalid
			}
		}
		return fmt.Errorf("failed to create leaderboard entry: %w", err)
	}
	return nil
}

func (r *postgresLeaderboardRepository) GetByID(ctx context.Context, id int) (*models.LeaderboardEntry, error) {
	query := `SELECT ` + leaderboardColumns + ` FROM leaderboard_entries WHERE id = $1`
	e, err := scanLeaderboardEntry(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeaderboardEntryNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *postgresLeaderboardRepository) ListBySport(ctx context.Context, sportID int) ([]models.LeaderboardEntry, error) {
	query := `SELECT ` + leaderboardColumns + ` FROM leaderboard_entries
		WHERE sport_id = $1 ORDER BY score DESC, community_id ASC`
	return r.list(ctx, query, sportID)
}

func (r *postgresLeaderboardRepository) ListAll(ctx context.Context) ([]models.LeaderboardEntry, error) {
	query := `SELECT ` + leaderboardColumns + ` FROM leaderboard_entries
		ORDER BY sport_id ASC, score DESC`
	return r.list(ctx, query)
}

func (r *postgresLeaderboardRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.LeaderboardEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.LeaderboardEntry, 0)
	for rows.Next() {
		e, scanErr := scanLeaderboardEntry(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		entries = append(entries, *e)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *postgresLeaderboardRepository) Update(ctx context.Context, e *models.LeaderboardEntry) error {
	query := `
		UPDATE leaderboard_entries
		SET score = $1, position = $2, medal = $3, updated_at = NOW()
		WHERE id = $4`

	result, err := r.db.ExecContext(ctx, query, e.Score, e.Position, e.Medal, e.ID)
	if err != nil {
		return fmt.Errorf("failed to update leaderboard entry: %w", err)
	}
	return checkAffectedRows(result, ErrLeaderboardEntryNotFound)
}

func (r *postgresLeaderboardRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM leaderboard_entries WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete leaderboard entry: %w", err)
	}
	return checkAffectedRows(result, ErrLeaderboardEntryNotFound)
}

func (r *postgresLeaderboardRepository) OverallStandings(ctx context.Context) ([]models.OverallStanding, error) {
	query := `
		SELECT c.id, c.name, COALESCE(SUM(le.score), 0) AS total_score
		FROM communities c
		LEFT JOIN leaderboard_entries le ON le.community_id = c.id
		WHERE c.active = TRUE
		GROUP BY c.id, c.name
		ORDER BY total_score DESC, c.name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	standings := make([]models.OverallStanding, 0)
	for rows.Next() {
		var s models.OverallStanding
		if scanErr := rows.Scan(&s.CommunityID, &s.CommunityName, &s.TotalScore); scanErr != nil {
			return nil, scanErr
		}
		standings = append(standings, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return standings, nil
}
