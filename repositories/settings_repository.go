package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sportsfest/registration-system/models"
)

// SettingsRepository manages the single global settings row.
type SettingsRepository interface {
	Get(ctx context.Context) (*models.Settings, error)
	SetFreezeDate(ctx context.Context, freezeDate *time.Time) (*models.Settings, error)
}

type postgresSettingsRepository struct {
	db *sql.DB
}

func NewPostgresSettingsRepository(db *sql.DB) SettingsRepository {
	return &postgresSettingsRepository{db: db}
}

func (r *postgresSettingsRepository) Get(ctx context.Context) (*models.Settings, error) {
	query := `SELECT id, freeze_date, updated_at FROM settings WHERE id = 1`

	var s models.Settings
	err := r.db.QueryRowContext(ctx, query).Scan(&s.ID, &s.FreezeDate, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Row is seeded by migrations; absence means no freeze configured.
			return &models.Settings{ID: 1, UpdatedAt: time.Now()}, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *postgresSettingsRepository) SetFreezeDate(ctx context.Context, freezeDate *time.Time) (*models.Settings, error) {
	query := `
		INSERT INTO settings (id, freeze_date, updated_at)
		VALUES (1, $1, NOW())
		ON CONFLICT (id) DO UPDATE SET freeze_date = EXCLUDED.freeze_date, updated_at = NOW()
		RETURNING id, freeze_date, updated_at`

	var s models.Settings
	err := r.db.QueryRowContext(ctx, query, freezeDate).Scan(&s.ID, &s.FreezeDate, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}
	return &s, nil
}
