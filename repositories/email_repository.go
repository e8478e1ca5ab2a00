package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sportsfest/registration-system/models"
)

// EmailRepository persists copies of outbound notifications, sent or failed.
type EmailRepository interface {
	Save(ctx context.Context, msg *models.EmailMessage) error
	ListRecent(ctx context.Context, limit int) ([]models.EmailMessage, error)
}

type postgresEmailRepository struct {
	db *sql.DB
}

func NewPostgresEmailRepository(db *sql.DB) EmailRepository {
	return &postgresEmailRepository{db: db}
}

func (r *postgresEmailRepository) Save(ctx context.Context, msg *models.EmailMessage) error {
	query := `
		INSERT INTO email_messages (id, recipient, subject, body, kind, sent, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING sent_at`

	err := r.db.QueryRowContext(ctx, query,
		msg.ID, msg.To, msg.Subject, msg.Body, msg.Kind, msg.Sent, msg.Error,
	).Scan(&msg.SentAt)
	if err != nil {
		return fmt.Errorf("failed to save email message: %w", err)
	}
	return nil
}

func (r *postgresEmailRepository) ListRecent(ctx context.Context, limit int) ([]models.EmailMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, recipient, subject, body, kind, sent, error, sent_at
		FROM email_messages
		ORDER BY sent_at DESC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]models.EmailMessage, 0)
	for rows.Next() {
		var m models.EmailMessage
		if scanErr := rows.Scan(&m.ID, &m.To, &m.Subject, &m.Body, &m.Kind, &m.Sent, &m.Error, &m.SentAt); scanErr != nil {
			return nil, scanErr
		}
		messages = append(messages, m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}
