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
	ErrCommunityNotFound     = errors.New("community not found")
	ErrCommunityNameConflict = errors.New("community name is already in use")
	ErrCommunityInUse        = errors.New("community cannot be deleted as it is in use")
	ErrContactNotFound       = errors.New("community contact not found")
)

type CommunityRepository interface {
	Create(ctx context.Context, community *models.Community) error
	GetByID(ctx context.Context, id int) (*models.Community, error)
	GetAll(ctx context.Context, activeOnly bool) ([]models.Community, error)
	Update(ctx context.Context, community *models.Community) error
	UpdateLogoKey(ctx context.Context, id int, logoKey *string) error
	Delete(ctx context.Context, id int) error

	GetByAdminLogin(ctx context.Context, login string) (*models.Community, error)

	AddContact(ctx context.Context, contact *models.CommunityContact) error
	ListContacts(ctx context.Context, communityID int) ([]models.CommunityContact, error)
	UpdateContact(ctx context.Context, contact *models.CommunityContact) error
	DeleteContact(ctx context.Context, id int) error
}

type postgresCommunityRepository struct {
	db *sql.DB
}

func NewPostgresCommunityRepository(db *sql.DB) CommunityRepository {
	return &postgresCommunityRepository{db: db}
}

const communityColumns = `id, name, active, contact_person, phone, email, password_hash,
	admin_username, admin_email, admin_password_hash, logo_key, created_at`

func scanCommunity(row interface{ Scan(...interface{}) error }) (*models.Community, error) {
	var c models.Community
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Active,
		&c.ContactPerson,
		&c.Phone,
		&c.Email,
		&c.PasswordHash,
		&c.AdminUsername,
		&c.AdminEmail,
		&c.AdminPasswordHash,
		&c.LogoKey,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *postgresCommunityRepository) Create(ctx context.Context, community *models.Community) error {
	query := `
		INSERT INTO communities (name, active, contact_person, phone, email, password_hash,
			admin_username, admin_email, admin_password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		community.Name,
		community.Active,
		community.ContactPerson,
		community.Phone,
		community.Email,
		community.PasswordHash,
		community.AdminUsername,
		community.AdminEmail,
		community.AdminPasswordHash,
	).Scan(&community.ID, &community.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrCommunityNameConflict
		}
		return fmt.Errorf("failed to create community: %w", err)
	}
	return nil
}

func (r *postgresCommunityRepository) GetByID(ctx context.Context, id int) (*models.Community, error) {
	query := `SELECT ` + communityColumns + ` FROM communities WHERE id = $1`
	community, err := scanCommunity(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCommunityNotFound
		}
		return nil, err
	}
	return community, nil
}

func (r *postgresCommunityRepository) GetAll(ctx context.Context, activeOnly bool) ([]models.Community, error) {
	query := `SELECT ` + communityColumns + ` FROM communities`
	if activeOnly {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	communities := make([]models.Community, 0)
	for rows.Next() {
		c, scanErr := scanCommunity(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		communities = append(communities, *c)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return communities, nil
}

func (r *postgresCommunityRepository) Update(ctx context.Context, community *models.Community) error {
	query := `
		UPDATE communities
		SET name = $1, active = $2, contact_person = $3, phone = $4, email = $5,
			password_hash = $6, admin_username = $7, admin_email = $8, admin_password_hash = $9
		WHERE id = $10`

	result, err := r.db.ExecContext(ctx, query,
		community.Name,
		community.Active,
		community.ContactPerson,
		community.Phone,
		community.Email,
		community.PasswordHash,
		community.AdminUsername,
		community.AdminEmail,
		community.AdminPasswordHash,
		community.ID,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrCommunityNameConflict
		}
		return fmt.Errorf("failed to update community: %w", err)
	}
	return checkAffectedRows(result, ErrCommunityNotFound)
}

func (r *postgresCommunityRepository) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	query := `UPDATE communities SET logo_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, logoKey, id)
	if err != nil {
		return fmt.Errorf("failed to update community logo key: %w", err)
	}
	return checkAffectedRows(result, ErrCommunityNotFound)
}

func (r *postgresCommunityRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM communities WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrCommunityInUse
		}
		return fmt.Errorf("failed to delete community: %w", err)
	}
	return checkAffectedRows(result, ErrCommunityNotFound)
}

func (r *postgresCommunityRepository) GetByAdminLogin(ctx context.Context, login string) (*models.Community, error) {
	query := `SELECT ` + communityColumns + ` FROM communities
		WHERE admin_username = $1 OR admin_email = $1`
	community, err := scanCommunity(r.db.QueryRowContext(ctx, query, login))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCommunityNotFound
		}
		return nil, err
	}
	return community, nil
}

func (r *postgresCommunityRepository) AddContact(ctx context.Context, contact *models.CommunityContact) error {
	query := `
		INSERT INTO community_contacts (community_id, name, phone, email, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		contact.CommunityID,
		contact.Name,
		contact.Phone,
		contact.Email,
		contact.Role,
	).Scan(&contact.ID)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrCommunityNotFound
		}
		return fmt.Errorf("failed to add community contact: %w", err)
	}
	return nil
}

func (r *postgresCommunityRepository) ListContacts(ctx context.Context, communityID int) ([]models.CommunityContact, error) {
	query := `
		SELECT id, community_id, name, phone, email, role
		FROM community_contacts
		WHERE community_id = $1
		ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query, communityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := make([]models.CommunityContact, 0)
	for rows.Next() {
		var c models.CommunityContact
		if scanErr := rows.Scan(&c.ID, &c.CommunityID, &c.Name, &c.Phone, &c.Email, &c.Role); scanErr != nil {
			return nil, scanErr
		}
		contacts = append(contacts, c)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return contacts, nil
}

func (r *postgresCommunityRepository) UpdateContact(ctx context.Context, contact *models.CommunityContact) error {
	query := `
		UPDATE community_contacts
		SET name = $1, phone = $2, email = $3, role = $4
		WHERE id = $5`

	result, err := r.db.ExecContext(ctx, query,
		contact.Name,
		contact.Phone,
		contact.Email,
		contact.Role,
		contact.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update community contact: %w", err)
	}
	return checkAffectedRows(result, ErrContactNotFound)
}

func (r *postgresCommunityRepository) DeleteContact(ctx context.Context, id int) error {
	query := `DELETE FROM community_contacts WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete community contact: %w", err)
	}
	return checkAffectedRows(result, ErrContactNotFound)
}
