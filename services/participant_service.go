package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sportsfest/registration-system/metrics"
	"github.com/sportsfest/registration-system/models"
	"github.com/sportsfest/registration-system/repositories"
)

// Scope identifies the caller for role-based result narrowing.
type Scope struct {
	UserID      int
	Role        models.UserRole
	CommunityID *int
	SportID     *int
}

type CreateParticipantInput struct {
	FirstName   string                    `json:"first_name"`
	LastName    string                    `json:"last_name"`
	Gender      string                    `json:"gender"`
	DateOfBirth time.Time                 `json:"date_of_birth"`
	Email       string                    `json:"email"`
	Phone       string                    `json:"phone"`
	CommunityID int                       `json:"community_id"`
	Sports      models.SportSelectionList `json:"sports"`
	NextOfKin   *models.NextOfKin         `json:"next_of_kin"`
	TeamName    *string                   `json:"team_name"`
	Notes       *string                   `json:"notes"`
	Password    string                    `json:"password"`
}

type UpdateParticipantInput struct {
	FirstName   *string           `json:"first_name"`
	LastName    *string           `json:"last_name"`
	Gender      *string           `json:"gender"`
	DateOfBirth *time.Time        `json:"date_of_birth"`
	Email       *string           `json:"email"`
	Phone       *string           `json:"phone"`
	NextOfKin   *models.NextOfKin `json:"next_of_kin"`
	TeamName    *string           `json:"team_name"`
	Notes       *string           `json:"notes"`
}

// StatusNotifier delivers status-transition email. Failures are logged,
// never propagated to the caller of a status update.
type StatusNotifier interface {
	SendParticipantStatusEmail(ctx context.Context, participant *models.Participant, accepted bool) error
}

// FreezeChecker reports whether self-service edits are currently blocked.
type FreezeChecker interface {
	Frozen(ctx context.Context, now time.Time) (bool, error)
}

type ParticipantService interface {
	Create(ctx context.Context, input CreateParticipantInput) (*models.Participant, error)
	GetByID(ctx context.Context, scope Scope, id int) (*models.Participant, error)
	List(ctx context.Context, scope Scope, status *models.ParticipantStatus) ([]models.Participant, error)
	Update(ctx context.Context, scope Scope, id int, input UpdateParticipantInput) (*models.Participant, error)
	Delete(ctx context.Context, scope Scope, id int) error

	// UpdateStatus drives pending→accepted and pending→rejected, applying or
	// discarding the pending sports snapshot inside one transaction.
	UpdateStatus(ctx context.Context, scope Scope, id int, status models.ParticipantStatus) (*models.Participant, error)

	// Self-service surface.
	GetOwn(ctx context.Context, userID int) (*models.Participant, error)
	UpdateOwnProfile(ctx context.Context, userID int, input UpdateParticipantInput) (*models.Participant, error)
	UpdateOwnSports(ctx context.Context, userID int, selection models.SportSelectionList) (*models.Participant, error)
}

type participantService struct {
	db              *sql.DB
	participantRepo repositories.ParticipantRepository
	communityRepo   repositories.CommunityRepository
	userRepo        repositories.UserRepository
	sportService    SportService
	notifier        StatusNotifier
	freeze          FreezeChecker
	allowReopen     bool
	logger          *slog.Logger
}

func NewParticipantService(
	db *sql.DB,
	participantRepo repositories.ParticipantRepository,
	communityRepo repositories.CommunityRepository,
	userRepo repositories.UserRepository,
	sportService SportService,
	notifier StatusNotifier,
	freeze FreezeChecker,
	allowReopen bool,
	logger *slog.Logger,
) ParticipantService {
	return &participantService{
		db:              db,
		participantRepo: participantRepo,
		communityRepo:   communityRepo,
		userRepo:        userRepo,
		sportService:    sportService,
		notifier:        notifier,
		freeze:          freeze,
		allowReopen:     allowReopen,
		logger:          logger,
	}
}

func (s *participantService) Create(ctx context.Context, input CreateParticipantInput) (*models.Participant, error) {
	if err := validateParticipantInput(input); err != nil {
		return nil, err
	}

	community, err := s.communityRepo.GetByID(ctx, input.CommunityID)
	if err != nil {
		if errors.Is(err, repositories.ErrCommunityNotFound) {
			return nil, ErrCommunityNotFound
		}
		return nil, err
	}
	if !community.Active {
		return nil, ErrCommunityInactive
	}

	if err := s.sportService.ValidateSelection(ctx, input.Sports); err != nil {
		return nil, err
	}

	if _, err := s.participantRepo.FindByEmailAndCommunity(ctx, input.Email, input.CommunityID); err == nil {
		return nil, ErrDuplicateRegistration
	} else if !errors.Is(err, repositories.ErrParticipantNotFound) {
		return nil, err
	}

	passwordHash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	user := &models.User{
		Username:     email,
		Email:        &email,
		PasswordHash: passwordHash,
		Role:         models.RoleUser,
		CommunityID:  &input.CommunityID,
	}

	// The login row and the participant row commit together or not at all.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.userRepo.Create(ctx, tx, user); err != nil {
		switch {
		case errors.Is(err, repositories.ErrUserUsernameConflict),
			errors.Is(err, repositories.ErrUserEmailConflict):
			return nil, ErrUserEmailConflict
		}
		return nil, fmt.Errorf("failed to create participant login: %w", err)
	}

	participant := &models.Participant{
		FirstName:   strings.TrimSpace(input.FirstName),
		LastName:    strings.TrimSpace(input.LastName),
		Gender:      input.Gender,
		DateOfBirth: input.DateOfBirth,
		Email:       email,
		Phone:       input.Phone,
		CommunityID: input.CommunityID,
		Status:      models.ParticipantPending,
		NextOfKin:   input.NextOfKin,
		TeamName:    input.TeamName,
		Notes:       input.Notes,
		UserID:      &user.ID,
		Sports:      input.Sports,
	}
	if err := s.participantRepo.Create(ctx, tx, participant); err != nil {
		switch {
		case errors.Is(err, repositories.ErrParticipantEmailConflict):
			return nil, ErrDuplicateRegistration
		case errors.Is(err, repositories.ErrParticipantCommunityInvalid):
			return nil, ErrCommunityNotFound
		case errors.Is(err, repositories.ErrParticipantSportInvalid):
			return nil, ErrSportNotFound
		}
		return nil, fmt.Errorf("failed to create participant: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit registration: %w", err)
	}

	metrics.ParticipantRegistrations.Inc()
	return participant, nil
}

func validateParticipantInput(input CreateParticipantInput) error {
	missing := make([]string, 0, 4)
	if strings.TrimSpace(input.FirstName) == "" {
		missing = append(missing, "first_name")
	}
	if strings.TrimSpace(input.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(input.Phone) == "" {
		missing = append(missing, "phone")
	}
	if input.DateOfBirth.IsZero() {
		missing = append(missing, "date_of_birth")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s is required", ErrValidationFailed, strings.Join(missing, ", "))
	}
	if !isValidEmail(input.Email) {
		return fmt.Errorf("%w: invalid email address", ErrValidationFailed)
	}
	if len(input.Sports) == 0 {
		return ErrSportSelectionEmpty
	}
	return nil
}

// authorize reports whether the scope may act on the participant. Missing
// rows surface as not-found before this runs, so a scope mismatch is always
// a 403, never a 404.
func (s *participantService) authorize(scope Scope, p *models.Participant) error {
	switch scope.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleCommunityAdmin:
		if scope.CommunityID != nil && *scope.CommunityID == p.CommunityID {
			return nil
		}
	case models.RoleSportsAdmin:
		if scope.SportID == nil {
			break
		}
		for _, sel := range p.Sports {
			if sel.SportID == *scope.SportID {
				return nil
			}
		}
		// A staged selection is enough: the admin reviewing the change must
		// see the participant who proposed joining their sport.
		for _, sel := range p.PendingSports {
			if sel.SportID == *scope.SportID {
				return nil
			}
		}
	case models.RoleUser:
		if scope.UserID != 0 && p.UserID != nil && *p.UserID == scope.UserID {
			return nil
		}
	}
	return ErrForbiddenOperation
}

func (s *participantService) GetByID(ctx context.Context, scope Scope, id int) (*models.Participant, error) {
	participant, err := s.participantRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrParticipantNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}
	if err := s.authorize(scope, participant); err != nil {
		return nil, err
	}
	return participant, nil
}

func (s *participantService) List(ctx context.Context, scope Scope, status *models.ParticipantStatus) ([]models.Participant, error) {
	filter := repositories.ParticipantFilter{Status: status}
	switch scope.Role {
	case models.RoleAdmin:
		// unrestricted
	case models.RoleCommunityAdmin:
		if scope.CommunityID == nil {
			return nil, ErrForbiddenOperation
		}
		filter.CommunityID = scope.CommunityID
	case models.RoleSportsAdmin:
		if scope.SportID == nil {
			return nil, ErrForbiddenOperation
		}
		filter.SportID = scope.SportID
	default:
		return nil, ErrForbiddenOperation
	}
	return s.participantRepo.List(ctx, filter)
}

func (s *participantService) Update(ctx context.Context, scope Scope, id int, input UpdateParticipantInput) (*models.Participant, error) {
	participant, err := s.GetByID(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	applyParticipantUpdate(participant, input)
	if err := s.participantRepo.Update(ctx, participant); err != nil {
		if errors.Is(err, repositories.ErrParticipantEmailConflict) {
			return nil, ErrDuplicateRegistration
		}
		return nil, err
	}
	return participant, nil
}

func applyParticipantUpdate(p *models.Participant, input UpdateParticipantInput) {
	if input.FirstName != nil {
		p.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		p.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.Gender != nil {
		p.Gender = *input.Gender
	}
	if input.DateOfBirth != nil {
		p.DateOfBirth = *input.DateOfBirth
	}
	if input.Email != nil {
		p.Email = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if input.Phone != nil {
		p.Phone = *input.Phone
	}
	if input.NextOfKin != nil {
		p.NextOfKin = input.NextOfKin
	}
	if input.TeamName != nil {
		p.TeamName = input.TeamName
	}
	if input.Notes != nil {
		p.Notes = input.Notes
	}
}

func (s *participantService) Delete(ctx context.Context, scope Scope, id int) error {
	if _, err := s.GetByID(ctx, scope, id); err != nil {
		return err
	}
	if err := s.participantRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrParticipantNotFound) {
			return ErrParticipantNotFound
		}
		return err
	}
	return nil
}

func (s *participantService) UpdateStatus(ctx context.Context, scope Scope, id int, status models.ParticipantStatus) (*models.Participant, error) {
	if !status.Valid() {
		return nil, ErrStatusInvalid
	}
	switch scope.Role {
	case models.RoleAdmin, models.RoleCommunityAdmin, models.RoleSportsAdmin:
	default:
		return nil, ErrForbiddenOperation
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	participant, err := s.participantRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrParticipantNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}
	if err := s.authorize(scope, participant); err != nil {
		return nil, err
	}

	if err := checkStatusTransition(participant.Status, status, scope.Role, s.allowReopen); err != nil {
		return nil, err
	}

	if status == models.ParticipantAccepted && participant.PendingSports != nil {
		if err := s.participantRepo.ReplaceSports(ctx, tx, participant.ID, participant.PendingSports); err != nil {
			return nil, fmt.Errorf("failed to apply pending sports: %w", err)
		}
		participant.Sports = participant.PendingSports
	}

	if err := s.participantRepo.UpdateStatusAndPending(ctx, tx, participant.ID, status, nil); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit status update: %w", err)
	}

	participant.Status = status
	participant.PendingSports = nil
	metrics.StatusTransitions.WithLabelValues(string(status)).Inc()

	if status == models.ParticipantAccepted || status == models.ParticipantRejected {
		if err := s.notifier.SendParticipantStatusEmail(ctx, participant, status == models.ParticipantAccepted); err != nil {
			s.logger.Error("failed to send status notification",
				slog.Int("participant_id", participant.ID),
				slog.String("status", string(status)),
				slog.Any("error", err))
		}
	}
	return participant, nil
}

// checkStatusTransition enforces the review state machine. Pending rows may
// be accepted or rejected; a rejected row may return to pending only when
// reopening is enabled and the caller is an admin or community admin.
func checkStatusTransition(from, to models.ParticipantStatus, role models.UserRole, allowReopen bool) error {
	switch {
	case from == models.ParticipantPending &&
		(to == models.ParticipantAccepted || to == models.ParticipantRejected):
		return nil

	case from == models.ParticipantRejected && to == models.ParticipantPending:
		if !allowReopen {
			return ErrRejectedIsFinal
		}
		if role != models.RoleAdmin && role != models.RoleCommunityAdmin {
			return ErrForbiddenOperation
		}
		return nil

	default:
		return ErrStatusNotReviewable
	}
}

func (s *participantService) GetOwn(ctx context.Context, userID int) (*models.Participant, error) {
	participant, err := s.participantRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrParticipantNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}
	return participant, nil
}

func (s *participantService) checkFreeze(ctx context.Context) error {
	frozen, err := s.freeze.Frozen(ctx, time.Now())
	if err != nil {
		return err
	}
	if frozen {
		return ErrProfileFrozen
	}
	return nil
}

func (s *participantService) UpdateOwnProfile(ctx context.Context, userID int, input UpdateParticipantInput) (*models.Participant, error) {
	if err := s.checkFreeze(ctx); err != nil {
		return nil, err
	}
	participant, err := s.GetOwn(ctx, userID)
	if err != nil {
		return nil, err
	}
	applyParticipantUpdate(participant, input)
	if err := s.participantRepo.Update(ctx, participant); err != nil {
		if errors.Is(err, repositories.ErrParticipantEmailConflict) {
			return nil, ErrDuplicateRegistration
		}
		return nil, err
	}
	return participant, nil
}

// UpdateOwnSports stages a changed selection for re-review. Identical
// selections are a no-op; a changed one never applies directly, it lands in
// pending_sports, and an accepted participant drops back to pending.
func (s *participantService) UpdateOwnSports(ctx context.Context, userID int, selection models.SportSelectionList) (*models.Participant, error) {
	if err := s.checkFreeze(ctx); err != nil {
		return nil, err
	}
	if err := s.sportService.ValidateSelection(ctx, selection); err != nil {
		return nil, err
	}

	participant, err := s.GetOwn(ctx, userID)
	if err != nil {
		return nil, err
	}
	if participant.Status == models.ParticipantRejected {
		return nil, ErrRejectedIsFinal
	}

	current := participant.Sports
	if participant.PendingSports != nil {
		current = participant.PendingSports
	}
	if selection.SameSports(current) {
		return participant, nil
	}

	status := participant.Status
	if participant.Status == models.ParticipantAccepted {
		status = models.ParticipantPending
	}
	if err := s.participantRepo.UpdateStatusAndPending(ctx, nil, participant.ID, status, selection); err != nil {
		return nil, err
	}
	if status != participant.Status {
		metrics.StatusTransitions.WithLabelValues(string(status)).Inc()
	}
	participant.Status = status
	participant.PendingSports = selection
	return participant, nil
}
