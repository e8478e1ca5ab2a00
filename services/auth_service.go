package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sportsfest/registration-system/models"
	"github.com/sportsfest/registration-system/repositories"
)

type LoginInput struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type SignupInput struct {
	Username    string          `json:"username"`
	Email       *string         `json:"email"`
	Password    string          `json:"password"`
	Role        models.UserRole `json:"role"`
	CommunityID *int            `json:"community_id"`
}

type AuthService interface {
	Login(ctx context.Context, input LoginInput) (*models.User, error)
	Signup(ctx context.Context, input SignupInput) (*models.User, error)
	GetUserByID(ctx context.Context, id int) (*models.User, error)

	// Embedded-credential login variants. A successful check lazily
	// provisions (or refreshes) the shadow row in the users table.
	SportsAdminLogin(ctx context.Context, input LoginInput) (*models.User, error)
	CommunityAdminLogin(ctx context.Context, input LoginInput) (*models.User, error)
	VolunteerLogin(ctx context.Context, input LoginInput) (*models.User, error)
}

type authService struct {
	userRepo      repositories.UserRepository
	sportRepo     repositories.SportRepository
	communityRepo repositories.CommunityRepository
}

func NewAuthService(
	userRepo repositories.UserRepository,
	sportRepo repositories.SportRepository,
	communityRepo repositories.CommunityRepository,
) AuthService {
	return &authService{
		userRepo:      userRepo,
		sportRepo:     sportRepo,
		communityRepo: communityRepo,
	}
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	user, err := s.userRepo.GetByUsernameOrEmail(ctx, strings.TrimSpace(input.Login))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !checkPassword(user.PasswordHash, input.Password) {
		return nil, ErrInvalidCredentials
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *authService) Signup(ctx context.Context, input SignupInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrValidationFailed)
	}
	if input.Role != models.RoleCommunityAdmin && input.Role != models.RoleVolunteer {
		return nil, fmt.Errorf("%w: signup is only open for community_admin and volunteer roles", ErrValidationFailed)
	}
	if input.Role == models.RoleCommunityAdmin && input.CommunityID == nil {
		return nil, fmt.Errorf("%w: community_id is required for community admins", ErrValidationFailed)
	}
	if input.Email != nil && !isValidEmail(*input.Email) {
		return nil, fmt.Errorf("%w: invalid email address", ErrValidationFailed)
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         input.Role,
		CommunityID:  input.CommunityID,
	}
	if err := s.userRepo.Create(ctx, nil, user); err != nil {
		switch {
		case errors.Is(err, repositories.ErrUserUsernameConflict):
			return nil, ErrUserUsernameConflict
		case errors.Is(err, repositories.ErrUserEmailConflict):
			return nil, ErrUserEmailConflict
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *authService) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *authService) SportsAdminLogin(ctx context.Context, input LoginInput) (*models.User, error) {
	sport, err := s.sportRepo.GetByAdminLogin(ctx, strings.TrimSpace(input.Login))
	if err != nil {
		if errors.Is(err, repositories.ErrSportNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find sport admin: %w", err)
	}
	if sport.AdminPasswordHash == nil || !checkPassword(*sport.AdminPasswordHash, input.Password) {
		return nil, ErrInvalidCredentials
	}
	username := valueOr(sport.AdminUsername, fmt.Sprintf("sport-admin-%d", sport.ID))
	return s.provisionShadowUser(ctx, username, sport.AdminEmail, *sport.AdminPasswordHash,
		models.RoleSportsAdmin, nil, &sport.ID)
}

func (s *authService) CommunityAdminLogin(ctx context.Context, input LoginInput) (*models.User, error) {
	community, err := s.communityRepo.GetByAdminLogin(ctx, strings.TrimSpace(input.Login))
	if err != nil {
		if errors.Is(err, repositories.ErrCommunityNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find community admin: %w", err)
	}
	if community.AdminPasswordHash == nil || !checkPassword(*community.AdminPasswordHash, input.Password) {
		return nil, ErrInvalidCredentials
	}
	username := valueOr(community.AdminUsername, fmt.Sprintf("community-admin-%d", community.ID))
	return s.provisionShadowUser(ctx, username, community.AdminEmail, *community.AdminPasswordHash,
		models.RoleCommunityAdmin, &community.ID, nil)
}

func (s *authService) VolunteerLogin(ctx context.Context, input LoginInput) (*models.User, error) {
	user, err := s.Login(ctx, input)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleVolunteer && user.Role != models.RoleVolunteerAdmin {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// provisionShadowUser is the single sync point between row-embedded admin
// credentials and the users table: first successful login creates the
// account, later logins keep it aligned with the row.
func (s *authService) provisionShadowUser(
	ctx context.Context,
	username string,
	email *string,
	passwordHash string,
	role models.UserRole,
	communityID, sportID *int,
) (*models.User, error) {
	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up shadow user: %w", err)
	}

	if existing == nil {
		user := &models.User{
			Username:     username,
			Email:        email,
			PasswordHash: passwordHash,
			Role:         role,
			CommunityID:  communityID,
			SportID:      sportID,
		}
		if err := s.userRepo.Create(ctx, nil, user); err != nil {
			return nil, fmt.Errorf("failed to provision shadow user: %w", err)
		}
		user.PasswordHash = ""
		return user, nil
	}

	existing.Email = email
	existing.Role = role
	existing.CommunityID = communityID
	existing.SportID = sportID
	if err := s.userRepo.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to refresh shadow user: %w", err)
	}
	if err := s.userRepo.UpdatePasswordHash(ctx, existing.ID, passwordHash); err != nil {
		return nil, fmt.Errorf("failed to sync shadow user password: %w", err)
	}
	existing.PasswordHash = ""
	return existing, nil
}

func valueOr(s *string, fallback string) string {
	if s != nil && strings.TrimSpace(*s) != "" {
		return strings.TrimSpace(*s)
	}
	return fallback
}
