package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sportsfest/registration-system/models"
	"github.com/sportsfest/registration-system/repositories"
)

type UpdateUserInput struct {
	Username    *string          `json:"username"`
	Email       *string          `json:"email"`
	Role        *models.UserRole `json:"role"`
	CommunityID *int             `json:"community_id"`
	SportID     *int             `json:"sport_id"`
}

type UserService interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, id int, input UpdateUserInput) (*models.User, error)
	ChangePassword(ctx context.Context, userID int, oldPassword, newPassword string) error
	Delete(ctx context.Context, id int) error
}

type userService struct {
	userRepo repositories.UserRepository
}

func NewUserService(userRepo repositories.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetByID(ctx context.Context, id int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) List(ctx context.Context) ([]models.User, error) {
	return s.userRepo.List(ctx)
}

func (s *userService) Update(ctx context.Context, id int, input UpdateUserInput) (*models.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Username != nil {
		if *input.Username == "" {
			return nil, fmt.Errorf("%w: username cannot be empty", ErrValidationFailed)
		}
		user.Username = *input.Username
	}
	if input.Email != nil {
		if !isValidEmail(*input.Email) {
			return nil, fmt.Errorf("%w: invalid email format", ErrValidationFailed)
		}
		user.Email = input.Email
	}
	if input.Role != nil {
		if !input.Role.Valid() {
			return nil, fmt.Errorf("%w: unknown role %q", ErrValidationFailed, *input.Role)
		}
		user.Role = *input.Role
	}
	if input.CommunityID != nil {
		user.CommunityID = input.CommunityID
	}
	if input.SportID != nil {
		user.SportID = input.SportID
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repositories.ErrUserNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, repositories.ErrUserUsernameConflict):
			return nil, ErrUserUsernameConflict
		case errors.Is(err, repositories.ErrUserEmailConflict):
			return nil, ErrUserEmailConflict
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) ChangePassword(ctx context.Context, userID int, oldPassword, newPassword string) error {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !checkPassword(user.PasswordHash, oldPassword) {
		return ErrInvalidCredentials
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePasswordHash(ctx, userID, hash); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *userService) Delete(ctx context.Context, id int) error {
	err := s.userRepo.Delete(ctx, id)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return ErrUserNotFound
	}
	return err
}
