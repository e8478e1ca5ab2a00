package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sportsfest/registration-system/models"
	"github.com/sportsfest/registration-system/repositories"
)

type ConvenorInput struct {
	Name    string  `json:"name"`
	Phone   string  `json:"phone"`
	Email   *string `json:"email"`
	SportID int     `json:"sport_id"`
}

type ConvenorService interface {
	Create(ctx context.Context, input ConvenorInput) (*models.Convenor, error)
	GetByID(ctx context.Context, id int) (*models.Convenor, error)
	List(ctx context.Context, sportID *int) ([]models.Convenor, error)
	Update(ctx context.Context, id int, input ConvenorInput) (*models.Convenor, error)
	Delete(ctx context.Context, id int) error
}

type convenorService struct {
	convenorRepo repositories.ConvenorRepository
	sportRepo    repositories.SportRepository
}

func NewConvenorService(convenorRepo repositories.ConvenorRepository, sportRepo repositories.SportRepository) ConvenorService {
	return &convenorService{convenorRepo: convenorRepo, sportRepo: sportRepo}
}

func (s *convenorService) validate(ctx context.Context, input *ConvenorInput) error {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" || input.Phone == "" {
		return fmt.Errorf("%w: convenor name and phone are required", ErrValidationFailed)
	}
	if input.Email != nil && !isValidEmail(*input.Email) {
		return fmt.Errorf("%w: invalid email format", ErrValidationFailed)
	}
	if _, err := s.sportRepo.GetByID(ctx, input.SportID); err != nil {
		if errors.Is(err, repositories.ErrSportNotFound) {
			return ErrSportNotFound
		}
		return err
	}
	return nil
}

func (s *convenorService) Create(ctx context.Context, input ConvenorInput) (*models.Convenor, error) {
	if err := s.validate(ctx, &input); err != nil {
		return nil, err
	}
	convenor := &models.Convenor{
		Name:    input.Name,
		Phone:   input.Phone,
		Email:   input.Email,
		SportID: input.SportID,
	}
	if err := s.convenorRepo.Create(ctx, convenor); err != nil {
		if errors.Is(err, repositories.ErrConvenorSportInvalid) {
			return nil, ErrSportNotFound
		}
		return nil, err
	}
	return convenor, nil
}

func (s *convenorService) GetByID(ctx context.Context, id int) (*models.Convenor, error) {
	convenor, err := s.convenorRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrConvenorNotFound) {
			return nil, ErrConvenorNotFound
		}
		return nil, err
	}
	return convenor, nil
}

func (s *convenorService) List(ctx context.Context, sportID *int) ([]models.Convenor, error) {
	return s.convenorRepo.List(ctx, sportID)
}

func (s *convenorService) Update(ctx context.Context, id int, input ConvenorInput) (*models.Convenor, error) {
	convenor, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, &input); err != nil {
		return nil, err
	}

	convenor.Name = input.Name
	convenor.Phone = input.Phone
	convenor.Email = input.Email
	convenor.SportID = input.SportID
	if err := s.convenorRepo.Update(ctx, convenor); err != nil {
		if errors.Is(err, repositories.ErrConvenorNotFound) {
			return nil, ErrConvenorNotFound
		}
		return nil, err
	}
	return convenor, nil
}

func (s *convenorService) Delete(ctx context.Context, id int) error {
	err := s.convenorRepo.Delete(ctx, id)
	if errors.Is(err, repositories.ErrConvenorNotFound) {
		return ErrConvenorNotFound
	}
	return err
}
