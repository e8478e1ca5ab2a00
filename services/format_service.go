package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sportsfest/registration-system/models"
	"github.com/sportsfest/registration-system/repositories"
)

type FormatInput struct {
	SportID     int     `json:"sport_id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Rounds      *int    `json:"rounds"`
}

type FormatService interface {
	Create(ctx context.Context, input FormatInput) (*models.TournamentFormat, error)
	GetByID(ctx context.Context, id int) (*models.TournamentFormat, error)
	ListBySport(ctx context.Context, sportID int) ([]models.TournamentFormat, error)
	ListAll(ctx context.Context) ([]models.TournamentFormat, error)
	Update(ctx context.Context, id int, input FormatInput) (*models.TournamentFormat, error)
	Delete(ctx context.Context, id int) error
}

type formatService struct {
	formatRepo repositories.FormatRepository
	sportRepo  repositories.SportRepository
}

func NewFormatService(formatRepo repositories.FormatRepository, sportRepo repositories.SportRepository) FormatService {
	return &formatService{formatRepo: formatRepo, sportRepo: sportRepo}
}

func (s *formatService) validate(ctx context.Context, input *FormatInput) error {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return fmt.Errorf("%w: format name is required", ErrValidationFailed)
	}
	if input.Rounds != nil && *input.Rounds < 1 {
		return fmt.Errorf("%w: rounds must be positive", ErrValidationFailed)
	}
	if _, err := s.sportRepo.GetByID(ctx, input.SportID); err != nil {
		if errors.Is(err, repositories.ErrSportNotFound) {
			return ErrSportNotFound
		}
		return err
	}
	return nil
}

func (s *formatService) Create(ctx context.Context, input FormatInput) (*models.TournamentFormat, error) {
	if err := s.validate(ctx, &input); err != nil {
		return nil, err
	}
	format := &models.TournamentFormat{
		SportID:     input.SportID,
		Name:        input.Name,
		Description: input.Description,
		Rounds:      input.Rounds,
	}
	if err := s.formatRepo.Create(ctx, format); err != nil {
		if errors.Is(err, repositories.ErrFormatSportInvalid) {
			return nil, ErrSportNotFound
		}
		return nil, err
	}
	return format, nil
}

func (s *formatService) GetByID(ctx context.Context, id int) (*models.TournamentFormat, error) {
	format, err := s.formatRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrFormatNotFound) {
			return nil, ErrFormatNotFound
		}
		return nil, err
	}
	return format, nil
}

func (s *formatService) ListBySport(ctx context.Context, sportID int) ([]models.TournamentFormat, error) {
	if _, err := s.sportRepo.GetByID(ctx, sportID); err != nil {
		if errors.Is(err, repositories.ErrSportNotFound) {
			return nil, ErrSportNotFound
		}
		return nil, err
	}
	return s.formatRepo.ListBySport(ctx, sportID)
}

func (s *formatService) ListAll(ctx context.Context) ([]models.TournamentFormat, error) {
	return s.formatRepo.ListAll(ctx)
}

func (s *formatService) Update(ctx context.Context, id int, input FormatInput) (*models.TournamentFormat, error) {
	format, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, &input); err != nil {
		return nil, err
	}

	format.SportID = input.SportID
	format.Name = input.Name
	format.Description = input.Description
	format.Rounds = input.Rounds
	if err := s.formatRepo.Update(ctx, format); err != nil {
		if errors.Is(err, repositories.ErrFormatNotFound) {
			return nil, ErrFormatNotFound
		}
		return nil, err
	}
	return format, nil
}

func (s *formatService) Delete(ctx context.Context, id int) error {
	err := s.formatRepo.Delete(ctx, id)
	if errors.Is(err, repositories.ErrFormatNotFound) {
		return ErrFormatNotFound
	}
	return err
}
