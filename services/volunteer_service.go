package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sportsfest/registration-system/models"
	"github.com/sportsfest/registration-system/repositories"
)

type VolunteerInput struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Gender       string `json:"gender"`
	DateOfBirth  string `json:"date_of_birth"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	DepartmentID int    `json:"department_id"`
	SportID      *int   `json:"sport_id"`
}

type VolunteerService interface {
	Create(ctx context.Context, input VolunteerInput) (*models.Volunteer, error)
	GetByID(ctx context.Context, id int) (*models.Volunteer, error)
	List(ctx context.Context, filter repositories.VolunteerFilter) ([]models.Volunteer, error)
	Update(ctx context.Context, id int, input VolunteerInput) (*models.Volunteer, error)
	Delete(ctx context.Context, id int) error

	CreateDepartment(ctx context.Context, name string) (*models.Department, error)
	ListDepartments(ctx context.Context) ([]models.Department, error)
	DeleteDepartment(ctx context.Context, id int) error
}

type volunteerService struct {
	volunteerRepo repositories.VolunteerRepository
	sportRepo     repositories.SportRepository
}

func NewVolunteerService(volunteerRepo repositories.VolunteerRepository, sportRepo repositories.SportRepository) VolunteerService {
	return &volunteerService{volunteerRepo: volunteerRepo, sportRepo: sportRepo}
}

func (s *volunteerService) validate(ctx context.Context, input *VolunteerInput) (time.Time, error) {
	var missing []string
	if strings.TrimSpace(input.FirstName) == "" {
		missing = append(missing, "first_name")
	}
	if strings.TrimSpace(input.LastName) == "" {
		missing = append(missing, "last_name")
	}
	if input.Email == "" {
		missing = append(missing, "email")
	}
	if input.Phone == "" {
		missing = append(missing, "phone")
	}
	if input.DepartmentID == 0 {
		missing = append(missing, "department_id")
	}
	if len(missing) > 0 {
		return time.Time{}, fmt.Errorf("%w: %s required", ErrValidationFailed, strings.Join(missing, ", "))
	}
	if !isValidEmail(input.Email) {
		return time.Time{}, fmt.Errorf("%w: invalid email format", ErrValidationFailed)
	}

	dob, err := time.Parse("2006-01-02", input.DateOfBirth)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date_of_birth must be YYYY-MM-DD", ErrValidationFailed)
	}

	if input.SportID != nil {
		if _, err := s.sportRepo.GetByID(ctx, *input.SportID); err != nil {
			if errors.Is(err, repositories.ErrSportNotFound) {
				return time.Time{}, ErrSportNotFound
			}
			return time.Time{}, err
		}
	}
	return dob, nil
}

func (s *volunteerService) Create(ctx context.Context, input VolunteerInput) (*models.Volunteer, error) {
	dob, err := s.validate(ctx, &input)
	if err != nil {
		return nil, err
	}

	volunteer := &models.Volunteer{
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Gender:       input.Gender,
		DateOfBirth:  dob,
		Email:        input.Email,
		Phone:        input.Phone,
		DepartmentID: input.DepartmentID,
		SportID:      input.SportID,
	}
	if err := s.volunteerRepo.Create(ctx, volunteer); err != nil {
		if errors.Is(err, repositories.ErrVolunteerDeptInvalid) {
			return nil, ErrDepartmentNotFound
		}
		return nil, err
	}
	return volunteer, nil
}

func (s *volunteerService) GetByID(ctx context.Context, id int) (*models.Volunteer, error) {
	volunteer, err := s.volunteerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrVolunteerNotFound) {
			return nil, ErrVolunteerNotFound
		}
		return nil, err
	}
	return volunteer, nil
}

func (s *volunteerService) List(ctx context.Context, filter repositories.VolunteerFilter) ([]models.Volunteer, error) {
	return s.volunteerRepo.List(ctx, filter)
}

func (s *volunteerService) Update(ctx context.Context, id int, input VolunteerInput) (*models.Volunteer, error) {
	volunteer, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	dob, err := s.validate(ctx, &input)
	if err != nil {
		return nil, err
	}

	volunteer.FirstName = strings.TrimSpace(input.FirstName)
	volunteer.LastName = strings.TrimSpace(input.LastName)
	volunteer.Gender = input.Gender
	volunteer.DateOfBirth = dob
	volunteer.Email = input.Email
	volunteer.Phone = input.Phone
	volunteer.DepartmentID = input.DepartmentID
	volunteer.SportID = input.SportID

	if err := s.volunteerRepo.Update(ctx, volunteer); err != nil {
		if errors.Is(err, repositories.ErrVolunteerNotFound) {
			return nil, ErrVolunteerNotFound
		}
		if errors.Is(err, repositories.ErrVolunteerDeptInvalid) {
			return nil, ErrDepartmentNotFound
		}
		return nil, err
	}
	return volunteer, nil
}

func (s *volunteerService) Delete(ctx context.Context, id int) error {
	err := s.volunteerRepo.Delete(ctx, id)
	if errors.Is(err, repositories.ErrVolunteerNotFound) {
		return ErrVolunteerNotFound
	}
	return err
}

func (s *volunteerService) CreateDepartment(ctx context.Context, name string) (*models.Department, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: department name is required", ErrValidationFailed)
	}
	department := &models.Department{Name: name}
	if err := s.volunteerRepo.CreateDepartment(ctx, department); err != nil {
		return nil, err
	}
	return department, nil
}

func (s *volunteerService) ListDepartments(ctx context.Context) ([]models.Department, error) {
	return s.volunteerRepo.ListDepartments(ctx)
}

func (s *volunteerService) DeleteDepartment(ctx context.Context, id int) error {
	err := s.volunteerRepo.DeleteDepartment(ctx, id)
	if errors.Is(err, repositories.ErrDepartmentNotFound) {
		return ErrDepartmentNotFound
	}
	return err
}
