package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sportsfest/registration-system/models"
	"github.com/sportsfest/registration-system/repositories"
	"github.com/sportsfest/registration-system/storage"
)

type CreateCommunityInput struct {
	Name          string `json:"name"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`

	AdminUsername string `json:"admin_username"`
	AdminEmail    string `json:"admin_email"`
	AdminPassword string `json:"admin_password"`
}

type UpdateCommunityInput struct {
	Name          *string `json:"name"`
	Active        *bool   `json:"active"`
	ContactPerson *string `json:"contact_person"`
	Phone         *string `json:"phone"`
	Email         *string `json:"email"`

	AdminUsername *string `json:"admin_username"`
	AdminEmail    *string `json:"admin_email"`
	AdminPassword *string `json:"admin_password"`
}

type ContactInput struct {
	Name  string  `json:"name"`
	Phone string  `json:"phone"`
	Email *string `json:"email"`
	Role  *string `json:"role"`
}

type CommunityService interface {
	Create(ctx context.Context, input CreateCommunityInput) (*models.Community, error)
	GetByID(ctx context.Context, id int) (*models.Community, error)
	GetAll(ctx context.Context, activeOnly bool) ([]models.Community, error)
	Update(ctx context.Context, id int, input UpdateCommunityInput) (*models.Community, error)
	Delete(ctx context.Context, id int) error
	UploadLogo(ctx context.Context, id int, file io.Reader, contentType string) (*models.Community, error)

	AddContact(ctx context.Context, communityID int, input ContactInput) (*models.CommunityContact, error)
	ListContacts(ctx context.Context, communityID int) ([]models.CommunityContact, error)
	UpdateContact(ctx context.Context, communityID, contactID int, input ContactInput) (*models.CommunityContact, error)
	DeleteContact(ctx context.Context, communityID, contactID int) error
}

type communityService struct {
	communityRepo repositories.CommunityRepository
	uploader      storage.FileUploader
}

func NewCommunityService(communityRepo repositories.CommunityRepository, uploader storage.FileUploader) CommunityService {
	return &communityService{communityRepo: communityRepo, uploader: uploader}
}

func (s *communityService) Create(ctx context.Context, input CreateCommunityInput) (*models.Community, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidationFailed)
	}
	if input.Email != "" && !isValidEmail(input.Email) {
		return nil, fmt.Errorf("%w: invalid email format", ErrValidationFailed)
	}

	community := &models.Community{
		Name:          input.Name,
		Active:        true,
		ContactPerson: input.ContactPerson,
		Phone:         input.Phone,
		Email:         input.Email,
	}

	if input.AdminUsername != "" {
		community.AdminUsername = &input.AdminUsername
	}
	if input.AdminEmail != "" {
		if !isValidEmail(input.AdminEmail) {
			return nil, fmt.Errorf("%w: invalid admin email format", ErrValidationFailed)
		}
		community.AdminEmail = &input.AdminEmail
	}
	if input.AdminPassword != "" {
		hash, err := hashPassword(input.AdminPassword)
		if err != nil {
			return nil, err
		}
		community.AdminPasswordHash = &hash
	}

	if err := s.communityRepo.Create(ctx, community); err != nil {
		if errors.Is(err, repositories.ErrCommunityNameConflict) {
			return nil, ErrCommunityNameConflict
		}
		return nil, err
	}
	s.attachLogoURL(community)
	return community, nil
}

func (s *communityService) GetByID(ctx context.Context, id int) (*models.Community, error) {
	community, err := s.communityRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrCommunityNotFound) {
			return nil, ErrCommunityNotFound
		}
		return nil, err
	}
	contacts, err := s.communityRepo.ListContacts(ctx, id)
	if err != nil {
		return nil, err
	}
	community.Contacts = contacts
	s.attachLogoURL(community)
	return community, nil
}

func (s *communityService) GetAll(ctx context.Context, activeOnly bool) ([]models.Community, error) {
	communities, err := s.communityRepo.GetAll(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	for i := range communities {
		s.attachLogoURL(&communities[i])
	}
	return communities, nil
}

func (s *communityService) Update(ctx context.Context, id int, input UpdateCommunityInput) (*models.Community, error) {
	community, err := s.communityRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrCommunityNotFound) {
			return nil, ErrCommunityNotFound
		}
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrValidationFailed)
		}
		community.Name = name
	}
	if input.Active != nil {
		community.Active = *input.Active
	}
	if input.ContactPerson != nil {
		community.ContactPerson = *input.ContactPerson
	}
	if input.Phone != nil {
		community.Phone = *input.Phone
	}
	if input.Email != nil {
		if *input.Email != "" && !isValidEmail(*input.Email) {
			return nil, fmt.Errorf("%w: invalid email format", ErrValidationFailed)
		}
		community.Email = *input.Email
	}
	if input.AdminUsername != nil {
		community.AdminUsername = input.AdminUsername
	}
	if input.AdminEmail != nil {
		if *input.AdminEmail != "" && !isValidEmail(*input.AdminEmail) {
			return nil, fmt.Errorf("%w: invalid admin email format", ErrValidationFailed)
		}
		community.AdminEmail = input.AdminEmail
	}
	if input.AdminPassword != nil {
		hash, err := hashPassword(*input.AdminPassword)
		if err != nil {
			return nil, err
		}
		community.AdminPasswordHash = &hash
	}

	if err := s.communityRepo.Update(ctx, community); err != nil {
		if errors.Is(err, repositories.ErrCommunityNameConflict) {
			return nil, ErrCommunityNameConflict
		}
		return nil, err
	}
	s.attachLogoURL(community)
	return community, nil
}

func (s *communityService) Delete(ctx context.Context, id int) error {
	err := s.communityRepo.Delete(ctx, id)
	if errors.Is(err, repositories.ErrCommunityNotFound) {
		return ErrCommunityNotFound
	}
	return err
}

func (s *communityService) UploadLogo(ctx context.Context, id int, file io.Reader, contentType string) (*models.Community, error) {
	community, err := s.communityRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrCommunityNotFound) {
			return nil, ErrCommunityNotFound
		}
		return nil, err
	}

	key := fmt.Sprintf("communities/%d/logo", id)
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload community logo: %w", err)
	}
	if err := s.communityRepo.UpdateLogoKey(ctx, id, &result.Key); err != nil {
		return nil, err
	}
	community.LogoKey = &result.Key
	s.attachLogoURL(community)
	return community, nil
}

func (s *communityService) attachLogoURL(community *models.Community) {
	if community.LogoKey != nil && s.uploader != nil {
		url := s.uploader.GetPublicURL(*community.LogoKey)
		community.LogoURL = &url
	}
}

func (s *communityService) AddContact(ctx context.Context, communityID int, input ContactInput) (*models.CommunityContact, error) {
	if input.Name == "" || input.Phone == "" {
		return nil, fmt.Errorf("%w: contact name and phone are required", ErrValidationFailed)
	}
	if _, err := s.communityRepo.GetByID(ctx, communityID); err != nil {
		if errors.Is(err, repositories.ErrCommunityNotFound) {
			return nil, ErrCommunityNotFound
		}
		return nil, err
	}

	contact := &models.CommunityContact{
		CommunityID: communityID,
		Name:        input.Name,
		Phone:       input.Phone,
		Email:       input.Email,
		Role:        input.Role,
	}
	if err := s.communityRepo.AddContact(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *communityService) ListContacts(ctx context.Context, communityID int) ([]models.CommunityContact, error) {
	if _, err := s.communityRepo.GetByID(ctx, communityID); err != nil {
		if errors.Is(err, repositories.ErrCommunityNotFound) {
			return nil, ErrCommunityNotFound
		}
		return nil, err
	}
	return s.communityRepo.ListContacts(ctx, communityID)
}

func (s *communityService) UpdateContact(ctx context.Context, communityID, contactID int, input ContactInput) (*models.CommunityContact, error) {
	contacts, err := s.ListContacts(ctx, communityID)
	if err != nil {
		return nil, err
	}
	var existing *models.CommunityContact
	for i := range contacts {
		if contacts[i].ID == contactID {
			existing = &contacts[i]
			break
		}
	}
	if existing == nil {
		return nil, ErrNotFound
	}

	if input.Name != "" {
		existing.Name = input.Name
	}
	if input.Phone != "" {
		existing.Phone = input.Phone
	}
	if input.Email != nil {
		existing.Email = input.Email
	}
	if input.Role != nil {
		existing.Role = input.Role
	}
	if err := s.communityRepo.UpdateContact(ctx, existing); err != nil {
		if errors.Is(err, repositories.ErrContactNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return existing, nil
}

func (s *communityService) DeleteContact(ctx context.Context, communityID, contactID int) error {
	contacts, err := s.ListContacts(ctx, communityID)
	if err != nil {
		return err
	}
	for _, c := range contacts {
		if c.ID == contactID {
			if err := s.communityRepo.DeleteContact(ctx, contactID); err != nil {
				if errors.Is(err, repositories.ErrContactNotFound) {
					return ErrNotFound
				}
				return err
			}
			return nil
		}
	}
	return ErrNotFound
}
