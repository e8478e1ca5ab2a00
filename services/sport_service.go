package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/sportsfest/registration-system/models"
	"github.com/sportsfest/registration-system/repositories"
	"github.com/sportsfest/registration-system/storage"
)

// qualifiedSeparator joins "Parent - Child" labels on the bulk-upload path.
const qualifiedSeparator = " - "

// ResolutionError carries every label of a row that failed to resolve, so
// the caller reports one error per row rather than one per label.
type ResolutionError struct {
	Missing   []string
	Ambiguous []string
}

func (e *ResolutionError) Error() string {
	parts := make([]string, 0, 2)
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("unknown sports: %s", strings.Join(quoteAll(e.Missing), ", ")))
	}
	if len(e.Ambiguous) > 0 {
		parts = append(parts, fmt.Sprintf("ambiguous sports: %s (use the %q form)",
			strings.Join(quoteAll(e.Ambiguous), ", "), "Parent - Child"))
	}
	return strings.Join(parts, "; ")
}

func quoteAll(labels []string) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = fmt.Sprintf("%q", l)
	}
	return out
}

// IncompatibilityError names the first conflicting pair found in a selection.
type IncompatibilityError struct {
	SportA string
	SportB string
}

func (e *IncompatibilityError) Error() string {
	return fmt.Sprintf("sports %q and %q cannot be selected together", e.SportA, e.SportB)
}

type CreateSportInput struct {
	Name     string           `json:"name"`
	Type     models.SportType `json:"type"`
	ParentID *int             `json:"parent_id"`
	Active   *bool            `json:"active"`
	Venue    *string          `json:"venue"`
	Timings  *string          `json:"timings"`
	Date     *time.Time       `json:"date"`
	Gender   *string          `json:"gender"`
	MinAge   *int             `json:"min_age"`
	MaxAge   *int             `json:"max_age"`

	AdminUsername *string `json:"admin_username"`
	AdminEmail    *string `json:"admin_email"`
	AdminPassword *string `json:"admin_password"`
}

type UpdateSportInput struct {
	Name     *string           `json:"name"`
	Type     *models.SportType `json:"type"`
	ParentID *int              `json:"parent_id"`
	Active   *bool             `json:"active"`
	Venue    *string           `json:"venue"`
	Timings  *string           `json:"timings"`
	Date     *time.Time        `json:"date"`
	Gender   *string           `json:"gender"`
	MinAge   *int              `json:"min_age"`
	MaxAge   *int              `json:"max_age"`

	AdminUsername *string `json:"admin_username"`
	AdminEmail    *string `json:"admin_email"`
	AdminPassword *string `json:"admin_password"`
}

type SportService interface {
	CreateSport(ctx context.Context, input CreateSportInput) (*models.Sport, error)
	GetSportByID(ctx context.Context, id int) (*models.Sport, error)
	GetAllSports(ctx context.Context, activeOnly bool) ([]models.Sport, error)
	GetSportTree(ctx context.Context, activeOnly bool) ([]models.Sport, error)
	UpdateSport(ctx context.Context, id int, input UpdateSportInput) (*models.Sport, error)
	DeleteSport(ctx context.Context, id int) error
	UploadSportLogo(ctx context.Context, sportID int, file io.Reader, contentType string) (*models.Sport, error)

	DeclareIncompatibility(ctx context.Context, sportID, otherID int) error
	RemoveIncompatibility(ctx context.Context, sportID, otherID int) error

	// ResolveLabels turns free-text sport labels from a bulk-upload row into
	// sport IDs, accumulating every failing label into one ResolutionError.
	ResolveLabels(ctx context.Context, labels []string) ([]int, error)

	// CheckCompatibility rejects a selection containing any pair declared
	// incompatible, in either edge direction.
	CheckCompatibility(ctx context.Context, sportIDs []int) error

	// ValidateSelection verifies that every selected sport exists and is
	// active, then runs the compatibility check.
	ValidateSelection(ctx context.Context, selection models.SportSelectionList) error
}

type sportService struct {
	sportRepo repositories.SportRepository
	uploader  storage.FileUploader
}

func NewSportService(sportRepo repositories.SportRepository, uploader storage.FileUploader) SportService {
	return &sportService{sportRepo: sportRepo, uploader: uploader}
}

func (s *sportService) CreateSport(ctx context.Context, input CreateSportInput) (*models.Sport, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrSportNameRequired
	}
	if !input.Type.Valid() {
		return nil, ErrSportTypeInvalid
	}
	if err := s.validateParent(ctx, input.ParentID, 0); err != nil {
		return nil, err
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}

	sport := &models.Sport{
		Name:          name,
		Type:          input.Type,
		ParentID:      input.ParentID,
		Active:        active,
		Venue:         input.Venue,
		Timings:       input.Timings,
		Date:          input.Date,
		Gender:        input.Gender,
		MinAge:        input.MinAge,
		MaxAge:        input.MaxAge,
		AdminUsername: input.AdminUsername,
		AdminEmail:    input.AdminEmail,
	}

	if input.AdminPassword != nil {
		hash, err := hashPassword(*input.AdminPassword)
		if err != nil {
			return nil, err
		}
		sport.AdminPasswordHash = &hash
	}

	if err := s.sportRepo.Create(ctx, sport); err != nil {
		if errors.Is(err, repositories.ErrSportNameConflict) {
			return nil, ErrSportNameConflict
		}
		if errors.Is(err, repositories.ErrSportNotFound) {
			return nil, ErrSportNotFound
		}
		return nil, fmt.Errorf("failed to create sport: %w", err)
	}
	s.attachLogoURL(sport)
	return sport, nil
}

// validateParent enforces the two-level taxonomy: a parent must exist and
// must itself be top-level. selfID guards against a sport becoming its own
// parent on update.
func (s *sportService) validateParent(ctx context.Context, parentID *int, selfID int) error {
	if parentID == nil {
		return nil
	}
	if selfID != 0 && *parentID == selfID {
		return ErrSportParentIsChild
	}
	parent, err := s.sportRepo.GetByID(ctx, *parentID)
	if err != nil {
		if errors.Is(err, repositories.ErrSportNotFound) {
			return ErrSportNotFound
		}
		return err
	}
	if parent.IsChild() {
		return ErrSportParentIsChild
	}
	if selfID != 0 {
		children, err := s.sportRepo.ListByParent(ctx, selfID)
		if err != nil {
			return err
		}
		if len(children) > 0 {
			return ErrSportTreeTooDeep
		}
	}
	return nil
}

func (s *sportService) GetSportByID(ctx context.Context, id int) (*models.Sport, error) {
	sport, err := s.sportRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrSportNotFound) {
			return nil, ErrSportNotFound
		}
		return nil, err
	}
	if sport.IncompatibleSportIDs, err = s.sportRepo.ListIncompatibleIDs(ctx, id); err != nil {
		return nil, err
	}
	s.attachLogoURL(sport)
	return sport, nil
}

func (s *sportService) GetAllSports(ctx context.Context, activeOnly bool) ([]models.Sport, error) {
	sports, err := s.sportRepo.GetAll(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	for i := range sports {
		s.attachLogoURL(&sports[i])
	}
	return sports, nil
}

// GetSportTree returns top-level sports with their children nested.
func (s *sportService) GetSportTree(ctx context.Context, activeOnly bool) ([]models.Sport, error) {
	sports, err := s.GetAllSports(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	byParent := make(map[int][]models.Sport)
	roots := make([]models.Sport, 0)
	for _, sp := range sports {
		if sp.ParentID != nil {
			byParent[*sp.ParentID] = append(byParent[*sp.ParentID], sp)
		}
	}
	for _, sp := range sports {
		if sp.ParentID == nil {
			sp.Children = byParent[sp.ID]
			roots = append(roots, sp)
		}
	}
	return roots, nil
}

func (s *sportService) UpdateSport(ctx context.Context, id int, input UpdateSportInput) (*models.Sport, error) {
	sport, err := s.sportRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrSportNotFound) {
			return nil, ErrSportNotFound
		}
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrSportNameRequired
		}
		sport.Name = name
	}
	if input.Type != nil {
		if !input.Type.Valid() {
			return nil, ErrSportTypeInvalid
		}
		sport.Type = *input.Type
	}
	if input.ParentID != nil {
		if err := s.validateParent(ctx, input.ParentID, id); err != nil {
			return nil, err
		}
		sport.ParentID = input.ParentID
	}
	if input.Active != nil {
		sport.Active = *input.Active
	}
	if input.Venue != nil {
		sport.Venue = input.Venue
	}
	if input.Timings != nil {
		sport.Timings = input.Timings
	}
	if input.Date != nil {
		sport.Date = input.Date
	}
	if input.Gender != nil {
		sport.Gender = input.Gender
	}
	if input.MinAge != nil {
		sport.MinAge = input.MinAge
	}
	if input.MaxAge != nil {
		sport.MaxAge = input.MaxAge
	}
	if input.AdminUsername != nil {
		sport.AdminUsername = input.AdminUsername
	}
	if input.AdminEmail != nil {
		sport.AdminEmail = input.AdminEmail
	}
	if input.AdminPassword != nil {
		hash, err := hashPassword(*input.AdminPassword)
		if err != nil {
			return nil, err
		}
		sport.AdminPasswordHash = &hash
	}

	if err := s.sportRepo.Update(ctx, sport); err != nil {
		switch {
		case errors.Is(err, repositories.ErrSportNotFound):
			return nil, ErrSportNotFound
		case errors.Is(err, repositories.ErrSportNameConflict):
			return nil, ErrSportNameConflict
		}
		return nil, fmt.Errorf("failed to update sport: %w", err)
	}
	s.attachLogoURL(sport)
	return sport, nil
}

func (s *sportService) DeleteSport(ctx context.Context, id int) error {
	err := s.sportRepo.Delete(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrSportNotFound):
			return ErrSportNotFound
		case errors.Is(err, repositories.ErrSportInUse):
			return err
		}
		return fmt.Errorf("failed to delete sport: %w", err)
	}
	return nil
}

func (s *sportService) UploadSportLogo(ctx context.Context, sportID int, file io.Reader, contentType string) (*models.Sport, error) {
	sport, err := s.sportRepo.GetByID(ctx, sportID)
	if err != nil {
		if errors.Is(err, repositories.ErrSportNotFound) {
			return nil, ErrSportNotFound
		}
		return nil, err
	}

	key := fmt.Sprintf("sports/%d/logo", sportID)
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload sport logo: %w", err)
	}
	if err := s.sportRepo.UpdateLogoKey(ctx, sportID, &result.Key); err != nil {
		return nil, err
	}
	sport.LogoKey = &result.Key
	s.attachLogoURL(sport)
	return sport, nil
}

func (s *sportService) attachLogoURL(sport *models.Sport) {
	if sport.LogoKey != nil && s.uploader != nil {
		url := s.uploader.GetPublicURL(*sport.LogoKey)
		sport.LogoURL = &url
	}
}

func (s *sportService) DeclareIncompatibility(ctx context.Context, sportID, otherID int) error {
	if sportID == otherID {
		return ErrSelfIncompatibility
	}
	for _, id := range []int{sportID, otherID} {
		if _, err := s.sportRepo.GetByID(ctx, id); err != nil {
			if errors.Is(err, repositories.ErrSportNotFound) {
				return ErrSportNotFound
			}
			return err
		}
	}
	return s.sportRepo.AddIncompatibility(ctx, sportID, otherID)
}

func (s *sportService) RemoveIncompatibility(ctx context.Context, sportID, otherID int) error {
	return s.sportRepo.RemoveIncompatibility(ctx, sportID, otherID)
}

func (s *sportService) ResolveLabels(ctx context.Context, labels []string) ([]int, error) {
	sports, err := s.sportRepo.GetAll(ctx, true)
	if err != nil {
		return nil, err
	}

	byLowerName := make(map[string][]models.Sport)
	byID := make(map[int]models.Sport, len(sports))
	for _, sp := range sports {
		byLowerName[strings.ToLower(sp.Name)] = append(byLowerName[strings.ToLower(sp.Name)], sp)
		byID[sp.ID] = sp
	}

	resErr := &ResolutionError{}
	ids := make([]int, 0, len(labels))

	for _, raw := range labels {
		label := strings.TrimSpace(raw)
		if label == "" {
			continue
		}

		if strings.Contains(label, qualifiedSeparator) {
			parts := strings.SplitN(label, qualifiedSeparator, 2)
			parentName := strings.ToLower(strings.TrimSpace(parts[0]))
			childName := strings.ToLower(strings.TrimSpace(parts[1]))

			var parent *models.Sport
			for _, cand := range byLowerName[parentName] {
				if cand.ParentID == nil {
					parent = &cand
					break
				}
			}
			if parent == nil {
				resErr.Missing = append(resErr.Missing, label)
				continue
			}

			found := false
			for _, cand := range byLowerName[childName] {
				if cand.ParentID != nil && *cand.ParentID == parent.ID {
					ids = append(ids, cand.ID)
					found = true
					break
				}
			}
			if !found {
				resErr.Missing = append(resErr.Missing, label)
			}
			continue
		}

		matches := byLowerName[strings.ToLower(label)]
		switch len(matches) {
		case 0:
			resErr.Missing = append(resErr.Missing, label)
		case 1:
			ids = append(ids, matches[0].ID)
		default:
			resErr.Ambiguous = append(resErr.Ambiguous, label)
		}
	}

	if len(resErr.Missing) > 0 || len(resErr.Ambiguous) > 0 {
		return nil, resErr
	}
	return ids, nil
}

func (s *sportService) CheckCompatibility(ctx context.Context, sportIDs []int) error {
	if len(sportIDs) < 2 {
		return nil
	}
	pairs, err := s.sportRepo.IncompatiblePairsWithin(ctx, sportIDs)
	if err != nil {
		return err
	}
	if len(pairs) == 0 {
		return nil
	}

	// Deterministic "first" conflict regardless of read order.
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
	pair := pairs[0]

	names := [2]string{fmt.Sprintf("sport %d", pair[0]), fmt.Sprintf("sport %d", pair[1])}
	for i, id := range pair {
		if sp, err := s.sportRepo.GetByID(ctx, id); err == nil {
			names[i] = sp.Name
		}
	}
	return &IncompatibilityError{SportA: names[0], SportB: names[1]}
}

func (s *sportService) ValidateSelection(ctx context.Context, selection models.SportSelectionList) error {
	if len(selection) == 0 {
		return ErrSportSelectionEmpty
	}
	ids := selection.SportIDs()
	for _, id := range ids {
		sport, err := s.sportRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrSportNotFound) {
				return fmt.Errorf("%w: sport %d", ErrSportNotFound, id)
			}
			return err
		}
		if !sport.Active {
			return fmt.Errorf("%w: %s", ErrSportInactive, sport.Name)
		}
	}
	return s.CheckCompatibility(ctx, ids)
}
