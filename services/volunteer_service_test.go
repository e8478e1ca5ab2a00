package services

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sportsfest/registration-system/models"
	"github.com/sportsfest/registration-system/repositories"
)

type fakeVolunteerRepo struct {
	nextID     int
	volunteers map[int]*models.Volunteer
	nextDeptID int
	depts      map[int]*models.Department
}

func newFakeVolunteerRepo() *fakeVolunteerRepo {
	return &fakeVolunteerRepo{
		volunteers: make(map[int]*models.Volunteer),
		depts:      make(map[int]*models.Department),
	}
}

func (r *fakeVolunteerRepo) Create(ctx context.Context, v *models.Volunteer) error {
	if _, ok := r.depts[v.DepartmentID]; !ok {
		return repositories.ErrVolunteerDeptInvalid
	}
	r.nextID++
	v.ID = r.nextID
	cp := *v
	r.volunteers[v.ID] = &cp
	return nil
}

func (r *fakeVolunteerRepo) GetByID(ctx context.Context, id int) (*models.Volunteer, error) {
	v, ok := r.volunteers[id]
	if !ok {
		return nil, repositories.ErrVolunteerNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *fakeVolunteerRepo) GetByUserID(ctx context.Context, userID int) (*models.Volunteer, error) {
	for _, v := range r.volunteers {
		if v.UserID != nil && *v.UserID == userID {
			cp := *v
			return &cp, nil
		}
	}
	return nil, repositories.ErrVolunteerNotFound
}

func (r *fakeVolunteerRepo) List(ctx context.Context, filter repositories.VolunteerFilter) ([]models.Volunteer, error) {
	out := make([]models.Volunteer, 0)
	for _, v := range r.volunteers {
		if filter.DepartmentID != nil && v.DepartmentID != *filter.DepartmentID {
			continue
		}
		if filter.SportID != nil && (v.SportID == nil || *v.SportID != *filter.SportID) {
			continue
		}
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeVolunteerRepo) Update(ctx context.Context, v *models.Volunteer) error {
	if _, ok := r.volunteers[v.ID]; !ok {
		return repositories.ErrVolunteerNotFound
	}
	if _, ok := r.depts[v.DepartmentID]; !ok {
		return repositories.ErrVolunteerDeptInvalid
	}
	cp := *v
	r.volunteers[v.ID] = &cp
	return nil
}

func (r *fakeVolunteerRepo) Delete(ctx context.Context, id int) error {
	if _, ok := r.volunteers[id]; !ok {
		return repositories.ErrVolunteerNotFound
	}
	delete(r.volunteers, id)
	return nil
}

func (r *fakeVolunteerRepo) CreateDepartment(ctx context.Context, d *models.Department) error {
	for _, existing := range r.depts {
		if existing.Name == d.Name {
			return repositories.ErrDepartmentNameConflict
		}
	}
	r.nextDeptID++
	d.ID = r.nextDeptID
	cp := *d
	r.depts[d.ID] = &cp
	return nil
}

func (r *fakeVolunteerRepo) ListDepartments(ctx context.Context) ([]models.Department, error) {
	out := make([]models.Department, 0, len(r.depts))
	for _, d := range r.depts {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeVolunteerRepo) DeleteDepartment(ctx context.Context, id int) error {
	if _, ok := r.depts[id]; !ok {
		return repositories.ErrDepartmentNotFound
	}
	delete(r.depts, id)
	return nil
}

func newVolunteerFixture(t *testing.T) (VolunteerService, *fakeVolunteerRepo) {
	t.Helper()
	repo := newFakeVolunteerRepo()
	repo.depts[1] = &models.Department{ID: 1, Name: "Logistics"}
	repo.nextDeptID = 1
	return NewVolunteerService(repo, seedTaxonomy(t)), repo
}

func validVolunteer() VolunteerInput {
	return VolunteerInput{
		FirstName:    "Ben",
		LastName:     "Thomas",
		Gender:       "male",
		DateOfBirth:  "1998-11-20",
		Email:        "ben@example.com",
		Phone:        "+919876543210",
		DepartmentID: 1,
	}
}

func TestVolunteerCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("volunteer is created", func(t *testing.T) {
		svc, _ := newVolunteerFixture(t)
		input := validVolunteer()
		input.SportID = intPtr(6)
		v, err := svc.Create(ctx, input)
		require.NoError(t, err)
		assert.NotZero(t, v.ID)
		assert.Equal(t, 1998, v.DateOfBirth.Year())
	})

	t.Run("missing fields reported together", func(t *testing.T) {
		svc, _ := newVolunteerFixture(t)
		_, err := svc.Create(ctx, VolunteerInput{DateOfBirth: "1998-11-20"})
		require.ErrorIs(t, err, ErrValidationFailed)
		assert.Contains(t, err.Error(), "first_name")
		assert.Contains(t, err.Error(), "department_id")
	})

	t.Run("date of birth must be YYYY-MM-DD", func(t *testing.T) {
		svc, _ := newVolunteerFixture(t)
		input := validVolunteer()
		input.DateOfBirth = "20/11/1998"
		_, err := svc.Create(ctx, input)
		require.ErrorIs(t, err, ErrValidationFailed)
		assert.Contains(t, err.Error(), "YYYY-MM-DD")
	})

	t.Run("unknown sport", func(t *testing.T) {
		svc, _ := newVolunteerFixture(t)
		input := validVolunteer()
		input.SportID = intPtr(99)
		_, err := svc.Create(ctx, input)
		assert.ErrorIs(t, err, ErrSportNotFound)
	})

	t.Run("unknown department", func(t *testing.T) {
		svc, _ := newVolunteerFixture(t)
		input := validVolunteer()
		input.DepartmentID = 42
		_, err := svc.Create(ctx, input)
		assert.ErrorIs(t, err, ErrDepartmentNotFound)
	})
}

func TestVolunteerListFilters(t *testing.T) {
	ctx := context.Background()
	svc, repo := newVolunteerFixture(t)
	repo.depts[2] = &models.Department{ID: 2, Name: "First Aid"}

	first := validVolunteer()
	first.SportID = intPtr(6)
	_, err := svc.Create(ctx, first)
	require.NoError(t, err)

	second := validVolunteer()
	second.Email = "cara@example.com"
	second.DepartmentID = 2
	_, err = svc.Create(ctx, second)
	require.NoError(t, err)

	byDept, err := svc.List(ctx, repositories.VolunteerFilter{DepartmentID: intPtr(2)})
	require.NoError(t, err)
	require.Len(t, byDept, 1)
	assert.Equal(t, "cara@example.com", byDept[0].Email)

	bySport, err := svc.List(ctx, repositories.VolunteerFilter{SportID: intPtr(6)})
	require.NoError(t, err)
	require.Len(t, bySport, 1)
	assert.Equal(t, "ben@example.com", bySport[0].Email)
}

func TestDepartments(t *testing.T) {
	ctx := context.Background()
	svc, _ := newVolunteerFixture(t)

	t.Run("name is required", func(t *testing.T) {
		_, err := svc.CreateDepartment(ctx, "   ")
		assert.ErrorIs(t, err, ErrValidationFailed)
	})

	t.Run("create, list, delete", func(t *testing.T) {
		dept, err := svc.CreateDepartment(ctx, " Scorekeeping ")
		require.NoError(t, err)
		assert.Equal(t, "Scorekeeping", dept.Name)

		depts, err := svc.ListDepartments(ctx)
		require.NoError(t, err)
		assert.Len(t, depts, 2)

		require.NoError(t, svc.DeleteDepartment(ctx, dept.ID))
		assert.ErrorIs(t, svc.DeleteDepartment(ctx, dept.ID), ErrDepartmentNotFound)
	})
}
