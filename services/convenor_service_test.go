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

type fakeConvenorRepo struct {
	convenors map[int]*models.Convenor
	nextID    int
}

func newFakeConvenorRepo() *fakeConvenorRepo {
	return &fakeConvenorRepo{convenors: make(map[int]*models.Convenor)}
}

func (r *fakeConvenorRepo) Create(ctx context.Context, c *models.Convenor) error {
	r.nextID++
	c.ID = r.nextID
	cp := *c
	r.convenors[c.ID] = &cp
	return nil
}

func (r *fakeConvenorRepo) GetByID(ctx context.Context, id int) (*models.Convenor, error) {
	c, ok := r.convenors[id]
	if !ok {
		return nil, repositories.ErrConvenorNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeConvenorRepo) List(ctx context.Context, sportID *int) ([]models.Convenor, error) {
	var out []models.Convenor
	for _, c := range r.convenors {
		if sportID != nil && c.SportID != *sportID {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeConvenorRepo) Update(ctx context.Context, c *models.Convenor) error {
	if _, ok := r.convenors[c.ID]; !ok {
		return repositories.ErrConvenorNotFound
	}
	cp := *c
	r.convenors[c.ID] = &cp
	return nil
}

func (r *fakeConvenorRepo) Delete(ctx context.Context, id int) error {
	if _, ok := r.convenors[id]; !ok {
		return repositories.ErrConvenorNotFound
	}
	delete(r.convenors, id)
	return nil
}

func TestConvenorLifecycle(t *testing.T) {
	ctx := context.Background()
	sportRepo := seedTaxonomy(t)
	svc := NewConvenorService(newFakeConvenorRepo(), sportRepo)

	t.Run("create", func(t *testing.T) {
		convenor, err := svc.Create(ctx, ConvenorInput{
			Name:    " Rohan Iyer ",
			Phone:   "9876501234",
			Email:   strPtr("rohan@example.com"),
			SportID: 6,
		})
		require.NoError(t, err)
		assert.Equal(t, "Rohan Iyer", convenor.Name)
		assert.Equal(t, 6, convenor.SportID)
	})

	t.Run("name and phone required", func(t *testing.T) {
		_, err := svc.Create(ctx, ConvenorInput{Name: "Rohan Iyer", SportID: 6})
		assert.ErrorIs(t, err, ErrValidationFailed)

		_, err = svc.Create(ctx, ConvenorInput{Phone: "9876501234", SportID: 6})
		assert.ErrorIs(t, err, ErrValidationFailed)
	})

	t.Run("email must be well formed", func(t *testing.T) {
		_, err := svc.Create(ctx, ConvenorInput{
			Name:    "Rohan Iyer",
			Phone:   "9876501234",
			Email:   strPtr("not-an-address"),
			SportID: 6,
		})
		assert.ErrorIs(t, err, ErrValidationFailed)
	})

	t.Run("unknown sport", func(t *testing.T) {
		_, err := svc.Create(ctx, ConvenorInput{Name: "Rohan Iyer", Phone: "9876501234", SportID: 99})
		assert.ErrorIs(t, err, ErrSportNotFound)
	})

	t.Run("list filtered by sport", func(t *testing.T) {
		_, err := svc.Create(ctx, ConvenorInput{Name: "Leela Menon", Phone: "9876509999", SportID: 2})
		require.NoError(t, err)

		all, err := svc.List(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		chess, err := svc.List(ctx, intPtr(6))
		require.NoError(t, err)
		require.Len(t, chess, 1)
		assert.Equal(t, "Rohan Iyer", chess[0].Name)
	})

	t.Run("update", func(t *testing.T) {
		convenor, err := svc.Update(ctx, 1, ConvenorInput{Name: "Rohan Iyer", Phone: "9000000000", SportID: 6})
		require.NoError(t, err)
		assert.Equal(t, "9000000000", convenor.Phone)
	})

	t.Run("update missing convenor", func(t *testing.T) {
		_, err := svc.Update(ctx, 15, ConvenorInput{Name: "Ghost", Phone: "9", SportID: 6})
		assert.ErrorIs(t, err, ErrConvenorNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, 2))
		assert.ErrorIs(t, svc.Delete(ctx, 2), ErrConvenorNotFound)
	})
}
