package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sportsfest/registration-system/models"
)

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func boolPtr(v bool) *bool { return &v }

// seedTaxonomy builds a small two-level tree:
//
//	Athletics (1) -> 100m (2), Long Jump (3)
//	Swimming  (4) -> 100m (5)
//	Chess     (6)
//	Archived  (7, inactive)
func seedTaxonomy(t *testing.T) *fakeSportRepo {
	t.Helper()
	repo := newFakeSportRepo()
	athletics := repo.add(models.Sport{Name: "Athletics", Type: models.SportTypeIndividual, Active: true})
	repo.add(models.Sport{Name: "100m", Type: models.SportTypeIndividual, ParentID: &athletics.ID, Active: true})
	repo.add(models.Sport{Name: "Long Jump", Type: models.SportTypeIndividual, ParentID: &athletics.ID, Active: true})
	swimming := repo.add(models.Sport{Name: "Swimming", Type: models.SportTypeIndividual, Active: true})
	repo.add(models.Sport{Name: "100m", Type: models.SportTypeIndividual, ParentID: &swimming.ID, Active: true})
	repo.add(models.Sport{Name: "Chess", Type: models.SportTypeIndividual, Active: true})
	repo.add(models.Sport{Name: "Archived", Type: models.SportTypeTeam, Active: false})
	return repo
}

func TestResolveLabels(t *testing.T) {
	ctx := context.Background()
	svc := NewSportService(seedTaxonomy(t), nil)

	t.Run("bare label resolves when unique", func(t *testing.T) {
		ids, err := svc.ResolveLabels(ctx, []string{"Chess", "long jump"})
		require.NoError(t, err)
		assert.Equal(t, []int{6, 3}, ids)
	})

	t.Run("qualified label picks the child under the named parent", func(t *testing.T) {
		ids, err := svc.ResolveLabels(ctx, []string{"Athletics - 100m", "Swimming - 100m"})
		require.NoError(t, err)
		assert.Equal(t, []int{2, 5}, ids)
	})

	t.Run("labels are trimmed and blanks skipped", func(t *testing.T) {
		ids, err := svc.ResolveLabels(ctx, []string{"  chess  ", "", "   "})
		require.NoError(t, err)
		assert.Equal(t, []int{6}, ids)
	})

	t.Run("ambiguous bare label is reported", func(t *testing.T) {
		_, err := svc.ResolveLabels(ctx, []string{"100m"})
		var resErr *ResolutionError
		require.ErrorAs(t, err, &resErr)
		assert.Equal(t, []string{"100m"}, resErr.Ambiguous)
		assert.Contains(t, err.Error(), "ambiguous sports")
	})

	t.Run("unknown labels are all collected", func(t *testing.T) {
		_, err := svc.ResolveLabels(ctx, []string{"Cricket", "Chess", "Polo"})
		var resErr *ResolutionError
		require.ErrorAs(t, err, &resErr)
		assert.Equal(t, []string{"Cricket", "Polo"}, resErr.Missing)
	})

	t.Run("qualified label with unknown parent is missing", func(t *testing.T) {
		_, err := svc.ResolveLabels(ctx, []string{"Gymnastics - Floor"})
		var resErr *ResolutionError
		require.ErrorAs(t, err, &resErr)
		assert.Equal(t, []string{"Gymnastics - Floor"}, resErr.Missing)
	})

	t.Run("qualified label with wrong parent is missing", func(t *testing.T) {
		_, err := svc.ResolveLabels(ctx, []string{"Swimming - Long Jump"})
		var resErr *ResolutionError
		require.ErrorAs(t, err, &resErr)
		assert.Equal(t, []string{"Swimming - Long Jump"}, resErr.Missing)
	})
}

func TestDeclareIncompatibility(t *testing.T) {
	ctx := context.Background()
	repo := seedTaxonomy(t)
	svc := NewSportService(repo, nil)

	t.Run("sport cannot conflict with itself", func(t *testing.T) {
		assert.ErrorIs(t, svc.DeclareIncompatibility(ctx, 2, 2), ErrSelfIncompatibility)
	})

	t.Run("both sports must exist", func(t *testing.T) {
		assert.ErrorIs(t, svc.DeclareIncompatibility(ctx, 2, 99), ErrSportNotFound)
		assert.ErrorIs(t, svc.DeclareIncompatibility(ctx, 99, 2), ErrSportNotFound)
	})

	t.Run("edge is visible from both sides", func(t *testing.T) {
		require.NoError(t, svc.DeclareIncompatibility(ctx, 2, 5))

		ids, err := repo.ListIncompatibleIDs(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, []int{5}, ids)

		ids, err = repo.ListIncompatibleIDs(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, []int{2}, ids)
	})

	t.Run("removal clears both directions", func(t *testing.T) {
		require.NoError(t, svc.DeclareIncompatibility(ctx, 3, 6))
		require.NoError(t, svc.RemoveIncompatibility(ctx, 6, 3))

		ids, err := repo.ListIncompatibleIDs(ctx, 3)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})
}

func TestCheckCompatibility(t *testing.T) {
	ctx := context.Background()
	repo := seedTaxonomy(t)
	svc := NewSportService(repo, nil)
	require.NoError(t, svc.DeclareIncompatibility(ctx, 2, 5))

	t.Run("fewer than two sports always pass", func(t *testing.T) {
		assert.NoError(t, svc.CheckCompatibility(ctx, nil))
		assert.NoError(t, svc.CheckCompatibility(ctx, []int{2}))
	})

	t.Run("unrelated sports pass", func(t *testing.T) {
		assert.NoError(t, svc.CheckCompatibility(ctx, []int{2, 3, 6}))
	})

	t.Run("conflicting pair is named regardless of order", func(t *testing.T) {
		for _, ids := range [][]int{{2, 5}, {5, 2}, {6, 5, 2}} {
			err := svc.CheckCompatibility(ctx, ids)
			var incompatErr *IncompatibilityError
			require.ErrorAs(t, err, &incompatErr)
			assert.Equal(t, "100m", incompatErr.SportA)
			assert.Equal(t, "100m", incompatErr.SportB)
		}
	})
}

func TestValidateSelection(t *testing.T) {
	ctx := context.Background()
	repo := seedTaxonomy(t)
	svc := NewSportService(repo, nil)
	require.NoError(t, svc.DeclareIncompatibility(ctx, 2, 5))

	t.Run("empty selection", func(t *testing.T) {
		assert.ErrorIs(t, svc.ValidateSelection(ctx, nil), ErrSportSelectionEmpty)
	})

	t.Run("unknown sport", func(t *testing.T) {
		err := svc.ValidateSelection(ctx, models.SportSelectionList{{SportID: 99}})
		assert.ErrorIs(t, err, ErrSportNotFound)
	})

	t.Run("inactive sport", func(t *testing.T) {
		err := svc.ValidateSelection(ctx, models.SportSelectionList{{SportID: 7}})
		assert.ErrorIs(t, err, ErrSportInactive)
		assert.Contains(t, err.Error(), "Archived")
	})

	t.Run("incompatible pair", func(t *testing.T) {
		err := svc.ValidateSelection(ctx, models.SportSelectionList{{SportID: 2}, {SportID: 5}})
		var incompatErr *IncompatibilityError
		assert.ErrorAs(t, err, &incompatErr)
	})

	t.Run("valid selection", func(t *testing.T) {
		err := svc.ValidateSelection(ctx, models.SportSelectionList{{SportID: 2}, {SportID: 6}})
		assert.NoError(t, err)
	})
}

func TestCreateSport(t *testing.T) {
	ctx := context.Background()

	t.Run("name and type are required", func(t *testing.T) {
		svc := NewSportService(seedTaxonomy(t), nil)
		_, err := svc.CreateSport(ctx, CreateSportInput{Name: "  ", Type: models.SportTypeTeam})
		assert.ErrorIs(t, err, ErrSportNameRequired)

		_, err = svc.CreateSport(ctx, CreateSportInput{Name: "Kabaddi", Type: "mixed"})
		assert.ErrorIs(t, err, ErrSportTypeInvalid)
	})

	t.Run("parent must exist and be top-level", func(t *testing.T) {
		svc := NewSportService(seedTaxonomy(t), nil)
		_, err := svc.CreateSport(ctx, CreateSportInput{Name: "200m", Type: models.SportTypeIndividual, ParentID: intPtr(99)})
		assert.ErrorIs(t, err, ErrSportNotFound)

		_, err = svc.CreateSport(ctx, CreateSportInput{Name: "Relay Leg", Type: models.SportTypeIndividual, ParentID: intPtr(2)})
		assert.ErrorIs(t, err, ErrSportParentIsChild)
	})

	t.Run("created sport defaults to active", func(t *testing.T) {
		svc := NewSportService(seedTaxonomy(t), nil)
		sport, err := svc.CreateSport(ctx, CreateSportInput{Name: "200m", Type: models.SportTypeIndividual, ParentID: intPtr(1)})
		require.NoError(t, err)
		assert.True(t, sport.Active)
		assert.Equal(t, 1, *sport.ParentID)
	})

	t.Run("admin password is hashed, never stored raw", func(t *testing.T) {
		svc := NewSportService(seedTaxonomy(t), nil)
		sport, err := svc.CreateSport(ctx, CreateSportInput{
			Name:          "Badminton",
			Type:          models.SportTypeIndividual,
			AdminUsername: strPtr("badminton.admin"),
			AdminPassword: strPtr("shuttle-secret"),
		})
		require.NoError(t, err)
		require.NotNil(t, sport.AdminPasswordHash)
		assert.NotEqual(t, "shuttle-secret", *sport.AdminPasswordHash)
		assert.True(t, checkPassword(*sport.AdminPasswordHash, "shuttle-secret"))
	})
}

func TestUpdateSportParentRules(t *testing.T) {
	ctx := context.Background()
	svc := NewSportService(seedTaxonomy(t), nil)

	t.Run("sport cannot become its own parent", func(t *testing.T) {
		_, err := svc.UpdateSport(ctx, 1, UpdateSportInput{ParentID: intPtr(1)})
		assert.ErrorIs(t, err, ErrSportParentIsChild)
	})

	t.Run("category with children cannot be demoted", func(t *testing.T) {
		_, err := svc.UpdateSport(ctx, 1, UpdateSportInput{ParentID: intPtr(4)})
		assert.ErrorIs(t, err, ErrSportTreeTooDeep)
	})

	t.Run("childless sport may be moved under a category", func(t *testing.T) {
		sport, err := svc.UpdateSport(ctx, 6, UpdateSportInput{ParentID: intPtr(4)})
		require.NoError(t, err)
		assert.Equal(t, 4, *sport.ParentID)
	})
}

func TestGetSportTree(t *testing.T) {
	ctx := context.Background()
	svc := NewSportService(seedTaxonomy(t), nil)

	roots, err := svc.GetSportTree(ctx, true)
	require.NoError(t, err)

	byName := make(map[string]models.Sport, len(roots))
	for _, root := range roots {
		assert.Nil(t, root.ParentID)
		byName[root.Name] = root
	}
	require.Contains(t, byName, "Athletics")
	require.Contains(t, byName, "Swimming")
	require.Contains(t, byName, "Chess")
	assert.NotContains(t, byName, "Archived")

	assert.Len(t, byName["Athletics"].Children, 2)
	assert.Len(t, byName["Swimming"].Children, 1)
	assert.Empty(t, byName["Chess"].Children)
}

func TestUploadSportLogo(t *testing.T) {
	ctx := context.Background()
	uploader := newFakeUploader()
	svc := NewSportService(seedTaxonomy(t), uploader)

	sport, err := svc.UploadSportLogo(ctx, 6, bytes.NewReader([]byte("png-bytes")), "image/png")
	require.NoError(t, err)

	require.NotNil(t, sport.LogoKey)
	assert.Equal(t, "sports/6/logo", *sport.LogoKey)
	require.NotNil(t, sport.LogoURL)
	assert.Equal(t, "https://cdn.test/sports/6/logo", *sport.LogoURL)
	assert.Equal(t, []byte("png-bytes"), uploader.uploads["sports/6/logo"])

	_, err = svc.UploadSportLogo(ctx, 99, bytes.NewReader(nil), "image/png")
	assert.ErrorIs(t, err, ErrSportNotFound)
}
