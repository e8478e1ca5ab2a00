package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sportsfest/registration-system/models"
)

type leaderboardFixture struct {
	svc  LeaderboardService
	repo *fakeLeaderboardRepo
}

func newLeaderboardFixture(t *testing.T) *leaderboardFixture {
	t.Helper()
	communityRepo := newFakeCommunityRepo()
	communityRepo.add(models.Community{Name: "Riverside", Active: true})
	communityRepo.add(models.Community{Name: "Hilltop", Active: true})

	repo := newFakeLeaderboardRepo()
	return &leaderboardFixture{
		repo: repo,
		svc:  NewLeaderboardService(repo, communityRepo, seedTaxonomy(t), nil),
	}
}

func TestLeaderboardUpsert(t *testing.T) {
	ctx := context.Background()

	t.Run("entry is recorded", func(t *testing.T) {
		f := newLeaderboardFixture(t)
		gold := "gold"
		entry, err := f.svc.Upsert(ctx, LeaderboardEntryInput{
			CommunityID: 1, SportID: 6, Score: 10, Position: intPtr(1), Medal: &gold,
		})
		require.NoError(t, err)
		assert.NotZero(t, entry.ID)
		assert.Equal(t, 10, entry.Score)
	})

	t.Run("score cannot be negative", func(t *testing.T) {
		f := newLeaderboardFixture(t)
		_, err := f.svc.Upsert(ctx, LeaderboardEntryInput{CommunityID: 1, SportID: 6, Score: -1})
		assert.ErrorIs(t, err, ErrValidationFailed)
	})

	t.Run("medal must be gold, silver or bronze", func(t *testing.T) {
		f := newLeaderboardFixture(t)
		platinum := "platinum"
		_, err := f.svc.Upsert(ctx, LeaderboardEntryInput{CommunityID: 1, SportID: 6, Score: 5, Medal: &platinum})
		assert.ErrorIs(t, err, ErrValidationFailed)
	})

	t.Run("references must exist", func(t *testing.T) {
		f := newLeaderboardFixture(t)
		_, err := f.svc.Upsert(ctx, LeaderboardEntryInput{CommunityID: 42, SportID: 6, Score: 5})
		assert.ErrorIs(t, err, ErrCommunityNotFound)

		_, err = f.svc.Upsert(ctx, LeaderboardEntryInput{CommunityID: 1, SportID: 42, Score: 5})
		assert.ErrorIs(t, err, ErrSportNotFound)
	})

	t.Run("one entry per community and sport", func(t *testing.T) {
		f := newLeaderboardFixture(t)
		_, err := f.svc.Upsert(ctx, LeaderboardEntryInput{CommunityID: 1, SportID: 6, Score: 5})
		require.NoError(t, err)

		_, err = f.svc.Upsert(ctx, LeaderboardEntryInput{CommunityID: 1, SportID: 6, Score: 8})
		assert.ErrorIs(t, err, ErrLeaderboardConflict)
	})
}

func TestLeaderboardUpdateEntry(t *testing.T) {
	ctx := context.Background()
	f := newLeaderboardFixture(t)

	entry, err := f.svc.Upsert(ctx, LeaderboardEntryInput{CommunityID: 1, SportID: 6, Score: 5})
	require.NoError(t, err)

	silver := "silver"
	updated, err := f.svc.UpdateEntry(ctx, entry.ID, LeaderboardEntryInput{Score: 12, Medal: &silver})
	require.NoError(t, err)
	assert.Equal(t, 12, updated.Score)
	require.NotNil(t, updated.Medal)
	assert.Equal(t, "silver", *updated.Medal)

	_, err = f.svc.UpdateEntry(ctx, 999, LeaderboardEntryInput{Score: 1})
	assert.ErrorIs(t, err, ErrLeaderboardNotFound)
}

func TestOverallStandingsRanks(t *testing.T) {
	ctx := context.Background()
	f := newLeaderboardFixture(t)
	f.repo.standings = []models.OverallStanding{
		{CommunityID: 1, CommunityName: "Riverside", TotalScore: 30},
		{CommunityID: 2, CommunityName: "Hilltop", TotalScore: 20},
		{CommunityID: 3, CommunityName: "Lakeside", TotalScore: 20},
		{CommunityID: 4, CommunityName: "Meadow", TotalScore: 5},
	}

	standings, err := f.svc.OverallStandings(ctx)
	require.NoError(t, err)
	require.Len(t, standings, 4)

	// Equal totals share a rank and the next distinct total skips past them.
	assert.Equal(t, 1, standings[0].Rank)
	assert.Equal(t, 2, standings[1].Rank)
	assert.Equal(t, 2, standings[2].Rank)
	assert.Equal(t, 4, standings[3].Rank)
}

func TestLeaderboardDelete(t *testing.T) {
	ctx := context.Background()
	f := newLeaderboardFixture(t)

	entry, err := f.svc.Upsert(ctx, LeaderboardEntryInput{CommunityID: 2, SportID: 1, Score: 3})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteEntry(ctx, entry.ID))
	assert.ErrorIs(t, f.svc.DeleteEntry(ctx, entry.ID), ErrLeaderboardNotFound)
}
