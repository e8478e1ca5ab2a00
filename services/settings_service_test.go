package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsFrozen(t *testing.T) {
	ctx := context.Background()

	t.Run("no freeze date means never frozen", func(t *testing.T) {
		svc := NewSettingsService(&fakeSettingsRepo{})
		frozen, err := svc.Frozen(ctx, time.Now())
		require.NoError(t, err)
		assert.False(t, frozen)
	})

	t.Run("freeze takes effect after end of day", func(t *testing.T) {
		repo := &fakeSettingsRepo{}
		freezeDate := time.Date(2026, time.September, 10, 0, 0, 0, 0, time.UTC)
		repo.settings.FreezeDate = &freezeDate
		svc := NewSettingsService(repo)

		onTheDay := time.Date(2026, time.September, 10, 18, 0, 0, 0, time.UTC)
		frozen, err := svc.Frozen(ctx, onTheDay)
		require.NoError(t, err)
		assert.False(t, frozen)

		// Cached reads within the TTL answer consistently for nearby instants.
		dayAfter := onTheDay.Add(24 * time.Hour)
		frozen, err = svc.Frozen(ctx, dayAfter)
		require.NoError(t, err)
		assert.True(t, frozen)
	})

	t.Run("reads within the TTL reuse the cached row", func(t *testing.T) {
		repo := &fakeSettingsRepo{}
		svc := NewSettingsService(repo)

		now := time.Now()
		_, err := svc.Frozen(ctx, now)
		require.NoError(t, err)
		_, err = svc.Frozen(ctx, now.Add(time.Second))
		require.NoError(t, err)
		assert.Equal(t, 1, repo.gets)

		_, err = svc.Frozen(ctx, now.Add(settingsCacheTTL+time.Second))
		require.NoError(t, err)
		assert.Equal(t, 2, repo.gets)
	})

	t.Run("setting the freeze date refreshes the cache", func(t *testing.T) {
		repo := &fakeSettingsRepo{}
		svc := NewSettingsService(repo)

		now := time.Now()
		frozen, err := svc.Frozen(ctx, now)
		require.NoError(t, err)
		require.False(t, frozen)

		yesterday := now.AddDate(0, 0, -1)
		_, err = svc.SetFreezeDate(ctx, &yesterday)
		require.NoError(t, err)

		// The stale cached copy must not answer after a write.
		frozen, err = svc.Frozen(ctx, now)
		require.NoError(t, err)
		assert.True(t, frozen)
	})

	t.Run("clearing the freeze date reopens edits", func(t *testing.T) {
		repo := &fakeSettingsRepo{}
		now := time.Now()
		yesterday := now.AddDate(0, 0, -1)
		repo.settings.FreezeDate = &yesterday
		svc := NewSettingsService(repo)

		frozen, err := svc.Frozen(ctx, now)
		require.NoError(t, err)
		require.True(t, frozen)

		_, err = svc.SetFreezeDate(ctx, nil)
		require.NoError(t, err)

		frozen, err = svc.Frozen(ctx, now)
		require.NoError(t, err)
		assert.False(t, frozen)
	})
}
