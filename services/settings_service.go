package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sportsfest/registration-system/models"
	"github.com/sportsfest/registration-system/repositories"
)

// SettingsService exposes the global settings row and answers freeze
// queries against a short-lived cached copy. The cache is invalidated on
// every write, so a freeze-date change takes effect immediately within
// this process and within settingsCacheTTL across replicas.
type SettingsService interface {
	Get(ctx context.Context) (*models.Settings, error)
	SetFreezeDate(ctx context.Context, freezeDate *time.Time) (*models.Settings, error)
	Frozen(ctx context.Context, now time.Time) (bool, error)
}

const settingsCacheTTL = 30 * time.Second

type settingsService struct {
	repo repositories.SettingsRepository

	mu        sync.Mutex
	cached    *models.Settings
	fetchedAt time.Time
}

func NewSettingsService(repo repositories.SettingsRepository) SettingsService {
	return &settingsService{repo: repo}
}

func (s *settingsService) Get(ctx context.Context) (*models.Settings, error) {
	return s.repo.Get(ctx)
}

func (s *settingsService) SetFreezeDate(ctx context.Context, freezeDate *time.Time) (*models.Settings, error) {
	updated, err := s.repo.SetFreezeDate(ctx, freezeDate)
	if err != nil {
		return nil, fmt.Errorf("failed to set freeze date: %w", err)
	}

	s.mu.Lock()
	s.cached = updated
	s.fetchedAt = time.Now()
	s.mu.Unlock()

	return updated, nil
}

func (s *settingsService) Frozen(ctx context.Context, now time.Time) (bool, error) {
	s.mu.Lock()
	if s.cached != nil && now.Sub(s.fetchedAt) < settingsCacheTTL {
		settings := s.cached
		s.mu.Unlock()
		return settings.FrozenAt(now), nil
	}
	s.mu.Unlock()

	settings, err := s.repo.Get(ctx)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	s.cached = settings
	s.fetchedAt = now
	s.mu.Unlock()

	return settings.FrozenAt(now), nil
}
