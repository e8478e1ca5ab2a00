package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sportsfest/registration-system/live"
	"github.com/sportsfest/registration-system/models"
	"github.com/sportsfest/registration-system/repositories"
)

var validMedals = map[string]bool{"gold": true, "silver": true, "bronze": true}

type LeaderboardEntryInput struct {
	CommunityID int     `json:"community_id"`
	SportID     int     `json:"sport_id"`
	Score       int     `json:"score"`
	Position    *int    `json:"position"`
	Medal       *string `json:"medal"`
}

type LeaderboardService interface {
	Upsert(ctx context.Context, input LeaderboardEntryInput) (*models.LeaderboardEntry, error)
	UpdateEntry(ctx context.Context, id int, input LeaderboardEntryInput) (*models.LeaderboardEntry, error)
	DeleteEntry(ctx context.Context, id int) error
	ListBySport(ctx context.Context, sportID int) ([]models.LeaderboardEntry, error)
	ListAll(ctx context.Context) ([]models.LeaderboardEntry, error)
	OverallStandings(ctx context.Context) ([]models.OverallStanding, error)
}

type leaderboardService struct {
	leaderboardRepo repositories.LeaderboardRepository
	communityRepo   repositories.CommunityRepository
	sportRepo       repositories.SportRepository
	hub             *live.Hub
}

func NewLeaderboardService(
	leaderboardRepo repositories.LeaderboardRepository,
	communityRepo repositories.CommunityRepository,
	sportRepo repositories.SportRepository,
	hub *live.Hub,
) LeaderboardService {
	return &leaderboardService{
		leaderboardRepo: leaderboardRepo,
		communityRepo:   communityRepo,
		sportRepo:       sportRepo,
		hub:             hub,
	}
}

func (s *leaderboardService) validate(ctx context.Context, input *LeaderboardEntryInput) error {
	if input.Score < 0 {
		return fmt.Errorf("%w: score cannot be negative", ErrValidationFailed)
	}
	if input.Medal != nil && !validMedals[*input.Medal] {
		return fmt.Errorf("%w: medal must be gold, silver or bronze", ErrValidationFailed)
	}
	if _, err := s.communityRepo.GetByID(ctx, input.CommunityID); err != nil {
		if errors.Is(err, repositories.ErrCommunityNotFound) {
			return ErrCommunityNotFound
		}
		return err
	}
	if _, err := s.sportRepo.GetByID(ctx, input.SportID); err != nil {
		if errors.Is(err, repositories.ErrSportNotFound) {
			return ErrSportNotFound
		}
		return err
	}
	return nil
}

func (s *leaderboardService) Upsert(ctx context.Context, input LeaderboardEntryInput) (*models.LeaderboardEntry, error) {
	if err := s.validate(ctx, &input); err != nil {
		return nil, err
	}

	entry := &models.LeaderboardEntry{
		CommunityID: input.CommunityID,
		SportID:     input.SportID,
		Score:       input.Score,
		Position:    input.Position,
		Medal:       input.Medal,
	}
	if err := s.leaderboardRepo.Create(ctx, entry); err != nil {
		if errors.Is(err, repositories.ErrLeaderboardEntryConflict) {
			return nil, ErrLeaderboardConflict
		}
		return nil, err
	}
	s.broadcastStandings(ctx)
	return entry, nil
}

func (s *leaderboardService) UpdateEntry(ctx context.Context, id int, input LeaderboardEntryInput) (*models.LeaderboardEntry, error) {
	entry, err := s.leaderboardRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrLeaderboardEntryNotFound) {
			return nil, ErrLeaderboardNotFound
		}
		return nil, err
	}
	if input.Score < 0 {
		return nil, fmt.Errorf("%w: score cannot be negative", ErrValidationFailed)
	}
	if input.Medal != nil && !validMedals[*input.Medal] {
		return nil, fmt.Errorf("%w: medal must be gold, silver or bronze", ErrValidationFailed)
	}

	entry.Score = input.Score
	entry.Position = input.Position
	entry.Medal = input.Medal
	if err := s.leaderboardRepo.Update(ctx, entry); err != nil {
		if errors.Is(err, repositories.ErrLeaderboardEntryNotFound) {
			return nil, ErrLeaderboardNotFound
		}
		return nil, err
	}
	s.broadcastStandings(ctx)
	return entry, nil
}

func (s *leaderboardService) DeleteEntry(ctx context.Context, id int) error {
	if err := s.leaderboardRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrLeaderboardEntryNotFound) {
			return ErrLeaderboardNotFound
		}
		return err
	}
	s.broadcastStandings(ctx)
	return nil
}

func (s *leaderboardService) ListBySport(ctx context.Context, sportID int) ([]models.LeaderboardEntry, error) {
	if _, err := s.sportRepo.GetByID(ctx, sportID); err != nil {
		if errors.Is(err, repositories.ErrSportNotFound) {
			return nil, ErrSportNotFound
		}
		return nil, err
	}
	return s.leaderboardRepo.ListBySport(ctx, sportID)
}

func (s *leaderboardService) ListAll(ctx context.Context) ([]models.LeaderboardEntry, error) {
	return s.leaderboardRepo.ListAll(ctx)
}

func (s *leaderboardService) OverallStandings(ctx context.Context) ([]models.OverallStanding, error) {
	standings, err := s.leaderboardRepo.OverallStandings(ctx)
	if err != nil {
		return nil, err
	}
	// Equal totals share a rank, the next distinct total skips past them.
	for i := range standings {
		if i > 0 && standings[i].TotalScore == standings[i-1].TotalScore {
			standings[i].Rank = standings[i-1].Rank
		} else {
			standings[i].Rank = i + 1
		}
	}
	return standings, nil
}

func (s *leaderboardService) broadcastStandings(ctx context.Context) {
	if s.hub == nil {
		return
	}
	standings, err := s.OverallStandings(ctx)
	if err != nil {
		return
	}
	s.hub.BroadcastToRoom(live.RoomLeaderboard, live.Message{
		Type:    "STANDINGS_UPDATED",
		Payload: standings,
	})
}
