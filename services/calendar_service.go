package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sportsfest/registration-system/live"
	"github.com/sportsfest/registration-system/models"
	"github.com/sportsfest/registration-system/repositories"
)

type CalendarEventInput struct {
	SportID  *int       `json:"sport_id"`
	Title    string     `json:"title"`
	Venue    *string    `json:"venue"`
	StartsAt time.Time  `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
}

type CalendarService interface {
	Create(ctx context.Context, input CalendarEventInput) (*models.CalendarEvent, error)
	GetByID(ctx context.Context, id int) (*models.CalendarEvent, error)
	List(ctx context.Context, sportID *int) ([]models.CalendarEvent, error)
	Update(ctx context.Context, id int, input CalendarEventInput) (*models.CalendarEvent, error)
	Delete(ctx context.Context, id int) error
}

type calendarService struct {
	calendarRepo repositories.CalendarRepository
	sportRepo    repositories.SportRepository
	hub          *live.Hub
}

func NewCalendarService(calendarRepo repositories.CalendarRepository, sportRepo repositories.SportRepository, hub *live.Hub) CalendarService {
	return &calendarService{calendarRepo: calendarRepo, sportRepo: sportRepo, hub: hub}
}

func (s *calendarService) validate(ctx context.Context, input *CalendarEventInput) error {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return fmt.Errorf("%w: event title is required", ErrValidationFailed)
	}
	if input.StartsAt.IsZero() {
		return fmt.Errorf("%w: starts_at is required", ErrValidationFailed)
	}
	if input.EndsAt != nil && !input.EndsAt.After(input.StartsAt) {
		return fmt.Errorf("%w: ends_at must be after starts_at", ErrValidationFailed)
	}
	if input.SportID != nil {
		if _, err := s.sportRepo.GetByID(ctx, *input.SportID); err != nil {
			if errors.Is(err, repositories.ErrSportNotFound) {
				return ErrSportNotFound
			}
			return err
		}
	}
	return nil
}

func (s *calendarService) Create(ctx context.Context, input CalendarEventInput) (*models.CalendarEvent, error) {
	if err := s.validate(ctx, &input); err != nil {
		return nil, err
	}
	event := &models.CalendarEvent{
		SportID:  input.SportID,
		Title:    input.Title,
		Venue:    input.Venue,
		StartsAt: input.StartsAt,
		EndsAt:   input.EndsAt,
	}
	if err := s.calendarRepo.Create(ctx, event); err != nil {
		if errors.Is(err, repositories.ErrCalendarSportInvalid) {
			return nil, ErrSportNotFound
		}
		return nil, err
	}
	s.broadcast("EVENT_CREATED", event)
	return event, nil
}

func (s *calendarService) GetByID(ctx context.Context, id int) (*models.CalendarEvent, error) {
	event, err := s.calendarRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrCalendarEventNotFound) {
			return nil, ErrCalendarNotFound
		}
		return nil, err
	}
	return event, nil
}

func (s *calendarService) List(ctx context.Context, sportID *int) ([]models.CalendarEvent, error) {
	return s.calendarRepo.List(ctx, sportID)
}

func (s *calendarService) Update(ctx context.Context, id int, input CalendarEventInput) (*models.CalendarEvent, error) {
	event, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, &input); err != nil {
		return nil, err
	}

	event.SportID = input.SportID
	event.Title = input.Title
	event.Venue = input.Venue
	event.StartsAt = input.StartsAt
	event.EndsAt = input.EndsAt
	if err := s.calendarRepo.Update(ctx, event); err != nil {
		if errors.Is(err, repositories.ErrCalendarEventNotFound) {
			return nil, ErrCalendarNotFound
		}
		return nil, err
	}
	s.broadcast("EVENT_UPDATED", event)
	return event, nil
}

func (s *calendarService) Delete(ctx context.Context, id int) error {
	if err := s.calendarRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrCalendarEventNotFound) {
			return ErrCalendarNotFound
		}
		return err
	}
	s.broadcast("EVENT_DELETED", map[string]int{"id": id})
	return nil
}

func (s *calendarService) broadcast(kind string, payload interface{}) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToRoom(live.RoomCalendar, live.Message{Type: kind, Payload: payload})
}
