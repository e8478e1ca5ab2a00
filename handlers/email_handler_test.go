package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"

	"github.com/sportsfest/registration-system/middleware"
	"github.com/sportsfest/registration-system/models"
	"github.com/sportsfest/registration-system/services"
)

type stubEmailSender struct {
	confirmed []int
	err       error
}

func (s *stubEmailSender) SendBroadcast(ctx context.Context, recipients []string, subject, body string) error {
	return s.err
}

func (s *stubEmailSender) SendContactMessage(ctx context.Context, fromName, fromEmail, message string) error {
	return s.err
}

func (s *stubEmailSender) SendRegistrationConfirmation(ctx context.Context, participant *models.Participant) error {
	if s.err != nil {
		return s.err
	}
	s.confirmed = append(s.confirmed, participant.ID)
	return nil
}

func (s *stubEmailSender) RecentMessages(ctx context.Context, limit int) ([]models.EmailMessage, error) {
	return nil, s.err
}

type stubParticipantService struct {
	services.ParticipantService
	participant *models.Participant
	err         error
	gotScope    services.Scope
	gotID       int
}

func (s *stubParticipantService) GetByID(ctx context.Context, scope services.Scope, id int) (*models.Participant, error) {
	s.gotScope = scope
	s.gotID = id
	if s.err != nil {
		return nil, s.err
	}
	return s.participant, nil
}

func TestRegistrationConfirmation(t *testing.T) {
	adminToken := func(t *testing.T) string {
		return bearerFor(t, jwt.MapClaims{"user_id": 1, "role": "admin"})
	}

	newServer := func(sender *stubEmailSender, ps *stubParticipantService) http.Handler {
		h := NewEmailHandler(sender, ps)
		return middleware.Authenticate(testJWTSecret)(http.HandlerFunc(h.RegistrationConfirmation))
	}

	post := func(t *testing.T, server http.Handler, body string) *httptest.ResponseRecorder {
		t.Helper()
		req := httptest.NewRequest(http.MethodPost, "/email/registration-confirmation", strings.NewReader(body))
		req.Header.Set("Authorization", adminToken(t))
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)
		return rec
	}

	t.Run("sends for the requested participant", func(t *testing.T) {
		sender := &stubEmailSender{}
		ps := &stubParticipantService{participant: &models.Participant{ID: 5, Email: "asha@example.com"}}
		rec := post(t, newServer(sender, ps), `{"participant_id": 5}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 5, ps.gotID)
		assert.Equal(t, models.RoleAdmin, ps.gotScope.Role)
		assert.Equal(t, []int{5}, sender.confirmed)
	})

	t.Run("participant_id is required", func(t *testing.T) {
		sender := &stubEmailSender{}
		rec := post(t, newServer(sender, &stubParticipantService{}), `{}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, sender.confirmed)
	})

	t.Run("unknown participant", func(t *testing.T) {
		ps := &stubParticipantService{err: services.ErrParticipantNotFound}
		rec := post(t, newServer(&stubEmailSender{}, ps), `{"participant_id": 9}`)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("out-of-scope participant", func(t *testing.T) {
		ps := &stubParticipantService{err: services.ErrForbiddenOperation}
		rec := post(t, newServer(&stubEmailSender{}, ps), `{"participant_id": 9}`)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("delivery failure reaches the caller", func(t *testing.T) {
		sender := &stubEmailSender{err: assert.AnError}
		ps := &stubParticipantService{participant: &models.Participant{ID: 5}}
		rec := post(t, newServer(sender, ps), `{"participant_id": 5}`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
