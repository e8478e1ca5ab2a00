package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/sportsfest/registration-system/middleware"
	"github.com/sportsfest/registration-system/models"
	"github.com/sportsfest/registration-system/services"
)

// EmailSender is the outbound-mail surface the handlers depend on.
type EmailSender interface {
	SendBroadcast(ctx context.Context, recipients []string, subject, body string) error
	SendContactMessage(ctx context.Context, fromName, fromEmail, message string) error
	SendRegistrationConfirmation(ctx context.Context, participant *models.Participant) error
	RecentMessages(ctx context.Context, limit int) ([]models.EmailMessage, error)
}

type EmailHandler struct {
	emailService       EmailSender
	participantService services.ParticipantService
}

func NewEmailHandler(es EmailSender, ps services.ParticipantService) *EmailHandler {
	return &EmailHandler{emailService: es, participantService: ps}
}

// Broadcast sends a manual announcement to a list of recipients.
func (h *EmailHandler) Broadcast(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Recipients []string `json:"recipients"`
		Subject    string   `json:"subject"`
		Body       string   `json:"body"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.emailService.SendBroadcast(r.Context(), input.Recipients, input.Subject, input.Body); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"message": "emails sent"}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Contact is the public contact-form endpoint.
func (h *EmailHandler) Contact(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Message string `json:"message"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.emailService.SendContactMessage(r.Context(), input.Name, input.Email, input.Message); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"message": "message sent"}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RegistrationConfirmation re-sends the registration receipt for a
// participant. Unlike the send attempted during registration, a delivery
// failure here is reported to the caller.
func (h *EmailHandler) RegistrationConfirmation(w http.ResponseWriter, r *http.Request) {
	scope, err := middleware.GetScopeFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input struct {
		ParticipantID int `json:"participant_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.ParticipantID < 1 {
		badRequestResponse(w, r, errors.New("participant_id is required"))
		return
	}

	participant, err := h.participantService.GetByID(r.Context(), scope, input.ParticipantID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := h.emailService.SendRegistrationConfirmation(r.Context(), participant); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"message": "confirmation sent"}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Recent lists the latest stored copies of outbound mail.
func (h *EmailHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			badRequestResponse(w, r, errors.New("invalid limit parameter"))
			return
		}
		limit = n
	}

	messages, err := h.emailService.RecentMessages(r.Context(), limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"messages": messages}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
