package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sportsfest/registration-system/middleware"
	"github.com/sportsfest/registration-system/models"
	"github.com/sportsfest/registration-system/services"
)

type ParticipantHandler struct {
	participantService services.ParticipantService
	bulkUploadService  services.BulkUploadService
	exportService      services.ExportService
	emailService       *services.EmailService
	logger             *slog.Logger
}

func NewParticipantHandler(
	participantService services.ParticipantService,
	bulkUploadService services.BulkUploadService,
	exportService services.ExportService,
	emailService *services.EmailService,
	logger *slog.Logger,
) *ParticipantHandler {
	return &ParticipantHandler{
		participantService: participantService,
		bulkUploadService:  bulkUploadService,
		exportService:      exportService,
		emailService:       emailService,
		logger:             logger,
	}
}

// Register is the public self-registration endpoint.
func (h *ParticipantHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input services.CreateParticipantInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participant, err := h.participantService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if h.emailService != nil {
		if err := h.emailService.SendRegistrationConfirmation(r.Context(), participant); err != nil {
			h.logger.Error("failed to send registration confirmation",
				slog.Int("participant_id", participant.ID),
				slog.Any("error", err))
		}
	}

	response := jsonResponse{"participant": participant}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ParticipantHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	scope, err := middleware.GetScopeFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}
	participantID, err := getIDFromURL(r, "participantID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participant, err := h.participantService.GetByID(r.Context(), scope, participantID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"participant": participant}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ParticipantHandler) List(w http.ResponseWriter, r *http.Request) {
	scope, err := middleware.GetScopeFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var status *models.ParticipantStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := models.ParticipantStatus(raw)
		if !s.Valid() {
			badRequestResponse(w, r, fmt.Errorf("unknown status %q", raw))
			return
		}
		status = &s
	}

	participants, err := h.participantService.List(r.Context(), scope, status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"participants": participants}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ParticipantHandler) Update(w http.ResponseWriter, r *http.Request) {
	scope, err := middleware.GetScopeFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}
	participantID, err := getIDFromURL(r, "participantID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateParticipantInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participant, err := h.participantService.Update(r.Context(), scope, participantID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"participant": participant}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ParticipantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	scope, err := middleware.GetScopeFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}
	participantID, err := getIDFromURL(r, "participantID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.participantService.Delete(r.Context(), scope, participantID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateStatus moves a registration through review: accept or reject,
// or back to pending where the deployment allows it.
func (h *ParticipantHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	scope, err := middleware.GetScopeFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}
	participantID, err := getIDFromURL(r, "participantID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Status models.ParticipantStatus `json:"status"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participant, err := h.participantService.UpdateStatus(r.Context(), scope, participantID, input.Status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"participant": participant}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ParticipantHandler) GetOwn(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	participant, err := h.participantService.GetOwn(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"participant": participant}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ParticipantHandler) UpdateOwnProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input services.UpdateParticipantInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participant, err := h.participantService.UpdateOwnProfile(r.Context(), userID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"participant": participant}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateOwnSports replaces the participant's sport selection. For accepted
// participants the change is staged and the registration returns to
// pending review.
func (h *ParticipantHandler) UpdateOwnSports(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input struct {
		Sports models.SportSelectionList `json:"sports"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participant, err := h.participantService.UpdateOwnSports(r.Context(), userID, input.Sports)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"participant": participant}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// BulkUpload imports a CSV or XLSX file of participants into the caller's
// community. Community admins are pinned to their own community; a full
// admin passes the target community in the form.
func (h *ParticipantHandler) BulkUpload(w http.ResponseWriter, r *http.Request) {
	scope, err := middleware.GetScopeFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		badRequestResponse(w, r, fmt.Errorf("failed to parse multipart form: %w", err))
		return
	}

	communityID := 0
	switch scope.Role {
	case models.RoleCommunityAdmin:
		if scope.CommunityID == nil {
			forbiddenResponse(w, r, "no community bound to the current user")
			return
		}
		communityID = *scope.CommunityID
	case models.RoleAdmin:
		id, err := getFormInt(r, "community_id")
		if err != nil {
			badRequestResponse(w, r, err)
			return
		}
		communityID = id
	default:
		forbiddenResponse(w, r, "bulk upload requires admin or community admin privileges")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		badRequestResponse(w, r, errors.New("file field is required"))
		return
	}
	defer file.Close()

	result, err := h.bulkUploadService.Process(r.Context(), communityID, header.Filename, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ParticipantHandler) Export(w http.ResponseWriter, r *http.Request) {
	scope, err := middleware.GetScopeFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}
	format := chi.URLParam(r, "format")
	if format == "" {
		format = r.URL.Query().Get("format")
	}
	if format == "" {
		format = "csv"
	}

	data, contentType, err := h.exportService.ExportParticipants(r.Context(), scope, format)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	filename := "participants.csv"
	if format != "csv" {
		filename = "participants.xlsx"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Error("failed to write export response", slog.Any("error", err))
	}
}

func getFormInt(r *http.Request, field string) (int, error) {
	raw := r.FormValue(field)
	if raw == "" {
		return 0, fmt.Errorf("%s form field is required", field)
	}
	var id int
	if _, err := fmt.Sscanf(raw, "%d", &id); err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s form field", field)
	}
	return id, nil
}
