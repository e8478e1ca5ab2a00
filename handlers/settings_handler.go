package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/sportsfest/registration-system/services"
)

type SettingsHandler struct {
	settingsService services.SettingsService
}

func NewSettingsHandler(ss services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: ss}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsService.Get(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	frozen, err := h.settingsService.Frozen(r.Context(), time.Now())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"settings": settings, "frozen": frozen}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SetFreezeDate sets or clears the date after which participants can no
// longer change their own profile or sports.
func (h *SettingsHandler) SetFreezeDate(w http.ResponseWriter, r *http.Request) {
	var input struct {
		FreezeDate *string `json:"freeze_date"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var freezeDate *time.Time
	if input.FreezeDate != nil && *input.FreezeDate != "" {
		parsed, err := time.Parse("2006-01-02", *input.FreezeDate)
		if err != nil {
			badRequestResponse(w, r, fmt.Errorf("freeze_date must be YYYY-MM-DD"))
			return
		}
		freezeDate = &parsed
	}

	settings, err := h.settingsService.SetFreezeDate(r.Context(), freezeDate)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"settings": settings}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
