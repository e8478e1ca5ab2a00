package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/sportsfest/registration-system/services"
)

type CalendarHandler struct {
	calendarService services.CalendarService
}

func NewCalendarHandler(cs services.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendarService: cs}
}

func (h *CalendarHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CalendarEventInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	event, err := h.calendarService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"event": event}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CalendarHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	event, err := h.calendarService.GetByID(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"event": event}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CalendarHandler) List(w http.ResponseWriter, r *http.Request) {
	var sportID *int
	if raw := r.URL.Query().Get("sport_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id < 1 {
			badRequestResponse(w, r, errors.New("invalid sport_id parameter"))
			return
		}
		sportID = &id
	}

	events, err := h.calendarService.List(r.Context(), sportID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"events": events}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CalendarHandler) Update(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CalendarEventInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	event, err := h.calendarService.Update(r.Context(), eventID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"event": event}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CalendarHandler) Delete(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.calendarService.Delete(r.Context(), eventID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
