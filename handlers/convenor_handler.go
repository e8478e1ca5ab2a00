package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/sportsfest/registration-system/services"
)

type ConvenorHandler struct {
	convenorService services.ConvenorService
}

func NewConvenorHandler(cs services.ConvenorService) *ConvenorHandler {
	return &ConvenorHandler{convenorService: cs}
}

func (h *ConvenorHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.ConvenorInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	convenor, err := h.convenorService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"convenor": convenor}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ConvenorHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	convenorID, err := getIDFromURL(r, "convenorID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	convenor, err := h.convenorService.GetByID(r.Context(), convenorID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"convenor": convenor}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ConvenorHandler) List(w http.ResponseWriter, r *http.Request) {
	var sportID *int
	if raw := r.URL.Query().Get("sport_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id < 1 {
			badRequestResponse(w, r, errors.New("invalid sport_id parameter"))
			return
		}
		sportID = &id
	}

	convenors, err := h.convenorService.List(r.Context(), sportID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"convenors": convenors}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ConvenorHandler) Update(w http.ResponseWriter, r *http.Request) {
	convenorID, err := getIDFromURL(r, "convenorID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.ConvenorInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	convenor, err := h.convenorService.Update(r.Context(), convenorID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"convenor": convenor}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ConvenorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	convenorID, err := getIDFromURL(r, "convenorID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.convenorService.Delete(r.Context(), convenorID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
