package handlers

import (
	"net/http"

	"github.com/sportsfest/registration-system/services"
)

type FormatHandler struct {
	formatService services.FormatService
}

func NewFormatHandler(fs services.FormatService) *FormatHandler {
	return &FormatHandler{formatService: fs}
}

func (h *FormatHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.FormatInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	format, err := h.formatService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"format": format}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *FormatHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	formatID, err := getIDFromURL(r, "formatID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	format, err := h.formatService.GetByID(r.Context(), formatID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"format": format}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *FormatHandler) List(w http.ResponseWriter, r *http.Request) {
	formats, err := h.formatService.ListAll(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"formats": formats}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *FormatHandler) ListBySport(w http.ResponseWriter, r *http.Request) {
	sportID, err := getIDFromURL(r, "sportID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	formats, err := h.formatService.ListBySport(r.Context(), sportID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"formats": formats}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *FormatHandler) Update(w http.ResponseWriter, r *http.Request) {
	formatID, err := getIDFromURL(r, "formatID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.FormatInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	format, err := h.formatService.Update(r.Context(), formatID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"format": format}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *FormatHandler) Delete(w http.ResponseWriter, r *http.Request) {
	formatID, err := getIDFromURL(r, "formatID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.formatService.Delete(r.Context(), formatID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
