package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/sportsfest/registration-system/repositories"
	"github.com/sportsfest/registration-system/services"
)

type VolunteerHandler struct {
	volunteerService services.VolunteerService
}

func NewVolunteerHandler(vs services.VolunteerService) *VolunteerHandler {
	return &VolunteerHandler{volunteerService: vs}
}

func (h *VolunteerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.VolunteerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	volunteer, err := h.volunteerService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"volunteer": volunteer}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *VolunteerHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	volunteerID, err := getIDFromURL(r, "volunteerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	volunteer, err := h.volunteerService.GetByID(r.Context(), volunteerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"volunteer": volunteer}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *VolunteerHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter repositories.VolunteerFilter
	if raw := r.URL.Query().Get("department_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id < 1 {
			badRequestResponse(w, r, errors.New("invalid department_id parameter"))
			return
		}
		filter.DepartmentID = &id
	}
	if raw := r.URL.Query().Get("sport_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id < 1 {
			badRequestResponse(w, r, errors.New("invalid sport_id parameter"))
			return
		}
		filter.SportID = &id
	}

	volunteers, err := h.volunteerService.List(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"volunteers": volunteers}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *VolunteerHandler) Update(w http.ResponseWriter, r *http.Request) {
	volunteerID, err := getIDFromURL(r, "volunteerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.VolunteerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	volunteer, err := h.volunteerService.Update(r.Context(), volunteerID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"volunteer": volunteer}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *VolunteerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	volunteerID, err := getIDFromURL(r, "volunteerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.volunteerService.Delete(r.Context(), volunteerID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *VolunteerHandler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name string `json:"name"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	department, err := h.volunteerService.CreateDepartment(r.Context(), input.Name)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"department": department}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *VolunteerHandler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.volunteerService.ListDepartments(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"departments": departments}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *VolunteerHandler) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	departmentID, err := getIDFromURL(r, "departmentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.volunteerService.DeleteDepartment(r.Context(), departmentID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
