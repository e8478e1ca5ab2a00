package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sportsfest/registration-system/services"
)

type CommunityHandler struct {
	communityService services.CommunityService
}

func NewCommunityHandler(cs services.CommunityService) *CommunityHandler {
	return &CommunityHandler{communityService: cs}
}

func (h *CommunityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreateCommunityInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	community, err := h.communityService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"community": community}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CommunityHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	communityID, err := getIDFromURL(r, "communityID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	community, err := h.communityService.GetByID(r.Context(), communityID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"community": community}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CommunityHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	communities, err := h.communityService.GetAll(r.Context(), queryBool(r, "active"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"communities": communities}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CommunityHandler) Update(w http.ResponseWriter, r *http.Request) {
	communityID, err := getIDFromURL(r, "communityID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateCommunityInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	community, err := h.communityService.Update(r.Context(), communityID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"community": community}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CommunityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	communityID, err := getIDFromURL(r, "communityID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.communityService.Delete(r.Context(), communityID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CommunityHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	communityID, err := getIDFromURL(r, "communityID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		badRequestResponse(w, r, fmt.Errorf("failed to parse multipart form: %w", err))
		return
	}

	file, header, err := r.FormFile("logo")
	if err != nil {
		badRequestResponse(w, r, fmt.Errorf("failed to get logo file from form: %w", err))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		badRequestResponse(w, r, errors.New("content-type header is required for logo"))
		return
	}

	community, err := h.communityService.UploadLogo(r.Context(), communityID, file, contentType)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"community": community}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CommunityHandler) AddContact(w http.ResponseWriter, r *http.Request) {
	communityID, err := getIDFromURL(r, "communityID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.ContactInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	contact, err := h.communityService.AddContact(r.Context(), communityID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"contact": contact}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CommunityHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	communityID, err := getIDFromURL(r, "communityID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	contacts, err := h.communityService.ListContacts(r.Context(), communityID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"contacts": contacts}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CommunityHandler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	communityID, err := getIDFromURL(r, "communityID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	contactID, err := getIDFromURL(r, "contactID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.ContactInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	contact, err := h.communityService.UpdateContact(r.Context(), communityID, contactID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"contact": contact}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *CommunityHandler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	communityID, err := getIDFromURL(r, "communityID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	contactID, err := getIDFromURL(r, "contactID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.communityService.DeleteContact(r.Context(), communityID, contactID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
