package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sportsfest/registration-system/services"
)

func TestReadJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	decode := func(body string) error {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		var dst payload
		return readJSON(httptest.NewRecorder(), req, &dst)
	}

	t.Run("well-formed body", func(t *testing.T) {
		assert.NoError(t, decode(`{"name": "Asha"}`))
	})

	t.Run("empty body", func(t *testing.T) {
		assert.EqualError(t, decode(``), "body must not be empty")
	})

	t.Run("malformed json", func(t *testing.T) {
		assert.ErrorContains(t, decode(`{"name":`), "badly-formed JSON")
	})

	t.Run("wrong field type", func(t *testing.T) {
		assert.ErrorContains(t, decode(`{"name": 7}`), `incorrect JSON type for field "name"`)
	})

	t.Run("unknown key", func(t *testing.T) {
		assert.ErrorContains(t, decode(`{"nam": "Asha"}`), `unknown key "nam"`)
	})

	t.Run("trailing value", func(t *testing.T) {
		assert.EqualError(t, decode(`{"name": "a"} {"name": "b"}`),
			"body must only contain a single JSON value")
	})
}

func TestGetIDFromURL(t *testing.T) {
	request := func(id string) *http.Request {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", id)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	id, err := getIDFromURL(request("42"), "id")
	require.NoError(t, err)
	assert.Equal(t, 42, id)

	for _, raw := range []string{"0", "-3", "abc", ""} {
		_, err := getIDFromURL(request(raw), "id")
		assert.ErrorContains(t, err, "invalid id parameter", "raw %q", raw)
	}
}

func TestMapServiceErrorToHTTP(t *testing.T) {
	statusFor := func(err error) int {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		mapServiceErrorToHTTP(w, r, err)
		return w.Code
	}

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"missing participant", services.ErrParticipantNotFound, http.StatusNotFound},
		{"missing sport", services.ErrSportNotFound, http.StatusNotFound},
		{"duplicate registration", services.ErrDuplicateRegistration, http.StatusConflict},
		{"not reviewable", services.ErrStatusNotReviewable, http.StatusConflict},
		{"rejected is final", services.ErrRejectedIsFinal, http.StatusConflict},
		{"validation failure", services.ErrValidationFailed, http.StatusBadRequest},
		{"label resolution", &services.ResolutionError{Missing: []string{"Polo"}}, http.StatusBadRequest},
		{"incompatible pair", &services.IncompatibilityError{SportA: "a", SportB: "b"}, http.StatusBadRequest},
		{"bad credentials", services.ErrInvalidCredentials, http.StatusUnauthorized},
		{"out of scope", services.ErrForbiddenOperation, http.StatusForbidden},
		{"profile frozen", services.ErrProfileFrozen, http.StatusForbidden},
		{"anything else", assert.AnError, http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, statusFor(tc.err))
		})
	}
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	require.NoError(t, writeJSON(w, http.StatusCreated, jsonResponse{"id": 7}, http.Header{
		"Location": []string{"/participants/7"},
	}))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "/participants/7", w.Header().Get("Location"))
	assert.JSONEq(t, `{"id": 7}`, w.Body.String())
}
