package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/sportsfest/registration-system/middleware"
	"github.com/sportsfest/registration-system/models"
	"github.com/sportsfest/registration-system/services"
)

type AuthHandler struct {
	authService services.AuthService
	jwtSecret   []byte
}

func NewAuthHandler(authService services.AuthService, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		jwtSecret:   []byte(jwtSecret),
	}
}

func (h *AuthHandler) signToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}
	if user.CommunityID != nil {
		claims["community_id"] = *user.CommunityID
	}
	if user.SportID != nil {
		claims["sport_id"] = *user.SportID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.jwtSecret)
}

type loginFunc func(ctx context.Context, input services.LoginInput) (*models.User, error)

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request, login loginFunc) {
	var input services.LoginInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Login == "" || input.Password == "" {
		badRequestResponse(w, r, errors.New("login and password are required"))
		return
	}

	user, err := login(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	tokenString, err := h.signToken(user)
	if err != nil {
		serverErrorResponse(w, r, fmt.Errorf("failed to sign token: %w", err))
		return
	}

	response := jsonResponse{
		"token": tokenString,
		"user":  user,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.handleLogin(w, r, h.authService.Login)
}

// CommunityAdminLogin authenticates against the credentials embedded in
// the community record.
func (h *AuthHandler) CommunityAdminLogin(w http.ResponseWriter, r *http.Request) {
	h.handleLogin(w, r, h.authService.CommunityAdminLogin)
}

// SportsAdminLogin authenticates against the credentials embedded in the
// sport record.
func (h *AuthHandler) SportsAdminLogin(w http.ResponseWriter, r *http.Request) {
	h.handleLogin(w, r, h.authService.SportsAdminLogin)
}

func (h *AuthHandler) VolunteerLogin(w http.ResponseWriter, r *http.Request) {
	h.handleLogin(w, r, h.authService.VolunteerLogin)
}

// Me returns the account behind the bearer token, whichever login variant
// issued it.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	user, err := h.authService.GetUserByID(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"user": user}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var input services.SignupInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Username == "" || input.Password == "" {
		badRequestResponse(w, r, errors.New("username and password are required"))
		return
	}

	user, err := h.authService.Signup(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"user": user}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
