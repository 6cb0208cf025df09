package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"photofolio/internal/apperror"
	"photofolio/internal/api/response"
	"photofolio/internal/auth"
	"photofolio/internal/models"
	"photofolio/internal/services"
	"photofolio/internal/validation"
)

// AuthHandler handles registration and login.
type AuthHandler struct {
	users services.UserServiceProvider
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users services.UserServiceProvider) *AuthHandler {
	return &AuthHandler{users: users}
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// authResponse carries the token alongside the standard envelope fields.
type authResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Token   string      `json:"token"`
	Data    models.User `json:"data"`
}

// Register handles new user registration and issues a bearer token.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		response.Error(w, apperror.NewValidationError("Invalid request body"))
		return
	}
	if msgs := validation.Check(payload); len(msgs) > 0 {
		response.Error(w, apperror.NewFieldErrors(msgs))
		return
	}

	user, err := h.users.Register(payload.Username, payload.Email, payload.Password)
	if err != nil {
		handleError(w, r, err)
		return
	}

	token, err := auth.GenerateToken(user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to generate token")
		response.Error(w, apperror.NewInternalError("Failed to generate token", err))
		return
	}

	response.JSON(w, http.StatusCreated, authResponse{
		Success: true,
		Message: "User registered successfully",
		Token:   token,
		Data:    user,
	})
}

// Login handles user authentication and token issuance.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		response.Error(w, apperror.NewValidationError("Invalid request body"))
		return
	}
	if msgs := validation.Check(payload); len(msgs) > 0 {
		response.Error(w, apperror.NewFieldErrors(msgs))
		return
	}

	user, err := h.users.Authenticate(payload.Email, payload.Password)
	if err != nil {
		log.Warn().Str("email", payload.Email).Msg("Failed authentication attempt")
		handleError(w, r, err)
		return
	}

	token, err := auth.GenerateToken(user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to generate token")
		response.Error(w, apperror.NewInternalError("Failed to generate token", err))
		return
	}

	response.JSON(w, http.StatusOK, authResponse{
		Success: true,
		Message: "Login successful",
		Token:   token,
		Data:    user,
	})
}
