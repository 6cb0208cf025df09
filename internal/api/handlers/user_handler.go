package handlers

import (
	"encoding/json"
	"net/http"

	"photofolio/internal/apperror"
	"photofolio/internal/api/response"
	"photofolio/internal/auth"
	"photofolio/internal/services"
	"photofolio/internal/validation"
)

// UserHandler handles the authenticated user's profile endpoints.
type UserHandler struct {
	users services.UserServiceProvider
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users services.UserServiceProvider) *UserHandler {
	return &UserHandler{users: users}
}

// UpdateProfilePayload defines the structure for profile updates. All fields
// are optional; absent fields are left untouched.
type UpdateProfilePayload struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=30"`
	Bio      *string `json:"bio" validate:"omitempty,max=500"`
	Avatar   *string `json:"avatar" validate:"omitempty,url"`
}

// GetProfile returns the authenticated user's profile.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		response.Error(w, apperror.NewAuthenticationError("Not authorized"))
		return
	}

	user, err := h.users.GetUserByID(claims.UserID)
	if err != nil {
		handleError(w, r, err)
		return
	}

	response.OK(w, http.StatusOK, "", user)
}

// UpdateProfile applies a partial update to the authenticated user's own
// record. The target is always the token's identity; no ID is accepted from
// the caller.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		response.Error(w, apperror.NewAuthenticationError("Not authorized"))
		return
	}

	var payload UpdateProfilePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		response.Error(w, apperror.NewValidationError("Invalid request body"))
		return
	}
	if msgs := validation.Check(payload); len(msgs) > 0 {
		response.Error(w, apperror.NewFieldErrors(msgs))
		return
	}

	user, err := h.users.UpdateProfile(claims.UserID, payload.Username, payload.Bio, payload.Avatar)
	if err != nil {
		handleError(w, r, err)
		return
	}

	response.OK(w, http.StatusOK, "Profile updated successfully", user)
}
