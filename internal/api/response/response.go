// Package response implements the JSON envelope shared by every API endpoint:
// {success, message?, data?, errors?}.
package response

import (
	"encoding/json"
	"net/http"

	"photofolio/internal/apperror"
)

// Envelope is the standard response body.
type Envelope struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Data    any      `json:"data,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// JSON writes an arbitrary body with the given status code.
func JSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// OK writes a success envelope with data.
func OK(w http.ResponseWriter, status int, message string, data any) {
	JSON(w, status, Envelope{Success: true, Message: message, Data: data})
}

// Error writes a failure envelope for an application error. Internal details
// never reach the client; they are the caller's to log.
func Error(w http.ResponseWriter, appErr *apperror.AppError) {
	JSON(w, appErr.StatusCode(), Envelope{
		Success: false,
		Message: appErr.Message,
		Errors:  appErr.Fields,
	})
}
