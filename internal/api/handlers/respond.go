package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"photofolio/internal/apperror"
	"photofolio/internal/api/response"
)

// handleError translates a service error into the JSON envelope. Unexpected
// failures are logged server-side and reach the client as a generic 500.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperror.From(err)
	if appErr.Type == apperror.InternalError {
		log.Error().Err(appErr).Str("path", r.URL.Path).Msg("Request failed")
	}
	response.Error(w, appErr)
}
