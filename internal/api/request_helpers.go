package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/noble-diary/internal/api/shared"
	"github.com/phrazzld/noble-diary/internal/events"
	"github.com/phrazzld/noble-diary/internal/service"
)

// getPathUUID parses the named chi path parameter as a UUID.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, paramName))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// decodeAndValidate decodes the body into req and validates it. On failure
// it writes a 400 and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := shared.DecodeJSON(r, req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}
	return true
}

// dispatch sends a command on the bus. On failure it writes the mapped
// error response and returns false.
func dispatch(w http.ResponseWriter, r *http.Request, bus events.Dispatcher, cmdType string, payload interface{}) bool {
	cmd, err := events.NewCommand(cmdType, payload)
	if err != nil {
		HandleAPIError(w, r, service.NewServiceError(cmdType, "failed to build command", err), "")
		return false
	}
	if err := bus.Dispatch(r.Context(), cmd); err != nil {
		HandleAPIError(w, r, err, "")
		return false
	}
	return true
}
