package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/noble-diary/internal/api/shared"
	"github.com/phrazzld/noble-diary/internal/domain"
	"github.com/phrazzld/noble-diary/internal/events"
	"github.com/phrazzld/noble-diary/internal/platform/logger"
	"github.com/phrazzld/noble-diary/internal/service"
	"github.com/phrazzld/noble-diary/internal/service/auth"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	case errors.Is(err, service.ErrNoNoble),
		errors.Is(err, domain.ErrUnknownTerritory):
		return http.StatusNotFound

	case errors.Is(err, service.ErrNobleExists),
		errors.Is(err, domain.ErrInsufficientResources),
		errors.Is(err, domain.ErrMaxLevel):
		return http.StatusConflict

	case errors.Is(err, service.ErrInvalidCommand),
		domain.IsValidationError(err):
		return http.StatusBadRequest

	case errors.Is(err, service.ErrStoreUnavailable):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, service.ErrNoNoble):
		return "Noble not found"
	case errors.Is(err, domain.ErrUnknownTerritory):
		return "Territory not found"

	case errors.Is(err, service.ErrNobleExists):
		return "Noble already exists"
	case errors.Is(err, domain.ErrInsufficientResources):
		return "Insufficient resources"
	case errors.Is(err, domain.ErrMaxLevel):
		return "Territory already at maximum level"

	case errors.Is(err, service.ErrStoreUnavailable):
		return "Diary is loading, try again shortly"

	case errors.Is(err, service.ErrInvalidCommand):
		return "Invalid request format"
	case errors.Is(err, domain.ErrInvalidResource):
		return "Unknown resource"
	case errors.Is(err, domain.ErrNegativeAmount):
		return "Resource amounts cannot be negative"
	case errors.Is(err, domain.ErrInvalidEffect):
		return "Invalid effect"
	case errors.Is(err, domain.ErrInvalidTerritoryKind):
		return "Unknown territory kind"
	case domain.IsValidationError(err):
		return "Validation error"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns validator errors into a short message that
// names the first failing field.
func SanitizeValidationError(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Sprintf("Invalid %s: %s", strings.ToLower(fe.Field()), getValidationTagMessage(fe.Tag()))
	}
	return "Validation error"
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gt", "gte":
		return "too small"
	case "max", "lt", "lte":
		return "too large"
	case "oneof":
		return "invalid value"
	case "uuid":
		return "invalid id"
	default:
		return "validation failed"
	}
}

// HandleAPIError maps err to a status and writes a sanitized response.
// A non-empty message overrides the default safe message.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	if errors.Is(err, events.ErrNoHandler) {
		logger.FromContextOrDefault(r.Context(), slog.Default()).Error("command bus has no handler attached")
	}
	status := MapErrorToStatusCode(err)
	if message == "" {
		message = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}
