package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/adoptly/adoptly/internal/service"
)

// handleServiceError is the single boundary between service sentinel errors
// and the HTTP error taxonomy. Anything unrecognized becomes a 500 without
// leaking internals.
func handleServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrUserExists):
		writeError(w, http.StatusBadRequest, "USER_ALREADY_EXISTS", "User already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	case errors.Is(err, service.ErrPetNotFound):
		writeError(w, http.StatusNotFound, "PET_NOT_FOUND", "Pet not found")
	case errors.Is(err, service.ErrPetAlreadyAdopted):
		writeError(w, http.StatusBadRequest, "PET_ALREADY_ADOPTED", "Pet is already adopted")
	case errors.Is(err, service.ErrAdoptionNotFound):
		writeError(w, http.StatusNotFound, "ADOPTION_NOT_FOUND", "Adoption not found")
	case errors.Is(err, service.ErrAdoptionResolved):
		writeError(w, http.StatusConflict, "ADOPTION_RESOLVED", "Adoption is already resolved")
	case errors.Is(err, service.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, "INVALID_STATUS", "Invalid adoption status")
	case errors.Is(err, service.ErrNotAuthorized):
		writeError(w, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions")
	case errors.Is(err, service.ErrInvalidSpecies):
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown species")
	case errors.Is(err, service.ErrInvalidAge):
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Age is out of range")
	default:
		logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
