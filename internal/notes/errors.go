package notes

import (
	"errors"
	"net/http"

	"example.com/notes-api/internal/auth"
	"example.com/notes-api/internal/service"
)

// StatusFor maps service and auth errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrUnauthorized),
		errors.Is(err, auth.ErrUnauthenticated),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrPasswordMismatch):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNoteTrashed),
		errors.Is(err, service.ErrNotTrashed),
		errors.Is(err, auth.ErrAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.log.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "err", err)
		msg = "internal error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}
