package handler

import (
	"errors"
	"net/http"

	"coursecraft/internal/domain"
	"coursecraft/internal/httputil"
)

// handleError converts domain errors to envelope responses. Validation and
// not-found messages are already user-safe; persistence failures collapse to
// a generic message since their detail belongs in the log, not the response.
func handleError(w http.ResponseWriter, err error) {
	var (
		conflictErr    *domain.ConflictError
		upstreamErr    *domain.UpstreamError
		persistenceErr *domain.PersistenceError
	)

	switch {
	case errors.Is(err, domain.ErrAINotConfigured):
		httputil.RespondError(w, http.StatusInternalServerError, "AI service not configured")
	case errors.Is(err, domain.ErrFileTooLarge):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &conflictErr):
		httputil.RespondError(w, http.StatusConflict, conflictErr.Error())
	case errors.As(err, &upstreamErr):
		httputil.RespondError(w, http.StatusInternalServerError, upstreamErr.Message)
	case errors.As(err, &persistenceErr):
		httputil.RespondError(w, http.StatusInternalServerError, "failed to persist lesson")
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}
