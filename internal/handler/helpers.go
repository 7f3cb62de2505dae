package handler

import (
	"errors"
	"net/http"

	"github.com/so-keyldzn/simple-cms-sub000/internal/domain"
	"github.com/so-keyldzn/simple-cms-sub000/internal/httputil"
)

// handleError converts domain errors to HTTP responses. Validation and
// conflict messages are surfaced verbatim; internal errors become a generic
// message.
func handleError(w http.ResponseWriter, err error) {
	var conflictErr *domain.ConflictError
	var bulkErr *domain.BulkError

	switch {
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrRateLimited):
		httputil.RespondError(w, http.StatusTooManyRequests, err.Error())
	case errors.As(err, &bulkErr):
		ids := make([]string, len(bulkErr.FailedIDs))
		for i, id := range bulkErr.FailedIDs {
			ids[i] = id.String()
		}
		httputil.RespondErrorWithExtras(w, http.StatusConflict, bulkErr.Error(),
			map[string]interface{}{"failed_ids": ids})
	case errors.As(err, &conflictErr):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, conflictErr.Error(),
			map[string]interface{}{"kind": string(conflictErr.Kind)})
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// requireContentRole blocks requests whose role set may not mutate folders
// and media. Returns false when the response has already been written.
func requireContentRole(w http.ResponseWriter, r *http.Request) bool {
	if !httputil.GetRoles(r).CanManageContent() {
		httputil.RespondError(w, http.StatusForbidden, "editor or admin role required")
		return false
	}
	return true
}
