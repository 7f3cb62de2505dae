package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/so-keyldzn/simple-cms-sub000/internal/domain"
	"github.com/so-keyldzn/simple-cms-sub000/internal/domain/models"
	"github.com/so-keyldzn/simple-cms-sub000/internal/domain/services"
	"github.com/so-keyldzn/simple-cms-sub000/internal/httputil"
)

// UserHandler handles user administration HTTP requests.
type UserHandler struct {
	userService services.UserService
	logger      *slog.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(userService services.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

func requester(r *http.Request) services.Requester {
	return services.Requester{
		UserID: httputil.GetUserID(r),
		Roles:  httputil.GetRoles(r),
	}
}

// ListUsers searches users
// GET /api/users?search_field=name&search_operator=contains&search_value=John
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := &services.ListUsersRequest{
		SearchField:    q.Get("search_field"),
		SearchOperator: q.Get("search_operator"),
		SearchValue:    q.Get("search_value"),
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		req.Limit = n
	}
	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "invalid offset")
			return
		}
		req.Offset = n
	}

	list, err := h.userService.ListUsers(r.Context(), requester(r), req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, list)
}

// SetRoles replaces a user's role set
// PUT /api/users/{id}/roles
func (h *UserHandler) SetRoles(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	var req struct {
		Roles []models.Role `json:"roles"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.userService.SetRoles(r.Context(), requester(r), id, req.Roles)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, user)
}

// BanUser bans a user for an optional duration
// POST /api/users/{id}/ban
func (h *UserHandler) BanUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	var body struct {
		Reason   string `json:"reason,omitempty"`
		Duration string `json:"duration,omitempty"`
	}
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	req := &services.BanUserRequest{Reason: body.Reason}
	if body.Duration != "" {
		d, err := time.ParseDuration(body.Duration)
		if err != nil {
			handleError(w, domain.ErrValidation)
			return
		}
		req.Duration = d
	}

	user, err := h.userService.BanUser(r.Context(), requester(r), id, req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, user)
}

// UnbanUser lifts a ban
// POST /api/users/{id}/unban
func (h *UserHandler) UnbanUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	user, err := h.userService.UnbanUser(r.Context(), requester(r), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, user)
}
