package handler

import (
	"log/slog"
	"net/http"

	"github.com/so-keyldzn/simple-cms-sub000/internal/domain/services"
	"github.com/so-keyldzn/simple-cms-sub000/internal/httputil"
)

// OnboardingHandler handles the first-run setup flow. Its routes are
// reachable without authentication; the service itself rate limits and
// conflicts once setup is done.
type OnboardingHandler struct {
	onboardingService services.OnboardingService
	logger            *slog.Logger
}

// NewOnboardingHandler creates a new onboarding handler.
func NewOnboardingHandler(onboardingService services.OnboardingService, logger *slog.Logger) *OnboardingHandler {
	return &OnboardingHandler{
		onboardingService: onboardingService,
		logger:            logger,
	}
}

// Status reports whether setup has been completed
// GET /api/onboarding/status
func (h *OnboardingHandler) Status(w http.ResponseWriter, r *http.Request) {
	done, err := h.onboardingService.Status(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]bool{"completed": done})
}

// Setup creates the first administrator account
// POST /api/onboarding
func (h *OnboardingHandler) Setup(w http.ResponseWriter, r *http.Request) {
	var req services.OnboardingRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.ClientIP = httputil.ClientIP(r)

	user, err := h.onboardingService.Setup(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, user)
}
