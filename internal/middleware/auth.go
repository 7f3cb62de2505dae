package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/so-keyldzn/simple-cms-sub000/internal/auth"
	"github.com/so-keyldzn/simple-cms-sub000/internal/domain/models"
	"github.com/so-keyldzn/simple-cms-sub000/internal/httputil"
)

// Auth validates the bearer token and injects the user's identity and role
// set into the request context. Paths in skip are reachable without a token
// (health check, onboarding).
func Auth(verifier auth.TokenVerifier, skip map[string]bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skip[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				httputil.RespondError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			userID, err := uuid.Parse(claims.Subject)
			if err != nil {
				httputil.RespondError(w, http.StatusUnauthorized, "invalid token subject")
				return
			}

			next.ServeHTTP(w, httputil.WithIdentity(r, userID, models.ParseRoles(claims.Roles)))
		})
	}
}
