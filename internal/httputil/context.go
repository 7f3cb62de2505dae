package httputil

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/so-keyldzn/simple-cms-sub000/internal/domain/models"
)

// Context key type to avoid collisions
type contextKey string

const (
	userIDKey contextKey = "userID"
	rolesKey  contextKey = "roles"
)

// WithIdentity adds the authenticated user's ID and role set to the request
// context.
func WithIdentity(r *http.Request, userID uuid.UUID, roles models.RoleSet) *http.Request {
	ctx := context.WithValue(r.Context(), userIDKey, userID)
	ctx = context.WithValue(ctx, rolesKey, roles)
	return r.WithContext(ctx)
}

// GetUserID retrieves the user ID from context; uuid.Nil when absent.
func GetUserID(r *http.Request) uuid.UUID {
	userID, _ := r.Context().Value(userIDKey).(uuid.UUID)
	return userID
}

// GetRoles retrieves the role set from context; nil set when absent.
func GetRoles(r *http.Request) models.RoleSet {
	roles, _ := r.Context().Value(rolesKey).(models.RoleSet)
	return roles
}
