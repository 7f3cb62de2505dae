package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/so-keyldzn/simple-cms-sub000/internal/domain/models"
)

// Requester identifies who is performing an admin operation. Services apply
// their own role checks against it.
type Requester struct {
	UserID uuid.UUID
	Roles  models.RoleSet
}

// ListUsersRequest is the caller-facing shape of a user search. Field and
// operator must belong to the enumerated sets.
type ListUsersRequest struct {
	SearchField    string `json:"search_field,omitempty"`
	SearchOperator string `json:"search_operator,omitempty"`
	SearchValue    string `json:"search_value,omitempty"`
	Limit          int    `json:"limit,omitempty"`
	Offset         int    `json:"offset,omitempty"`
}

// BanUserRequest bans a user for an optional duration. Zero duration means
// indefinite.
type BanUserRequest struct {
	Reason   string        `json:"reason,omitempty"`
	Duration time.Duration `json:"-"`
}

// UserService administers user accounts.
type UserService interface {
	ListUsers(ctx context.Context, requester Requester, req *ListUsersRequest) (*models.UserList, error)
	SetRoles(ctx context.Context, requester Requester, id uuid.UUID, roles []models.Role) (*models.User, error)
	BanUser(ctx context.Context, requester Requester, id uuid.UUID, req *BanUserRequest) (*models.User, error)
	UnbanUser(ctx context.Context, requester Requester, id uuid.UUID) (*models.User, error)
}

// OnboardingRequest creates the first administrator account.
type OnboardingRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	ClientIP string `json:"-"`
}

// OnboardingService handles the first-run setup flow.
type OnboardingService interface {
	Status(ctx context.Context) (bool, error)
	Setup(ctx context.Context, req *OnboardingRequest) (*models.User, error)
}
