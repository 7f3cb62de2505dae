package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/so-keyldzn/simple-cms-sub000/internal/domain/models"
)

// UserRepository persists user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, query models.UserListQuery) (*models.UserList, error)
	SetRoles(ctx context.Context, id uuid.UUID, roles models.RoleSet) error
	SetBan(ctx context.Context, id uuid.UUID, banned bool, reason string, expires *time.Time) error
	CountAdmins(ctx context.Context) (int64, error)
}
