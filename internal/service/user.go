package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/so-keyldzn/simple-cms-sub000/internal/cache"
	"github.com/so-keyldzn/simple-cms-sub000/internal/domain"
	"github.com/so-keyldzn/simple-cms-sub000/internal/domain/models"
	"github.com/so-keyldzn/simple-cms-sub000/internal/domain/repositories"
	"github.com/so-keyldzn/simple-cms-sub000/internal/domain/services"
)

type userService struct {
	userRepo repositories.UserRepository
	cache    *cache.QueryCache
	logger   *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(userRepo repositories.UserRepository, queryCache *cache.QueryCache, logger *slog.Logger) services.UserService {
	return &userService{
		userRepo: userRepo,
		cache:    queryCache,
		logger:   logger,
	}
}

const (
	defaultUserPageSize = 50
	maxUserPageSize     = 200
)

// ListUsers searches users. Search field and operator are constrained to
// their enumerated sets; a plain-admin requester never sees super-admin
// accounts.
func (s *userService) ListUsers(ctx context.Context, requester services.Requester, req *services.ListUsersRequest) (*models.UserList, error) {
	if !requester.Roles.CanManageUsers() {
		return nil, fmt.Errorf("listing users: %w", domain.ErrForbidden)
	}

	if err := validation.ValidateStruct(req,
		validation.Field(&req.SearchField, validation.In(
			string(models.SearchFieldName), string(models.SearchFieldEmail),
		)),
		validation.Field(&req.SearchOperator, validation.In(
			string(models.OperatorContains), string(models.OperatorStartsWith),
			string(models.OperatorEndsWith), string(models.OperatorEquals),
		)),
		validation.Field(&req.Limit, validation.Min(0), validation.Max(maxUserPageSize)),
		validation.Field(&req.Offset, validation.Min(0)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	query := models.UserListQuery{
		SearchField:        models.SearchField(req.SearchField),
		SearchOperator:     models.SearchOperator(req.SearchOperator),
		SearchValue:        req.SearchValue,
		ExcludeSuperAdmins: !requester.Roles.Has(models.RoleSuperAdmin),
		Limit:              req.Limit,
		Offset:             req.Offset,
	}
	if query.SearchValue != "" {
		if query.SearchField == "" {
			query.SearchField = models.SearchFieldName
		}
		if query.SearchOperator == "" {
			query.SearchOperator = models.OperatorContains
		}
	}
	if query.Limit == 0 {
		query.Limit = defaultUserPageSize
	}

	key := cache.Key{
		Entity: EntityUsers,
		Op:     "list",
		Filter: fmt.Sprintf("%s:%s:%s:%t:%d:%d",
			query.SearchField, query.SearchOperator, query.SearchValue,
			query.ExcludeSuperAdmins, query.Limit, query.Offset),
	}

	payload, err := s.cache.GetOrLoad(ctx, key, func(ctx context.Context) (interface{}, error) {
		return s.userRepo.List(ctx, query)
	})
	if err != nil {
		return nil, err
	}

	return payload.(*models.UserList), nil
}

// patchUserLists rewrites one user inside every cached user list.
func patchUserLists(id uuid.UUID, mutate func(*models.User)) func(cache.Key, interface{}) interface{} {
	return func(_ cache.Key, payload interface{}) interface{} {
		list, ok := payload.(*models.UserList)
		if !ok {
			return payload
		}
		patched := &models.UserList{Total: list.Total, Users: make([]models.User, len(list.Users))}
		copy(patched.Users, list.Users)
		for i := range patched.Users {
			if patched.Users[i].ID == id {
				mutate(&patched.Users[i])
			}
		}
		return patched
	}
}

// guardTarget enforces who may administer whom.
func (s *userService) guardTarget(ctx context.Context, requester services.Requester, id uuid.UUID) (*models.User, error) {
	if !requester.Roles.CanManageUsers() {
		return nil, fmt.Errorf("managing users: %w", domain.ErrForbidden)
	}

	target, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Only a super-admin may touch another super-admin.
	if target.IsSuperAdmin() && !requester.Roles.Has(models.RoleSuperAdmin) {
		return nil, fmt.Errorf("managing super admin accounts: %w", domain.ErrForbidden)
	}

	return target, nil
}

// SetRoles replaces a user's role set. The cached user lists are patched
// optimistically before the database call; a failed call rolls the patch
// back, a successful one settles into an invalidate-and-refetch.
func (s *userService) SetRoles(ctx context.Context, requester services.Requester, id uuid.UUID, roles []models.Role) (*models.User, error) {
	if _, err := s.guardTarget(ctx, requester, id); err != nil {
		return nil, err
	}

	if len(roles) == 0 {
		return nil, fmt.Errorf("%w: at least one role is required", domain.ErrValidation)
	}
	newRoles := make(models.RoleSet, len(roles))
	for _, r := range roles {
		switch r {
		case models.RoleUser, models.RoleEditor, models.RoleAdmin, models.RoleSuperAdmin:
		default:
			return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, r)
		}
		if newRoles.Has(r) {
			return nil, fmt.Errorf("%w: duplicate role %q", domain.ErrValidation, r)
		}
		newRoles[r] = struct{}{}
	}
	if newRoles.Has(models.RoleSuperAdmin) && !requester.Roles.Has(models.RoleSuperAdmin) {
		return nil, fmt.Errorf("granting super admin: %w", domain.ErrForbidden)
	}

	update := s.cache.Optimistic(EntityUsers, patchUserLists(id, func(u *models.User) {
		u.Roles = newRoles
	}))

	if err := s.userRepo.SetRoles(ctx, id, newRoles); err != nil {
		update.Rollback()
		return nil, err
	}
	update.Settle()

	s.logger.Info("user roles set", "id", id, "roles", newRoles.String(), "by", requester.UserID)

	return s.userRepo.GetByID(ctx, id)
}

// BanUser bans a user. The expiry timestamp is derived server-side, so the
// optimistic patch leaves it unset; the settle pass reconciles it.
func (s *userService) BanUser(ctx context.Context, requester services.Requester, id uuid.UUID, req *services.BanUserRequest) (*models.User, error) {
	if _, err := s.guardTarget(ctx, requester, id); err != nil {
		return nil, err
	}
	if req.Duration < 0 {
		return nil, fmt.Errorf("%w: ban duration cannot be negative", domain.ErrValidation)
	}

	var expires *time.Time
	if req.Duration > 0 {
		t := time.Now().Add(req.Duration)
		expires = &t
	}

	update := s.cache.Optimistic(EntityUsers, patchUserLists(id, func(u *models.User) {
		u.Banned = true
		u.BanReason = req.Reason
		u.BanExpires = nil
	}))

	if err := s.userRepo.SetBan(ctx, id, true, req.Reason, expires); err != nil {
		update.Rollback()
		return nil, err
	}
	update.Settle()

	s.logger.Info("user banned", "id", id, "expires", expires, "by", requester.UserID)

	return s.userRepo.GetByID(ctx, id)
}

// UnbanUser lifts a ban.
func (s *userService) UnbanUser(ctx context.Context, requester services.Requester, id uuid.UUID) (*models.User, error) {
	if _, err := s.guardTarget(ctx, requester, id); err != nil {
		return nil, err
	}

	update := s.cache.Optimistic(EntityUsers, patchUserLists(id, func(u *models.User) {
		u.Banned = false
		u.BanReason = ""
		u.BanExpires = nil
	}))

	if err := s.userRepo.SetBan(ctx, id, false, "", nil); err != nil {
		update.Rollback()
		return nil, err
	}
	update.Settle()

	s.logger.Info("user unbanned", "id", id, "by", requester.UserID)

	return s.userRepo.GetByID(ctx, id)
}
