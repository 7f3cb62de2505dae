package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/so-keyldzn/simple-cms-sub000/internal/domain"
	"github.com/so-keyldzn/simple-cms-sub000/internal/domain/models"
	"github.com/so-keyldzn/simple-cms-sub000/internal/domain/services"
)

func adminRequester() services.Requester {
	return services.Requester{UserID: uuid.New(), Roles: models.NewRoleSet(models.RoleAdmin)}
}

func superRequester() services.Requester {
	return services.Requester{UserID: uuid.New(), Roles: models.NewRoleSet(models.RoleSuperAdmin)}
}

func TestUserService_ListUsers(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (services.UserService, *fakeUserRepo) {
		repo := newFakeUserRepo()
		repo.add(models.User{Name: "alice", Email: "alice@example.com", Roles: models.NewRoleSet(models.RoleUser)})
		repo.add(models.User{Name: "root", Email: "root@example.com", Roles: models.NewRoleSet(models.RoleSuperAdmin)})
		return NewUserService(repo, testCache(t), testLogger()), repo
	}

	t.Run("forbidden for non admins", func(t *testing.T) {
		svc, _ := setup(t)
		req := services.Requester{UserID: uuid.New(), Roles: models.NewRoleSet(models.RoleEditor)}
		_, err := svc.ListUsers(ctx, req, &services.ListUsersRequest{})
		if !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("error = %v, want ErrForbidden", err)
		}
	})

	t.Run("rejects unknown search field", func(t *testing.T) {
		svc, _ := setup(t)
		_, err := svc.ListUsers(ctx, superRequester(), &services.ListUsersRequest{
			SearchField: "password_hash",
			SearchValue: "x",
		})
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("error = %v, want ErrValidation", err)
		}
	})

	t.Run("rejects unknown operator", func(t *testing.T) {
		svc, _ := setup(t)
		_, err := svc.ListUsers(ctx, superRequester(), &services.ListUsersRequest{
			SearchOperator: "regex",
			SearchValue:    "x",
		})
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("error = %v, want ErrValidation", err)
		}
	})

	t.Run("plain admin never sees super admins", func(t *testing.T) {
		svc, _ := setup(t)
		list, err := svc.ListUsers(ctx, adminRequester(), &services.ListUsersRequest{})
		if err != nil {
			t.Fatalf("ListUsers: %v", err)
		}
		for _, u := range list.Users {
			if u.IsSuperAdmin() {
				t.Fatalf("super admin %s leaked to a plain admin", u.Email)
			}
		}
	})

	t.Run("super admin sees everyone", func(t *testing.T) {
		svc, _ := setup(t)
		list, err := svc.ListUsers(ctx, superRequester(), &services.ListUsersRequest{})
		if err != nil {
			t.Fatalf("ListUsers: %v", err)
		}
		if list.Total != 2 {
			t.Errorf("total = %d, want 2", list.Total)
		}
	})

	t.Run("repeat query served from cache", func(t *testing.T) {
		svc, repo := setup(t)
		req := superRequester()
		if _, err := svc.ListUsers(ctx, req, &services.ListUsersRequest{}); err != nil {
			t.Fatalf("first list: %v", err)
		}
		if _, err := svc.ListUsers(ctx, req, &services.ListUsersRequest{}); err != nil {
			t.Fatalf("second list: %v", err)
		}
		if repo.listCalls != 1 {
			t.Errorf("repository hit %d times, want 1", repo.listCalls)
		}
	})
}

func TestUserService_SetRoles(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (services.UserService, *fakeUserRepo, *models.User) {
		repo := newFakeUserRepo()
		target := repo.add(models.User{Name: "bob", Email: "bob@example.com", Roles: models.NewRoleSet(models.RoleUser)})
		return NewUserService(repo, testCache(t), testLogger()), repo, target
	}

	t.Run("replaces the role set", func(t *testing.T) {
		svc, _, target := setup(t)
		updated, err := svc.SetRoles(ctx, superRequester(), target.ID, []models.Role{models.RoleEditor, models.RoleAdmin})
		if err != nil {
			t.Fatalf("SetRoles: %v", err)
		}
		if !updated.Roles.Has(models.RoleEditor) || !updated.Roles.Has(models.RoleAdmin) {
			t.Errorf("roles = %s", updated.Roles.String())
		}
		if updated.Roles.Has(models.RoleUser) {
			t.Error("old role should be gone, the set is replaced not merged")
		}
	})

	t.Run("rejects empty role list", func(t *testing.T) {
		svc, _, target := setup(t)
		_, err := svc.SetRoles(ctx, superRequester(), target.ID, nil)
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("error = %v, want ErrValidation", err)
		}
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		svc, _, target := setup(t)
		_, err := svc.SetRoles(ctx, superRequester(), target.ID, []models.Role{"admin-assistant"})
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("error = %v, want ErrValidation", err)
		}
	})

	t.Run("plain admin cannot grant super admin", func(t *testing.T) {
		svc, _, target := setup(t)
		_, err := svc.SetRoles(ctx, adminRequester(), target.ID, []models.Role{models.RoleSuperAdmin})
		if !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("error = %v, want ErrForbidden", err)
		}
	})

	t.Run("plain admin cannot touch a super admin", func(t *testing.T) {
		repo := newFakeUserRepo()
		boss := repo.add(models.User{Name: "root", Roles: models.NewRoleSet(models.RoleSuperAdmin)})
		svc := NewUserService(repo, testCache(t), testLogger())

		_, err := svc.SetRoles(ctx, adminRequester(), boss.ID, []models.Role{models.RoleUser})
		if !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("error = %v, want ErrForbidden", err)
		}
	})

	t.Run("failed write rolls the cached lists back", func(t *testing.T) {
		svc, repo, target := setup(t)
		req := superRequester()

		// Prime the cache.
		if _, err := svc.ListUsers(ctx, req, &services.ListUsersRequest{}); err != nil {
			t.Fatalf("prime list: %v", err)
		}

		repo.setRolesErr = errors.New("write failed")
		if _, err := svc.SetRoles(ctx, req, target.ID, []models.Role{models.RoleAdmin}); err == nil {
			t.Fatal("expected the write failure to surface")
		}

		// The rolled-back cache entry must still be servable and unchanged.
		list, err := svc.ListUsers(ctx, req, &services.ListUsersRequest{})
		if err != nil {
			t.Fatalf("list after rollback: %v", err)
		}
		if repo.listCalls != 1 {
			t.Errorf("repository hit %d times, want 1 (rollback restores the entry)", repo.listCalls)
		}
		for _, u := range list.Users {
			if u.ID == target.ID && u.Roles.Has(models.RoleAdmin) {
				t.Error("optimistic patch leaked past the rollback")
			}
		}
	})

	t.Run("successful write settles into a refetch", func(t *testing.T) {
		svc, repo, target := setup(t)
		req := superRequester()

		if _, err := svc.ListUsers(ctx, req, &services.ListUsersRequest{}); err != nil {
			t.Fatalf("prime list: %v", err)
		}
		if _, err := svc.SetRoles(ctx, req, target.ID, []models.Role{models.RoleAdmin}); err != nil {
			t.Fatalf("SetRoles: %v", err)
		}

		list, err := svc.ListUsers(ctx, req, &services.ListUsersRequest{})
		if err != nil {
			t.Fatalf("list after settle: %v", err)
		}
		if repo.listCalls != 2 {
			t.Errorf("repository hit %d times, want 2 (settle invalidates)", repo.listCalls)
		}
		found := false
		for _, u := range list.Users {
			if u.ID == target.ID {
				found = true
				if !u.Roles.Has(models.RoleAdmin) {
					t.Error("refetched list should carry the new roles")
				}
			}
		}
		if !found {
			t.Error("target missing from refetched list")
		}
	})
}

func TestUserService_BanUser(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (services.UserService, *fakeUserRepo, *models.User) {
		repo := newFakeUserRepo()
		target := repo.add(models.User{Name: "bob", Roles: models.NewRoleSet(models.RoleUser)})
		return NewUserService(repo, testCache(t), testLogger()), repo, target
	}

	t.Run("indefinite ban", func(t *testing.T) {
		svc, _, target := setup(t)
		banned, err := svc.BanUser(ctx, superRequester(), target.ID, &services.BanUserRequest{Reason: "spam"})
		if err != nil {
			t.Fatalf("BanUser: %v", err)
		}
		if !banned.Banned || banned.BanReason != "spam" {
			t.Errorf("user = %+v, want banned for spam", banned)
		}
		if banned.BanExpires != nil {
			t.Error("indefinite ban must have no expiry")
		}
	})

	t.Run("timed ban computes expiry server side", func(t *testing.T) {
		svc, _, target := setup(t)
		before := time.Now()
		banned, err := svc.BanUser(ctx, superRequester(), target.ID, &services.BanUserRequest{
			Reason:   "cooldown",
			Duration: time.Hour,
		})
		if err != nil {
			t.Fatalf("BanUser: %v", err)
		}
		if banned.BanExpires == nil {
			t.Fatal("timed ban must carry an expiry")
		}
		if banned.BanExpires.Before(before.Add(time.Hour)) || banned.BanExpires.After(time.Now().Add(time.Hour)) {
			t.Errorf("expiry = %v, want about an hour out", banned.BanExpires)
		}
	})

	t.Run("negative duration rejected", func(t *testing.T) {
		svc, _, target := setup(t)
		_, err := svc.BanUser(ctx, superRequester(), target.ID, &services.BanUserRequest{Duration: -time.Hour})
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("error = %v, want ErrValidation", err)
		}
	})

	t.Run("unban clears everything", func(t *testing.T) {
		svc, _, target := setup(t)
		if _, err := svc.BanUser(ctx, superRequester(), target.ID, &services.BanUserRequest{Reason: "spam"}); err != nil {
			t.Fatalf("BanUser: %v", err)
		}
		cleared, err := svc.UnbanUser(ctx, superRequester(), target.ID)
		if err != nil {
			t.Fatalf("UnbanUser: %v", err)
		}
		if cleared.Banned || cleared.BanReason != "" || cleared.BanExpires != nil {
			t.Errorf("user = %+v, want ban fully lifted", cleared)
		}
	})

	t.Run("plain admin cannot ban a super admin", func(t *testing.T) {
		repo := newFakeUserRepo()
		boss := repo.add(models.User{Name: "root", Roles: models.NewRoleSet(models.RoleSuperAdmin)})
		svc := NewUserService(repo, testCache(t), testLogger())

		_, err := svc.BanUser(ctx, adminRequester(), boss.ID, &services.BanUserRequest{Reason: "nope"})
		if !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("error = %v, want ErrForbidden", err)
		}
	})
}
