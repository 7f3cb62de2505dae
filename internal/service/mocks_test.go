package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/so-keyldzn/simple-cms-sub000/internal/cache"
	"github.com/so-keyldzn/simple-cms-sub000/internal/domain"
	"github.com/so-keyldzn/simple-cms-sub000/internal/domain/models"
	"github.com/so-keyldzn/simple-cms-sub000/internal/domain/repositories"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCache(t *testing.T) *cache.QueryCache {
	t.Helper()
	c, err := cache.New(64)
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}
	return c
}

// fakeFolderRepo is an in-memory FolderRepository.
type fakeFolderRepo struct {
	folders map[uuid.UUID]*models.Folder
}

func newFakeFolderRepo() *fakeFolderRepo {
	return &fakeFolderRepo{folders: make(map[uuid.UUID]*models.Folder)}
}

func (r *fakeFolderRepo) add(f models.Folder) *models.Folder {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now()
	}
	copied := f
	r.folders[f.ID] = &copied
	return &copied
}

func (r *fakeFolderRepo) Create(_ context.Context, folder *models.Folder) error {
	folder.ID = uuid.New()
	folder.CreatedAt = time.Now()
	folder.UpdatedAt = folder.CreatedAt
	copied := *folder
	r.folders[folder.ID] = &copied
	return nil
}

func (r *fakeFolderRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Folder, error) {
	f, ok := r.folders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *f
	return &copied, nil
}

func (r *fakeFolderRepo) GetBySlugAndParent(_ context.Context, slug string, parentID *uuid.UUID) (*models.Folder, error) {
	for _, f := range r.folders {
		if f.Slug != slug {
			continue
		}
		if sameParent(f.ParentID, parentID) {
			copied := *f
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeFolderRepo) Update(_ context.Context, folder *models.Folder) error {
	if _, ok := r.folders[folder.ID]; !ok {
		return domain.ErrNotFound
	}
	copied := *folder
	r.folders[folder.ID] = &copied
	return nil
}

func (r *fakeFolderRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.folders[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.folders, id)
	return nil
}

func (r *fakeFolderRepo) ListChildren(_ context.Context, parentID *uuid.UUID) ([]models.Folder, error) {
	var out []models.Folder
	for _, f := range r.folders {
		if sameParent(f.ParentID, parentID) {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *fakeFolderRepo) CountChildren(_ context.Context, parentID uuid.UUID) (int64, error) {
	var n int64
	for _, f := range r.folders {
		if f.ParentID != nil && *f.ParentID == parentID {
			n++
		}
	}
	return n, nil
}

func (r *fakeFolderRepo) GetAll(_ context.Context) ([]models.Folder, error) {
	out := make([]models.Folder, 0, len(r.folders))
	for _, f := range r.folders {
		out = append(out, *f)
	}
	return out, nil
}

func sameParent(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// fakeMediaRepo is an in-memory MediaRepository. failDelete injects per-item
// delete failures for bulk tests.
type fakeMediaRepo struct {
	media      map[uuid.UUID]*models.Media
	failDelete map[uuid.UUID]bool
}

func newFakeMediaRepo() *fakeMediaRepo {
	return &fakeMediaRepo{
		media:      make(map[uuid.UUID]*models.Media),
		failDelete: make(map[uuid.UUID]bool),
	}
}

func (r *fakeMediaRepo) add(m models.Media) *models.Media {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	copied := m
	r.media[m.ID] = &copied
	return &copied
}

func (r *fakeMediaRepo) Create(_ context.Context, media *models.Media) error {
	media.ID = uuid.New()
	media.CreatedAt = time.Now()
	media.UpdatedAt = media.CreatedAt
	copied := *media
	r.media[media.ID] = &copied
	return nil
}

func (r *fakeMediaRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Media, error) {
	m, ok := r.media[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *fakeMediaRepo) Update(_ context.Context, media *models.Media) error {
	if _, ok := r.media[media.ID]; !ok {
		return domain.ErrNotFound
	}
	copied := *media
	r.media[media.ID] = &copied
	return nil
}

func (r *fakeMediaRepo) Delete(_ context.Context, id uuid.UUID) error {
	if r.failDelete[id] {
		return domain.ErrNotFound
	}
	if _, ok := r.media[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.media, id)
	return nil
}

func (r *fakeMediaRepo) List(_ context.Context, filter models.MediaFilter) ([]models.Media, error) {
	var out []models.Media
	for _, m := range r.media {
		switch {
		case filter.FolderID != nil:
			if m.FolderID == nil || *m.FolderID != *filter.FolderID {
				continue
			}
		case filter.InRoot:
			if m.FolderID != nil {
				continue
			}
		}
		out = append(out, *m)
	}
	return out, nil
}

func (r *fakeMediaRepo) CountByFolder(_ context.Context, folderID uuid.UUID) (int64, error) {
	var n int64
	for _, m := range r.media {
		if m.FolderID != nil && *m.FolderID == folderID {
			n++
		}
	}
	return n, nil
}

func (r *fakeMediaRepo) CountPerFolder(_ context.Context) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64)
	for _, m := range r.media {
		if m.FolderID != nil {
			counts[*m.FolderID]++
		}
	}
	return counts, nil
}

func (r *fakeMediaRepo) MoveToFolder(_ context.Context, ids []uuid.UUID, folderID *uuid.UUID) (int64, error) {
	var n int64
	for _, id := range ids {
		m, ok := r.media[id]
		if !ok {
			continue
		}
		m.FolderID = folderID
		n++
	}
	return n, nil
}

func (r *fakeMediaRepo) DeleteByFolder(_ context.Context, folderID uuid.UUID) (int64, error) {
	var n int64
	for id, m := range r.media {
		if m.FolderID != nil && *m.FolderID == folderID {
			delete(r.media, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeMediaRepo) ClearFolder(_ context.Context, folderID uuid.UUID) (int64, error) {
	var n int64
	for _, m := range r.media {
		if m.FolderID != nil && *m.FolderID == folderID {
			m.FolderID = nil
			n++
		}
	}
	return n, nil
}

// fakeUserRepo is an in-memory UserRepository. setRolesErr and setBanErr
// inject write failures for optimistic-update tests.
type fakeUserRepo struct {
	users       map[uuid.UUID]*models.User
	setRolesErr error
	setBanErr   error
	listCalls   int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*models.User)}
}

func (r *fakeUserRepo) add(u models.User) *models.User {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	copied := u
	r.users[u.ID] = &copied
	return &copied
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeUserRepo) List(_ context.Context, query models.UserListQuery) (*models.UserList, error) {
	r.listCalls++
	var out []models.User
	for _, u := range r.users {
		if query.ExcludeSuperAdmins && u.IsSuperAdmin() {
			continue
		}
		out = append(out, *u)
	}
	return &models.UserList{Users: out, Total: int64(len(out))}, nil
}

func (r *fakeUserRepo) SetRoles(_ context.Context, id uuid.UUID, roles models.RoleSet) error {
	if r.setRolesErr != nil {
		return r.setRolesErr
	}
	u, ok := r.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.Roles = roles
	return nil
}

func (r *fakeUserRepo) SetBan(_ context.Context, id uuid.UUID, banned bool, reason string, expires *time.Time) error {
	if r.setBanErr != nil {
		return r.setBanErr
	}
	u, ok := r.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.Banned = banned
	u.BanReason = reason
	u.BanExpires = expires
	return nil
}

func (r *fakeUserRepo) CountAdmins(_ context.Context) (int64, error) {
	var n int64
	for _, u := range r.users {
		if u.Roles.CanManageUsers() {
			n++
		}
	}
	return n, nil
}

// fakeTxManager runs the function directly and records invocations.
type fakeTxManager struct {
	calls int
}

func (m *fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	m.calls++
	return fn(ctx)
}
