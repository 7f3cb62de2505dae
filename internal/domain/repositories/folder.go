package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/so-keyldzn/simple-cms-sub000/internal/domain/models"
)

// FolderRepository persists folders.
type FolderRepository interface {
	Create(ctx context.Context, folder *models.Folder) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Folder, error)
	// GetBySlugAndParent returns nil, nil when no sibling carries the slug.
	GetBySlugAndParent(ctx context.Context, slug string, parentID *uuid.UUID) (*models.Folder, error)
	Update(ctx context.Context, folder *models.Folder) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListChildren(ctx context.Context, parentID *uuid.UUID) ([]models.Folder, error)
	CountChildren(ctx context.Context, parentID uuid.UUID) (int64, error)
	GetAll(ctx context.Context) ([]models.Folder, error)
}
