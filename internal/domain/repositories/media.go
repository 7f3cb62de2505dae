package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/so-keyldzn/simple-cms-sub000/internal/domain/models"
)

// MediaRepository persists media records.
type MediaRepository interface {
	Create(ctx context.Context, media *models.Media) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Media, error)
	Update(ctx context.Context, media *models.Media) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter models.MediaFilter) ([]models.Media, error)
	CountByFolder(ctx context.Context, folderID uuid.UUID) (int64, error)
	CountPerFolder(ctx context.Context) (map[uuid.UUID]int64, error)
	// MoveToFolder reassigns every listed record in one statement. A nil
	// folderID clears the reference (moves to root).
	MoveToFolder(ctx context.Context, ids []uuid.UUID, folderID *uuid.UUID) (int64, error)
	DeleteByFolder(ctx context.Context, folderID uuid.UUID) (int64, error)
	ClearFolder(ctx context.Context, folderID uuid.UUID) (int64, error)
}
