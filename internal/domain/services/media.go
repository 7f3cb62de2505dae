package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/so-keyldzn/simple-cms-sub000/internal/domain/models"
)

// CreateMediaRequest records an uploaded file. The stored filename and URL
// come from the upload step and are immutable afterwards.
type CreateMediaRequest struct {
	FileName     string
	OriginalName string
	URL          string
	MimeType     string
	Size         int64
	Width        *int
	Height       *int
	UserID       uuid.UUID
	FolderID     *uuid.UUID
}

// UpdateMediaRequest edits media metadata. Nil fields are untouched.
// OriginalName is sanitized; MIME type and size cannot be changed.
type UpdateMediaRequest struct {
	OriginalName *string    `json:"original_name,omitempty"`
	Alt          *string    `json:"alt,omitempty"`
	Caption      *string    `json:"caption,omitempty"`
	Width        *int       `json:"width,omitempty"`
	Height       *int       `json:"height,omitempty"`
	FolderID     *uuid.UUID `json:"folder_id,omitempty"`
	MoveToRoot   bool       `json:"move_to_root,omitempty"`
}

// BulkMoveRequest moves many media records to one target folder, or to the
// root when FolderID is nil.
type BulkMoveRequest struct {
	IDs      []uuid.UUID `json:"ids"`
	FolderID *uuid.UUID  `json:"folder_id,omitempty"`
}

// MediaService manages media records and their folder assignment.
type MediaService interface {
	CreateMedia(ctx context.Context, req *CreateMediaRequest) (*models.Media, error)
	GetMedia(ctx context.Context, id uuid.UUID) (*models.Media, error)
	UpdateMedia(ctx context.Context, id uuid.UUID, req *UpdateMediaRequest) (*models.Media, error)
	ListMedia(ctx context.Context, filter models.MediaFilter) ([]models.Media, error)
	DeleteMedia(ctx context.Context, id uuid.UUID) error
	BulkMove(ctx context.Context, req *BulkMoveRequest) (int64, error)
	BulkDelete(ctx context.Context, ids []uuid.UUID) (int64, error)
}
