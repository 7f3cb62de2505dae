package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/so-keyldzn/simple-cms-sub000/internal/domain/models"
)

// CreateFolderRequest creates a folder under an optional parent.
type CreateFolderRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	UserID      uuid.UUID  `json:"-"`
}

// UpdateFolderRequest renames, reparents or reorders a folder. Nil fields are
// untouched. ParentID distinguishes "leave alone" (MoveToRoot false, ParentID
// nil) from "move to root" (MoveToRoot true).
type UpdateFolderRequest struct {
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	MoveToRoot  bool       `json:"move_to_root,omitempty"`
	SortOrder   *int       `json:"sort_order,omitempty"`
}

// FolderContents is a folder's immediate children plus its media.
type FolderContents struct {
	Folder  *models.Folder  `json:"folder,omitempty"`
	Folders []models.Folder `json:"folders"`
	Media   []models.Media  `json:"media"`
}

// FolderService validates and applies every folder mutation.
type FolderService interface {
	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*models.Folder, error)
	GetFolder(ctx context.Context, id uuid.UUID) (*models.Folder, error)
	UpdateFolder(ctx context.Context, id uuid.UUID, req *UpdateFolderRequest) (*models.Folder, error)
	// DeleteFolder refuses folders with child folders. deleteMedia selects
	// the cascade policy for contained media: delete them, or reparent them
	// to the root.
	DeleteFolder(ctx context.Context, id uuid.UUID, deleteMedia bool) error
	ListChildren(ctx context.Context, folderID *uuid.UUID) (*FolderContents, error)
}
