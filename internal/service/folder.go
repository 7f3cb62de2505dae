package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/so-keyldzn/simple-cms-sub000/internal/cache"
	"github.com/so-keyldzn/simple-cms-sub000/internal/config"
	"github.com/so-keyldzn/simple-cms-sub000/internal/domain"
	"github.com/so-keyldzn/simple-cms-sub000/internal/domain/models"
	"github.com/so-keyldzn/simple-cms-sub000/internal/domain/repositories"
	"github.com/so-keyldzn/simple-cms-sub000/internal/domain/services"
	"github.com/so-keyldzn/simple-cms-sub000/internal/slug"
)

type folderService struct {
	folderRepo repositories.FolderRepository
	mediaRepo  repositories.MediaRepository
	txManager  repositories.TransactionManager
	cache      *cache.QueryCache
	logger     *slog.Logger
}

// NewFolderService creates a new folder service.
func NewFolderService(
	folderRepo repositories.FolderRepository,
	mediaRepo repositories.MediaRepository,
	txManager repositories.TransactionManager,
	queryCache *cache.QueryCache,
	logger *slog.Logger,
) services.FolderService {
	return &folderService{
		folderRepo: folderRepo,
		mediaRepo:  mediaRepo,
		txManager:  txManager,
		cache:      queryCache,
		logger:     logger,
	}
}

// CreateFolder validates and creates a folder.
func (s *folderService) CreateFolder(ctx context.Context, req *services.CreateFolderRequest) (*models.Folder, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxFolderNameLength)),
		validation.Field(&req.Description, validation.Length(0, config.MaxDescriptionLength)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	folderSlug := slug.Make(req.Name)
	if folderSlug == "" {
		return nil, fmt.Errorf("%w: name yields an empty slug", domain.ErrValidation)
	}

	if req.ParentID != nil {
		parent, err := s.folderRepo.GetByID(ctx, *req.ParentID)
		if err != nil {
			return nil, fmt.Errorf("parent folder: %w", err)
		}
		if err := s.checkDepth(ctx, parent); err != nil {
			return nil, err
		}
	}

	if err := s.checkSlugUnique(ctx, folderSlug, req.ParentID); err != nil {
		return nil, err
	}

	folder := &models.Folder{
		Name:        req.Name,
		Slug:        folderSlug,
		Description: req.Description,
		ParentID:    req.ParentID,
		UserID:      req.UserID,
	}

	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}

	s.cache.InvalidateEntity(EntityFolders)

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"slug", folder.Slug,
		"parent_id", req.ParentID,
	)

	return folder, nil
}

// GetFolder retrieves a folder by ID.
func (s *folderService) GetFolder(ctx context.Context, id uuid.UUID) (*models.Folder, error) {
	return s.folderRepo.GetByID(ctx, id)
}

// UpdateFolder renames, reparents or reorders a folder. Every check runs
// before anything is persisted, so a rejected operation leaves the stored
// parent reference untouched.
func (s *folderService) UpdateFolder(ctx context.Context, id uuid.UUID, req *services.UpdateFolderRequest) (*models.Folder, error) {
	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	renamed := false
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := validation.Validate(name, validation.Required, validation.Length(1, config.MaxFolderNameLength)); err != nil {
			return nil, fmt.Errorf("%w: name: %v", domain.ErrValidation, err)
		}
		if name != folder.Name {
			folder.Name = name
			// Slug is only recomputed when the name actually changed.
			folder.Slug = slug.Make(name)
			if folder.Slug == "" {
				return nil, fmt.Errorf("%w: name yields an empty slug", domain.ErrValidation)
			}
			renamed = true
		}
	}

	if req.Description != nil {
		if err := validation.Validate(*req.Description, validation.Length(0, config.MaxDescriptionLength)); err != nil {
			return nil, fmt.Errorf("%w: description: %v", domain.ErrValidation, err)
		}
		folder.Description = *req.Description
	}

	reparented := false
	switch {
	case req.MoveToRoot:
		if folder.ParentID != nil {
			folder.ParentID = nil
			reparented = true
		}
	case req.ParentID != nil:
		if *req.ParentID == id {
			return nil, domain.NewConflict(domain.ConflictSelfParent, "folder", id,
				"a folder cannot be its own parent")
		}
		newParent, err := s.folderRepo.GetByID(ctx, *req.ParentID)
		if err != nil {
			return nil, fmt.Errorf("parent folder: %w", err)
		}
		if err := s.checkNoCycle(ctx, id, newParent); err != nil {
			return nil, err
		}
		if err := s.checkDepth(ctx, newParent); err != nil {
			return nil, err
		}
		if folder.ParentID == nil || *folder.ParentID != newParent.ID {
			folder.ParentID = &newParent.ID
			reparented = true
		}
	}

	if renamed || reparented {
		if err := s.checkSlugUniqueExcept(ctx, folder.Slug, folder.ParentID, id); err != nil {
			return nil, err
		}
	}

	if req.SortOrder != nil {
		folder.SortOrder = *req.SortOrder
	}

	if err := s.folderRepo.Update(ctx, folder); err != nil {
		return nil, err
	}

	s.cache.InvalidateEntity(EntityFolders)

	s.logger.Info("folder updated",
		"id", folder.ID,
		"name", folder.Name,
		"parent_id", folder.ParentID,
		"renamed", renamed,
		"reparented", reparented,
	)

	return folder, nil
}

// DeleteFolder deletes a folder. Folders with child folders are refused
// regardless of the media policy. Contained media are either deleted or
// reparented to the root; policy application and folder removal happen in
// one transaction.
func (s *folderService) DeleteFolder(ctx context.Context, id uuid.UUID, deleteMedia bool) error {
	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	children, err := s.folderRepo.CountChildren(ctx, id)
	if err != nil {
		return fmt.Errorf("check child folders: %w", err)
	}
	if children > 0 {
		return domain.NewConflict(domain.ConflictHasSubfolders, "folder", id,
			"cannot delete a folder containing %d subfolder(s)", children)
	}

	var affected int64
	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if deleteMedia {
			affected, err = s.mediaRepo.DeleteByFolder(ctx, id)
		} else {
			affected, err = s.mediaRepo.ClearFolder(ctx, id)
		}
		if err != nil {
			return err
		}
		return s.folderRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.cache.InvalidateEntity(EntityFolders)
	s.cache.InvalidateEntity(EntityMedia)

	s.logger.Info("folder deleted",
		"id", id,
		"name", folder.Name,
		"delete_media", deleteMedia,
		"media_affected", affected,
	)

	return nil
}

// ListChildren lists a folder's immediate child folders and media, or the
// root level when folderID is nil.
func (s *folderService) ListChildren(ctx context.Context, folderID *uuid.UUID) (*services.FolderContents, error) {
	filterKey := "root"
	if folderID != nil {
		filterKey = folderID.String()
	}
	key := cache.Key{Entity: EntityFolders, Op: "children", Filter: filterKey}

	payload, err := s.cache.GetOrLoad(ctx, key, func(ctx context.Context) (interface{}, error) {
		contents := &services.FolderContents{}

		if folderID != nil {
			folder, err := s.folderRepo.GetByID(ctx, *folderID)
			if err != nil {
				return nil, err
			}
			contents.Folder = folder
		}

		folders, err := s.folderRepo.ListChildren(ctx, folderID)
		if err != nil {
			return nil, fmt.Errorf("list child folders: %w", err)
		}
		contents.Folders = folders

		media, err := s.mediaRepo.List(ctx, models.MediaFilter{FolderID: folderID, InRoot: folderID == nil})
		if err != nil {
			return nil, fmt.Errorf("list folder media: %w", err)
		}
		contents.Media = media

		return contents, nil
	})
	if err != nil {
		return nil, err
	}

	return payload.(*services.FolderContents), nil
}

// checkSlugUnique rejects a slug already used among siblings of the parent.
func (s *folderService) checkSlugUnique(ctx context.Context, folderSlug string, parentID *uuid.UUID) error {
	return s.checkSlugUniqueExcept(ctx, folderSlug, parentID, uuid.Nil)
}

func (s *folderService) checkSlugUniqueExcept(ctx context.Context, folderSlug string, parentID *uuid.UUID, except uuid.UUID) error {
	existing, err := s.folderRepo.GetBySlugAndParent(ctx, folderSlug, parentID)
	if err != nil {
		return fmt.Errorf("check slug uniqueness: %w", err)
	}
	if existing != nil && existing.ID != except {
		return domain.NewConflict(domain.ConflictDuplicateName, "folder", existing.ID,
			"a folder named '%s' already exists here", existing.Name)
	}
	return nil
}

// checkDepth walks upward from parent toward the root, counting levels. The
// walk is bounded at MaxFolderDepth hops; not reaching the root within the
// bound rejects the operation, which both caps tree depth and acts as a
// safety net against a corrupted (cyclic) ancestor chain.
func (s *folderService) checkDepth(ctx context.Context, parent *models.Folder) error {
	depth := 1
	current := parent
	for current.ParentID != nil {
		depth++
		if depth >= models.MaxFolderDepth {
			return domain.NewConflict(domain.ConflictMaxDepth, "folder", parent.ID,
				"folder tree cannot exceed %d levels", models.MaxFolderDepth)
		}
		next, err := s.folderRepo.GetByID(ctx, *current.ParentID)
		if err != nil {
			return fmt.Errorf("walk ancestors: %w", err)
		}
		current = next
	}
	return nil
}

// checkNoCycle walks upward from the proposed new parent toward the root.
// Reaching the folder being moved means the move would place the folder
// inside its own subtree.
func (s *folderService) checkNoCycle(ctx context.Context, moving uuid.UUID, newParent *models.Folder) error {
	current := newParent
	for {
		if current.ID == moving {
			return domain.NewConflict(domain.ConflictCycle, "folder", moving,
				"cannot move a folder into its own subtree")
		}
		if current.ParentID == nil {
			return nil
		}
		next, err := s.folderRepo.GetByID(ctx, *current.ParentID)
		if err != nil {
			return fmt.Errorf("walk ancestors: %w", err)
		}
		current = next
	}
}
