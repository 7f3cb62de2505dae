package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"github.com/so-keyldzn/simple-cms-sub000/internal/cache"
	"github.com/so-keyldzn/simple-cms-sub000/internal/config"
	"github.com/so-keyldzn/simple-cms-sub000/internal/domain"
	"github.com/so-keyldzn/simple-cms-sub000/internal/domain/models"
	"github.com/so-keyldzn/simple-cms-sub000/internal/domain/repositories"
	"github.com/so-keyldzn/simple-cms-sub000/internal/domain/services"
)

// displayNameSanitizer strips everything outside the restricted display-name
// character set.
var displayNameSanitizer = regexp.MustCompile(`[^A-Za-z0-9 ._-]+`)

// SanitizeDisplayName restricts a media display name to letters, digits,
// spaces, dots, underscores and hyphens, collapsing surrounding whitespace.
func SanitizeDisplayName(name string) string {
	return strings.TrimSpace(displayNameSanitizer.ReplaceAllString(name, ""))
}

type mediaService struct {
	mediaRepo  repositories.MediaRepository
	folderRepo repositories.FolderRepository
	txManager  repositories.TransactionManager
	cache      *cache.QueryCache
	logger     *slog.Logger
}

// NewMediaService creates a new media service.
func NewMediaService(
	mediaRepo repositories.MediaRepository,
	folderRepo repositories.FolderRepository,
	txManager repositories.TransactionManager,
	queryCache *cache.QueryCache,
	logger *slog.Logger,
) services.MediaService {
	return &mediaService{
		mediaRepo:  mediaRepo,
		folderRepo: folderRepo,
		txManager:  txManager,
		cache:      queryCache,
		logger:     logger,
	}
}

// CreateMedia records an uploaded file.
func (s *mediaService) CreateMedia(ctx context.Context, req *services.CreateMediaRequest) (*models.Media, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.FileName, validation.Required),
		validation.Field(&req.URL, validation.Required, is.RequestURI),
		validation.Field(&req.MimeType, validation.Required),
		validation.Field(&req.Size, validation.Required, validation.Min(int64(1))),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	originalName := SanitizeDisplayName(req.OriginalName)
	if originalName == "" {
		originalName = req.FileName
	}

	if req.FolderID != nil {
		if _, err := s.folderRepo.GetByID(ctx, *req.FolderID); err != nil {
			return nil, fmt.Errorf("media folder: %w", err)
		}
	}

	media := &models.Media{
		FileName:     req.FileName,
		OriginalName: originalName,
		URL:          req.URL,
		MimeType:     req.MimeType,
		Size:         req.Size,
		Width:        req.Width,
		Height:       req.Height,
		UserID:       req.UserID,
		FolderID:     req.FolderID,
	}

	if err := s.mediaRepo.Create(ctx, media); err != nil {
		return nil, err
	}

	s.cache.InvalidateEntity(EntityMedia)
	s.cache.InvalidateEntity(EntityFolders)

	s.logger.Info("media created",
		"id", media.ID,
		"file_name", media.FileName,
		"mime_type", media.MimeType,
		"size", media.Size,
		"folder_id", media.FolderID,
	)

	return media, nil
}

// GetMedia retrieves a media record by ID.
func (s *mediaService) GetMedia(ctx context.Context, id uuid.UUID) (*models.Media, error) {
	return s.mediaRepo.GetByID(ctx, id)
}

// UpdateMedia edits metadata, renames the display name or moves the record.
// The stored filename, URL, MIME type and size never change here.
func (s *mediaService) UpdateMedia(ctx context.Context, id uuid.UUID, req *services.UpdateMediaRequest) (*models.Media, error) {
	media, err := s.mediaRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.OriginalName != nil {
		name := SanitizeDisplayName(*req.OriginalName)
		if name == "" {
			return nil, fmt.Errorf("%w: display name is empty after sanitization", domain.ErrValidation)
		}
		if err := validation.Validate(name, validation.Length(1, config.MaxMediaNameLength)); err != nil {
			return nil, fmt.Errorf("%w: display name: %v", domain.ErrValidation, err)
		}
		media.OriginalName = name
	}

	if req.Alt != nil {
		media.Alt = *req.Alt
	}
	if req.Caption != nil {
		media.Caption = *req.Caption
	}
	if req.Width != nil {
		media.Width = req.Width
	}
	if req.Height != nil {
		media.Height = req.Height
	}

	switch {
	case req.MoveToRoot:
		media.FolderID = nil
	case req.FolderID != nil:
		if _, err := s.folderRepo.GetByID(ctx, *req.FolderID); err != nil {
			return nil, fmt.Errorf("target folder: %w", err)
		}
		media.FolderID = req.FolderID
	}

	if err := s.mediaRepo.Update(ctx, media); err != nil {
		return nil, err
	}

	s.cache.InvalidateEntity(EntityMedia)
	s.cache.InvalidateEntity(EntityFolders)

	s.logger.Info("media updated", "id", media.ID, "folder_id", media.FolderID)

	return media, nil
}

// ListMedia lists media matching the filter through the cache.
func (s *mediaService) ListMedia(ctx context.Context, filter models.MediaFilter) ([]models.Media, error) {
	filterKey := "root"
	if filter.FolderID != nil {
		filterKey = filter.FolderID.String()
	} else if !filter.InRoot {
		filterKey = "all"
	}
	key := cache.Key{
		Entity: EntityMedia,
		Op:     "list",
		Filter: fmt.Sprintf("%s:%d:%d", filterKey, filter.Limit, filter.Offset),
	}

	payload, err := s.cache.GetOrLoad(ctx, key, func(ctx context.Context) (interface{}, error) {
		items, err := s.mediaRepo.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}

	return payload.([]models.Media), nil
}

// DeleteMedia removes a single record. Deletion is unconditional; there is
// no soft delete.
func (s *mediaService) DeleteMedia(ctx context.Context, id uuid.UUID) error {
	if err := s.mediaRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.cache.InvalidateEntity(EntityMedia)
	s.cache.InvalidateEntity(EntityFolders)

	s.logger.Info("media deleted", "id", id)
	return nil
}

// BulkMove moves many records to one target folder in a single transaction.
// The target's existence is verified before any row changes.
func (s *mediaService) BulkMove(ctx context.Context, req *services.BulkMoveRequest) (int64, error) {
	if len(req.IDs) == 0 {
		return 0, fmt.Errorf("%w: no media ids given", domain.ErrValidation)
	}

	if req.FolderID != nil {
		if _, err := s.folderRepo.GetByID(ctx, *req.FolderID); err != nil {
			return 0, fmt.Errorf("target folder: %w", err)
		}
	}

	var moved int64
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		var err error
		moved, err = s.mediaRepo.MoveToFolder(ctx, req.IDs, req.FolderID)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.cache.InvalidateEntity(EntityMedia)
	s.cache.InvalidateEntity(EntityFolders)

	s.logger.Info("media bulk moved",
		"count", moved,
		"requested", len(req.IDs),
		"folder_id", req.FolderID,
	)

	return moved, nil
}

// BulkDelete removes many records in one transaction. Any per-item failure
// rolls the whole batch back and the failed identifiers are reported, not
// just tallied.
func (s *mediaService) BulkDelete(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: no media ids given", domain.ErrValidation)
	}

	var deleted int64
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		var failed []uuid.UUID
		var firstErr error
		for _, id := range ids {
			if err := s.mediaRepo.Delete(ctx, id); err != nil {
				failed = append(failed, id)
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			deleted++
		}
		if len(failed) > 0 {
			return &domain.BulkError{Op: "bulk delete", FailedIDs: failed, Cause: firstErr}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.cache.InvalidateEntity(EntityMedia)
	s.cache.InvalidateEntity(EntityFolders)

	s.logger.Info("media bulk deleted", "count", deleted)

	return deleted, nil
}
