package handler

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/so-keyldzn/simple-cms-sub000/internal/domain/models"
	"github.com/so-keyldzn/simple-cms-sub000/internal/domain/services"
	"github.com/so-keyldzn/simple-cms-sub000/internal/httputil"
)

// UploadConfig controls where uploaded files land and what is accepted.
type UploadConfig struct {
	Dir          string
	BaseURL      string
	MaxSize      int64
	AllowedTypes map[string]bool
}

// DefaultAllowedTypes is the upload MIME allowlist.
func DefaultAllowedTypes() map[string]bool {
	return map[string]bool{
		"image/jpeg":      true,
		"image/png":       true,
		"image/gif":       true,
		"image/webp":      true,
		"image/svg+xml":   true,
		"video/mp4":       true,
		"audio/mpeg":      true,
		"application/pdf": true,
	}
}

// MediaHandler handles media HTTP requests.
type MediaHandler struct {
	mediaService services.MediaService
	upload       UploadConfig
	logger       *slog.Logger
}

// NewMediaHandler creates a new media handler.
func NewMediaHandler(mediaService services.MediaService, upload UploadConfig, logger *slog.Logger) *MediaHandler {
	return &MediaHandler{
		mediaService: mediaService,
		upload:       upload,
		logger:       logger,
	}
}

// Upload accepts a multipart file, stores it and records its metadata. The
// response envelope carries the stored URL.
// POST /api/media
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if !requireContentRole(w, r) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.upload.MaxSize)
	if err := r.ParseMultipartForm(h.upload.MaxSize); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if !h.upload.AllowedTypes[mimeType] {
		httputil.RespondError(w, http.StatusBadRequest, fmt.Sprintf("unsupported media type %q", mimeType))
		return
	}

	var folderID *uuid.UUID
	if raw := r.FormValue("folder_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "invalid folder_id")
			return
		}
		folderID = &id
	}

	storedName := uuid.New().String() + filepath.Ext(header.Filename)
	if err := os.MkdirAll(h.upload.Dir, 0755); err != nil {
		h.logger.Error("create upload dir", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	dst, err := os.Create(filepath.Join(h.upload.Dir, storedName))
	if err != nil {
		h.logger.Error("create upload file", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	defer dst.Close()

	size, err := io.Copy(dst, file)
	if err != nil {
		h.logger.Error("write upload file", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	media, err := h.mediaService.CreateMedia(r.Context(), &services.CreateMediaRequest{
		FileName:     storedName,
		OriginalName: header.Filename,
		URL:          path.Join(h.upload.BaseURL, storedName),
		MimeType:     mimeType,
		Size:         size,
		UserID:       httputil.GetUserID(r),
		FolderID:     folderID,
	})
	if err != nil {
		// The metadata write failed; remove the stored file so the upload
		// directory does not accumulate unreferenced blobs.
		if rmErr := os.Remove(filepath.Join(h.upload.Dir, storedName)); rmErr != nil {
			h.logger.Warn("remove orphaned upload", "file", storedName, "error", rmErr)
		}
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, media)
}

// ListMedia lists media, optionally scoped to one folder or the root
// GET /api/media?folder_id=...&in_root=true
func (h *MediaHandler) ListMedia(w http.ResponseWriter, r *http.Request) {
	filter := models.MediaFilter{}

	if raw := r.URL.Query().Get("folder_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "invalid folder_id")
			return
		}
		filter.FolderID = &id
	} else if r.URL.Query().Get("in_root") == "true" {
		filter.InRoot = true
	}

	items, err := h.mediaService.ListMedia(r.Context(), filter)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, items)
}

// GetMedia retrieves one media record
// GET /api/media/{id}
func (h *MediaHandler) GetMedia(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid media ID")
		return
	}

	media, err := h.mediaService.GetMedia(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, media)
}

// UpdateMedia edits metadata, renames or moves a media record
// PATCH /api/media/{id}
func (h *MediaHandler) UpdateMedia(w http.ResponseWriter, r *http.Request) {
	if !requireContentRole(w, r) {
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid media ID")
		return
	}

	var req services.UpdateMediaRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	media, err := h.mediaService.UpdateMedia(r.Context(), id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, media)
}

// DeleteMedia removes one media record
// DELETE /api/media/{id}
func (h *MediaHandler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	if !requireContentRole(w, r) {
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid media ID")
		return
	}

	if err := h.mediaService.DeleteMedia(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// BulkMove moves many media records to one target folder
// POST /api/media/bulk/move
func (h *MediaHandler) BulkMove(w http.ResponseWriter, r *http.Request) {
	if !requireContentRole(w, r) {
		return
	}

	var req services.BulkMoveRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	moved, err := h.mediaService.BulkMove(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]int64{"moved": moved})
}

// BulkDelete removes many media records
// POST /api/media/bulk/delete
func (h *MediaHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	if !requireContentRole(w, r) {
		return
	}

	var req struct {
		IDs []uuid.UUID `json:"ids"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	deleted, err := h.mediaService.BulkDelete(r.Context(), req.IDs)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}
