package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/so-keyldzn/simple-cms-sub000/internal/domain"
	"github.com/so-keyldzn/simple-cms-sub000/internal/domain/models"
	"github.com/so-keyldzn/simple-cms-sub000/internal/domain/repositories"
)

// MediaRepository implements repositories.MediaRepository on Postgres.
type MediaRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewMediaRepository creates a new media repository.
func NewMediaRepository(config *RepositoryConfig) repositories.MediaRepository {
	return &MediaRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const mediaColumns = "id, file_name, original_name, url, mime_type, size, width, height, alt, caption, user_id, folder_id, created_at, updated_at"

func scanMedia(row interface{ Scan(...interface{}) error }, m *models.Media) error {
	return row.Scan(
		&m.ID,
		&m.FileName,
		&m.OriginalName,
		&m.URL,
		&m.MimeType,
		&m.Size,
		&m.Width,
		&m.Height,
		&m.Alt,
		&m.Caption,
		&m.UserID,
		&m.FolderID,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
}

// Create inserts a media record and fills in its generated fields.
func (r *MediaRepository) Create(ctx context.Context, media *models.Media) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (file_name, original_name, url, mime_type, size, width, height, alt, caption, user_id, folder_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`, r.tables.Media)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		media.FileName,
		media.OriginalName,
		media.URL,
		media.MimeType,
		media.Size,
		media.Width,
		media.Height,
		media.Alt,
		media.Caption,
		media.UserID,
		media.FolderID,
	).Scan(&media.ID, &media.CreatedAt, &media.UpdatedAt)

	if err != nil {
		if isPgForeignKeyError(err) {
			return fmt.Errorf("media folder: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create media: %w", err)
	}

	return nil
}

// GetByID retrieves a media record by ID.
func (r *MediaRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Media, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, mediaColumns, r.tables.Media)

	var media models.Media
	if err := scanMedia(GetExecutor(ctx, r.pool).QueryRow(ctx, query, id), &media); err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("media %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get media: %w", err)
	}

	return &media, nil
}

// Update persists a media record's mutable fields. Stored filename, URL,
// MIME type and size are immutable and never written here.
func (r *MediaRepository) Update(ctx context.Context, media *models.Media) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET original_name = $1, width = $2, height = $3, alt = $4, caption = $5, folder_id = $6, updated_at = now()
		WHERE id = $7
	`, r.tables.Media)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		media.OriginalName,
		media.Width,
		media.Height,
		media.Alt,
		media.Caption,
		media.FolderID,
		media.ID,
	)

	if err != nil {
		if isPgForeignKeyError(err) {
			return fmt.Errorf("media folder: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("update media: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("media %s: %w", media.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a media record.
func (r *MediaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Media)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete media: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("media %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// List returns media matching the filter, newest first.
func (r *MediaRepository) List(ctx context.Context, filter models.MediaFilter) ([]models.Media, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s`, mediaColumns, r.tables.Media)
	var args []interface{}

	switch {
	case filter.FolderID != nil:
		query += " WHERE folder_id = $1"
		args = append(args, *filter.FolderID)
	case filter.InRoot:
		query += " WHERE folder_id IS NULL"
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", len(args)+1)
		args = append(args, filter.Offset)
	}

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	defer rows.Close()

	var items []models.Media
	for rows.Next() {
		var media models.Media
		if err := scanMedia(rows, &media); err != nil {
			return nil, fmt.Errorf("scan media: %w", err)
		}
		items = append(items, media)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate media: %w", err)
	}

	return items, nil
}

// CountByFolder counts media records inside one folder.
func (r *MediaRepository) CountByFolder(ctx context.Context, folderID uuid.UUID) (int64, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE folder_id = $1`, r.tables.Media)

	var count int64
	if err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, folderID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count media by folder: %w", err)
	}

	return count, nil
}

// CountPerFolder returns media counts grouped by folder.
func (r *MediaRepository) CountPerFolder(ctx context.Context) (map[uuid.UUID]int64, error) {
	query := fmt.Sprintf(`SELECT folder_id, COUNT(*) FROM %s WHERE folder_id IS NOT NULL GROUP BY folder_id`, r.tables.Media)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count media per folder: %w", err)
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int64)
	for rows.Next() {
		var folderID uuid.UUID
		var count int64
		if err := rows.Scan(&folderID, &count); err != nil {
			return nil, fmt.Errorf("scan media count: %w", err)
		}
		counts[folderID] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate media counts: %w", err)
	}

	return counts, nil
}

// MoveToFolder reassigns every listed record in a single statement.
func (r *MediaRepository) MoveToFolder(ctx context.Context, ids []uuid.UUID, folderID *uuid.UUID) (int64, error) {
	query := fmt.Sprintf(`UPDATE %s SET folder_id = $1, updated_at = now() WHERE id = ANY($2)`, r.tables.Media)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, folderID, ids)
	if err != nil {
		if isPgForeignKeyError(err) {
			return 0, fmt.Errorf("media folder: %w", domain.ErrNotFound)
		}
		return 0, fmt.Errorf("move media: %w", err)
	}

	return result.RowsAffected(), nil
}

// DeleteByFolder removes every media record inside one folder.
func (r *MediaRepository) DeleteByFolder(ctx context.Context, folderID uuid.UUID) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE folder_id = $1`, r.tables.Media)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, folderID)
	if err != nil {
		return 0, fmt.Errorf("delete media by folder: %w", err)
	}

	return result.RowsAffected(), nil
}

// ClearFolder reparents every media record in one folder to the root.
func (r *MediaRepository) ClearFolder(ctx context.Context, folderID uuid.UUID) (int64, error) {
	query := fmt.Sprintf(`UPDATE %s SET folder_id = NULL, updated_at = now() WHERE folder_id = $1`, r.tables.Media)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, folderID)
	if err != nil {
		return 0, fmt.Errorf("clear media folder: %w", err)
	}

	return result.RowsAffected(), nil
}
