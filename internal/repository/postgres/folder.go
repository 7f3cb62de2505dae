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

// FolderRepository implements repositories.FolderRepository on Postgres.
type FolderRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewFolderRepository creates a new folder repository.
func NewFolderRepository(config *RepositoryConfig) repositories.FolderRepository {
	return &FolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const folderColumns = "id, name, slug, description, parent_id, sort_order, user_id, created_at, updated_at"

func scanFolder(row interface{ Scan(...interface{}) error }, f *models.Folder) error {
	return row.Scan(
		&f.ID,
		&f.Name,
		&f.Slug,
		&f.Description,
		&f.ParentID,
		&f.SortOrder,
		&f.UserID,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
}

// Create inserts a folder and fills in its generated fields.
func (r *FolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, slug, description, parent_id, sort_order, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, r.tables.Folders)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		folder.Name,
		folder.Slug,
		folder.Description,
		folder.ParentID,
		folder.SortOrder,
		folder.UserID,
	).Scan(&folder.ID, &folder.CreatedAt, &folder.UpdatedAt)

	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("folder '%s': %w", folder.Name, domain.ErrConflict)
		}
		return fmt.Errorf("create folder: %w", err)
	}

	return nil
}

// GetByID retrieves a folder by ID.
func (r *FolderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Folder, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, folderColumns, r.tables.Folders)

	var folder models.Folder
	if err := scanFolder(GetExecutor(ctx, r.pool).QueryRow(ctx, query, id), &folder); err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	return &folder, nil
}

// GetBySlugAndParent finds a sibling by slug. Returns nil, nil when absent.
func (r *FolderRepository) GetBySlugAndParent(ctx context.Context, slug string, parentID *uuid.UUID) (*models.Folder, error) {
	var query string
	var args []interface{}

	if parentID == nil {
		query = fmt.Sprintf(`SELECT %s FROM %s WHERE slug = $1 AND parent_id IS NULL`, folderColumns, r.tables.Folders)
		args = append(args, slug)
	} else {
		query = fmt.Sprintf(`SELECT %s FROM %s WHERE slug = $1 AND parent_id = $2`, folderColumns, r.tables.Folders)
		args = append(args, slug, *parentID)
	}

	var folder models.Folder
	if err := scanFolder(GetExecutor(ctx, r.pool).QueryRow(ctx, query, args...), &folder); err != nil {
		if isPgNoRowsError(err) {
			return nil, nil // not found, not an error
		}
		return nil, fmt.Errorf("get folder by slug and parent: %w", err)
	}

	return &folder, nil
}

// Update persists a folder's mutable fields.
func (r *FolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, slug = $2, description = $3, parent_id = $4, sort_order = $5, updated_at = now()
		WHERE id = $6
	`, r.tables.Folders)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		folder.Name,
		folder.Slug,
		folder.Description,
		folder.ParentID,
		folder.SortOrder,
		folder.ID,
	)

	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("folder '%s': %w", folder.Name, domain.ErrConflict)
		}
		return fmt.Errorf("update folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a folder row.
func (r *FolderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Folders)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		if isPgForeignKeyError(err) {
			return fmt.Errorf("folder still referenced: %w", domain.ErrConflict)
		}
		return fmt.Errorf("delete folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ListChildren lists immediate child folders, root-level when parentID is nil.
func (r *FolderRepository) ListChildren(ctx context.Context, parentID *uuid.UUID) ([]models.Folder, error) {
	var query string
	var args []interface{}

	if parentID == nil {
		query = fmt.Sprintf(`SELECT %s FROM %s WHERE parent_id IS NULL ORDER BY sort_order ASC, created_at DESC`, folderColumns, r.tables.Folders)
	} else {
		query = fmt.Sprintf(`SELECT %s FROM %s WHERE parent_id = $1 ORDER BY sort_order ASC, created_at DESC`, folderColumns, r.tables.Folders)
		args = append(args, *parentID)
	}

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list folder children: %w", err)
	}
	defer rows.Close()

	var folders []models.Folder
	for rows.Next() {
		var folder models.Folder
		if err := scanFolder(rows, &folder); err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	return folders, nil
}

// CountChildren counts immediate child folders.
func (r *FolderRepository) CountChildren(ctx context.Context, parentID uuid.UUID) (int64, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE parent_id = $1`, r.tables.Folders)

	var count int64
	if err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, parentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count folder children: %w", err)
	}

	return count, nil
}

// GetAll retrieves every folder as a flat list, ordered for the tree builder.
func (r *FolderRepository) GetAll(ctx context.Context) ([]models.Folder, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY sort_order ASC, created_at DESC`, folderColumns, r.tables.Folders)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all folders: %w", err)
	}
	defer rows.Close()

	var folders []models.Folder
	for rows.Next() {
		var folder models.Folder
		if err := scanFolder(rows, &folder); err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	return folders, nil
}
