package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the tables when they do not exist yet. Statements are
// idempotent so startup is safe to repeat.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	stmts := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
				name          TEXT NOT NULL,
				email         TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL,
				roles         TEXT NOT NULL DEFAULT 'user',
				banned        BOOLEAN NOT NULL DEFAULT FALSE,
				ban_reason    TEXT NOT NULL DEFAULT '',
				ban_expires   TIMESTAMPTZ,
				created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
			)`, tables.Users),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
				name        TEXT NOT NULL,
				slug        TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				parent_id   UUID REFERENCES %s(id),
				sort_order  INTEGER NOT NULL DEFAULT 0,
				user_id     UUID NOT NULL,
				created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
			)`, tables.Folders, tables.Folders),
		// Slug uniqueness is per sibling group. Postgres treats NULLs as
		// distinct in unique indexes, so the root group needs its own
		// partial index.
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS %s_slug_parent_idx
			ON %s (slug, parent_id) WHERE parent_id IS NOT NULL`, tables.Folders, tables.Folders),
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS %s_slug_root_idx
			ON %s (slug) WHERE parent_id IS NULL`, tables.Folders, tables.Folders),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
				file_name     TEXT NOT NULL,
				original_name TEXT NOT NULL,
				url           TEXT NOT NULL,
				mime_type     TEXT NOT NULL,
				size          BIGINT NOT NULL,
				width         INTEGER,
				height        INTEGER,
				alt           TEXT NOT NULL DEFAULT '',
				caption       TEXT NOT NULL DEFAULT '',
				user_id       UUID NOT NULL,
				folder_id     UUID REFERENCES %s(id),
				created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
			)`, tables.Media, tables.Folders),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_folder_idx ON %s (folder_id)`, tables.Media, tables.Media),
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	return nil
}
