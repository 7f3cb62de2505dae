package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxFolderDepth bounds how deep the folder tree may grow. The ancestor walk
// in the folder service refuses to create or move a folder past this many
// levels, which also acts as a safety net against cyclic parent chains.
const MaxFolderDepth = 10

// Folder is a named node in the media-organization tree. A nil ParentID means
// the folder sits at the root.
type Folder struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description string     `json:"description,omitempty"`
	ParentID    *uuid.UUID `json:"parent_id"`
	SortOrder   int        `json:"sort_order"`
	UserID      uuid.UUID  `json:"user_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// FolderNode is a folder with its children attached, as produced by the tree
// builder. Children are ordered by sort_order, then created_at descending.
type FolderNode struct {
	Folder
	MediaCount int64         `json:"media_count"`
	Children   []*FolderNode `json:"children"`
}

// Forest is the rooted forest the tree builder returns. Roots follow the same
// sibling ordering as children.
type Forest struct {
	Roots []*FolderNode `json:"roots"`
}
