package models

import (
	"time"

	"github.com/google/uuid"
)

// Media is an uploaded file record. FileName is the stored name on disk and
// never changes after upload; OriginalName is the human-readable display name
// and is the only thing rename touches. A nil FolderID means the item lives
// at the library root.
type Media struct {
	ID           uuid.UUID  `json:"id"`
	FileName     string     `json:"file_name"`
	OriginalName string     `json:"original_name"`
	URL          string     `json:"url"`
	MimeType     string     `json:"mime_type"`
	Size         int64      `json:"size"`
	Width        *int       `json:"width,omitempty"`
	Height       *int       `json:"height,omitempty"`
	Alt          string     `json:"alt,omitempty"`
	Caption      string     `json:"caption,omitempty"`
	UserID       uuid.UUID  `json:"user_id"`
	FolderID     *uuid.UUID `json:"folder_id"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// MediaFilter narrows media listings. FolderID filters by containing folder;
// InRoot selects items with no folder when true (FolderID must be nil then).
type MediaFilter struct {
	FolderID *uuid.UUID
	InRoot   bool
	Limit    int
	Offset   int
}
