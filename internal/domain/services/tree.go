package services

import (
	"context"

	"github.com/so-keyldzn/simple-cms-sub000/internal/domain/models"
)

// TreeService builds the folder forest for the media library.
type TreeService interface {
	GetTree(ctx context.Context) (*models.Forest, error)
}
