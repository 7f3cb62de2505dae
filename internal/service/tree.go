package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/so-keyldzn/simple-cms-sub000/internal/cache"
	"github.com/so-keyldzn/simple-cms-sub000/internal/domain"
	"github.com/so-keyldzn/simple-cms-sub000/internal/domain/models"
	"github.com/so-keyldzn/simple-cms-sub000/internal/domain/repositories"
	"github.com/so-keyldzn/simple-cms-sub000/internal/domain/services"
)

// BuildForest turns a flat folder list into a rooted forest. Every folder
// appears exactly once; a folder whose parent does not resolve is promoted to
// the root rather than dropped, so inconsistent data degrades to a flat view
// instead of vanishing. Siblings are ordered by sort_order ascending, ties
// broken by created_at descending. Pure: identical input yields a
// structurally identical forest.
func BuildForest(folders []models.Folder, mediaCounts map[uuid.UUID]int64) *models.Forest {
	nodes := make(map[uuid.UUID]*models.FolderNode, len(folders))
	for _, f := range folders {
		nodes[f.ID] = &models.FolderNode{
			Folder:     f,
			MediaCount: mediaCounts[f.ID],
			Children:   []*models.FolderNode{},
		}
	}

	roots := make([]*models.FolderNode, 0)
	for _, f := range folders {
		node := nodes[f.ID]
		if f.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*f.ParentID]
		if !ok {
			// Orphan: parent reference does not resolve. Promote to root.
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	sortSiblings(roots)
	for _, node := range nodes {
		sortSiblings(node.Children)
	}

	return &models.Forest{Roots: roots}
}

func sortSiblings(nodes []*models.FolderNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].SortOrder != nodes[j].SortOrder {
			return nodes[i].SortOrder < nodes[j].SortOrder
		}
		return nodes[i].CreatedAt.After(nodes[j].CreatedAt)
	})
}

// ValidateHierarchy checks the acyclic, parent-resolves-or-null invariant
// over a flat folder list. It returns an InconsistentHierarchyError listing
// every orphan and every folder on a cyclic parent chain, or nil when the
// data is sound. The mutation guard should make violations impossible; this
// pass exists so violations that slip in anyway surface as data errors
// instead of being silently reshaped by the builder.
func ValidateHierarchy(folders []models.Folder) error {
	byID := make(map[uuid.UUID]*models.Folder, len(folders))
	for i := range folders {
		byID[folders[i].ID] = &folders[i]
	}

	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)
	state := make(map[uuid.UUID]int, len(folders))

	var issues []domain.HierarchyIssue
	for i := range folders {
		if state[folders[i].ID] != unvisited {
			continue
		}

		// Walk the parent chain, marking the path; revisiting a node on the
		// current path means a cycle.
		var path []uuid.UUID
		id := folders[i].ID
		for {
			if state[id] == done {
				break
			}
			if state[id] == inStack {
				issues = append(issues, domain.HierarchyIssue{FolderID: id, Problem: "cycle"})
				break
			}
			state[id] = inStack
			path = append(path, id)

			f := byID[id]
			if f.ParentID == nil {
				break
			}
			parent, ok := byID[*f.ParentID]
			if !ok {
				issues = append(issues, domain.HierarchyIssue{FolderID: id, ParentID: f.ParentID, Problem: "orphan"})
				break
			}
			id = parent.ID
		}

		for _, p := range path {
			state[p] = done
		}
	}

	if len(issues) > 0 {
		return &domain.InconsistentHierarchyError{Issues: issues}
	}
	return nil
}

type treeService struct {
	folderRepo repositories.FolderRepository
	mediaRepo  repositories.MediaRepository
	cache      *cache.QueryCache
	logger     *slog.Logger
}

// NewTreeService creates a new tree service.
func NewTreeService(
	folderRepo repositories.FolderRepository,
	mediaRepo repositories.MediaRepository,
	queryCache *cache.QueryCache,
	logger *slog.Logger,
) services.TreeService {
	return &treeService{
		folderRepo: folderRepo,
		mediaRepo:  mediaRepo,
		cache:      queryCache,
		logger:     logger,
	}
}

var treeCacheKey = cache.Key{Entity: EntityFolders, Op: "tree"}

// GetTree loads all folders, validates the stored hierarchy and builds the
// forest. Validation failures are logged as data inconsistency but the
// forest is still returned so the library stays browsable.
func (s *treeService) GetTree(ctx context.Context) (*models.Forest, error) {
	payload, err := s.cache.GetOrLoad(ctx, treeCacheKey, func(ctx context.Context) (interface{}, error) {
		folders, err := s.folderRepo.GetAll(ctx)
		if err != nil {
			return nil, err
		}

		if err := ValidateHierarchy(folders); err != nil {
			var inconsistent *domain.InconsistentHierarchyError
			if errors.As(err, &inconsistent) {
				s.logger.Error("stored folder hierarchy is inconsistent",
					"issues", len(inconsistent.Issues),
					"error", err,
				)
			}
		}

		counts, err := s.mediaRepo.CountPerFolder(ctx)
		if err != nil {
			return nil, err
		}

		forest := BuildForest(folders, counts)
		s.logger.Debug("folder tree built", "folders", len(folders), "roots", len(forest.Roots))
		return forest, nil
	})
	if err != nil {
		return nil, err
	}

	return payload.(*models.Forest), nil
}
