package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/so-keyldzn/simple-cms-sub000/internal/domain"
	"github.com/so-keyldzn/simple-cms-sub000/internal/domain/models"
)

func folderAt(id uuid.UUID, name string, parentID *uuid.UUID, sortOrder int, createdAt time.Time) models.Folder {
	return models.Folder{
		ID:        id,
		Name:      name,
		Slug:      name,
		ParentID:  parentID,
		SortOrder: sortOrder,
		CreatedAt: createdAt,
	}
}

func TestBuildForest_Nesting(t *testing.T) {
	now := time.Now()
	rootID := uuid.New()
	childID := uuid.New()
	grandchildID := uuid.New()

	folders := []models.Folder{
		folderAt(rootID, "root", nil, 0, now),
		folderAt(childID, "child", &rootID, 0, now),
		folderAt(grandchildID, "grandchild", &childID, 0, now),
	}
	counts := map[uuid.UUID]int64{childID: 3}

	forest := BuildForest(folders, counts)

	if len(forest.Roots) != 1 {
		t.Fatalf("roots = %d, want 1", len(forest.Roots))
	}
	root := forest.Roots[0]
	if root.ID != rootID {
		t.Errorf("root = %s, want %s", root.ID, rootID)
	}
	if len(root.Children) != 1 || root.Children[0].ID != childID {
		t.Fatalf("root children wrong: %+v", root.Children)
	}
	child := root.Children[0]
	if child.MediaCount != 3 {
		t.Errorf("child media count = %d, want 3", child.MediaCount)
	}
	if len(child.Children) != 1 || child.Children[0].ID != grandchildID {
		t.Fatalf("grandchild missing: %+v", child.Children)
	}
	if len(child.Children[0].Children) != 0 {
		t.Error("grandchild should be a leaf")
	}
}

func TestBuildForest_SiblingOrdering(t *testing.T) {
	base := time.Now()
	older := uuid.New()
	newer := uuid.New()
	last := uuid.New()

	// Same sort order for the first two: the newer one wins the tie.
	folders := []models.Folder{
		folderAt(older, "older", nil, 1, base),
		folderAt(newer, "newer", nil, 1, base.Add(time.Minute)),
		folderAt(last, "last", nil, 2, base),
	}

	forest := BuildForest(folders, nil)

	if len(forest.Roots) != 3 {
		t.Fatalf("roots = %d, want 3", len(forest.Roots))
	}
	got := []uuid.UUID{forest.Roots[0].ID, forest.Roots[1].ID, forest.Roots[2].ID}
	want := []uuid.UUID{newer, older, last}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ordering[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestBuildForest_OrphanPromotedToRoot(t *testing.T) {
	missing := uuid.New()
	orphan := uuid.New()
	normal := uuid.New()

	folders := []models.Folder{
		folderAt(normal, "normal", nil, 0, time.Now()),
		folderAt(orphan, "orphan", &missing, 0, time.Now()),
	}

	forest := BuildForest(folders, nil)

	if len(forest.Roots) != 2 {
		t.Fatalf("roots = %d, want 2 (orphan promoted)", len(forest.Roots))
	}
	seen := map[uuid.UUID]bool{}
	for _, r := range forest.Roots {
		seen[r.ID] = true
	}
	if !seen[orphan] {
		t.Error("orphan was dropped instead of promoted")
	}
}

func TestBuildForest_Deterministic(t *testing.T) {
	now := time.Now()
	a := uuid.New()
	b := uuid.New()
	c := uuid.New()
	folders := []models.Folder{
		folderAt(a, "a", nil, 2, now),
		folderAt(b, "b", nil, 1, now),
		folderAt(c, "c", &b, 0, now),
	}

	first := BuildForest(folders, nil)
	second := BuildForest(folders, nil)

	if len(first.Roots) != len(second.Roots) {
		t.Fatal("root counts differ between builds")
	}
	for i := range first.Roots {
		if first.Roots[i].ID != second.Roots[i].ID {
			t.Fatalf("root %d differs between builds", i)
		}
	}
}

func TestValidateHierarchy(t *testing.T) {
	now := time.Now()

	t.Run("sound tree passes", func(t *testing.T) {
		root := uuid.New()
		child := uuid.New()
		folders := []models.Folder{
			folderAt(root, "root", nil, 0, now),
			folderAt(child, "child", &root, 0, now),
		}
		if err := ValidateHierarchy(folders); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("orphan reported", func(t *testing.T) {
		missing := uuid.New()
		orphan := uuid.New()
		folders := []models.Folder{
			folderAt(orphan, "orphan", &missing, 0, now),
		}

		err := ValidateHierarchy(folders)
		var inconsistent *domain.InconsistentHierarchyError
		if !errors.As(err, &inconsistent) {
			t.Fatalf("error = %v, want InconsistentHierarchyError", err)
		}
		if len(inconsistent.Issues) != 1 || inconsistent.Issues[0].Problem != "orphan" {
			t.Fatalf("issues = %+v, want one orphan", inconsistent.Issues)
		}
		if inconsistent.Issues[0].FolderID != orphan {
			t.Errorf("issue folder = %s, want %s", inconsistent.Issues[0].FolderID, orphan)
		}
	})

	t.Run("cycle reported", func(t *testing.T) {
		a := uuid.New()
		b := uuid.New()
		folders := []models.Folder{
			folderAt(a, "a", &b, 0, now),
			folderAt(b, "b", &a, 0, now),
		}

		err := ValidateHierarchy(folders)
		var inconsistent *domain.InconsistentHierarchyError
		if !errors.As(err, &inconsistent) {
			t.Fatalf("error = %v, want InconsistentHierarchyError", err)
		}
		found := false
		for _, issue := range inconsistent.Issues {
			if issue.Problem == "cycle" {
				found = true
			}
		}
		if !found {
			t.Fatalf("issues = %+v, want a cycle", inconsistent.Issues)
		}
	})
}

func TestTreeService_GetTree(t *testing.T) {
	ctx := context.Background()
	folderRepo := newFakeFolderRepo()
	mediaRepo := newFakeMediaRepo()

	root := folderRepo.add(models.Folder{Name: "docs", Slug: "docs"})
	folderRepo.add(models.Folder{Name: "images", Slug: "images", ParentID: &root.ID})
	mediaRepo.add(models.Media{FileName: "a.png", FolderID: &root.ID})
	mediaRepo.add(models.Media{FileName: "b.png", FolderID: &root.ID})

	svc := NewTreeService(folderRepo, mediaRepo, testCache(t), testLogger())

	forest, err := svc.GetTree(ctx)
	if err != nil {
		t.Fatalf("GetTree: %v", err)
	}
	if len(forest.Roots) != 1 {
		t.Fatalf("roots = %d, want 1", len(forest.Roots))
	}
	if forest.Roots[0].MediaCount != 2 {
		t.Errorf("root media count = %d, want 2", forest.Roots[0].MediaCount)
	}
	if len(forest.Roots[0].Children) != 1 {
		t.Errorf("root children = %d, want 1", len(forest.Roots[0].Children))
	}
}

func TestTreeService_GetTree_SurvivesInconsistentData(t *testing.T) {
	ctx := context.Background()
	folderRepo := newFakeFolderRepo()
	mediaRepo := newFakeMediaRepo()

	missing := uuid.New()
	folderRepo.add(models.Folder{Name: "stray", Slug: "stray", ParentID: &missing})

	svc := NewTreeService(folderRepo, mediaRepo, testCache(t), testLogger())

	forest, err := svc.GetTree(ctx)
	if err != nil {
		t.Fatalf("GetTree should not fail on inconsistent data: %v", err)
	}
	if len(forest.Roots) != 1 {
		t.Fatalf("orphan should still be browsable, roots = %d", len(forest.Roots))
	}
}
