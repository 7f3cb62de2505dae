package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrRateLimited  = errors.New("rate limit exceeded")
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// ConflictKind classifies the structural conflicts the folder and media
// services can report. Handlers surface the message verbatim; clients branch
// on the kind.
type ConflictKind string

const (
	ConflictDuplicateName ConflictKind = "duplicate_name"
	ConflictSelfParent    ConflictKind = "self_parent"
	ConflictCycle         ConflictKind = "would_create_cycle"
	ConflictMaxDepth      ConflictKind = "max_depth_exceeded"
	ConflictHasSubfolders ConflictKind = "has_subfolders"
	ConflictAlreadySetup  ConflictKind = "already_setup"
)

// ConflictError represents a resource conflict with details about the
// conflicting resource.
type ConflictError struct {
	Kind         ConflictKind
	Message      string
	ResourceType string
	ResourceID   string
}

func (e *ConflictError) Error() string { return e.Message }

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int { return http.StatusConflict }

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// NewConflict builds a ConflictError for the given resource.
func NewConflict(kind ConflictKind, resourceType string, resourceID uuid.UUID, format string, args ...interface{}) *ConflictError {
	return &ConflictError{
		Kind:         kind,
		Message:      fmt.Sprintf(format, args...),
		ResourceType: resourceType,
		ResourceID:   resourceID.String(),
	}
}

// BulkError reports the identifiers that failed inside a bulk operation.
// The batch rolls back as a whole, so callers learn exactly which items
// blocked it rather than receiving a bare count.
type BulkError struct {
	Op        string
	FailedIDs []uuid.UUID
	Cause     error
}

func (e *BulkError) Error() string {
	ids := make([]string, len(e.FailedIDs))
	for i, id := range e.FailedIDs {
		ids[i] = id.String()
	}
	return fmt.Sprintf("%s failed for %d item(s) [%s]: %v", e.Op, len(e.FailedIDs), strings.Join(ids, ", "), e.Cause)
}

func (e *BulkError) Unwrap() error { return e.Cause }

// HierarchyIssue describes one inconsistency found while validating a stored
// folder hierarchy.
type HierarchyIssue struct {
	FolderID uuid.UUID
	ParentID *uuid.UUID
	Problem  string // "orphan" or "cycle"
}

// InconsistentHierarchyError flags stored folder data that violates the
// acyclic, parent-resolves-or-null invariant. Tree construction still
// proceeds defensively; this error exists so the inconsistency is logged as
// such instead of being silently reshaped away.
type InconsistentHierarchyError struct {
	Issues []HierarchyIssue
}

func (e *InconsistentHierarchyError) Error() string {
	return fmt.Sprintf("folder hierarchy inconsistent: %d issue(s)", len(e.Issues))
}
