// Package service contains the business-logic layer: the generic
// CrudService, its todo binding, and the request-scoped Provider that
// wires a repository/service pair to one database session per request.
package service

import (
	"context"

	"github.com/dkoval/todo-api/internal/store"
)

// CrudService is the generic business-logic object over a repository type.
// It owns exactly one repository for its lifetime and forwards every call
// to it; the single business rule it adds is default-ownership injection
// on create. It exists as the seam where future domain rules
// (authorization checks, validation, event emission) land without touching
// the repository.
type CrudService[E any, R store.Repository[E]] struct {
	repo R
}

// NewCrudService creates a service owning the given repository.
func NewCrudService[E any, R store.Repository[E]](repo R) *CrudService[E, R] {
	return &CrudService[E, R]{repo: repo}
}

// Create persists a new entity. When the payload carries no owner field,
// or carries the zero sentinel, the ownerID argument is injected into a
// copy of the payload before delegating. An explicit non-zero owner in the
// payload is preserved verbatim, even when it differs from ownerID.
func (s *CrudService[E, R]) Create(ctx context.Context, fields store.Fields, ownerID int64) (*E, error) {
	if !hasExplicitOwner(fields) && ownerID != 0 {
		fields = fields.Clone()
		fields[store.OwnerField] = ownerID
	}
	return s.repo.Create(ctx, fields)
}

// Get retrieves an entity by id. Pure delegation.
func (s *CrudService[E, R]) Get(ctx context.Context, id int64, ownerID int64) (*E, error) {
	return s.repo.GetByID(ctx, id, ownerID)
}

// List retrieves all visible entities. Pure delegation.
func (s *CrudService[E, R]) List(ctx context.Context, ownerID int64) ([]*E, error) {
	return s.repo.List(ctx, ownerID)
}

// Update applies a partial payload to an entity. Pure delegation.
func (s *CrudService[E, R]) Update(ctx context.Context, id int64, fields store.Fields, ownerID int64) (*E, error) {
	return s.repo.Update(ctx, id, fields, ownerID)
}

// Delete removes (or soft-deletes) an entity. Pure delegation.
func (s *CrudService[E, R]) Delete(ctx context.Context, id int64, ownerID int64) (bool, error) {
	return s.repo.Delete(ctx, id, ownerID)
}

// hasExplicitOwner reports whether the payload carries a non-zero owner.
func hasExplicitOwner(fields store.Fields) bool {
	value, ok := fields[store.OwnerField]
	if !ok || value == nil {
		return false
	}
	switch v := value.(type) {
	case int64:
		return v != 0
	case int:
		return v != 0
	case int32:
		return v != 0
	case float64:
		return v != 0
	default:
		// Unrecognized owner shapes pass through for the mapper to reject.
		return true
	}
}
