package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"estatecrm/internal/adapters/persistence/repositories"
	"estatecrm/internal/core/domain"
	"estatecrm/internal/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ResourceService is the generic REST-to-storage translation layer shared by
// all entity types. Requests are reduced to an explicit query struct and
// resolved by the resource repository; there is no dynamic query chaining.
type ResourceService struct {
	repo repositories.ResourceRepository
}

// NewResourceService creates a new resource service
func NewResourceService(repo repositories.ResourceRepository) *ResourceService {
	return &ResourceService{repo: repo}
}

// ListResult is a page of rows plus the unpaginated total
type ListResult struct {
	Rows  []map[string]interface{}
	Total int64
}

// scopeFor resolves the caller's visibility over a resource: nil scope for
// "all"-capability holders, an owner scope otherwise. Callers holding
// neither an all- nor an own-capability are rejected.
func scopeFor(actor *domain.Actor, def *ResourceDef) (*repositories.OwnerScope, error) {
	for _, c := range def.AllCaps {
		if domain.HasPermission(actor.Role, c) {
			return nil, nil
		}
	}
	if len(def.OwnCaps) > 0 {
		allowed := false
		for _, c := range def.OwnCaps {
			if domain.HasPermission(actor.Role, c) {
				allowed = true
				break
			}
		}
		if !allowed {
			return nil, domain.ErrForbidden
		}
	}
	return &repositories.OwnerScope{Columns: def.OwnerColumns, UserID: actor.ID}, nil
}

// parseSort splits an optional "-" descending prefix and validates the
// column against the allow-list. Unknown columns fall back to the default
// order silently rather than ordering by an arbitrary column.
func parseSort(def *ResourceDef, raw string) (column string, desc bool) {
	if raw == "" {
		return "", false
	}
	col := raw
	if strings.HasPrefix(col, "-") {
		col = strings.TrimPrefix(col, "-")
		desc = true
	}
	if !contains(def.Sortable, col) {
		return "", false
	}
	return col, desc
}

// List resolves a list request: equality filters and sort from the query
// string, ownership scope from the caller's role.
func (s *ResourceService) List(ctx context.Context, actor *domain.Actor, resource, sort string, rawFilters map[string]string, pg *pagination.Params) (*ListResult, error) {
	def, ok := resourceByName(resource)
	if !ok {
		return nil, domain.ErrNotFound
	}

	scope, err := scopeFor(actor, def)
	if err != nil {
		return nil, err
	}

	filters := map[string]interface{}{}
	for col, val := range rawFilters {
		if contains(def.Filterable, col) {
			filters[col] = val
		}
	}

	column, desc := parseSort(def, sort)

	rows, total, err := s.repo.List(ctx, &repositories.ListQuery{
		Table:   def.Table,
		Filters: filters,
		Scope:   scope,
		OrderBy: column,
		Desc:    desc,
		Offset:  pg.Offset,
		Limit:   pg.Limit,
	})
	if err != nil {
		return nil, err
	}

	return &ListResult{Rows: rows, Total: total}, nil
}

// Get fetches a single row within the caller's scope
func (s *ResourceService) Get(ctx context.Context, actor *domain.Actor, resource, id string) (map[string]interface{}, error) {
	def, ok := resourceByName(resource)
	if !ok {
		return nil, domain.ErrNotFound
	}

	scope, err := scopeFor(actor, def)
	if err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(ctx, def.Table, id, scope)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return row, nil
}

// Create inserts a row. Server-assigned fields (id, timestamps, created_by)
// are never taken from the body; created_by is injected from the verified
// caller.
func (s *ResourceService) Create(ctx context.Context, actor *domain.Actor, resource string, body map[string]interface{}) (map[string]interface{}, error) {
	def, ok := resourceByName(resource)
	if !ok {
		return nil, domain.ErrNotFound
	}

	// Creating requires at least scoped access
	if _, err := scopeFor(actor, def); err != nil {
		return nil, err
	}

	now := time.Now()
	fields := map[string]interface{}{
		"id":         uuid.NewString(),
		"created_by": actor.ID,
		"created_at": now,
		"updated_at": now,
	}
	for col, val := range body {
		if contains(def.Writable, col) {
			fields[col] = val
		}
	}

	if err := s.repo.Insert(ctx, def.Table, fields); err != nil {
		return nil, err
	}

	return fields, nil
}

// Update applies the supplied fields only, after the ownership check. A row
// outside the caller's scope is indistinguishable from a missing one.
func (s *ResourceService) Update(ctx context.Context, actor *domain.Actor, resource, id string, body map[string]interface{}) (map[string]interface{}, error) {
	def, ok := resourceByName(resource)
	if !ok {
		return nil, domain.ErrNotFound
	}

	scope, err := scopeFor(actor, def)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByID(ctx, def.Table, id, scope); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	fields := map[string]interface{}{"updated_at": time.Now()}
	for col, val := range body {
		if contains(def.Writable, col) {
			fields[col] = val
		}
	}

	if _, err := s.repo.Update(ctx, def.Table, id, scope, fields); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(ctx, def.Table, id, scope)
	if err != nil {
		return nil, err
	}
	return row, nil
}

// Delete removes a row within the caller's scope
func (s *ResourceService) Delete(ctx context.Context, actor *domain.Actor, resource, id string) error {
	def, ok := resourceByName(resource)
	if !ok {
		return domain.ErrNotFound
	}

	scope, err := scopeFor(actor, def)
	if err != nil {
		return err
	}

	affected, err := s.repo.Delete(ctx, def.Table, id, scope)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
