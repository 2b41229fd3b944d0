package repositories

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// OwnerScope restricts rows to those created by or assigned to a user.
// It renders as (col1 = ? OR col2 = ? ...).
type OwnerScope struct {
	Columns []string
	UserID  string
}

// ListQuery is the explicit request struct resolved by the generic resource
// repository: table, equality filters, ownership scope, sort and pagination.
// All identifiers in it come from the resource registry allow-lists.
type ListQuery struct {
	Table   string
	Filters map[string]interface{}
	Scope   *OwnerScope
	OrderBy string
	Desc    bool
	Offset  int
	Limit   int
}

// resourceRepository implements ResourceRepository over GORM table queries
type resourceRepository struct {
	db *gorm.DB
}

// NewResourceRepository creates a new generic resource repository
func NewResourceRepository(db *gorm.DB) ResourceRepository {
	return &resourceRepository{db: db}
}

func (r *resourceRepository) apply(tx *gorm.DB, filters map[string]interface{}, scope *OwnerScope) *gorm.DB {
	for col, val := range filters {
		tx = tx.Where(fmt.Sprintf("`%s` = ?", col), val)
	}
	if scope != nil {
		tx = tx.Where(scope.condition(), scope.args()...)
	}
	return tx
}

func (s *OwnerScope) condition() string {
	conds := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		conds[i] = fmt.Sprintf("`%s` = ?", col)
	}
	return "(" + strings.Join(conds, " OR ") + ")"
}

func (s *OwnerScope) args() []interface{} {
	args := make([]interface{}, len(s.Columns))
	for i := range s.Columns {
		args[i] = s.UserID
	}
	return args
}

// List returns matching rows plus the unpaginated total
func (r *resourceRepository) List(ctx context.Context, query *ListQuery) ([]map[string]interface{}, int64, error) {
	var total int64
	countTx := r.apply(r.db.WithContext(ctx).Table(query.Table), query.Filters, query.Scope)
	if err := countTx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at DESC"
	if query.OrderBy != "" {
		dir := "ASC"
		if query.Desc {
			dir = "DESC"
		}
		order = fmt.Sprintf("`%s` %s", query.OrderBy, dir)
	}

	rows := []map[string]interface{}{}
	tx := r.apply(r.db.WithContext(ctx).Table(query.Table), query.Filters, query.Scope).
		Order(order)
	if query.Limit > 0 {
		tx = tx.Offset(query.Offset).Limit(query.Limit)
	}
	if err := tx.Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

// GetByID fetches a single row within the caller's scope
func (r *resourceRepository) GetByID(ctx context.Context, table, id string, scope *OwnerScope) (map[string]interface{}, error) {
	row := map[string]interface{}{}
	tx := r.db.WithContext(ctx).Table(table).Where("id = ?", id)
	if scope != nil {
		tx = tx.Where(scope.condition(), scope.args()...)
	}
	if err := tx.Take(&row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// Insert creates a row from the prepared field map
func (r *resourceRepository) Insert(ctx context.Context, table string, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Table(table).Create(&fields).Error
}

// Update applies a partial update within the caller's scope and reports how
// many rows were affected
func (r *resourceRepository) Update(ctx context.Context, table, id string, scope *OwnerScope, fields map[string]interface{}) (int64, error) {
	tx := r.db.WithContext(ctx).Table(table).Where("id = ?", id)
	if scope != nil {
		tx = tx.Where(scope.condition(), scope.args()...)
	}
	res := tx.Updates(fields)
	return res.RowsAffected, res.Error
}

// Delete removes a row within the caller's scope and reports how many rows
// were affected
func (r *resourceRepository) Delete(ctx context.Context, table, id string, scope *OwnerScope) (int64, error) {
	sql := fmt.Sprintf("DELETE FROM `%s` WHERE id = ?", table)
	args := []interface{}{id}
	if scope != nil {
		sql += " AND " + scope.condition()
		args = append(args, scope.args()...)
	}
	res := r.db.WithContext(ctx).Exec(sql, args...)
	return res.RowsAffected, res.Error
}
