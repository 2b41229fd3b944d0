package services

import (
	"context"
	"testing"

	"estatecrm/internal/core/domain"
	"estatecrm/internal/pkg/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	superActor = &domain.Actor{ID: "su-1", Email: "root@example.com", Role: domain.RoleSuperuser}
	topActor   = &domain.Actor{ID: "tm-1", Email: "top@example.com", Role: domain.RoleTopManager}
	mgrActor   = &domain.Actor{ID: "mg-1", Email: "mgr@example.com", Role: domain.RoleManager}
)

func newTestResourceService() (*ResourceService, *fakeResourceRepo) {
	repo := newFakeResourceRepo()
	return NewResourceService(repo), repo
}

func seedRow(repo *fakeResourceRepo, table, id, createdBy, managerID string) {
	_ = repo.Insert(context.Background(), table, map[string]interface{}{
		"id":         id,
		"created_by": createdBy,
		"manager_id": managerID,
	})
}

func TestResourceService_List_Scoping(t *testing.T) {
	svc, repo := newTestResourceService()
	ctx := context.Background()
	pg := pagination.New(1, 20)

	seedRow(repo, "clients", "c1", mgrActor.ID, "")
	seedRow(repo, "clients", "c2", "someone-else", mgrActor.ID)
	seedRow(repo, "clients", "c3", "someone-else", "another-manager")

	// A manager sees rows they created or manage
	result, err := svc.List(ctx, mgrActor, "clients", "", nil, pg)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Total)

	// Superuser and top_manager see everything
	result, err = svc.List(ctx, superActor, "clients", "", nil, pg)
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.Total)

	result, err = svc.List(ctx, topActor, "clients", "", nil, pg)
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.Total)
}

func TestResourceService_List_UnknownResource(t *testing.T) {
	svc, _ := newTestResourceService()

	_, err := svc.List(context.Background(), superActor, "no-such-thing", "", nil, pagination.New(1, 20))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResourceService_List_FilterAllowList(t *testing.T) {
	svc, repo := newTestResourceService()
	ctx := context.Background()

	_, err := svc.List(ctx, superActor, "clients", "", map[string]string{
		"status":       "lead",
		"secret_field": "1; DROP TABLE clients",
	}, pagination.New(1, 20))
	require.NoError(t, err)

	// Only allow-listed columns reach the repository
	require.NotNil(t, repo.lastQuery)
	assert.Contains(t, repo.lastQuery.Filters, "status")
	assert.NotContains(t, repo.lastQuery.Filters, "secret_field")
}

func TestResourceService_List_SortFallback(t *testing.T) {
	svc, repo := newTestResourceService()
	ctx := context.Background()
	pg := pagination.New(1, 20)

	// A valid sort column passes through, "-" prefix flips direction
	_, err := svc.List(ctx, superActor, "properties", "-price", nil, pg)
	require.NoError(t, err)
	assert.Equal(t, "price", repo.lastQuery.OrderBy)
	assert.True(t, repo.lastQuery.Desc)

	// An unknown column silently falls back to the default order
	_, err = svc.List(ctx, superActor, "properties", "password_hash", nil, pg)
	require.NoError(t, err)
	assert.Equal(t, "", repo.lastQuery.OrderBy)
	assert.False(t, repo.lastQuery.Desc)
}

func TestResourceService_Create(t *testing.T) {
	svc, repo := newTestResourceService()
	ctx := context.Background()

	row, err := svc.Create(ctx, mgrActor, "clients", map[string]interface{}{
		"full_name":  "Big Buyer",
		"id":         "attacker-chosen-id",
		"created_by": "someone-else",
	})
	require.NoError(t, err)

	// Server-assigned fields are never taken from the body
	assert.NotEqual(t, "attacker-chosen-id", row["id"])
	assert.Equal(t, mgrActor.ID, row["created_by"])
	assert.Equal(t, "Big Buyer", row["full_name"])
	assert.NotNil(t, row["created_at"])

	stored, err := repo.GetByID(ctx, "clients", row["id"].(string), nil)
	require.NoError(t, err)
	assert.Equal(t, mgrActor.ID, stored["created_by"])
}

func TestResourceService_Get_OutOfScope(t *testing.T) {
	svc, repo := newTestResourceService()
	ctx := context.Background()

	seedRow(repo, "clients", "c1", "someone-else", "another-manager")

	// Out-of-scope rows read as missing
	_, err := svc.Get(ctx, mgrActor, "clients", "c1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Get(ctx, superActor, "clients", "c1")
	assert.NoError(t, err)
}

func TestResourceService_Update(t *testing.T) {
	svc, repo := newTestResourceService()
	ctx := context.Background()

	seedRow(repo, "deals", "d1", mgrActor.ID, "")

	row, err := svc.Update(ctx, mgrActor, "deals", "d1", map[string]interface{}{
		"stage":      "won",
		"created_by": "someone-else",
	})
	require.NoError(t, err)
	assert.Equal(t, "won", row["stage"])
	// Non-writable columns are dropped
	assert.Equal(t, mgrActor.ID, row["created_by"])

	// Out-of-scope update reads as missing
	seedRow(repo, "deals", "d2", "someone-else", "another-manager")
	_, err = svc.Update(ctx, mgrActor, "deals", "d2", map[string]interface{}{"stage": "won"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResourceService_Delete(t *testing.T) {
	svc, repo := newTestResourceService()
	ctx := context.Background()

	seedRow(repo, "notes", "n1", mgrActor.ID, "")
	seedRow(repo, "notes", "n2", "someone-else", "")

	require.NoError(t, svc.Delete(ctx, mgrActor, "notes", "n1"))
	assert.ErrorIs(t, svc.Delete(ctx, mgrActor, "notes", "n1"), domain.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, mgrActor, "notes", "n2"), domain.ErrNotFound)
}

func TestResourceDefs_AreSelfConsistent(t *testing.T) {
	for _, def := range Resources() {
		assert.NotEmpty(t, def.Name)
		assert.NotEmpty(t, def.Table)
		assert.NotEmpty(t, def.OwnerColumns, "resource %s needs owner columns", def.Name)
		// created_by must be scopeable everywhere so the owner scope works
		assert.Contains(t, def.OwnerColumns, "created_by", "resource %s", def.Name)
		// Server-assigned columns must never be writable
		for _, col := range []string{"id", "created_by", "created_at", "updated_at"} {
			assert.NotContains(t, def.Writable, col, "resource %s", def.Name)
		}
	}
}
