package services

import "estatecrm/internal/core/domain"

// ResourceDef declares one resource exposed through the generic gateway.
// Every identifier used in a query (table, sort column, filter column,
// writable column) must come from these allow-lists.
type ResourceDef struct {
	// Name is the path segment, Table the backing table
	Name  string
	Table string
	// OwnerColumns are matched against the caller id when scoped
	OwnerColumns []string
	// AllCaps grant unscoped access; OwnCaps grant scoped access. An empty
	// OwnCaps means every authenticated caller gets scoped access.
	AllCaps []domain.Capability
	OwnCaps []domain.Capability
	// Column allow-lists
	Sortable   []string
	Filterable []string
	Writable   []string
}

// crossManagerCaps grant unscoped access to entities without a dedicated
// capability family: superuser through view_all_data, top_manager through
// manage_managers.
var crossManagerCaps = []domain.Capability{domain.CapViewAllData, domain.CapManageManagers}

var resourceDefs = []ResourceDef{
	{
		Name:         "properties",
		Table:        "properties",
		OwnerColumns: []string{"created_by", "manager_id"},
		AllCaps:      []domain.Capability{domain.CapManageAllProperties, domain.CapViewAllData},
		OwnCaps:      []domain.Capability{domain.CapManageOwnProperties, domain.CapManageProperties},
		Sortable:     []string{"created_at", "updated_at", "price", "title", "city"},
		Filterable:   []string{"status", "city", "property_type", "manager_id", "created_by"},
		Writable:     []string{"title", "description", "address", "city", "price", "property_type", "status", "manager_id"},
	},
	{
		Name:         "clients",
		Table:        "clients",
		OwnerColumns: []string{"created_by", "manager_id"},
		AllCaps:      crossManagerCaps,
		Sortable:     []string{"created_at", "updated_at", "full_name"},
		Filterable:   []string{"status", "manager_id", "created_by"},
		Writable:     []string{"full_name", "email", "phone", "status", "manager_id"},
	},
	{
		Name:         "deals",
		Table:        "deals",
		OwnerColumns: []string{"created_by", "manager_id"},
		AllCaps:      crossManagerCaps,
		Sortable:     []string{"created_at", "updated_at", "amount"},
		Filterable:   []string{"stage", "property_id", "client_id", "manager_id", "created_by"},
		Writable:     []string{"title", "property_id", "client_id", "amount", "stage", "manager_id"},
	},
	{
		Name:         "notes",
		Table:        "notes",
		OwnerColumns: []string{"created_by"},
		AllCaps:      crossManagerCaps,
		Sortable:     []string{"created_at", "updated_at"},
		Filterable:   []string{"entity_type", "entity_id", "created_by"},
		Writable:     []string{"body", "entity_type", "entity_id"},
	},
	{
		Name:         "calendar-events",
		Table:        "calendar_events",
		OwnerColumns: []string{"created_by", "manager_id"},
		AllCaps:      crossManagerCaps,
		Sortable:     []string{"created_at", "updated_at", "starts_at"},
		Filterable:   []string{"status", "manager_id", "created_by"},
		Writable:     []string{"title", "description", "location", "starts_at", "ends_at", "status", "manager_id"},
	},
	{
		Name:         "documents",
		Table:        "documents",
		OwnerColumns: []string{"created_by"},
		AllCaps:      crossManagerCaps,
		Sortable:     []string{"created_at", "updated_at", "name", "size"},
		Filterable:   []string{"entity_type", "entity_id", "created_by"},
		// object_key, content_type and size are assigned by the upload flow
		Writable: []string{"name", "entity_type", "entity_id"},
	},
	{
		Name:         "client-interactions",
		Table:        "client_interactions",
		OwnerColumns: []string{"created_by", "manager_id"},
		AllCaps:      crossManagerCaps,
		Sortable:     []string{"created_at", "updated_at", "occurred_at"},
		Filterable:   []string{"client_id", "kind", "manager_id", "created_by"},
		Writable:     []string{"client_id", "kind", "summary", "occurred_at", "manager_id"},
	},
	{
		Name:         "reports",
		Table:        "reports",
		OwnerColumns: []string{"created_by", "manager_id"},
		AllCaps:      []domain.Capability{domain.CapManageAllReports, domain.CapViewAllData},
		OwnCaps:      []domain.Capability{domain.CapManageOwnReports, domain.CapManageReports},
		Sortable:     []string{"created_at", "updated_at", "period"},
		Filterable:   []string{"period", "status", "manager_id", "created_by"},
		// signature, signed_at and signed_by are only set by the signing flow
		Writable: []string{"title", "period", "status", "manager_id"},
	},
}

// Resources returns the declared resource definitions
func Resources() []ResourceDef {
	return resourceDefs
}

func resourceByName(name string) (*ResourceDef, bool) {
	for i := range resourceDefs {
		if resourceDefs[i].Name == name {
			return &resourceDefs[i], true
		}
	}
	return nil, false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
