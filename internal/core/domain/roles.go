package domain

// Role is the closed set of user roles. The permission table below is the
// single authoritative source for role-based checks; handlers must never
// trust a role or capability claim supplied by the client body.
type Role string

const (
	RoleSuperuser  Role = "superuser"
	RoleTopManager Role = "top_manager"
	RoleManager    Role = "manager"
)

// Capability is a named action a role may perform
type Capability string

const (
	CapManageUsers         Capability = "manage_users"
	CapManageAllUsers      Capability = "manage_all_users"
	CapManageManagers      Capability = "manage_managers"
	CapManageReports       Capability = "manage_reports"
	CapManageAllReports    Capability = "manage_all_reports"
	CapManageOwnReports    Capability = "manage_own_reports"
	CapManageProperties    Capability = "manage_properties"
	CapManageAllProperties Capability = "manage_all_properties"
	CapManageOwnProperties Capability = "manage_own_properties"
	CapViewAllData         Capability = "view_all_data"
)

// rolePermissions maps each role to its exact capability set
var rolePermissions = map[Role]map[Capability]struct{}{
	RoleSuperuser: {
		CapManageUsers:         {},
		CapManageAllUsers:      {},
		CapManageReports:       {},
		CapManageAllReports:    {},
		CapManageProperties:    {},
		CapManageAllProperties: {},
		CapViewAllData:         {},
	},
	RoleTopManager: {
		CapManageUsers:         {},
		CapManageManagers:      {},
		CapManageReports:       {},
		CapManageAllReports:    {},
		CapManageProperties:    {},
		CapManageAllProperties: {},
	},
	RoleManager: {
		CapManageOwnReports:    {},
		CapManageOwnProperties: {},
	},
}

// HasPermission reports whether the role holds the capability.
// Unknown roles hold nothing.
func HasPermission(role Role, cap Capability) bool {
	caps, ok := rolePermissions[role]
	if !ok {
		return false
	}
	_, ok = caps[cap]
	return ok
}

// ValidRole reports whether s is one of the known roles
func ValidRole(s string) bool {
	_, ok := rolePermissions[Role(s)]
	return ok
}

// CanCreateRole reports whether an actor may create a user with the target
// role. Only superuser may create a top_manager; superusers are never
// created through the API.
func CanCreateRole(actor, target Role) bool {
	switch target {
	case RoleManager:
		return HasPermission(actor, CapManageUsers)
	case RoleTopManager:
		return HasPermission(actor, CapManageAllUsers)
	default:
		return false
	}
}

// CanManageUser reports whether an actor may modify or delete a user with
// the target role. A top_manager manages managers only.
func CanManageUser(actor, target Role) bool {
	if HasPermission(actor, CapManageAllUsers) {
		return true
	}
	if HasPermission(actor, CapManageManagers) && target == RoleManager {
		return true
	}
	return false
}

// Actor is the verified identity attached to a request by the auth
// middleware. It is always derived from the access token, never from the
// request body.
type Actor struct {
	ID    string
	Email string
	Role  Role
}
