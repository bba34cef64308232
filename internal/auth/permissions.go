// Package auth answers which actions a role may take and owns the session
// context a rendering layer uses to pick the active role. Permissions only
// drive what is shown; they are not enforced on requests.
package auth

import (
	"slices"

	"github.com/smukkama/factory-monitor/internal/database"
)

type Permission string

const (
	ViewDashboard     Permission = "view:dashboard"
	ViewLines         Permission = "view:lines"
	ViewMachines      Permission = "view:machines"
	ViewProduction    Permission = "view:production"
	ViewSensors       Permission = "view:sensors"
	ViewDowntime      Permission = "view:downtime"
	ViewMeasurement   Permission = "view:measurement"
	ViewVista         Permission = "view:vista"
	CreateProduction  Permission = "create:production"
	CreateDowntime    Permission = "create:downtime"
	CreateMeasurement Permission = "create:measurement"
	ManageLines       Permission = "manage:lines"
	ManageMachines    Permission = "manage:machines"
	ManageUsers       Permission = "manage:users"
	ManageVista       Permission = "manage:vista"
)

var viewPermissions = []Permission{
	ViewDashboard, ViewLines, ViewMachines, ViewProduction,
	ViewSensors, ViewDowntime, ViewMeasurement, ViewVista,
}

// rolePermissions is read-only after init
var rolePermissions = map[database.Role]map[Permission]bool{
	database.RoleAdmin: permissionSet(viewPermissions,
		CreateProduction, CreateDowntime, CreateMeasurement,
		ManageLines, ManageMachines, ManageUsers, ManageVista),
	database.RoleOperator:  permissionSet(viewPermissions, CreateProduction, CreateDowntime),
	database.RoleInspector: permissionSet(viewPermissions, CreateMeasurement),
	database.RoleViewer:    permissionSet(viewPermissions),
}

func permissionSet(base []Permission, extra ...Permission) map[Permission]bool {
	set := make(map[Permission]bool, len(base)+len(extra))
	for _, p := range base {
		set[p] = true
	}
	for _, p := range extra {
		set[p] = true
	}
	return set
}

// HasPermission reports whether role may perform action. Unknown roles and
// actions are denied.
func HasPermission(role database.Role, action Permission) bool {
	return rolePermissions[role][action]
}

// Permissions lists the role's actions in sorted order, nil for unknown roles
func Permissions(role database.Role) []Permission {
	set, ok := rolePermissions[role]
	if !ok {
		return nil
	}
	out := make([]Permission, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// Roles returns every known role, most privileged first
func Roles() []database.Role {
	return []database.Role{database.RoleAdmin, database.RoleOperator, database.RoleInspector, database.RoleViewer}
}

// ParseRole accepts the upper-case role names
func ParseRole(s string) (database.Role, error) {
	role := database.Role(s)
	if _, ok := rolePermissions[role]; !ok {
		return "", ErrUnknownRole
	}
	return role, nil
}
