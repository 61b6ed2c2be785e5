package constants

import "slices"

const (
	Superadmin = "superadmin"
	Admin      = "admin"
	Trader     = "trader"
	Viewer     = "viewer"
)

// ValidRoles is the set of allowed values for Accounts.role.
var ValidRoles = []string{Viewer, Trader, Admin, Superadmin}

func IsValidRole(role string) bool {
	return slices.Contains(ValidRoles, role)
}
