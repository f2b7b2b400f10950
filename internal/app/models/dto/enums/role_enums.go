package enums

// RoleType defines the user role type
type RoleType string

const (
	RoleAgent       RoleType = "Agent"
	RoleAdmin       RoleType = "Admin"
	RoleSuperviseur RoleType = "Superviseur"
)

// Roles lists every accepted role.
var Roles = []RoleType{RoleAgent, RoleAdmin, RoleSuperviseur}

// Valid reports whether r is a known role.
func (r RoleType) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// CanManageUsers reports whether r may edit other accounts.
func (r RoleType) CanManageUsers() bool {
	return r == RoleAdmin || r == RoleSuperviseur
}
