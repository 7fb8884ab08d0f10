package domain

import "fmt"

// Role is one of the four ordered privilege tiers.
type Role string

const (
	RoleSuperAdmin  Role = "SUPER_ADMIN"
	RoleAdmin       Role = "ADMIN"
	RoleUnitManager Role = "UNIT_MANAGER"
	RoleUser        Role = "USER"
)

// roleGrants is the data-driven policy table: what each role may create and
// which group tier it administers. Policy changes are table edits.
var roleGrants = map[Role]struct {
	CreatesRole Role
	IDPrefix    string
	GroupType   GroupType
}{
	RoleSuperAdmin:  {CreatesRole: RoleAdmin, IDPrefix: "SA", GroupType: GroupTypeAdmin},
	RoleAdmin:       {CreatesRole: RoleUnitManager, IDPrefix: "A", GroupType: GroupTypeUnitManager},
	RoleUnitManager: {CreatesRole: RoleUser, IDPrefix: "UM"},
	RoleUser:        {IDPrefix: "U"},
}

// ParseRole validates a wire-format role string.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if _, ok := roleGrants[r]; !ok {
		return "", &ValidationError{Field: "role", Reason: fmt.Sprintf("unknown role %q", s)}
	}
	return r, nil
}

// Valid reports whether r is one of the four known tiers.
func (r Role) Valid() bool {
	_, ok := roleGrants[r]
	return ok
}

// IDPrefix returns the external-id prefix for the role (SA, A, UM, U).
func (r Role) IDPrefix() string {
	return roleGrants[r].IDPrefix
}

// CreatesRole returns the single role one tier below r, or "" for USER.
func (r Role) CreatesRole() Role {
	return roleGrants[r].CreatesRole
}

// RoleForPrefix is the inverse of IDPrefix.
func RoleForPrefix(prefix string) (Role, bool) {
	for role, g := range roleGrants {
		if g.IDPrefix == prefix {
			return role, true
		}
	}
	return "", false
}
