package domain

// Authorization policy. Two distinct rules are exported on purpose:
//
//   - creation follows the strict one-tier-down chain for every role,
//     SUPER_ADMIN included;
//   - update and delete follow the same chain but grant SUPER_ADMIN a
//     universal override.
//
// Call sites pick one explicitly; the tests pin which operation uses which.

// CanCreate reports whether actor may create a user holding target.
// True iff target is exactly one tier below actor in the fixed chain
// SUPER_ADMIN → ADMIN → UNIT_MANAGER → USER.
func CanCreate(actor, target Role) bool {
	grant, ok := roleGrants[actor]
	return ok && grant.CreatesRole != "" && grant.CreatesRole == target
}

// CanUpdate reports whether actor may update a user holding target.
// One tier down, except SUPER_ADMIN may update any tier.
func CanUpdate(actor, target Role) bool {
	if actor == RoleSuperAdmin {
		return target.Valid()
	}
	return CanCreate(actor, target)
}

// CanDelete reports whether actor may delete a user holding target.
// Same rule as CanUpdate.
func CanDelete(actor, target Role) bool {
	return CanUpdate(actor, target)
}

// CanCreateGroup reports whether actor may create a group of the given type:
// ADMIN groups require a SUPER_ADMIN actor, UNIT_MANAGER groups an ADMIN actor.
func CanCreateGroup(actor Role, t GroupType) bool {
	grant, ok := roleGrants[actor]
	return ok && grant.GroupType != "" && grant.GroupType == t
}

// CanManageGroup reports whether actor may update, delete, or edit the
// membership of an existing group. Same tier rule as group creation.
func CanManageGroup(actor Role, g *Group) bool {
	return g != nil && CanCreateGroup(actor, g.Type)
}
