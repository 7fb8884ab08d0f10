package service

import (
	"github.com/invoiceapp/user-management-system/internal/core/domain"
	"github.com/invoiceapp/user-management-system/internal/core/ports"
)

// ResolveUserScope computes the listing scope for an actor. It is a pure
// function of the actor and the actor's resolved groups (including member
// lists); it performs no I/O and does not depend on pagination parameters.
//
//   - SUPER_ADMIN sees everyone.
//   - ADMIN sees UNIT_MANAGER and USER accounts sharing at least one group
//     with it; with no groups it falls back to accounts it created itself.
//   - UNIT_MANAGER sees USER accounts created by any unit manager sharing a
//     group with it (itself included); same creator fallback without groups.
//   - USER sees only its own record.
func ResolveUserScope(actor *domain.User, actorGroups []*domain.Group) ports.UserScope {
	switch actor.Role {
	case domain.RoleSuperAdmin:
		return ports.UserScope{All: true}

	case domain.RoleAdmin:
		if len(actor.Groups) == 0 {
			return ports.UserScope{CreatedByIn: []string{actor.ID}}
		}
		return ports.UserScope{
			Roles:    []domain.Role{domain.RoleUnitManager, domain.RoleUser},
			GroupIDs: append([]string(nil), actor.Groups...),
		}

	case domain.RoleUnitManager:
		creators := coMembers(actor, actorGroups)
		if len(creators) == 0 {
			creators = []string{actor.ID}
		}
		return ports.UserScope{
			Roles:       []domain.Role{domain.RoleUser},
			CreatedByIn: creators,
		}

	default:
		return ports.UserScope{SelfID: actor.ID}
	}
}

// ResolveGroupScope returns the group type an actor may list: SUPER_ADMIN
// administers ADMIN groups, ADMIN administers UNIT_MANAGER groups. Everyone
// else is denied.
func ResolveGroupScope(actor *domain.User) (domain.GroupType, error) {
	switch actor.Role {
	case domain.RoleSuperAdmin:
		return domain.GroupTypeAdmin, nil
	case domain.RoleAdmin:
		return domain.GroupTypeUnitManager, nil
	default:
		return "", &domain.PermissionDeniedError{ActorRole: actor.Role, Operation: "list groups"}
	}
}

// ScopeAllows reports whether a single record falls inside a scope. Mirrors
// the filter the repository derives from the scope, for point lookups.
func ScopeAllows(scope ports.UserScope, u *domain.User) bool {
	if scope.All {
		return true
	}
	if scope.SelfID != "" {
		return u.ID == scope.SelfID
	}
	if len(scope.Roles) > 0 {
		ok := false
		for _, r := range scope.Roles {
			if u.Role == r {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if len(scope.GroupIDs) > 0 {
		ok := false
		for _, id := range scope.GroupIDs {
			if u.InGroup(id) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if len(scope.CreatedByIn) > 0 {
		for _, id := range scope.CreatedByIn {
			if u.CreatedBy == id {
				return true
			}
		}
		return false
	}
	return true
}

// coMembers collects the distinct ids of every member sharing a group with
// the actor, the actor included.
func coMembers(actor *domain.User, groups []*domain.Group) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, g := range groups {
		if !actor.InGroup(g.ID) {
			continue
		}
		for _, m := range g.Members {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			ids = append(ids, m)
		}
	}
	return ids
}
