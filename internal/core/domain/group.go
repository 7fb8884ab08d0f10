package domain

import "time"

// GroupType determines which role tier a group governs. Immutable after creation.
type GroupType string

const (
	GroupTypeAdmin       GroupType = "ADMIN"
	GroupTypeUnitManager GroupType = "UNIT_MANAGER"
)

// ParseGroupType validates a wire-format group type string.
func ParseGroupType(s string) (GroupType, error) {
	switch t := GroupType(s); t {
	case GroupTypeAdmin, GroupTypeUnitManager:
		return t, nil
	default:
		return "", &ValidationError{Field: "type", Reason: "must be ADMIN or UNIT_MANAGER"}
	}
}

// MemberRole returns the role every member of a group of this type must hold.
func (t GroupType) MemberRole() Role {
	if t == GroupTypeAdmin {
		return RoleAdmin
	}
	return RoleUnitManager
}

// Group is a named collection of same-tier users. ADMIN groups hold ADMIN
// members and track the UNIT_MANAGER accounts they have exposed; UNIT_MANAGER
// groups hold UNIT_MANAGER members and track exposed USER accounts.
type Group struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Type                GroupType `json:"type"`
	Description         string    `json:"description,omitempty"`
	Members             []string  `json:"members"`
	CreatedBy           string    `json:"created_by"`
	VisibleUnitManagers []string  `json:"visible_unit_managers,omitempty"`
	VisibleUsers        []string  `json:"visible_users,omitempty"`
	IsActive            bool      `json:"is_active"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// HasMember reports whether the user id is in the member set.
func (g *Group) HasMember(userID string) bool {
	for _, id := range g.Members {
		if id == userID {
			return true
		}
	}
	return false
}
