package domain

import "time"

// User models an account in the role hierarchy.
//
// Groups is the canonical membership set. The legacy single-group fields of
// older deployments (adminGroup / unitManagerGroup) are not stored; use
// GroupOfType against the resolved group records to derive them.
type User struct {
	ID           string    `json:"-"`
	UserID       string    `json:"user_id"` // external id, e.g. "A7"
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedBy    string    `json:"created_by,omitempty"` // empty only for seeded accounts
	Groups       []string  `json:"groups,omitempty"`
	Timezone     string    `json:"timezone"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// InGroup reports whether the user belongs to the given group.
func (u *User) InGroup(groupID string) bool {
	for _, id := range u.Groups {
		if id == groupID {
			return true
		}
	}
	return false
}

// SharesGroupWith reports whether u and other have at least one group in common.
func (u *User) SharesGroupWith(other *User) bool {
	for _, id := range u.Groups {
		if other.InGroup(id) {
			return true
		}
	}
	return false
}

// GroupOfType projects the legacy single-group reference: the first of the
// user's groups matching the given type, or nil.
func (u *User) GroupOfType(groups []*Group, t GroupType) *Group {
	for _, g := range groups {
		if g.Type == t && u.InGroup(g.ID) {
			return g
		}
	}
	return nil
}
