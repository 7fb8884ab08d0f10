package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/invoiceapp/user-management-system/internal/core/domain"
	"github.com/invoiceapp/user-management-system/internal/core/ports"
)

// MembershipCoordinator keeps Group.Members and the user-side Groups sets
// consistent across membership mutations. Writes are not transactional:
// the group-side write is applied first, and a failed user-side write is
// surfaced as a ConsistencyError rather than swallowed.
type MembershipCoordinator struct {
	users  ports.UserRepository
	groups ports.GroupRepository
	log    zerolog.Logger
}

func NewMembershipCoordinator(users ports.UserRepository, groups ports.GroupRepository, log zerolog.Logger) *MembershipCoordinator {
	return &MembershipCoordinator{users: users, groups: groups, log: log}
}

// AddMember adds user to the group's member set and records the back-
// reference on the user. Idempotent: adding an existing member is a no-op.
func (m *MembershipCoordinator) AddMember(ctx context.Context, g *domain.Group, u *domain.User) error {
	if u.Role != g.Type.MemberRole() {
		return &domain.ValidationError{
			Field:  "members",
			Reason: fmt.Sprintf("user %s holds role %s; %s groups accept only %s", u.UserID, u.Role, g.Type, g.Type.MemberRole()),
		}
	}
	if g.HasMember(u.ID) {
		return nil
	}

	g.Members = append(g.Members, u.ID)
	if err := m.groups.Update(ctx, g); err != nil {
		return err
	}
	if err := m.users.AddGroup(ctx, u.ID, g.ID); err != nil {
		m.log.Error().Err(err).Str("group_id", g.ID).Str("user_id", u.UserID).Msg("member back-reference write failed")
		return &domain.ConsistencyError{Operation: "add member", GroupID: g.ID, Err: err}
	}
	return nil
}

// RemoveMember removes user from the group's member set and clears the
// back-reference. Idempotent: removing a non-member is a no-op.
func (m *MembershipCoordinator) RemoveMember(ctx context.Context, g *domain.Group, u *domain.User) error {
	if !g.HasMember(u.ID) {
		return nil
	}

	g.Members = withoutID(g.Members, u.ID)
	if err := m.groups.Update(ctx, g); err != nil {
		return err
	}
	if err := m.users.RemoveGroup(ctx, u.ID, g.ID); err != nil {
		m.log.Error().Err(err).Str("group_id", g.ID).Str("user_id", u.UserID).Msg("member back-reference removal failed")
		return &domain.ConsistencyError{Operation: "remove member", GroupID: g.ID, Err: err}
	}
	return nil
}

// ReplaceMembers swaps the group's member set for newIDs, synchronizing the
// back-references of every member that entered or left. Every provided id
// must resolve to an existing active user of the group's tier; otherwise a
// ValidationError listing all unresolved ids is returned and nothing is
// written.
func (m *MembershipCoordinator) ReplaceMembers(ctx context.Context, g *domain.Group, newIDs []string) error {
	newIDs = dedupIDs(newIDs)

	found, err := m.users.FindByIDs(ctx, newIDs)
	if err != nil {
		return err
	}
	if len(found) != len(newIDs) {
		resolved := make(map[string]struct{}, len(found))
		for _, u := range found {
			resolved[u.ID] = struct{}{}
		}
		var missing []string
		for _, id := range newIDs {
			if _, ok := resolved[id]; !ok {
				missing = append(missing, id)
			}
		}
		return &domain.ValidationError{Fields: missing, Reason: "members did not resolve to existing users"}
	}
	for _, u := range found {
		if u.Role != g.Type.MemberRole() {
			return &domain.ValidationError{
				Field:  "members",
				Reason: fmt.Sprintf("user %s holds role %s; %s groups accept only %s", u.UserID, u.Role, g.Type, g.Type.MemberRole()),
			}
		}
	}

	oldIDs := g.Members
	added, removed := diffIDs(oldIDs, newIDs)

	g.Members = newIDs
	if err := m.groups.Update(ctx, g); err != nil {
		return err
	}

	for _, id := range removed {
		if err := m.users.RemoveGroup(ctx, id, g.ID); err != nil {
			return &domain.ConsistencyError{Operation: "replace members", GroupID: g.ID, Err: err}
		}
	}
	for _, id := range added {
		if err := m.users.AddGroup(ctx, id, g.ID); err != nil {
			return &domain.ConsistencyError{Operation: "replace members", GroupID: g.ID, Err: err}
		}
	}
	return nil
}

// ClearGroup soft-deletes a group: every member's back-reference to this
// group is removed first, then the group is marked inactive. Member accounts
// are never deleted or otherwise mutated.
func (m *MembershipCoordinator) ClearGroup(ctx context.Context, g *domain.Group) error {
	for _, id := range g.Members {
		if err := m.users.RemoveGroup(ctx, id, g.ID); err != nil {
			return &domain.ConsistencyError{Operation: "delete group", GroupID: g.ID, Err: err}
		}
	}
	if err := m.groups.Deactivate(ctx, g.ID); err != nil {
		return err
	}
	g.IsActive = false
	return nil
}

func withoutID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func dedupIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// diffIDs returns the ids present only in next (added) and only in prev (removed).
func diffIDs(prev, next []string) (added, removed []string) {
	prevSet := make(map[string]struct{}, len(prev))
	for _, id := range prev {
		prevSet[id] = struct{}{}
	}
	nextSet := make(map[string]struct{}, len(next))
	for _, id := range next {
		nextSet[id] = struct{}{}
		if _, ok := prevSet[id]; !ok {
			added = append(added, id)
		}
	}
	for _, id := range prev {
		if _, ok := nextSet[id]; !ok {
			removed = append(removed, id)
		}
	}
	return added, removed
}
