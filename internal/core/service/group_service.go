package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/invoiceapp/user-management-system/internal/core/domain"
	"github.com/invoiceapp/user-management-system/internal/core/ports"
)

type GroupService struct {
	groups      ports.GroupRepository
	users       ports.UserRepository
	coordinator *MembershipCoordinator
	log         zerolog.Logger
}

func NewGroupService(groups ports.GroupRepository, users ports.UserRepository, log zerolog.Logger) *GroupService {
	return &GroupService{
		groups:      groups,
		users:       users,
		coordinator: NewMembershipCoordinator(users, groups, log),
		log:         log,
	}
}

// Create builds a group of the requested type. ADMIN groups require a
// SUPER_ADMIN actor, UNIT_MANAGER groups an ADMIN actor, and every initial
// member must hold the role the group's tier demands.
func (s *GroupService) Create(ctx context.Context, actorID string, in ports.CreateGroupInput) (*domain.Group, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(in.Name) == "" {
		return nil, &domain.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	groupType, err := domain.ParseGroupType(in.Type)
	if err != nil {
		return nil, err
	}

	if !domain.CanCreateGroup(actor.Role, groupType) {
		s.log.Warn().Str("actor_role", string(actor.Role)).Str("group_type", string(groupType)).Msg("group creation denied")
		return nil, &domain.PermissionDeniedError{ActorRole: actor.Role, GroupType: groupType, Operation: "create"}
	}

	now := time.Now().UTC()
	group := &domain.Group{
		Name:        strings.TrimSpace(in.Name),
		Type:        groupType,
		Description: strings.TrimSpace(in.Description),
		CreatedBy:   actor.ID,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.groups.Insert(ctx, group)
	if err != nil {
		return nil, err
	}

	if len(in.Members) > 0 {
		if err := s.coordinator.ReplaceMembers(ctx, created, in.Members); err != nil {
			return nil, err
		}
	}

	s.log.Info().Str("group_id", created.ID).Str("type", string(groupType)).Str("created_by", actor.UserID).Msg("group created")
	return created, nil
}

// List returns the active groups of the tier the actor administers.
func (s *GroupService) List(ctx context.Context, actorID string) ([]*domain.Group, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	groupType, err := ResolveGroupScope(actor)
	if err != nil {
		return nil, err
	}
	return s.groups.ListByType(ctx, groupType)
}

// Update mutates a group's name, description, or member set. The type is
// immutable. A provided member list replaces the whole set via the
// coordinator's symmetric-diff synchronization.
func (s *GroupService) Update(ctx context.Context, actorID, groupID string, in ports.UpdateGroupInput) (*domain.Group, error) {
	actor, group, err := s.resolveActorAndGroup(ctx, actorID, groupID)
	if err != nil {
		return nil, err
	}
	if !domain.CanManageGroup(actor.Role, group) {
		return nil, &domain.PermissionDeniedError{ActorRole: actor.Role, GroupType: group.Type, Operation: "update"}
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, &domain.ValidationError{Field: "name", Reason: "must not be empty"}
		}
		group.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		group.Description = strings.TrimSpace(*in.Description)
	}
	group.UpdatedAt = time.Now().UTC()

	if in.Members != nil {
		if err := s.coordinator.ReplaceMembers(ctx, group, in.Members); err != nil {
			return nil, err
		}
	} else if err := s.groups.Update(ctx, group); err != nil {
		return nil, err
	}

	return group, nil
}

// Delete soft-deletes a group after detaching every member. Member accounts
// are never deleted as a side effect.
func (s *GroupService) Delete(ctx context.Context, actorID, groupID string) error {
	actor, group, err := s.resolveActorAndGroup(ctx, actorID, groupID)
	if err != nil {
		return err
	}
	if !domain.CanManageGroup(actor.Role, group) {
		return &domain.PermissionDeniedError{ActorRole: actor.Role, GroupType: group.Type, Operation: "delete"}
	}

	if err := s.coordinator.ClearGroup(ctx, group); err != nil {
		return err
	}
	s.log.Info().Str("group_id", groupID).Str("deleted_by", actor.UserID).Msg("group deactivated")
	return nil
}

// AddMember adds a user to a group, gated by the group-management policy.
func (s *GroupService) AddMember(ctx context.Context, actorID, groupID, userID string) error {
	actor, group, err := s.resolveActorAndGroup(ctx, actorID, groupID)
	if err != nil {
		return err
	}
	if !domain.CanManageGroup(actor.Role, group) {
		return &domain.PermissionDeniedError{ActorRole: actor.Role, GroupType: group.Type, Operation: "add member to"}
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	return s.coordinator.AddMember(ctx, group, user)
}

// RemoveMember removes a user from a group. Removing a non-member is a no-op.
func (s *GroupService) RemoveMember(ctx context.Context, actorID, groupID, userID string) error {
	actor, group, err := s.resolveActorAndGroup(ctx, actorID, groupID)
	if err != nil {
		return err
	}
	if !domain.CanManageGroup(actor.Role, group) {
		return &domain.PermissionDeniedError{ActorRole: actor.Role, GroupType: group.Type, Operation: "remove member from"}
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	return s.coordinator.RemoveMember(ctx, group, user)
}

// VisibleUsers resolves the transitive visibility chain of a group: for an
// ADMIN group, the USER accounts created by the unit managers it exposes;
// for a UNIT_MANAGER group, the USER accounts created by its members.
func (s *GroupService) VisibleUsers(ctx context.Context, actorID, groupID string) ([]*domain.User, error) {
	actor, group, err := s.resolveActorAndGroup(ctx, actorID, groupID)
	if err != nil {
		return nil, err
	}
	if !domain.CanManageGroup(actor.Role, group) && !group.HasMember(actor.ID) {
		return nil, &domain.PermissionDeniedError{ActorRole: actor.Role, GroupType: group.Type, Operation: "view visible users of"}
	}

	var creators []string
	if group.Type == domain.GroupTypeAdmin {
		creators = group.VisibleUnitManagers
	} else {
		creators = group.Members
	}
	if len(creators) == 0 {
		return nil, nil
	}

	users, _, err := s.users.List(ctx, ports.UserScope{
		Roles:       []domain.Role{domain.RoleUser},
		CreatedByIn: creators,
	}, 1, 0)
	return users, err
}

func (s *GroupService) resolveActor(ctx context.Context, actorID string) (*domain.User, error) {
	if actorID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrNotAuthenticated
		}
		return nil, err
	}
	return actor, nil
}

func (s *GroupService) resolveActorAndGroup(ctx context.Context, actorID, groupID string) (*domain.User, *domain.Group, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}
	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	return actor, group, nil
}
