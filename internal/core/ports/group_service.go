package ports

import (
	"context"

	"github.com/invoiceapp/user-management-system/internal/core/domain"
)

// CreateGroupInput carries the fields of a group-creation request.
type CreateGroupInput struct {
	Name        string
	Type        string
	Description string
	Members     []string // user record ids
}

// UpdateGroupInput carries the mutable group fields. A nil Members slice
// leaves membership untouched; a non-nil one replaces the member set.
type UpdateGroupInput struct {
	Name        *string
	Description *string
	Members     []string
}

// GroupService implements the tier-gated group lifecycle and membership
// maintenance.
type GroupService interface {
	Create(ctx context.Context, actorID string, in CreateGroupInput) (*domain.Group, error)
	List(ctx context.Context, actorID string) ([]*domain.Group, error)
	Update(ctx context.Context, actorID, groupID string, in UpdateGroupInput) (*domain.Group, error)
	Delete(ctx context.Context, actorID, groupID string) error

	AddMember(ctx context.Context, actorID, groupID, userID string) error
	RemoveMember(ctx context.Context, actorID, groupID, userID string) error

	// VisibleUsers resolves the transitive visibility chain of a group:
	// the USER accounts created by the unit managers the group exposes
	// (ADMIN groups) or by its members (UNIT_MANAGER groups).
	VisibleUsers(ctx context.Context, actorID, groupID string) ([]*domain.User, error)
}
