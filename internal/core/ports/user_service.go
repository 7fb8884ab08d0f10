package ports

import (
	"context"

	"github.com/invoiceapp/user-management-system/internal/core/domain"
)

// CreateUserInput carries the fields of a user-creation request.
type CreateUserInput struct {
	Name     string
	Email    string
	Username string
	Password string
	Role     string
	Timezone string // defaults to UTC when empty
}

// UpdateUserInput carries the mutable fields of a user record. Role and
// password are immutable through this path; nil pointers mean "unchanged".
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Username *string
	Timezone *string
}

// UserListResult is a page of visible users plus pagination metadata.
type UserListResult struct {
	Users      []*domain.User
	Total      int64
	Page       int64
	TotalPages int64
}

// UserService implements the role-gated user lifecycle. Every method takes
// the authenticated actor's record id; the service resolves the actor and
// applies the authorization policy itself.
type UserService interface {
	Create(ctx context.Context, actorID string, in CreateUserInput) (*domain.User, error)
	Get(ctx context.Context, actorID, userID string) (*domain.User, error)
	List(ctx context.Context, actorID string, page, limit int64) (*UserListResult, error)
	Update(ctx context.Context, actorID, userID string, in UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, actorID, userID string) error

	// NextID previews the external id the next created user of the role
	// would receive.
	NextID(ctx context.Context, role string) (string, error)

	// Groups returns the groups the actor belongs to.
	Groups(ctx context.Context, actorID string) ([]*domain.Group, error)
}
