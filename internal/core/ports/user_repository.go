package ports

import (
	"context"

	"github.com/invoiceapp/user-management-system/internal/core/domain"
)

// UserScope is the caller-scoped listing filter produced by the visibility
// resolver. Exactly one of the shape fields applies: All, SelfID, or the
// Roles/GroupIDs/CreatedByIn combination.
type UserScope struct {
	All        bool
	SelfID     string   // restrict to this single record
	Roles      []domain.Role
	GroupIDs   []string // users whose groups intersect these
	CreatedByIn []string // users created by any of these ids
}

// UserRepository defines persistence for user records. Implementations only
// surface active records unless stated otherwise.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUserID(ctx context.Context, userID string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]*domain.User, error)

	Insert(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Deactivate(ctx context.Context, id string) error

	List(ctx context.Context, scope UserScope, page, limit int64) ([]*domain.User, int64, error)

	// MaxIDSuffix returns the highest numeric suffix among external ids with
	// the given prefix, 0 when none exist. Used only to seed the allocator.
	MaxIDSuffix(ctx context.Context, prefix string) (int64, error)

	// AddGroup / RemoveGroup maintain the user-side membership back-reference.
	// Both are idempotent.
	AddGroup(ctx context.Context, userID, groupID string) error
	RemoveGroup(ctx context.Context, userID, groupID string) error
}
