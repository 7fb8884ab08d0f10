package ports

import (
	"context"

	"github.com/invoiceapp/user-management-system/internal/core/domain"
)

// GroupRepository defines persistence for group records. Only active groups
// are returned by queries; Deactivate performs the soft delete.
type GroupRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Group, error)
	FindByMember(ctx context.Context, userID string) ([]*domain.Group, error)
	ListByType(ctx context.Context, t domain.GroupType) ([]*domain.Group, error)

	Insert(ctx context.Context, group *domain.Group) (*domain.Group, error)
	Update(ctx context.Context, group *domain.Group) error
	Deactivate(ctx context.Context, id string) error
}
