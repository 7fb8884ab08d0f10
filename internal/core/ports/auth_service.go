package ports

import (
	"context"

	"github.com/invoiceapp/user-management-system/internal/core/domain"
)

type AuthService interface {
	// Login verifies the email/password pair and issues a signed token.
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	// CurrentUser resolves the authenticated actor's own record.
	CurrentUser(ctx context.Context, actorID string) (*domain.User, error)
}
