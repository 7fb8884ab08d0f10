package ports

import (
	"context"
	"time"

	"github.com/invoiceapp/user-management-system/internal/core/domain"
)

// InvoiceFilter narrows invoice listings. FinancialYear is required by the
// API; the date range is optional (zero values mean unbounded).
type InvoiceFilter struct {
	FinancialYear string
	StartDate     time.Time
	EndDate       time.Time
}

// InvoiceRepository defines persistence for invoice records.
type InvoiceRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Invoice, error)
	Find(ctx context.Context, filter InvoiceFilter) ([]*domain.Invoice, error)
	Insert(ctx context.Context, invoice *domain.Invoice) (*domain.Invoice, error)
	Update(ctx context.Context, invoice *domain.Invoice) error
	Delete(ctx context.Context, id string) error
}
