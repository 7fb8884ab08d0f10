package ports

import (
	"context"
	"time"

	"github.com/invoiceapp/user-management-system/internal/core/domain"
)

// CreateInvoiceInput carries the fields of an invoice-creation request.
type CreateInvoiceInput struct {
	InvoiceNumber int
	InvoiceDate   time.Time
	InvoiceAmount float64
	FinancialYear string
}

// UpdateInvoiceInput carries the mutable invoice fields.
type UpdateInvoiceInput struct {
	InvoiceAmount *float64
	InvoiceDate   *time.Time
}

// InvoiceService implements invoice CRUD. Authentication is the only gate.
type InvoiceService interface {
	Create(ctx context.Context, actorID string, in CreateInvoiceInput) (*domain.Invoice, error)
	Get(ctx context.Context, invoiceID string) (*domain.Invoice, error)
	List(ctx context.Context, filter InvoiceFilter) ([]*domain.Invoice, error)
	Update(ctx context.Context, invoiceID string, in UpdateInvoiceInput) (*domain.Invoice, error)
	Delete(ctx context.Context, invoiceID string) error
}
