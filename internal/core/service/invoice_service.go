package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/invoiceapp/user-management-system/internal/core/domain"
	"github.com/invoiceapp/user-management-system/internal/core/ports"
)

// InvoiceService implements plain invoice CRUD. Any authenticated actor may
// use it; CreatedBy records who issued each invoice.
type InvoiceService struct {
	invoices ports.InvoiceRepository
	log      zerolog.Logger
}

func NewInvoiceService(invoices ports.InvoiceRepository, log zerolog.Logger) *InvoiceService {
	return &InvoiceService{invoices: invoices, log: log}
}

func (s *InvoiceService) Create(ctx context.Context, actorID string, in ports.CreateInvoiceInput) (*domain.Invoice, error) {
	if actorID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	if in.InvoiceNumber <= 0 {
		return nil, &domain.ValidationError{Field: "invoice_number", Reason: "must be a positive number"}
	}
	if in.InvoiceDate.IsZero() {
		return nil, &domain.ValidationError{Field: "invoice_date", Reason: "is required"}
	}
	if in.InvoiceAmount <= 0 {
		return nil, &domain.ValidationError{Field: "invoice_amount", Reason: "must be greater than zero"}
	}
	if strings.TrimSpace(in.FinancialYear) == "" {
		return nil, &domain.ValidationError{Field: "financial_year", Reason: "is required"}
	}

	now := time.Now().UTC()
	invoice := &domain.Invoice{
		InvoiceNumber: in.InvoiceNumber,
		InvoiceDate:   in.InvoiceDate.UTC(),
		InvoiceAmount: in.InvoiceAmount,
		FinancialYear: strings.TrimSpace(in.FinancialYear),
		CreatedBy:     actorID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	created, err := s.invoices.Insert(ctx, invoice)
	if err != nil {
		return nil, err
	}
	s.log.Info().Int("invoice_number", created.InvoiceNumber).Str("financial_year", created.FinancialYear).Msg("invoice created")
	return created, nil
}

func (s *InvoiceService) Get(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	return s.invoices.FindByID(ctx, invoiceID)
}

func (s *InvoiceService) List(ctx context.Context, filter ports.InvoiceFilter) ([]*domain.Invoice, error) {
	if strings.TrimSpace(filter.FinancialYear) == "" {
		return nil, &domain.ValidationError{Field: "financial_year", Reason: "is required"}
	}
	return s.invoices.Find(ctx, filter)
}

func (s *InvoiceService) Update(ctx context.Context, invoiceID string, in ports.UpdateInvoiceInput) (*domain.Invoice, error) {
	invoice, err := s.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	if in.InvoiceAmount != nil {
		if *in.InvoiceAmount <= 0 {
			return nil, &domain.ValidationError{Field: "invoice_amount", Reason: "must be greater than zero"}
		}
		invoice.InvoiceAmount = *in.InvoiceAmount
	}
	if in.InvoiceDate != nil {
		if in.InvoiceDate.IsZero() {
			return nil, &domain.ValidationError{Field: "invoice_date", Reason: "must be a valid date"}
		}
		invoice.InvoiceDate = in.InvoiceDate.UTC()
	}
	invoice.UpdatedAt = time.Now().UTC()

	if err := s.invoices.Update(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *InvoiceService) Delete(ctx context.Context, invoiceID string) error {
	if _, err := s.invoices.FindByID(ctx, invoiceID); err != nil {
		return err
	}
	return s.invoices.Delete(ctx, invoiceID)
}
