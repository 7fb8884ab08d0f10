package handler

import (
	"time"

	"github.com/invoiceapp/user-management-system/internal/core/domain"
)

const dateLayout = "2006-01-02"

type createInvoiceRequest struct {
	InvoiceNumber int     `json:"invoice_number" validate:"required,gt=0"`
	InvoiceDate   string  `json:"invoice_date" validate:"required,datetime=2006-01-02"`
	InvoiceAmount float64 `json:"invoice_amount" validate:"required,gt=0"`
	FinancialYear string  `json:"financial_year" validate:"required"`
}

type updateInvoiceRequest struct {
	InvoiceAmount *float64 `json:"invoice_amount" validate:"omitempty,gt=0"`
	InvoiceDate   *string  `json:"invoice_date" validate:"omitempty,datetime=2006-01-02"`
}

type invoiceResponse struct {
	ID            string    `json:"id"`
	InvoiceNumber int       `json:"invoice_number"`
	InvoiceDate   string    `json:"invoice_date"`
	InvoiceAmount float64   `json:"invoice_amount"`
	FinancialYear string    `json:"financial_year"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toInvoiceResponse(inv *domain.Invoice) invoiceResponse {
	return invoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		InvoiceDate:   inv.InvoiceDate.Format(dateLayout),
		InvoiceAmount: inv.InvoiceAmount,
		FinancialYear: inv.FinancialYear,
		CreatedBy:     inv.CreatedBy,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}
}
