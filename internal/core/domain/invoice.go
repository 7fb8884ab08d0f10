package domain

import "time"

// Invoice is a plain accounting record. No authorization beyond
// authentication applies; CreatedBy records the issuing actor.
type Invoice struct {
	ID            string    `json:"id"`
	InvoiceNumber int       `json:"invoice_number"`
	InvoiceDate   time.Time `json:"invoice_date"`
	InvoiceAmount float64   `json:"invoice_amount"`
	FinancialYear string    `json:"financial_year"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
