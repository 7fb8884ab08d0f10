package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/invoiceapp/user-management-system/internal/core/domain"
	"github.com/invoiceapp/user-management-system/internal/core/ports"
)

func invoiceInput(number int, day string) ports.CreateInvoiceInput {
	d, _ := time.Parse("2006-01-02", day)
	return ports.CreateInvoiceInput{
		InvoiceNumber: number,
		InvoiceDate:   d,
		InvoiceAmount: 150.0,
		FinancialYear: "2025-26",
	}
}

func TestInvoiceCreate(t *testing.T) {
	svc := NewInvoiceService(newMemInvoiceRepo(), zerolog.Nop())

	created, err := svc.Create(context.Background(), "id1", invoiceInput(42, "2025-06-01"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.CreatedBy != "id1" || created.InvoiceNumber != 42 {
		t.Errorf("unexpected invoice: %+v", created)
	}
}

func TestInvoiceCreate_Validation(t *testing.T) {
	svc := NewInvoiceService(newMemInvoiceRepo(), zerolog.Nop())

	if _, err := svc.Create(context.Background(), "", invoiceInput(1, "2025-06-01")); err != domain.ErrNotAuthenticated {
		t.Errorf("anonymous create should fail, got %v", err)
	}

	in := invoiceInput(0, "2025-06-01")
	_, err := svc.Create(context.Background(), "id1", in)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Field != "invoice_number" {
		t.Errorf("expected invoice_number ValidationError, got %v", err)
	}

	in = invoiceInput(1, "2025-06-01")
	in.FinancialYear = ""
	if _, err := svc.Create(context.Background(), "id1", in); !errors.As(err, &ve) {
		t.Errorf("expected ValidationError for missing financial year, got %v", err)
	}
}

func TestInvoiceList_FilterByYearAndRange(t *testing.T) {
	repo := newMemInvoiceRepo()
	svc := NewInvoiceService(repo, zerolog.Nop())

	mustCreate := func(n int, day string) {
		if _, err := svc.Create(context.Background(), "id1", invoiceInput(n, day)); err != nil {
			t.Fatalf("seed invoice %d: %v", n, err)
		}
	}
	mustCreate(1, "2025-04-10")
	mustCreate(2, "2025-07-15")
	mustCreate(3, "2026-01-20")

	start, _ := time.Parse("2006-01-02", "2025-07-01")
	end, _ := time.Parse("2006-01-02", "2025-12-31")
	got, err := svc.List(context.Background(), ports.InvoiceFilter{FinancialYear: "2025-26", StartDate: start, EndDate: end})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].InvoiceNumber != 2 {
		t.Errorf("filtered list = %v, want invoice 2 only", got)
	}

	if _, err := svc.List(context.Background(), ports.InvoiceFilter{}); err == nil {
		t.Errorf("missing financial year must be rejected")
	}
}

func TestInvoiceUpdateAndDelete(t *testing.T) {
	repo := newMemInvoiceRepo()
	svc := NewInvoiceService(repo, zerolog.Nop())

	created, err := svc.Create(context.Background(), "id1", invoiceInput(7, "2025-05-05"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	amount := 999.5
	updated, err := svc.Update(context.Background(), created.ID, ports.UpdateInvoiceInput{InvoiceAmount: &amount})
	if err != nil || updated.InvoiceAmount != 999.5 {
		t.Fatalf("Update = %+v, %v", updated, err)
	}

	bad := -1.0
	if _, err := svc.Update(context.Background(), created.ID, ports.UpdateInvoiceInput{InvoiceAmount: &bad}); err == nil {
		t.Errorf("non-positive amount must be rejected")
	}

	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(context.Background(), created.ID); !isNotFound(err) {
		t.Errorf("deleting twice should be NotFound, got %v", err)
	}
}
