package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/invoiceapp/user-management-system/internal/core/ports"
)

type InvoiceHandler struct {
	invoices ports.InvoiceService
}

func NewInvoiceHandler(invoices ports.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices}
}

// Create records a new invoice owned by the actor.
//
// @Summary      Create an invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createInvoiceRequest  true  "Invoice details"
// @Success      201   {object}  invoiceResponse
// @Failure      400   {object}  map[string]string
// @Router       /api/invoices [post]
func (h *InvoiceHandler) Create(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}

	var req createInvoiceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	date, err := time.Parse(dateLayout, req.InvoiceDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invoice_date must match format "+dateLayout)
	}

	inv, err := h.invoices.Create(c.Request().Context(), actor, ports.CreateInvoiceInput{
		InvoiceNumber: req.InvoiceNumber,
		InvoiceDate:   date,
		InvoiceAmount: req.InvoiceAmount,
		FinancialYear: req.FinancialYear,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toInvoiceResponse(inv))
}

// Get returns a single invoice.
//
// @Summary      Get an invoice
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Invoice id"
// @Success      200  {object}  invoiceResponse
// @Failure      404  {object}  map[string]string
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) Get(c echo.Context) error {
	if _, err := actorID(c); err != nil {
		return err
	}

	inv, err := h.invoices.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toInvoiceResponse(inv))
}

// List returns invoices for a financial year, optionally bounded by a date range.
//
// @Summary      List invoices
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        financial_year  query     string  true   "Financial year, e.g. 2025-26"
// @Param        start_date      query     string  false  "Inclusive lower bound (YYYY-MM-DD)"
// @Param        end_date        query     string  false  "Inclusive upper bound (YYYY-MM-DD)"
// @Success      200  {array}   invoiceResponse
// @Failure      400  {object}  map[string]string
// @Router       /api/invoices [get]
func (h *InvoiceHandler) List(c echo.Context) error {
	if _, err := actorID(c); err != nil {
		return err
	}

	filter := ports.InvoiceFilter{FinancialYear: c.QueryParam("financial_year")}
	if s := c.QueryParam("start_date"); s != "" {
		d, err := time.Parse(dateLayout, s)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "start_date must match format "+dateLayout)
		}
		filter.StartDate = d
	}
	if s := c.QueryParam("end_date"); s != "" {
		d, err := time.Parse(dateLayout, s)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "end_date must match format "+dateLayout)
		}
		filter.EndDate = d
	}

	invoices, err := h.invoices.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	out := make([]invoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, toInvoiceResponse(inv))
	}
	return c.JSON(http.StatusOK, out)
}

// Update modifies an invoice's amount or date.
//
// @Summary      Update an invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Invoice id"
// @Param        body  body      updateInvoiceRequest  true  "Fields to change"
// @Success      200   {object}  invoiceResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/invoices/{id} [put]
func (h *InvoiceHandler) Update(c echo.Context) error {
	if _, err := actorID(c); err != nil {
		return err
	}

	var req updateInvoiceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	in := ports.UpdateInvoiceInput{InvoiceAmount: req.InvoiceAmount}
	if req.InvoiceDate != nil {
		d, err := time.Parse(dateLayout, *req.InvoiceDate)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invoice_date must match format "+dateLayout)
		}
		in.InvoiceDate = &d
	}

	inv, err := h.invoices.Update(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toInvoiceResponse(inv))
}

// Delete removes an invoice permanently.
//
// @Summary      Delete an invoice
// @Tags         invoices
// @Security     BearerAuth
// @Param        id  path  string  true  "Invoice id"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /api/invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c echo.Context) error {
	if _, err := actorID(c); err != nil {
		return err
	}

	if err := h.invoices.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
