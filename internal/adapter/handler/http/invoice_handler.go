package http

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/wekeepgrowing/salon-billing/internal/domain/dto"
	"github.com/wekeepgrowing/salon-billing/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/salon-billing/internal/domain/errors"
	"github.com/wekeepgrowing/salon-billing/internal/middleware/auth"
	"go.uber.org/zap"
)

type InvoiceManager interface {
	CreateInvoice(ctx context.Context, salonID uuid.UUID, draft entity.InvoiceDraft) (*entity.Invoice, error)
	MarkPaid(ctx context.Context, salonID, invoiceID uuid.UUID, method string, paidAt *time.Time) (*entity.Invoice, error)
	Cancel(ctx context.Context, salonID, invoiceID uuid.UUID) (*entity.Invoice, error)
	Get(ctx context.Context, salonID, invoiceID uuid.UUID) (*entity.Invoice, error)
	List(ctx context.Context, salonID uuid.UUID, params entity.PaginationParams, status entity.InvoiceStatus) (*entity.PaginatedInvoicesResponse, error)
}

type InvoiceHandler struct {
	invoices InvoiceManager
	logger   *zap.Logger
}

func NewInvoiceHandler(invoices InvoiceManager, logger *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, logger: logger}
}

func (h *InvoiceHandler) CreateInvoice(c echo.Context) error {
	salonID, err := auth.GetSalonID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "salonId required")
	}

	var req dto.CreateInvoiceRequest
	if err := bindAndValidate(c, &req); err != nil {
		return httpError(err)
	}
	subtotal, err := decimal.NewFromString(req.Subtotal)
	if err != nil {
		return httpError(domainErrors.Validationf("subtotal is not a number"))
	}
	taxRate, err := decimal.NewFromString(req.TaxRate)
	if err != nil {
		return httpError(domainErrors.Validationf("tax_rate is not a number"))
	}

	draft := entity.InvoiceDraft{
		ClientName: req.ClientName,
		IssuedAt:   req.IssuedAt,
		Subtotal:   subtotal,
		TaxRate:    taxRate,
		Notes:      req.Notes,
	}
	if req.Send {
		draft.Status = entity.InvoiceStatusSent
	}

	invoice, err := h.invoices.CreateInvoice(c.Request().Context(), salonID, draft)
	if err != nil {
		return failure(h.logger, "Failed to create invoice", err,
			zap.String("salon_id", salonID.String()))
	}
	return c.JSON(http.StatusCreated, invoice)
}

func (h *InvoiceHandler) ListInvoices(c echo.Context) error {
	salonID, err := auth.GetSalonID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "salonId required")
	}

	var q dto.ListInvoicesQuery
	if err := bindAndValidate(c, &q); err != nil {
		return httpError(err)
	}

	page, err := h.invoices.List(c.Request().Context(), salonID,
		entity.PaginationParams{Page: q.Page, Limit: q.Limit}, entity.InvoiceStatus(q.Status))
	if err != nil {
		return failure(h.logger, "Failed to list invoices", err,
			zap.String("salon_id", salonID.String()))
	}
	return c.JSON(http.StatusOK, page)
}

func (h *InvoiceHandler) GetInvoice(c echo.Context) error {
	salonID, invoiceID, err := invoicePath(c)
	if err != nil {
		return httpError(err)
	}

	invoice, err := h.invoices.Get(c.Request().Context(), salonID, invoiceID)
	if err != nil {
		return failure(h.logger, "Failed to load invoice", err,
			zap.String("invoice_id", invoiceID.String()))
	}
	return c.JSON(http.StatusOK, invoice)
}

func (h *InvoiceHandler) PayInvoice(c echo.Context) error {
	salonID, invoiceID, err := invoicePath(c)
	if err != nil {
		return httpError(err)
	}

	var req dto.MarkPaidRequest
	if err := bindAndValidate(c, &req); err != nil {
		return httpError(err)
	}

	invoice, err := h.invoices.MarkPaid(c.Request().Context(), salonID, invoiceID, req.PaymentMethod, req.PaidAt)
	if err != nil {
		return failure(h.logger, "Failed to mark invoice paid", err,
			zap.String("invoice_id", invoiceID.String()))
	}
	return c.JSON(http.StatusOK, invoice)
}

func (h *InvoiceHandler) CancelInvoice(c echo.Context) error {
	salonID, invoiceID, err := invoicePath(c)
	if err != nil {
		return httpError(err)
	}

	invoice, err := h.invoices.Cancel(c.Request().Context(), salonID, invoiceID)
	if err != nil {
		return failure(h.logger, "Failed to cancel invoice", err,
			zap.String("invoice_id", invoiceID.String()))
	}
	return c.JSON(http.StatusOK, invoice)
}

func invoicePath(c echo.Context) (uuid.UUID, uuid.UUID, error) {
	salonID, err := auth.GetSalonID(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, domainErrors.Validationf("salonId required")
	}
	invoiceID, err := uuid.Parse(c.Param("invoiceId"))
	if err != nil {
		return uuid.Nil, uuid.Nil, domainErrors.Validationf("invoiceId must be a valid UUID")
	}
	return salonID, invoiceID, nil
}
