package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wekeepgrowing/salon-billing/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/salon-billing/internal/domain/errors"
	"github.com/wekeepgrowing/salon-billing/internal/domain/repository"
	"go.uber.org/zap"
)

var maxTaxRate = decimal.NewFromInt(100)

// InvoiceService manages a salon's invoice ledger
type InvoiceService struct {
	invoices repository.InvoiceRepository
	salons   repository.SalonRepository
	audit    AuditRecorder
	loc      *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

func NewInvoiceService(
	invoices repository.InvoiceRepository,
	salons repository.SalonRepository,
	audit AuditRecorder,
	loc *time.Location,
	logger *zap.Logger,
) *InvoiceService {
	if audit == nil {
		audit = nopRecorder{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &InvoiceService{
		invoices: invoices,
		salons:   salons,
		audit:    audit,
		loc:      loc,
		now:      time.Now,
		logger:   logger,
	}
}

// CreateInvoice derives tax and total from the draft and allocates the next
// number of the salon's yearly sequence. The year is the issue date's year in
// the reporting timezone, the same calendar the exports print.
func (s *InvoiceService) CreateInvoice(ctx context.Context, salonID uuid.UUID, draft entity.InvoiceDraft) (*entity.Invoice, error) {
	if err := validateDraft(&draft); err != nil {
		return nil, err
	}
	if err := s.requireSalon(ctx, salonID); err != nil {
		return nil, err
	}

	tax, total := entity.InvoiceAmounts(draft.Subtotal, draft.TaxRate)
	invoice, err := s.invoices.CreateNumbered(ctx, &entity.Invoice{
		SalonID:    salonID,
		ClientName: draft.ClientName,
		IssuedAt:   draft.IssuedAt.In(s.loc),
		Subtotal:   draft.Subtotal.Round(2),
		TaxRate:    draft.TaxRate,
		TaxAmount:  tax,
		Total:      total,
		Status:     draft.Status,
		Notes:      draft.Notes,
	})
	if err != nil {
		s.logger.Error("Failed to create invoice",
			zap.String("salon_id", salonID.String()),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Invoice created",
		zap.String("salon_id", salonID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber))
	s.record(entity.AuditInvoiceCreated, invoice)
	return invoice, nil
}

func validateDraft(d *entity.InvoiceDraft) error {
	d.ClientName = strings.TrimSpace(d.ClientName)
	if d.ClientName == "" {
		return domainErrors.Validationf("client name is required")
	}
	if d.IssuedAt.IsZero() {
		return domainErrors.Validationf("issue date is required")
	}
	if d.Subtotal.IsNegative() {
		return domainErrors.Validationf("subtotal must not be negative")
	}
	if d.TaxRate.IsNegative() || d.TaxRate.GreaterThan(maxTaxRate) {
		return domainErrors.Validationf("tax rate must be between 0 and 100")
	}
	switch d.Status {
	case "":
		d.Status = entity.InvoiceStatusDraft
	case entity.InvoiceStatusDraft, entity.InvoiceStatusSent:
	default:
		return domainErrors.Validationf("invoice cannot be created as %s", d.Status)
	}
	return nil
}

// MarkPaid records payment of an open invoice. paidAt nil means now.
func (s *InvoiceService) MarkPaid(ctx context.Context, salonID, invoiceID uuid.UUID, method string, paidAt *time.Time) (*entity.Invoice, error) {
	if strings.TrimSpace(method) == "" {
		return nil, domainErrors.Validationf("payment method is required")
	}
	if paidAt == nil {
		now := s.now().UTC()
		paidAt = &now
	}

	invoice, err := s.invoices.TransitionStatus(ctx, salonID, invoiceID, entity.InvoiceStatusPaid, paidAt, method)
	if err != nil {
		s.logger.Warn("Failed to mark invoice paid",
			zap.String("salon_id", salonID.String()),
			zap.String("invoice_id", invoiceID.String()),
			zap.Error(err))
		return nil, err
	}
	s.record(entity.AuditInvoicePaid, invoice)
	return invoice, nil
}

func (s *InvoiceService) Cancel(ctx context.Context, salonID, invoiceID uuid.UUID) (*entity.Invoice, error) {
	invoice, err := s.invoices.TransitionStatus(ctx, salonID, invoiceID, entity.InvoiceStatusCancelled, nil, "")
	if err != nil {
		s.logger.Warn("Failed to cancel invoice",
			zap.String("salon_id", salonID.String()),
			zap.String("invoice_id", invoiceID.String()),
			zap.Error(err))
		return nil, err
	}
	s.record(entity.AuditInvoiceCancelled, invoice)
	return invoice, nil
}

func (s *InvoiceService) Get(ctx context.Context, salonID, invoiceID uuid.UUID) (*entity.Invoice, error) {
	invoice, err := s.invoices.GetByID(ctx, salonID, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, fmt.Errorf("%w: invoice %s", domainErrors.ErrNotFound, invoiceID)
	}
	return invoice, nil
}

// List returns one page of the salon's invoices, oldest first.
func (s *InvoiceService) List(ctx context.Context, salonID uuid.UUID, params entity.PaginationParams, status entity.InvoiceStatus) (*entity.PaginatedInvoicesResponse, error) {
	params.Validate()

	filter := repository.InvoiceFilter{SalonID: &salonID}
	if status != "" {
		if !status.Valid() {
			return nil, domainErrors.Validationf("unknown invoice status %q", status)
		}
		filter.Statuses = []entity.InvoiceStatus{status}
	}

	total, err := s.invoices.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	filter.Limit = params.Limit
	filter.Offset = params.CalculateOffset()
	invoices, err := s.invoices.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &entity.PaginatedInvoicesResponse{
		Data:       invoices,
		Pagination: entity.NewPaginationMeta(params.Page, params.Limit, total),
	}, nil
}

func (s *InvoiceService) requireSalon(ctx context.Context, salonID uuid.UUID) error {
	salon, err := s.salons.GetByID(ctx, salonID)
	if err != nil {
		return err
	}
	if salon == nil {
		return fmt.Errorf("%w: salon %s", domainErrors.ErrNotFound, salonID)
	}
	return nil
}

func (s *InvoiceService) record(action entity.AuditAction, inv *entity.Invoice) {
	s.audit.Record(entity.AuditRecord{
		Action:  action,
		Subject: inv.SalonID.String(),
		Details: map[string]string{
			"invoice_id":     inv.ID.String(),
			"invoice_number": inv.InvoiceNumber,
			"status":         string(inv.Status),
			"total":          inv.Total.StringFixed(2),
		},
		OccurredAt: s.now().UTC(),
	})
}
