package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wekeepgrowing/salon-billing/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/salon-billing/internal/domain/errors"
	"github.com/wekeepgrowing/salon-billing/internal/domain/model"
	"github.com/wekeepgrowing/salon-billing/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var openInvoiceStatuses = []string{
	string(entity.InvoiceStatusDraft),
	string(entity.InvoiceStatusSent),
	string(entity.InvoiceStatusOverdue),
}

type invoiceRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *gorm.DB, logger *zap.Logger) repository.InvoiceRepository {
	return &invoiceRepository{
		db:     db,
		logger: logger,
	}
}

// CreateNumbered allocates the next (salon, year) sequence value under a row lock
// and inserts the invoice in the same transaction. The year is read in the
// location IssuedAt carries.
func (r *invoiceRepository) CreateNumbered(ctx context.Context, invoice *entity.Invoice) (*entity.Invoice, error) {
	year := invoice.IssuedAt.Year()
	row := invoiceToModel(invoice)
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := &model.InvoiceSequence{SalonID: invoice.SalonID, Year: year}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(seed).Error; err != nil {
			return fmt.Errorf("failed to seed invoice sequence: %w", err)
		}

		var seq model.InvoiceSequence
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("salon_id = ? AND year = ?", invoice.SalonID, year).
			First(&seq).Error; err != nil {
			return fmt.Errorf("failed to lock invoice sequence: %w", err)
		}

		next := seq.LastValue + 1
		if err := tx.Model(&model.InvoiceSequence{}).
			Where("salon_id = ? AND year = ?", invoice.SalonID, year).
			Update("last_value", next).Error; err != nil {
			return fmt.Errorf("failed to advance invoice sequence: %w", err)
		}

		row.InvoiceNumber = entity.FormatInvoiceNumber(year, next)
		if err := tx.Create(row).Error; err != nil {
			return fmt.Errorf("failed to insert invoice: %w", err)
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to create invoice",
			zap.String("salon_id", invoice.SalonID.String()),
			zap.Int("year", year),
			zap.Error(err))
		return nil, err
	}

	r.logger.Info("Invoice created",
		zap.String("salon_id", invoice.SalonID.String()),
		zap.String("invoice_number", row.InvoiceNumber))

	return modelToInvoice(row), nil
}

// GetByID returns nil, nil when the salon has no such invoice
func (r *invoiceRepository) GetByID(ctx context.Context, salonID, invoiceID uuid.UUID) (*entity.Invoice, error) {
	var row model.Invoice

	err := r.db.WithContext(ctx).
		Where("id = ? AND salon_id = ?", invoiceID, salonID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get invoice",
			zap.String("invoice_id", invoiceID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	return modelToInvoice(&row), nil
}

// TransitionStatus moves an open invoice in a single conditional update
func (r *invoiceRepository) TransitionStatus(ctx context.Context, salonID, invoiceID uuid.UUID, status entity.InvoiceStatus, paidAt *time.Time, method string) (*entity.Invoice, error) {
	updates := map[string]interface{}{
		"status":     string(status),
		"updated_at": time.Now().UTC(),
	}
	if status == entity.InvoiceStatusPaid {
		if paidAt == nil {
			return nil, domainErrors.Validationf("paid transition requires paid_at")
		}
		updates["paid_at"] = paidAt.UTC()
		updates["payment_method"] = method
	}

	result := r.db.WithContext(ctx).
		Model(&model.Invoice{}).
		Where("id = ? AND salon_id = ? AND status IN ?", invoiceID, salonID, openInvoiceStatuses).
		Updates(updates)
	if result.Error != nil {
		r.logger.Error("Failed to update invoice status",
			zap.String("invoice_id", invoiceID.String()),
			zap.String("status", string(status)),
			zap.Error(result.Error))
		return nil, fmt.Errorf("failed to update invoice status: %w", result.Error)
	}

	current, err := r.GetByID(ctx, salonID, invoiceID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("invoice %s: %w", invoiceID, domainErrors.ErrNotFound)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("invoice %s is %s: %w", current.InvoiceNumber, current.Status, domainErrors.ErrInvalidTransition)
	}
	return current, nil
}

// List returns invoices in (issued_at, invoice_number) order
func (r *invoiceRepository) List(ctx context.Context, filter repository.InvoiceFilter) ([]*entity.Invoice, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&model.Invoice{}), filter).
		Order("issued_at ASC").
		Order("invoice_number ASC")

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var rows []model.Invoice
	if err := query.Find(&rows).Error; err != nil {
		r.logger.Error("Failed to list invoices", zap.Error(err))
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	invoices := make([]*entity.Invoice, len(rows))
	for i := range rows {
		invoices[i] = modelToInvoice(&rows[i])
	}
	return invoices, nil
}

func (r *invoiceRepository) Count(ctx context.Context, filter repository.InvoiceFilter) (int64, error) {
	var total int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&model.Invoice{}), filter).Count(&total).Error; err != nil {
		r.logger.Error("Failed to count invoices", zap.Error(err))
		return 0, fmt.Errorf("failed to count invoices: %w", err)
	}
	return total, nil
}

func (r *invoiceRepository) applyFilter(query *gorm.DB, filter repository.InvoiceFilter) *gorm.DB {
	if filter.SalonID != nil {
		query = query.Where("salon_id = ?", *filter.SalonID)
	}
	if filter.IssuedFrom != nil {
		query = query.Where("issued_at >= ?", filter.IssuedFrom.UTC())
	}
	if filter.IssuedTo != nil {
		query = query.Where("issued_at < ?", filter.IssuedTo.UTC())
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		query = query.Where("status IN ?", statuses)
	}
	if filter.PaidBefore != nil {
		query = query.Where("paid_at IS NOT NULL AND paid_at < ?", filter.PaidBefore.UTC())
	}
	return query
}

func invoiceToModel(e *entity.Invoice) *model.Invoice {
	m := &model.Invoice{
		ID:         e.ID,
		SalonID:    e.SalonID,
		ClientName: e.ClientName,
		IssuedAt:   e.IssuedAt.UTC(),
		Subtotal:   e.Subtotal,
		TaxRate:    e.TaxRate,
		TaxAmount:  e.TaxAmount,
		Total:      e.Total,
		Status:     string(e.Status),
		Notes:      e.Notes,
	}
	if e.PaidAt != nil {
		t := e.PaidAt.UTC()
		m.PaidAt = &t
	}
	if e.PaymentMethod != "" {
		method := e.PaymentMethod
		m.PaymentMethod = &method
	}
	return m
}

func modelToInvoice(m *model.Invoice) *entity.Invoice {
	e := &entity.Invoice{
		ID:            m.ID,
		SalonID:       m.SalonID,
		InvoiceNumber: m.InvoiceNumber,
		ClientName:    m.ClientName,
		IssuedAt:      m.IssuedAt.UTC(),
		Subtotal:      m.Subtotal,
		TaxRate:       m.TaxRate,
		TaxAmount:     m.TaxAmount,
		Total:         m.Total,
		Status:        entity.InvoiceStatus(m.Status),
		Notes:         m.Notes,
		CreatedAt:     m.CreatedAt.UTC(),
		UpdatedAt:     m.UpdatedAt.UTC(),
	}
	if m.PaidAt != nil {
		t := m.PaidAt.UTC()
		e.PaidAt = &t
	}
	if m.PaymentMethod != nil {
		e.PaymentMethod = *m.PaymentMethod
	}
	return e
}
