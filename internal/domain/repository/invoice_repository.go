package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wekeepgrowing/salon-billing/internal/domain/entity"
)

// InvoiceFilter selects invoices. SalonID nil means every salon.
type InvoiceFilter struct {
	SalonID *uuid.UUID
	// IssuedFrom is inclusive
	IssuedFrom *time.Time
	// IssuedTo is exclusive
	IssuedTo *time.Time
	Statuses []entity.InvoiceStatus
	// PaidBefore keeps paid invoices whose paid_at is strictly before the instant
	PaidBefore *time.Time
	Limit      int
	Offset     int
}

type InvoiceRepository interface {
	// CreateNumbered allocates the next number for (salon, year of issuedAt)
	// and inserts the invoice in the same transaction.
	CreateNumbered(ctx context.Context, invoice *entity.Invoice) (*entity.Invoice, error)
	GetByID(ctx context.Context, salonID, invoiceID uuid.UUID) (*entity.Invoice, error)
	// TransitionStatus moves an open invoice to status. It returns
	// ErrInvalidTransition when the current status is not open.
	TransitionStatus(ctx context.Context, salonID, invoiceID uuid.UUID, status entity.InvoiceStatus, paidAt *time.Time, method string) (*entity.Invoice, error)
	List(ctx context.Context, filter InvoiceFilter) ([]*entity.Invoice, error)
	Count(ctx context.Context, filter InvoiceFilter) (int64, error)
}
