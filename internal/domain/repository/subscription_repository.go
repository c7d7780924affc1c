package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wekeepgrowing/salon-billing/internal/domain/entity"
)

// SubscriptionFilter selects subscriptions. Zero-valued fields do not filter.
type SubscriptionFilter struct {
	// OwnerID restricts to one account owner
	OwnerID *uuid.UUID
	// Statuses keeps rows whose status is one of the values
	Statuses []entity.SubscriptionStatus
	// Plans keeps rows whose plan is one of the values
	Plans []entity.PlanTag
	// CreatedBefore keeps rows created strictly before the instant
	CreatedBefore *time.Time
}

type SubscriptionRepository interface {
	// UpsertByOwner writes the subscription keyed by owner in a single statement
	// and returns the stored row.
	UpsertByOwner(ctx context.Context, in entity.SubscriptionUpsert) (*entity.Subscription, error)
	// UpdatePeriodByCustomerID overwrites period bounds only. It returns
	// ErrReferencedEntityMissing when no row matches.
	UpdatePeriodByCustomerID(ctx context.Context, customerID string, start, end time.Time) (*entity.Subscription, error)
	// MarkCanceledByCustomerID flips status to canceled and appends to the
	// cancellation history. It returns ErrReferencedEntityMissing when no row
	// matches.
	MarkCanceledByCustomerID(ctx context.Context, customerID string, at time.Time) (*entity.Subscription, error)
	// ListCancellations returns history entries with CanceledAt in [from, to).
	ListCancellations(ctx context.Context, from, to time.Time) ([]*entity.Cancellation, error)
	GetByOwnerID(ctx context.Context, ownerID uuid.UUID) (*entity.Subscription, error)
	GetByCustomerID(ctx context.Context, customerID string) (*entity.Subscription, error)
	List(ctx context.Context, filter SubscriptionFilter) ([]*entity.Subscription, error)
}
