package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
)

// Cancellation is one entry of the cancellation history. It survives the
// owner subscribing again.
type Cancellation struct {
	SubscriptionID       uuid.UUID
	OwnerID              uuid.UUID
	StripeSubscriptionID string
	CanceledAt           time.Time
}

// Subscription is the single billing subscription of an account owner.
// Period bounds always come from the payment provider.
type Subscription struct {
	ID                   uuid.UUID          `json:"id"`
	OwnerID              uuid.UUID          `json:"owner_id"`
	StripeCustomerID     string             `json:"stripe_customer_id"`
	StripeSubscriptionID string             `json:"stripe_subscription_id"`
	Status               SubscriptionStatus `json:"status"`
	Plan                 PlanTag            `json:"plan"`
	Price                decimal.Decimal    `json:"price"`
	CurrentPeriodStart   time.Time          `json:"current_period_start"`
	CurrentPeriodEnd     time.Time          `json:"current_period_end"`
	CanceledAt           *time.Time         `json:"canceled_at,omitempty"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
}

// IsEntitled reports whether the subscription grants access at now.
func (s *Subscription) IsEntitled(now time.Time) bool {
	return s != nil && s.Status == SubscriptionStatusActive && now.Before(s.CurrentPeriodEnd)
}

// MonthlyRevenue is the MRR contribution of the subscription's price.
func (s *Subscription) MonthlyRevenue() decimal.Decimal {
	switch s.Plan {
	case PlanYearly:
		return s.Price.Div(decimal.NewFromInt(12))
	case PlanMonthly:
		return s.Price
	default:
		return decimal.Zero
	}
}

// SubscriptionUpsert carries everything a checkout completion writes.
type SubscriptionUpsert struct {
	OwnerID              uuid.UUID
	StripeCustomerID     string
	StripeSubscriptionID string
	Plan                 PlanTag
	Price                decimal.Decimal
	CurrentPeriodStart   time.Time
	CurrentPeriodEnd     time.Time
}
