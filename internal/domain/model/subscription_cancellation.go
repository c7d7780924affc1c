package model

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionCancellation is append-only, one row per (subscription, canceled_at).
// A re-subscribing owner reuses the subscriptions row, so churn reads
// cancellations from here.
type SubscriptionCancellation struct {
	ID                   int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	SubscriptionID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cancellations_subscription" json:"subscription_id"`
	StripeSubscriptionID string    `gorm:"size:100;not null" json:"stripe_subscription_id"`
	OwnerID              uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	StripeCustomerID     string    `gorm:"size:100;not null" json:"stripe_customer_id"`
	CanceledAt           time.Time `gorm:"not null;uniqueIndex:idx_cancellations_subscription" json:"canceled_at"`
	CreatedAt            time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (SubscriptionCancellation) TableName() string {
	return "subscription_cancellations"
}
