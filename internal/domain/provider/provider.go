package provider

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wekeepgrowing/salon-billing/internal/domain/event"
)

// BillingProvider is the synchronous side of the payment provider.
type BillingProvider interface {
	// FetchSubscription returns the authoritative subscription details.
	// Transport failures are ErrExternalProvider; unknown ids are ErrValidation.
	FetchSubscription(ctx context.Context, subscriptionID string) (*Subscription, error)

	// CreateCheckoutSession returns the opaque redirect URL of a hosted checkout
	CreateCheckoutSession(ctx context.Context, req *CheckoutRequest) (string, error)

	// GetProviderName returns the provider name
	GetProviderName() string
}

// EventVerifier authenticates a webhook body and decodes it into an event.
type EventVerifier interface {
	Verify(payload []byte, signatureHeader string) (event.Event, error)
}

// Subscription is the provider's view of a subscription
type Subscription struct {
	ID          string          `json:"id"`
	CustomerID  string          `json:"customer_id"`
	PriceID     string          `json:"price_id"`
	UnitAmount  decimal.Decimal `json:"unit_amount"`
	Currency    string          `json:"currency"`
	PeriodStart time.Time       `json:"period_start"`
	PeriodEnd   time.Time       `json:"period_end"`
}

type CheckoutRequest struct {
	PriceID    string `json:"price_id"`
	Email      string `json:"email"`
	SuccessURL string `json:"success_url"`
	CancelURL  string `json:"cancel_url"`
}

// ProviderType represents the type of payment provider
type ProviderType string

const (
	ProviderTypeStripe ProviderType = "stripe"
)

// FromUnixSeconds converts provider epoch seconds by exact multiplication.
func FromUnixSeconds(sec int64) time.Time {
	return time.UnixMilli(sec * 1000).UTC()
}
