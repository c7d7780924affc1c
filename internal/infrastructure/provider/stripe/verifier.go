package stripe

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
	domainErrors "github.com/wekeepgrowing/salon-billing/internal/domain/errors"
	"github.com/wekeepgrowing/salon-billing/internal/domain/event"
	"github.com/wekeepgrowing/salon-billing/internal/domain/provider"
)

// DefaultTolerance is the accepted age of a signed webhook timestamp
const DefaultTolerance = 300 * time.Second

// Verifier checks Stripe-Signature headers and decodes verified bodies.
type Verifier struct {
	secret    string
	tolerance time.Duration
}

func NewVerifier(secret string, tolerance time.Duration) *Verifier {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Verifier{secret: secret, tolerance: tolerance}
}

var _ provider.EventVerifier = (*Verifier)(nil)

// Verify authenticates payload against the signature header and returns the typed event.
func (v *Verifier) Verify(payload []byte, signatureHeader string) (event.Event, error) {
	if signatureHeader == "" {
		return nil, domainErrors.ErrSignatureInvalid
	}
	if err := webhook.ValidatePayloadWithTolerance(payload, signatureHeader, v.secret, v.tolerance); err != nil {
		return nil, errors.Join(domainErrors.ErrSignatureInvalid, err)
	}

	var evt stripe.Event
	if err := json.Unmarshal(payload, &evt); err != nil {
		return nil, domainErrors.Validationf("webhook body: %v", err)
	}
	if evt.ID == "" || evt.Type == "" {
		return nil, domainErrors.Validationf("webhook body has no id or type")
	}

	env := event.Envelope{
		ID:      evt.ID,
		Type:    string(evt.Type),
		Created: provider.FromUnixSeconds(evt.Created),
	}

	switch env.Type {
	case event.TypeCheckoutCompleted:
		var session stripe.CheckoutSession
		if err := decodeObject(evt, &session); err != nil {
			return nil, err
		}
		out := event.CheckoutCompleted{
			Envelope:      env,
			CustomerEmail: session.CustomerEmail,
		}
		if out.CustomerEmail == "" && session.CustomerDetails != nil {
			out.CustomerEmail = session.CustomerDetails.Email
		}
		if session.Customer != nil {
			out.CustomerID = session.Customer.ID
		}
		if session.Subscription != nil {
			out.SubscriptionID = session.Subscription.ID
		}
		return out, nil

	case event.TypePaymentSucceeded:
		var invoice stripe.Invoice
		if err := decodeObject(evt, &invoice); err != nil {
			return nil, err
		}
		out := event.PaymentSucceeded{Envelope: env, InvoiceID: invoice.ID}
		if invoice.Customer != nil {
			out.CustomerID = invoice.Customer.ID
		}
		if invoice.Subscription != nil {
			out.SubscriptionID = invoice.Subscription.ID
		}
		return out, nil

	case event.TypeSubscriptionDeleted:
		var sub stripe.Subscription
		if err := decodeObject(evt, &sub); err != nil {
			return nil, err
		}
		out := event.SubscriptionDeleted{Envelope: env, SubscriptionID: sub.ID}
		if sub.Customer != nil {
			out.CustomerID = sub.Customer.ID
		}
		return out, nil

	default:
		return event.Ignored{Envelope: env}, nil
	}
}

func decodeObject(evt stripe.Event, dst interface{}) error {
	if evt.Data == nil || len(evt.Data.Raw) == 0 {
		return domainErrors.Validationf("%s: missing data.object", evt.Type)
	}
	if err := json.Unmarshal(evt.Data.Raw, dst); err != nil {
		return domainErrors.Validationf("%s: %v", evt.Type, err)
	}
	return nil
}
