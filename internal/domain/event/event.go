// Package event models verified payment provider events as a closed set of variants.
package event

import (
	"context"
	"time"
)

// Provider event type names.
const (
	TypeCheckoutCompleted   = "checkout.session.completed"
	TypePaymentSucceeded    = "invoice.payment_succeeded"
	TypeSubscriptionDeleted = "customer.subscription.deleted"
)

// Envelope is shared by every variant.
type Envelope struct {
	ID      string
	Type    string
	Created time.Time
}

// Event is implemented only by the variants of this package.
type Event interface {
	Meta() Envelope
	Accept(ctx context.Context, h Handler) error
	sealed()
}

// Handler has one method per variant. Adding a variant adds a method here,
// so every handler stops compiling until it handles the new case.
type Handler interface {
	HandleCheckoutCompleted(ctx context.Context, e CheckoutCompleted) error
	HandlePaymentSucceeded(ctx context.Context, e PaymentSucceeded) error
	HandleSubscriptionDeleted(ctx context.Context, e SubscriptionDeleted) error
	HandleIgnored(ctx context.Context, e Ignored) error
}

type CheckoutCompleted struct {
	Envelope
	CustomerID     string
	CustomerEmail  string
	SubscriptionID string
}

type PaymentSucceeded struct {
	Envelope
	CustomerID     string
	SubscriptionID string
	InvoiceID      string
}

type SubscriptionDeleted struct {
	Envelope
	CustomerID     string
	SubscriptionID string
}

// Ignored is an event type the reconciler does not process. It is acknowledged.
type Ignored struct {
	Envelope
}

func (e CheckoutCompleted) Meta() Envelope   { return e.Envelope }
func (e PaymentSucceeded) Meta() Envelope    { return e.Envelope }
func (e SubscriptionDeleted) Meta() Envelope { return e.Envelope }
func (e Ignored) Meta() Envelope             { return e.Envelope }

func (e CheckoutCompleted) Accept(ctx context.Context, h Handler) error {
	return h.HandleCheckoutCompleted(ctx, e)
}

func (e PaymentSucceeded) Accept(ctx context.Context, h Handler) error {
	return h.HandlePaymentSucceeded(ctx, e)
}

func (e SubscriptionDeleted) Accept(ctx context.Context, h Handler) error {
	return h.HandleSubscriptionDeleted(ctx, e)
}

func (e Ignored) Accept(ctx context.Context, h Handler) error {
	return h.HandleIgnored(ctx, e)
}

func (CheckoutCompleted) sealed()   {}
func (PaymentSucceeded) sealed()    {}
func (SubscriptionDeleted) sealed() {}
func (Ignored) sealed()             {}
