package stripe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	domainErrors "github.com/wekeepgrowing/salon-billing/internal/domain/errors"
	"github.com/wekeepgrowing/salon-billing/internal/domain/provider"
	"go.uber.org/zap"
)

// Options configures the Stripe API client
type Options struct {
	SecretKey        string
	Timeout          time.Duration
	FailureThreshold uint32
	OpenTimeout      time.Duration
	// BaseURL overrides the API endpoint
	BaseURL string
}

// StripeProvider implements provider.BillingProvider over the Stripe API.
// Every call is bounded by Options.Timeout and guarded by a circuit breaker.
type StripeProvider struct {
	api     *client.API
	breaker *gobreaker.CircuitBreaker[any]
	timeout time.Duration
	logger  *zap.Logger
}

var _ provider.BillingProvider = (*StripeProvider)(nil)

// NewStripeProvider creates a new Stripe provider
func NewStripeProvider(opts Options, logger *zap.Logger) *StripeProvider {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.FailureThreshold == 0 {
		opts.FailureThreshold = 5
	}

	backendConfig := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: opts.Timeout},
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     logger.Sugar(),
	}
	if opts.BaseURL != "" {
		backendConfig.URL = stripe.String(opts.BaseURL)
	}

	api := client.New(opts.SecretKey, &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, backendConfig),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, backendConfig),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, backendConfig),
	})

	threshold := opts.FailureThreshold
	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:    "stripe",
		Timeout: opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// a permanent rejection proves the provider is reachable
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, domainErrors.ErrValidation)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Provider circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &StripeProvider{
		api:     api,
		breaker: breaker,
		timeout: opts.Timeout,
		logger:  logger,
	}
}

// GetProviderName returns the provider name
func (s *StripeProvider) GetProviderName() string {
	return string(provider.ProviderTypeStripe)
}

// FetchSubscription retrieves the authoritative period bounds and price of a subscription
func (s *StripeProvider) FetchSubscription(ctx context.Context, subscriptionID string) (*provider.Subscription, error) {
	result, err := s.call(ctx, "fetch subscription", func(ctx context.Context) (any, error) {
		params := &stripe.SubscriptionParams{}
		params.Context = ctx
		return s.api.Subscriptions.Get(subscriptionID, params)
	})
	if err != nil {
		return nil, err
	}

	sub := result.(*stripe.Subscription)
	out := &provider.Subscription{
		ID:          sub.ID,
		PeriodStart: provider.FromUnixSeconds(sub.CurrentPeriodStart),
		PeriodEnd:   provider.FromUnixSeconds(sub.CurrentPeriodEnd),
	}
	if sub.Customer != nil {
		out.CustomerID = sub.Customer.ID
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		price := sub.Items.Data[0].Price
		out.PriceID = price.ID
		out.UnitAmount = decimal.New(price.UnitAmount, -2)
		out.Currency = string(price.Currency)
	}
	return out, nil
}

// CreateCheckoutSession creates a subscription-mode hosted checkout
func (s *StripeProvider) CreateCheckoutSession(ctx context.Context, req *provider.CheckoutRequest) (string, error) {
	result, err := s.call(ctx, "create checkout session", func(ctx context.Context) (any, error) {
		params := &stripe.CheckoutSessionParams{
			LineItems: []*stripe.CheckoutSessionLineItemParams{
				{
					Price:    stripe.String(req.PriceID),
					Quantity: stripe.Int64(1),
				},
			},
			Mode:          stripe.String(string(stripe.CheckoutSessionModeSubscription)),
			SuccessURL:    stripe.String(req.SuccessURL),
			CancelURL:     stripe.String(req.CancelURL),
			CustomerEmail: stripe.String(req.Email),
		}
		params.Context = ctx
		return s.api.CheckoutSessions.New(params)
	})
	if err != nil {
		return "", err
	}
	return result.(*stripe.CheckoutSession).URL, nil
}

// call runs fn under the timeout and the breaker and classifies its failure.
func (s *StripeProvider) call(ctx context.Context, op string, fn func(ctx context.Context) (any, error)) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.breaker.Execute(func() (any, error) {
		res, err := fn(ctx)
		if err != nil {
			return nil, classify(op, err)
		}
		return res, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = domainErrors.Provider(op, err)
		}
		s.logger.Warn("Stripe call failed",
			zap.String("operation", op),
			zap.Error(err))
		return nil, err
	}
	return result, nil
}

func classify(op string, err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.HTTPStatusCode == http.StatusNotFound || stripeErr.Code == stripe.ErrorCodeResourceMissing {
			return domainErrors.Validationf("%s: %s", op, stripeErr.Msg)
		}
		return domainErrors.Provider(op, fmt.Errorf("stripe status %d: %w", stripeErr.HTTPStatusCode, err))
	}
	return domainErrors.Provider(op, err)
}
