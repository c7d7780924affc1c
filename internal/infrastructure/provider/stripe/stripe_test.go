package stripe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainErrors "github.com/wekeepgrowing/salon-billing/internal/domain/errors"
	"github.com/wekeepgrowing/salon-billing/internal/domain/provider"
	"go.uber.org/zap"
)

const subscriptionJSON = `{
  "id": "sub_1",
  "object": "subscription",
  "customer": "cus_1",
  "current_period_start": 1736467200,
  "current_period_end": 1768003200,
  "items": {"object": "list", "data": [
    {"id": "si_1", "object": "subscription_item",
     "price": {"id": "price_yearly", "object": "price", "unit_amount": 15000, "currency": "eur"}}
  ]}
}`

func newTestProvider(t *testing.T, handler http.HandlerFunc, opts Options) *StripeProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts.SecretKey = "sk_test_123"
	opts.BaseURL = server.URL
	return NewStripeProvider(opts, zap.NewNop())
}

func TestFetchSubscription(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/subscriptions/sub_1", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(subscriptionJSON))
	}, Options{Timeout: time.Second})

	sub, err := p.FetchSubscription(context.Background(), "sub_1")
	require.NoError(t, err)

	assert.Equal(t, "sub_1", sub.ID)
	assert.Equal(t, "cus_1", sub.CustomerID)
	assert.Equal(t, "price_yearly", sub.PriceID)
	assert.True(t, sub.UnitAmount.Equal(decimal.RequireFromString("150.00")))
	assert.Equal(t, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), sub.PeriodStart)
	assert.Equal(t, time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), sub.PeriodEnd)
	assert.Equal(t, int64(1768003200000), sub.PeriodEnd.UnixMilli())
}

func TestFetchSubscription_NotFoundIsPermanent(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","code":"resource_missing","message":"No such subscription: 'sub_x'"}}`))
	}, Options{Timeout: time.Second})

	_, err := p.FetchSubscription(context.Background(), "sub_x")
	assert.ErrorIs(t, err, domainErrors.ErrValidation)
	assert.Equal(t, domainErrors.ClassPermanent, domainErrors.Classify(err))
}

func TestFetchSubscription_ServerErrorIsTransient(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"type":"api_error","message":"boom"}}`))
	}, Options{Timeout: time.Second})

	_, err := p.FetchSubscription(context.Background(), "sub_1")
	assert.ErrorIs(t, err, domainErrors.ErrExternalProvider)
	assert.Equal(t, domainErrors.ClassTransient, domainErrors.Classify(err))
}

func TestFetchSubscription_TimeoutFailsClosed(t *testing.T) {
	release := make(chan struct{})
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, Options{Timeout: 50 * time.Millisecond})
	defer close(release)

	start := time.Now()
	_, err := p.FetchSubscription(context.Background(), "sub_1")
	assert.ErrorIs(t, err, domainErrors.ErrExternalProvider)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestFetchSubscription_BreakerOpens(t *testing.T) {
	var hits int32
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"type":"api_error","message":"unavailable"}}`))
	}, Options{Timeout: time.Second, FailureThreshold: 2, OpenTimeout: time.Minute})

	for i := 0; i < 2; i++ {
		_, err := p.FetchSubscription(context.Background(), "sub_1")
		require.ErrorIs(t, err, domainErrors.ErrExternalProvider)
	}

	_, err := p.FetchSubscription(context.Background(), "sub_1")
	assert.ErrorIs(t, err, domainErrors.ErrExternalProvider)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits), "open breaker must not reach the provider")
}

func TestCreateCheckoutSession(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "subscription", r.PostForm.Get("mode"))
		assert.Equal(t, "price_monthly", r.PostForm.Get("line_items[0][price]"))
		assert.Equal(t, "owner@salon.test", r.PostForm.Get("customer_email"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_1","object":"checkout.session","url":"https://checkout.stripe.test/c/cs_1"}`))
	}, Options{Timeout: time.Second})

	url, err := p.CreateCheckoutSession(context.Background(), &providerCheckout)
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.test/c/cs_1", url)
	assert.Equal(t, "stripe", p.GetProviderName())
}

var providerCheckout = provider.CheckoutRequest{
	PriceID:    "price_monthly",
	Email:      "owner@salon.test",
	SuccessURL: "https://app.salon.test/billing/success",
	CancelURL:  "https://app.salon.test/billing/cancel",
}
