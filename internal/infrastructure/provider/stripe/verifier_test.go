package stripe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79/webhook"
	domainErrors "github.com/wekeepgrowing/salon-billing/internal/domain/errors"
	"github.com/wekeepgrowing/salon-billing/internal/domain/event"
)

const testSecret = "whsec_test_secret"

func sign(t *testing.T, payload string, secret string, at time.Time) string {
	t.Helper()
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    secret,
		Timestamp: at,
	})
	return signed.Header
}

func TestVerifier_Verify(t *testing.T) {
	v := NewVerifier(testSecret, 0)
	now := time.Now()

	t.Run("checkout completed", func(t *testing.T) {
		body := `{"id":"evt_1","type":"checkout.session.completed","created":1704844800,
			"data":{"object":{"id":"cs_1","object":"checkout.session","customer":"cus_1",
			"customer_email":"owner@salon.test","subscription":"sub_1"}}}`

		evt, err := v.Verify([]byte(body), sign(t, body, testSecret, now))
		require.NoError(t, err)

		cc, ok := evt.(event.CheckoutCompleted)
		require.True(t, ok)
		assert.Equal(t, "evt_1", cc.ID)
		assert.Equal(t, "cus_1", cc.CustomerID)
		assert.Equal(t, "owner@salon.test", cc.CustomerEmail)
		assert.Equal(t, "sub_1", cc.SubscriptionID)
		assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), cc.Created)
	})

	t.Run("checkout email from customer details", func(t *testing.T) {
		body := `{"id":"evt_2","type":"checkout.session.completed","created":1704844800,
			"data":{"object":{"id":"cs_2","customer":"cus_2","customer_details":{"email":"x@salon.test"},"subscription":"sub_2"}}}`

		evt, err := v.Verify([]byte(body), sign(t, body, testSecret, now))
		require.NoError(t, err)
		assert.Equal(t, "x@salon.test", evt.(event.CheckoutCompleted).CustomerEmail)
	})

	t.Run("payment succeeded", func(t *testing.T) {
		body := `{"id":"evt_3","type":"invoice.payment_succeeded","created":1736467200,
			"data":{"object":{"id":"in_1","object":"invoice","customer":"cus_1","subscription":"sub_1"}}}`

		evt, err := v.Verify([]byte(body), sign(t, body, testSecret, now))
		require.NoError(t, err)
		ps := evt.(event.PaymentSucceeded)
		assert.Equal(t, "in_1", ps.InvoiceID)
		assert.Equal(t, "cus_1", ps.CustomerID)
		assert.Equal(t, "sub_1", ps.SubscriptionID)
	})

	t.Run("subscription deleted", func(t *testing.T) {
		body := `{"id":"evt_4","type":"customer.subscription.deleted","created":1736467200,
			"data":{"object":{"id":"sub_1","object":"subscription","customer":"cus_1"}}}`

		evt, err := v.Verify([]byte(body), sign(t, body, testSecret, now))
		require.NoError(t, err)
		sd := evt.(event.SubscriptionDeleted)
		assert.Equal(t, "cus_1", sd.CustomerID)
		assert.Equal(t, "sub_1", sd.SubscriptionID)
	})

	t.Run("unrecognized type is ignored", func(t *testing.T) {
		body := `{"id":"evt_5","type":"customer.created","created":1736467200,"data":{"object":{"id":"cus_9"}}}`

		evt, err := v.Verify([]byte(body), sign(t, body, testSecret, now))
		require.NoError(t, err)
		_, ok := evt.(event.Ignored)
		assert.True(t, ok)
		assert.Equal(t, "customer.created", evt.Meta().Type)
	})

	t.Run("missing header", func(t *testing.T) {
		_, err := v.Verify([]byte(`{}`), "")
		assert.ErrorIs(t, err, domainErrors.ErrSignatureInvalid)
	})

	t.Run("wrong secret", func(t *testing.T) {
		body := `{"id":"evt_6","type":"customer.created","data":{"object":{}}}`
		_, err := v.Verify([]byte(body), sign(t, body, "whsec_other", now))
		assert.ErrorIs(t, err, domainErrors.ErrSignatureInvalid)
	})

	t.Run("tampered body", func(t *testing.T) {
		body := `{"id":"evt_7","type":"customer.created","data":{"object":{}}}`
		header := sign(t, body, testSecret, now)
		_, err := v.Verify([]byte(`{"id":"evt_7","type":"customer.deleted","data":{"object":{}}}`), header)
		assert.ErrorIs(t, err, domainErrors.ErrSignatureInvalid)
	})

	t.Run("stale timestamp", func(t *testing.T) {
		body := `{"id":"evt_8","type":"customer.created","data":{"object":{}}}`
		_, err := v.Verify([]byte(body), sign(t, body, testSecret, now.Add(-time.Hour)))
		assert.ErrorIs(t, err, domainErrors.ErrSignatureInvalid)
	})

	t.Run("signed garbage is a validation error", func(t *testing.T) {
		body := `not json`
		_, err := v.Verify([]byte(body), sign(t, body, testSecret, now))
		assert.ErrorIs(t, err, domainErrors.ErrValidation)
		assert.NotErrorIs(t, err, domainErrors.ErrSignatureInvalid)
	})

	t.Run("object of the wrong shape", func(t *testing.T) {
		body := `{"id":"evt_9","type":"invoice.payment_succeeded","data":{"object":{"id":42}}}`
		_, err := v.Verify([]byte(body), sign(t, body, testSecret, now))
		assert.ErrorIs(t, err, domainErrors.ErrValidation)
	})
}
