package app

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79/webhook"
	"github.com/wekeepgrowing/salon-billing/internal/accounting"
	"github.com/wekeepgrowing/salon-billing/internal/config"
	"github.com/wekeepgrowing/salon-billing/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/salon-billing/internal/domain/errors"
	"github.com/wekeepgrowing/salon-billing/internal/infrastructure/database"
	"github.com/wekeepgrowing/salon-billing/internal/usecase"
	"go.uber.org/zap"
)

const webhookSecret = "whsec_app_test"

func newTestApp(t *testing.T) *App {
	t.Helper()

	cfg := config.Default()
	cfg.Service.StripeWebhookSecret = webhookSecret
	cfg.Service.Prices = config.PriceConfig{Monthly: "price_m", Yearly: "price_y"}
	cfg.Database.MaxOpenConns = 1
	require.NoError(t, cfg.Validate())

	db, err := database.Open(sqlite.Open(":memory:"), &cfg.Database, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, zap.NewNop()))

	a, err := assemble(cfg, zap.NewNop(), db, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		assert.NoError(t, a.Close(ctx))
	})
	return a
}

func signed(payload string) (body []byte, header string) {
	s := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    webhookSecret,
		Timestamp: time.Now(),
	})
	return s.Payload, s.Header
}

func TestWebhookPipeline(t *testing.T) {
	a := newTestApp(t)
	reconciler := a.Services.Reconciliation
	ctx := context.Background()

	t.Run("ignored event is acknowledged", func(t *testing.T) {
		body, header := signed(`{"id":"evt_ignored","object":"event","type":"invoice.created","created":1735689600,"data":{"object":{}}}`)
		result, err := reconciler.ProcessWebhook(ctx, body, header, "req-1")
		require.NoError(t, err)
		assert.Equal(t, "invoice.created", result.EventType)
	})

	t.Run("tampered body is rejected", func(t *testing.T) {
		_, header := signed(`{"id":"evt_x","object":"event","type":"invoice.created","data":{"object":{}}}`)
		_, err := reconciler.ProcessWebhook(ctx, []byte(`{"id":"evt_y"}`), header, "req-2")
		assert.ErrorIs(t, err, domainErrors.ErrSignatureInvalid)
		assert.Equal(t, domainErrors.ClassPermanent, domainErrors.Classify(err))
	})

	t.Run("unknown account is permanent and recorded once", func(t *testing.T) {
		body, header := signed(`{"id":"evt_checkout","object":"event","type":"checkout.session.completed","created":1735689600,
			"data":{"object":{"id":"cs_1","object":"checkout.session","customer_email":"nobody@salon.test","customer":"cus_1","subscription":"sub_1"}}}`)

		_, err := reconciler.ProcessWebhook(ctx, body, header, "req-3")
		assert.ErrorIs(t, err, domainErrors.ErrValidation)

		result, err := reconciler.ProcessWebhook(ctx, body, header, "req-4")
		require.NoError(t, err)
		assert.True(t, result.Duplicate)
	})
}

func TestInvoiceToExport(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	salon := &entity.Salon{OwnerID: uuid.New(), Name: "Le Chien Élégant", CreatedAt: time.Now()}
	require.NoError(t, a.Repos.Salon.Create(ctx, salon))

	inv, err := a.Services.Invoices.CreateInvoice(ctx, salon.ID, entity.InvoiceDraft{
		ClientName: "Marie",
		IssuedAt:   time.Date(2025, 2, 10, 9, 0, 0, 0, time.UTC),
		Subtotal:   decimal.RequireFromString("41.25"),
		TaxRate:    decimal.NewFromInt(20),
		Status:     entity.InvoiceStatusSent,
	})
	require.NoError(t, err)
	assert.True(t, inv.Total.Equal(decimal.RequireFromString("49.50")))

	paidAt := time.Date(2025, 2, 12, 9, 0, 0, 0, time.UTC)
	_, err = a.Services.Invoices.MarkPaid(ctx, salon.ID, inv.ID, "card", &paidAt)
	require.NoError(t, err)

	file, err := a.Services.Export.Export(ctx, salon.ID, usecase.ExportRequest{
		Start:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		End:    time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		Format: accounting.FormatFEC,
	})
	require.NoError(t, err)
	assert.Equal(t, "le-chien-elegant_FEC_20250101_20250331.txt", file.Filename)
	assert.Contains(t, string(file.Body), inv.InvoiceNumber)
}

func TestNewServicesRejectsBadReporting(t *testing.T) {
	cfg := config.Default()
	cfg.Reporting.Timezone = "Nowhere/Land"
	_, err := NewServices(cfg, &database.Repositories{}, nil, nil, nil, zap.NewNop())
	assert.Error(t, err)

	cfg = config.Default()
	cfg.Reporting.AcquisitionCost = "lots"
	_, err = NewServices(cfg, &database.Repositories{}, nil, nil, nil, zap.NewNop())
	assert.Error(t, err)
}

func TestAccountingOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Accounting.JournalCode = "VT"
	opts := AccountingOptions(cfg, time.UTC)
	assert.Equal(t, "VT", opts.Accounts.JournalCode)
	assert.Equal(t, "706000", opts.Accounts.RevenueAccount)
	assert.Equal(t, time.UTC, opts.Location)
}
