package usecase_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/salon-billing/internal/accounting"
	"github.com/wekeepgrowing/salon-billing/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/salon-billing/internal/domain/errors"
	"github.com/wekeepgrowing/salon-billing/internal/domain/repository"
	"github.com/wekeepgrowing/salon-billing/internal/usecase"
)

func TestExportService_Export(t *testing.T) {
	ctx := context.Background()
	salonID := uuid.New()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	paidAt := time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC)

	salons := new(MockSalonRepository)
	salons.On("GetByID", ctx, salonID).Return(&entity.Salon{ID: salonID, Name: "Le Chien Élégant"}, nil)

	invoices := new(MockInvoiceRepository)
	invoices.On("List", ctx, mock.MatchedBy(func(f repository.InvoiceFilter) bool {
		return *f.SalonID == salonID &&
			f.IssuedFrom.Equal(start) &&
			f.IssuedTo.Equal(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)) &&
			len(f.Statuses) == 1 && f.Statuses[0] == entity.InvoiceStatusPaid
	})).Return([]*entity.Invoice{{
		InvoiceNumber: "INV-2025-0001",
		ClientName:    "Marie",
		IssuedAt:      time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		Subtotal:      decimal.RequireFromString("100"),
		TaxRate:       decimal.RequireFromString("20"),
		TaxAmount:     decimal.RequireFromString("20"),
		Total:         decimal.RequireFromString("120"),
		Status:        entity.InvoiceStatusPaid,
		PaidAt:        &paidAt,
	}}, nil)

	svc := usecase.NewExportService(invoices, salons, accounting.Options{}, zap.NewNop())
	file, err := svc.Export(ctx, salonID, usecase.ExportRequest{Start: start, End: end, Format: accounting.FormatFEC, OnlyPaid: true})

	require.NoError(t, err)
	assert.Equal(t, "le-chien-elegant_FEC_20250101_20250131.txt", file.Filename)
	assert.Equal(t, "text/plain; charset=utf-8", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Body, []byte{0xEF, 0xBB, 0xBF}))
	assert.Contains(t, string(file.Body), "INV-2025-0001")
	invoices.AssertExpectations(t)
}

func TestExportService_UnbalancedLedgerEmitsNothing(t *testing.T) {
	ctx := context.Background()
	salonID := uuid.New()
	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	salons := new(MockSalonRepository)
	salons.On("GetByID", ctx, salonID).Return(&entity.Salon{ID: salonID, Name: "Salon"}, nil)
	invoices := new(MockInvoiceRepository)
	invoices.On("List", ctx, mock.Anything).Return([]*entity.Invoice{{
		InvoiceNumber: "INV-2025-0001",
		IssuedAt:      day,
		Subtotal:      decimal.RequireFromString("100"),
		TaxAmount:     decimal.RequireFromString("20"),
		Total:         decimal.RequireFromString("99"),
		Status:        entity.InvoiceStatusPaid,
	}}, nil)

	svc := usecase.NewExportService(invoices, salons, accounting.Options{}, zap.NewNop())
	file, err := svc.Export(ctx, salonID, usecase.ExportRequest{Start: day, End: day, Format: accounting.FormatFEC})

	assert.ErrorIs(t, err, domainErrors.ErrLedgerUnbalanced)
	assert.Nil(t, file)
}

func TestExportService_Validation(t *testing.T) {
	ctx := context.Background()
	salonID := uuid.New()
	svc := usecase.NewExportService(new(MockInvoiceRepository), new(MockSalonRepository), accounting.Options{}, zap.NewNop())

	_, err := svc.Export(ctx, salonID, usecase.ExportRequest{
		Start: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, domainErrors.ErrValidation)

	_, err = usecase.ParseExportDate("2025-13-01", time.UTC)
	assert.ErrorIs(t, err, domainErrors.ErrValidation)

	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)
	d, err := usecase.ParseExportDate("2025-01-31", paris)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 30, 23, 0, 0, 0, time.UTC), d.UTC())
}
