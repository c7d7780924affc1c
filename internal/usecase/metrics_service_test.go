package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/salon-billing/internal/analytics"
	"github.com/wekeepgrowing/salon-billing/internal/domain/entity"
	"github.com/wekeepgrowing/salon-billing/internal/domain/repository"
	"github.com/wekeepgrowing/salon-billing/internal/usecase"
)

func TestMetricsService_Report(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	windowStart := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	windowEnd := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	subs := new(MockSubscriptionRepository)
	invoices := new(MockInvoiceRepository)
	users := new(MockUserRepository)

	subs.On("List", ctx, repository.SubscriptionFilter{CreatedBefore: &windowEnd}).Return([]*entity.Subscription{
		{
			OwnerID:            uuid.New(),
			Status:             entity.SubscriptionStatusActive,
			Plan:               entity.PlanYearly,
			Price:              decimal.RequireFromString("150.00"),
			CurrentPeriodStart: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
			CurrentPeriodEnd:   time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
			CreatedAt:          time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			OwnerID:            uuid.New(),
			Status:             entity.SubscriptionStatusActive,
			Plan:               entity.PlanMonthly,
			Price:              decimal.RequireFromString("15.00"),
			CurrentPeriodStart: time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC),
			CurrentPeriodEnd:   time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC),
			CreatedAt:          time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC),
		},
	}, nil)
	// the owner that canceled on Jan 5 has since subscribed again
	subs.On("ListCancellations", ctx, windowStart, windowEnd).Return([]*entity.Cancellation{
		{SubscriptionID: uuid.New(), CanceledAt: time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)},
	}, nil)
	invoices.On("List", ctx, repository.InvoiceFilter{Statuses: []entity.InvoiceStatus{entity.InvoiceStatusPaid}}).
		Return([]*entity.Invoice{}, nil)
	users.On("ListCreatedBefore", ctx, windowEnd).Return([]*entity.User{{ID: uuid.New()}, {ID: uuid.New()}}, nil)

	svc := usecase.NewMetricsService(subs, invoices, users, analytics.Options{Location: time.UTC}, zap.NewNop())
	report, err := svc.Report(ctx, analytics.PeriodMonth, now)

	require.NoError(t, err)
	assert.True(t, report.MRR.Equal(decimal.RequireFromString("27.5")), report.MRR.String())
	assert.Equal(t, 2, report.ActiveSubscriptions)
	assert.Equal(t, 1, report.NewSubscriptions)
	assert.Equal(t, 1, report.CancelledSubscriptions)
	assert.Equal(t, 2, report.ActiveUsers)
	assert.False(t, report.CACTracked)
	assert.Len(t, report.GrowthTrend, analytics.DefaultTrendMonths)
}

func TestMetricsService_LoadFailureReturnsNoReport(t *testing.T) {
	ctx := context.Background()
	subs := new(MockSubscriptionRepository)
	subs.On("List", ctx, mock.Anything).Return(nil, errors.New("connection reset"))

	svc := usecase.NewMetricsService(subs, new(MockInvoiceRepository), new(MockUserRepository), analytics.Options{}, zap.NewNop())
	report, err := svc.Report(ctx, analytics.PeriodMonth, time.Now())

	assert.Error(t, err)
	assert.Nil(t, report)
}

func TestMetricsService_AcquisitionCost(t *testing.T) {
	ctx := context.Background()
	subs := new(MockSubscriptionRepository)
	invoices := new(MockInvoiceRepository)
	users := new(MockUserRepository)
	subs.On("List", ctx, mock.Anything).Return([]*entity.Subscription{}, nil)
	subs.On("ListCancellations", ctx, mock.Anything, mock.Anything).Return([]*entity.Cancellation{}, nil)
	invoices.On("List", ctx, mock.Anything).Return([]*entity.Invoice{}, nil)
	users.On("ListCreatedBefore", ctx, mock.Anything).Return([]*entity.User{}, nil)

	svc := usecase.NewMetricsService(subs, invoices, users, analytics.Options{}, zap.NewNop())
	cost := decimal.NewFromInt(500)
	svc.SetAcquisitionCost(&cost)

	report, err := svc.Report(ctx, analytics.PeriodQuarter, time.Now())

	require.NoError(t, err)
	assert.True(t, report.CACTracked)
	assert.True(t, report.CAC.IsZero(), "no new subscriptions means zero CAC")
	assert.True(t, report.PaybackPeriodMonths.IsZero())
}
