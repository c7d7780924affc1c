package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wekeepgrowing/salon-billing/internal/analytics"
	"github.com/wekeepgrowing/salon-billing/internal/domain/entity"
	"github.com/wekeepgrowing/salon-billing/internal/domain/repository"
	"go.uber.org/zap"
)

// MetricsService loads snapshots from storage and runs the analytics engine
type MetricsService struct {
	subscriptions   repository.SubscriptionRepository
	invoices        repository.InvoiceRepository
	users           repository.UserRepository
	opts            analytics.Options
	acquisitionCost *decimal.Decimal
	logger          *zap.Logger
}

// SetAcquisitionCost enables CAC tracking. nil keeps it untracked.
func (s *MetricsService) SetAcquisitionCost(cost *decimal.Decimal) {
	s.acquisitionCost = cost
}

func NewMetricsService(
	subscriptions repository.SubscriptionRepository,
	invoices repository.InvoiceRepository,
	users repository.UserRepository,
	opts analytics.Options,
	logger *zap.Logger,
) *MetricsService {
	return &MetricsService{
		subscriptions: subscriptions,
		invoices:      invoices,
		users:         users,
		opts:          opts,
		logger:        logger,
	}
}

// Report computes every metric of the period containing now. On any load
// failure no partial report is returned.
func (s *MetricsService) Report(ctx context.Context, period analytics.Period, now time.Time) (*analytics.Report, error) {
	loc := s.opts.Location
	if loc == nil {
		loc = time.UTC
	}
	window := analytics.WindowFor(period, now, loc)

	snapshot, err := s.snapshot(ctx, window)
	if err != nil {
		s.logger.Error("Failed to load metrics snapshot",
			zap.String("period", string(period)),
			zap.Time("window_start", window.Start),
			zap.Error(err))
		return nil, err
	}

	report := analytics.Compute(*snapshot, window, now, s.opts)
	return &report, nil
}

func (s *MetricsService) snapshot(ctx context.Context, w analytics.Window) (*analytics.Snapshot, error) {
	end := w.End

	subs, err := s.subscriptions.List(ctx, repository.SubscriptionFilter{CreatedBefore: &end})
	if err != nil {
		return nil, fmt.Errorf("failed to load subscriptions: %w", err)
	}
	cancellations, err := s.subscriptions.ListCancellations(ctx, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("failed to load cancellations: %w", err)
	}
	invoices, err := s.invoices.List(ctx, repository.InvoiceFilter{
		Statuses: []entity.InvoiceStatus{entity.InvoiceStatusPaid},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load invoices: %w", err)
	}
	users, err := s.users.ListCreatedBefore(ctx, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	return &analytics.Snapshot{
		Subscriptions:   subs,
		Cancellations:   cancellations,
		Invoices:        invoices,
		Users:           users,
		AcquisitionCost: s.acquisitionCost,
	}, nil
}
