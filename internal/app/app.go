package app

import (
	"context"
	"fmt"
	"time"

	"github.com/wekeepgrowing/salon-billing/internal/accounting"
	"github.com/wekeepgrowing/salon-billing/internal/analytics"
	"github.com/wekeepgrowing/salon-billing/internal/config"
	"github.com/wekeepgrowing/salon-billing/internal/domain/entity"
	"github.com/wekeepgrowing/salon-billing/internal/domain/provider"
	"github.com/wekeepgrowing/salon-billing/internal/infrastructure/audit"
	"github.com/wekeepgrowing/salon-billing/internal/infrastructure/database"
	"github.com/wekeepgrowing/salon-billing/internal/infrastructure/provider/stripe"
	"github.com/wekeepgrowing/salon-billing/internal/usecase"
	pkgErrors "github.com/wekeepgrowing/salon-billing/pkg/errors"
	"github.com/wekeepgrowing/salon-billing/pkg/messaging"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services is the container of every use case
type Services struct {
	Plans          *entity.PlanCatalog
	Location       *time.Location
	Reconciliation *usecase.ReconciliationService
	Subscriptions  *usecase.SubscriptionService
	Invoices       *usecase.InvoiceService
	Metrics        *usecase.MetricsService
	Export         *usecase.ExportService
}

// NewServices wires the use cases over repos and the provider ports.
func NewServices(
	cfg *config.Config,
	repos *database.Repositories,
	billing provider.BillingProvider,
	verifier provider.EventVerifier,
	auditor usecase.AuditRecorder,
	logger *zap.Logger,
) (*Services, error) {
	loc, err := cfg.Reporting.Location()
	if err != nil {
		return nil, err
	}
	cost, err := cfg.Reporting.AcquisitionCostValue()
	if err != nil {
		return nil, err
	}

	plans := entity.NewPlanCatalog(cfg.Service.Prices.Monthly, cfg.Service.Prices.Yearly)

	metrics := usecase.NewMetricsService(
		repos.Subscription,
		repos.Invoice,
		repos.User,
		AnalyticsOptions(cfg, loc),
		logger,
	)
	metrics.SetAcquisitionCost(cost)

	return &Services{
		Plans:    plans,
		Location: loc,
		Reconciliation: usecase.NewReconciliationService(
			verifier,
			billing,
			plans,
			repos.User,
			repos.Subscription,
			repos.WebhookEvent,
			auditor,
			logger,
		),
		Subscriptions: usecase.NewSubscriptionService(
			repos.Subscription,
			billing,
			plans,
			cfg.Service.ClientURL,
			logger,
		),
		Invoices: usecase.NewInvoiceService(repos.Invoice, repos.Salon, auditor, loc, logger),
		Metrics:  metrics,
		Export:   usecase.NewExportService(repos.Invoice, repos.Salon, AccountingOptions(cfg, loc), logger),
	}, nil
}

func AnalyticsOptions(cfg *config.Config, loc *time.Location) analytics.Options {
	return analytics.Options{Location: loc, TrendMonths: cfg.Reporting.TrendMonths}
}

func AccountingOptions(cfg *config.Config, loc *time.Location) accounting.Options {
	a := cfg.Accounting
	return accounting.Options{
		Accounts: accounting.Accounts{
			JournalCode:       a.JournalCode,
			JournalLabel:      a.JournalLabel,
			ReceivableAccount: a.ReceivableAccount,
			ReceivableLabel:   a.ReceivableLabel,
			RevenueAccount:    a.RevenueAccount,
			RevenueLabel:      a.RevenueLabel,
			TaxAccount:        a.TaxAccount,
			TaxLabel:          a.TaxLabel,
		},
		Location: loc,
	}
}

// App owns the process-wide resources.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	DB       *gorm.DB
	Redis    messaging.RedisClient
	Repos    *database.Repositories
	Audit    *audit.Publisher
	Services *Services
}

// New connects the database and redis and builds the services. Redis is
// optional: without it audit records go to the log.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	return assemble(cfg, logger, db, connectRedis(cfg, logger))
}

func connectRedis(cfg *config.Config, logger *zap.Logger) messaging.RedisClient {
	if cfg.Redis.Addr == "" {
		logger.Warn("Redis address not configured, audit records will be logged only")
		return nil
	}
	client, err := messaging.NewRedisClient(cfg.Redis)
	if err != nil {
		logger.Warn("Redis unavailable, audit records will be logged only",
			zap.String("addr", cfg.Redis.Addr),
			zap.Error(err))
		return nil
	}
	return client
}

func assemble(cfg *config.Config, logger *zap.Logger, db *gorm.DB, redis messaging.RedisClient) (*App, error) {
	repos := database.NewRepositories(db, logger)

	billing := stripe.NewStripeProvider(stripe.Options{
		SecretKey:        cfg.Service.StripeSecretKey,
		Timeout:          cfg.Provider.Timeout,
		FailureThreshold: cfg.Provider.FailureThreshold,
		OpenTimeout:      cfg.Provider.OpenTimeout,
		BaseURL:          cfg.Provider.BaseURL,
	}, logger)
	verifier := stripe.NewVerifier(cfg.Service.StripeWebhookSecret, stripe.DefaultTolerance)

	publisher := audit.NewPublisher(redis, logger, audit.Options{
		Channel:        cfg.Audit.Channel,
		BufferSize:     cfg.Audit.BufferSize,
		PublishTimeout: cfg.Audit.PublishTimeout,
	})

	services, err := NewServices(cfg, repos, billing, verifier, publisher, logger)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:   cfg,
		Logger:   logger,
		DB:       db,
		Redis:    redis,
		Repos:    repos,
		Audit:    publisher,
		Services: services,
	}, nil
}

// Close drains the audit queue, then releases redis and the database.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if err := a.Audit.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("audit publisher: %w", err))
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	if err := database.Close(a.DB, a.Logger); err != nil {
		errs = append(errs, err)
	}
	return pkgErrors.Join(errs...)
}
