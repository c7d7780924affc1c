package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	handlers "github.com/wekeepgrowing/salon-billing/internal/adapter/handler/http"
	"github.com/wekeepgrowing/salon-billing/internal/app"
	"github.com/wekeepgrowing/salon-billing/internal/config"
	"github.com/wekeepgrowing/salon-billing/internal/middleware/auth"
	"github.com/wekeepgrowing/salon-billing/pkg/logger"
	"go.uber.org/zap"
)

// WebhookPath receives provider events. It is unauthenticated; the
// signature header is the credential.
const WebhookPath = "/webhook"

type Server struct {
	config     *config.Config
	logger     *zap.Logger
	echo       *echo.Echo
	services   *app.Services
	auditStats handlers.AuditStatsSource
}

func NewServer(cfg *config.Config, log *zap.Logger, services *app.Services, auditStats handlers.AuditStatsSource) *Server {
	e := echo.New()
	logger.WithEchoLogger(e, log)
	e.Validator = handlers.NewRequestValidator()

	e.Use(middleware.RequestID())
	e.Use(logger.NewEchoRequestLogger(log))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.Service.ClientURL},
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType},
		ExposeHeaders: []string{
			echo.HeaderContentDisposition,
			echo.HeaderXRequestID,
		},
	}))

	s := &Server{
		config:     cfg,
		logger:     log,
		echo:       e,
		services:   services,
		auditStats: auditStats,
	}
	s.setupRoutes()
	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.HTTP.Host, s.config.Server.HTTP.Port)
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the router, for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) setupRoutes() {
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": s.config.Service.Name,
		})
	})

	webhookHandler := handlers.NewWebhookHandler(s.services.Reconciliation, s.logger)
	checkoutHandler := handlers.NewCheckoutHandler(s.services.Subscriptions, s.services.Plans, s.logger)
	subscriptionHandler := handlers.NewSubscriptionHandler(s.services.Subscriptions, s.logger)
	invoiceHandler := handlers.NewInvoiceHandler(s.services.Invoices, s.logger)
	metricsHandler := handlers.NewMetricsHandler(s.services.Metrics, s.logger)
	exportHandler := handlers.NewExportHandler(s.services.Export, s.services.Location, s.logger)
	auditHandler := handlers.NewAuditHandler(s.auditStats)

	jwtConfig := auth.JWTConfig{
		Secret: s.config.JWT.Secret,
		Logger: s.logger,
		SkipPaths: []string{
			"/health",
			WebhookPath,
			"/api/v1/plans",
		},
	}

	// Webhook route (outside API versioning)
	s.echo.POST(WebhookPath, webhookHandler.HandleWebhook)

	v1 := s.echo.Group("/api/v1")
	v1.GET("/plans", checkoutHandler.GetPlans)

	protected := v1.Group("", auth.JWTMiddleware(jwtConfig))
	protected.POST("/checkout", checkoutHandler.CreateCheckout)
	protected.GET("/subscriptions/current", subscriptionHandler.GetCurrentSubscription)

	admin := protected.Group("", auth.RequireRole(auth.RoleAdmin))
	admin.GET("/metrics", metricsHandler.GetMetrics)
	admin.GET("/internal/audit-stats", auditHandler.GetStats)

	salon := protected.Group("/salons/:salonId", auth.RequireSalonAccess())
	salon.GET("/exports/accounting", exportHandler.ExportAccounting)

	invoices := salon.Group("/invoices", subscriptionHandler.RequireActiveSubscription())
	invoices.POST("", invoiceHandler.CreateInvoice)
	invoices.GET("", invoiceHandler.ListInvoices)
	invoices.GET("/:invoiceId", invoiceHandler.GetInvoice)
	invoices.POST("/:invoiceId/pay", invoiceHandler.PayInvoice)
	invoices.POST("/:invoiceId/cancel", invoiceHandler.CancelInvoice)
}
