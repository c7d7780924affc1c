package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/wekeepgrowing/salon-billing/internal/app"
	"github.com/wekeepgrowing/salon-billing/internal/config"
	"github.com/wekeepgrowing/salon-billing/internal/infrastructure/database"
	grpcServer "github.com/wekeepgrowing/salon-billing/internal/infrastructure/grpc"
	httpServer "github.com/wekeepgrowing/salon-billing/internal/infrastructure/http"
	"github.com/wekeepgrowing/salon-billing/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	zapLogger, err := logger.NewZapLogger(cfg.Log)
	if err != nil {
		zapLogger = logger.DefaultZapLogger()
		zapLogger.Warn("Invalid log configuration, using defaults", zap.Error(err))
	}
	defer zapLogger.Sync()

	application, err := app.New(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize application", zap.Error(err))
	}

	// Run database migrations
	if err := database.Migrate(application.DB, zapLogger); err != nil {
		zapLogger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	application.Audit.Start()

	// Initialize servers
	grpcSrv := grpcServer.NewServer(cfg, zapLogger)
	httpSrv := httpServer.NewServer(cfg, zapLogger, application.Services, application.Audit)

	serverErr := make(chan error, 2)
	go func() {
		if err := grpcSrv.Start(); err != nil {
			serverErr <- err
		}
	}()
	go func() {
		if err := httpSrv.Start(); err != nil {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal or a listener failure
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigChan:
		zapLogger.Info("Shutdown signal received", zap.String("signal", sig.String()))
	case err := <-serverErr:
		zapLogger.Error("Server stopped unexpectedly", zap.Error(err))
	}

	zapLogger.Info("Shutting down servers...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		zapLogger.Error("Failed to shutdown HTTP server", zap.Error(err))
	}
	if err := grpcSrv.Shutdown(ctx); err != nil {
		zapLogger.Error("Failed to shutdown gRPC server", zap.Error(err))
	}
	if err := application.Close(ctx); err != nil {
		zapLogger.Error("Failed to release resources", zap.Error(err))
	}

	zapLogger.Info("Servers shut down successfully")
}
