package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/wekeepgrowing/salon-billing/internal/adapter/cli"
	"github.com/wekeepgrowing/salon-billing/internal/app"
	"github.com/wekeepgrowing/salon-billing/internal/config"
	"github.com/wekeepgrowing/salon-billing/internal/infrastructure/database"
	"github.com/wekeepgrowing/salon-billing/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand(open).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// open loads the config and connects the application. Logs go to stderr so
// stdout stays clean for exports.
func open(ctx context.Context, configPath string) (*cli.Env, error) {
	if configPath != "" {
		os.Setenv("CONFIG_PATH", configPath)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	logCfg := cfg.Log
	logCfg.Output = "stderr"
	zapLogger, err := logger.NewZapLogger(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	application, err := app.New(cfg, zapLogger)
	if err != nil {
		return nil, err
	}

	env := &cli.Env{
		Migrate: func(ctx context.Context) error {
			return database.Migrate(application.DB.WithContext(ctx), zapLogger)
		},
		Exporter:     application.Services.Export,
		Reporter:     application.Services.Metrics,
		AuditChannel: cfg.Audit.Channel,
		Location:     application.Services.Location,
		Close: func(ctx context.Context) error {
			defer zapLogger.Sync()
			return application.Close(ctx)
		},
	}
	if application.Redis != nil {
		env.Subscriber = application.Redis
	}
	return env, nil
}
