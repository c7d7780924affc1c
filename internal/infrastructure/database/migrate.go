package database

import (
	"github.com/wekeepgrowing/salon-billing/internal/domain/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// customIndexes are the partial indexes gorm tags cannot express
var customIndexes = []struct {
	name string
	sql  string
}{
	{
		name: "idx_webhook_events_retryable",
		sql:  `CREATE INDEX IF NOT EXISTS idx_webhook_events_retryable ON webhook_events (updated_at) WHERE status IN ('processing', 'failed')`,
	},
	{
		name: "idx_subscriptions_open",
		sql:  `CREATE INDEX IF NOT EXISTS idx_subscriptions_open ON subscriptions (current_period_end) WHERE canceled_at IS NULL`,
	},
	{
		name: "idx_invoices_paid_at",
		sql:  `CREATE INDEX IF NOT EXISTS idx_invoices_paid_at ON invoices (paid_at) WHERE status = 'paid'`,
	},
}

// Migrate runs database migrations
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("Running database migrations...")

	if err := db.AutoMigrate(model.All()...); err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return err
	}
	logger.Info("GORM auto-migrations completed successfully")

	for _, idx := range customIndexes {
		if err := db.Exec(idx.sql).Error; err != nil {
			logger.Error("Failed to create custom index",
				zap.String("index", idx.name),
				zap.Error(err))
			return err
		}
	}

	logger.Info("Database migrations completed successfully",
		zap.Int("tables", len(model.All())),
		zap.Int("custom_indexes", len(customIndexes)))
	return nil
}
