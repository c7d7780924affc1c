package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/wekeepgrowing/salon-billing/internal/domain/model"
	"github.com/wekeepgrowing/salon-billing/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type webhookEventRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewWebhookEventRepository creates the processed-event ledger
func NewWebhookEventRepository(db *gorm.DB, logger *zap.Logger) repository.WebhookEventRepository {
	return &webhookEventRepository{
		db:     db,
		logger: logger,
	}
}

// Begin records a delivery. Unseen events are inserted; open ones are reopened
// with attempts+1; completed ones are returned untouched.
func (r *webhookEventRepository) Begin(ctx context.Context, eventID, eventType string) (*repository.WebhookEventRecord, error) {
	row := &model.WebhookEvent{
		ProviderEventID:    eventID,
		EventType:          eventType,
		Status:             model.WebhookStatusProcessing,
		ProcessingAttempts: 1,
	}

	// Use ON CONFLICT to handle duplicate events
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider_event_id"}},
			DoNothing: true,
		}).
		Create(row)
	if result.Error != nil {
		r.logger.Error("Failed to save webhook event",
			zap.String("event_id", eventID),
			zap.String("event_type", eventType),
			zap.Error(result.Error))
		return nil, fmt.Errorf("failed to save webhook event: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		err := r.db.WithContext(ctx).
			Model(&model.WebhookEvent{}).
			Where("provider_event_id = ? AND status <> ?", eventID, model.WebhookStatusCompleted).
			Updates(map[string]interface{}{
				"status":              model.WebhookStatusProcessing,
				"processing_attempts": gorm.Expr("processing_attempts + 1"),
				"updated_at":          time.Now().UTC(),
			}).Error
		if err != nil {
			r.logger.Error("Failed to reopen webhook event",
				zap.String("event_id", eventID),
				zap.Error(err))
			return nil, fmt.Errorf("failed to reopen webhook event: %w", err)
		}
	}

	var current model.WebhookEvent
	if err := r.db.WithContext(ctx).
		Where("provider_event_id = ?", eventID).
		First(&current).Error; err != nil {
		return nil, fmt.Errorf("failed to get webhook event: %w", err)
	}

	return toWebhookEventRecord(&current), nil
}

// MarkCompleted marks a webhook event as processed
func (r *webhookEventRepository) MarkCompleted(ctx context.Context, eventID string, outcome string) error {
	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":       model.WebhookStatusCompleted,
		"processed_at": &now,
		"updated_at":   now,
	}
	if outcome != "" {
		updates["last_error"] = &outcome
	}

	result := r.db.WithContext(ctx).
		Model(&model.WebhookEvent{}).
		Where("provider_event_id = ?", eventID).
		Updates(updates)
	if result.Error != nil {
		r.logger.Error("Failed to mark webhook as processed",
			zap.String("event_id", eventID),
			zap.Error(result.Error))
		return fmt.Errorf("failed to mark webhook as processed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("webhook event not found: %s", eventID)
	}
	return nil
}

// MarkFailed marks a webhook event as failed so the next delivery reprocesses it
func (r *webhookEventRepository) MarkFailed(ctx context.Context, eventID string, cause error) error {
	errorMsg := cause.Error()

	result := r.db.WithContext(ctx).
		Model(&model.WebhookEvent{}).
		Where("provider_event_id = ? AND status <> ?", eventID, model.WebhookStatusCompleted).
		Updates(map[string]interface{}{
			"status":     model.WebhookStatusFailed,
			"last_error": &errorMsg,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		r.logger.Error("Failed to mark webhook as failed",
			zap.String("event_id", eventID),
			zap.Error(result.Error))
		return fmt.Errorf("failed to mark webhook as failed: %w", result.Error)
	}
	return nil
}

func toWebhookEventRecord(m *model.WebhookEvent) *repository.WebhookEventRecord {
	rec := &repository.WebhookEventRecord{
		ProviderEventID: m.ProviderEventID,
		EventType:       m.EventType,
		Status:          repository.WebhookEventStatus(m.Status),
		Attempts:        m.ProcessingAttempts,
		ProcessedAt:     m.ProcessedAt,
	}
	if m.LastError != nil {
		rec.LastError = *m.LastError
	}
	return rec
}
