package repository

import (
	"context"
	"time"
)

type WebhookEventStatus string

const (
	WebhookEventProcessing WebhookEventStatus = "processing"
	WebhookEventCompleted  WebhookEventStatus = "completed"
	WebhookEventFailed     WebhookEventStatus = "failed"
)

// WebhookEventRecord is the ledger state of one provider event.
type WebhookEventRecord struct {
	ProviderEventID string
	EventType       string
	Status          WebhookEventStatus
	Attempts        int
	LastError       string
	ProcessedAt     *time.Time
}

// WebhookEventRepository is the processed-event ledger.
type WebhookEventRepository interface {
	// Begin records the event if unseen and returns its current ledger row.
	Begin(ctx context.Context, eventID, eventType string) (*WebhookEventRecord, error)
	// MarkCompleted closes the event. A non-empty outcome is kept as last error.
	MarkCompleted(ctx context.Context, eventID string, outcome string) error
	// MarkFailed leaves the event open for redelivery.
	MarkFailed(ctx context.Context, eventID string, cause error) error
}
