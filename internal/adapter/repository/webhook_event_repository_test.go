package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wekeepgrowing/salon-billing/internal/domain/repository"
	"go.uber.org/zap"
)

func TestWebhookEventRepository_Lifecycle(t *testing.T) {
	repo := NewWebhookEventRepository(newTestDB(t), zap.NewNop())
	ctx := context.Background()

	rec, err := repo.Begin(ctx, "evt_1", "invoice.payment_succeeded")
	require.NoError(t, err)
	assert.Equal(t, repository.WebhookEventProcessing, rec.Status)
	assert.Equal(t, 1, rec.Attempts)

	require.NoError(t, repo.MarkFailed(ctx, "evt_1", errors.New("provider timeout")))

	rec, err = repo.Begin(ctx, "evt_1", "invoice.payment_succeeded")
	require.NoError(t, err)
	assert.Equal(t, repository.WebhookEventProcessing, rec.Status)
	assert.Equal(t, 2, rec.Attempts)
	assert.Equal(t, "provider timeout", rec.LastError)

	require.NoError(t, repo.MarkCompleted(ctx, "evt_1", ""))

	rec, err = repo.Begin(ctx, "evt_1", "invoice.payment_succeeded")
	require.NoError(t, err)
	assert.Equal(t, repository.WebhookEventCompleted, rec.Status)
	assert.Equal(t, 2, rec.Attempts, "completed events are not reopened")
	assert.NotNil(t, rec.ProcessedAt)

	// a late failure report cannot reopen a completed event
	require.NoError(t, repo.MarkFailed(ctx, "evt_1", errors.New("late")))
	rec, err = repo.Begin(ctx, "evt_1", "invoice.payment_succeeded")
	require.NoError(t, err)
	assert.Equal(t, repository.WebhookEventCompleted, rec.Status)
}

func TestWebhookEventRepository_CompletedWithOutcome(t *testing.T) {
	repo := NewWebhookEventRepository(newTestDB(t), zap.NewNop())
	ctx := context.Background()

	_, err := repo.Begin(ctx, "evt_2", "checkout.session.completed")
	require.NoError(t, err)
	require.NoError(t, repo.MarkCompleted(ctx, "evt_2", "validation error: unrecognized price id"))

	rec, err := repo.Begin(ctx, "evt_2", "checkout.session.completed")
	require.NoError(t, err)
	assert.Equal(t, repository.WebhookEventCompleted, rec.Status)
	assert.Equal(t, "validation error: unrecognized price id", rec.LastError)

	assert.Error(t, repo.MarkCompleted(ctx, "evt_unknown", ""))
}
