package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wekeepgrowing/salon-billing/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/salon-billing/internal/domain/errors"
	"github.com/wekeepgrowing/salon-billing/internal/domain/model"
	"github.com/wekeepgrowing/salon-billing/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type subscriptionRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *gorm.DB, logger *zap.Logger) repository.SubscriptionRepository {
	return &subscriptionRepository{
		db:     db,
		logger: logger,
	}
}

// UpsertByOwner inserts or overwrites the owner's subscription in one statement
func (r *subscriptionRepository) UpsertByOwner(ctx context.Context, in entity.SubscriptionUpsert) (*entity.Subscription, error) {
	now := time.Now().UTC()
	row := &model.Subscription{
		ID:                   uuid.New(),
		OwnerID:              in.OwnerID,
		StripeCustomerID:     in.StripeCustomerID,
		StripeSubscriptionID: in.StripeSubscriptionID,
		Status:               model.SubscriptionStatusActive,
		Plan:                 string(in.Plan),
		Price:                in.Price.Round(2),
		CurrentPeriodStart:   in.CurrentPeriodStart.UTC(),
		CurrentPeriodEnd:     in.CurrentPeriodEnd.UTC(),
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "owner_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"stripe_customer_id",
				"stripe_subscription_id",
				"status",
				"plan",
				"price",
				"current_period_start",
				"current_period_end",
				"canceled_at",
				"updated_at",
			}),
		}).
		Create(row).Error
	if err != nil {
		r.logger.Error("Failed to upsert subscription",
			zap.String("owner_id", in.OwnerID.String()),
			zap.String("stripe_customer_id", in.StripeCustomerID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to upsert subscription: %w", err)
	}

	return r.GetByOwnerID(ctx, in.OwnerID)
}

// UpdatePeriodByCustomerID overwrites the period bounds; status and plan are untouched
func (r *subscriptionRepository) UpdatePeriodByCustomerID(ctx context.Context, customerID string, start, end time.Time) (*entity.Subscription, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("stripe_customer_id = ?", customerID).
		Updates(map[string]interface{}{
			"current_period_start": start.UTC(),
			"current_period_end":   end.UTC(),
			"updated_at":           time.Now().UTC(),
		})
	if result.Error != nil {
		r.logger.Error("Failed to update subscription period",
			zap.String("stripe_customer_id", customerID),
			zap.Error(result.Error))
		return nil, fmt.Errorf("failed to update subscription period: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, domainErrors.Missingf("no subscription for customer %s", customerID)
	}

	return r.GetByCustomerID(ctx, customerID)
}

// MarkCanceledByCustomerID flips the subscription to canceled, keeping the first
// cancellation time, and records it in the history in the same transaction.
// Redelivery of the same cancellation adds no history entry.
func (r *subscriptionRepository) MarkCanceledByCustomerID(ctx context.Context, customerID string, at time.Time) (*entity.Subscription, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Subscription{}).
			Where("stripe_customer_id = ?", customerID).
			Updates(map[string]interface{}{
				"status":      model.SubscriptionStatusCanceled,
				"canceled_at": gorm.Expr("COALESCE(canceled_at, ?)", at.UTC()),
				"updated_at":  time.Now().UTC(),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to cancel subscription: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domainErrors.Missingf("no subscription for customer %s", customerID)
		}

		var rows []model.Subscription
		if err := tx.Where("stripe_customer_id = ?", customerID).Find(&rows).Error; err != nil {
			return fmt.Errorf("failed to reload canceled subscription: %w", err)
		}
		for _, row := range rows {
			if row.CanceledAt == nil {
				continue
			}
			entry := &model.SubscriptionCancellation{
				SubscriptionID:       row.ID,
				StripeSubscriptionID: row.StripeSubscriptionID,
				OwnerID:              row.OwnerID,
				StripeCustomerID:     row.StripeCustomerID,
				CanceledAt:           row.CanceledAt.UTC(),
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(entry).Error; err != nil {
				return fmt.Errorf("failed to record cancellation: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, domainErrors.ErrReferencedEntityMissing) {
			r.logger.Error("Failed to cancel subscription",
				zap.String("stripe_customer_id", customerID),
				zap.Error(err))
		}
		return nil, err
	}

	return r.GetByCustomerID(ctx, customerID)
}

// ListCancellations returns history entries in [from, to), oldest first
func (r *subscriptionRepository) ListCancellations(ctx context.Context, from, to time.Time) ([]*entity.Cancellation, error) {
	var rows []model.SubscriptionCancellation
	err := r.db.WithContext(ctx).
		Where("canceled_at >= ? AND canceled_at < ?", from.UTC(), to.UTC()).
		Order("canceled_at ASC").
		Find(&rows).Error
	if err != nil {
		r.logger.Error("Failed to list cancellations", zap.Error(err))
		return nil, fmt.Errorf("failed to list cancellations: %w", err)
	}

	out := make([]*entity.Cancellation, len(rows))
	for i, row := range rows {
		out[i] = &entity.Cancellation{
			SubscriptionID:       row.SubscriptionID,
			OwnerID:              row.OwnerID,
			StripeSubscriptionID: row.StripeSubscriptionID,
			CanceledAt:           row.CanceledAt.UTC(),
		}
	}
	return out, nil
}

// GetByOwnerID returns nil, nil when the owner has never subscribed
func (r *subscriptionRepository) GetByOwnerID(ctx context.Context, ownerID uuid.UUID) (*entity.Subscription, error) {
	return r.first(ctx, "owner_id = ?", ownerID)
}

// GetByCustomerID returns nil, nil when no subscription references the customer
func (r *subscriptionRepository) GetByCustomerID(ctx context.Context, customerID string) (*entity.Subscription, error) {
	return r.first(ctx, "stripe_customer_id = ?", customerID)
}

func (r *subscriptionRepository) first(ctx context.Context, query string, arg interface{}) (*entity.Subscription, error) {
	var sub model.Subscription

	err := r.db.WithContext(ctx).
		Where(query, arg).
		Order("updated_at DESC").
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get subscription",
			zap.String("query", query),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	return modelToSubscription(&sub), nil
}

// List returns subscriptions matching the filter, oldest first
func (r *subscriptionRepository) List(ctx context.Context, filter repository.SubscriptionFilter) ([]*entity.Subscription, error) {
	query := r.db.WithContext(ctx).Model(&model.Subscription{})

	if filter.OwnerID != nil {
		query = query.Where("owner_id = ?", *filter.OwnerID)
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		query = query.Where("status IN ?", statuses)
	}
	if len(filter.Plans) > 0 {
		plans := make([]string, len(filter.Plans))
		for i, p := range filter.Plans {
			plans[i] = string(p)
		}
		query = query.Where("plan IN ?", plans)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", filter.CreatedBefore.UTC())
	}

	var subs []model.Subscription
	if err := query.Order("created_at ASC").Find(&subs).Error; err != nil {
		r.logger.Error("Failed to list subscriptions", zap.Error(err))
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	entities := make([]*entity.Subscription, len(subs))
	for i := range subs {
		entities[i] = modelToSubscription(&subs[i])
	}
	return entities, nil
}

// modelToSubscription converts database model to domain entity
func modelToSubscription(m *model.Subscription) *entity.Subscription {
	e := &entity.Subscription{
		ID:                   m.ID,
		OwnerID:              m.OwnerID,
		StripeCustomerID:     m.StripeCustomerID,
		StripeSubscriptionID: m.StripeSubscriptionID,
		Status:               entity.SubscriptionStatus(m.Status),
		Plan:                 entity.PlanTag(m.Plan),
		Price:                m.Price,
		CurrentPeriodStart:   m.CurrentPeriodStart.UTC(),
		CurrentPeriodEnd:     m.CurrentPeriodEnd.UTC(),
		CreatedAt:            m.CreatedAt.UTC(),
		UpdatedAt:            m.UpdatedAt.UTC(),
	}
	if m.CanceledAt != nil {
		t := m.CanceledAt.UTC()
		e.CanceledAt = &t
	}
	return e
}
