package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wekeepgrowing/salon-billing/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/salon-billing/internal/domain/errors"
	"github.com/wekeepgrowing/salon-billing/internal/domain/provider"
	"github.com/wekeepgrowing/salon-billing/internal/domain/repository"
	"go.uber.org/zap"
)

// SubscriptionService answers entitlement queries and starts checkouts
type SubscriptionService struct {
	subscriptions repository.SubscriptionRepository
	billing       provider.BillingProvider
	plans         *entity.PlanCatalog
	clientURL     string
	logger        *zap.Logger
}

func NewSubscriptionService(
	subscriptions repository.SubscriptionRepository,
	billing provider.BillingProvider,
	plans *entity.PlanCatalog,
	clientURL string,
	logger *zap.Logger,
) *SubscriptionService {
	return &SubscriptionService{
		subscriptions: subscriptions,
		billing:       billing,
		plans:         plans,
		clientURL:     strings.TrimRight(clientURL, "/"),
		logger:        logger,
	}
}

// CurrentSubscription is the owner's subscription and its entitlement at query time
type CurrentSubscription struct {
	Active       bool                 `json:"active"`
	Subscription *entity.Subscription `json:"subscription"`
}

// HasActiveSubscription is evaluated from storage on every call.
func (s *SubscriptionService) HasActiveSubscription(ctx context.Context, ownerID uuid.UUID, now time.Time) (bool, error) {
	current, err := s.Current(ctx, ownerID, now)
	if err != nil {
		return false, err
	}
	return current.Active, nil
}

func (s *SubscriptionService) Current(ctx context.Context, ownerID uuid.UUID, now time.Time) (*CurrentSubscription, error) {
	sub, err := s.subscriptions.GetByOwnerID(ctx, ownerID)
	if err != nil {
		s.logger.Error("Failed to load subscription",
			zap.String("owner_id", ownerID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	return &CurrentSubscription{Active: sub.IsEntitled(now), Subscription: sub}, nil
}

// CreateCheckout returns the hosted checkout redirect URL for an allowed price.
func (s *SubscriptionService) CreateCheckout(ctx context.Context, priceID, email string) (string, error) {
	if !s.plans.Allowed(priceID) {
		return "", domainErrors.Validationf("price %q is not offered", priceID)
	}
	if strings.TrimSpace(email) == "" {
		return "", domainErrors.Validationf("email is required")
	}

	url, err := s.billing.CreateCheckoutSession(ctx, &provider.CheckoutRequest{
		PriceID:    priceID,
		Email:      email,
		SuccessURL: s.clientURL + "/billing/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  s.clientURL + "/billing/cancel",
	})
	if err != nil {
		s.logger.Error("Failed to create checkout session",
			zap.String("price_id", priceID),
			zap.Error(err))
		return "", err
	}
	return url, nil
}
