package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/wekeepgrowing/salon-billing/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/salon-billing/internal/domain/errors"
	"github.com/wekeepgrowing/salon-billing/internal/domain/event"
	"github.com/wekeepgrowing/salon-billing/internal/domain/provider"
	"github.com/wekeepgrowing/salon-billing/internal/domain/repository"
	"go.uber.org/zap"
)

// WebhookResult describes how one delivery was handled.
type WebhookResult struct {
	EventID   string
	EventType string
	// Duplicate is set when the ledger already holds a completed row for the event
	Duplicate bool
	Class     domainErrors.Class
}

// ReconciliationService applies verified provider events to local subscriptions.
type ReconciliationService struct {
	verifier      provider.EventVerifier
	billing       provider.BillingProvider
	plans         *entity.PlanCatalog
	users         repository.UserRepository
	subscriptions repository.SubscriptionRepository
	ledger        repository.WebhookEventRepository
	audit         AuditRecorder
	now           func() time.Time
	logger        *zap.Logger
}

var _ event.Handler = (*ReconciliationService)(nil)

func NewReconciliationService(
	verifier provider.EventVerifier,
	billing provider.BillingProvider,
	plans *entity.PlanCatalog,
	users repository.UserRepository,
	subscriptions repository.SubscriptionRepository,
	ledger repository.WebhookEventRepository,
	audit AuditRecorder,
	logger *zap.Logger,
) *ReconciliationService {
	if audit == nil {
		audit = nopRecorder{}
	}
	return &ReconciliationService{
		verifier:      verifier,
		billing:       billing,
		plans:         plans,
		users:         users,
		subscriptions: subscriptions,
		ledger:        ledger,
		audit:         audit,
		now:           time.Now,
		logger:        logger,
	}
}

// SetClock replaces the time source used for cancellation timestamps.
func (s *ReconciliationService) SetClock(now func() time.Time) {
	s.now = now
}

// ProcessWebhook verifies a raw delivery, consults the processed-event ledger
// and dispatches the event. The returned error, if any, decides the response
// through domainErrors.Classify.
func (s *ReconciliationService) ProcessWebhook(ctx context.Context, payload []byte, signature, correlationID string) (*WebhookResult, error) {
	ctx = WithCorrelationID(ctx, correlationID)

	ev, err := s.verifier.Verify(payload, signature)
	if err != nil {
		s.logger.Warn("Rejected webhook delivery",
			zap.String("correlation_id", correlationID),
			zap.Error(err))
		return &WebhookResult{Class: domainErrors.Classify(err)}, err
	}

	meta := ev.Meta()
	result := &WebhookResult{EventID: meta.ID, EventType: meta.Type}
	fields := []zap.Field{
		zap.String("event_id", meta.ID),
		zap.String("event_type", meta.Type),
		zap.String("correlation_id", correlationID),
	}

	if _, ignored := ev.(event.Ignored); ignored {
		s.logger.Info("Ignoring unhandled webhook event type", fields...)
		return result, nil
	}

	record, err := s.ledger.Begin(ctx, meta.ID, meta.Type)
	if err != nil {
		s.logger.Error("Failed to record webhook event", append(fields, zap.Error(err))...)
		err = fmt.Errorf("failed to record webhook event: %w", err)
		result.Class = domainErrors.Classify(err)
		return result, err
	}
	if record.Status == repository.WebhookEventCompleted {
		s.logger.Info("Skipping already processed webhook event",
			append(fields, zap.Int("attempts", record.Attempts))...)
		result.Duplicate = true
		return result, nil
	}

	err = ev.Accept(ctx, s)
	result.Class = domainErrors.Classify(err)

	switch result.Class {
	case domainErrors.ClassNone:
		s.logger.Info("Webhook event applied", fields...)
		s.markCompleted(ctx, meta.ID, "", fields)
	case domainErrors.ClassNoOp:
		s.logger.Info("Webhook event acknowledged without change", append(fields, zap.Error(err))...)
		s.audit.Record(s.auditRecord(ctx, entity.AuditEventSkipped, meta, "", map[string]string{"reason": err.Error()}))
		s.markCompleted(ctx, meta.ID, err.Error(), fields)
	case domainErrors.ClassPermanent:
		s.logger.Warn("Webhook event rejected", append(fields, zap.Error(err))...)
		s.markCompleted(ctx, meta.ID, err.Error(), fields)
	default:
		s.logger.Error("Webhook event failed, awaiting redelivery", append(fields, zap.Error(err))...)
		if markErr := s.ledger.MarkFailed(ctx, meta.ID, err); markErr != nil {
			s.logger.Error("Failed to mark webhook event failed", append(fields, zap.Error(markErr))...)
		}
	}
	return result, err
}

func (s *ReconciliationService) markCompleted(ctx context.Context, eventID, outcome string, fields []zap.Field) {
	if err := s.ledger.MarkCompleted(ctx, eventID, outcome); err != nil {
		s.logger.Error("Failed to mark webhook event completed", append(fields, zap.Error(err))...)
	}
}

// HandleCheckoutCompleted creates or reactivates the owner's subscription.
func (s *ReconciliationService) HandleCheckoutCompleted(ctx context.Context, e event.CheckoutCompleted) error {
	if e.CustomerEmail == "" {
		return domainErrors.Validationf("checkout %s has no customer email", e.ID)
	}
	if e.SubscriptionID == "" {
		return domainErrors.Validationf("checkout %s has no subscription id", e.ID)
	}

	user, err := s.users.GetByEmail(ctx, e.CustomerEmail)
	if err != nil {
		return fmt.Errorf("failed to resolve checkout account: %w", err)
	}
	if user == nil {
		return domainErrors.Validationf("no account for checkout %s", e.ID)
	}

	remote, err := s.billing.FetchSubscription(ctx, e.SubscriptionID)
	if err != nil {
		return err
	}

	plan, err := s.plans.PlanForPrice(remote.PriceID)
	if err != nil {
		return err
	}
	if remote.PeriodEnd.Before(remote.PeriodStart) {
		return domainErrors.Validationf("subscription %s period ends before it starts", remote.ID)
	}

	customerID := e.CustomerID
	if customerID == "" {
		customerID = remote.CustomerID
	}

	sub, err := s.subscriptions.UpsertByOwner(ctx, entity.SubscriptionUpsert{
		OwnerID:              user.ID,
		StripeCustomerID:     customerID,
		StripeSubscriptionID: remote.ID,
		Plan:                 plan,
		Price:                remote.UnitAmount,
		CurrentPeriodStart:   remote.PeriodStart,
		CurrentPeriodEnd:     remote.PeriodEnd,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}

	s.audit.Record(s.auditRecord(ctx, entity.AuditSubscriptionActivated, e.Envelope, sub.OwnerID.String(), map[string]string{
		"plan":               string(sub.Plan),
		"price":              sub.Price.StringFixed(2),
		"current_period_end": sub.CurrentPeriodEnd.Format(time.RFC3339),
	}))
	return nil
}

// HandlePaymentSucceeded overwrites period bounds with the provider's values.
// Status and plan are left untouched.
func (s *ReconciliationService) HandlePaymentSucceeded(ctx context.Context, e event.PaymentSucceeded) error {
	if e.CustomerID == "" {
		return domainErrors.Validationf("payment %s has no customer id", e.ID)
	}

	stored, err := s.subscriptions.GetByCustomerID(ctx, e.CustomerID)
	if err != nil {
		return fmt.Errorf("failed to load subscription: %w", err)
	}
	if stored == nil {
		return domainErrors.Missingf("no subscription for customer %s", e.CustomerID)
	}

	subscriptionID := e.SubscriptionID
	if subscriptionID == "" {
		subscriptionID = stored.StripeSubscriptionID
	}
	if subscriptionID == "" {
		return domainErrors.Validationf("payment %s has no subscription id", e.ID)
	}

	remote, err := s.billing.FetchSubscription(ctx, subscriptionID)
	if err != nil {
		return err
	}
	if remote.PeriodEnd.Before(remote.PeriodStart) {
		return domainErrors.Validationf("subscription %s period ends before it starts", remote.ID)
	}

	sub, err := s.subscriptions.UpdatePeriodByCustomerID(ctx, e.CustomerID, remote.PeriodStart, remote.PeriodEnd)
	if err != nil {
		return err
	}

	s.audit.Record(s.auditRecord(ctx, entity.AuditSubscriptionRenewed, e.Envelope, sub.OwnerID.String(), map[string]string{
		"invoice_id":         e.InvoiceID,
		"current_period_end": sub.CurrentPeriodEnd.Format(time.RFC3339),
	}))
	return nil
}

// HandleSubscriptionDeleted marks the subscription canceled. The row is kept.
func (s *ReconciliationService) HandleSubscriptionDeleted(ctx context.Context, e event.SubscriptionDeleted) error {
	if e.CustomerID == "" {
		return domainErrors.Validationf("deletion %s has no customer id", e.ID)
	}

	sub, err := s.subscriptions.MarkCanceledByCustomerID(ctx, e.CustomerID, s.now().UTC())
	if err != nil {
		return err
	}

	details := map[string]string{}
	if sub.CanceledAt != nil {
		details["canceled_at"] = sub.CanceledAt.Format(time.RFC3339)
	}
	s.audit.Record(s.auditRecord(ctx, entity.AuditSubscriptionCanceled, e.Envelope, sub.OwnerID.String(), details))
	return nil
}

func (s *ReconciliationService) HandleIgnored(ctx context.Context, e event.Ignored) error {
	return nil
}

func (s *ReconciliationService) auditRecord(ctx context.Context, action entity.AuditAction, env event.Envelope, subject string, details map[string]string) entity.AuditRecord {
	return entity.AuditRecord{
		Action:        action,
		EventID:       env.ID,
		EventType:     env.Type,
		CorrelationID: CorrelationID(ctx),
		Subject:       subject,
		Details:       details,
		OccurredAt:    s.now().UTC(),
	}
}
