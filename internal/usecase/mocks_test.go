package usecase_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/wekeepgrowing/salon-billing/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/salon-billing/internal/domain/errors"
	"github.com/wekeepgrowing/salon-billing/internal/domain/event"
	"github.com/wekeepgrowing/salon-billing/internal/domain/provider"
	"github.com/wekeepgrowing/salon-billing/internal/domain/repository"
)

// MockBillingProvider is a mock implementation of provider.BillingProvider
type MockBillingProvider struct {
	mock.Mock
}

func (m *MockBillingProvider) FetchSubscription(ctx context.Context, subscriptionID string) (*provider.Subscription, error) {
	args := m.Called(ctx, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.Subscription), args.Error(1)
}

func (m *MockBillingProvider) CreateCheckoutSession(ctx context.Context, req *provider.CheckoutRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockBillingProvider) GetProviderName() string {
	return string(provider.ProviderTypeStripe)
}

// MockUserRepository is a mock implementation of repository.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *entity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) ListCreatedBefore(ctx context.Context, before time.Time) ([]*entity.User, error) {
	args := m.Called(ctx, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.User), args.Error(1)
}

// MockSalonRepository is a mock implementation of repository.SalonRepository
type MockSalonRepository struct {
	mock.Mock
}

func (m *MockSalonRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Salon, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Salon), args.Error(1)
}

func (m *MockSalonRepository) Create(ctx context.Context, salon *entity.Salon) error {
	return m.Called(ctx, salon).Error(0)
}

// MockInvoiceRepository is a mock implementation of repository.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) CreateNumbered(ctx context.Context, invoice *entity.Invoice) (*entity.Invoice, error) {
	args := m.Called(ctx, invoice)
	if fn, ok := args.Get(0).(func(context.Context, *entity.Invoice) *entity.Invoice); ok {
		return fn(ctx, invoice), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) GetByID(ctx context.Context, salonID, invoiceID uuid.UUID) (*entity.Invoice, error) {
	args := m.Called(ctx, salonID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) TransitionStatus(ctx context.Context, salonID, invoiceID uuid.UUID, status entity.InvoiceStatus, paidAt *time.Time, method string) (*entity.Invoice, error) {
	args := m.Called(ctx, salonID, invoiceID, status, paidAt, method)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) List(ctx context.Context, filter repository.InvoiceFilter) ([]*entity.Invoice, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Count(ctx context.Context, filter repository.InvoiceFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockSubscriptionRepository is a mock implementation of repository.SubscriptionRepository
type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) UpsertByOwner(ctx context.Context, in entity.SubscriptionUpsert) (*entity.Subscription, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) UpdatePeriodByCustomerID(ctx context.Context, customerID string, start, end time.Time) (*entity.Subscription, error) {
	args := m.Called(ctx, customerID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) MarkCanceledByCustomerID(ctx context.Context, customerID string, at time.Time) (*entity.Subscription, error) {
	args := m.Called(ctx, customerID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) GetByOwnerID(ctx context.Context, ownerID uuid.UUID) (*entity.Subscription, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) GetByCustomerID(ctx context.Context, customerID string) (*entity.Subscription, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) ListCancellations(ctx context.Context, from, to time.Time) ([]*entity.Cancellation, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Cancellation), args.Error(1)
}

func (m *MockSubscriptionRepository) List(ctx context.Context, filter repository.SubscriptionFilter) ([]*entity.Subscription, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Subscription), args.Error(1)
}

// MockAuditRecorder captures audit records
type MockAuditRecorder struct {
	mu      sync.Mutex
	records []entity.AuditRecord
}

func (m *MockAuditRecorder) Record(rec entity.AuditRecord) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return true
}

func (m *MockAuditRecorder) Actions() []entity.AuditAction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.AuditAction, len(m.records))
	for i, r := range m.records {
		out[i] = r.Action
	}
	return out
}

// stubVerifier returns a fixed event for any payload
type stubVerifier struct {
	ev  event.Event
	err error
}

func (v *stubVerifier) Verify(payload []byte, signatureHeader string) (event.Event, error) {
	return v.ev, v.err
}

// memoryLedger is an in-memory processed-event ledger
type memoryLedger struct {
	mu   sync.Mutex
	rows map[string]*repository.WebhookEventRecord
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{rows: make(map[string]*repository.WebhookEventRecord)}
}

func (l *memoryLedger) Begin(ctx context.Context, eventID, eventType string) (*repository.WebhookEventRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	row, ok := l.rows[eventID]
	if !ok {
		row = &repository.WebhookEventRecord{ProviderEventID: eventID, EventType: eventType, Status: repository.WebhookEventProcessing, Attempts: 1}
		l.rows[eventID] = row
	} else if row.Status != repository.WebhookEventCompleted {
		row.Status = repository.WebhookEventProcessing
		row.Attempts++
	}
	out := *row
	return &out, nil
}

func (l *memoryLedger) MarkCompleted(ctx context.Context, eventID string, outcome string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	row := l.rows[eventID]
	row.Status = repository.WebhookEventCompleted
	row.LastError = outcome
	now := time.Now()
	row.ProcessedAt = &now
	return nil
}

func (l *memoryLedger) MarkFailed(ctx context.Context, eventID string, cause error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	row := l.rows[eventID]
	if row.Status == repository.WebhookEventCompleted {
		return nil
	}
	row.Status = repository.WebhookEventFailed
	row.LastError = cause.Error()
	return nil
}

func (l *memoryLedger) get(eventID string) repository.WebhookEventRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return *l.rows[eventID]
}

// memorySubscriptions mirrors the storage semantics of the gorm repository:
// one row per owner, conditional updates keyed by customer id.
type memorySubscriptions struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*entity.Subscription
}

func newMemorySubscriptions() *memorySubscriptions {
	return &memorySubscriptions{rows: make(map[uuid.UUID]*entity.Subscription)}
}

func (r *memorySubscriptions) UpsertByOwner(ctx context.Context, in entity.SubscriptionUpsert) (*entity.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[in.OwnerID]
	if !ok {
		row = &entity.Subscription{ID: uuid.New(), OwnerID: in.OwnerID, CreatedAt: in.CurrentPeriodStart}
		r.rows[in.OwnerID] = row
	}
	row.StripeCustomerID = in.StripeCustomerID
	row.StripeSubscriptionID = in.StripeSubscriptionID
	row.Status = entity.SubscriptionStatusActive
	row.Plan = in.Plan
	row.Price = in.Price
	row.CurrentPeriodStart = in.CurrentPeriodStart
	row.CurrentPeriodEnd = in.CurrentPeriodEnd
	row.CanceledAt = nil
	out := *row
	return &out, nil
}

func (r *memorySubscriptions) byCustomer(customerID string) *entity.Subscription {
	for _, row := range r.rows {
		if row.StripeCustomerID == customerID {
			return row
		}
	}
	return nil
}

func (r *memorySubscriptions) UpdatePeriodByCustomerID(ctx context.Context, customerID string, start, end time.Time) (*entity.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row := r.byCustomer(customerID)
	if row == nil {
		return nil, domainErrors.Missingf("customer %s", customerID)
	}
	row.CurrentPeriodStart = start
	row.CurrentPeriodEnd = end
	out := *row
	return &out, nil
}

func (r *memorySubscriptions) MarkCanceledByCustomerID(ctx context.Context, customerID string, at time.Time) (*entity.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row := r.byCustomer(customerID)
	if row == nil {
		return nil, domainErrors.Missingf("customer %s", customerID)
	}
	row.Status = entity.SubscriptionStatusCanceled
	if row.CanceledAt == nil {
		row.CanceledAt = &at
	}
	out := *row
	return &out, nil
}

func (r *memorySubscriptions) GetByOwnerID(ctx context.Context, ownerID uuid.UUID) (*entity.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[ownerID]
	if !ok {
		return nil, nil
	}
	out := *row
	return &out, nil
}

func (r *memorySubscriptions) GetByCustomerID(ctx context.Context, customerID string) (*entity.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row := r.byCustomer(customerID)
	if row == nil {
		return nil, nil
	}
	out := *row
	return &out, nil
}

func (r *memorySubscriptions) List(ctx context.Context, filter repository.SubscriptionFilter) ([]*entity.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Subscription
	for _, row := range r.rows {
		if filter.CreatedBefore != nil && !row.CreatedAt.Before(*filter.CreatedBefore) {
			continue
		}
		cp := *row
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memorySubscriptions) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}
