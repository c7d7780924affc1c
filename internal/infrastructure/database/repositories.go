package database

import (
	"github.com/wekeepgrowing/salon-billing/internal/adapter/repository"
	domainRepo "github.com/wekeepgrowing/salon-billing/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	User         domainRepo.UserRepository
	Salon        domainRepo.SalonRepository
	Subscription domainRepo.SubscriptionRepository
	Invoice      domainRepo.InvoiceRepository
	WebhookEvent domainRepo.WebhookEventRepository
}

// NewRepositories creates new repository instances with database connection
func NewRepositories(db *gorm.DB, logger *zap.Logger) *Repositories {
	return &Repositories{
		User:         repository.NewUserRepository(db, logger),
		Salon:        repository.NewSalonRepository(db, logger),
		Subscription: repository.NewSubscriptionRepository(db, logger),
		Invoice:      repository.NewInvoiceRepository(db, logger),
		WebhookEvent: repository.NewWebhookEventRepository(db, logger),
	}
}
