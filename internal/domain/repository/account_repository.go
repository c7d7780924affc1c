package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wekeepgrowing/salon-billing/internal/domain/entity"
)

type UserRepository interface {
	// GetByEmail returns nil, nil when no account uses the email.
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	Create(ctx context.Context, user *entity.User) error
	// ListCreatedBefore returns users registered strictly before the instant
	ListCreatedBefore(ctx context.Context, before time.Time) ([]*entity.User, error)
}

type SalonRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Salon, error)
	Create(ctx context.Context, salon *entity.Salon) error
}
