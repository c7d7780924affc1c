package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wekeepgrowing/salon-billing/internal/domain/entity"
	"github.com/wekeepgrowing/salon-billing/internal/domain/model"
	"github.com/wekeepgrowing/salon-billing/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type userRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB, logger *zap.Logger) repository.UserRepository {
	return &userRepository{db: db, logger: logger}
}

// GetByEmail matches case-insensitively
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get user by email", zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return modelToUser(&user), nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get user",
			zap.String("user_id", id.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return modelToUser(&user), nil
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	row := &model.User{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: user.CreatedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		r.logger.Error("Failed to create user", zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}
	user.CreatedAt = row.CreatedAt.UTC()
	return nil
}

func (r *userRepository) ListCreatedBefore(ctx context.Context, before time.Time) ([]*entity.User, error) {
	var rows []model.User
	err := r.db.WithContext(ctx).
		Where("created_at < ?", before.UTC()).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		r.logger.Error("Failed to list users", zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*entity.User, len(rows))
	for i := range rows {
		users[i] = modelToUser(&rows[i])
	}
	return users, nil
}

func modelToUser(m *model.User) *entity.User {
	return &entity.User{
		ID:        m.ID,
		Email:     m.Email,
		Name:      m.Name,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

type salonRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSalonRepository creates a new salon repository
func NewSalonRepository(db *gorm.DB, logger *zap.Logger) repository.SalonRepository {
	return &salonRepository{db: db, logger: logger}
}

// GetByID returns nil, nil when the salon does not exist
func (r *salonRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Salon, error) {
	var salon model.Salon
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&salon).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get salon",
			zap.String("salon_id", id.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get salon: %w", err)
	}
	return &entity.Salon{
		ID:        salon.ID,
		OwnerID:   salon.OwnerID,
		Name:      salon.Name,
		CreatedAt: salon.CreatedAt.UTC(),
	}, nil
}

func (r *salonRepository) Create(ctx context.Context, salon *entity.Salon) error {
	if salon.ID == uuid.Nil {
		salon.ID = uuid.New()
	}
	row := &model.Salon{
		ID:        salon.ID,
		OwnerID:   salon.OwnerID,
		Name:      salon.Name,
		CreatedAt: salon.CreatedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		r.logger.Error("Failed to create salon", zap.Error(err))
		return fmt.Errorf("failed to create salon: %w", err)
	}
	salon.CreatedAt = row.CreatedAt.UTC()
	return nil
}
