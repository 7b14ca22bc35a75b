package repository

import (
	"context"

	"github.com/barmor12/cakeshop-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeviceTokenRepository defines the interface for push-token data access
type DeviceTokenRepository interface {
	Register(ctx context.Context, token *models.DeviceToken) error
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]models.DeviceToken, error)
	// FindByRole returns the tokens of every user holding the given role.
	// Used for the admin fan-out on new orders.
	FindByRole(ctx context.Context, role string) ([]models.DeviceToken, error)
	// FindAll returns every registered token. Used for admin broadcasts.
	FindAll(ctx context.Context) ([]models.DeviceToken, error)
	Delete(ctx context.Context, token string) error
}

// GormDeviceTokenRepository implements DeviceTokenRepository using GORM
type GormDeviceTokenRepository struct {
	db *gorm.DB
}

func NewGormDeviceTokenRepository(db *gorm.DB) DeviceTokenRepository {
	return &GormDeviceTokenRepository{db: db}
}

// Register upserts a token; re-registering the same token moves it to the
// current user.
func (r *GormDeviceTokenRepository) Register(ctx context.Context, token *models.DeviceToken) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token"}},
			DoUpdates: clause.AssignmentColumns([]string{"user_id", "platform"}),
		}).
		Create(token).Error
}

func (r *GormDeviceTokenRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]models.DeviceToken, error) {
	var tokens []models.DeviceToken
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&tokens).Error; err != nil {
		return nil, err
	}
	return tokens, nil
}

func (r *GormDeviceTokenRepository) FindByRole(ctx context.Context, role string) ([]models.DeviceToken, error) {
	var tokens []models.DeviceToken
	err := r.db.WithContext(ctx).
		Joins("JOIN users ON users.id = device_tokens.user_id").
		Where("users.role = ?", role).
		Find(&tokens).Error
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

func (r *GormDeviceTokenRepository) FindAll(ctx context.Context) ([]models.DeviceToken, error) {
	var tokens []models.DeviceToken
	if err := r.db.WithContext(ctx).Find(&tokens).Error; err != nil {
		return nil, err
	}
	return tokens, nil
}

func (r *GormDeviceTokenRepository) Delete(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Where("token = ?", token).Delete(&models.DeviceToken{}).Error
}
