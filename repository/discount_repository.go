package repository

import (
	"context"
	"strings"

	"github.com/barmor12/cakeshop-backend/models"

	"gorm.io/gorm"
)

// DiscountRepository defines the interface for discount-code data access
type DiscountRepository interface {
	Create(ctx context.Context, code *models.DiscountCode) error
	FindByCode(ctx context.Context, code string) (*models.DiscountCode, error)
	FindAll(ctx context.Context, page, limit int) ([]models.DiscountCode, int64, error)
	Delete(ctx context.Context, code string) error
}

// GormDiscountRepository implements DiscountRepository using GORM
type GormDiscountRepository struct {
	db *gorm.DB
}

func NewGormDiscountRepository(db *gorm.DB) DiscountRepository {
	return &GormDiscountRepository{db: db}
}

func (r *GormDiscountRepository) Create(ctx context.Context, code *models.DiscountCode) error {
	return r.db.WithContext(ctx).Create(code).Error
}

// FindByCode retrieves a discount code by its code string (case-insensitive).
func (r *GormDiscountRepository) FindByCode(ctx context.Context, code string) (*models.DiscountCode, error) {
	var discount models.DiscountCode
	err := r.db.WithContext(ctx).
		Where("LOWER(code) = ?", strings.ToLower(code)).
		First(&discount).Error
	if err != nil {
		return nil, err
	}
	return &discount, nil
}

func (r *GormDiscountRepository) FindAll(ctx context.Context, page, limit int) ([]models.DiscountCode, int64, error) {
	var codes []models.DiscountCode
	var total int64

	query := r.db.WithContext(ctx).Model(&models.DiscountCode{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Offset(offset).
		Limit(limit).
		Order("created_at DESC").
		Find(&codes).Error; err != nil {
		return nil, 0, err
	}

	return codes, total, nil
}

func (r *GormDiscountRepository) Delete(ctx context.Context, code string) error {
	result := r.db.WithContext(ctx).
		Where("LOWER(code) = ?", strings.ToLower(code)).
		Delete(&models.DiscountCode{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
