package repository

import (
	"context"
	"fmt"

	"github.com/barmor12/cakeshop-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InsufficientStockError reports a requested quantity exceeding the available
// stock of a single cake.
type InsufficientStockError struct {
	CakeID    uuid.UUID
	Name      string
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: %d available", e.Name, e.Available)
}

// CakeRepository defines the interface for catalog data access
type CakeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Cake, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Cake, error)
	FindAll(ctx context.Context, page, limit int) ([]models.Cake, int64, error)
	Create(ctx context.Context, cake *models.Cake) error
	Update(ctx context.Context, cake *models.Cake) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// GormCakeRepository implements CakeRepository using GORM
type GormCakeRepository struct {
	db *gorm.DB
}

// NewGormCakeRepository creates a new instance of GormCakeRepository
func NewGormCakeRepository(db *gorm.DB) CakeRepository {
	return &GormCakeRepository{db: db}
}

func (r *GormCakeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Cake, error) {
	var cake models.Cake
	if err := r.db.WithContext(ctx).First(&cake, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &cake, nil
}

func (r *GormCakeRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Cake, error) {
	var cakes []models.Cake
	if len(ids) == 0 {
		return cakes, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&cakes).Error; err != nil {
		return nil, err
	}
	return cakes, nil
}

func (r *GormCakeRepository) FindAll(ctx context.Context, page, limit int) ([]models.Cake, int64, error) {
	var cakes []models.Cake
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Cake{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Offset(offset).
		Limit(limit).
		Order("name ASC").
		Find(&cakes).Error; err != nil {
		return nil, 0, err
	}

	return cakes, total, nil
}

func (r *GormCakeRepository) Create(ctx context.Context, cake *models.Cake) error {
	return r.db.WithContext(ctx).Create(cake).Error
}

func (r *GormCakeRepository) Update(ctx context.Context, cake *models.Cake) error {
	return r.db.WithContext(ctx).Save(cake).Error
}

func (r *GormCakeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Cake{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// incrementStock adds qty back to a cake's stock. Order deletion and
// cancellation call it inside their restore transactions.
func incrementStock(tx *gorm.DB, id uuid.UUID, qty int) error {
	result := tx.Model(&models.Cake{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// decrementStock subtracts qty from a cake's stock as a single conditional
// update: the row is only touched when stock >= qty, so stock can never go
// negative and two concurrent checkouts cannot both consume the last unit.
func decrementStock(tx *gorm.DB, id uuid.UUID, qty int) error {
	result := tx.Model(&models.Cake{}).
		Where("id = ? AND stock >= ?", id, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Either the cake vanished or stock was too low; read back to tell.
		var cake models.Cake
		if err := tx.First(&cake, "id = ?", id).Error; err != nil {
			return err
		}
		return &InsufficientStockError{CakeID: id, Name: cake.Name, Available: cake.Stock}
	}
	return nil
}
