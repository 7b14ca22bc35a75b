package repository

import (
	"context"

	"github.com/barmor12/cakeshop-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	// CreateWithStockDecrements inserts the order and decrements the stock of
	// every line item's cake inside one transaction. When any conditional
	// decrement finds too little stock the whole transaction rolls back and an
	// *InsufficientStockError is returned, so no partial decrement survives.
	CreateWithStockDecrements(ctx context.Context, order *models.Order) error
	// DeleteWithStockRestore removes the order and adds each line item's
	// quantity back to its cake's stock inside one transaction.
	DeleteWithStockRestore(ctx context.Context, orderID uuid.UUID) error
	// CancelWithStockRestore persists the order's cancelled status and adds
	// each line item's quantity back to its cake's stock inside one
	// transaction, so a cancelled order never leaves inventory consumed.
	CancelWithStockRestore(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindByIDAndUserID(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Order, int64, error)
	FindAll(ctx context.Context, page, limit int, status string) ([]models.Order, int64, error)
	Update(ctx context.Context, order *models.Order) error
}

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new instance of GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) OrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) CreateWithStockDecrements(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range order.Items {
			if err := decrementStock(tx, item.CakeID, item.Quantity); err != nil {
				return err
			}
		}
		return tx.Create(order).Error
	})
}

func (r *GormOrderRepository) DeleteWithStockRestore(ctx context.Context, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Preload("Items").First(&order, "id = ?", orderID).Error; err != nil {
			return err
		}

		for _, item := range order.Items {
			if err := incrementStock(tx, item.CakeID, item.Quantity); err != nil {
				return err
			}
		}

		return tx.Delete(&order).Error
	})
}

func (r *GormOrderRepository) CancelWithStockRestore(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range order.Items {
			if err := incrementStock(tx, item.CakeID, item.Quantity); err != nil {
				return err
			}
		}
		result := tx.Model(&models.Order{}).
			Where("id = ?", order.ID).
			Update("status", order.Status)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *GormOrderRepository) FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", orderID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormOrderRepository) FindByIDAndUserID(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByUserID retrieves orders for a specific user with pagination
func (r *GormOrderRepository) FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Order, int64, error) {
	var orders []models.Order
	var total int64

	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Preload("Items").
		Offset(offset).
		Limit(limit).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// FindAll retrieves all orders with pagination, optionally filtered by status
func (r *GormOrderRepository) FindAll(ctx context.Context, page, limit int, status string) ([]models.Order, int64, error) {
	var orders []models.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Order{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Preload("Items").
		Offset(offset).
		Limit(limit).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *GormOrderRepository) Update(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}
