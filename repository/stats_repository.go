package repository

import (
	"context"
	"time"

	"github.com/barmor12/cakeshop-backend/models"

	"gorm.io/gorm"
)

// OrderTotals aggregates price and revenue over non-cancelled orders.
type OrderTotals struct {
	Orders  int64   `json:"orders"`
	Income  float64 `json:"income"`
	Revenue float64 `json:"revenue"`
}

// StatusCount is the number of orders currently in one status.
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// CakeSales is the units sold of one cake across all orders.
type CakeSales struct {
	CakeID string `json:"cake_id"`
	Name   string `json:"name"`
	Units  int64  `json:"units"`
}

// DailyOrders is the order count and income for one calendar day.
type DailyOrders struct {
	Day    time.Time `json:"day"`
	Orders int64     `json:"orders"`
	Income float64   `json:"income"`
}

// StatsRepository provides the aggregate queries behind admin reporting.
type StatsRepository interface {
	Totals(ctx context.Context) (*OrderTotals, error)
	CountByStatus(ctx context.Context) ([]StatusCount, error)
	UnitsSold(ctx context.Context, limit int) ([]CakeSales, error)
	OrdersPerDay(ctx context.Context, from, to time.Time) ([]DailyOrders, error)
}

// GormStatsRepository implements StatsRepository using GORM
type GormStatsRepository struct {
	db *gorm.DB
}

func NewGormStatsRepository(db *gorm.DB) StatsRepository {
	return &GormStatsRepository{db: db}
}

func (r *GormStatsRepository) Totals(ctx context.Context) (*OrderTotals, error) {
	var totals OrderTotals
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("COUNT(*) AS orders, COALESCE(SUM(total_price), 0) AS income, COALESCE(SUM(total_revenue), 0) AS revenue").
		Where("status <> ?", models.OrderStatusCancelled).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return &totals, nil
}

func (r *GormStatsRepository) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	var counts []StatusCount
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Order("status").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *GormStatsRepository) UnitsSold(ctx context.Context, limit int) ([]CakeSales, error) {
	var sales []CakeSales
	err := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Select("order_items.cake_id AS cake_id, order_items.name AS name, SUM(order_items.quantity) AS units").
		Joins("JOIN orders ON orders.id = order_items.order_id AND orders.deleted_at IS NULL").
		Where("orders.status <> ?", models.OrderStatusCancelled).
		Group("order_items.cake_id, order_items.name").
		Order("units DESC").
		Limit(limit).
		Scan(&sales).Error
	if err != nil {
		return nil, err
	}
	return sales, nil
}

func (r *GormStatsRepository) OrdersPerDay(ctx context.Context, from, to time.Time) ([]DailyOrders, error) {
	var days []DailyOrders
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("DATE_TRUNC('day', created_at) AS day, COUNT(*) AS orders, COALESCE(SUM(total_price), 0) AS income").
		Where("created_at >= ? AND created_at < ?", from, to).
		Group("day").
		Order("day").
		Scan(&days).Error
	if err != nil {
		return nil, err
	}
	return days, nil
}
