package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/barmor12/cakeshop-backend/models"
	awspkg "github.com/barmor12/cakeshop-backend/pkg/aws"
	"github.com/barmor12/cakeshop-backend/repository"
)

// Notifier enqueues order notifications for asynchronous delivery.
type Notifier interface {
	OrderPlaced(ctx context.Context, orderID, userID uuid.UUID) error
	OrderStatusChanged(ctx context.Context, orderID, userID uuid.UUID, status string) error
}

// OrderService defines the interface for order business logic.
type OrderService interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID, req *models.PlaceOrderRequest) (*models.Order, *ServiceError)
	GetOrder(ctx context.Context, orderID, userID uuid.UUID, isAdmin bool) (*models.Order, *ServiceError)
	GetUserOrders(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Order, int64, *ServiceError)
	GetAllOrders(ctx context.Context, page, limit int, status string) ([]models.Order, int64, *ServiceError)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (*models.Order, *ServiceError)
	DeleteOrder(ctx context.Context, orderID uuid.UUID) *ServiceError
}

type orderServiceImpl struct {
	orders    repository.OrderRepository
	cakes     repository.CakeRepository
	users     repository.UserRepository
	addresses repository.AddressRepository
	carts     repository.CartRepository
	notifier  Notifier
	metrics   *awspkg.MetricsClient
	logger    *zap.Logger
}

func NewOrderService(
	orders repository.OrderRepository,
	cakes repository.CakeRepository,
	users repository.UserRepository,
	addresses repository.AddressRepository,
	carts repository.CartRepository,
	notifier Notifier,
	metrics *awspkg.MetricsClient,
	logger *zap.Logger,
) OrderService {
	return &orderServiceImpl{
		orders:    orders,
		cakes:     cakes,
		users:     users,
		addresses: addresses,
		carts:     carts,
		notifier:  notifier,
		metrics:   metrics,
		logger:    logger,
	}
}

// round2 rounds to two decimal places. Totals are rounded after every line
// item, not once at the end, so repeated small amounts accumulate the same
// way they always have.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// PlaceOrder validates the request, computes totals, and persists the order
// together with the stock decrements in a single transaction. Only after the
// order is durably saved are the cart cleared and notifications enqueued,
// both best effort.
func (s *orderServiceImpl) PlaceOrder(ctx context.Context, userID uuid.UUID, req *models.PlaceOrderRequest) (*models.Order, *ServiceError) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound("User not found")
	}

	if len(req.Items) == 0 {
		return nil, badRequest("Order must contain at least one item")
	}

	cakeIDs := make([]uuid.UUID, 0, len(req.Items))
	for _, item := range req.Items {
		id, err := uuid.Parse(item.CakeID)
		if err != nil {
			return nil, badRequest(fmt.Sprintf("Invalid cake id %q", item.CakeID))
		}
		cakeIDs = append(cakeIDs, id)
	}

	cakes, err := s.cakes.FindByIDs(ctx, cakeIDs)
	if err != nil {
		s.logger.Error("Failed to load cakes for order", zap.Error(err))
		return nil, internal("Failed to place order")
	}
	cakeByID := make(map[uuid.UUID]*models.Cake, len(cakes))
	for i := range cakes {
		cakeByID[cakes[i].ID] = &cakes[i]
	}
	// All-or-nothing resolution: a single missing cake fails the request.
	for _, id := range cakeIDs {
		if _, ok := cakeByID[id]; !ok {
			return nil, notFound("One or more cakes were not found")
		}
	}

	var addressID *uuid.UUID
	if req.ShippingMethod == "delivery" || req.AddressID != "" {
		if req.AddressID == "" {
			return nil, badRequest("Delivery orders require an address")
		}
		id, err := uuid.Parse(req.AddressID)
		if err != nil {
			return nil, badRequest("Invalid address id")
		}
		address, err := s.addresses.FindByID(ctx, id)
		if err != nil {
			return nil, notFound("Address not found")
		}
		if address.UserID != userID {
			return nil, forbidden("Address does not belong to you")
		}
		addressID = &id
	}

	if req.ShippingMethod == "delivery" && req.DeliveryDate == nil {
		return nil, badRequest("Delivery orders require a delivery date")
	}
	if req.DeliveryDate != nil && !req.DeliveryDate.After(time.Now()) {
		return nil, badRequest("Delivery date must be in the future")
	}

	// Stock pre-check across the whole request before anything mutates. The
	// transactional decrement below re-checks, so concurrent checkouts can
	// still lose; this just reports the obvious cases before doing work.
	for i, item := range req.Items {
		cake := cakeByID[cakeIDs[i]]
		if item.Quantity > cake.Stock {
			s.metrics.RecordCount(ctx, awspkg.MetricInsufficientStock, nil)
			stockErr := &repository.InsufficientStockError{CakeID: cake.ID, Name: cake.Name, Available: cake.Stock}
			return nil, &ServiceError{StatusCode: http.StatusConflict, Message: stockErr.Error()}
		}
	}

	var totalPrice, totalRevenue float64
	items := make([]models.OrderItem, 0, len(req.Items))
	for i, item := range req.Items {
		cake := cakeByID[cakeIDs[i]]
		totalPrice = round2(totalPrice + cake.Price*float64(item.Quantity))
		totalRevenue = round2(totalRevenue + (cake.Price-cake.Cost)*float64(item.Quantity))
		items = append(items, models.OrderItem{
			CakeID:    cake.ID,
			Name:      cake.Name,
			UnitPrice: cake.Price,
			Quantity:  item.Quantity,
		})
	}

	order := &models.Order{
		UserID:         userID,
		AddressID:      addressID,
		TotalPrice:     totalPrice,
		TotalRevenue:   totalRevenue,
		PaymentMethod:  req.PaymentMethod,
		ShippingMethod: req.ShippingMethod,
		Status:         models.OrderStatusPending,
		DeliveryDate:   req.DeliveryDate,
		Items:          items,
	}

	if err := s.orders.CreateWithStockDecrements(ctx, order); err != nil {
		var stockErr *repository.InsufficientStockError
		if errors.As(err, &stockErr) {
			s.metrics.RecordCount(ctx, awspkg.MetricInsufficientStock, nil)
			return nil, &ServiceError{StatusCode: http.StatusConflict, Message: stockErr.Error()}
		}
		s.logger.Error("Failed to persist order", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, internal("Failed to place order")
	}

	s.metrics.RecordCount(ctx, awspkg.MetricOrdersPlaced, nil)
	s.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", userID.String()),
		zap.Float64("total_price", order.TotalPrice))

	// The order is durable; everything past this point is best effort.
	if err := s.carts.DeleteCart(ctx, userID.String()); err != nil {
		s.logger.Error("Failed to clear cart after order",
			zap.String("user_id", userID.String()), zap.Error(err))
	} else {
		s.metrics.RecordCount(ctx, awspkg.MetricCartCheckouts, nil)
	}
	if err := s.notifier.OrderPlaced(ctx, order.ID, user.ID); err != nil {
		s.logger.Error("Failed to enqueue order confirmation",
			zap.String("order_id", order.ID.String()), zap.Error(err))
	}

	return order, nil
}

func (s *orderServiceImpl) GetOrder(ctx context.Context, orderID, userID uuid.UUID, isAdmin bool) (*models.Order, *ServiceError) {
	var order *models.Order
	var err error
	if isAdmin {
		order, err = s.orders.FindByID(ctx, orderID)
	} else {
		order, err = s.orders.FindByIDAndUserID(ctx, orderID, userID)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Order not found")
		}
		s.logger.Error("Failed to load order", zap.String("order_id", orderID.String()), zap.Error(err))
		return nil, internal("Failed to load order")
	}
	return order, nil
}

func (s *orderServiceImpl) GetUserOrders(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Order, int64, *ServiceError) {
	orders, total, err := s.orders.FindByUserID(ctx, userID, page, limit)
	if err != nil {
		s.logger.Error("Failed to list user orders", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, 0, internal("Failed to list orders")
	}
	return orders, total, nil
}

func (s *orderServiceImpl) GetAllOrders(ctx context.Context, page, limit int, status string) ([]models.Order, int64, *ServiceError) {
	if status != "" && !models.ValidOrderStatus(status) {
		return nil, 0, badRequest(fmt.Sprintf("Unknown order status %q", status))
	}
	orders, total, err := s.orders.FindAll(ctx, page, limit, status)
	if err != nil {
		s.logger.Error("Failed to list orders", zap.Error(err))
		return nil, 0, internal("Failed to list orders")
	}
	return orders, total, nil
}

// UpdateStatus moves an order to a new status. Delivered and cancelled are
// terminal, and cancelling restores each line item's stock in the same
// transaction that records the new status. Each successful transition
// enqueues exactly one status-change notification for the order's owner.
func (s *orderServiceImpl) UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (*models.Order, *ServiceError) {
	if !models.ValidOrderStatus(status) {
		return nil, badRequest(fmt.Sprintf("Unknown order status %q", status))
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Order not found")
		}
		s.logger.Error("Failed to load order", zap.String("order_id", orderID.String()), zap.Error(err))
		return nil, internal("Failed to update order")
	}

	if models.TerminalOrderStatus(order.Status) {
		return nil, conflict(fmt.Sprintf("Order is already %s", order.Status))
	}
	if order.Status == status {
		return order, nil
	}

	order.Status = status
	if status == models.OrderStatusCancelled {
		// Cancelled orders give their inventory back, atomically with the
		// status change.
		err = s.orders.CancelWithStockRestore(ctx, order)
	} else {
		err = s.orders.Update(ctx, order)
	}
	if err != nil {
		s.logger.Error("Failed to update order status",
			zap.String("order_id", orderID.String()), zap.Error(err))
		return nil, internal("Failed to update order")
	}

	if status == models.OrderStatusCancelled {
		s.metrics.RecordCount(ctx, awspkg.MetricOrdersCancelled, nil)
	}
	s.logger.Info("Order status updated",
		zap.String("order_id", orderID.String()),
		zap.String("status", status))

	if err := s.notifier.OrderStatusChanged(ctx, order.ID, order.UserID, status); err != nil {
		s.logger.Error("Failed to enqueue status notification",
			zap.String("order_id", order.ID.String()), zap.Error(err))
	}
	return order, nil
}

// DeleteOrder removes an order and restores each line item's stock.
func (s *orderServiceImpl) DeleteOrder(ctx context.Context, orderID uuid.UUID) *ServiceError {
	if err := s.orders.DeleteWithStockRestore(ctx, orderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("Order not found")
		}
		s.logger.Error("Failed to delete order", zap.String("order_id", orderID.String()), zap.Error(err))
		return internal("Failed to delete order")
	}

	s.metrics.RecordCount(ctx, awspkg.MetricOrdersDeleted, nil)
	s.logger.Info("Order deleted, stock restored", zap.String("order_id", orderID.String()))
	return nil
}
