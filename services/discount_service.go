package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/barmor12/cakeshop-backend/models"
	awspkg "github.com/barmor12/cakeshop-backend/pkg/aws"
	"github.com/barmor12/cakeshop-backend/repository"
)

// DiscountService defines the interface for discount-code business logic.
type DiscountService interface {
	CreateCode(ctx context.Context, req *models.CreateDiscountRequest) (*models.DiscountCode, *ServiceError)
	DeleteCode(ctx context.Context, code string) *ServiceError
	ListCodes(ctx context.Context, page, limit int) ([]models.DiscountCode, int64, *ServiceError)
	// ApplyToOrder validates the code and multiplies the order's total price
	// by (1 - percentage/100). A second application to the same order is
	// rejected; discounts never compound.
	ApplyToOrder(ctx context.Context, userID, orderID uuid.UUID, code string) (*models.Order, *ServiceError)
}

type discountServiceImpl struct {
	discounts repository.DiscountRepository
	orders    repository.OrderRepository
	metrics   *awspkg.MetricsClient
	logger    *zap.Logger
}

func NewDiscountService(
	discounts repository.DiscountRepository,
	orders repository.OrderRepository,
	metrics *awspkg.MetricsClient,
	logger *zap.Logger,
) DiscountService {
	return &discountServiceImpl{
		discounts: discounts,
		orders:    orders,
		metrics:   metrics,
		logger:    logger,
	}
}

func (s *discountServiceImpl) CreateCode(ctx context.Context, req *models.CreateDiscountRequest) (*models.DiscountCode, *ServiceError) {
	if req.ExpiresAt != nil && !req.ExpiresAt.After(time.Now()) {
		return nil, badRequest("Expiry date must be in the future")
	}

	code := &models.DiscountCode{
		Code:       strings.ToUpper(strings.TrimSpace(req.Code)),
		Percentage: req.Percentage,
		Active:     true,
		ExpiresAt:  req.ExpiresAt,
	}
	if err := s.discounts.Create(ctx, code); err != nil {
		if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "unique") {
			return nil, conflict("Discount code already exists")
		}
		s.logger.Error("Failed to create discount code", zap.Error(err))
		return nil, internal("Failed to create discount code")
	}

	s.logger.Info("Discount code created",
		zap.String("code", code.Code),
		zap.Float64("percentage", code.Percentage))
	return code, nil
}

func (s *discountServiceImpl) DeleteCode(ctx context.Context, code string) *ServiceError {
	if err := s.discounts.Delete(ctx, code); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("Discount code not found")
		}
		s.logger.Error("Failed to delete discount code", zap.String("code", code), zap.Error(err))
		return internal("Failed to delete discount code")
	}
	s.logger.Info("Discount code deleted", zap.String("code", code))
	return nil
}

func (s *discountServiceImpl) ListCodes(ctx context.Context, page, limit int) ([]models.DiscountCode, int64, *ServiceError) {
	codes, total, err := s.discounts.FindAll(ctx, page, limit)
	if err != nil {
		s.logger.Error("Failed to list discount codes", zap.Error(err))
		return nil, 0, internal("Failed to list discount codes")
	}
	return codes, total, nil
}

func (s *discountServiceImpl) ApplyToOrder(ctx context.Context, userID, orderID uuid.UUID, code string) (*models.Order, *ServiceError) {
	order, err := s.orders.FindByIDAndUserID(ctx, orderID, userID)
	if err != nil {
		return nil, notFound("Order not found")
	}

	if order.DiscountCode != "" {
		return nil, conflict("Order already has a discount applied")
	}
	if models.TerminalOrderStatus(order.Status) {
		return nil, conflict("Cannot apply a discount to a completed order")
	}

	discount, err := s.discounts.FindByCode(ctx, code)
	if err != nil {
		return nil, notFound("Discount code not found")
	}
	if !discount.IsValid(time.Now()) {
		return nil, badRequest("Discount code is expired or inactive")
	}

	order.TotalPrice = round2(order.TotalPrice * (1 - discount.Percentage/100))
	order.DiscountCode = discount.Code
	if err := s.orders.Update(ctx, order); err != nil {
		s.logger.Error("Failed to apply discount",
			zap.String("order_id", orderID.String()), zap.Error(err))
		return nil, internal("Failed to apply discount")
	}

	s.metrics.RecordCount(ctx, awspkg.MetricDiscountsApplied, nil)
	s.logger.Info("Discount applied",
		zap.String("order_id", orderID.String()),
		zap.String("code", discount.Code),
		zap.Float64("new_total", order.TotalPrice))
	return order, nil
}
