package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/barmor12/cakeshop-backend/repository"
)

const topCakesLimit = 10

// StatsOverview is the admin dashboard summary.
type StatsOverview struct {
	Totals      *repository.OrderTotals  `json:"totals"`
	ByStatus    []repository.StatusCount `json:"by_status"`
	TopCakes    []repository.CakeSales   `json:"top_cakes"`
	GeneratedAt time.Time                `json:"generated_at"`
}

// StatsService defines the interface for admin reporting.
type StatsService interface {
	Overview(ctx context.Context) (*StatsOverview, *ServiceError)
	OrdersPerDay(ctx context.Context, from, to time.Time) ([]repository.DailyOrders, *ServiceError)
}

type statsServiceImpl struct {
	stats  repository.StatsRepository
	logger *zap.Logger
}

func NewStatsService(stats repository.StatsRepository, logger *zap.Logger) StatsService {
	return &statsServiceImpl{stats: stats, logger: logger}
}

func (s *statsServiceImpl) Overview(ctx context.Context) (*StatsOverview, *ServiceError) {
	totals, err := s.stats.Totals(ctx)
	if err != nil {
		s.logger.Error("Failed to compute order totals", zap.Error(err))
		return nil, internal("Failed to compute statistics")
	}
	byStatus, err := s.stats.CountByStatus(ctx)
	if err != nil {
		s.logger.Error("Failed to count orders by status", zap.Error(err))
		return nil, internal("Failed to compute statistics")
	}
	topCakes, err := s.stats.UnitsSold(ctx, topCakesLimit)
	if err != nil {
		s.logger.Error("Failed to compute best sellers", zap.Error(err))
		return nil, internal("Failed to compute statistics")
	}

	return &StatsOverview{
		Totals:      totals,
		ByStatus:    byStatus,
		TopCakes:    topCakes,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

func (s *statsServiceImpl) OrdersPerDay(ctx context.Context, from, to time.Time) ([]repository.DailyOrders, *ServiceError) {
	if to.Before(from) {
		return nil, badRequest("End of range is before its start")
	}
	days, err := s.stats.OrdersPerDay(ctx, from, to)
	if err != nil {
		s.logger.Error("Failed to compute daily orders", zap.Error(err))
		return nil, internal("Failed to compute statistics")
	}
	return days, nil
}
