package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/barmor12/cakeshop-backend/models"
	"github.com/barmor12/cakeshop-backend/repository"
)

// Broadcaster enqueues an admin push broadcast for asynchronous delivery.
type Broadcaster interface {
	AdminBroadcast(ctx context.Context, title, body string) error
}

// PushService defines the interface for device registration and broadcasts.
type PushService interface {
	RegisterDevice(ctx context.Context, userID uuid.UUID, req *models.RegisterDeviceRequest) *ServiceError
	UnregisterDevice(ctx context.Context, token string) *ServiceError
	Broadcast(ctx context.Context, title, body string) *ServiceError
}

type pushServiceImpl struct {
	deviceTokens repository.DeviceTokenRepository
	broadcaster  Broadcaster
	logger       *zap.Logger
}

func NewPushService(deviceTokens repository.DeviceTokenRepository, broadcaster Broadcaster, logger *zap.Logger) PushService {
	return &pushServiceImpl{deviceTokens: deviceTokens, broadcaster: broadcaster, logger: logger}
}

func (s *pushServiceImpl) RegisterDevice(ctx context.Context, userID uuid.UUID, req *models.RegisterDeviceRequest) *ServiceError {
	token := &models.DeviceToken{
		UserID:   userID,
		Token:    req.Token,
		Platform: req.Platform,
	}
	if err := s.deviceTokens.Register(ctx, token); err != nil {
		s.logger.Error("Failed to register device token",
			zap.String("user_id", userID.String()), zap.Error(err))
		return internal("Failed to register device")
	}
	s.logger.Info("Device token registered",
		zap.String("user_id", userID.String()),
		zap.String("platform", req.Platform))
	return nil
}

func (s *pushServiceImpl) UnregisterDevice(ctx context.Context, token string) *ServiceError {
	if err := s.deviceTokens.Delete(ctx, token); err != nil {
		s.logger.Error("Failed to unregister device token", zap.Error(err))
		return internal("Failed to unregister device")
	}
	return nil
}

func (s *pushServiceImpl) Broadcast(ctx context.Context, title, body string) *ServiceError {
	if err := s.broadcaster.AdminBroadcast(ctx, title, body); err != nil {
		s.logger.Error("Failed to enqueue broadcast", zap.Error(err))
		return internal("Failed to send broadcast")
	}
	s.logger.Info("Broadcast enqueued", zap.String("title", title))
	return nil
}
