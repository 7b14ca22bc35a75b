package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/barmor12/cakeshop-backend/models"
	"github.com/barmor12/cakeshop-backend/repository"
)

// AddressService defines the interface for address business logic.
type AddressService interface {
	ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.Address, *ServiceError)
	CreateAddress(ctx context.Context, userID uuid.UUID, req *models.CreateAddressRequest) (*models.Address, *ServiceError)
	UpdateAddress(ctx context.Context, userID, addressID uuid.UUID, req *models.UpdateAddressRequest) (*models.Address, *ServiceError)
	DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) *ServiceError
	SetDefaultAddress(ctx context.Context, userID, addressID uuid.UUID) *ServiceError
}

type addressServiceImpl struct {
	addresses repository.AddressRepository
	logger    *zap.Logger
}

func NewAddressService(addresses repository.AddressRepository, logger *zap.Logger) AddressService {
	return &addressServiceImpl{addresses: addresses, logger: logger}
}

func (s *addressServiceImpl) ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.Address, *ServiceError) {
	addresses, err := s.addresses.FindByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list addresses", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, internal("Failed to list addresses")
	}
	return addresses, nil
}

func (s *addressServiceImpl) CreateAddress(ctx context.Context, userID uuid.UUID, req *models.CreateAddressRequest) (*models.Address, *ServiceError) {
	address := &models.Address{
		UserID:   userID,
		FullName: req.FullName,
		Phone:    req.Phone,
		Street:   req.Street,
		City:     req.City,
	}
	if err := s.addresses.Create(ctx, address); err != nil {
		s.logger.Error("Failed to create address", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, internal("Failed to create address")
	}

	if req.IsDefault {
		if err := s.addresses.SetDefault(ctx, address.ID, userID); err != nil {
			s.logger.Error("Failed to set default address",
				zap.String("address_id", address.ID.String()), zap.Error(err))
		} else {
			address.IsDefault = true
		}
	}
	return address, nil
}

func (s *addressServiceImpl) UpdateAddress(ctx context.Context, userID, addressID uuid.UUID, req *models.UpdateAddressRequest) (*models.Address, *ServiceError) {
	address, err := s.addresses.FindByID(ctx, addressID)
	if err != nil {
		return nil, notFound("Address not found")
	}
	if address.UserID != userID {
		return nil, forbidden("Address does not belong to you")
	}

	if req.FullName != nil {
		address.FullName = *req.FullName
	}
	if req.Phone != nil {
		address.Phone = *req.Phone
	}
	if req.Street != nil {
		address.Street = *req.Street
	}
	if req.City != nil {
		address.City = *req.City
	}

	if err := s.addresses.Update(ctx, address); err != nil {
		s.logger.Error("Failed to update address",
			zap.String("address_id", addressID.String()), zap.Error(err))
		return nil, internal("Failed to update address")
	}
	return address, nil
}

func (s *addressServiceImpl) DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) *ServiceError {
	if err := s.addresses.Delete(ctx, addressID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("Address not found")
		}
		s.logger.Error("Failed to delete address",
			zap.String("address_id", addressID.String()), zap.Error(err))
		return internal("Failed to delete address")
	}
	return nil
}

// SetDefaultAddress marks one address as the default. The repository clears
// the flag on the user's other addresses in the same transaction.
func (s *addressServiceImpl) SetDefaultAddress(ctx context.Context, userID, addressID uuid.UUID) *ServiceError {
	if err := s.addresses.SetDefault(ctx, addressID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("Address not found")
		}
		s.logger.Error("Failed to set default address",
			zap.String("address_id", addressID.String()), zap.Error(err))
		return internal("Failed to set default address")
	}
	return nil
}
