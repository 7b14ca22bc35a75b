package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/barmor12/cakeshop-backend/models"
	"github.com/barmor12/cakeshop-backend/repository"
)

// CartService defines the interface for cart business logic.
type CartService interface {
	GetCart(ctx context.Context, userID string) (*models.Cart, *ServiceError)
	AddItem(ctx context.Context, userID string, req *models.AddCartItemRequest) (*models.Cart, *ServiceError)
	UpdateItem(ctx context.Context, userID, itemID string, quantity int) (*models.Cart, *ServiceError)
	RemoveItem(ctx context.Context, userID, itemID string) (*models.Cart, *ServiceError)
	ClearCart(ctx context.Context, userID string) *ServiceError
}

type cartServiceImpl struct {
	carts  repository.CartRepository
	cakes  repository.CakeRepository
	logger *zap.Logger
}

func NewCartService(carts repository.CartRepository, cakes repository.CakeRepository, logger *zap.Logger) CartService {
	return &cartServiceImpl{carts: carts, cakes: cakes, logger: logger}
}

// GetCart returns the user's cart, or an empty one if none exists yet.
func (s *cartServiceImpl) GetCart(ctx context.Context, userID string) (*models.Cart, *ServiceError) {
	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load cart", zap.String("user_id", userID), zap.Error(err))
		return nil, internal("Failed to load cart")
	}
	if cart == nil {
		cart = &models.Cart{UserID: userID, Items: []models.CartItem{}}
	}
	return cart, nil
}

// AddItem adds a cake to the cart. Adding a cake already in the cart merges
// into the existing line instead of creating a second one.
func (s *cartServiceImpl) AddItem(ctx context.Context, userID string, req *models.AddCartItemRequest) (*models.Cart, *ServiceError) {
	cakeID, err := uuid.Parse(req.CakeID)
	if err != nil {
		return nil, badRequest("Invalid cake id")
	}
	if _, err := s.cakes.FindByID(ctx, cakeID); err != nil {
		return nil, notFound("Cake not found")
	}

	cart, svcErr := s.GetCart(ctx, userID)
	if svcErr != nil {
		return nil, svcErr
	}

	merged := false
	for i := range cart.Items {
		if cart.Items[i].CakeID == req.CakeID {
			cart.Items[i].Quantity += req.Quantity
			merged = true
			break
		}
	}
	if !merged {
		cart.Items = append(cart.Items, models.CartItem{
			ItemID:   uuid.NewString(),
			CakeID:   req.CakeID,
			Quantity: req.Quantity,
		})
	}

	if err := s.carts.SaveCart(ctx, cart); err != nil {
		s.logger.Error("Failed to save cart", zap.String("user_id", userID), zap.Error(err))
		return nil, internal("Failed to save cart")
	}
	return cart, nil
}

func (s *cartServiceImpl) UpdateItem(ctx context.Context, userID, itemID string, quantity int) (*models.Cart, *ServiceError) {
	if quantity <= 0 {
		return nil, badRequest("Quantity must be positive")
	}

	cart, svcErr := s.GetCart(ctx, userID)
	if svcErr != nil {
		return nil, svcErr
	}

	found := false
	for i := range cart.Items {
		if cart.Items[i].ItemID == itemID {
			cart.Items[i].Quantity = quantity
			found = true
			break
		}
	}
	if !found {
		return nil, notFound("Cart item not found")
	}

	if err := s.carts.SaveCart(ctx, cart); err != nil {
		s.logger.Error("Failed to save cart", zap.String("user_id", userID), zap.Error(err))
		return nil, internal("Failed to save cart")
	}
	return cart, nil
}

func (s *cartServiceImpl) RemoveItem(ctx context.Context, userID, itemID string) (*models.Cart, *ServiceError) {
	cart, svcErr := s.GetCart(ctx, userID)
	if svcErr != nil {
		return nil, svcErr
	}

	kept := cart.Items[:0]
	found := false
	for _, item := range cart.Items {
		if item.ItemID == itemID {
			found = true
			continue
		}
		kept = append(kept, item)
	}
	if !found {
		return nil, notFound("Cart item not found")
	}
	cart.Items = kept

	if err := s.carts.SaveCart(ctx, cart); err != nil {
		s.logger.Error("Failed to save cart", zap.String("user_id", userID), zap.Error(err))
		return nil, internal("Failed to save cart")
	}
	return cart, nil
}

func (s *cartServiceImpl) ClearCart(ctx context.Context, userID string) *ServiceError {
	if err := s.carts.DeleteCart(ctx, userID); err != nil {
		s.logger.Error("Failed to clear cart", zap.String("user_id", userID), zap.Error(err))
		return internal("Failed to clear cart")
	}
	return nil
}
