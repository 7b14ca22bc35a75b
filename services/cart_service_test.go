package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/barmor12/cakeshop-backend/models"
	"github.com/barmor12/cakeshop-backend/services"
)

type cartFixture struct {
	svc    services.CartService
	carts  *mockCartRepo
	cakes  *mockCakeRepo
	userID string
}

func newCartFixture(t *testing.T) *cartFixture {
	t.Helper()
	carts := newMockCartRepo()
	cakes := newMockCakeRepo()
	logger, _ := zap.NewDevelopment()
	return &cartFixture{
		svc:    services.NewCartService(carts, cakes, logger),
		carts:  carts,
		cakes:  cakes,
		userID: uuid.NewString(),
	}
}

func (f *cartFixture) addCake(name string) *models.Cake {
	cake := &models.Cake{ID: uuid.New(), Name: name, Price: 10, Cost: 4, Stock: 20}
	_ = f.cakes.Create(context.Background(), cake)
	return cake
}

func TestCartService_GetCart_EmptyByDefault(t *testing.T) {
	f := newCartFixture(t)

	cart, svcErr := f.svc.GetCart(context.Background(), f.userID)

	assert.Nil(t, svcErr)
	assert.Equal(t, f.userID, cart.UserID)
	assert.Empty(t, cart.Items)
	assert.NotNil(t, cart.Items, "items should serialize as [] rather than null")
}

func TestCartService_AddItem(t *testing.T) {
	f := newCartFixture(t)
	cake := f.addCake("Lemon Tart")

	cart, svcErr := f.svc.AddItem(context.Background(), f.userID, &models.AddCartItemRequest{
		CakeID:   cake.ID.String(),
		Quantity: 2,
	})

	assert.Nil(t, svcErr)
	assert.Len(t, cart.Items, 1)
	assert.Equal(t, cake.ID.String(), cart.Items[0].CakeID)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.NotEmpty(t, cart.Items[0].ItemID)
}

func TestCartService_AddItem_MergesSameCake(t *testing.T) {
	f := newCartFixture(t)
	cake := f.addCake("Lemon Tart")

	_, svcErr := f.svc.AddItem(context.Background(), f.userID, &models.AddCartItemRequest{CakeID: cake.ID.String(), Quantity: 2})
	assert.Nil(t, svcErr)
	cart, svcErr := f.svc.AddItem(context.Background(), f.userID, &models.AddCartItemRequest{CakeID: cake.ID.String(), Quantity: 3})
	assert.Nil(t, svcErr)

	assert.Len(t, cart.Items, 1, "same cake should merge into one line")
	assert.Equal(t, 5, cart.Items[0].Quantity)
}

func TestCartService_AddItem_UnknownCake(t *testing.T) {
	f := newCartFixture(t)

	_, svcErr := f.svc.AddItem(context.Background(), f.userID, &models.AddCartItemRequest{
		CakeID:   uuid.NewString(),
		Quantity: 1,
	})

	assert.NotNil(t, svcErr)
	assert.Equal(t, 404, svcErr.StatusCode)
}

func TestCartService_UpdateItem(t *testing.T) {
	f := newCartFixture(t)
	cake := f.addCake("Lemon Tart")
	cart, _ := f.svc.AddItem(context.Background(), f.userID, &models.AddCartItemRequest{CakeID: cake.ID.String(), Quantity: 2})
	itemID := cart.Items[0].ItemID

	updated, svcErr := f.svc.UpdateItem(context.Background(), f.userID, itemID, 7)

	assert.Nil(t, svcErr)
	assert.Equal(t, 7, updated.Items[0].Quantity)
}

func TestCartService_UpdateItem_NotFound(t *testing.T) {
	f := newCartFixture(t)

	_, svcErr := f.svc.UpdateItem(context.Background(), f.userID, uuid.NewString(), 3)

	assert.NotNil(t, svcErr)
	assert.Equal(t, 404, svcErr.StatusCode)
}

func TestCartService_RemoveItem(t *testing.T) {
	f := newCartFixture(t)
	cakeA := f.addCake("Lemon Tart")
	cakeB := f.addCake("Apple Pie")
	_, _ = f.svc.AddItem(context.Background(), f.userID, &models.AddCartItemRequest{CakeID: cakeA.ID.String(), Quantity: 1})
	cart, _ := f.svc.AddItem(context.Background(), f.userID, &models.AddCartItemRequest{CakeID: cakeB.ID.String(), Quantity: 1})

	remaining, svcErr := f.svc.RemoveItem(context.Background(), f.userID, cart.Items[0].ItemID)

	assert.Nil(t, svcErr)
	assert.Len(t, remaining.Items, 1)
	assert.Equal(t, cakeB.ID.String(), remaining.Items[0].CakeID)
}

func TestCartService_RemoveItem_NotFound(t *testing.T) {
	f := newCartFixture(t)

	_, svcErr := f.svc.RemoveItem(context.Background(), f.userID, uuid.NewString())

	assert.NotNil(t, svcErr)
	assert.Equal(t, 404, svcErr.StatusCode)
}

func TestCartService_ClearCart(t *testing.T) {
	f := newCartFixture(t)
	cake := f.addCake("Lemon Tart")
	_, _ = f.svc.AddItem(context.Background(), f.userID, &models.AddCartItemRequest{CakeID: cake.ID.String(), Quantity: 2})

	svcErr := f.svc.ClearCart(context.Background(), f.userID)

	assert.Nil(t, svcErr)
	cart, _ := f.svc.GetCart(context.Background(), f.userID)
	assert.Empty(t, cart.Items)
}
