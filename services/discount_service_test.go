package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/barmor12/cakeshop-backend/models"
	"github.com/barmor12/cakeshop-backend/services"
)

type mockDiscountRepo struct {
	codes map[string]*models.DiscountCode
}

func newMockDiscountRepo() *mockDiscountRepo {
	return &mockDiscountRepo{codes: make(map[string]*models.DiscountCode)}
}

func (m *mockDiscountRepo) Create(_ context.Context, code *models.DiscountCode) error {
	if _, ok := m.codes[code.Code]; ok {
		return gorm.ErrDuplicatedKey
	}
	if code.ID == uuid.Nil {
		code.ID = uuid.New()
	}
	m.codes[code.Code] = code
	return nil
}

func (m *mockDiscountRepo) FindByCode(_ context.Context, code string) (*models.DiscountCode, error) {
	d, ok := m.codes[strings.ToUpper(code)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return d, nil
}

func (m *mockDiscountRepo) FindAll(_ context.Context, _, _ int) ([]models.DiscountCode, int64, error) {
	var out []models.DiscountCode
	for _, d := range m.codes {
		out = append(out, *d)
	}
	return out, int64(len(out)), nil
}

func (m *mockDiscountRepo) Delete(_ context.Context, code string) error {
	if _, ok := m.codes[code]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.codes, code)
	return nil
}

type discountFixture struct {
	svc       services.DiscountService
	discounts *mockDiscountRepo
	orders    *mockOrderRepo
	userID    uuid.UUID
}

func newDiscountFixture(t *testing.T) *discountFixture {
	t.Helper()
	discounts := newMockDiscountRepo()
	orders := newMockOrderRepo(newMockCakeRepo())
	logger, _ := zap.NewDevelopment()
	return &discountFixture{
		svc:       services.NewDiscountService(discounts, orders, nil, logger),
		discounts: discounts,
		orders:    orders,
		userID:    uuid.New(),
	}
}

func (f *discountFixture) addOrder(total float64) *models.Order {
	order := &models.Order{ID: uuid.New(), UserID: f.userID, TotalPrice: total, Status: models.OrderStatusPending}
	f.orders.orders[order.ID] = order
	return order
}

func (f *discountFixture) addCode(code string, pct float64, active bool, expiresAt *time.Time) {
	f.discounts.codes[code] = &models.DiscountCode{ID: uuid.New(), Code: code, Percentage: pct, Active: active, ExpiresAt: expiresAt}
}

func TestDiscountService_CreateCode(t *testing.T) {
	f := newDiscountFixture(t)
	expiry := time.Now().Add(72 * time.Hour)

	created, svcErr := f.svc.CreateCode(context.Background(), &models.CreateDiscountRequest{
		Code:       " summer10 ",
		Percentage: 10,
		ExpiresAt:  &expiry,
	})

	assert.Nil(t, svcErr)
	assert.Equal(t, "SUMMER10", created.Code, "codes are stored uppercase and trimmed")
	assert.True(t, created.Active)
}

func TestDiscountService_CreateCode_PastExpiry(t *testing.T) {
	f := newDiscountFixture(t)
	expiry := time.Now().Add(-time.Hour)

	_, svcErr := f.svc.CreateCode(context.Background(), &models.CreateDiscountRequest{
		Code:       "OLD",
		Percentage: 10,
		ExpiresAt:  &expiry,
	})

	assert.NotNil(t, svcErr)
	assert.Equal(t, 400, svcErr.StatusCode)
}

func TestDiscountService_CreateCode_Duplicate(t *testing.T) {
	f := newDiscountFixture(t)
	f.addCode("VIP20", 20, true, nil)

	_, svcErr := f.svc.CreateCode(context.Background(), &models.CreateDiscountRequest{
		Code:       "vip20",
		Percentage: 20,
	})

	assert.NotNil(t, svcErr)
	assert.Equal(t, 409, svcErr.StatusCode)
}

func TestDiscountService_ApplyToOrder(t *testing.T) {
	f := newDiscountFixture(t)
	order := f.addOrder(40)
	f.addCode("SAVE15", 15, true, nil)

	updated, svcErr := f.svc.ApplyToOrder(context.Background(), f.userID, order.ID, "save15")

	assert.Nil(t, svcErr)
	assert.Equal(t, 34.0, updated.TotalPrice)
	assert.Equal(t, "SAVE15", updated.DiscountCode)
}

func TestDiscountService_ApplyToOrder_RoundsTotal(t *testing.T) {
	f := newDiscountFixture(t)
	order := f.addOrder(9.99)
	f.addCode("THIRD", 33.33, true, nil)

	updated, svcErr := f.svc.ApplyToOrder(context.Background(), f.userID, order.ID, "THIRD")

	assert.Nil(t, svcErr)
	// 9.99 * 0.6667 = 6.660333, rounded half away from zero to cents.
	assert.Equal(t, 6.66, updated.TotalPrice)
}

func TestDiscountService_ApplyToOrder_SecondApplicationRejected(t *testing.T) {
	f := newDiscountFixture(t)
	order := f.addOrder(40)
	f.addCode("SAVE15", 15, true, nil)
	f.addCode("SAVE20", 20, true, nil)

	_, svcErr := f.svc.ApplyToOrder(context.Background(), f.userID, order.ID, "SAVE15")
	assert.Nil(t, svcErr)

	_, svcErr = f.svc.ApplyToOrder(context.Background(), f.userID, order.ID, "SAVE20")
	assert.NotNil(t, svcErr)
	assert.Equal(t, 409, svcErr.StatusCode)
	assert.Equal(t, 34.0, f.orders.orders[order.ID].TotalPrice, "total must not compound")
}

func TestDiscountService_ApplyToOrder_ExpiredCode(t *testing.T) {
	f := newDiscountFixture(t)
	order := f.addOrder(40)
	expired := time.Now().Add(-time.Minute)
	f.addCode("GONE", 50, true, &expired)

	_, svcErr := f.svc.ApplyToOrder(context.Background(), f.userID, order.ID, "GONE")

	assert.NotNil(t, svcErr)
	assert.Equal(t, 400, svcErr.StatusCode)
	assert.Equal(t, 40.0, f.orders.orders[order.ID].TotalPrice, "order must be unchanged")
}

func TestDiscountService_ApplyToOrder_InactiveCode(t *testing.T) {
	f := newDiscountFixture(t)
	order := f.addOrder(40)
	f.addCode("PAUSED", 25, false, nil)

	_, svcErr := f.svc.ApplyToOrder(context.Background(), f.userID, order.ID, "PAUSED")

	assert.NotNil(t, svcErr)
	assert.Equal(t, 400, svcErr.StatusCode)
}

func TestDiscountService_ApplyToOrder_UnknownCode(t *testing.T) {
	f := newDiscountFixture(t)
	order := f.addOrder(40)

	_, svcErr := f.svc.ApplyToOrder(context.Background(), f.userID, order.ID, "NOPE")

	assert.NotNil(t, svcErr)
	assert.Equal(t, 404, svcErr.StatusCode)
}

func TestDiscountService_ApplyToOrder_TerminalOrder(t *testing.T) {
	f := newDiscountFixture(t)
	order := f.addOrder(40)
	order.Status = models.OrderStatusDelivered
	f.addCode("SAVE15", 15, true, nil)

	_, svcErr := f.svc.ApplyToOrder(context.Background(), f.userID, order.ID, "SAVE15")

	assert.NotNil(t, svcErr)
	assert.Equal(t, 409, svcErr.StatusCode)
}

func TestDiscountService_ApplyToOrder_NotOwner(t *testing.T) {
	f := newDiscountFixture(t)
	order := f.addOrder(40)
	f.addCode("SAVE15", 15, true, nil)

	_, svcErr := f.svc.ApplyToOrder(context.Background(), uuid.New(), order.ID, "SAVE15")

	assert.NotNil(t, svcErr)
	assert.Equal(t, 404, svcErr.StatusCode)
}
