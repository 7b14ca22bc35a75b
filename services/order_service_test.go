package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/barmor12/cakeshop-backend/models"
	"github.com/barmor12/cakeshop-backend/repository"
	"github.com/barmor12/cakeshop-backend/services"
)

// --- Mock repositories ---

type mockCakeRepo struct {
	cakes map[uuid.UUID]*models.Cake
}

func newMockCakeRepo() *mockCakeRepo {
	return &mockCakeRepo{cakes: make(map[uuid.UUID]*models.Cake)}
}

func (m *mockCakeRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Cake, error) {
	c, ok := m.cakes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (m *mockCakeRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]models.Cake, error) {
	var out []models.Cake
	for _, id := range ids {
		if c, ok := m.cakes[id]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockCakeRepo) FindAll(_ context.Context, _, _ int) ([]models.Cake, int64, error) {
	var out []models.Cake
	for _, c := range m.cakes {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (m *mockCakeRepo) Create(_ context.Context, cake *models.Cake) error {
	if cake.ID == uuid.Nil {
		cake.ID = uuid.New()
	}
	m.cakes[cake.ID] = cake
	return nil
}

func (m *mockCakeRepo) Update(_ context.Context, cake *models.Cake) error {
	m.cakes[cake.ID] = cake
	return nil
}

func (m *mockCakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.cakes, id)
	return nil
}

type mockOrderRepo struct {
	cakes  *mockCakeRepo
	orders map[uuid.UUID]*models.Order
}

func newMockOrderRepo(cakes *mockCakeRepo) *mockOrderRepo {
	return &mockOrderRepo{cakes: cakes, orders: make(map[uuid.UUID]*models.Order)}
}

// CreateWithStockDecrements mirrors the transactional contract: either every
// decrement succeeds and the order is stored, or nothing changes at all.
func (m *mockOrderRepo) CreateWithStockDecrements(_ context.Context, order *models.Order) error {
	for _, item := range order.Items {
		cake, ok := m.cakes.cakes[item.CakeID]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		if cake.Stock < item.Quantity {
			return &repository.InsufficientStockError{CakeID: cake.ID, Name: cake.Name, Available: cake.Stock}
		}
	}
	for _, item := range order.Items {
		m.cakes.cakes[item.CakeID].Stock -= item.Quantity
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	m.orders[order.ID] = order
	return nil
}

func (m *mockOrderRepo) DeleteWithStockRestore(_ context.Context, orderID uuid.UUID) error {
	order, ok := m.orders[orderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for _, item := range order.Items {
		if c, ok := m.cakes.cakes[item.CakeID]; ok {
			c.Stock += item.Quantity
		}
	}
	delete(m.orders, orderID)
	return nil
}

func (m *mockOrderRepo) CancelWithStockRestore(_ context.Context, order *models.Order) error {
	if _, ok := m.orders[order.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	for _, item := range order.Items {
		if c, ok := m.cakes.cakes[item.CakeID]; ok {
			c.Stock += item.Quantity
		}
	}
	m.orders[order.ID] = order
	return nil
}

func (m *mockOrderRepo) FindByID(_ context.Context, orderID uuid.UUID) (*models.Order, error) {
	o, ok := m.orders[orderID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return o, nil
}

func (m *mockOrderRepo) FindByIDAndUserID(_ context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	o, ok := m.orders[orderID]
	if !ok || o.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return o, nil
}

func (m *mockOrderRepo) FindByUserID(_ context.Context, userID uuid.UUID, _, _ int) ([]models.Order, int64, error) {
	var out []models.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockOrderRepo) FindAll(_ context.Context, _, _ int, status string) ([]models.Order, int64, error) {
	var out []models.Order
	for _, o := range m.orders {
		if status == "" || o.Status == status {
			out = append(out, *o)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockOrderRepo) Update(_ context.Context, order *models.Order) error {
	if _, ok := m.orders[order.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.orders[order.ID] = order
	return nil
}

type mockUserRepo struct {
	users map[uuid.UUID]*models.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[uuid.UUID]*models.User)}
}

func (m *mockUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (m *mockUserRepo) Create(_ context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) Update(_ context.Context, user *models.User) error {
	m.users[user.ID] = user
	return nil
}

type mockAddressRepo struct {
	addresses map[uuid.UUID]*models.Address
}

func newMockAddressRepo() *mockAddressRepo {
	return &mockAddressRepo{addresses: make(map[uuid.UUID]*models.Address)}
}

func (m *mockAddressRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Address, error) {
	a, ok := m.addresses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (m *mockAddressRepo) FindByUserID(_ context.Context, userID uuid.UUID) ([]models.Address, error) {
	var out []models.Address
	for _, a := range m.addresses {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockAddressRepo) Create(_ context.Context, address *models.Address) error {
	if address.ID == uuid.Nil {
		address.ID = uuid.New()
	}
	m.addresses[address.ID] = address
	return nil
}

func (m *mockAddressRepo) Update(_ context.Context, address *models.Address) error {
	m.addresses[address.ID] = address
	return nil
}

func (m *mockAddressRepo) Delete(_ context.Context, id, userID uuid.UUID) error {
	a, ok := m.addresses[id]
	if !ok || a.UserID != userID {
		return gorm.ErrRecordNotFound
	}
	delete(m.addresses, id)
	return nil
}

func (m *mockAddressRepo) SetDefault(_ context.Context, id, userID uuid.UUID) error {
	target, ok := m.addresses[id]
	if !ok || target.UserID != userID {
		return gorm.ErrRecordNotFound
	}
	for _, a := range m.addresses {
		if a.UserID == userID {
			a.IsDefault = false
		}
	}
	target.IsDefault = true
	return nil
}

type mockCartRepo struct {
	carts map[string]*models.Cart
}

func newMockCartRepo() *mockCartRepo {
	return &mockCartRepo{carts: make(map[string]*models.Cart)}
}

func (m *mockCartRepo) GetCart(_ context.Context, userID string) (*models.Cart, error) {
	return m.carts[userID], nil
}

func (m *mockCartRepo) SaveCart(_ context.Context, cart *models.Cart) error {
	m.carts[cart.UserID] = cart
	return nil
}

func (m *mockCartRepo) DeleteCart(_ context.Context, userID string) error {
	delete(m.carts, userID)
	return nil
}

// --- Mock notifier ---

type mockNotifier struct {
	placed        []uuid.UUID
	statusChanges []string
}

func (m *mockNotifier) OrderPlaced(_ context.Context, orderID, _ uuid.UUID) error {
	m.placed = append(m.placed, orderID)
	return nil
}

func (m *mockNotifier) OrderStatusChanged(_ context.Context, _, _ uuid.UUID, status string) error {
	m.statusChanges = append(m.statusChanges, status)
	return nil
}

// --- Fixture ---

type orderFixture struct {
	svc      services.OrderService
	cakes    *mockCakeRepo
	orders   *mockOrderRepo
	users    *mockUserRepo
	addrs    *mockAddressRepo
	carts    *mockCartRepo
	notifier *mockNotifier
	user     *models.User
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	cakes := newMockCakeRepo()
	orders := newMockOrderRepo(cakes)
	users := newMockUserRepo()
	addrs := newMockAddressRepo()
	carts := newMockCartRepo()
	notifier := &mockNotifier{}
	logger, _ := zap.NewDevelopment()

	user := &models.User{ID: uuid.New(), Email: "dana@example.com", Name: "Dana", EmailVerified: true, Role: "user"}
	_ = users.Create(context.Background(), user)

	svc := services.NewOrderService(orders, cakes, users, addrs, carts, notifier, nil, logger)
	return &orderFixture{svc: svc, cakes: cakes, orders: orders, users: users, addrs: addrs, carts: carts, notifier: notifier, user: user}
}

func (f *orderFixture) addCake(name string, price, cost float64, stock int) *models.Cake {
	cake := &models.Cake{ID: uuid.New(), Name: name, Price: price, Cost: cost, Stock: stock}
	_ = f.cakes.Create(context.Background(), cake)
	return cake
}

// --- Tests ---

func TestPlaceOrder_TotalsStockAndCart(t *testing.T) {
	f := newOrderFixture(t)
	cakeA := f.addCake("Chocolate Cake", 10, 6, 5)
	cakeB := f.addCake("Cheesecake", 20, 12, 3)

	f.carts.carts[f.user.ID.String()] = &models.Cart{
		UserID: f.user.ID.String(),
		Items:  []models.CartItem{{ItemID: "line-1", CakeID: cakeA.ID.String(), Quantity: 2}},
	}

	order, svcErr := f.svc.PlaceOrder(context.Background(), f.user.ID, &models.PlaceOrderRequest{
		Items: []models.OrderItemRequest{
			{CakeID: cakeA.ID.String(), Quantity: 2},
			{CakeID: cakeB.ID.String(), Quantity: 1},
		},
		PaymentMethod:  "card",
		ShippingMethod: "pickup",
	})

	assert.Nil(t, svcErr)
	assert.NotNil(t, order)
	assert.Equal(t, 40.0, order.TotalPrice)
	assert.Equal(t, 16.0, order.TotalRevenue)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, 3, f.cakes.cakes[cakeA.ID].Stock)
	assert.Equal(t, 2, f.cakes.cakes[cakeB.ID].Stock)

	cart, _ := f.carts.GetCart(context.Background(), f.user.ID.String())
	assert.Nil(t, cart, "cart should be emptied after a successful order")
	assert.Len(t, f.notifier.placed, 1)
}

func TestPlaceOrder_SnapshotsLineItems(t *testing.T) {
	f := newOrderFixture(t)
	cake := f.addCake("Red Velvet", 15.5, 7, 10)

	order, svcErr := f.svc.PlaceOrder(context.Background(), f.user.ID, &models.PlaceOrderRequest{
		Items:          []models.OrderItemRequest{{CakeID: cake.ID.String(), Quantity: 2}},
		PaymentMethod:  "cash",
		ShippingMethod: "pickup",
	})
	assert.Nil(t, svcErr)

	// Later catalog changes must not alter the stored snapshot.
	cake.Price = 99
	cake.Name = "Renamed"

	stored := f.orders.orders[order.ID]
	assert.Equal(t, "Red Velvet", stored.Items[0].Name)
	assert.Equal(t, 15.5, stored.Items[0].UnitPrice)
	assert.Equal(t, 31.0, stored.TotalPrice)
}

func TestPlaceOrder_CumulativeRounding(t *testing.T) {
	f := newOrderFixture(t)
	// 3 x 0.1 exposes rounding: the running total is rounded after each line.
	c1 := f.addCake("Cookie A", 0.1, 0.05, 10)
	c2 := f.addCake("Cookie B", 0.1, 0.05, 10)
	c3 := f.addCake("Cookie C", 0.1, 0.05, 10)

	order, svcErr := f.svc.PlaceOrder(context.Background(), f.user.ID, &models.PlaceOrderRequest{
		Items: []models.OrderItemRequest{
			{CakeID: c1.ID.String(), Quantity: 1},
			{CakeID: c2.ID.String(), Quantity: 1},
			{CakeID: c3.ID.String(), Quantity: 1},
		},
		PaymentMethod:  "cash",
		ShippingMethod: "pickup",
	})
	assert.Nil(t, svcErr)
	assert.Equal(t, 0.3, order.TotalPrice)
}

func TestPlaceOrder_InsufficientStock(t *testing.T) {
	f := newOrderFixture(t)
	cake := f.addCake("Tiramisu", 12, 5, 5)

	order, svcErr := f.svc.PlaceOrder(context.Background(), f.user.ID, &models.PlaceOrderRequest{
		Items:          []models.OrderItemRequest{{CakeID: cake.ID.String(), Quantity: 10}},
		PaymentMethod:  "card",
		ShippingMethod: "pickup",
	})

	assert.Nil(t, order)
	assert.NotNil(t, svcErr)
	assert.Equal(t, 409, svcErr.StatusCode)
	assert.Contains(t, svcErr.Message, "Tiramisu")
	assert.Contains(t, svcErr.Message, "5")
	assert.Equal(t, 5, f.cakes.cakes[cake.ID].Stock, "stock must be unchanged")
	assert.Empty(t, f.notifier.placed)
}

func TestPlaceOrder_NoPartialDecrement(t *testing.T) {
	f := newOrderFixture(t)
	okCake := f.addCake("Brownie", 5, 2, 10)
	shortCake := f.addCake("Macaron", 8, 3, 1)

	_, svcErr := f.svc.PlaceOrder(context.Background(), f.user.ID, &models.PlaceOrderRequest{
		Items: []models.OrderItemRequest{
			{CakeID: okCake.ID.String(), Quantity: 2},
			{CakeID: shortCake.ID.String(), Quantity: 5},
		},
		PaymentMethod:  "card",
		ShippingMethod: "pickup",
	})

	assert.NotNil(t, svcErr)
	assert.Equal(t, 409, svcErr.StatusCode)
	assert.Equal(t, 10, f.cakes.cakes[okCake.ID].Stock, "earlier line must not be decremented")
	assert.Equal(t, 1, f.cakes.cakes[shortCake.ID].Stock)
	assert.Empty(t, f.orders.orders)
}

func TestPlaceOrder_UnknownCake(t *testing.T) {
	f := newOrderFixture(t)
	cake := f.addCake("Carrot Cake", 9, 4, 5)

	_, svcErr := f.svc.PlaceOrder(context.Background(), f.user.ID, &models.PlaceOrderRequest{
		Items: []models.OrderItemRequest{
			{CakeID: cake.ID.String(), Quantity: 1},
			{CakeID: uuid.NewString(), Quantity: 1},
		},
		PaymentMethod:  "card",
		ShippingMethod: "pickup",
	})

	assert.NotNil(t, svcErr)
	assert.Equal(t, 404, svcErr.StatusCode)
	assert.Equal(t, 5, f.cakes.cakes[cake.ID].Stock)
}

func TestPlaceOrder_UnknownUser(t *testing.T) {
	f := newOrderFixture(t)
	cake := f.addCake("Banana Bread", 6, 2, 5)

	_, svcErr := f.svc.PlaceOrder(context.Background(), uuid.New(), &models.PlaceOrderRequest{
		Items:          []models.OrderItemRequest{{CakeID: cake.ID.String(), Quantity: 1}},
		PaymentMethod:  "card",
		ShippingMethod: "pickup",
	})

	assert.NotNil(t, svcErr)
	assert.Equal(t, 404, svcErr.StatusCode)
}

func TestPlaceOrder_DeliveryRequiresOwnAddress(t *testing.T) {
	f := newOrderFixture(t)
	cake := f.addCake("Eclair", 4, 2, 5)
	future := time.Now().Add(48 * time.Hour)

	// No address at all.
	_, svcErr := f.svc.PlaceOrder(context.Background(), f.user.ID, &models.PlaceOrderRequest{
		Items:          []models.OrderItemRequest{{CakeID: cake.ID.String(), Quantity: 1}},
		PaymentMethod:  "card",
		ShippingMethod: "delivery",
		DeliveryDate:   &future,
	})
	assert.NotNil(t, svcErr)
	assert.Equal(t, 400, svcErr.StatusCode)

	// Someone else's address.
	otherAddress := &models.Address{ID: uuid.New(), UserID: uuid.New(), FullName: "Someone Else", Phone: "050", Street: "Main 1", City: "Tel Aviv"}
	_ = f.addrs.Create(context.Background(), otherAddress)

	_, svcErr = f.svc.PlaceOrder(context.Background(), f.user.ID, &models.PlaceOrderRequest{
		Items:          []models.OrderItemRequest{{CakeID: cake.ID.String(), Quantity: 1}},
		PaymentMethod:  "card",
		ShippingMethod: "delivery",
		AddressID:      otherAddress.ID.String(),
		DeliveryDate:   &future,
	})
	assert.NotNil(t, svcErr)
	assert.Equal(t, 403, svcErr.StatusCode)
	assert.Equal(t, 5, f.cakes.cakes[cake.ID].Stock)
}

func TestPlaceOrder_DeliveryDateMustBeFuture(t *testing.T) {
	f := newOrderFixture(t)
	cake := f.addCake("Pavlova", 18, 8, 5)
	address := &models.Address{ID: uuid.New(), UserID: f.user.ID, FullName: "Dana", Phone: "050", Street: "Herzl 2", City: "Haifa"}
	_ = f.addrs.Create(context.Background(), address)
	past := time.Now().Add(-time.Hour)

	_, svcErr := f.svc.PlaceOrder(context.Background(), f.user.ID, &models.PlaceOrderRequest{
		Items:          []models.OrderItemRequest{{CakeID: cake.ID.String(), Quantity: 1}},
		PaymentMethod:  "card",
		ShippingMethod: "delivery",
		AddressID:      address.ID.String(),
		DeliveryDate:   &past,
	})

	assert.NotNil(t, svcErr)
	assert.Equal(t, 400, svcErr.StatusCode)
}

func TestUpdateStatus_NotifiesExactlyOnce(t *testing.T) {
	f := newOrderFixture(t)
	cake := f.addCake("Opera Cake", 25, 10, 5)

	order, svcErr := f.svc.PlaceOrder(context.Background(), f.user.ID, &models.PlaceOrderRequest{
		Items:          []models.OrderItemRequest{{CakeID: cake.ID.String(), Quantity: 1}},
		PaymentMethod:  "card",
		ShippingMethod: "pickup",
	})
	assert.Nil(t, svcErr)

	updated, svcErr := f.svc.UpdateStatus(context.Background(), order.ID, models.OrderStatusDelivered)
	assert.Nil(t, svcErr)
	assert.Equal(t, models.OrderStatusDelivered, updated.Status)
	assert.Equal(t, []string{models.OrderStatusDelivered}, f.notifier.statusChanges)
}

func TestUpdateStatus_RejectsInvalidAndTerminal(t *testing.T) {
	f := newOrderFixture(t)
	cake := f.addCake("Linzer Torte", 14, 6, 5)

	order, _ := f.svc.PlaceOrder(context.Background(), f.user.ID, &models.PlaceOrderRequest{
		Items:          []models.OrderItemRequest{{CakeID: cake.ID.String(), Quantity: 1}},
		PaymentMethod:  "card",
		ShippingMethod: "pickup",
	})

	_, svcErr := f.svc.UpdateStatus(context.Background(), order.ID, "shipped")
	assert.NotNil(t, svcErr)
	assert.Equal(t, 400, svcErr.StatusCode)

	_, svcErr = f.svc.UpdateStatus(context.Background(), order.ID, models.OrderStatusCancelled)
	assert.Nil(t, svcErr)

	// Cancelled is terminal.
	_, svcErr = f.svc.UpdateStatus(context.Background(), order.ID, models.OrderStatusConfirmed)
	assert.NotNil(t, svcErr)
	assert.Equal(t, 409, svcErr.StatusCode)
}

func TestUpdateStatus_CancelRestoresStock(t *testing.T) {
	f := newOrderFixture(t)
	cake := f.addCake("Sacher Torte", 22, 9, 5)

	order, svcErr := f.svc.PlaceOrder(context.Background(), f.user.ID, &models.PlaceOrderRequest{
		Items:          []models.OrderItemRequest{{CakeID: cake.ID.String(), Quantity: 3}},
		PaymentMethod:  "card",
		ShippingMethod: "pickup",
	})
	assert.Nil(t, svcErr)
	assert.Equal(t, 2, f.cakes.cakes[cake.ID].Stock)

	updated, svcErr := f.svc.UpdateStatus(context.Background(), order.ID, models.OrderStatusCancelled)
	assert.Nil(t, svcErr)
	assert.Equal(t, models.OrderStatusCancelled, updated.Status)
	assert.Equal(t, 5, f.cakes.cakes[cake.ID].Stock, "cancelling must give the inventory back")
	assert.Equal(t, []string{models.OrderStatusCancelled}, f.notifier.statusChanges)
}

func TestDeleteOrder_RestoresStock(t *testing.T) {
	f := newOrderFixture(t)
	cakeA := f.addCake("Strudel", 7, 3, 6)
	cakeB := f.addCake("Baklava", 9, 4, 4)

	order, svcErr := f.svc.PlaceOrder(context.Background(), f.user.ID, &models.PlaceOrderRequest{
		Items: []models.OrderItemRequest{
			{CakeID: cakeA.ID.String(), Quantity: 3},
			{CakeID: cakeB.ID.String(), Quantity: 2},
		},
		PaymentMethod:  "card",
		ShippingMethod: "pickup",
	})
	assert.Nil(t, svcErr)
	assert.Equal(t, 3, f.cakes.cakes[cakeA.ID].Stock)
	assert.Equal(t, 2, f.cakes.cakes[cakeB.ID].Stock)

	svcErr = f.svc.DeleteOrder(context.Background(), order.ID)
	assert.Nil(t, svcErr)
	assert.Equal(t, 6, f.cakes.cakes[cakeA.ID].Stock)
	assert.Equal(t, 4, f.cakes.cakes[cakeB.ID].Stock)
}

func TestDeleteOrder_NotFound(t *testing.T) {
	f := newOrderFixture(t)

	svcErr := f.svc.DeleteOrder(context.Background(), uuid.New())
	assert.NotNil(t, svcErr)
	assert.Equal(t, 404, svcErr.StatusCode)
}

func TestGetOrder_OwnershipEnforced(t *testing.T) {
	f := newOrderFixture(t)
	cake := f.addCake("Madeleine", 3, 1, 10)

	order, _ := f.svc.PlaceOrder(context.Background(), f.user.ID, &models.PlaceOrderRequest{
		Items:          []models.OrderItemRequest{{CakeID: cake.ID.String(), Quantity: 1}},
		PaymentMethod:  "card",
		ShippingMethod: "pickup",
	})

	stranger := uuid.New()
	_, svcErr := f.svc.GetOrder(context.Background(), order.ID, stranger, false)
	assert.NotNil(t, svcErr)
	assert.Equal(t, 404, svcErr.StatusCode)

	// Admins can read anyone's order.
	got, svcErr := f.svc.GetOrder(context.Background(), order.ID, stranger, true)
	assert.Nil(t, svcErr)
	assert.Equal(t, order.ID, got.ID)
}
