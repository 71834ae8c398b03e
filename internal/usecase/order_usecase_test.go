package usecase

import (
	"context"
	"net/http"
	"testing"

	"storefront/internal/domain/model"
	"storefront/internal/events"
	"storefront/internal/gateway"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type orderTestDeps struct {
	orders    *OrderRepoMock
	items     *OrderItemRepoMock
	cartItems *CartItemRepoMock
	inventory *InventoryRepoMock
	products  *ProductRepoMock
	addresses *AddressRepoMock
	rates     *RateProviderMock
	publisher *PublisherMock
	uc        *OrderUsecase
}

func newOrderTestDeps() *orderTestDeps {
	d := &orderTestDeps{
		orders:    &OrderRepoMock{},
		items:     &OrderItemRepoMock{},
		cartItems: &CartItemRepoMock{},
		inventory: &InventoryRepoMock{},
		products:  &ProductRepoMock{},
		addresses: &AddressRepoMock{},
		rates:     &RateProviderMock{},
		publisher: &PublisherMock{},
	}

	tx := &TxManagerMock{Repos: &TxReposMock{
		orders:     d.orders,
		orderItems: d.items,
		cartItems:  d.cartItems,
		inventory:  d.inventory,
		products:   d.products,
	}}

	d.uc = NewOrderUsecase(tx, d.addresses, d.rates, d.publisher, "100")
	return d
}

func assertHTTPStatus(t *testing.T, err error, want int) {
	t.Helper()
	he, ok := AsHTTPError(err)
	assert.True(t, ok, "expected HTTPError, got %v", err)
	if ok {
		assert.Equal(t, want, he.Status)
	}
}

func TestPlaceOrder_Success(t *testing.T) {
	d := newOrderTestDeps()
	ctx := context.Background()

	price := decimal.NewFromInt(1500)

	d.addresses.On("FindByID", ctx, int64(10)).Return(model.Address{
		ID: 10, UserID: 1, PostalCode: "150-0001",
	}, nil)

	d.orders.On("FindByIdempotencyKey", ctx, int64(1), "key-1").Return(model.Order{}, false, nil)

	d.cartItems.On("ListByUserID", ctx, int64(1)).Return([]model.CartItem{
		{ID: 5, UserID: 1, ProductID: 100, Quantity: 2, UnitPriceSnapshot: price},
	}, nil)

	d.products.On("FindByID", ctx, int64(100)).Return(model.Product{
		ID: 100, Name: "コーヒー豆", Price: price, Stock: 10, WeightGrams: 500, IsActive: true,
	}, nil)

	d.inventory.On("DecreaseStockIfEnough", ctx, int64(100), int64(2)).Return(true, nil)

	d.rates.On("GetRates", ctx, mock.MatchedBy(func(q gateway.RateQuery) bool {
		// 500g×2 = 1000g なので請求重量は1kg
		return q.Origin == "100" && q.Destination == "150" && q.WeightGrams == 1000 && q.Courier == "jne"
	})).Return([]gateway.Rate{
		{Service: "REG", Cost: decimal.NewFromInt(10000), ETD: "2-3"},
	}, nil)

	d.orders.On("Create", ctx, mock.MatchedBy(func(o model.Order) bool {
		return o.UserID == 1 &&
			o.Status == model.OrderStatusPending &&
			o.ItemsTotal.Equal(decimal.NewFromInt(3000)) &&
			o.ShippingFee.Equal(decimal.NewFromInt(10000)) &&
			o.TotalPrice.Equal(decimal.NewFromInt(13000)) &&
			o.IdempotencyKey == "key-1"
	})).Return(int64(77), nil)

	d.items.On("CreateBulk", ctx, int64(77), mock.Anything).Return(nil)
	d.cartItems.On("DeleteAllByUserID", ctx, int64(1)).Return(nil)

	out, err := d.uc.PlaceOrder(ctx, 1, PlaceOrderInput{
		AddressID:       10,
		CourierCode:     "jne",
		ShippingService: "REG",
		IdempotencyKey:  "key-1",
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(77), out.ID)
	assert.Equal(t, string(model.OrderStatusPending), out.Status)
	assert.True(t, out.TotalPrice.Equal(decimal.NewFromInt(13000)))
	assert.Len(t, out.Items, 1)

	// カートは空になり、イベントが飛ぶ
	d.cartItems.AssertCalled(t, "DeleteAllByUserID", ctx, int64(1))
	assert.Equal(t, []string{events.EventOrderPlaced}, d.publisher.Published)
}

func TestPlaceOrder_OutOfStock(t *testing.T) {
	d := newOrderTestDeps()
	ctx := context.Background()

	d.addresses.On("FindByID", ctx, int64(10)).Return(model.Address{ID: 10, UserID: 1, PostalCode: "1500001"}, nil)
	d.orders.On("FindByIdempotencyKey", ctx, int64(1), "key-1").Return(model.Order{}, false, nil)
	d.cartItems.On("ListByUserID", ctx, int64(1)).Return([]model.CartItem{
		{ID: 5, UserID: 1, ProductID: 100, Quantity: 5, UnitPriceSnapshot: decimal.NewFromInt(1000)},
	}, nil)
	d.products.On("FindByID", ctx, int64(100)).Return(model.Product{ID: 100, Stock: 2, IsActive: true}, nil)

	// 条件付き減算が失敗（stock < qty）
	d.inventory.On("DecreaseStockIfEnough", ctx, int64(100), int64(5)).Return(false, nil)

	_, err := d.uc.PlaceOrder(ctx, 1, PlaceOrderInput{
		AddressID: 10, CourierCode: "jne", ShippingService: "REG", IdempotencyKey: "key-1",
	})

	assertHTTPStatus(t, err, http.StatusBadRequest)
	// 注文は作られず、イベントも飛ばない
	d.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Empty(t, d.publisher.Published)
}

func TestPlaceOrder_IdempotencyReturnsExisting(t *testing.T) {
	d := newOrderTestDeps()
	ctx := context.Background()

	existing := model.Order{
		ID: 42, UserID: 1, Status: model.OrderStatusPending,
		TotalPrice: decimal.NewFromInt(9999), IdempotencyKey: "key-1",
	}

	d.addresses.On("FindByID", ctx, int64(10)).Return(model.Address{ID: 10, UserID: 1, PostalCode: "1500001"}, nil)
	d.orders.On("FindByIdempotencyKey", ctx, int64(1), "key-1").Return(existing, true, nil)
	d.items.On("ListByOrderID", ctx, int64(42)).Return([]model.OrderItem{}, nil)

	out, err := d.uc.PlaceOrder(ctx, 1, PlaceOrderInput{
		AddressID: 10, CourierCode: "jne", ShippingService: "REG", IdempotencyKey: "key-1",
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(42), out.ID)

	// 二重に作られない・在庫も触らない・イベントも飛ばない
	d.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	d.inventory.AssertNotCalled(t, "DecreaseStockIfEnough", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, d.publisher.Published)
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	d := newOrderTestDeps()
	ctx := context.Background()

	d.addresses.On("FindByID", ctx, int64(10)).Return(model.Address{ID: 10, UserID: 1, PostalCode: "1500001"}, nil)
	d.orders.On("FindByIdempotencyKey", ctx, int64(1), "key-1").Return(model.Order{}, false, nil)
	d.cartItems.On("ListByUserID", ctx, int64(1)).Return([]model.CartItem{}, nil)

	_, err := d.uc.PlaceOrder(ctx, 1, PlaceOrderInput{
		AddressID: 10, CourierCode: "jne", ShippingService: "REG", IdempotencyKey: "key-1",
	})

	assertHTTPStatus(t, err, http.StatusBadRequest)
}

func TestPlaceOrder_ForeignAddress(t *testing.T) {
	d := newOrderTestDeps()
	ctx := context.Background()

	//他人(user_id=2)の住所
	d.addresses.On("FindByID", ctx, int64(10)).Return(model.Address{ID: 10, UserID: 2, PostalCode: "1500001"}, nil)

	_, err := d.uc.PlaceOrder(ctx, 1, PlaceOrderInput{
		AddressID: 10, CourierCode: "jne", ShippingService: "REG", IdempotencyKey: "key-1",
	})

	assertHTTPStatus(t, err, http.StatusForbidden)
}

func TestPlaceOrder_MissingIdempotencyKey(t *testing.T) {
	d := newOrderTestDeps()

	_, err := d.uc.PlaceOrder(context.Background(), 1, PlaceOrderInput{
		AddressID: 10, CourierCode: "jne", ShippingService: "REG", IdempotencyKey: "",
	})

	assertHTTPStatus(t, err, http.StatusBadRequest)
}

func TestCancelMyOrder_RestocksPendingOrder(t *testing.T) {
	d := newOrderTestDeps()
	ctx := context.Background()

	d.orders.On("FindByID", ctx, int64(42)).Return(model.Order{
		ID: 42, UserID: 1, Status: model.OrderStatusPending, TotalPrice: decimal.NewFromInt(3000),
	}, nil)
	d.items.On("ListByOrderID", ctx, int64(42)).Return([]model.OrderItem{
		{ProductID: 100, Quantity: 2},
		{ProductID: 200, Quantity: 1},
	}, nil)
	d.inventory.On("IncreaseStock", ctx, int64(100), int64(2)).Return(nil)
	d.inventory.On("IncreaseStock", ctx, int64(200), int64(1)).Return(nil)
	d.orders.On("UpdateStatus", ctx, int64(42), model.OrderStatusCanceled).Return(nil)

	out, err := d.uc.CancelMyOrder(ctx, 1, 42)

	assert.NoError(t, err)
	assert.Equal(t, string(model.OrderStatusCanceled), out.Status)
	d.inventory.AssertCalled(t, "IncreaseStock", ctx, int64(100), int64(2))
	d.inventory.AssertCalled(t, "IncreaseStock", ctx, int64(200), int64(1))
	assert.Equal(t, []string{events.EventOrderCanceled}, d.publisher.Published)
}

func TestCancelMyOrder_PaidOrderConflicts(t *testing.T) {
	d := newOrderTestDeps()
	ctx := context.Background()

	d.orders.On("FindByID", ctx, int64(42)).Return(model.Order{
		ID: 42, UserID: 1, Status: model.OrderStatusPaid,
	}, nil)

	_, err := d.uc.CancelMyOrder(ctx, 1, 42)

	assertHTTPStatus(t, err, http.StatusConflict)
	d.inventory.AssertNotCalled(t, "IncreaseStock", mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelMyOrder_ForeignOrderHidden(t *testing.T) {
	d := newOrderTestDeps()
	ctx := context.Background()

	d.orders.On("FindByID", ctx, int64(42)).Return(model.Order{
		ID: 42, UserID: 9, Status: model.OrderStatusPending,
	}, nil)

	_, err := d.uc.CancelMyOrder(ctx, 1, 42)

	//他人の注文は404で隠す
	assertHTTPStatus(t, err, http.StatusNotFound)
}

func TestGetMyOrderDetail_NotFound(t *testing.T) {
	d := newOrderTestDeps()
	ctx := context.Background()

	d.orders.On("FindByID", ctx, int64(42)).Return(model.Order{}, repo.ErrNotFound)

	_, err := d.uc.GetMyOrderDetail(ctx, 1, 42)
	assertHTTPStatus(t, err, http.StatusNotFound)
}

func TestDestinationCode(t *testing.T) {
	assert.Equal(t, "150", destinationCode(model.Address{PostalCode: "150-0001"}))
	assert.Equal(t, "150", destinationCode(model.Address{PostalCode: "1500001"}))
	assert.Equal(t, "000", destinationCode(model.Address{PostalCode: "abc"}))
	assert.Equal(t, "15", destinationCode(model.Address{PostalCode: "15"}))
}
