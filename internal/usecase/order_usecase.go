package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/events"
	"storefront/internal/gateway"
	"storefront/internal/repository"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderUsecase struct {
	tx        repo.TransactionManager
	addresses repository.AddressRepository
	rates     gateway.RateProvider
	publisher events.Publisher

	//発送元の都市コード（倉庫）
	originCode string
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	addresses repository.AddressRepository,
	rates gateway.RateProvider,
	publisher events.Publisher,
	originCode string,
) *OrderUsecase {
	return &OrderUsecase{
		tx:         tx,
		addresses:  addresses,
		rates:      rates,
		publisher:  publisher,
		originCode: originCode,
	}
}

type PlaceOrderInput struct {
	AddressID       int64
	CourierCode     string
	ShippingService string
	IdempotencyKey  string
}

type OrderItemOutput struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
}

type OrderOutput struct {
	ID              int64             `json:"id"`
	UserID          int64             `json:"user_id"`
	Status          string            `json:"status"`
	CourierCode     string            `json:"courier_code"`
	ShippingService string            `json:"shipping_service"`
	ItemsTotal      decimal.Decimal   `json:"items_total"`
	ShippingFee     decimal.Decimal   `json:"shipping_fee"`
	TotalPrice      decimal.Decimal   `json:"total_price"`
	CreatedAt       time.Time         `json:"created_at"`
	Items           []OrderItemOutput `json:"items"`
}

type OrderListOutput struct {
	Items []OrderOutput `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// Kafkaに流す注文イベントの中身
type orderEventPayload struct {
	OrderID    int64  `json:"order_id"`
	UserID     int64  `json:"user_id"`
	Status     string `json:"status"`
	TotalPrice string `json:"total_price"`
}

func (u *OrderUsecase) PlaceOrder(ctx context.Context, userID int64, in PlaceOrderInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.AddressID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid address_id")
	}
	courier := strings.TrimSpace(in.CourierCode)
	service := strings.TrimSpace(in.ShippingService)
	if courier == "" || service == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid shipping")
	}
	key := strings.TrimSpace(in.IdempotencyKey)
	if key == "" || len(key) > 255 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid idempotency_key")
	}

	//address_idの存在確認＋所有チェック
	addr, err := u.addresses.FindByID(ctx, in.AddressID)
	if err != nil {
		// 住所が存在しない404
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, repo.ErrNotFound) {
			return OrderOutput{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	//所有チェック（他人の住所なら403）
	if addr.UserID != userID {
		return OrderOutput{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}

	var out OrderOutput
	var placed bool

	//注文処理はトランザクション
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 同じキーなら同じ結果
		existing, found, err := r.Orders().FindByIdempotencyKey(ctx, userID, key)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if found {
			//既存注文を返す
			items, err := r.OrderItems().ListByOrderID(ctx, existing.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			out = toOrderOutput(existing, items)
			return nil
		}

		//カート明細取得
		cartItems, err := r.CartItems().ListByUserID(ctx, userID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if len(cartItems) == 0 {
			return NewHTTPError(http.StatusBadRequest, "cart empty")
		}

		//在庫を確定時に再チェックして減らす
		orderItems := make([]model.OrderItem, 0, len(cartItems))
		itemsTotal := decimal.Zero
		var totalWeightGrams int64 = 0

		for _, ci := range cartItems {
			//商品取得
			p, err := r.Products().FindByID(ctx, ci.ProductID)
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusBadRequest, "invalid")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !p.IsActive {
				return NewHTTPError(http.StatusBadRequest, "invalid")
			}

			//在庫減算（stock >= qty のときだけ減る。競合しても負にならない）
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, ci.ProductID, ci.Quantity)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				return NewHTTPError(http.StatusBadRequest, "out of stock")
			}

			//スナップショット
			now := time.Now()
			orderItems = append(orderItems, model.OrderItem{
				ProductID:           ci.ProductID,
				ProductNameSnapshot: p.Name,
				UnitPriceSnapshot:   ci.UnitPriceSnapshot,
				Quantity:            ci.Quantity,
				WeightGramsSnapshot: p.WeightGrams,
				CreatedAt:           now,
			})

			itemsTotal = itemsTotal.Add(ci.UnitPriceSnapshot.Mul(decimal.NewFromInt(ci.Quantity)))
			totalWeightGrams += p.WeightGrams * ci.Quantity
		}

		//送料（総重量で照会して、選んだサービスの料金を使う）
		shippingFee, err := u.quoteShippingFee(ctx, addr, totalWeightGrams, courier, service)
		if err != nil {
			return err
		}

		totalPrice := itemsTotal.Add(shippingFee)

		// 注文作成
		now := time.Now()
		orderID, err := r.Orders().Create(ctx, model.Order{
			UserID:          userID,
			AddressID:       in.AddressID,
			Status:          model.OrderStatusPending,
			CourierCode:     courier,
			ShippingService: service,
			ItemsTotal:      itemsTotal,
			ShippingFee:     shippingFee,
			TotalPrice:      totalPrice,
			IdempotencyKey:  key,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
		if err != nil {
			//競合（同時で同じキーが入った等）はもう一回検索して同じ結果を返す
			ex2, found2, err2 := r.Orders().FindByIdempotencyKey(ctx, userID, key)
			if err2 == nil && found2 {
				items2, err3 := r.OrderItems().ListByOrderID(ctx, ex2.ID)
				if err3 != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
				out = toOrderOutput(ex2, items2)
				return nil
			}
			return NewHTTPError(http.StatusBadRequest, "idempotency conflict")
		}

		//注文明細一括作成
		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//カートを空にする（再注文防止）
		if err := r.CartItems().DeleteAllByUserID(ctx, userID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		created := model.Order{
			ID:              orderID,
			UserID:          userID,
			AddressID:       in.AddressID,
			Status:          model.OrderStatusPending,
			CourierCode:     courier,
			ShippingService: service,
			ItemsTotal:      itemsTotal,
			ShippingFee:     shippingFee,
			TotalPrice:      totalPrice,
			CreatedAt:       now,
		}
		out = toOrderOutput(created, orderItems)
		placed = true
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}

	//イベント発行はbest-effort（失敗しても注文は確定済み）
	if placed {
		_ = u.publisher.Publish(ctx, events.EventOrderPlaced, orderEventPayload{
			OrderID:    out.ID,
			UserID:     out.UserID,
			Status:     out.Status,
			TotalPrice: out.TotalPrice.StringFixed(2),
		})
	}

	return out, nil
}

// 選んだ業者＋サービスの送料を見積もる
func (u *OrderUsecase) quoteShippingFee(ctx context.Context, addr model.Address, weightGrams int64, courier string, service string) (decimal.Decimal, error) {
	rates, err := u.rates.GetRates(ctx, gateway.RateQuery{
		Origin:      u.originCode,
		Destination: destinationCode(addr),
		WeightGrams: weightGrams,
		Courier:     courier,
	})
	if errors.Is(err, gateway.ErrUnknownCourier) {
		return decimal.Zero, NewHTTPError(http.StatusBadRequest, "unknown courier")
	}
	if err != nil {
		return decimal.Zero, NewHTTPError(http.StatusInternalServerError, "shipping rate error")
	}

	for _, rate := range rates {
		if rate.Service == service {
			return rate.Cost, nil
		}
	}
	return decimal.Zero, NewHTTPError(http.StatusBadRequest, "invalid shipping service")
}

// 郵便番号の先頭3桁を宛先の都市コードにする
func destinationCode(addr model.Address) string {
	digits := make([]rune, 0, 3)
	for _, r := range addr.PostalCode {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
		if len(digits) == 3 {
			break
		}
	}
	if len(digits) == 0 {
		return "000"
	}
	return string(digits)
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64, page int, limit int) (OrderListOutput, error) {
	if userID <= 0 {
		return OrderListOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if page < 1 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	var out OrderListOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().ListByUserID(ctx, userID, page, limit)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs := make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			outs = append(outs, toOrderOutput(o, items))
		}

		out = OrderListOutput{Items: outs, Total: total, Page: page, Limit: limit}
		return nil
	})

	if err != nil {
		return OrderListOutput{}, err
	}
	return out, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.UserID != userID {
			//他人の注文は「存在しない扱い」にする
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// 本人のPENDING注文だけキャンセルできる。在庫は戻す。
func (u *OrderUsecase) CancelMyOrder(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.UserID != userID {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if o.Status != model.OrderStatusPending {
			return NewHTTPError(http.StatusConflict, "only pending orders can be cancelled")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//在庫戻し
		for _, it := range items {
			if err := r.Inventory().IncreaseStock(ctx, it.ProductID, it.Quantity); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		if err := r.Orders().UpdateStatus(ctx, orderID, model.OrderStatusCanceled); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		o.Status = model.OrderStatusCanceled
		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}

	_ = u.publisher.Publish(ctx, events.EventOrderCanceled, orderEventPayload{
		OrderID:    out.ID,
		UserID:     out.UserID,
		Status:     out.Status,
		TotalPrice: out.TotalPrice.StringFixed(2),
	})

	return out, nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID: it.ProductID,
			Name:      it.ProductNameSnapshot,
			Price:     it.UnitPriceSnapshot,
			Quantity:  it.Quantity,
		})
	}

	return OrderOutput{
		ID:              o.ID,
		UserID:          o.UserID,
		Status:          string(o.Status),
		CourierCode:     o.CourierCode,
		ShippingService: o.ShippingService,
		ItemsTotal:      o.ItemsTotal,
		ShippingFee:     o.ShippingFee,
		TotalPrice:      o.TotalPrice,
		CreatedAt:       o.CreatedAt,
		Items:           outItems,
	}
}
