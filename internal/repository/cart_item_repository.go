package repository

import (
	"context"

	"storefront/internal/domain/model"

	"github.com/shopspring/decimal"
)

type CartItemRepository interface {
	ListByUserID(ctx context.Context, userID int64) ([]model.CartItem, error)
	// 同一商品はプラス
	UpsertByUserAndProduct(ctx context.Context, userID int64, productID int64, addQty int64, unitPriceSnapshot decimal.Decimal) error
	UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error
	DeleteByID(ctx context.Context, cartItemID int64) error
	// カートを空にする（注文確定後など）
	DeleteAllByUserID(ctx context.Context, userID int64) error
	FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error)
}
