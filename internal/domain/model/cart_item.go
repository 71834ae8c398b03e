package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// カートの明細。
// user+productで1行（同じ商品の追加は数量加算）。
// 追加時点の価格を必ず保存。
type CartItem struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64 `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"user_id"`
	ProductID int64 `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"product_id"`
	Quantity  int64 `gorm:"not null" json:"quantity"`

	UnitPriceSnapshot decimal.Decimal `gorm:"type:numeric(12,2);not null;column:unit_price_snapshot" json:"unit_price_snapshot"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
