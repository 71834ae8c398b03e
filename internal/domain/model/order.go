package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

// ステータスは一方向にだけ進む
// PENDING→PAID→PROCESSING→SHIPPED→DELIVERED、またはPENDING→CANCELED
const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusPaid       OrderStatus = "PAID"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCanceled   OrderStatus = "CANCELED"
)

type Order struct {
	ID        int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64       `gorm:"not null;index" json:"user_id"`
	AddressID int64       `gorm:"not null" json:"address_id"`
	Status    OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	//配送（見積もり時に選んだもの）
	CourierCode     string `gorm:"type:varchar(20);not null" json:"courier_code"`
	ShippingService string `gorm:"type:varchar(50);not null" json:"shipping_service"`

	//金額はすべてnumeric。total_price = items_total + shipping_fee
	ItemsTotal  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"items_total"`
	ShippingFee decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"shipping_fee"`
	TotalPrice  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_price"`

	IdempotencyKey string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"-"`
	CreatedAt      time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
