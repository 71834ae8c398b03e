package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

// 決済ゲートウェイのコールバックコードに合わせたステータス
const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusCanceled PaymentStatus = "CANCELED"
	PaymentStatusFailed   PaymentStatus = "FAILED"
)

// 決済。1注文につき1件まで。
type Payment struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//注文との紐付け（重複決済を防ぐためunique）
	OrderID int64 `gorm:"not null;uniqueIndex" json:"order_id"`

	//ゲートウェイ側の取引ID（webhook照合キー）
	TransactionID string `gorm:"type:varchar(100);not null;uniqueIndex" json:"transaction_id"`

	PaymentType string        `gorm:"type:varchar(50);not null" json:"payment_type"`
	Status      PaymentStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	Amount decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`

	PaidAt    *time.Time `json:"paid_at"`
	CreatedAt time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
