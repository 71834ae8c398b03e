package gateway

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ゲートウェイからのwebhook通知のボディ。
// transaction_statusは capture/settlement/pending/cancel/expire/deny/failure のどれか。
type PaymentNotification struct {
	TransactionID     string `json:"transaction_id"`
	TransactionStatus string `json:"transaction_status"`
	PaymentType       string `json:"payment_type"`
}

// 取引作成の結果
type CreateTransactionResult struct {
	TransactionID string
	PaymentType   string
}

// 決済ゲートウェイの約束。
// 実物の代わりにモックを注入して動かす。
type PaymentGateway interface {
	CreateTransaction(ctx context.Context, orderID int64, amount decimal.Decimal, paymentType string) (CreateTransactionResult, error)
}

type mockPaymentGateway struct{}

// ローカル用
func NewMockPaymentGateway() PaymentGateway {
	return &mockPaymentGateway{}
}

// 取引IDを発行するだけ。ステータスは後からwebhookで届く前提。
func (g *mockPaymentGateway) CreateTransaction(ctx context.Context, orderID int64, amount decimal.Decimal, paymentType string) (CreateTransactionResult, error) {
	if paymentType == "" {
		paymentType = "bank_transfer"
	}

	return CreateTransactionResult{
		TransactionID: uuid.NewString(),
		PaymentType:   paymentType,
	}, nil
}
