package repository

import (
	"context"
	"time"

	"storefront/internal/domain/model"
)

type PaymentRepository interface {
	Create(ctx context.Context, p model.Payment) (model.Payment, error)

	//注文IDで1件（1注文1決済）
	FindByOrderID(ctx context.Context, orderID int64) (model.Payment, bool, error)

	//webhookの照合キー
	FindByTransactionID(ctx context.Context, transactionID string) (model.Payment, error)

	//ステータス更新（paidAtはPAIDのときだけ入る）
	UpdateStatus(ctx context.Context, paymentID int64, status model.PaymentStatus, paidAt *time.Time) error
}
