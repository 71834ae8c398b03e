package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/events"
	"storefront/internal/gateway"
	repo "storefront/internal/repository"
)

type PaymentUsecase struct {
	tx        repo.TransactionManager
	gateway   gateway.PaymentGateway
	publisher events.Publisher
}

func NewPaymentUsecase(tx repo.TransactionManager, gw gateway.PaymentGateway, publisher events.Publisher) *PaymentUsecase {
	return &PaymentUsecase{tx: tx, gateway: gw, publisher: publisher}
}

type CreatePaymentInput struct {
	PaymentType string
}

// ゲートウェイのtransaction_statusを決済ステータスに読み替える
func mapTransactionStatus(s string) (model.PaymentStatus, bool) {
	switch strings.TrimSpace(s) {
	case "capture", "settlement":
		return model.PaymentStatusPaid, true
	case "pending":
		return model.PaymentStatusPending, true
	case "cancel", "expire":
		return model.PaymentStatusCanceled, true
	case "deny", "failure":
		return model.PaymentStatusFailed, true
	default:
		return "", false
	}
}

// 注文に対して決済を開始する。1注文1決済。
func (u *PaymentUsecase) CreatePayment(ctx context.Context, userID int64, orderID int64, in CreatePaymentInput) (model.Payment, error) {
	if userID <= 0 {
		return model.Payment{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return model.Payment{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var created model.Payment

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		//他人の注文は「存在しない扱い」
		if o.UserID != userID {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		//支払えるのはPENDINGの注文だけ
		if o.Status != model.OrderStatusPending {
			return NewHTTPError(http.StatusConflict, "order is not payable")
		}

		//二重決済ガード
		_, exists, err := r.Payments().FindByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if exists {
			return NewHTTPError(http.StatusConflict, "payment already exists")
		}

		//ゲートウェイで取引作成（モック）
		res, err := u.gateway.CreateTransaction(ctx, orderID, o.TotalPrice, in.PaymentType)
		if err != nil {
			return NewHTTPError(http.StatusBadGateway, "payment gateway error")
		}

		now := time.Now()
		created, err = r.Payments().Create(ctx, model.Payment{
			OrderID:       orderID,
			TransactionID: res.TransactionID,
			PaymentType:   res.PaymentType,
			Status:        model.PaymentStatusPending,
			Amount:        o.TotalPrice,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		if err != nil {
			//unique制約（order_id）に同時に入ったときなど
			return NewHTTPError(http.StatusConflict, "payment already exists")
		}

		return nil
	})

	if err != nil {
		return model.Payment{}, err
	}
	return created, nil
}

// ゲートウェイからのwebhookを処理する。
// 同じステータスが二回届いても何もしない（再送対応）。
func (u *PaymentUsecase) HandleNotification(ctx context.Context, n gateway.PaymentNotification) error {
	if strings.TrimSpace(n.TransactionID) == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid transaction_id")
	}

	newStatus, ok := mapTransactionStatus(n.TransactionStatus)
	if !ok {
		return NewHTTPError(http.StatusBadRequest, "unknown transaction_status")
	}

	var settled bool
	var orderID int64

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Payments().FindByTransactionID(ctx, n.TransactionID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//同じステータスの再送はno-op
		if p.Status == newStatus {
			return nil
		}

		var paidAt *time.Time
		if newStatus == model.PaymentStatusPaid {
			now := time.Now()
			paidAt = &now
		}

		if err := r.Payments().UpdateStatus(ctx, p.ID, newStatus, paidAt); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//入金済みならPENDINGの注文をPAIDへ進める
		if newStatus == model.PaymentStatusPaid {
			o, err := r.Orders().FindByID(ctx, p.OrderID)
			if err == nil && o.Status == model.OrderStatusPending {
				if err := r.Orders().UpdateStatus(ctx, o.ID, model.OrderStatusPaid); err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
			}
			settled = true
			orderID = p.OrderID
		}

		return nil
	})

	if err != nil {
		return err
	}

	if settled {
		_ = u.publisher.Publish(ctx, events.EventPaymentSettled, map[string]interface{}{
			"order_id":       orderID,
			"transaction_id": n.TransactionID,
			"payment_type":   n.PaymentType,
		})
	}

	return nil
}
