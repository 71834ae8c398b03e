package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/events"
	repo "storefront/internal/repository"
)

type AdminOrderUsecase struct {
	tx        repo.TransactionManager
	auditRepo repo.AuditLogRepository
	publisher events.Publisher
}

func NewAdminOrderUsecase(tx repo.TransactionManager, auditRepo repo.AuditLogRepository, publisher events.Publisher) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx, auditRepo: auditRepo, publisher: publisher}
}

type AdminUpdateOrderStatusInput struct {
	Status string
}

// ステータスは一方向にだけ進める。
// CANCELEDはPENDINGからだけ。DELIVERED/CANCELEDは終端。
var nextOrderStatus = map[model.OrderStatus]model.OrderStatus{
	model.OrderStatusPending:    model.OrderStatusPaid,
	model.OrderStatusPaid:       model.OrderStatusProcessing,
	model.OrderStatusProcessing: model.OrderStatusShipped,
	model.OrderStatusShipped:    model.OrderStatusDelivered,
}

// 注文一覧
func (u *AdminOrderUsecase) List(ctx context.Context, f repo.AdminOrderListFilter) (OrderListOutput, error) {
	// page/limitの最低限チェック
	if f.Page < 1 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	var out OrderListOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().ListAdmin(ctx, f)
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

		out = OrderListOutput{Items: outs, Total: total, Page: f.Page, Limit: f.Limit}
		return nil
	})

	if err != nil {
		return OrderListOutput{}, err
	}
	return out, nil
}

// ステータス更新（CANCELED なら在庫戻し)
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actorAdminUserID int64, orderID int64, in AdminUpdateOrderStatusInput) error {
	if actorAdminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	newStatus := model.OrderStatus(strings.TrimSpace(in.Status))
	switch newStatus {
	case model.OrderStatusPending, model.OrderStatusPaid, model.OrderStatusProcessing,
		model.OrderStatusShipped, model.OrderStatusDelivered, model.OrderStatusCanceled:
		// OK
	default:
		return NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	var changed bool
	var beforeStatus string

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 注文取得
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// すでに同じなら何もしない（200）
		if o.Status == newStatus {
			return nil
		}

		// 遷移チェック（一方向のみ）
		if newStatus == model.OrderStatusCanceled {
			if o.Status != model.OrderStatusPending {
				return NewHTTPError(http.StatusConflict, "only pending orders can be cancelled")
			}
		} else if nextOrderStatus[o.Status] != newStatus {
			return NewHTTPError(http.StatusConflict, "invalid status transition")
		}

		// キャンセルのときだけ在庫戻し
		if newStatus == model.OrderStatusCanceled {
			items, err := r.OrderItems().ListByOrderID(ctx, orderID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			for _, it := range items {
				if err := r.Inventory().IncreaseStock(ctx, it.ProductID, it.Quantity); err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
			}
		}

		// ステータス更新
		beforeStatus = string(o.Status)
		if err := r.Orders().UpdateStatus(ctx, orderID, newStatus); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// 監査ログ（UPDATE_ORDER_STATUS）
		beforeJSON := `{"status":"` + beforeStatus + `"}`
		afterJSON := `{"status":"` + string(newStatus) + `"}`
		if err := u.auditRepo.Create(ctx, model.AuditLog{
			ActorUserID:  actorAdminUserID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   beforeJSON,
			AfterJSON:    afterJSON,
			CreatedAt:    time.Now(),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		changed = true
		return nil
	})

	if err != nil {
		return err
	}

	if changed {
		name := events.EventOrderStatusChanged
		if newStatus == model.OrderStatusCanceled {
			name = events.EventOrderCanceled
		}
		_ = u.publisher.Publish(ctx, name, map[string]interface{}{
			"order_id": orderID,
			"before":   beforeStatus,
			"after":    string(newStatus),
		})
	}

	return nil
}
