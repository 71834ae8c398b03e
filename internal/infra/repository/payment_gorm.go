package repository

import (
	"context"
	"errors"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type PaymentGormRepository struct {
	db *gorm.DB
}

func NewPaymentGormRepository(db *gorm.DB) *PaymentGormRepository {
	return &PaymentGormRepository{db: db}
}

func (r *PaymentGormRepository) Create(ctx context.Context, p model.Payment) (model.Payment, error) {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Payment{}, err
	}
	return p, nil
}

func (r *PaymentGormRepository) FindByOrderID(ctx context.Context, orderID int64) (model.Payment, bool, error) {
	var p model.Payment
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&p).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Payment{}, false, nil
	}
	if err != nil {
		return model.Payment{}, false, err
	}
	return p, true, nil
}

func (r *PaymentGormRepository) FindByTransactionID(ctx context.Context, transactionID string) (model.Payment, error) {
	var p model.Payment
	err := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		First(&p).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Payment{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Payment{}, err
	}
	return p, nil
}

func (r *PaymentGormRepository) UpdateStatus(ctx context.Context, paymentID int64, status model.PaymentStatus, paidAt *time.Time) error {
	values := map[string]interface{}{"status": status}
	if paidAt != nil {
		values["paid_at"] = paidAt
	}

	res := r.db.WithContext(ctx).Model(&model.Payment{}).
		Where("id = ?", paymentID).
		Updates(values)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
