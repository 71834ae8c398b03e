package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// カテゴリの保存・取得を約束
type CategoryRepository interface {
	List(ctx context.Context) ([]model.Category, error)
	FindByID(ctx context.Context, categoryID int64) (model.Category, error)
	Create(ctx context.Context, c model.Category) (model.Category, error)
	Update(ctx context.Context, c model.Category) error
	Delete(ctx context.Context, categoryID int64) error
}
