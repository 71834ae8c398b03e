package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type categoryGormRepository struct {
	db *gorm.DB
}

// DI
func NewCategoryGormRepository(db *gorm.DB) repo.CategoryRepository {
	return &categoryGormRepository{db: db}
}

// カテゴリ一覧（名前順）
func (r *categoryGormRepository) List(ctx context.Context) ([]model.Category, error) {
	var list []model.Category
	if err := r.db.WithContext(ctx).Order("name asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// IDで1件取得
func (r *categoryGormRepository) FindByID(ctx context.Context, categoryID int64) (model.Category, error) {
	var c model.Category
	err := r.db.WithContext(ctx).First(&c, categoryID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Category{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Category{}, err
	}
	return c, nil
}

// カテゴリ作成
func (r *categoryGormRepository) Create(ctx context.Context, c model.Category) (model.Category, error) {
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		return model.Category{}, err
	}
	return c, nil
}

// カテゴリ更新
func (r *categoryGormRepository) Update(ctx context.Context, c model.Category) error {
	res := r.db.WithContext(ctx).Model(&model.Category{}).
		Where("id = ?", c.ID).
		Updates(map[string]interface{}{
			"name":        c.Name,
			"description": c.Description,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// カテゴリ削除（商品が残っていないかはusecase側で確認する）
func (r *categoryGormRepository) Delete(ctx context.Context, categoryID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Category{}, categoryID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
