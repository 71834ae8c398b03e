package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type CategoryUsecase struct {
	categoryRepo repo.CategoryRepository
	productRepo  repo.ProductRepository
}

// DI
func NewCategoryUsecase(categoryRepo repo.CategoryRepository, productRepo repo.ProductRepository) *CategoryUsecase {
	return &CategoryUsecase{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
	}
}

type CategoryInput struct {
	Name        string
	Description string
}

func (u *CategoryUsecase) List(ctx context.Context) ([]model.Category, error) {
	list, err := u.categoryRepo.List(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return list, nil
}

func (u *CategoryUsecase) Get(ctx context.Context, categoryID int64) (model.Category, error) {
	if categoryID <= 0 {
		return model.Category{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	c, err := u.categoryRepo.FindByID(ctx, categoryID)
	if err == repo.ErrNotFound {
		return model.Category{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Category{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return c, nil
}

func (u *CategoryUsecase) AdminCreate(ctx context.Context, adminUserID int64, in CategoryInput) (model.Category, error) {
	if adminUserID <= 0 {
		return model.Category{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(in.Name) == "" {
		return model.Category{}, NewHTTPError(http.StatusBadRequest, "name required")
	}

	now := time.Now()
	created, err := u.categoryRepo.Create(ctx, model.Category{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		//name重複（unique制約）をconflictにする
		return model.Category{}, NewHTTPError(http.StatusConflict, "category already exists")
	}
	return created, nil
}

func (u *CategoryUsecase) AdminUpdate(ctx context.Context, adminUserID int64, categoryID int64, in CategoryInput) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if categoryID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if strings.TrimSpace(in.Name) == "" {
		return NewHTTPError(http.StatusBadRequest, "name required")
	}

	err := u.categoryRepo.Update(ctx, model.Category{
		ID:          categoryID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		UpdatedAt:   time.Now(),
	})
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// 商品が1件でも残っているカテゴリは消せない
func (u *CategoryUsecase) AdminDelete(ctx context.Context, adminUserID int64, categoryID int64) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if categoryID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if _, err := u.categoryRepo.FindByID(ctx, categoryID); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	count, err := u.productRepo.CountByCategoryID(ctx, categoryID)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if count > 0 {
		return NewHTTPError(http.StatusConflict, "cannot delete category with products")
	}

	if err := u.categoryRepo.Delete(ctx, categoryID); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
