package usecase

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newCategoryTestDeps() (*CategoryRepoMock, *ProductRepoMock, *CategoryUsecase) {
	categories := &CategoryRepoMock{}
	products := &ProductRepoMock{}
	return categories, products, NewCategoryUsecase(categories, products)
}

func TestAdminCreateCategory_DuplicateName(t *testing.T) {
	categories, _, uc := newCategoryTestDeps()
	ctx := context.Background()

	categories.On("Create", ctx, mock.Anything).Return(model.Category{}, errors.New("duplicate key"))

	_, err := uc.AdminCreate(ctx, 99, CategoryInput{Name: "飲料"})
	assertHTTPStatus(t, err, http.StatusConflict)
}

func TestAdminCreateCategory_TrimsName(t *testing.T) {
	categories, _, uc := newCategoryTestDeps()
	ctx := context.Background()

	categories.On("Create", ctx, mock.MatchedBy(func(c model.Category) bool {
		return c.Name == "飲料"
	})).Return(model.Category{ID: 1, Name: "飲料"}, nil)

	created, err := uc.AdminCreate(ctx, 99, CategoryInput{Name: "  飲料  "})

	assert.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
}

func TestAdminDeleteCategory_WithProductsConflicts(t *testing.T) {
	categories, products, uc := newCategoryTestDeps()
	ctx := context.Background()

	categories.On("FindByID", ctx, int64(1)).Return(model.Category{ID: 1}, nil)
	products.On("CountByCategoryID", ctx, int64(1)).Return(int64(3), nil)

	err := uc.AdminDelete(ctx, 99, 1)

	assertHTTPStatus(t, err, http.StatusConflict)
	categories.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestAdminDeleteCategory_EmptyCategoryOK(t *testing.T) {
	categories, products, uc := newCategoryTestDeps()
	ctx := context.Background()

	categories.On("FindByID", ctx, int64(1)).Return(model.Category{ID: 1}, nil)
	products.On("CountByCategoryID", ctx, int64(1)).Return(int64(0), nil)
	categories.On("Delete", ctx, int64(1)).Return(nil)

	err := uc.AdminDelete(ctx, 99, 1)
	assert.NoError(t, err)
}

func TestGetCategory_NotFound(t *testing.T) {
	categories, _, uc := newCategoryTestDeps()
	ctx := context.Background()

	categories.On("FindByID", ctx, int64(1)).Return(model.Category{}, repo.ErrNotFound)

	_, err := uc.Get(ctx, 1)
	assertHTTPStatus(t, err, http.StatusNotFound)
}

func TestAdminCreateCategory_NameRequired(t *testing.T) {
	_, _, uc := newCategoryTestDeps()

	_, err := uc.AdminCreate(context.Background(), 99, CategoryInput{Name: "   "})
	assertHTTPStatus(t, err, http.StatusBadRequest)
}
