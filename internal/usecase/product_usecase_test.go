package usecase

import (
	"context"
	"net/http"
	"testing"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newProductTestDeps() (*ProductRepoMock, *CategoryRepoMock, *InventoryRepoMock, *AuditLogRepoMock, *ProductUsecase) {
	products := &ProductRepoMock{}
	categories := &CategoryRepoMock{}
	inventory := &InventoryRepoMock{}
	audit := &AuditLogRepoMock{}
	return products, categories, inventory, audit, NewProductUsecase(products, categories, inventory, audit)
}

func TestListPublicProducts_Validation(t *testing.T) {
	_, _, _, _, uc := newProductTestDeps()
	ctx := context.Background()

	cases := []struct {
		name string
		in   ListProductsInput
	}{
		{"page zero", ListProductsInput{Page: 0, Limit: 20}},
		{"limit over", ListProductsInput{Page: 1, Limit: 101}},
		{"bad sort", ListProductsInput{Page: 1, Limit: 20, Sort: "banana"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.ListPublicProducts(ctx, tc.in)
			assertHTTPStatus(t, err, http.StatusBadRequest)
		})
	}
}

func TestListPublicProducts_MinPriceOverMax(t *testing.T) {
	_, _, _, _, uc := newProductTestDeps()

	min := decimal.NewFromInt(2000)
	max := decimal.NewFromInt(1000)

	_, err := uc.ListPublicProducts(context.Background(), ListProductsInput{
		Page: 1, Limit: 20, MinPrice: &min, MaxPrice: &max,
	})
	assertHTTPStatus(t, err, http.StatusBadRequest)
}

func TestGetProductDetail_InactiveIsHidden(t *testing.T) {
	products, _, _, _, uc := newProductTestDeps()
	ctx := context.Background()

	products.On("FindByID", ctx, int64(100)).Return(model.Product{ID: 100, IsActive: false}, nil)

	_, err := uc.GetProductDetail(ctx, 100)
	assertHTTPStatus(t, err, http.StatusNotFound)
}

func TestAdminCreateProduct_UnknownCategory(t *testing.T) {
	_, categories, _, _, uc := newProductTestDeps()
	ctx := context.Background()

	categories.On("FindByID", ctx, int64(3)).Return(model.Category{}, repo.ErrNotFound)

	_, err := uc.AdminCreateProduct(ctx, 99, AdminCreateProductInput{
		CategoryID: 3, Name: "コーヒー豆", Price: decimal.NewFromInt(1500), Stock: 10, WeightGrams: 500, IsActive: true,
	})
	assertHTTPStatus(t, err, http.StatusBadRequest)
}

func TestAdminCreateProduct_NegativePrice(t *testing.T) {
	_, _, _, _, uc := newProductTestDeps()

	_, err := uc.AdminCreateProduct(context.Background(), 99, AdminCreateProductInput{
		CategoryID: 3, Name: "コーヒー豆", Price: decimal.NewFromInt(-1), Stock: 10,
	})
	assertHTTPStatus(t, err, http.StatusBadRequest)
}

func TestAdminCreateProduct_Success(t *testing.T) {
	products, categories, _, _, uc := newProductTestDeps()
	ctx := context.Background()

	categories.On("FindByID", ctx, int64(3)).Return(model.Category{ID: 3}, nil)
	products.On("Create", ctx, mock.MatchedBy(func(p model.Product) bool {
		return p.CategoryID == 3 && p.Name == "コーヒー豆" && p.WeightGrams == 500
	})).Return(model.Product{ID: 100}, nil)

	id, err := uc.AdminCreateProduct(ctx, 99, AdminCreateProductInput{
		CategoryID: 3, Name: "コーヒー豆", Price: decimal.NewFromInt(1500), Stock: 10, WeightGrams: 500, IsActive: true,
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(100), id)
}

func TestAdminUpdateInventory_WritesAdjustmentAndAudit(t *testing.T) {
	products, _, inventory, audit, uc := newProductTestDeps()
	ctx := context.Background()

	products.On("FindByID", ctx, int64(100)).Return(model.Product{ID: 100, Stock: 10}, nil)
	inventory.On("SetStock", ctx, int64(100), int64(4)).Return(nil)

	//差分は 4-10 = -6
	inventory.On("CreateAdjustment", ctx, mock.MatchedBy(func(a model.InventoryAdjustment) bool {
		return a.ProductID == 100 && a.AdminUserID == 99 && a.Delta == -6 && a.Reason == "棚卸し"
	})).Return(nil)

	audit.On("Create", ctx, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionUpdateStock && l.ResourceID == 100
	})).Return(nil)

	err := uc.AdminUpdateInventory(ctx, 99, 100, 4, "棚卸し")
	assert.NoError(t, err)
}

func TestAdminUpdateInventory_ReasonRequired(t *testing.T) {
	_, _, _, _, uc := newProductTestDeps()

	err := uc.AdminUpdateInventory(context.Background(), 99, 100, 4, "  ")
	assertHTTPStatus(t, err, http.StatusBadRequest)
}
