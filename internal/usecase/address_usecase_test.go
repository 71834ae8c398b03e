package usecase

import (
	"context"
	"testing"
	"time"

	"storefront/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// 本人の住所ならrepoの切替（他を全クリア→対象だけtrue）へ委譲する
func TestSetDefaultAddress_DelegatesAfterOwnershipCheck(t *testing.T) {
	addresses := new(AddressRepoMock)
	uc := NewAddressUsecase(addresses)

	addresses.On("IsOwnedByUser", mock.Anything, int64(3), int64(7)).Return(true, nil)
	addresses.On("SetDefault", mock.Anything, int64(7), int64(3)).Return(nil)

	err := uc.SetDefault(context.Background(), 7, 3)

	assert.NoError(t, err)
	addresses.AssertExpectations(t)
}

// 他人の住所は切替できない
func TestSetDefaultAddress_ForeignAddressForbidden(t *testing.T) {
	addresses := new(AddressRepoMock)
	uc := NewAddressUsecase(addresses)

	addresses.On("IsOwnedByUser", mock.Anything, int64(3), int64(7)).Return(false, nil)

	err := uc.SetDefault(context.Background(), 7, 3)

	assert.ErrorIs(t, err, ErrForbidden)
	addresses.AssertNotCalled(t, "SetDefault", mock.Anything, mock.Anything, mock.Anything)
}

// repoが見つからないと返したら404相当
func TestSetDefaultAddress_NotFound(t *testing.T) {
	addresses := new(AddressRepoMock)
	uc := NewAddressUsecase(addresses)

	addresses.On("IsOwnedByUser", mock.Anything, int64(99), int64(7)).Return(true, nil)
	addresses.On("SetDefault", mock.Anything, int64(7), int64(99)).Return(gorm.ErrRecordNotFound)

	err := uc.SetDefault(context.Background(), 7, 99)

	assert.ErrorIs(t, err, ErrNotFound)
}

// 削除も本人のみ。repoの削除（デフォルトなら昇格込み）へ委譲する
func TestDeleteAddress_DelegatesAfterOwnershipCheck(t *testing.T) {
	addresses := new(AddressRepoMock)
	uc := NewAddressUsecase(addresses)

	addresses.On("IsOwnedByUser", mock.Anything, int64(3), int64(7)).Return(true, nil)
	addresses.On("Delete", mock.Anything, int64(3)).Return(nil)

	err := uc.Delete(context.Background(), 7, 3)

	assert.NoError(t, err)
	addresses.AssertExpectations(t)
}

// 他人の住所は削除できない
func TestDeleteAddress_ForeignAddressForbidden(t *testing.T) {
	addresses := new(AddressRepoMock)
	uc := NewAddressUsecase(addresses)

	addresses.On("IsOwnedByUser", mock.Anything, int64(3), int64(8)).Return(false, nil)

	err := uc.Delete(context.Background(), 8, 3)

	assert.ErrorIs(t, err, ErrForbidden)
	addresses.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

// 新規作成はis_default=falseで保存される
func TestCreateAddress_NewAddressIsNotDefault(t *testing.T) {
	addresses := new(AddressRepoMock)
	uc := NewAddressUsecase(addresses)

	addresses.On("Create", mock.Anything, mock.MatchedBy(func(a model.Address) bool {
		return a.UserID == 7 && !a.IsDefault && a.PostalCode == "150-0001"
	})).Return(model.Address{
		ID:         1,
		UserID:     7,
		PostalCode: "150-0001",
		Prefecture: "東京都",
		City:       "渋谷区",
		Line1:      "1-2-3",
		Name:       "山田太郎",
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}, nil)

	dto, err := uc.Create(context.Background(), 7, AddressCreateRequest{
		PostalCode: "150-0001",
		Prefecture: "東京都",
		City:       "渋谷区",
		Line1:      "1-2-3",
		Name:       "山田太郎",
	})

	assert.NoError(t, err)
	assert.False(t, dto.IsDefault)
	addresses.AssertExpectations(t)
}

// 必須項目チェック
func TestCreateAddress_MissingFieldsRejected(t *testing.T) {
	addresses := new(AddressRepoMock)
	uc := NewAddressUsecase(addresses)

	_, err := uc.Create(context.Background(), 7, AddressCreateRequest{
		PostalCode: "150-0001",
	})

	assert.ErrorIs(t, err, ErrValidation)
	addresses.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// 一覧はuser単位
func TestListAddresses_ReturnsUserAddresses(t *testing.T) {
	addresses := new(AddressRepoMock)
	uc := NewAddressUsecase(addresses)

	addresses.On("ListByUserID", mock.Anything, int64(7)).Return([]model.Address{
		{ID: 1, UserID: 7, IsDefault: true, CreatedAt: time.Now(), UpdatedAt: time.Now()},
		{ID: 2, UserID: 7, IsDefault: false, CreatedAt: time.Now(), UpdatedAt: time.Now()},
	}, nil)

	list, err := uc.List(context.Background(), 7)

	assert.NoError(t, err)
	assert.Len(t, list, 2)
	assert.True(t, list[0].IsDefault)
}
