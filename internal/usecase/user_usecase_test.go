package usecase

import (
	"context"
	"net/http"
	"testing"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newAdminUserTestDeps() (*UserRepoMock, *AuditLogRepoMock, *AdminUserUsecase) {
	users := &UserRepoMock{}
	audit := &AuditLogRepoMock{}
	return users, audit, NewAdminUserUsecase(users, audit)
}

func TestAdminUserList(t *testing.T) {
	users, _, uc := newAdminUserTestDeps()
	ctx := context.Background()

	users.On("List", ctx, repo.UserListQuery{Page: 1, Limit: 20}).Return([]model.User{
		{ID: 1, Email: "a@example.com", Role: model.RoleUser, IsActive: true},
		{ID: 2, Email: "b@example.com", Role: model.RoleAdmin, IsActive: true},
	}, int64(2), nil)

	out, err := uc.List(ctx, 1, 20)

	assert.NoError(t, err)
	assert.Equal(t, int64(2), out.Total)
	assert.Len(t, out.Items, 2)
	assert.Equal(t, "a@example.com", out.Items[0].Email)
}

func TestAdminUserUpdate_DeactivateWritesAudit(t *testing.T) {
	users, audit, uc := newAdminUserTestDeps()
	ctx := context.Background()

	users.On("FindByID", ctx, int64(1)).Return(&model.User{
		ID: 1, Email: "a@example.com", Role: model.RoleUser, IsActive: true,
	}, nil)
	users.On("Update", ctx, mock.MatchedBy(func(u *model.User) bool {
		return u.ID == 1 && !u.IsActive
	})).Return(nil)
	audit.On("Create", ctx, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionUpdateUser && l.ResourceID == 1 && l.ActorUserID == 99
	})).Return(nil)

	inactive := false
	out, err := uc.Update(ctx, 99, 1, AdminUpdateUserInput{IsActive: &inactive})

	assert.NoError(t, err)
	assert.False(t, out.IsActive)
}

func TestAdminUserUpdate_InvalidRole(t *testing.T) {
	_, _, uc := newAdminUserTestDeps()

	role := "SUPERUSER"
	_, err := uc.Update(context.Background(), 99, 1, AdminUpdateUserInput{Role: &role})
	assertHTTPStatus(t, err, http.StatusBadRequest)
}

func TestAdminUserUpdate_NothingToUpdate(t *testing.T) {
	_, _, uc := newAdminUserTestDeps()

	_, err := uc.Update(context.Background(), 99, 1, AdminUpdateUserInput{})
	assertHTTPStatus(t, err, http.StatusBadRequest)
}

func TestAdminUserUpdate_TargetNotFound(t *testing.T) {
	users, _, uc := newAdminUserTestDeps()
	ctx := context.Background()

	users.On("FindByID", ctx, int64(1)).Return(nil, nil)

	active := true
	_, err := uc.Update(ctx, 99, 1, AdminUpdateUserInput{IsActive: &active})
	assertHTTPStatus(t, err, http.StatusNotFound)
}
