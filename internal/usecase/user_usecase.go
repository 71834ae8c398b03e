package usecase

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// 管理者向けのユーザー運用（一覧・有効/無効・ロール変更）
type AdminUserUsecase struct {
	users     repo.UserRepository
	auditRepo repo.AuditLogRepository
}

func NewAdminUserUsecase(users repo.UserRepository, auditRepo repo.AuditLogRepository) *AdminUserUsecase {
	return &AdminUserUsecase{users: users, auditRepo: auditRepo}
}

type UserListOutput struct {
	Items []UserDTO `json:"items"`
	Total int64     `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
}

type AdminUpdateUserInput struct {
	IsActive *bool
	Role     *string
}

func (u *AdminUserUsecase) List(ctx context.Context, page int, limit int) (UserListOutput, error) {
	if page < 1 {
		return UserListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return UserListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	users, total, err := u.users.List(ctx, repo.UserListQuery{Page: page, Limit: limit})
	if err != nil {
		return UserListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	items := make([]UserDTO, 0, len(users))
	for i := range users {
		items = append(items, toUserDTO(&users[i]))
	}

	return UserListOutput{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// is_activeとroleだけ変更できる
func (u *AdminUserUsecase) Update(ctx context.Context, actorAdminUserID int64, targetUserID int64, in AdminUpdateUserInput) (UserDTO, error) {
	if actorAdminUserID <= 0 {
		return UserDTO{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if targetUserID <= 0 {
		return UserDTO{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if in.IsActive == nil && in.Role == nil {
		return UserDTO{}, NewHTTPError(http.StatusBadRequest, "nothing to update")
	}
	if in.Role != nil {
		switch model.Role(*in.Role) {
		case model.RoleUser, model.RoleAdmin:
		default:
			return UserDTO{}, NewHTTPError(http.StatusBadRequest, "invalid role")
		}
	}

	target, err := u.users.FindByID(ctx, targetUserID)
	if err != nil {
		return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if target == nil {
		return UserDTO{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	beforeJSON := fmt.Sprintf(`{"is_active":%t,"role":"%s"}`, target.IsActive, target.Role)

	if in.IsActive != nil {
		target.IsActive = *in.IsActive
	}
	if in.Role != nil {
		target.Role = model.Role(*in.Role)
	}

	if err := u.users.Update(ctx, target); err != nil {
		return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	afterJSON := fmt.Sprintf(`{"is_active":%t,"role":"%s"}`, target.IsActive, target.Role)

	//監査ログ（UPDATE_USER）
	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  actorAdminUserID,
		Action:       model.AuditActionUpdateUser,
		ResourceType: model.AuditResourceUser,
		ResourceID:   targetUserID,
		BeforeJSON:   beforeJSON,
		AfterJSON:    afterJSON,
		CreatedAt:    time.Now(),
	}); err != nil {
		return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return toUserDTO(target), nil
}
