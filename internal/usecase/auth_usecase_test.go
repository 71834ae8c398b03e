package usecase

import (
	"context"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

// AuthValidatorMock は入力検証を素通しにする（検証自体はvalidator側でテストする）
type AuthValidatorMock struct{ mock.Mock }

func (m *AuthValidatorMock) ValidateRegister(ctx context.Context, email string, password string) error {
	args := m.Called(ctx, email, password)
	return args.Error(0)
}

func (m *AuthValidatorMock) ValidateLogin(ctx context.Context, email string, password string) error {
	args := m.Called(ctx, email, password)
	return args.Error(0)
}

func (m *AuthValidatorMock) ValidateRefresh(ctx context.Context, refreshToken string, userAgent string) error {
	args := m.Called(ctx, refreshToken, userAgent)
	return args.Error(0)
}

func (m *AuthValidatorMock) ValidateLogout(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *AuthValidatorMock) ValidateForceLogout(ctx context.Context, targetUserID int64) error {
	args := m.Called(ctx, targetUserID)
	return args.Error(0)
}

func newAuthTestDeps() (*UserRepoMock, *RefreshTokenRepoMock, *AuthValidatorMock, *AuthUsecase) {
	users := &UserRepoMock{}
	rts := &RefreshTokenRepoMock{}
	v := &AuthValidatorMock{}
	cfg := config.Config{JWTSecret: "test_secret"}
	return users, rts, v, NewAuthUsecase(cfg, users, rts, v)
}

func mustHash(t *testing.T, password string) string {
	t.Helper()

	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)
	return string(h)
}

func TestLogin_Success(t *testing.T) {
	users, rts, v, uc := newAuthTestDeps()
	ctx := context.Background()

	v.On("ValidateLogin", ctx, "a@example.com", "secret123").Return(nil)
	users.On("FindByEmail", ctx, "a@example.com").Return(&model.User{
		ID: 1, Email: "a@example.com", PasswordHash: mustHash(t, "secret123"),
		Role: model.RoleUser, TokenVersion: 0, IsActive: true,
	}, nil)
	users.On("Update", ctx, mock.Anything).Return(nil)
	rts.On("Create", ctx, mock.MatchedBy(func(rt *model.RefreshToken) bool {
		//平文ではなくhashを保存していること
		return rt.UserID == 1 && rt.TokenHash != "" && rt.ID != ""
	})).Return(nil)

	res, err := uc.Login(ctx, AuthLoginRequest{Email: "a@example.com", Password: "secret123"}, "ua", "127.0.0.1")

	assert.NoError(t, err)
	assert.NotEmpty(t, res.Body.Token.AccessToken)
	assert.NotEmpty(t, res.RefreshTokenPlain)
	assert.NotEmpty(t, res.CsrfTokenPlain)
	assert.Equal(t, int64(1), res.Body.User.ID)
}

func TestLogin_WrongPassword(t *testing.T) {
	users, _, v, uc := newAuthTestDeps()
	ctx := context.Background()

	v.On("ValidateLogin", ctx, "a@example.com", "wrong").Return(nil)
	users.On("FindByEmail", ctx, "a@example.com").Return(&model.User{
		ID: 1, PasswordHash: mustHash(t, "secret123"), IsActive: true,
	}, nil)

	_, err := uc.Login(ctx, AuthLoginRequest{Email: "a@example.com", Password: "wrong"}, "ua", "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestLogin_InactiveUser(t *testing.T) {
	users, _, v, uc := newAuthTestDeps()
	ctx := context.Background()

	v.On("ValidateLogin", ctx, "a@example.com", "secret123").Return(nil)
	users.On("FindByEmail", ctx, "a@example.com").Return(&model.User{
		ID: 1, PasswordHash: mustHash(t, "secret123"), IsActive: false,
	}, nil)

	_, err := uc.Login(ctx, AuthLoginRequest{Email: "a@example.com", Password: "secret123"}, "ua", "")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestRefresh_RotatesToken(t *testing.T) {
	users, rts, v, uc := newAuthTestDeps()
	ctx := context.Background()

	plain := "refresh-plain"
	hash := hashToken(plain)

	v.On("ValidateRefresh", ctx, plain, "ua").Return(nil)
	rts.On("FindByTokenHash", ctx, hash).Return(&model.RefreshToken{
		ID: "rt-1", UserID: 1, TokenHash: hash, UserAgent: "ua",
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil)
	users.On("FindByID", ctx, int64(1)).Return(&model.User{
		ID: 1, Role: model.RoleUser, IsActive: true,
	}, nil)
	rts.On("MarkUsed", ctx, "rt-1").Return(nil)
	rts.On("Create", ctx, mock.Anything).Return(nil)

	res, err := uc.Refresh(ctx, plain, "ua", "")

	assert.NoError(t, err)
	assert.NotEmpty(t, res.Body.AccessToken)
	//ローテーション後は新しい平文が返る
	assert.NotEqual(t, plain, res.RefreshTokenPlain)
	rts.AssertCalled(t, "MarkUsed", ctx, "rt-1")
}

func TestRefresh_ReplayDetection(t *testing.T) {
	_, rts, v, uc := newAuthTestDeps()
	ctx := context.Background()

	plain := "refresh-plain"
	hash := hashToken(plain)
	used := time.Now().Add(-time.Minute)

	v.On("ValidateRefresh", ctx, plain, "ua").Return(nil)
	rts.On("FindByTokenHash", ctx, hash).Return(&model.RefreshToken{
		ID: "rt-1", UserID: 1, TokenHash: hash, UserAgent: "ua",
		ExpiresAt: time.Now().Add(time.Hour),
		UsedAt:    &used,
	}, nil)
	rts.On("DeleteAllByUserID", ctx, int64(1)).Return(nil)

	_, err := uc.Refresh(ctx, plain, "ua", "")

	//used済みの再利用は全トークン破棄
	assert.ErrorIs(t, err, ErrSecurityIncident)
	rts.AssertCalled(t, "DeleteAllByUserID", ctx, int64(1))
}

func TestRefresh_ExpiredToken(t *testing.T) {
	_, rts, v, uc := newAuthTestDeps()
	ctx := context.Background()

	plain := "refresh-plain"
	hash := hashToken(plain)

	v.On("ValidateRefresh", ctx, plain, "ua").Return(nil)
	rts.On("FindByTokenHash", ctx, hash).Return(&model.RefreshToken{
		ID: "rt-1", UserID: 1, TokenHash: hash,
		ExpiresAt: time.Now().Add(-time.Hour),
	}, nil)
	rts.On("DeleteByID", ctx, "rt-1").Return(nil)

	_, err := uc.Refresh(ctx, plain, "ua", "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestForceLogout_BumpsTokenVersion(t *testing.T) {
	users, rts, v, uc := newAuthTestDeps()
	ctx := context.Background()

	v.On("ValidateForceLogout", ctx, int64(1)).Return(nil)
	users.On("IncrementTokenVersion", ctx, int64(1)).Return(nil)
	rts.On("DeleteAllByUserID", ctx, int64(1)).Return(nil)
	users.On("FindByID", ctx, int64(1)).Return(&model.User{ID: 1, TokenVersion: 3}, nil)

	res, err := uc.ForceLogout(ctx, 1)

	assert.NoError(t, err)
	assert.Equal(t, 3, res.NewTokenVersion)
	rts.AssertCalled(t, "DeleteAllByUserID", ctx, int64(1))
}
