package handler

import (
	"net/http"
	"os"
	"time"

	"storefront/internal/config"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/usecase"
	"storefront/internal/validator"

	"github.com/labstack/echo/v4"
)

// /authと/meのHTTP
type AuthHandler struct {
	cfg          config.Config
	uc           *usecase.AuthUsecase
	userRepo     repository.UserRepository
	cookieSecure bool
}

// DIコンストラクタ
func NewAuthHandler(cfg config.Config, uc *usecase.AuthUsecase, userRepo repository.UserRepository) *AuthHandler {
	return &AuthHandler{
		cfg:          cfg,
		uc:           uc,
		userRepo:     userRepo,
		cookieSecure: envBool("COOKIE_SECURE", true),
	}
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True":
		return true
	case "0", "false", "FALSE", "False":
		return false
	default:
		return def
	}
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/auth/register", h.Register)
	e.POST("/auth/login", h.Login)
	e.POST("/auth/refresh", h.Refresh)
	e.POST("/auth/logout", h.Logout)

	me := e.Group("/me")
	me.Use(middleware.AuthJWT(h.cfg))
	me.Use(middleware.TokenVersionGuard(h.userRepo))
	me.GET("", h.Me)
}

// RegisterはPOST /auth/registerのハンドラ
func (h *AuthHandler) Register(c echo.Context) error {
	var req usecase.AuthRegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation error"})
	}

	out, err := h.uc.Register(c.Request().Context(), req)
	if err != nil {
		return writeAuthError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// LoginはPOST /auth/loginのハンドラ。
func (h *AuthHandler) Login(c echo.Context) error {
	var req usecase.AuthLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation error"})
	}

	// User-Agentを取得（refreshtokenに紐付ける）
	userAgent := c.Request().Header.Get("User-Agent")
	ip := c.RealIP()

	res, err := h.uc.Login(c.Request().Context(), req, userAgent, ip)
	if err != nil {
		return writeAuthError(c, err)
	}

	// refresh cookie + csrf cookie
	h.setRefreshCookie(c, res.RefreshTokenPlain)
	h.setCsrfCookie(c, res.CsrfTokenPlain)

	//JSONレスポンス（user + token）
	return c.JSON(http.StatusOK, res.Body)
}

// RefreshはPOST /auth/refreshのハンドラ。
// refresh cookie＋CSRFヘッダ（double submit）が必要。
func (h *AuthHandler) Refresh(c echo.Context) error {
	refreshCookie, err := c.Cookie("refresh")
	if err != nil || refreshCookie.Value == "" {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	//csrf_token cookieとX-CSRF-Tokenヘッダの一致を確認
	csrfCookie, err := c.Cookie("csrf_token")
	if err != nil || csrfCookie.Value == "" {
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
	}
	if c.Request().Header.Get("X-CSRF-Token") != csrfCookie.Value {
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
	}

	userAgent := c.Request().Header.Get("User-Agent")
	ip := c.RealIP()

	res, uerr := h.uc.Refresh(c.Request().Context(), refreshCookie.Value, userAgent, ip)
	if uerr != nil {
		//replay検知などはcookieも消す
		h.clearAuthCookies(c)
		return writeAuthError(c, uerr)
	}

	//ローテーション後のcookieをセットし直す
	h.setRefreshCookie(c, res.RefreshTokenPlain)
	h.setCsrfCookie(c, res.CsrfTokenPlain)

	return c.JSON(http.StatusOK, res.Body)
}

// LogoutはPOST /auth/logoutのハンドラ。
func (h *AuthHandler) Logout(c echo.Context) error {
	refreshCookie, err := c.Cookie("refresh")
	if err != nil || refreshCookie.Value == "" {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, uerr := h.uc.Logout(c.Request().Context(), refreshCookie.Value)
	if uerr != nil {
		return writeAuthError(c, uerr)
	}

	h.clearAuthCookies(c)
	return c.JSON(http.StatusOK, out)
}

// MeはGET /meのハンドラ。
func (h *AuthHandler) Me(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	dto, err := h.uc.Me(c.Request().Context(), userID)
	if err != nil {
		return writeAuthError(c, err)
	}

	return c.JSON(http.StatusOK, dto)
}

// refreshtoken をCookieにセット。
func (h *AuthHandler) setRefreshCookie(c echo.Context, plainRefresh string) {
	c.SetCookie(&http.Cookie{
		Name:     "refresh",
		Value:    plainRefresh,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(30 * 24 * time.Hour),
	})
}

// csrftokenをCookieにセット（JSから読めるようHttpOnlyなし）
func (h *AuthHandler) setCsrfCookie(c echo.Context, csrfToken string) {
	c.SetCookie(&http.Cookie{
		Name:     "csrf_token",
		Value:    csrfToken,
		Path:     "/",
		HttpOnly: false,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(30 * 24 * time.Hour),
	})
}

func (h *AuthHandler) clearAuthCookies(c echo.Context) {
	for _, name := range []string{"refresh", "csrf_token"} {
		c.SetCookie(&http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			HttpOnly: name == "refresh",
			Secure:   h.cookieSecure,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,
		})
	}
}

// auth系のsentinelエラーをHTTPステータスに読み替える
func writeAuthError(c echo.Context, err error) error {
	switch err {
	case usecase.ErrValidation, validator.ErrInvalidInput:
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation error"})
	case validator.ErrEmailAlreadyUsed, usecase.ErrConflict:
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "conflict"})
	case usecase.ErrUnauthorized, validator.ErrInvalidRefresh, usecase.ErrSecurityIncident:
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	case usecase.ErrForbidden:
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
	default:
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
