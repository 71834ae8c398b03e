package handler

import (
	"net/http"
	"strconv"

	"storefront/internal/config"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminUserHandler struct {
	cfg      config.Config
	userRepo repository.UserRepository
	authUC   *usecase.AuthUsecase
	userUC   *usecase.AdminUserUsecase
}

func NewAdminUserHandler(cfg config.Config, userRepo repository.UserRepository, authUC *usecase.AuthUsecase, userUC *usecase.AdminUserUsecase) *AdminUserHandler {
	return &AdminUserHandler{cfg: cfg, userRepo: userRepo, authUC: authUC, userUC: userUC}
}

type AdminUserUpdateRequest struct {
	IsActive *bool   `json:"is_active"`
	Role     *string `json:"role"`
}

func (h *AdminUserHandler) RegisterRoutes(e *echo.Echo) {
	// ★ /admin 配下は全部「JWT必須 + token_version一致 + ADMIN限定」
	admin := e.Group(
		"/admin",
		middleware.AuthJWT(h.cfg),
		middleware.TokenVersionGuard(h.userRepo),
		middleware.AdminRoleGuard(),
	)

	admin.GET("/users", h.List)
	admin.PATCH("/users/:id", h.Update)
	admin.POST("/users/:id/force-logout", h.ForceLogout)
}

func (h *AdminUserHandler) List(c echo.Context) error {
	page, limit := parsePageLimit(c)

	out, err := h.userUC.List(c.Request().Context(), page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminUserHandler) Update(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	targetID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || targetID <= 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user_id"})
	}

	var req AdminUserUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, uerr := h.userUC.Update(c.Request().Context(), adminID, targetID, usecase.AdminUpdateUserInput{
		IsActive: req.IsActive,
		Role:     req.Role,
	})
	if uerr != nil {
		return writeError(c, uerr)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminUserHandler) ForceLogout(c echo.Context) error {
	idStr := c.Param("id")
	userID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || userID <= 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user_id"})
	}

	res, uerr := h.authUC.ForceLogout(c.Request().Context(), userID)
	if uerr != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}

	return c.JSON(http.StatusOK, res)
}
