package handler

import (
	"net/http"
	"strconv"

	"storefront/internal/config"
	"storefront/internal/gateway"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 決済の作成と、ゲートウェイからの通知Webhook
type PaymentHandler struct {
	uc *usecase.PaymentUsecase
}

// DI
func NewPaymentHandler(uc *usecase.PaymentUsecase) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

type PaymentCreateRequest struct {
	PaymentType string `json:"payment_type"`
}

func (h *PaymentHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/orders")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))
	g.POST("/:id/payment", h.create)

	//Webhookはゲートウェイが叩くので認証なし
	e.POST("/payments/notification", h.notification)
}

func (h *PaymentHandler) create(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req PaymentCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, uerr := h.uc.CreatePayment(c.Request().Context(), userID, orderID, usecase.CreatePaymentInput{
		PaymentType: req.PaymentType,
	})
	if uerr != nil {
		return writeError(c, uerr)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *PaymentHandler) notification(c echo.Context) error {
	var n gateway.PaymentNotification
	if err := c.Bind(&n); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.HandleNotification(c.Request().Context(), n); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "ok"})
}
