package handler

import (
	"net/http"
	"strconv"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 配送料金の照会
type ShippingHandler struct {
	uc *usecase.ShippingUsecase
}

// DI
func NewShippingHandler(uc *usecase.ShippingUsecase) *ShippingHandler {
	return &ShippingHandler{uc: uc}
}

func (h *ShippingHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/shipping/rates", h.rates)
}

func (h *ShippingHandler) rates(c echo.Context) error {
	weightStr := c.QueryParam("weight")
	weight, err := strconv.ParseInt(weightStr, 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid weight"})
	}

	out, uerr := h.uc.GetRates(c.Request().Context(), usecase.ShippingRatesInput{
		Origin:      c.QueryParam("origin"),
		Destination: c.QueryParam("destination"),
		WeightGrams: weight,
		Courier:     c.QueryParam("courier"),
	})
	if uerr != nil {
		return writeError(c, uerr)
	}

	return c.JSON(http.StatusOK, out)
}
