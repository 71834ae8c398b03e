package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"storefront/internal/gateway"
)

type ShippingUsecase struct {
	rates gateway.RateProvider
}

func NewShippingUsecase(rates gateway.RateProvider) *ShippingUsecase {
	return &ShippingUsecase{rates: rates}
}

type ShippingRatesInput struct {
	Origin      string
	Destination string
	WeightGrams int64
	Courier     string
}

type ShippingRatesOutput struct {
	Rates []gateway.Rate `json:"rates"`
}

// 配送料金の照会（provider呼び出しは読み取りだけ）
func (u *ShippingUsecase) GetRates(ctx context.Context, in ShippingRatesInput) (ShippingRatesOutput, error) {
	if strings.TrimSpace(in.Origin) == "" {
		return ShippingRatesOutput{}, NewHTTPError(http.StatusBadRequest, "origin required")
	}
	if strings.TrimSpace(in.Destination) == "" {
		return ShippingRatesOutput{}, NewHTTPError(http.StatusBadRequest, "destination required")
	}
	if in.WeightGrams <= 0 {
		return ShippingRatesOutput{}, NewHTTPError(http.StatusBadRequest, "invalid weight")
	}
	if strings.TrimSpace(in.Courier) == "" {
		return ShippingRatesOutput{}, NewHTTPError(http.StatusBadRequest, "courier required")
	}

	rates, err := u.rates.GetRates(ctx, gateway.RateQuery{
		Origin:      strings.TrimSpace(in.Origin),
		Destination: strings.TrimSpace(in.Destination),
		WeightGrams: in.WeightGrams,
		Courier:     strings.TrimSpace(in.Courier),
	})
	if errors.Is(err, gateway.ErrUnknownCourier) {
		return ShippingRatesOutput{}, NewHTTPError(http.StatusBadRequest, "unknown courier")
	}
	if err != nil {
		return ShippingRatesOutput{}, NewHTTPError(http.StatusInternalServerError, "shipping rate error")
	}

	return ShippingRatesOutput{Rates: rates}, nil
}
