package gateway

import (
	"context"
	"errors"
	"strconv"

	"github.com/shopspring/decimal"
)

// 対応していない配送業者コード
var ErrUnknownCourier = errors.New("unknown courier")

// 料金照会の入力。
// origin/destinationは都市コード（数値文字列）。
type RateQuery struct {
	Origin      string
	Destination string
	WeightGrams int64
	Courier     string
}

// 照会結果の1件。ETDは到着目安（日数レンジ）。
type Rate struct {
	Service string          `json:"service"`
	Cost    decimal.Decimal `json:"cost"`
	ETD     string          `json:"etd"`
}

// 配送料金プロバイダの約束。
type RateProvider interface {
	GetRates(ctx context.Context, q RateQuery) ([]Rate, error)
}

// サービスごとの1kgあたり基本料金と到着目安
type rateEntry struct {
	service   string
	basePerKg int64
	etd       string
}

// 業者×サービスの基本料金表
var courierRates = map[string][]rateEntry{
	"jne": {
		{service: "OKE", basePerKg: 9000, etd: "3-6"},
		{service: "REG", basePerKg: 10000, etd: "2-3"},
		{service: "YES", basePerKg: 18000, etd: "1-1"},
	},
	"tiki": {
		{service: "ECO", basePerKg: 8500, etd: "4-6"},
		{service: "REG", basePerKg: 11000, etd: "2-3"},
	},
	"pos": {
		{service: "Paket Kilat", basePerKg: 9500, etd: "2-4"},
	},
}

type mockRateProvider struct{}

// ローカル用
func NewMockRateProvider() RateProvider {
	return &mockRateProvider{}
}

// cost = 基本料金 × ゾーン係数 × 請求重量(kg)。
// 請求重量は1kg単位の切り上げ（最低1kg）。
func (p *mockRateProvider) GetRates(ctx context.Context, q RateQuery) ([]Rate, error) {
	entries, ok := courierRates[q.Courier]
	if !ok {
		return nil, ErrUnknownCourier
	}

	factor := zoneFactor(q.Origin, q.Destination)
	kg := chargeableKg(q.WeightGrams)

	rates := make([]Rate, 0, len(entries))
	for _, e := range entries {
		cost := decimal.NewFromInt(e.basePerKg).
			Mul(factor).
			Mul(decimal.NewFromInt(kg))

		rates = append(rates, Rate{
			Service: e.service,
			Cost:    cost,
			ETD:     e.etd,
		})
	}

	return rates, nil
}

// 請求重量（kg、切り上げ・最低1kg）
func chargeableKg(grams int64) int64 {
	if grams <= 0 {
		return 1
	}
	kg := (grams + 999) / 1000
	if kg < 1 {
		kg = 1
	}
	return kg
}

// 都市コードの離れ具合からゾーン係数を決める。
// 同一都市=1.0、近距離=1.25、中距離=1.5、それ以外=2.0
func zoneFactor(origin, destination string) decimal.Decimal {
	o, errO := strconv.ParseInt(origin, 10, 64)
	d, errD := strconv.ParseInt(destination, 10, 64)
	if errO != nil || errD != nil {
		return decimal.NewFromInt(2)
	}

	diff := o - d
	if diff < 0 {
		diff = -diff
	}

	switch {
	case diff == 0:
		return decimal.NewFromInt(1)
	case diff < 100:
		return decimal.NewFromFloat(1.25)
	case diff < 500:
		return decimal.NewFromFloat(1.5)
	default:
		return decimal.NewFromInt(2)
	}
}
