package trading

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestCalculateFeesStandard(t *testing.T) {
	// 交易费 250 bps, 市场费 100 bps, 价格 1.0
	fees := calculateFees(d("1.0"), 250, 100, d("0.001"))

	assert.True(t, fees.TradingFee.Equal(d("0.025")), "trading fee = %s", fees.TradingFee)
	assert.True(t, fees.MarketplaceFee.Equal(d("0.01")), "marketplace fee = %s", fees.MarketplaceFee)
	assert.True(t, fees.SellerProceeds.Equal(d("0.965")), "seller proceeds = %s", fees.SellerProceeds)
}

func TestCalculateFeesMinimumFloor(t *testing.T) {
	// 小额成交: 0.01 * 250bps = 0.00025 < 最低费用 0.001, 地板生效
	fees := calculateFees(d("0.01"), 250, 100, d("0.001"))

	assert.True(t, fees.TradingFee.Equal(d("0.001")), "trading fee = %s", fees.TradingFee)
	assert.True(t, fees.MarketplaceFee.Equal(d("0.0001")))
	assert.True(t, fees.SellerProceeds.Equal(d("0.0089")))
}

func TestCalculateFeesSumInvariant(t *testing.T) {
	// 任意费率组合下: tradingFee + marketplaceFee + sellerProceeds == price
	prices := []string{"0.0001", "0.01", "0.5", "1.0", "123.456", "99999.999999"}
	bpsPairs := [][2]int64{{0, 0}, {250, 100}, {500, 500}, {1, 999}, {1000, 0}}

	for _, p := range prices {
		price := d(p)
		for _, bps := range bpsPairs {
			fees := calculateFees(price, bps[0], bps[1], d("0.001"))
			sum := fees.TradingFee.Add(fees.MarketplaceFee).Add(fees.SellerProceeds)
			assert.True(t, sum.Equal(price),
				"price=%s bps=%v sum=%s", p, bps, sum)
		}
	}
}

func TestCalculateFeesZeroMinimum(t *testing.T) {
	// 没有最低费用时按纯比例拆分
	fees := calculateFees(d("2"), 250, 100, decimal.Zero)

	assert.True(t, fees.TradingFee.Equal(d("0.05")))
	assert.True(t, fees.MarketplaceFee.Equal(d("0.02")))
	assert.True(t, fees.SellerProceeds.Equal(d("1.93")))
}
