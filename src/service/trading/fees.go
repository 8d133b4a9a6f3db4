package trading

import (
	"github.com/shopspring/decimal"
)

// 费率以基点 (basis points) 表示, 10000 bps = 100%
const (
	BpsDenominator   = 10000
	MaxTradingFeeBps = 1000 // 交易费率 + 市场费率 之和的上限 (10%)
)

// FeeBreakdown 一次成交的费用拆分
type FeeBreakdown struct {
	TradingFee     decimal.Decimal `json:"trading_fee"`     // 协议交易费 (含最低费用地板)
	MarketplaceFee decimal.Decimal `json:"marketplace_fee"` // 市场运营费 (结算时直接划入金库)
	SellerProceeds decimal.Decimal `json:"seller_proceeds"` // 卖家实收
}

// calculateFees 按当前费率拆分成交金额
// tradingFee = max(price * tradingFeeBps / 10000, minimumTradingFee)
// marketplaceFee = price * marketplaceFeeBps / 10000
// sellerProceeds = price - tradingFee - marketplaceFee
// 不变式: TradingFee + MarketplaceFee + SellerProceeds == price
func calculateFees(price decimal.Decimal, tradingFeeBps int64, marketplaceFeeBps int64, minimumTradingFee decimal.Decimal) FeeBreakdown {
	denominator := decimal.NewFromInt(BpsDenominator)

	tradingFee := price.Mul(decimal.NewFromInt(tradingFeeBps)).Div(denominator)
	// 最低交易费地板: 小额成交按固定最低费用收取
	if tradingFee.LessThan(minimumTradingFee) {
		tradingFee = minimumTradingFee
	}

	marketplaceFee := price.Mul(decimal.NewFromInt(marketplaceFeeBps)).Div(denominator)
	sellerProceeds := price.Sub(tradingFee).Sub(marketplaceFee)

	return FeeBreakdown{
		TradingFee:     tradingFee,
		MarketplaceFee: marketplaceFee,
		SellerProceeds: sellerProceeds,
	}
}
