package types

// ListReq 挂单请求
type ListReq struct {
	Caller             string `json:"caller" binding:"required"`
	ContractAddr       string `json:"contract_addr" binding:"required"`
	TokenID            string `json:"token_id" binding:"required"`
	Price              string `json:"price" binding:"required"` // 十进制字符串
	AllowCustomization bool   `json:"allow_customization"`
}

// BuyReq 购买请求
type BuyReq struct {
	Caller       string `json:"caller" binding:"required"`
	ContractAddr string `json:"contract_addr" binding:"required"`
	TokenID      string `json:"token_id" binding:"required"`
	AmountPaid   string `json:"amount_paid" binding:"required"`
}

// CancelSaleReq 撤单请求
type CancelSaleReq struct {
	Caller       string `json:"caller" binding:"required"`
	ContractAddr string `json:"contract_addr" binding:"required"`
	TokenID      string `json:"token_id" binding:"required"`
}

// UpdateFeesReq 费率调整请求
type UpdateFeesReq struct {
	Caller            string `json:"caller" binding:"required"`
	TradingFeeBps     int64  `json:"trading_fee_bps"`
	MarketplaceFeeBps int64  `json:"marketplace_fee_bps"`
}

// UpdateTreasuryReq 金库变更请求 (需预先调度时间锁操作)
type UpdateTreasuryReq struct {
	Caller   string `json:"caller" binding:"required"`
	Treasury string `json:"treasury" binding:"required"`
}

// WithdrawReq 协议费提取请求
type WithdrawReq struct {
	Caller string `json:"caller" binding:"required"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

// CustomizationReq 自定义属性锁请求
type CustomizationReq struct {
	Caller       string `json:"caller" binding:"required"`
	ContractAddr string `json:"contract_addr" binding:"required"`
	TokenID      string `json:"token_id" binding:"required"`
}

// FeeBreakdownResp 费用试算结果
type FeeBreakdownResp struct {
	Price          string `json:"price"`
	TradingFee     string `json:"trading_fee"`
	MarketplaceFee string `json:"marketplace_fee"`
	SellerProceeds string `json:"seller_proceeds"`
}

// ListingResp 挂单信息
type ListingResp struct {
	ContractAddr       string `json:"contract_addr"`
	TokenID            string `json:"token_id"`
	Seller             string `json:"seller"`
	Price              string `json:"price"`
	AllowCustomization bool   `json:"allow_customization"`
	IsActive           bool   `json:"is_active"`
	ListedAt           int64  `json:"listed_at"`
}

// StatsResp 账户交易统计
type StatsResp struct {
	Account        string `json:"account"`
	TotalSales     int64  `json:"total_sales"`
	TotalPurchases int64  `json:"total_purchases"`
	VolumeTraded   string `json:"volume_traded"`
}
