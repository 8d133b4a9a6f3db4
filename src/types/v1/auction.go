package types

// CreateAuctionReq 创建拍卖请求
type CreateAuctionReq struct {
	Caller          string `json:"caller" binding:"required"`
	Kind            string `json:"kind" binding:"required"` // traditional, english, dutch, sealed_bid
	ContractAddr    string `json:"contract_addr" binding:"required"`
	TokenID         string `json:"token_id" binding:"required"`
	StartPrice      string `json:"start_price" binding:"required"`
	ReservePrice    string `json:"reserve_price"`
	BidIncrement    string `json:"bid_increment"`
	BuyNowPrice     string `json:"buy_now_price"` // 可选, 仅英式
	DurationSeconds int64  `json:"duration_seconds" binding:"required"`
}

// BidReq 出价请求 (明价)
type BidReq struct {
	Caller    string `json:"caller" binding:"required"`
	AuctionID string `json:"auction_id" binding:"required"`
	Amount    string `json:"amount" binding:"required"`
}

// BuyNowReq 一口价购买请求
type BuyNowReq struct {
	Caller     string `json:"caller" binding:"required"`
	AuctionID  string `json:"auction_id" binding:"required"`
	AmountPaid string `json:"amount_paid" binding:"required"`
}

// CommitReq 密封出价承诺请求
type CommitReq struct {
	Caller     string `json:"caller" binding:"required"`
	AuctionID  string `json:"auction_id" binding:"required"`
	Commitment string `json:"commitment" binding:"required"`
}

// RevealReq 密封出价揭示请求
type RevealReq struct {
	Caller    string `json:"caller" binding:"required"`
	AuctionID string `json:"auction_id" binding:"required"`
	Amount    string `json:"amount" binding:"required"`
	Salt      string `json:"salt" binding:"required"`
}

// CancelAuctionReq 取消拍卖请求
type CancelAuctionReq struct {
	Caller    string `json:"caller" binding:"required"`
	AuctionID string `json:"auction_id" binding:"required"`
}

// SettleAuctionReq 结算拍卖请求 (无权限门槛)
type SettleAuctionReq struct {
	AuctionID string `json:"auction_id" binding:"required"`
}

// AuctionResp 拍卖信息
type AuctionResp struct {
	ID            string `json:"id"`
	ContractAddr  string `json:"contract_addr"`
	TokenID       string `json:"token_id"`
	Seller        string `json:"seller"`
	Kind          string `json:"kind"`
	Status        string `json:"status"`
	StartPrice    string `json:"start_price"`
	ReservePrice  string `json:"reserve_price"`
	BuyNowPrice   string `json:"buy_now_price,omitempty"`
	BidIncrement  string `json:"bid_increment"`
	StartTime     int64  `json:"start_time"`
	EndTime       int64  `json:"end_time"`
	RevealEnd     int64  `json:"reveal_end,omitempty"`
	CurrentBid    string `json:"current_bid"`
	HighestBidder string `json:"highest_bidder,omitempty"`
	BidCount      int    `json:"bid_count"`
	Winner        string `json:"winner,omitempty"`
	FinalPrice    string `json:"final_price,omitempty"`
}
