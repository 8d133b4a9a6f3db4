package auction

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/ProjectsTask/EasySwapMarket/src/service/comm"
)

var (
	ErrAuctionNotFound      = errors.New("auction: auction not found")
	ErrInvalidPrice         = errors.New("auction: invalid price config")
	ErrInvalidDuration      = errors.New("auction: invalid duration")
	ErrNotTheOwner          = errors.New("auction: caller is not the asset owner")
	ErrNotTheSeller         = errors.New("auction: caller is not the seller")
	ErrSellerCannotBid      = errors.New("auction: seller cannot bid on own auction")
	ErrBidTooLow            = errors.New("auction: bid too low")
	ErrAuctionClosed        = errors.New("auction: auction closed")
	ErrAuctionNotDue        = errors.New("auction: auction not due for settlement")
	ErrCannotCancelWithBids = errors.New("auction: cannot cancel with bids")
	ErrWrongAuctionType     = errors.New("auction: operation not supported by auction type")
	ErrAlreadyCommitted     = errors.New("auction: bidder already committed")
	ErrNoCommitment         = errors.New("auction: no commitment for bidder")
	ErrInvalidReveal        = errors.New("auction: reveal does not match commitment")
	ErrNotRevealPhase       = errors.New("auction: not in reveal phase")
)

// Kind 拍卖类型
type Kind int

const (
	KindTraditional Kind = iota // 固定时长, 出价高于当前价即可
	KindEnglish                 // 英式: 最小加价幅度, 可选一口价
	KindDutch                   // 荷兰式: 价格随时间线性下降, 先到先得
	KindSealedBid               // 密封出价: 承诺-揭示两阶段
)

var kindNames = map[Kind]string{
	KindTraditional: "traditional",
	KindEnglish:     "english",
	KindDutch:       "dutch",
	KindSealedBid:   "sealed_bid",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// KindFromName 根据名称解析拍卖类型
func KindFromName(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// Status 拍卖状态
// 状态机: Active -> {Ended, Cancelled}; 密封出价额外经过 Active -> Revealing -> Ended
// Ended / Cancelled 为终态, 记录不可再变更
type Status int

const (
	StatusActive Status = iota
	StatusRevealing
	StatusEnded
	StatusCancelled
)

var statusNames = map[Status]string{
	StatusActive:    "active",
	StatusRevealing: "revealing",
	StatusEnded:     "ended",
	StatusCancelled: "cancelled",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// sealedEntry 密封出价记录
// Active 阶段只存承诺哈希; Revealing 阶段补充揭示金额
type sealedEntry struct {
	commitment string          // keccak256(amount ‖ salt ‖ bidder) 的十六进制
	revealed   bool            // 是否已有效揭示
	amount     decimal.Decimal // 揭示金额 (仅 revealed 时有效)
}

// Auction 拍卖记录
type Auction struct {
	ID           string           `json:"id"`
	Asset        comm.AssetRef    `json:"asset"`
	Seller       string           `json:"seller"`
	Kind         Kind             `json:"kind"`
	Status       Status           `json:"status"`
	StartPrice   decimal.Decimal  `json:"start_price"`
	ReservePrice decimal.Decimal  `json:"reserve_price"`
	BuyNowPrice  *decimal.Decimal `json:"buy_now_price,omitempty"` // 一口价, 仅英式可选
	BidIncrement decimal.Decimal  `json:"bid_increment"`
	StartTime    time.Time        `json:"start_time"`
	EndTime      time.Time        `json:"end_time"`
	RevealEnd    time.Time        `json:"reveal_end,omitempty"` // 揭示窗口截止 (密封出价)

	CurrentBid    decimal.Decimal `json:"current_bid"`
	HighestBidder string          `json:"highest_bidder"` // 空串表示暂无有效出价
	BidCount      int             `json:"bid_count"`
	Winner        string          `json:"winner"`      // 结算后胜出者
	FinalPrice    decimal.Decimal `json:"final_price"` // 结算价

	sealed map[string]*sealedEntry // bidder -> 密封出价记录
}

// ComputeCommitment 计算密封出价承诺哈希
// H(amount ‖ salt ‖ bidder), 金额用十进制字符串规范化, 地址小写
func ComputeCommitment(amount decimal.Decimal, salt string, bidder string) string {
	preimage := fmt.Sprintf("%s%s%s", amount.String(), salt, strings.ToLower(bidder))
	return hexutil.Encode(crypto.Keccak256([]byte(preimage)))
}
