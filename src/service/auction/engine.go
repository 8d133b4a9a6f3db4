package auction

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/zeromicro/go-zero/core/threading"
	"go.uber.org/zap"

	"github.com/ProjectsTask/EasySwapMarket/src/pkg/xzap"
	"github.com/ProjectsTask/EasySwapMarket/src/service/accesscontrol"
	"github.com/ProjectsTask/EasySwapMarket/src/service/comm"
	"github.com/ProjectsTask/EasySwapMarket/src/service/lockregistry"
	"github.com/ProjectsTask/EasySwapMarket/src/service/trading"
)

// 出价流水类型
const (
	BidKindOpen   = 0 // 明价出价
	BidKindCommit = 1 // 密封承诺
	BidKindReveal = 2 // 揭示
)

// BidRecord 出价流水 (持久化用)
type BidRecord struct {
	AuctionID  string
	Bidder     string
	Amount     decimal.Decimal
	Commitment string
	Kind       int
	EventTime  time.Time
}

// Store 拍卖数据持久化接口, 由 Dao 实现 (写穿透)
type Store interface {
	SaveAuction(ctx context.Context, auction Auction) error
	SaveBid(ctx context.Context, bid BidRecord) error
}

// Config 拍卖引擎配置
type Config struct {
	RevealWindow  time.Duration // 密封出价的揭示窗口时长
	SweepInterval time.Duration // 后台结算巡检周期
}

// Engine 拍卖引擎
// 同一资产集合上的四种拍卖协议: 固定时长 / 英式 / 荷兰式 / 密封出价
// 与交易管理器共用访问控制、资产锁与费用模型
type Engine struct {
	mu sync.Mutex

	ctx    context.Context
	access *accesscontrol.Registry
	locks  *lockregistry.Registry
	ledger comm.AssetLedger
	vault  comm.EscrowVault
	fees   *trading.Manager // 费用模型与交易统计复用交易管理器
	clock  comm.Clock
	events comm.EventSink
	store  Store

	auctions map[string]*Auction

	revealWindow  time.Duration
	sweepInterval time.Duration
}

// New 创建拍卖引擎
func New(ctx context.Context, access *accesscontrol.Registry, locks *lockregistry.Registry,
	ledger comm.AssetLedger, vault comm.EscrowVault, fees *trading.Manager,
	clock comm.Clock, events comm.EventSink, cfg Config) *Engine {
	if events == nil {
		events = comm.NopSink{}
	}
	return &Engine{
		ctx:           ctx,
		access:        access,
		locks:         locks,
		ledger:        ledger,
		vault:         vault,
		fees:          fees,
		clock:         clock,
		events:        events,
		auctions:      make(map[string]*Auction),
		revealWindow:  cfg.RevealWindow,
		sweepInterval: cfg.SweepInterval,
	}
}

// SetStore 注入持久化实现
func (e *Engine) SetStore(s Store) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.store = s
}

// Start 启动后台结算巡检
// 周期性地将到期的密封拍卖切入揭示阶段, 并结算所有已到期的拍卖
func (e *Engine) Start() {
	threading.GoSafe(e.sweepLoop)
}

func (e *Engine) sweepLoop() {
	ticker := time.NewTicker(e.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.ctx.Done():
			xzap.WithContext(e.ctx).Info("auction sweep loop stopped")
			return
		case <-ticker.C:
			e.sweepOnce()
		}
	}
}

// sweepOnce 单轮巡检: 收集到期拍卖后逐个结算
func (e *Engine) sweepOnce() {
	now := e.clock.Now()

	e.mu.Lock()
	var due []string
	for id, a := range e.auctions {
		// 密封拍卖先惰性切入揭示阶段, 其到期以揭示窗口截止为准
		e.maybeTransitionLocked(a, now)
		if a.Status == StatusActive && !now.Before(a.EndTime) {
			due = append(due, id)
		}
		if a.Status == StatusRevealing && !now.Before(a.RevealEnd) {
			due = append(due, id)
		}
	}
	e.mu.Unlock()

	for _, id := range due {
		if err := e.SettleAuction(id); err != nil && !errors.Is(err, ErrAuctionNotDue) {
			xzap.WithContext(e.ctx).Error("failed on settle auction",
				zap.String("auction_id", id), zap.Error(err))
		}
	}
}

// CreateAuction 创建拍卖
// 发起方必须持有该资产; 创建即占用共享资产锁并锁定自定义属性
func (e *Engine) CreateAuction(caller string, kind Kind, contractAddr string, tokenID string,
	startPrice decimal.Decimal, reservePrice decimal.Decimal, bidIncrement decimal.Decimal,
	buyNowPrice *decimal.Decimal, duration time.Duration) (string, error) {
	// 1. 全局暂停与合约授权检查
	if err := e.access.EnsureActive(); err != nil {
		return "", err
	}
	if !e.access.IsAuthorizedContract(contractAddr) {
		return "", trading.ErrContractNotAuthorized
	}

	// 2. 参数校验, 按类型各自的约束
	if duration <= 0 {
		return "", ErrInvalidDuration
	}
	if startPrice.IsNegative() || reservePrice.IsNegative() {
		return "", ErrInvalidPrice
	}
	switch kind {
	case KindEnglish:
		if !bidIncrement.IsPositive() {
			return "", ErrInvalidPrice
		}
		if buyNowPrice != nil && !buyNowPrice.IsPositive() {
			return "", ErrInvalidPrice
		}
	case KindDutch:
		// 荷兰式从 startPrice 线性降到 reservePrice, 必须严格下降
		if !startPrice.GreaterThan(reservePrice) {
			return "", ErrInvalidPrice
		}
	case KindTraditional, KindSealedBid:
	default:
		return "", ErrWrongAuctionType
	}
	// 一口价仅英式支持
	if buyNowPrice != nil && kind != KindEnglish {
		return "", ErrWrongAuctionType
	}

	asset := comm.AssetRef{ContractAddr: contractAddr, TokenID: tokenID}
	// 3. 发起方必须持有资产 (AUCTION_MANAGER 只拥有撤销权, 不能代卖)
	if !e.ledger.IsOwner(asset, caller) {
		return "", ErrNotTheOwner
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// 4. 占用共享资产锁: 资产已挂单或已在拍卖中会失败
	key := asset.Key()
	if err := e.locks.Acquire(key, lockregistry.HolderAuction, true); err != nil {
		return "", err
	}

	now := e.clock.Now()
	a := &Auction{
		ID:           uuid.NewString(),
		Asset:        asset,
		Seller:       strings.ToLower(caller),
		Kind:         kind,
		Status:       StatusActive,
		StartPrice:   startPrice,
		ReservePrice: reservePrice,
		BuyNowPrice:  buyNowPrice,
		BidIncrement: bidIncrement,
		StartTime:    now,
		EndTime:      now.Add(duration),
		CurrentBid:   startPrice,
		FinalPrice:   decimal.Zero,
	}
	if kind == KindSealedBid {
		a.RevealEnd = a.EndTime.Add(e.revealWindow)
		a.sealed = make(map[string]*sealedEntry)
	}
	e.auctions[a.ID] = a

	e.persistAuction(*a)
	e.events.Publish(comm.MarketEvent{
		Type:      comm.EventAuctionCreated,
		Account:   a.Seller,
		AssetKey:  key,
		Detail:    fmt.Sprintf("id=%s kind=%s", a.ID, kind),
		EventTime: now,
	})
	return a.ID, nil
}

// PlaceBid 明价出价 (固定时长 / 英式)
// 每一笔被接受的出价即时托管资金, 被超越的前一名即时退款
func (e *Engine) PlaceBid(caller string, auctionID string, amount decimal.Decimal) error {
	if err := e.access.EnsureActive(); err != nil {
		return err
	}

	bidder := strings.ToLower(caller)

	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.auctions[auctionID]
	if !ok {
		return ErrAuctionNotFound
	}
	now := e.clock.Now()
	e.maybeTransitionLocked(a, now)

	if a.Kind != KindTraditional && a.Kind != KindEnglish {
		return ErrWrongAuctionType
	}
	if a.Status != StatusActive || !now.Before(a.EndTime) {
		return ErrAuctionClosed
	}
	if bidder == a.Seller {
		return ErrSellerCannotBid
	}

	// 按类型校验出价规则, 不满足时不触碰任何状态
	switch a.Kind {
	case KindTraditional:
		// 任意高于当前价的出价均可
		if !amount.GreaterThan(a.CurrentBid) {
			return ErrBidTooLow
		}
	case KindEnglish:
		// 必须达到 当前价 + 最小加价幅度
		if amount.LessThan(a.CurrentBid.Add(a.BidIncrement)) {
			return ErrBidTooLow
		}
	}

	// 托管本笔出价资金
	if err := e.vault.HoldFunds(bidder, amount); err != nil {
		return errors.Wrap(err, "failed on hold bid funds")
	}
	// 前一名被超越, 立即退还其托管资金
	if a.HighestBidder != "" {
		if err := e.vault.Refund(a.HighestBidder, a.CurrentBid); err != nil {
			xzap.WithContext(context.Background()).Error("failed on refund outbid bidder",
				zap.String("bidder", a.HighestBidder), zap.Error(err))
		}
	}

	a.CurrentBid = amount
	a.HighestBidder = bidder
	a.BidCount++

	e.persistAuction(*a)
	e.persistBid(BidRecord{
		AuctionID: a.ID,
		Bidder:    bidder,
		Amount:    amount,
		Kind:      BidKindOpen,
		EventTime: now,
	})
	e.events.Publish(comm.MarketEvent{
		Type:      comm.EventBidPlaced,
		Account:   bidder,
		AssetKey:  a.Asset.Key(),
		Detail:    fmt.Sprintf("id=%s amount=%s", a.ID, amount),
		EventTime: now,
	})

	// 英式一口价: 出价达到 buyNow 按一口价即时成交, 超出部分退回
	if a.Kind == KindEnglish && a.BuyNowPrice != nil && !amount.LessThan(*a.BuyNowPrice) {
		if overpay := amount.Sub(*a.BuyNowPrice); overpay.IsPositive() {
			if err := e.vault.Refund(bidder, overpay); err != nil {
				return errors.Wrap(err, "failed on refund buy now overpay")
			}
		}
		a.CurrentBid = *a.BuyNowPrice
		return e.finalizeLocked(a, now)
	}
	return nil
}

// BuyNow 一口价购买
// 英式: 按 buyNowPrice 即时成交; 荷兰式: 按当前计算价成交, 先到先得
func (e *Engine) BuyNow(caller string, auctionID string, amountPaid decimal.Decimal) error {
	if err := e.access.EnsureActive(); err != nil {
		return err
	}

	buyer := strings.ToLower(caller)

	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.auctions[auctionID]
	if !ok {
		return ErrAuctionNotFound
	}
	now := e.clock.Now()
	e.maybeTransitionLocked(a, now)

	if a.Status != StatusActive || !now.Before(a.EndTime) {
		return ErrAuctionClosed
	}
	if buyer == a.Seller {
		return ErrSellerCannotBid
	}

	var price decimal.Decimal
	switch a.Kind {
	case KindEnglish:
		if a.BuyNowPrice == nil {
			return ErrWrongAuctionType
		}
		price = *a.BuyNowPrice
	case KindDutch:
		// 荷兰式按当前时刻的线性插值价成交
		price = dutchPriceAt(a, now)
	default:
		return ErrWrongAuctionType
	}
	if amountPaid.LessThan(price) {
		return ErrBidTooLow
	}

	// 托管成交价; 超付部分即时退回
	if err := e.vault.HoldFunds(buyer, amountPaid); err != nil {
		return errors.Wrap(err, "failed on hold buy now funds")
	}
	if overpay := amountPaid.Sub(price); overpay.IsPositive() {
		if err := e.vault.Refund(buyer, overpay); err != nil {
			return errors.Wrap(err, "failed on refund overpay")
		}
	}
	// 英式一口价成交时退还在场的最高出价
	if a.HighestBidder != "" {
		if err := e.vault.Refund(a.HighestBidder, a.CurrentBid); err != nil {
			xzap.WithContext(context.Background()).Error("failed on refund outbid bidder",
				zap.String("bidder", a.HighestBidder), zap.Error(err))
		}
	}

	a.CurrentBid = price
	a.HighestBidder = buyer
	a.BidCount++

	e.persistBid(BidRecord{
		AuctionID: a.ID,
		Bidder:    buyer,
		Amount:    price,
		Kind:      BidKindOpen,
		EventTime: now,
	})
	return e.finalizeLocked(a, now)
}

// CurrentDutchPrice 查询荷兰式拍卖当前价格
func (e *Engine) CurrentDutchPrice(auctionID string) (decimal.Decimal, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.auctions[auctionID]
	if !ok {
		return decimal.Zero, ErrAuctionNotFound
	}
	if a.Kind != KindDutch {
		return decimal.Zero, ErrWrongAuctionType
	}
	return dutchPriceAt(a, e.clock.Now()), nil
}

// dutchPriceAt 荷兰式价格曲线: 从 startPrice 线性降至 reservePrice
// 价格对时间单调不增, 到达 endTime 时恰好等于 reservePrice
func dutchPriceAt(a *Auction, now time.Time) decimal.Decimal {
	if !now.After(a.StartTime) {
		return a.StartPrice
	}
	if !now.Before(a.EndTime) {
		return a.ReservePrice
	}
	// 以纳秒插值, 亚秒级时长的拍卖同样有确定的价格
	elapsed := decimal.NewFromInt(now.Sub(a.StartTime).Nanoseconds())
	total := decimal.NewFromInt(a.EndTime.Sub(a.StartTime).Nanoseconds())
	drop := a.StartPrice.Sub(a.ReservePrice).Mul(elapsed).Div(total)
	return a.StartPrice.Sub(drop)
}

// CommitSealedBid 密封出价阶段提交承诺哈希
// 只记录哈希, 不托管资金, 金额在揭示阶段前对所有人不可见
func (e *Engine) CommitSealedBid(caller string, auctionID string, commitment string) error {
	if err := e.access.EnsureActive(); err != nil {
		return err
	}

	bidder := strings.ToLower(caller)

	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.auctions[auctionID]
	if !ok {
		return ErrAuctionNotFound
	}
	now := e.clock.Now()
	e.maybeTransitionLocked(a, now)

	if a.Kind != KindSealedBid {
		return ErrWrongAuctionType
	}
	if a.Status != StatusActive || !now.Before(a.EndTime) {
		return ErrAuctionClosed
	}
	if bidder == a.Seller {
		return ErrSellerCannotBid
	}
	if _, ok := a.sealed[bidder]; ok {
		return ErrAlreadyCommitted
	}

	a.sealed[bidder] = &sealedEntry{commitment: strings.ToLower(commitment)}
	a.BidCount++

	e.persistAuction(*a)
	e.persistBid(BidRecord{
		AuctionID:  a.ID,
		Bidder:     bidder,
		Commitment: strings.ToLower(commitment),
		Kind:       BidKindCommit,
		EventTime:  now,
	})
	e.events.Publish(comm.MarketEvent{
		Type:      comm.EventBidCommitted,
		Account:   bidder,
		AssetKey:  a.Asset.Key(),
		Detail:    fmt.Sprintf("id=%s", a.ID),
		EventTime: now,
	})
	return nil
}

// RevealSealedBid 揭示阶段公开 (amount, salt)
// 哈希与承诺不符的揭示被拒绝并作废该出价, 不可重试
func (e *Engine) RevealSealedBid(caller string, auctionID string, amount decimal.Decimal, salt string) error {
	if err := e.access.EnsureActive(); err != nil {
		return err
	}

	bidder := strings.ToLower(caller)

	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.auctions[auctionID]
	if !ok {
		return ErrAuctionNotFound
	}
	now := e.clock.Now()
	e.maybeTransitionLocked(a, now)

	if a.Kind != KindSealedBid {
		return ErrWrongAuctionType
	}
	if a.Status != StatusRevealing || !now.Before(a.RevealEnd) {
		return ErrNotRevealPhase
	}

	entry, ok := a.sealed[bidder]
	if !ok {
		return ErrNoCommitment
	}
	if entry.revealed {
		// 已揭示过, 幂等返回
		return nil
	}
	// 校验承诺: 不匹配则作废
	if ComputeCommitment(amount, salt, bidder) != entry.commitment {
		delete(a.sealed, bidder)
		return ErrInvalidReveal
	}

	entry.revealed = true
	entry.amount = amount

	e.persistBid(BidRecord{
		AuctionID: a.ID,
		Bidder:    bidder,
		Amount:    amount,
		Kind:      BidKindReveal,
		EventTime: now,
	})
	e.events.Publish(comm.MarketEvent{
		Type:      comm.EventBidRevealed,
		Account:   bidder,
		AssetKey:  a.Asset.Key(),
		Detail:    fmt.Sprintf("id=%s amount=%s", a.ID, amount),
		EventTime: now,
	})
	return nil
}

// CancelAuction 取消拍卖
// 卖家或 AUCTION_MANAGER 可取消, 且只允许在尚无任何出价/承诺时取消
func (e *Engine) CancelAuction(caller string, auctionID string) error {
	if err := e.access.EnsureActive(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.auctions[auctionID]
	if !ok {
		return ErrAuctionNotFound
	}
	now := e.clock.Now()
	e.maybeTransitionLocked(a, now)

	if a.Status != StatusActive {
		return ErrAuctionClosed
	}
	if strings.ToLower(caller) != a.Seller && !e.access.CanManageAuctions(caller) {
		return ErrNotTheSeller
	}
	if a.BidCount > 0 {
		return ErrCannotCancelWithBids
	}

	a.Status = StatusCancelled
	e.locks.Release(a.Asset.Key(), lockregistry.HolderAuction)

	e.persistAuction(*a)
	e.events.Publish(comm.MarketEvent{
		Type:      comm.EventAuctionCancelled,
		Account:   strings.ToLower(caller),
		AssetKey:  a.Asset.Key(),
		Detail:    fmt.Sprintf("id=%s", a.ID),
		EventTime: now,
	})
	return nil
}

// SettleAuction 结算到期拍卖 (无权限门槛, 任何人/后台巡检均可触发)
func (e *Engine) SettleAuction(auctionID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.auctions[auctionID]
	if !ok {
		return ErrAuctionNotFound
	}
	now := e.clock.Now()
	e.maybeTransitionLocked(a, now)

	switch a.Status {
	case StatusActive:
		if now.Before(a.EndTime) {
			return ErrAuctionNotDue
		}
	case StatusRevealing:
		if now.Before(a.RevealEnd) {
			return ErrAuctionNotDue
		}
	default:
		return ErrAuctionClosed
	}

	return e.finalizeLocked(a, now)
}

// maybeTransitionLocked 惰性状态推进: 密封拍卖到达 endTime 后进入揭示阶段
// 调用方需持有 e.mu, 仅变更操作使用; 只读查询走 effectiveStatus
func (e *Engine) maybeTransitionLocked(a *Auction, now time.Time) {
	a.Status = effectiveStatus(a, now)
}

// effectiveStatus 按当前时刻计算生效状态, 不修改拍卖本身
func effectiveStatus(a *Auction, now time.Time) Status {
	if a.Kind == KindSealedBid && a.Status == StatusActive && !now.Before(a.EndTime) {
		return StatusRevealing
	}
	return a.Status
}

// finalizeLocked 结算: 确定胜出者, 收款、分账、转移资产、清理锁
// 调用方需持有 e.mu; 进入此函数的拍卖必然走向 Ended 终态
func (e *Engine) finalizeLocked(a *Auction, now time.Time) error {
	winner, price := e.resolveWinnerLocked(a)

	// 流拍: 退还仍在托管中的最高出价, 释放资产锁
	if winner == "" {
		if a.HighestBidder != "" {
			if err := e.vault.Refund(a.HighestBidder, a.CurrentBid); err != nil {
				xzap.WithContext(context.Background()).Error("failed on refund unsold auction bid",
					zap.String("bidder", a.HighestBidder), zap.Error(err))
			}
		}
		a.Status = StatusEnded
		a.HighestBidder = ""
		e.locks.Release(a.Asset.Key(), lockregistry.HolderAuction)

		e.persistAuction(*a)
		e.events.Publish(comm.MarketEvent{
			Type:      comm.EventAuctionEnded,
			Account:   a.Seller,
			AssetKey:  a.Asset.Key(),
			Detail:    fmt.Sprintf("id=%s unsold=true", a.ID),
			EventTime: now,
		})
		return nil
	}

	// 密封出价的胜出者此前未托管资金, 结算时一次性收款
	if a.Kind == KindSealedBid {
		if err := e.vault.HoldFunds(winner, price); err != nil {
			return errors.Wrap(err, "failed on collect sealed winner funds")
		}
	}

	// 转移资产; 失败则退还胜出者资金并按流拍收尾
	if err := e.ledger.Transfer(a.Asset, a.Seller, winner); err != nil {
		if refundErr := e.vault.Refund(winner, price); refundErr != nil {
			xzap.WithContext(context.Background()).Error("failed on refund winner after transfer failure",
				zap.String("winner", winner), zap.Error(refundErr))
		}
		a.Status = StatusEnded
		e.locks.Release(a.Asset.Key(), lockregistry.HolderAuction)
		e.persistAuction(*a)
		return errors.Wrap(err, "failed on transfer auctioned asset")
	}

	// 消耗胜出者托管额度, 按交易管理器的费用模型分账
	if err := e.vault.ConsumeHold(winner, price); err != nil {
		return errors.Wrap(err, "failed on consume winner hold")
	}
	fees := e.fees.CalculateTradeFees(price)
	if err := e.fees.CollectFees(fees); err != nil {
		return err
	}
	if fees.SellerProceeds.IsPositive() {
		if err := e.vault.ReleaseFunds(a.Seller, fees.SellerProceeds); err != nil {
			return errors.Wrap(err, "failed on pay auction seller")
		}
	}
	// 拍卖成交同样计入双方交易统计
	e.fees.RecordTrade(a.Seller, winner, price)

	a.Status = StatusEnded
	a.Winner = winner
	a.FinalPrice = price
	e.locks.Release(a.Asset.Key(), lockregistry.HolderAuction)

	e.persistAuction(*a)
	e.events.Publish(comm.MarketEvent{
		Type:      comm.EventAuctionEnded,
		Account:   winner,
		AssetKey:  a.Asset.Key(),
		Detail:    fmt.Sprintf("id=%s price=%s", a.ID, price),
		EventTime: now,
	})
	return nil
}

// resolveWinnerLocked 确定胜出者与结算价, 返回 ("", zero) 表示流拍
func (e *Engine) resolveWinnerLocked(a *Auction) (string, decimal.Decimal) {
	switch a.Kind {
	case KindSealedBid:
		// 有效揭示中的最高出价, 且不低于保留价
		var winner string
		best := decimal.Zero
		for bidder, entry := range a.sealed {
			if !entry.revealed {
				continue
			}
			if entry.amount.GreaterThan(best) {
				winner = bidder
				best = entry.amount
			}
		}
		if winner == "" || best.LessThan(a.ReservePrice) {
			return "", decimal.Zero
		}
		return winner, best
	default:
		// 明价类型: 最高出价者且达到保留价
		if a.HighestBidder == "" || a.CurrentBid.LessThan(a.ReservePrice) {
			return "", decimal.Zero
		}
		return a.HighestBidder, a.CurrentBid
	}
}

// GetAuction 查询拍卖信息, 返回副本
func (e *Engine) GetAuction(auctionID string) (Auction, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.auctions[auctionID]
	if !ok {
		return Auction{}, false
	}
	// 只读查询不回写状态, 仅在快照上体现生效中的状态
	snapshot := *a
	snapshot.sealed = nil
	snapshot.Status = effectiveStatus(a, e.clock.Now())
	return snapshot, true
}

// persistAuction 写穿透保存拍卖, 失败只记录日志
func (e *Engine) persistAuction(a Auction) {
	if e.store == nil {
		return
	}
	if err := e.store.SaveAuction(context.Background(), a); err != nil {
		xzap.WithContext(context.Background()).Error("failed on save auction",
			zap.String("auction_id", a.ID), zap.Error(err))
	}
}

// persistBid 写穿透保存出价流水, 失败只记录日志
func (e *Engine) persistBid(bid BidRecord) {
	if e.store == nil {
		return
	}
	if err := e.store.SaveBid(context.Background(), bid); err != nil {
		xzap.WithContext(context.Background()).Error("failed on save bid",
			zap.String("auction_id", bid.AuctionID), zap.Error(err))
	}
}
