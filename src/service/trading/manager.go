package trading

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ProjectsTask/EasySwapMarket/src/pkg/xzap"
	"github.com/ProjectsTask/EasySwapMarket/src/service/accesscontrol"
	"github.com/ProjectsTask/EasySwapMarket/src/service/comm"
	"github.com/ProjectsTask/EasySwapMarket/src/service/lockregistry"
)

var (
	ErrInvalidSalePrice      = errors.New("trading: invalid sale price")
	ErrAlreadyListed         = errors.New("trading: asset already listed")
	ErrNotForSale            = errors.New("trading: asset not for sale")
	ErrNotTheSeller          = errors.New("trading: caller is not the seller")
	ErrNotTheOwner           = errors.New("trading: caller is not the asset owner")
	ErrCannotBuyOwnAsset     = errors.New("trading: cannot buy own asset")
	ErrInsufficientPayment   = errors.New("trading: insufficient payment")
	ErrInsufficientBalance   = errors.New("trading: insufficient fee balance")
	ErrTradingFeeTooHigh     = errors.New("trading: trading fee too high")
	ErrInvalidAddress        = errors.New("trading: invalid address")
	ErrContractNotAuthorized = errors.New("trading: asset contract not authorized")
)

// Listing 直售挂单
// 状态机: NoListing -> Listed -> {Sold | Cancelled}, 终态后重新挂单是全新对象
type Listing struct {
	Asset              comm.AssetRef   `json:"asset"`
	Seller             string          `json:"seller"`
	Price              decimal.Decimal `json:"price"`
	AllowCustomization bool            `json:"allow_customization"`
	IsActive           bool            `json:"is_active"`
	ListedAt           time.Time       `json:"listed_at"`
}

// Stats 账户交易统计, 累计值只增不减
type Stats struct {
	TotalSales     int64           `json:"total_sales"`
	TotalPurchases int64           `json:"total_purchases"`
	VolumeTraded   decimal.Decimal `json:"volume_traded"`
}

// Store 交易数据持久化接口, 由 Dao 实现 (写穿透)
type Store interface {
	SaveListing(ctx context.Context, listing Listing) error
	SaveStats(ctx context.Context, account string, stats Stats) error
}

// Config 交易管理器初始配置
type Config struct {
	TradingFeeBps     int64           // 交易费率 (bps)
	MarketplaceFeeBps int64           // 市场费率 (bps)
	MinimumTradingFee decimal.Decimal // 最低交易费
	Treasury          string          // 金库地址
}

// Manager 交易管理器
// 管理点对点直售: 挂单、成交、撤单、费用与统计
// 所有变更操作先通过访问控制注册表校验, 内部以单一互斥锁串行化
type Manager struct {
	mu sync.Mutex

	access *accesscontrol.Registry
	locks  *lockregistry.Registry
	ledger comm.AssetLedger
	vault  comm.EscrowVault
	clock  comm.Clock
	events comm.EventSink
	store  Store

	listings map[string]*Listing // assetKey -> 活跃挂单
	stats    map[string]*Stats   // account -> 交易统计

	tradingFeeBps     int64
	marketplaceFeeBps int64
	minimumTradingFee decimal.Decimal
	treasury          string
	feeBalance        decimal.Decimal // 累计可提取的协议交易费
}

// New 创建交易管理器
func New(access *accesscontrol.Registry, locks *lockregistry.Registry, ledger comm.AssetLedger,
	vault comm.EscrowVault, clock comm.Clock, events comm.EventSink, cfg Config) *Manager {
	if events == nil {
		events = comm.NopSink{}
	}
	return &Manager{
		access:            access,
		locks:             locks,
		ledger:            ledger,
		vault:             vault,
		clock:             clock,
		events:            events,
		listings:          make(map[string]*Listing),
		stats:             make(map[string]*Stats),
		tradingFeeBps:     cfg.TradingFeeBps,
		marketplaceFeeBps: cfg.MarketplaceFeeBps,
		minimumTradingFee: cfg.MinimumTradingFee,
		treasury:          strings.ToLower(cfg.Treasury),
		feeBalance:        decimal.Zero,
	}
}

// SetStore 注入持久化实现
func (m *Manager) SetStore(s Store) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store = s
}

// PrepareNFTForTrade 挂单
// 校验: 合约已授权、价格为正、系统未暂停、发起方持有该资产
// 同一资产已有活跃挂单时拒绝覆盖 (策略: 先撤单再重新挂单)
func (m *Manager) PrepareNFTForTrade(caller string, contractAddr string, tokenID string,
	price decimal.Decimal, allowCustomization bool) error {
	// 1. 全局暂停检查
	if err := m.access.EnsureActive(); err != nil {
		return err
	}
	// 2. 资产合约必须在授权名单中
	if !m.access.IsAuthorizedContract(contractAddr) {
		return ErrContractNotAuthorized
	}
	// 3. 价格必须为正
	if !price.IsPositive() {
		return ErrInvalidSalePrice
	}

	asset := comm.AssetRef{ContractAddr: contractAddr, TokenID: tokenID}
	// 4. 发起方必须是资产持有人
	if !m.ledger.IsOwner(asset, caller) {
		return ErrNotTheOwner
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := asset.Key()
	if l, ok := m.listings[key]; ok && l.IsActive {
		return ErrAlreadyListed
	}

	// 5. 占用共享资产锁; 不允许自定义时同时锁定自定义属性
	// 资产处于拍卖中时这里会失败, 保证挂单与拍卖互斥
	if err := m.locks.Acquire(key, lockregistry.HolderListing, !allowCustomization); err != nil {
		return err
	}

	listing := &Listing{
		Asset:              asset,
		Seller:             strings.ToLower(caller),
		Price:              price,
		AllowCustomization: allowCustomization,
		IsActive:           true,
		ListedAt:           m.clock.Now(),
	}
	m.listings[key] = listing

	m.persistListing(*listing)
	m.events.Publish(comm.MarketEvent{
		Type:      comm.EventSalePrepared,
		Account:   listing.Seller,
		AssetKey:  key,
		Detail:    price.String(),
		EventTime: m.clock.Now(),
	})
	return nil
}

// ExecuteNFTTrade 执行成交
// amountPaid 为买方随调用支付的金额, 须不低于挂单价; 超出部分原路退回
// 成交流程: 托管买方资金 -> 转移资产 -> 拆分费用并放款 -> 更新统计 -> 注销挂单
func (m *Manager) ExecuteNFTTrade(caller string, contractAddr string, tokenID string,
	amountPaid decimal.Decimal) error {
	if err := m.access.EnsureActive(); err != nil {
		return err
	}

	asset := comm.AssetRef{ContractAddr: contractAddr, TokenID: tokenID}
	buyer := strings.ToLower(caller)

	m.mu.Lock()
	defer m.mu.Unlock()

	key := asset.Key()
	listing, ok := m.listings[key]
	if !ok || !listing.IsActive {
		return ErrNotForSale
	}
	if buyer == listing.Seller {
		return ErrCannotBuyOwnAsset
	}
	if amountPaid.LessThan(listing.Price) {
		return ErrInsufficientPayment
	}

	// 1. 托管买方资金 (余额不足在这里失败, 状态未被触碰)
	if err := m.vault.HoldFunds(buyer, amountPaid); err != nil {
		return errors.Wrap(err, "failed on hold buyer funds")
	}

	// 2. 转移资产所有权; 失败则全额退款, 挂单保持原状
	if err := m.ledger.Transfer(asset, listing.Seller, buyer); err != nil {
		if refundErr := m.vault.Refund(buyer, amountPaid); refundErr != nil {
			xzap.WithContext(context.Background()).Error("failed on refund after transfer failure",
				zap.String("buyer", buyer), zap.Error(refundErr))
		}
		return errors.Wrap(err, "failed on transfer asset")
	}

	// 3. 消耗买方托管额度中的成交价部分, 再拆分费用放款
	// 卖家实收 / 金库市场费 / 协议费留存为可提取余额
	if err := m.vault.ConsumeHold(buyer, listing.Price); err != nil {
		return errors.Wrap(err, "failed on consume buyer hold")
	}
	fees := calculateFees(listing.Price, m.tradingFeeBps, m.marketplaceFeeBps, m.minimumTradingFee)
	if err := m.settleFeesLocked(fees); err != nil {
		return err
	}
	// 最低费用地板可能吃掉极小额成交的全部货款, 只在实收为正时放款
	if fees.SellerProceeds.IsPositive() {
		if err := m.vault.ReleaseFunds(listing.Seller, fees.SellerProceeds); err != nil {
			return errors.Wrap(err, "failed on pay seller")
		}
	}

	// 4. 超付部分退回买方
	if overpay := amountPaid.Sub(listing.Price); overpay.IsPositive() {
		if err := m.vault.Refund(buyer, overpay); err != nil {
			return errors.Wrap(err, "failed on refund overpay")
		}
	}

	// 5. 注销挂单并清除自定义锁
	listing.IsActive = false
	m.locks.Release(key, lockregistry.HolderListing)

	// 6. 更新双方交易统计
	m.recordTradeLocked(listing.Seller, buyer, listing.Price)

	m.persistListing(*listing)
	m.events.Publish(comm.MarketEvent{
		Type:      comm.EventTradeCompleted,
		Account:   buyer,
		AssetKey:  key,
		Detail:    fmt.Sprintf("price=%s seller=%s", listing.Price, listing.Seller),
		EventTime: m.clock.Now(),
	})
	return nil
}

// CancelNFTSale 撤单 (仅卖家), 不发生资金移动
func (m *Manager) CancelNFTSale(caller string, contractAddr string, tokenID string) error {
	if err := m.access.EnsureActive(); err != nil {
		return err
	}

	asset := comm.AssetRef{ContractAddr: contractAddr, TokenID: tokenID}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := asset.Key()
	listing, ok := m.listings[key]
	if !ok || !listing.IsActive {
		return ErrNotForSale
	}
	if strings.ToLower(caller) != listing.Seller {
		return ErrNotTheSeller
	}

	listing.IsActive = false
	m.locks.Release(key, lockregistry.HolderListing)

	m.persistListing(*listing)
	m.events.Publish(comm.MarketEvent{
		Type:      comm.EventSaleCancelled,
		Account:   listing.Seller,
		AssetKey:  key,
		EventTime: m.clock.Now(),
	})
	return nil
}

// CalculateTradeFees 只读费用试算
func (m *Manager) CalculateTradeFees(price decimal.Decimal) FeeBreakdown {
	m.mu.Lock()
	defer m.mu.Unlock()
	return calculateFees(price, m.tradingFeeBps, m.marketplaceFeeBps, m.minimumTradingFee)
}

// UpdateTradingFees 调整费率 (PRICE_MANAGER)
// 两项费率之和不得超过 MaxTradingFeeBps, 上限在调整时检查而非成交时
func (m *Manager) UpdateTradingFees(caller string, newTradingFeeBps int64, newMarketplaceFeeBps int64) error {
	if !m.access.HasRole(caller, accesscontrol.RolePriceManager) &&
		!m.access.HasRole(caller, accesscontrol.RoleMasterAdmin) {
		return accesscontrol.ErrUnauthorizedAccount
	}
	if newTradingFeeBps < 0 || newMarketplaceFeeBps < 0 ||
		newTradingFeeBps+newMarketplaceFeeBps > MaxTradingFeeBps {
		return ErrTradingFeeTooHigh
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.tradingFeeBps = newTradingFeeBps
	m.marketplaceFeeBps = newMarketplaceFeeBps

	m.events.Publish(comm.MarketEvent{
		Type:      comm.EventFeesUpdated,
		Account:   strings.ToLower(caller),
		Detail:    fmt.Sprintf("trading=%d marketplace=%d", newTradingFeeBps, newMarketplaceFeeBps),
		EventTime: m.clock.Now(),
	})
	return nil
}

// TreasuryOperationID 金库变更对应的时间锁操作 id
func TreasuryOperationID(newTreasury string) string {
	return fmt.Sprintf("treasury:%s", strings.ToLower(newTreasury))
}

// UpdateTreasury 变更金库地址
// 金库变更属于敏感不可逆操作, 必须先调度对应的时间锁操作并等待窗口期
func (m *Manager) UpdateTreasury(caller string, newTreasury string) error {
	if newTreasury == "" {
		return ErrInvalidAddress
	}
	// 时间锁检查: 未调度或未到期都会在这里失败
	if err := m.access.ExecuteTimeLockOperation(caller, TreasuryOperationID(newTreasury)); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.treasury = strings.ToLower(newTreasury)

	m.events.Publish(comm.MarketEvent{
		Type:      comm.EventTreasuryUpdated,
		Account:   strings.ToLower(caller),
		Detail:    m.treasury,
		EventTime: m.clock.Now(),
	})
	return nil
}

// LockCustomization 管理员冻结资产自定义属性 (争议处理等场景, 独立于挂单)
func (m *Manager) LockCustomization(caller string, contractAddr string, tokenID string) error {
	if !m.access.HasRole(caller, accesscontrol.RoleCustomizationAdmin) &&
		!m.access.HasRole(caller, accesscontrol.RoleMasterAdmin) {
		return accesscontrol.ErrUnauthorizedAccount
	}

	key := comm.AssetKey(contractAddr, tokenID)
	m.locks.AdminLock(key)

	m.events.Publish(comm.MarketEvent{
		Type:      comm.EventCustomizationLock,
		Account:   strings.ToLower(caller),
		AssetKey:  key,
		Detail:    "locked",
		EventTime: m.clock.Now(),
	})
	return nil
}

// UnlockCustomization 管理员解冻资产自定义属性
func (m *Manager) UnlockCustomization(caller string, contractAddr string, tokenID string) error {
	if !m.access.HasRole(caller, accesscontrol.RoleCustomizationAdmin) &&
		!m.access.HasRole(caller, accesscontrol.RoleMasterAdmin) {
		return accesscontrol.ErrUnauthorizedAccount
	}

	key := comm.AssetKey(contractAddr, tokenID)
	m.locks.AdminUnlock(key)

	m.events.Publish(comm.MarketEvent{
		Type:      comm.EventCustomizationLock,
		Account:   strings.ToLower(caller),
		AssetKey:  key,
		Detail:    "unlocked",
		EventTime: m.clock.Now(),
	})
	return nil
}

// IsCustomizationLocked 资产自定义属性是否被锁定
func (m *Manager) IsCustomizationLocked(contractAddr string, tokenID string) bool {
	return m.locks.IsCustomizationLocked(comm.AssetKey(contractAddr, tokenID))
}

// WithdrawFees 提取累计协议费 (WITHDRAWER)
func (m *Manager) WithdrawFees(caller string, to string, amount decimal.Decimal) error {
	if !m.access.HasRole(caller, accesscontrol.RoleWithdrawer) &&
		!m.access.HasRole(caller, accesscontrol.RoleMasterAdmin) {
		return accesscontrol.ErrUnauthorizedAccount
	}
	if to == "" {
		return ErrInvalidAddress
	}
	if !amount.IsPositive() {
		return ErrInsufficientBalance
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if amount.GreaterThan(m.feeBalance) {
		return ErrInsufficientBalance
	}
	if err := m.vault.ReleaseFunds(strings.ToLower(to), amount); err != nil {
		return errors.Wrap(err, "failed on release fees")
	}
	m.feeBalance = m.feeBalance.Sub(amount)

	m.events.Publish(comm.MarketEvent{
		Type:      comm.EventFeesWithdrawn,
		Account:   strings.ToLower(caller),
		Detail:    fmt.Sprintf("to=%s amount=%s", strings.ToLower(to), amount),
		EventTime: m.clock.Now(),
	})
	return nil
}

// EmergencyWithdraw 一次性提取全部累计协议费到金库 (WITHDRAWER)
func (m *Manager) EmergencyWithdraw(caller string) error {
	if !m.access.HasRole(caller, accesscontrol.RoleWithdrawer) &&
		!m.access.HasRole(caller, accesscontrol.RoleMasterAdmin) {
		return accesscontrol.ErrUnauthorizedAccount
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.feeBalance.IsPositive() {
		return ErrInsufficientBalance
	}
	amount := m.feeBalance
	if err := m.vault.ReleaseFunds(m.treasury, amount); err != nil {
		return errors.Wrap(err, "failed on emergency release fees")
	}
	m.feeBalance = decimal.Zero

	m.events.Publish(comm.MarketEvent{
		Type:      comm.EventFeesWithdrawn,
		Account:   strings.ToLower(caller),
		Detail:    fmt.Sprintf("to=%s amount=%s emergency=true", m.treasury, amount),
		EventTime: m.clock.Now(),
	})
	return nil
}

// GetSaleInfo 查询挂单信息, 返回副本
func (m *Manager) GetSaleInfo(contractAddr string, tokenID string) (Listing, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	listing, ok := m.listings[comm.AssetKey(contractAddr, tokenID)]
	if !ok {
		return Listing{}, false
	}
	return *listing, true
}

// GetTradingStats 查询账户交易统计
func (m *Manager) GetTradingStats(account string) Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.stats[strings.ToLower(account)]
	if !ok {
		return Stats{VolumeTraded: decimal.Zero}
	}
	return *s
}

// FeeBalance 当前可提取的协议费余额
func (m *Manager) FeeBalance() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.feeBalance
}

// Treasury 当前金库地址
func (m *Manager) Treasury() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.treasury
}

// CollectFees 收取一次成交的费用 (拍卖结算复用同一套费用模型)
// 市场费即时划入金库, 协议费进入可提取余额
func (m *Manager) CollectFees(fees FeeBreakdown) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settleFeesLocked(fees)
}

func (m *Manager) settleFeesLocked(fees FeeBreakdown) error {
	if fees.MarketplaceFee.IsPositive() {
		if err := m.vault.ReleaseFunds(m.treasury, fees.MarketplaceFee); err != nil {
			return errors.Wrap(err, "failed on pay marketplace fee")
		}
	}
	m.feeBalance = m.feeBalance.Add(fees.TradingFee)
	return nil
}

// RecordTrade 记录一次成交的双方统计 (拍卖结算复用)
func (m *Manager) RecordTrade(seller string, buyer string, amount decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordTradeLocked(strings.ToLower(seller), strings.ToLower(buyer), amount)
}

// recordTradeLocked 更新双方统计并写穿透, 调用方需持有 m.mu
func (m *Manager) recordTradeLocked(seller string, buyer string, amount decimal.Decimal) {
	sellerStats := m.statsLocked(seller)
	sellerStats.TotalSales++
	sellerStats.VolumeTraded = sellerStats.VolumeTraded.Add(amount)

	buyerStats := m.statsLocked(buyer)
	buyerStats.TotalPurchases++
	buyerStats.VolumeTraded = buyerStats.VolumeTraded.Add(amount)

	m.persistStats(seller, *sellerStats)
	m.persistStats(buyer, *buyerStats)
}

func (m *Manager) statsLocked(account string) *Stats {
	s, ok := m.stats[account]
	if !ok {
		s = &Stats{VolumeTraded: decimal.Zero}
		m.stats[account] = s
	}
	return s
}

// persistListing 写穿透保存挂单, 失败只记录日志
func (m *Manager) persistListing(listing Listing) {
	if m.store == nil {
		return
	}
	if err := m.store.SaveListing(context.Background(), listing); err != nil {
		xzap.WithContext(context.Background()).Error("failed on save listing",
			zap.String("asset", listing.Asset.Key()), zap.Error(err))
	}
}

// persistStats 写穿透保存统计, 失败只记录日志
func (m *Manager) persistStats(account string, stats Stats) {
	if m.store == nil {
		return
	}
	if err := m.store.SaveStats(context.Background(), account, stats); err != nil {
		xzap.WithContext(context.Background()).Error("failed on save trading stats",
			zap.String("account", account), zap.Error(err))
	}
}
