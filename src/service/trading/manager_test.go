package trading

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ProjectsTask/EasySwapMarket/src/service/accesscontrol"
	"github.com/ProjectsTask/EasySwapMarket/src/service/assetledger"
	"github.com/ProjectsTask/EasySwapMarket/src/service/comm"
	"github.com/ProjectsTask/EasySwapMarket/src/service/escrowvault"
	"github.com/ProjectsTask/EasySwapMarket/src/service/lockregistry"
)

const (
	admin    = "0xA000000000000000000000000000000000000001"
	seller   = "0xA000000000000000000000000000000000000002"
	buyer    = "0xA000000000000000000000000000000000000003"
	treasury = "0xF000000000000000000000000000000000000001"
	nftAddr  = "0xC000000000000000000000000000000000000001"
)

// fakeClock 可手动推进的测试时钟
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

type fixture struct {
	access *accesscontrol.Registry
	locks  *lockregistry.Registry
	ledger *assetledger.Memory
	vault  *escrowvault.Vault
	mgr    *Manager
	clock  *fakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	access := accesscontrol.New(clock, nil, time.Hour, admin)
	locks := lockregistry.New()
	ledger := assetledger.NewMemory()
	vault := escrowvault.New()

	mgr := New(access, locks, ledger, vault, clock, nil, Config{
		TradingFeeBps:     250,
		MarketplaceFeeBps: 100,
		MinimumTradingFee: d("0.001"),
		Treasury:          treasury,
	})

	require.NoError(t, access.AuthorizeContract(admin, nftAddr))
	ledger.Register(comm.AssetRef{ContractAddr: nftAddr, TokenID: "1"}, seller)

	return &fixture{access: access, locks: locks, ledger: ledger, vault: vault, mgr: mgr, clock: clock}
}

func TestPrepareNFTForTrade(t *testing.T) {
	f := newFixture(t)

	// 非持有人不能挂单
	err := f.mgr.PrepareNFTForTrade(buyer, nftAddr, "1", d("1.0"), true)
	assert.ErrorIs(t, err, ErrNotTheOwner)

	// 价格必须为正
	err = f.mgr.PrepareNFTForTrade(seller, nftAddr, "1", d("0"), true)
	assert.ErrorIs(t, err, ErrInvalidSalePrice)

	// 未授权合约被拒绝
	err = f.mgr.PrepareNFTForTrade(seller, "0xC000000000000000000000000000000000000099", "1", d("1.0"), true)
	assert.ErrorIs(t, err, ErrContractNotAuthorized)

	// 正常挂单
	require.NoError(t, f.mgr.PrepareNFTForTrade(seller, nftAddr, "1", d("1.0"), false))
	listing, ok := f.mgr.GetSaleInfo(nftAddr, "1")
	require.True(t, ok)
	assert.True(t, listing.IsActive)
	assert.True(t, listing.Price.Equal(d("1.0")))

	// allowCustomization=false 时挂单期间自定义属性被锁定
	assert.True(t, f.mgr.IsCustomizationLocked(nftAddr, "1"))

	// 已有活跃挂单时拒绝覆盖
	err = f.mgr.PrepareNFTForTrade(seller, nftAddr, "1", d("2.0"), true)
	assert.ErrorIs(t, err, ErrAlreadyListed)
}

func TestPrepareAllowCustomization(t *testing.T) {
	f := newFixture(t)

	// allowCustomization=true 时不锁定自定义属性
	require.NoError(t, f.mgr.PrepareNFTForTrade(seller, nftAddr, "1", d("1.0"), true))
	assert.False(t, f.mgr.IsCustomizationLocked(nftAddr, "1"))
}

func TestExecuteNFTTrade(t *testing.T) {
	f := newFixture(t)
	asset := comm.AssetRef{ContractAddr: nftAddr, TokenID: "1"}

	require.NoError(t, f.mgr.PrepareNFTForTrade(seller, nftAddr, "1", d("1.0"), false))

	// 未挂单的资产不能购买
	err := f.mgr.ExecuteNFTTrade(buyer, nftAddr, "2", d("1.0"))
	assert.ErrorIs(t, err, ErrNotForSale)

	// 卖家不能购买自己的资产
	err = f.mgr.ExecuteNFTTrade(seller, nftAddr, "1", d("1.0"))
	assert.ErrorIs(t, err, ErrCannotBuyOwnAsset)

	// 支付不足
	err = f.mgr.ExecuteNFTTrade(buyer, nftAddr, "1", d("0.99"))
	assert.ErrorIs(t, err, ErrInsufficientPayment)
	assert.True(t, f.ledger.IsOwner(asset, seller), "拒绝的操作不应产生副作用")

	// 超付成交: 多付的 0.5 原路退回
	require.NoError(t, f.mgr.ExecuteNFTTrade(buyer, nftAddr, "1", d("1.5")))

	// 资产已转移
	assert.True(t, f.ledger.IsOwner(asset, buyer))

	// 挂单注销, 自定义锁清除
	listing, ok := f.mgr.GetSaleInfo(nftAddr, "1")
	require.True(t, ok)
	assert.False(t, listing.IsActive)
	assert.False(t, f.mgr.IsCustomizationLocked(nftAddr, "1"))

	// 资金: 卖家 0.965, 金库 0.01, 买家退回 0.5, 协议费余额 0.025
	assert.True(t, f.vault.Balance(seller).Equal(d("0.965")))
	assert.True(t, f.vault.Balance(treasury).Equal(d("0.01")))
	assert.True(t, f.vault.Balance(buyer).Equal(d("0.5")))
	assert.True(t, f.mgr.FeeBalance().Equal(d("0.025")))

	// 统计: 卖家 1 笔卖出, 买家 1 笔买入, 双方成交量 1.0
	sellerStats := f.mgr.GetTradingStats(seller)
	assert.Equal(t, int64(1), sellerStats.TotalSales)
	assert.True(t, sellerStats.VolumeTraded.Equal(d("1.0")))
	buyerStats := f.mgr.GetTradingStats(buyer)
	assert.Equal(t, int64(1), buyerStats.TotalPurchases)
	assert.True(t, buyerStats.VolumeTraded.Equal(d("1.0")))

	// 终态挂单不能再次成交
	err = f.mgr.ExecuteNFTTrade(buyer, nftAddr, "1", d("1.0"))
	assert.ErrorIs(t, err, ErrNotForSale)
}

func TestCancelNFTSale(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.mgr.PrepareNFTForTrade(seller, nftAddr, "1", d("1.0"), false))

	// 非卖家不能撤单
	err := f.mgr.CancelNFTSale(buyer, nftAddr, "1")
	assert.ErrorIs(t, err, ErrNotTheSeller)

	require.NoError(t, f.mgr.CancelNFTSale(seller, nftAddr, "1"))
	listing, ok := f.mgr.GetSaleInfo(nftAddr, "1")
	require.True(t, ok)
	assert.False(t, listing.IsActive)
	// 撤单后锁清除
	assert.False(t, f.mgr.IsCustomizationLocked(nftAddr, "1"))

	// 重复撤单
	err = f.mgr.CancelNFTSale(seller, nftAddr, "1")
	assert.ErrorIs(t, err, ErrNotForSale)

	// 撤单后可重新挂单 (全新对象)
	require.NoError(t, f.mgr.PrepareNFTForTrade(seller, nftAddr, "1", d("2.0"), true))
}

func TestPauseBlocksMutations(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.access.GrantRole(admin, accesscontrol.RolePauser, admin))
	require.NoError(t, f.access.PauseGlobally(admin))

	err := f.mgr.PrepareNFTForTrade(seller, nftAddr, "1", d("1.0"), true)
	assert.ErrorIs(t, err, accesscontrol.ErrSystemPaused)
	err = f.mgr.ExecuteNFTTrade(buyer, nftAddr, "1", d("1.0"))
	assert.ErrorIs(t, err, accesscontrol.ErrSystemPaused)
	err = f.mgr.CancelNFTSale(seller, nftAddr, "1")
	assert.ErrorIs(t, err, accesscontrol.ErrSystemPaused)

	// 解除暂停后恢复
	require.NoError(t, f.access.UnpauseGlobally(admin))
	require.NoError(t, f.mgr.PrepareNFTForTrade(seller, nftAddr, "1", d("1.0"), true))
}

func TestUpdateTradingFees(t *testing.T) {
	f := newFixture(t)

	// 无 PRICE_MANAGER 角色被拒绝
	err := f.mgr.UpdateTradingFees(seller, 100, 100)
	assert.ErrorIs(t, err, accesscontrol.ErrUnauthorizedAccount)

	require.NoError(t, f.access.GrantRole(admin, accesscontrol.RolePriceManager, seller))

	// 超出上限 (10%) 被拒绝
	err = f.mgr.UpdateTradingFees(seller, 600, 500)
	assert.ErrorIs(t, err, ErrTradingFeeTooHigh)

	require.NoError(t, f.mgr.UpdateTradingFees(seller, 300, 200))
	fees := f.mgr.CalculateTradeFees(d("1.0"))
	assert.True(t, fees.TradingFee.Equal(d("0.03")))
	assert.True(t, fees.MarketplaceFee.Equal(d("0.02")))
}

func TestUpdateTreasuryRequiresTimeLock(t *testing.T) {
	f := newFixture(t)
	newTreasury := "0xF000000000000000000000000000000000000002"

	// 未调度时间锁操作直接变更被拒绝
	err := f.mgr.UpdateTreasury(admin, newTreasury)
	assert.ErrorIs(t, err, accesscontrol.ErrOperationNotFound)

	require.NoError(t, f.access.ScheduleTimeLockOperation(admin, TreasuryOperationID(newTreasury)))

	// 窗口期未过
	err = f.mgr.UpdateTreasury(admin, newTreasury)
	assert.ErrorIs(t, err, accesscontrol.ErrOperationNotReady)

	f.clock.advance(2 * time.Hour)
	require.NoError(t, f.mgr.UpdateTreasury(admin, newTreasury))
	assert.Equal(t, "0xf000000000000000000000000000000000000002", f.mgr.Treasury())
}

func TestWithdrawFees(t *testing.T) {
	f := newFixture(t)

	// 先完成一笔成交产生协议费 0.025
	require.NoError(t, f.mgr.PrepareNFTForTrade(seller, nftAddr, "1", d("1.0"), true))
	require.NoError(t, f.mgr.ExecuteNFTTrade(buyer, nftAddr, "1", d("1.0")))
	require.True(t, f.mgr.FeeBalance().Equal(d("0.025")))

	// 无 WITHDRAWER 角色被拒绝
	err := f.mgr.WithdrawFees(seller, seller, d("0.01"))
	assert.ErrorIs(t, err, accesscontrol.ErrUnauthorizedAccount)

	require.NoError(t, f.access.GrantRole(admin, accesscontrol.RoleWithdrawer, seller))

	// 零地址被拒绝
	err = f.mgr.WithdrawFees(seller, "", d("0.01"))
	assert.ErrorIs(t, err, ErrInvalidAddress)

	// 超出余额被拒绝
	err = f.mgr.WithdrawFees(seller, seller, d("1.0"))
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	require.NoError(t, f.mgr.WithdrawFees(seller, seller, d("0.01")))
	assert.True(t, f.mgr.FeeBalance().Equal(d("0.015")))

	// 紧急提取: 剩余全部划入金库
	require.NoError(t, f.mgr.EmergencyWithdraw(seller))
	assert.True(t, f.mgr.FeeBalance().IsZero())
	assert.True(t, f.vault.Balance(treasury).Equal(d("0.01").Add(d("0.015"))))
}

func TestAdminCustomizationLock(t *testing.T) {
	f := newFixture(t)

	// 无 CUSTOMIZATION_ADMIN 角色被拒绝
	err := f.mgr.LockCustomization(seller, nftAddr, "1")
	assert.ErrorIs(t, err, accesscontrol.ErrUnauthorizedAccount)

	require.NoError(t, f.access.GrantRole(admin, accesscontrol.RoleCustomizationAdmin, seller))

	// 管理员锁独立于挂单存在
	require.NoError(t, f.mgr.LockCustomization(seller, nftAddr, "1"))
	assert.True(t, f.mgr.IsCustomizationLocked(nftAddr, "1"))

	require.NoError(t, f.mgr.UnlockCustomization(seller, nftAddr, "1"))
	assert.False(t, f.mgr.IsCustomizationLocked(nftAddr, "1"))
}

func TestListingBlocksAuctionHold(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.mgr.PrepareNFTForTrade(seller, nftAddr, "1", d("1.0"), false))

	// 挂单期间拍卖引擎无法占用同一资产
	err := f.locks.Acquire(comm.AssetKey(nftAddr, "1"), lockregistry.HolderAuction, true)
	assert.ErrorIs(t, err, lockregistry.ErrAssetHeld)
}
