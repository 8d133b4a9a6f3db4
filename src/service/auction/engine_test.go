package auction

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ProjectsTask/EasySwapMarket/src/service/accesscontrol"
	"github.com/ProjectsTask/EasySwapMarket/src/service/assetledger"
	"github.com/ProjectsTask/EasySwapMarket/src/service/comm"
	"github.com/ProjectsTask/EasySwapMarket/src/service/escrowvault"
	"github.com/ProjectsTask/EasySwapMarket/src/service/lockregistry"
	"github.com/ProjectsTask/EasySwapMarket/src/service/trading"
)

const (
	admin    = "0xA000000000000000000000000000000000000001"
	seller   = "0xA000000000000000000000000000000000000002"
	bidder1  = "0xA000000000000000000000000000000000000003"
	bidder2  = "0xA000000000000000000000000000000000000004"
	treasury = "0xF000000000000000000000000000000000000001"
	nftAddr  = "0xC000000000000000000000000000000000000001"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

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
	fees   *trading.Manager
	engine *Engine
	clock  *fakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	access := accesscontrol.New(clock, nil, time.Hour, admin)
	locks := lockregistry.New()
	ledger := assetledger.NewMemory()
	vault := escrowvault.New()

	fees := trading.New(access, locks, ledger, vault, clock, nil, trading.Config{
		TradingFeeBps:     250,
		MarketplaceFeeBps: 100,
		MinimumTradingFee: d("0.001"),
		Treasury:          treasury,
	})
	engine := New(context.Background(), access, locks, ledger, vault, fees, clock, nil, Config{
		RevealWindow:  time.Hour,
		SweepInterval: time.Second,
	})

	require.NoError(t, access.AuthorizeContract(admin, nftAddr))
	ledger.Register(comm.AssetRef{ContractAddr: nftAddr, TokenID: "1"}, seller)

	return &fixture{access: access, locks: locks, ledger: ledger,
		vault: vault, fees: fees, engine: engine, clock: clock}
}

func (f *fixture) create(t *testing.T, kind Kind, start, reserve, increment string,
	buyNow *decimal.Decimal, duration time.Duration) string {
	t.Helper()
	id, err := f.engine.CreateAuction(seller, kind, nftAddr, "1",
		d(start), d(reserve), d(increment), buyNow, duration)
	require.NoError(t, err)
	return id
}

func TestCreateAuctionValidation(t *testing.T) {
	f := newFixture(t)

	// 非持有人不能发起拍卖
	_, err := f.engine.CreateAuction(bidder1, KindTraditional, nftAddr, "1",
		d("1"), d("1"), decimal.Zero, nil, time.Hour)
	assert.ErrorIs(t, err, ErrNotTheOwner)

	// 未授权合约被拒绝
	_, err = f.engine.CreateAuction(seller, KindTraditional,
		"0xC000000000000000000000000000000000000099", "1",
		d("1"), d("1"), decimal.Zero, nil, time.Hour)
	assert.ErrorIs(t, err, trading.ErrContractNotAuthorized)

	// 时长必须为正
	_, err = f.engine.CreateAuction(seller, KindTraditional, nftAddr, "1",
		d("1"), d("1"), decimal.Zero, nil, 0)
	assert.ErrorIs(t, err, ErrInvalidDuration)

	// 英式必须有正的最小加价幅度
	_, err = f.engine.CreateAuction(seller, KindEnglish, nftAddr, "1",
		d("1"), d("1"), decimal.Zero, nil, time.Hour)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	// 荷兰式起拍价必须高于保留价
	_, err = f.engine.CreateAuction(seller, KindDutch, nftAddr, "1",
		d("1"), d("1"), decimal.Zero, nil, time.Hour)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	// 一口价仅英式支持
	buyNow := d("5")
	_, err = f.engine.CreateAuction(seller, KindTraditional, nftAddr, "1",
		d("1"), d("1"), decimal.Zero, &buyNow, time.Hour)
	assert.ErrorIs(t, err, ErrWrongAuctionType)

	// 正常创建后, 同一资产无法再挂单或再次拍卖
	id := f.create(t, KindTraditional, "1", "1", "0", nil, time.Hour)
	a, ok := f.engine.GetAuction(id)
	require.True(t, ok)
	assert.Equal(t, StatusActive, a.Status)

	err = f.fees.PrepareNFTForTrade(seller, nftAddr, "1", d("1"), true)
	assert.ErrorIs(t, err, lockregistry.ErrAssetHeld)
	_, err = f.engine.CreateAuction(seller, KindTraditional, nftAddr, "1",
		d("1"), d("1"), decimal.Zero, nil, time.Hour)
	assert.ErrorIs(t, err, lockregistry.ErrAssetHeld)

	// 拍卖进行中自定义属性被锁定
	assert.True(t, f.locks.IsCustomizationLocked(comm.AssetKey(nftAddr, "1")))
}

func TestTraditionalAuctionLifecycle(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, KindTraditional, "1", "1", "0", nil, time.Hour)

	// 卖家不能给自己的拍卖出价
	err := f.engine.PlaceBid(seller, id, d("2"))
	assert.ErrorIs(t, err, ErrSellerCannotBid)

	// 不高于当前价 (起拍价) 的出价被拒绝
	err = f.engine.PlaceBid(bidder1, id, d("1"))
	assert.ErrorIs(t, err, ErrBidTooLow)

	// 首笔有效出价: 资金即时托管
	require.NoError(t, f.engine.PlaceBid(bidder1, id, d("1.5")))
	assert.True(t, f.vault.Held(bidder1).Equal(d("1.5")))

	// 被超越: 前一名即时退款
	require.NoError(t, f.engine.PlaceBid(bidder2, id, d("2")))
	assert.True(t, f.vault.Held(bidder1).IsZero())
	assert.True(t, f.vault.Balance(bidder1).Equal(d("1.5")))
	assert.True(t, f.vault.Held(bidder2).Equal(d("2")))

	// 未到期不能结算
	err = f.engine.SettleAuction(id)
	assert.ErrorIs(t, err, ErrAuctionNotDue)

	f.clock.advance(2 * time.Hour)

	// 到期后出价被拒绝
	err = f.engine.PlaceBid(bidder1, id, d("3"))
	assert.ErrorIs(t, err, ErrAuctionClosed)

	require.NoError(t, f.engine.SettleAuction(id))

	a, ok := f.engine.GetAuction(id)
	require.True(t, ok)
	assert.Equal(t, StatusEnded, a.Status)
	assert.Equal(t, lower(bidder2), a.Winner)
	assert.True(t, a.FinalPrice.Equal(d("2")))

	// 资产转移给胜出者, 锁释放
	asset := comm.AssetRef{ContractAddr: nftAddr, TokenID: "1"}
	assert.True(t, f.ledger.IsOwner(asset, bidder2))
	assert.False(t, f.locks.IsCustomizationLocked(comm.AssetKey(nftAddr, "1")))

	// 分账: 2.0 按 250/100 bps 拆分
	assert.True(t, f.vault.Balance(seller).Equal(d("1.93")))
	assert.True(t, f.vault.Balance(treasury).Equal(d("0.02")))
	assert.True(t, f.fees.FeeBalance().Equal(d("0.05")))

	// 成交计入交易统计
	assert.Equal(t, int64(1), f.fees.GetTradingStats(seller).TotalSales)
	assert.Equal(t, int64(1), f.fees.GetTradingStats(bidder2).TotalPurchases)

	// 终态不可重复结算
	err = f.engine.SettleAuction(id)
	assert.ErrorIs(t, err, ErrAuctionClosed)
}

func TestEnglishAuctionIncrement(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, KindEnglish, "0", "0", "0.0001", nil, time.Hour)

	// 首笔出价必须达到 起拍价 + 加价幅度
	require.NoError(t, f.engine.PlaceBid(bidder1, id, d("0.0018")))

	// 低于 当前价 + 加价幅度 的出价被拒绝
	err := f.engine.PlaceBid(bidder2, id, d("0.0015"))
	assert.ErrorIs(t, err, ErrBidTooLow)
	err = f.engine.PlaceBid(bidder2, id, d("0.00185"))
	assert.ErrorIs(t, err, ErrBidTooLow)

	require.NoError(t, f.engine.PlaceBid(bidder2, id, d("0.0019")))
	a, _ := f.engine.GetAuction(id)
	assert.True(t, a.CurrentBid.Equal(d("0.0019")))
	assert.Equal(t, 2, a.BidCount)
}

func TestEnglishBuyNowTriggersSettlement(t *testing.T) {
	f := newFixture(t)
	buyNow := d("3")
	id := f.create(t, KindEnglish, "1", "1", "0.1", &buyNow, time.Hour)

	require.NoError(t, f.engine.PlaceBid(bidder1, id, d("1.5")))

	// 出价达到一口价: 立即成交, 被超越的出价退款
	require.NoError(t, f.engine.PlaceBid(bidder2, id, d("3")))

	a, _ := f.engine.GetAuction(id)
	assert.Equal(t, StatusEnded, a.Status)
	assert.Equal(t, lower(bidder2), a.Winner)
	assert.True(t, a.FinalPrice.Equal(d("3")))
	assert.True(t, f.vault.Balance(bidder1).Equal(d("1.5")))
	assert.True(t, f.ledger.IsOwner(comm.AssetRef{ContractAddr: nftAddr, TokenID: "1"}, bidder2))
}

func TestDutchPriceCurve(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, KindDutch, "10", "2", "0", nil, time.Hour)

	// 起始时刻为起拍价
	price, err := f.engine.CurrentDutchPrice(id)
	require.NoError(t, err)
	assert.True(t, price.Equal(d("10")))

	// 价格随时间单调不增
	prev := price
	for i := 0; i < 6; i++ {
		f.clock.advance(10 * time.Minute)
		price, err = f.engine.CurrentDutchPrice(id)
		require.NoError(t, err)
		assert.True(t, price.LessThanOrEqual(prev), "price=%s prev=%s", price, prev)
		prev = price
	}

	// 到期时恰好等于保留价
	assert.True(t, price.Equal(d("2")))
}

func TestDutchBuyNow(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, KindDutch, "10", "2", "0", nil, time.Hour)

	// 半程: 价格应为 6
	f.clock.advance(30 * time.Minute)
	price, err := f.engine.CurrentDutchPrice(id)
	require.NoError(t, err)
	require.True(t, price.Equal(d("6")))

	// 支付不足被拒绝
	err = f.engine.BuyNow(bidder1, id, d("5.9"))
	assert.ErrorIs(t, err, ErrBidTooLow)

	// 超付成交, 差额退回
	require.NoError(t, f.engine.BuyNow(bidder1, id, d("7")))

	a, _ := f.engine.GetAuction(id)
	assert.Equal(t, StatusEnded, a.Status)
	assert.True(t, a.FinalPrice.Equal(d("6")))
	assert.True(t, f.vault.Balance(bidder1).Equal(d("1")))
	assert.True(t, f.ledger.IsOwner(comm.AssetRef{ContractAddr: nftAddr, TokenID: "1"}, bidder1))

	// 明价出价接口对荷兰式不可用
	err = f.engine.PlaceBid(bidder2, id, d("8"))
	assert.ErrorIs(t, err, ErrWrongAuctionType)
}

func TestSealedBidCommitReveal(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, KindSealedBid, "0", "1", "0", nil, time.Hour)

	c1 := ComputeCommitment(d("2.5"), "salt-1", bidder1)
	c2 := ComputeCommitment(d("3"), "salt-2", bidder2)

	require.NoError(t, f.engine.CommitSealedBid(bidder1, id, c1))
	require.NoError(t, f.engine.CommitSealedBid(bidder2, id, c2))

	// 每人只能承诺一次
	err := f.engine.CommitSealedBid(bidder1, id, c1)
	assert.ErrorIs(t, err, ErrAlreadyCommitted)

	// 承诺阶段不能揭示
	err = f.engine.RevealSealedBid(bidder1, id, d("2.5"), "salt-1")
	assert.ErrorIs(t, err, ErrNotRevealPhase)

	// 承诺阶段不托管资金
	assert.True(t, f.vault.Held(bidder1).IsZero())

	f.clock.advance(90 * time.Minute) // 进入揭示窗口

	// 揭示窗口内不能再承诺
	err = f.engine.CommitSealedBid(admin, id, c1)
	assert.ErrorIs(t, err, ErrAuctionClosed)

	// 与承诺不符的揭示被拒绝且作废
	err = f.engine.RevealSealedBid(bidder1, id, d("2.5"), "wrong-salt")
	assert.ErrorIs(t, err, ErrInvalidReveal)
	err = f.engine.RevealSealedBid(bidder1, id, d("2.5"), "salt-1")
	assert.ErrorIs(t, err, ErrNoCommitment)

	require.NoError(t, f.engine.RevealSealedBid(bidder2, id, d("3"), "salt-2"))

	// 揭示窗口未结束不能结算
	err = f.engine.SettleAuction(id)
	assert.ErrorIs(t, err, ErrAuctionNotDue)

	f.clock.advance(time.Hour)
	require.NoError(t, f.engine.SettleAuction(id))

	a, _ := f.engine.GetAuction(id)
	assert.Equal(t, StatusEnded, a.Status)
	assert.Equal(t, lower(bidder2), a.Winner)
	assert.True(t, a.FinalPrice.Equal(d("3")))

	// 胜出者在结算时一次性付款并完成分账
	assert.True(t, f.ledger.IsOwner(comm.AssetRef{ContractAddr: nftAddr, TokenID: "1"}, bidder2))
	assert.True(t, f.vault.Balance(seller).Equal(d("2.895")))
	assert.True(t, f.vault.Balance(treasury).Equal(d("0.03")))
	assert.True(t, f.fees.FeeBalance().Equal(d("0.075")))
}

func TestSealedBidBelowReserveUnsold(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, KindSealedBid, "0", "5", "0", nil, time.Hour)

	c1 := ComputeCommitment(d("2"), "salt", bidder1)
	require.NoError(t, f.engine.CommitSealedBid(bidder1, id, c1))

	f.clock.advance(90 * time.Minute)
	require.NoError(t, f.engine.RevealSealedBid(bidder1, id, d("2"), "salt"))

	f.clock.advance(time.Hour)
	require.NoError(t, f.engine.SettleAuction(id))

	// 未达保留价: 流拍, 资产留在卖家手中, 锁释放
	a, _ := f.engine.GetAuction(id)
	assert.Equal(t, StatusEnded, a.Status)
	assert.Empty(t, a.Winner)
	assert.True(t, f.ledger.IsOwner(comm.AssetRef{ContractAddr: nftAddr, TokenID: "1"}, seller))
	assert.False(t, f.locks.IsCustomizationLocked(comm.AssetKey(nftAddr, "1")))
	// 密封流拍不涉及资金
	assert.True(t, f.vault.Held(bidder1).IsZero())
	assert.True(t, f.vault.Balance(bidder1).IsZero())
}

func TestReserveNotMetRefundsHighestBid(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, KindTraditional, "1", "5", "0", nil, time.Hour)

	require.NoError(t, f.engine.PlaceBid(bidder1, id, d("3")))

	f.clock.advance(2 * time.Hour)
	require.NoError(t, f.engine.SettleAuction(id))

	// 未达保留价: 最高出价退款, 资产不转移
	a, _ := f.engine.GetAuction(id)
	assert.Equal(t, StatusEnded, a.Status)
	assert.Empty(t, a.Winner)
	assert.True(t, f.vault.Balance(bidder1).Equal(d("3")))
	assert.True(t, f.ledger.IsOwner(comm.AssetRef{ContractAddr: nftAddr, TokenID: "1"}, seller))
}

func TestCancelAuction(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, KindTraditional, "1", "1", "0", nil, time.Hour)

	// 非卖家且无 AUCTION_MANAGER 角色不能取消
	err := f.engine.CancelAuction(bidder1, id)
	assert.ErrorIs(t, err, ErrNotTheSeller)

	// 卖家在无出价时可取消
	require.NoError(t, f.engine.CancelAuction(seller, id))
	a, _ := f.engine.GetAuction(id)
	assert.Equal(t, StatusCancelled, a.Status)

	// 取消后锁释放, 可重新挂单
	require.NoError(t, f.fees.PrepareNFTForTrade(seller, nftAddr, "1", d("1"), true))
}

func TestCancelAuctionWithBidsRejected(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, KindTraditional, "1", "1", "0", nil, time.Hour)

	require.NoError(t, f.engine.PlaceBid(bidder1, id, d("2")))

	// 已有出价后任何人都不能取消, 包括卖家与拍卖管理员
	err := f.engine.CancelAuction(seller, id)
	assert.ErrorIs(t, err, ErrCannotCancelWithBids)

	require.NoError(t, f.access.GrantRole(admin, accesscontrol.RoleAuctionManager, bidder2))
	err = f.engine.CancelAuction(bidder2, id)
	assert.ErrorIs(t, err, ErrCannotCancelWithBids)
}

func TestAuctionManagerCanCancel(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, KindTraditional, "1", "1", "0", nil, time.Hour)

	require.NoError(t, f.access.GrantRole(admin, accesscontrol.RoleAuctionManager, bidder2))
	require.NoError(t, f.engine.CancelAuction(bidder2, id))

	a, _ := f.engine.GetAuction(id)
	assert.Equal(t, StatusCancelled, a.Status)
}

func TestPauseBlocksAuctionMutations(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, KindTraditional, "1", "1", "0", nil, time.Hour)

	require.NoError(t, f.access.GrantRole(admin, accesscontrol.RolePauser, admin))
	require.NoError(t, f.access.PauseGlobally(admin))

	err := f.engine.PlaceBid(bidder1, id, d("2"))
	assert.ErrorIs(t, err, accesscontrol.ErrSystemPaused)
	err = f.engine.CancelAuction(seller, id)
	assert.ErrorIs(t, err, accesscontrol.ErrSystemPaused)
	_, err = f.engine.CreateAuction(seller, KindTraditional, nftAddr, "2",
		d("1"), d("1"), decimal.Zero, nil, time.Hour)
	assert.ErrorIs(t, err, accesscontrol.ErrSystemPaused)
}

func TestDutchSubSecondDuration(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, KindDutch, "10", "2", "0", nil, 500*time.Millisecond)

	// 亚秒级时长: 半程价格同样按线性插值得出
	f.clock.advance(250 * time.Millisecond)
	price, err := f.engine.CurrentDutchPrice(id)
	require.NoError(t, err)
	assert.True(t, price.Equal(d("6")), "price=%s", price)

	// 到期后恒为保留价
	f.clock.advance(time.Second)
	price, err = f.engine.CurrentDutchPrice(id)
	require.NoError(t, err)
	assert.True(t, price.Equal(d("2")))
}

func TestEnglishBuyNowCapsOvershoot(t *testing.T) {
	f := newFixture(t)
	buyNow := d("3")
	id := f.create(t, KindEnglish, "1", "1", "0.1", &buyNow, time.Hour)

	// 超过一口价的出价按一口价成交, 差额立即退回
	require.NoError(t, f.engine.PlaceBid(bidder1, id, d("3.5")))

	a, _ := f.engine.GetAuction(id)
	assert.Equal(t, StatusEnded, a.Status)
	assert.Equal(t, lower(bidder1), a.Winner)
	assert.True(t, a.FinalPrice.Equal(d("3")))
	assert.True(t, f.vault.Balance(bidder1).Equal(d("0.5")))

	// 分账以一口价为基数: 3.0 按 250/100 bps 拆分
	assert.True(t, f.vault.Balance(seller).Equal(d("2.895")))
	assert.True(t, f.vault.Balance(treasury).Equal(d("0.03")))
	assert.True(t, f.fees.FeeBalance().Equal(d("0.075")))
}

// recordingStore 统计持久化调用次数
type recordingStore struct {
	auctionSaves int
	bidSaves     int
}

func (s *recordingStore) SaveAuction(_ context.Context, _ Auction) error {
	s.auctionSaves++
	return nil
}

func (s *recordingStore) SaveBid(_ context.Context, _ BidRecord) error {
	s.bidSaves++
	return nil
}

func TestGetAuctionIsReadOnly(t *testing.T) {
	f := newFixture(t)
	store := &recordingStore{}
	f.engine.SetStore(store)

	id := f.create(t, KindSealedBid, "0", "1", "0", nil, time.Hour)
	f.clock.advance(90 * time.Minute)

	// 查询快照上体现揭示阶段, 但不触发任何状态写入
	saves := store.auctionSaves
	a, ok := f.engine.GetAuction(id)
	require.True(t, ok)
	assert.Equal(t, StatusRevealing, a.Status)
	assert.Equal(t, saves, store.auctionSaves)

	// 后续变更操作不受只读查询影响
	c1 := ComputeCommitment(d("2"), "salt", bidder1)
	err := f.engine.CommitSealedBid(bidder1, id, c1)
	assert.ErrorIs(t, err, ErrAuctionClosed)
}

// lower 返回地址的小写规范形式, 便于与引擎内部存储比较
func lower(addr string) string {
	out := make([]byte, len(addr))
	for i := 0; i < len(addr); i++ {
		c := addr[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}
