package svc

import (
	"context"

	"github.com/pkg/errors"
	"github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/kv"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"gorm.io/gorm"

	"github.com/ProjectsTask/EasySwapMarket/src/config"
	"github.com/ProjectsTask/EasySwapMarket/src/dao"
	"github.com/ProjectsTask/EasySwapMarket/src/pkg/gdb"
	"github.com/ProjectsTask/EasySwapMarket/src/pkg/xkv"
	"github.com/ProjectsTask/EasySwapMarket/src/pkg/xzap"
	"github.com/ProjectsTask/EasySwapMarket/src/service/accesscontrol"
	"github.com/ProjectsTask/EasySwapMarket/src/service/assetledger"
	"github.com/ProjectsTask/EasySwapMarket/src/service/auction"
	"github.com/ProjectsTask/EasySwapMarket/src/service/comm"
	"github.com/ProjectsTask/EasySwapMarket/src/service/escrowvault"
	"github.com/ProjectsTask/EasySwapMarket/src/service/lockregistry"
	"github.com/ProjectsTask/EasySwapMarket/src/service/trading"
)

// ServerCtx 服务上下文, 聚合全部基础设施与领域服务
type ServerCtx struct {
	C       *config.Config
	DB      *gorm.DB
	Dao     *dao.Dao
	KvStore *xkv.Store

	Access  *accesscontrol.Registry
	Locks   *lockregistry.Registry
	Ledger  *assetledger.DBLedger
	Vault   *escrowvault.Vault
	Trading *trading.Manager
	Auction *auction.Engine
}

// NewServiceContext 初始化服务上下文
// 负责初始化日志、Redis、数据库, 并装配访问控制、交易、拍卖三个核心服务
func NewServiceContext(ctx context.Context, c *config.Config) (*ServerCtx, error) {
	// 1. 初始化日志系统
	_, err := xzap.SetUp(*c.Log)
	if err != nil {
		return nil, err
	}

	// 2. 构造 Redis 配置并初始化 KV 客户端
	var kvConf kv.KvConf
	for _, con := range c.Kv.Redis {
		kvConf = append(kvConf, cache.NodeConf{
			RedisConf: redis.RedisConf{
				Host: con.Host,
				Type: con.Type,
				Pass: con.Pass,
			},
			Weight: 1,
		})
	}
	store := xkv.NewStore(kvConf)

	// 3. 初始化数据库连接
	db, err := gdb.NewDB(c.DB)
	if err != nil {
		return nil, err
	}

	// 4. 初始化数据访问层
	d := dao.New(ctx, db, store, c.Project.Name)

	// 5. 装配领域服务: 时钟、资产账本、托管金库、资产锁
	clock := comm.SystemClock{}
	ledger := assetledger.NewDBLedger(ctx, db, c.Project.Name)
	vault := escrowvault.New()
	locks := lockregistry.New()

	// 6. 访问控制注册表: 回放持久化的角色授权, 预授权资产合约
	access := accesscontrol.New(clock, d, c.Market.TimeLock(), c.Market.InitialAdmin)
	access.SetStore(d)
	grants, err := d.LoadRoleGrants(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed on load role grants")
	}
	for _, g := range grants {
		access.LoadGrant(g.Account, g.Roles)
	}
	for _, contract := range c.Market.AuthorizedContracts {
		if err := access.AuthorizeContract(c.Market.InitialAdmin, contract); err != nil {
			return nil, errors.Wrap(err, "failed on authorize contract")
		}
	}

	// 7. 交易管理器
	tradingMgr := trading.New(access, locks, ledger, vault, clock, d, trading.Config{
		TradingFeeBps:     c.Market.TradingFeeBps,
		MarketplaceFeeBps: c.Market.MarketplaceFeeBps,
		MinimumTradingFee: c.Market.MinimumFee(),
		Treasury:          c.Market.Treasury,
	})
	tradingMgr.SetStore(d)

	// 8. 拍卖引擎, 启动后台结算巡检
	auctionEngine := auction.New(ctx, access, locks, ledger, vault, tradingMgr, clock, d, auction.Config{
		RevealWindow:  c.Market.RevealWindow(),
		SweepInterval: c.Market.SweepInterval(),
	})
	auctionEngine.SetStore(d)
	auctionEngine.Start()

	// 9. 组装 ServerCtx
	serverCtx := NewServerCtx(
		WithDB(db),
		WithKv(store),
		WithDao(d),
	)
	serverCtx.C = c
	serverCtx.Access = access
	serverCtx.Locks = locks
	serverCtx.Ledger = ledger
	serverCtx.Vault = vault
	serverCtx.Trading = tradingMgr
	serverCtx.Auction = auctionEngine

	return serverCtx, nil
}
