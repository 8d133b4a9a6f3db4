package comm

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AssetKey 生成资产唯一键 (合约地址 + tokenId)
// 地址统一转小写, 避免同一资产因大小写产生多条记录
func AssetKey(contractAddr string, tokenID string) string {
	return fmt.Sprintf("%s:%s", strings.ToLower(contractAddr), tokenID)
}

// AssetRef 资产引用
type AssetRef struct {
	ContractAddr string `json:"contract_addr"` // NFT 合约地址
	TokenID      string `json:"token_id"`      // Token ID
}

// Key 返回资产唯一键
func (a AssetRef) Key() string {
	return AssetKey(a.ContractAddr, a.TokenID)
}

// AssetLedger 资产账本接口 (外部协作方)
// 核心引擎只通过该窄接口操作资产所有权, 不关心底层实现 (链上合约/数据库)
type AssetLedger interface {
	Transfer(asset AssetRef, from string, to string) error // 转移资产所有权
	IsOwner(asset AssetRef, account string) bool           // 判断账户是否为资产持有人
	Exists(asset AssetRef) bool                            // 资产是否存在
}

// EscrowVault 资金托管接口 (外部协作方)
// 抽象原生币/代币的转账动作: 出价/购买时冻结, 成交时消耗并放款, 失败时退款
type EscrowVault interface {
	HoldFunds(from string, amount decimal.Decimal) error   // 托管付款方资金
	ConsumeHold(from string, amount decimal.Decimal) error // 成交时消耗托管额度, 转入金库现金
	ReleaseFunds(to string, amount decimal.Decimal) error  // 从金库现金放款给收款方
	Refund(to string, amount decimal.Decimal) error        // 将托管中的资金退回付款方
	Held(account string) decimal.Decimal                   // 查询账户托管中的金额
}

// Clock 时钟接口, 测试中注入假时钟以保证确定性
type Clock interface {
	Now() time.Time
}

// SystemClock 系统时钟实现
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
