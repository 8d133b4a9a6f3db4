package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// 表名统一加项目前缀, 同一套库可承载多个市场实例
// 与订单簿模型按链分表的做法一致, 这里按项目名分表

// Listing 直售挂单记录
type Listing struct {
	Id                 int64           `gorm:"column:id;primaryKey;autoIncrement"`
	ContractAddr       string          `gorm:"column:contract_addr;type:varchar(64);index:idx_asset"`
	TokenId            string          `gorm:"column:token_id;type:varchar(128);index:idx_asset"`
	Seller             string          `gorm:"column:seller;type:varchar(64)"`
	Price              decimal.Decimal `gorm:"column:price;type:decimal(36,18)"`
	AllowCustomization bool            `gorm:"column:allow_customization"`
	IsActive           bool            `gorm:"column:is_active"`
	CreateTime         int64           `gorm:"column:create_time"`
	UpdateTime         int64           `gorm:"column:update_time"`
}

// ListingTableName 挂单表名
func ListingTableName(project string) string {
	return fmt.Sprintf("ms_listing_%s", project)
}

// Auction 拍卖记录
type Auction struct {
	Id            int64           `gorm:"column:id;primaryKey;autoIncrement"`
	AuctionId     string          `gorm:"column:auction_id;type:varchar(64);uniqueIndex"`
	ContractAddr  string          `gorm:"column:contract_addr;type:varchar(64);index:idx_auction_asset"`
	TokenId       string          `gorm:"column:token_id;type:varchar(128);index:idx_auction_asset"`
	Seller        string          `gorm:"column:seller;type:varchar(64)"`
	AuctionType   int             `gorm:"column:auction_type"`
	Status        int             `gorm:"column:status"`
	StartPrice    decimal.Decimal `gorm:"column:start_price;type:decimal(36,18)"`
	ReservePrice  decimal.Decimal `gorm:"column:reserve_price;type:decimal(36,18)"`
	BuyNowPrice   decimal.Decimal `gorm:"column:buy_now_price;type:decimal(36,18)"`
	BidIncrement  decimal.Decimal `gorm:"column:bid_increment;type:decimal(36,18)"`
	StartTime     int64           `gorm:"column:start_time"`
	EndTime       int64           `gorm:"column:end_time"`
	RevealEnd     int64           `gorm:"column:reveal_end"` // 密封拍卖揭示窗口截止, 其余类型为 0
	CurrentBid    decimal.Decimal `gorm:"column:current_bid;type:decimal(36,18)"`
	HighestBidder string          `gorm:"column:highest_bidder;type:varchar(64)"`
	BidCount      int             `gorm:"column:bid_count"`
	Winner        string          `gorm:"column:winner;type:varchar(64)"`
	FinalPrice    decimal.Decimal `gorm:"column:final_price;type:decimal(36,18)"`
	CreateTime    int64           `gorm:"column:create_time"`
	UpdateTime    int64           `gorm:"column:update_time"`
}

// AuctionTableName 拍卖表名
func AuctionTableName(project string) string {
	return fmt.Sprintf("ms_auction_%s", project)
}

// AuctionBid 拍卖出价流水 (普通出价 / 密封承诺 / 揭示)
type AuctionBid struct {
	Id             int64           `gorm:"column:id;primaryKey;autoIncrement"`
	AuctionId      string          `gorm:"column:auction_id;type:varchar(64);index"`
	Bidder         string          `gorm:"column:bidder;type:varchar(64)"`
	Amount         decimal.Decimal `gorm:"column:amount;type:decimal(36,18)"`
	CommitmentHash string          `gorm:"column:commitment_hash;type:varchar(66)"`
	Kind           int             `gorm:"column:kind"` // 0: 明价出价, 1: 密封承诺, 2: 揭示
	EventTime      int64           `gorm:"column:event_time"`
}

// AuctionBidTableName 出价流水表名
func AuctionBidTableName(project string) string {
	return fmt.Sprintf("ms_auction_bid_%s", project)
}

// TradingStats 账户交易统计 (只增不减的累计值)
type TradingStats struct {
	Id             int64           `gorm:"column:id;primaryKey;autoIncrement"`
	Account        string          `gorm:"column:account;type:varchar(64);uniqueIndex"`
	TotalSales     int64           `gorm:"column:total_sales"`
	TotalPurchases int64           `gorm:"column:total_purchases"`
	VolumeTraded   decimal.Decimal `gorm:"column:volume_traded;type:decimal(36,18)"`
	UpdateTime     int64           `gorm:"column:update_time"`
}

// TradingStatsTableName 交易统计表名
func TradingStatsTableName(project string) string {
	return fmt.Sprintf("ms_trading_stats_%s", project)
}

// RoleGrant 账户角色位集
type RoleGrant struct {
	Id         int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Account    string `gorm:"column:account;type:varchar(64);uniqueIndex"`
	Roles      uint32 `gorm:"column:roles"`
	UpdateTime int64  `gorm:"column:update_time"`
}

// RoleGrantTableName 角色表名
func RoleGrantTableName(project string) string {
	return fmt.Sprintf("ms_role_grant_%s", project)
}

// MarketEvent 市场事件流水
type MarketEvent struct {
	Id        int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Type      string `gorm:"column:type;type:varchar(40);index"`
	Account   string `gorm:"column:account;type:varchar(64);index"`
	AssetKey  string `gorm:"column:asset_key;type:varchar(200);index"`
	Detail    string `gorm:"column:detail;type:text"`
	EventTime int64  `gorm:"column:event_time"`
}

// MarketEventTableName 事件表名
func MarketEventTableName(project string) string {
	return fmt.Sprintf("ms_market_event_%s", project)
}

// Asset 资产所有权记录 (资产账本的数据库实现)
type Asset struct {
	Id           int64  `gorm:"column:id;primaryKey;autoIncrement"`
	ContractAddr string `gorm:"column:contract_addr;type:varchar(64);uniqueIndex:uk_asset"`
	TokenId      string `gorm:"column:token_id;type:varchar(128);uniqueIndex:uk_asset"`
	Owner        string `gorm:"column:owner;type:varchar(64);index"`
	UpdateTime   int64  `gorm:"column:update_time"`
}

// AssetTableName 资产表名
func AssetTableName(project string) string {
	return fmt.Sprintf("ms_asset_%s", project)
}
