package comm

import "time"

// 市场事件类型
// 供前端/通知服务订阅展示, 也会落库形成操作流水
const (
	EventRoleGranted         = "role_granted"
	EventRoleRevoked         = "role_revoked"
	EventContractAuthorized  = "contract_authorized"
	EventContractDeauthed    = "contract_deauthorized"
	EventSystemPaused        = "system_paused"
	EventSystemUnpaused      = "system_unpaused"
	EventOperationScheduled  = "operation_scheduled"
	EventOperationExecuted   = "operation_executed"
	EventOperationCancelled  = "operation_cancelled"
	EventSalePrepared        = "sale_prepared"
	EventSaleCancelled       = "sale_cancelled"
	EventTradeCompleted      = "trade_completed"
	EventCustomizationLock   = "customization_lock_changed"
	EventFeesUpdated         = "fees_updated"
	EventFeesWithdrawn       = "fees_withdrawn"
	EventTreasuryUpdated     = "treasury_updated"
	EventAuctionCreated      = "auction_created"
	EventBidPlaced           = "bid_placed"
	EventBidCommitted        = "bid_committed"
	EventBidRevealed         = "bid_revealed"
	EventAuctionEnded        = "auction_ended"
	EventAuctionCancelled    = "auction_cancelled"
)

// MarketEvent 市场事件
type MarketEvent struct {
	Type      string    `json:"type"`       // 事件类型
	Account   string    `json:"account"`    // 触发账户
	AssetKey  string    `json:"asset_key"`  // 关联资产 (可为空)
	Detail    string    `json:"detail"`     // 事件详情 (JSON 或文本)
	EventTime time.Time `json:"event_time"` // 事件时间
}

// EventSink 事件接收器
// Dao 实现该接口将事件写入流水表; 测试中用内存切片实现
type EventSink interface {
	Publish(event MarketEvent)
}

// NopSink 丢弃所有事件的空实现
type NopSink struct{}

func (NopSink) Publish(MarketEvent) {}
