package dao

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ProjectsTask/EasySwapMarket/src/model"
	"github.com/ProjectsTask/EasySwapMarket/src/pkg/xzap"
	"github.com/ProjectsTask/EasySwapMarket/src/service/comm"
)

// Publish 将市场事件落库, 实现 comm.EventSink
// 事件是审计流水, 写入失败只记录日志, 不反压业务流程
func (d *Dao) Publish(event comm.MarketEvent) {
	record := model.MarketEvent{
		Type:      event.Type,
		Account:   event.Account,
		AssetKey:  event.AssetKey,
		Detail:    event.Detail,
		EventTime: event.EventTime.Unix(),
	}
	if err := d.DB.WithContext(d.ctx).Table(model.MarketEventTableName(d.project)).
		Create(&record).Error; err != nil {
		xzap.WithContext(d.ctx).Error("failed on save market event",
			zap.String("type", event.Type), zap.Error(err))
	}
}

// QueryEvents 查询事件流水, 可按资产或账户过滤, 按时间倒序
func (d *Dao) QueryEvents(ctx context.Context, assetKey string, account string, limit int) ([]model.MarketEvent, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := d.DB.WithContext(ctx).Table(model.MarketEventTableName(d.project))
	if assetKey != "" {
		query = query.Where("asset_key = ?", assetKey)
	}
	if account != "" {
		query = query.Where("account = ?", account)
	}

	var events []model.MarketEvent
	if err := query.Order("event_time desc").Limit(limit).Find(&events).Error; err != nil {
		return nil, errors.Wrap(err, "failed on query market events")
	}
	return events, nil
}
