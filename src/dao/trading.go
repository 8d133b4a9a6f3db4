package dao

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm/clause"

	"github.com/ProjectsTask/EasySwapMarket/src/model"
	"github.com/ProjectsTask/EasySwapMarket/src/service/trading"
)

const cacheStatsKeyFmt = "cache:esm:stats:%s:%s" // project, account

// SaveListing 写穿透保存挂单, 实现 trading.Store
// 活跃挂单插入新行; 注销时更新该资产最近的活跃行
func (d *Dao) SaveListing(ctx context.Context, listing trading.Listing) error {
	now := listing.ListedAt.Unix()
	if listing.IsActive {
		record := model.Listing{
			ContractAddr:       strings.ToLower(listing.Asset.ContractAddr),
			TokenId:            listing.Asset.TokenID,
			Seller:             listing.Seller,
			Price:              listing.Price,
			AllowCustomization: listing.AllowCustomization,
			IsActive:           true,
			CreateTime:         now,
			UpdateTime:         now,
		}
		if err := d.DB.WithContext(ctx).Table(model.ListingTableName(d.project)).
			Create(&record).Error; err != nil {
			return errors.Wrap(err, "failed on create listing")
		}
		return nil
	}

	// 终态: 将该资产当前活跃挂单置为非活跃
	if err := d.DB.WithContext(ctx).Table(model.ListingTableName(d.project)).
		Where("contract_addr = ? and token_id = ? and is_active = ?",
			strings.ToLower(listing.Asset.ContractAddr), listing.Asset.TokenID, true).
		Updates(map[string]interface{}{
			"is_active":   false,
			"update_time": now,
		}).Error; err != nil {
		return errors.Wrap(err, "failed on deactivate listing")
	}
	return nil
}

// SaveStats 写穿透保存账户交易统计, 实现 trading.Store
func (d *Dao) SaveStats(ctx context.Context, account string, stats trading.Stats) error {
	record := model.TradingStats{
		Account:        strings.ToLower(account),
		TotalSales:     stats.TotalSales,
		TotalPurchases: stats.TotalPurchases,
		VolumeTraded:   stats.VolumeTraded,
	}
	if err := d.DB.WithContext(ctx).Table(model.TradingStatsTableName(d.project)).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "account"}},
			DoUpdates: clause.AssignmentColumns([]string{"total_sales", "total_purchases", "volume_traded", "update_time"}),
		}).Create(&record).Error; err != nil {
		return errors.Wrap(err, "failed on save trading stats")
	}

	// 刷新缓存, 失败不影响主流程
	_ = d.KvStore.WriteJson(fmt.Sprintf(cacheStatsKeyFmt, d.project, record.Account), stats, cacheExpireStats)
	return nil
}

// GetTradingStats 读取账户交易统计, 缓存优先
func (d *Dao) GetTradingStats(ctx context.Context, account string) (trading.Stats, error) {
	account = strings.ToLower(account)

	var cached trading.Stats
	ok, err := d.KvStore.ReadJson(fmt.Sprintf(cacheStatsKeyFmt, d.project, account), &cached)
	if err == nil && ok {
		return cached, nil
	}

	var record model.TradingStats
	result := d.DB.WithContext(ctx).Table(model.TradingStatsTableName(d.project)).
		Where("account = ?", account).
		Limit(1).Find(&record)
	if result.Error != nil {
		return trading.Stats{}, errors.Wrap(result.Error, "failed on query trading stats")
	}
	stats := trading.Stats{
		TotalSales:     record.TotalSales,
		TotalPurchases: record.TotalPurchases,
		VolumeTraded:   record.VolumeTraded,
	}

	_ = d.KvStore.WriteJson(fmt.Sprintf(cacheStatsKeyFmt, d.project, account), stats, cacheExpireStats)
	return stats, nil
}

// QueryActiveListings 分页查询活跃挂单
func (d *Dao) QueryActiveListings(ctx context.Context, page int, pageSize int) ([]model.Listing, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	var total int64
	if err := d.DB.WithContext(ctx).Table(model.ListingTableName(d.project)).
		Where("is_active = ?", true).
		Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed on count listings")
	}

	var listings []model.Listing
	if err := d.DB.WithContext(ctx).Table(model.ListingTableName(d.project)).
		Where("is_active = ?", true).
		Order("create_time desc").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&listings).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed on query listings")
	}
	return listings, total, nil
}

// QueryUserListings 查询指定卖家的挂单历史
func (d *Dao) QueryUserListings(ctx context.Context, seller string, limit int) ([]model.Listing, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var listings []model.Listing
	if err := d.DB.WithContext(ctx).Table(model.ListingTableName(d.project)).
		Where("seller = ?", strings.ToLower(seller)).
		Order("create_time desc").
		Limit(limit).
		Find(&listings).Error; err != nil {
		return nil, errors.Wrap(err, "failed on query user listings")
	}
	return listings, nil
}
