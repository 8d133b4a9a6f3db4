package dao

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"

	"github.com/ProjectsTask/EasySwapMarket/src/model"
	"github.com/ProjectsTask/EasySwapMarket/src/service/auction"
)

const cacheAuctionKeyFmt = "cache:esm:auction:%s:%s" // project, auctionID

// SaveAuction 写穿透保存拍卖, 实现 auction.Store
// 以拍卖 id 为唯一键做 upsert, 每次状态变更覆盖最新快照
func (d *Dao) SaveAuction(ctx context.Context, a auction.Auction) error {
	buyNow := decimal.Zero
	if a.BuyNowPrice != nil {
		buyNow = *a.BuyNowPrice
	}
	revealEnd := int64(0)
	if !a.RevealEnd.IsZero() {
		revealEnd = a.RevealEnd.Unix()
	}
	record := model.Auction{
		AuctionId:     a.ID,
		ContractAddr:  strings.ToLower(a.Asset.ContractAddr),
		TokenId:       a.Asset.TokenID,
		Seller:        a.Seller,
		AuctionType:   int(a.Kind),
		Status:        int(a.Status),
		StartPrice:    a.StartPrice,
		ReservePrice:  a.ReservePrice,
		BuyNowPrice:   buyNow,
		BidIncrement:  a.BidIncrement,
		StartTime:     a.StartTime.Unix(),
		EndTime:       a.EndTime.Unix(),
		RevealEnd:     revealEnd,
		CurrentBid:    a.CurrentBid,
		HighestBidder: a.HighestBidder,
		BidCount:      a.BidCount,
		Winner:        a.Winner,
		FinalPrice:    a.FinalPrice,
		CreateTime:    a.StartTime.Unix(),
	}
	if err := d.DB.WithContext(ctx).Table(model.AuctionTableName(d.project)).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "auction_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"status", "current_bid", "highest_bidder", "bid_count",
				"winner", "final_price", "update_time",
			}),
		}).Create(&record).Error; err != nil {
		return errors.Wrap(err, "failed on save auction")
	}

	_ = d.KvStore.WriteJson(fmt.Sprintf(cacheAuctionKeyFmt, d.project, a.ID), record, cacheExpireAuction)
	return nil
}

// SaveBid 追加出价流水, 实现 auction.Store
func (d *Dao) SaveBid(ctx context.Context, bid auction.BidRecord) error {
	record := model.AuctionBid{
		AuctionId:      bid.AuctionID,
		Bidder:         bid.Bidder,
		Amount:         bid.Amount,
		CommitmentHash: bid.Commitment,
		Kind:           bid.Kind,
		EventTime:      bid.EventTime.Unix(),
	}
	if err := d.DB.WithContext(ctx).Table(model.AuctionBidTableName(d.project)).
		Create(&record).Error; err != nil {
		return errors.Wrap(err, "failed on save auction bid")
	}
	return nil
}

// GetAuction 读取拍卖快照, 缓存优先
func (d *Dao) GetAuction(ctx context.Context, auctionID string) (model.Auction, error) {
	var cached model.Auction
	ok, err := d.KvStore.ReadJson(fmt.Sprintf(cacheAuctionKeyFmt, d.project, auctionID), &cached)
	if err == nil && ok {
		return cached, nil
	}

	var record model.Auction
	result := d.DB.WithContext(ctx).Table(model.AuctionTableName(d.project)).
		Where("auction_id = ?", auctionID).
		Limit(1).Find(&record)
	if result.Error != nil {
		return model.Auction{}, errors.Wrap(result.Error, "failed on query auction")
	}
	if record.Id == 0 {
		return model.Auction{}, auction.ErrAuctionNotFound
	}

	_ = d.KvStore.WriteJson(fmt.Sprintf(cacheAuctionKeyFmt, d.project, auctionID), record, cacheExpireAuction)
	return record, nil
}

// QueryAuctionsByStatus 分页查询指定状态的拍卖
func (d *Dao) QueryAuctionsByStatus(ctx context.Context, status int, page int, pageSize int) ([]model.Auction, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	var total int64
	if err := d.DB.WithContext(ctx).Table(model.AuctionTableName(d.project)).
		Where("status = ?", status).
		Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed on count auctions")
	}

	var auctions []model.Auction
	if err := d.DB.WithContext(ctx).Table(model.AuctionTableName(d.project)).
		Where("status = ?", status).
		Order("end_time asc").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&auctions).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed on query auctions")
	}
	return auctions, total, nil
}

// QueryAuctionBids 查询拍卖的出价流水, 按时间倒序
func (d *Dao) QueryAuctionBids(ctx context.Context, auctionID string, limit int) ([]model.AuctionBid, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var bids []model.AuctionBid
	if err := d.DB.WithContext(ctx).Table(model.AuctionBidTableName(d.project)).
		Where("auction_id = ?", auctionID).
		Order("event_time desc").
		Limit(limit).
		Find(&bids).Error; err != nil {
		return nil, errors.Wrap(err, "failed on query auction bids")
	}
	return bids, nil
}
