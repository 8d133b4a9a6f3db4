package v1

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/ProjectsTask/EasySwapMarket/src/model"
	"github.com/ProjectsTask/EasySwapMarket/src/pkg/errcode"
	"github.com/ProjectsTask/EasySwapMarket/src/pkg/xhttp"
	"github.com/ProjectsTask/EasySwapMarket/src/service/auction"
	"github.com/ProjectsTask/EasySwapMarket/src/service/svc"
	types "github.com/ProjectsTask/EasySwapMarket/src/types/v1"
)

// CreateAuctionHandler 创建拍卖
func CreateAuctionHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.CreateAuctionReq
		if err := c.ShouldBindJSON(&req); err != nil {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}
		kind, ok := auction.KindFromName(req.Kind)
		if !ok {
			xhttp.Error(c, errcode.NewErr(errcode.CodeInvalidParams, "unknown auction kind"))
			return
		}
		if !requireAddresses(c, req.Caller, req.ContractAddr) {
			return
		}
		startPrice, perr := parseAmount(req.StartPrice)
		if perr != nil {
			xhttp.Error(c, perr)
			return
		}
		reservePrice := decimal.Zero
		if req.ReservePrice != "" {
			if reservePrice, perr = parseAmount(req.ReservePrice); perr != nil {
				xhttp.Error(c, perr)
				return
			}
		}
		bidIncrement := decimal.Zero
		if req.BidIncrement != "" {
			if bidIncrement, perr = parseAmount(req.BidIncrement); perr != nil {
				xhttp.Error(c, perr)
				return
			}
		}
		var buyNow *decimal.Decimal
		if req.BuyNowPrice != "" {
			v, perr := parseAmount(req.BuyNowPrice)
			if perr != nil {
				xhttp.Error(c, perr)
				return
			}
			buyNow = &v
		}

		id, err := svcCtx.Auction.CreateAuction(req.Caller, kind, req.ContractAddr, req.TokenID,
			startPrice, reservePrice, bidIncrement, buyNow,
			time.Duration(req.DurationSeconds)*time.Second)
		if err != nil {
			xhttp.Error(c, toAPIError(err))
			return
		}
		xhttp.OkJson(c, struct {
			AuctionID string `json:"auction_id"`
		}{AuctionID: id})
	}
}

// PlaceBidHandler 明价出价 (固定时长 / 英式)
func PlaceBidHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.BidReq
		if err := c.ShouldBindJSON(&req); err != nil {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}
		if !requireAddresses(c, req.Caller) {
			return
		}
		amount, perr := parseAmount(req.Amount)
		if perr != nil {
			xhttp.Error(c, perr)
			return
		}
		if err := svcCtx.Auction.PlaceBid(req.Caller, req.AuctionID, amount); err != nil {
			xhttp.Error(c, toAPIError(err))
			return
		}
		xhttp.OkJson(c, nil)
	}
}

// BuyNowHandler 一口价购买 (英式/荷兰式)
func BuyNowHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.BuyNowReq
		if err := c.ShouldBindJSON(&req); err != nil {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}
		if !requireAddresses(c, req.Caller) {
			return
		}
		amountPaid, perr := parseAmount(req.AmountPaid)
		if perr != nil {
			xhttp.Error(c, perr)
			return
		}
		if err := svcCtx.Auction.BuyNow(req.Caller, req.AuctionID, amountPaid); err != nil {
			xhttp.Error(c, toAPIError(err))
			return
		}
		xhttp.OkJson(c, nil)
	}
}

// CommitSealedBidHandler 密封出价承诺
func CommitSealedBidHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.CommitReq
		if err := c.ShouldBindJSON(&req); err != nil {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}
		if !requireAddresses(c, req.Caller) {
			return
		}
		if err := svcCtx.Auction.CommitSealedBid(req.Caller, req.AuctionID, req.Commitment); err != nil {
			xhttp.Error(c, toAPIError(err))
			return
		}
		xhttp.OkJson(c, nil)
	}
}

// RevealSealedBidHandler 密封出价揭示
func RevealSealedBidHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.RevealReq
		if err := c.ShouldBindJSON(&req); err != nil {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}
		if !requireAddresses(c, req.Caller) {
			return
		}
		amount, perr := parseAmount(req.Amount)
		if perr != nil {
			xhttp.Error(c, perr)
			return
		}
		if err := svcCtx.Auction.RevealSealedBid(req.Caller, req.AuctionID, amount, req.Salt); err != nil {
			xhttp.Error(c, toAPIError(err))
			return
		}
		xhttp.OkJson(c, nil)
	}
}

// CancelAuctionHandler 取消拍卖 (卖家或拍卖管理员, 无出价时)
func CancelAuctionHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.CancelAuctionReq
		if err := c.ShouldBindJSON(&req); err != nil {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}
		if !requireAddresses(c, req.Caller) {
			return
		}
		if err := svcCtx.Auction.CancelAuction(req.Caller, req.AuctionID); err != nil {
			xhttp.Error(c, toAPIError(err))
			return
		}
		xhttp.OkJson(c, nil)
	}
}

// SettleAuctionHandler 结算到期拍卖
func SettleAuctionHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.SettleAuctionReq
		if err := c.ShouldBindJSON(&req); err != nil {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}
		if err := svcCtx.Auction.SettleAuction(req.AuctionID); err != nil {
			xhttp.Error(c, toAPIError(err))
			return
		}
		xhttp.OkJson(c, nil)
	}
}

// AuctionInfoHandler 查询拍卖信息
// 引擎只保存本进程内的在场拍卖, 历史拍卖从持久化读路径 (缓存优先) 补齐
func AuctionInfoHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		if a, ok := svcCtx.Auction.GetAuction(c.Param("id")); ok {
			xhttp.OkJson(c, toAuctionResp(a))
			return
		}
		record, err := svcCtx.Dao.GetAuction(c.Request.Context(), c.Param("id"))
		if err != nil {
			xhttp.Error(c, toAPIError(err))
			return
		}
		xhttp.OkJson(c, toStoredAuctionResp(record))
	}
}

// DutchPriceHandler 查询荷兰式拍卖当前价格
func DutchPriceHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		price, err := svcCtx.Auction.CurrentDutchPrice(c.Param("id"))
		if err != nil {
			xhttp.Error(c, toAPIError(err))
			return
		}
		xhttp.OkJson(c, struct {
			Price string `json:"price"`
		}{Price: price.String()})
	}
}

// AuctionBidsHandler 查询拍卖出价流水
func AuctionBidsHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		bids, err := svcCtx.Dao.QueryAuctionBids(c.Request.Context(), c.Param("id"), queryInt(c, "limit", 50))
		if err != nil {
			xhttp.Error(c, errcode.NewCustomErr(err.Error()))
			return
		}
		xhttp.OkJson(c, struct {
			Result interface{} `json:"result"`
		}{Result: bids})
	}
}

// ListAuctionsHandler 分页查询指定状态的拍卖
func ListAuctionsHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		auctions, total, err := svcCtx.Dao.QueryAuctionsByStatus(c.Request.Context(),
			queryInt(c, "status", int(auction.StatusActive)),
			queryInt(c, "page", 1), queryInt(c, "page_size", 20))
		if err != nil {
			xhttp.Error(c, errcode.NewCustomErr(err.Error()))
			return
		}
		xhttp.OkJson(c, struct {
			Result interface{} `json:"result"`
			Total  int64       `json:"total"`
		}{Result: auctions, Total: total})
	}
}

// toAuctionResp 组装拍卖响应
func toAuctionResp(a auction.Auction) types.AuctionResp {
	resp := types.AuctionResp{
		ID:            a.ID,
		ContractAddr:  a.Asset.ContractAddr,
		TokenID:       a.Asset.TokenID,
		Seller:        a.Seller,
		Kind:          a.Kind.String(),
		Status:        a.Status.String(),
		StartPrice:    a.StartPrice.String(),
		ReservePrice:  a.ReservePrice.String(),
		BidIncrement:  a.BidIncrement.String(),
		StartTime:     a.StartTime.Unix(),
		EndTime:       a.EndTime.Unix(),
		CurrentBid:    a.CurrentBid.String(),
		HighestBidder: a.HighestBidder,
		BidCount:      a.BidCount,
		Winner:        a.Winner,
	}
	if a.BuyNowPrice != nil {
		resp.BuyNowPrice = a.BuyNowPrice.String()
	}
	if !a.RevealEnd.IsZero() {
		resp.RevealEnd = a.RevealEnd.Unix()
	}
	if !a.FinalPrice.IsZero() {
		resp.FinalPrice = a.FinalPrice.String()
	}
	return resp
}

// toStoredAuctionResp 组装持久化拍卖记录的响应
func toStoredAuctionResp(record model.Auction) types.AuctionResp {
	resp := types.AuctionResp{
		ID:            record.AuctionId,
		ContractAddr:  record.ContractAddr,
		TokenID:       record.TokenId,
		Seller:        record.Seller,
		Kind:          auction.Kind(record.AuctionType).String(),
		Status:        auction.Status(record.Status).String(),
		StartPrice:    record.StartPrice.String(),
		ReservePrice:  record.ReservePrice.String(),
		BidIncrement:  record.BidIncrement.String(),
		StartTime:     record.StartTime,
		EndTime:       record.EndTime,
		RevealEnd:     record.RevealEnd,
		CurrentBid:    record.CurrentBid.String(),
		HighestBidder: record.HighestBidder,
		BidCount:      record.BidCount,
		Winner:        record.Winner,
	}
	if !record.BuyNowPrice.IsZero() {
		resp.BuyNowPrice = record.BuyNowPrice.String()
	}
	if !record.FinalPrice.IsZero() {
		resp.FinalPrice = record.FinalPrice.String()
	}
	return resp
}
