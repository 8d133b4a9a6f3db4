package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/ProjectsTask/EasySwapMarket/src/common/utils"
	"github.com/ProjectsTask/EasySwapMarket/src/pkg/errcode"
	"github.com/ProjectsTask/EasySwapMarket/src/pkg/xhttp"
	"github.com/ProjectsTask/EasySwapMarket/src/service/svc"
	types "github.com/ProjectsTask/EasySwapMarket/src/types/v1"
)

// PrepareTradeHandler 挂单
func PrepareTradeHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.ListReq
		if err := c.ShouldBindJSON(&req); err != nil {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}
		if !requireAddresses(c, req.Caller, req.ContractAddr) {
			return
		}
		price, perr := parseAmount(req.Price)
		if perr != nil {
			xhttp.Error(c, perr)
			return
		}
		if err := svcCtx.Trading.PrepareNFTForTrade(req.Caller, req.ContractAddr, req.TokenID,
			price, req.AllowCustomization); err != nil {
			xhttp.Error(c, toAPIError(err))
			return
		}
		xhttp.OkJson(c, nil)
	}
}

// ExecuteTradeHandler 购买
func ExecuteTradeHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.BuyReq
		if err := c.ShouldBindJSON(&req); err != nil {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}
		if !requireAddresses(c, req.Caller, req.ContractAddr) {
			return
		}
		amountPaid, perr := parseAmount(req.AmountPaid)
		if perr != nil {
			xhttp.Error(c, perr)
			return
		}
		if err := svcCtx.Trading.ExecuteNFTTrade(req.Caller, req.ContractAddr, req.TokenID, amountPaid); err != nil {
			xhttp.Error(c, toAPIError(err))
			return
		}
		xhttp.OkJson(c, nil)
	}
}

// CancelSaleHandler 撤单
func CancelSaleHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.CancelSaleReq
		if err := c.ShouldBindJSON(&req); err != nil {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}
		if !requireAddresses(c, req.Caller, req.ContractAddr) {
			return
		}
		if err := svcCtx.Trading.CancelNFTSale(req.Caller, req.ContractAddr, req.TokenID); err != nil {
			xhttp.Error(c, toAPIError(err))
			return
		}
		xhttp.OkJson(c, nil)
	}
}

// SaleInfoHandler 查询单个资产的挂单信息
func SaleInfoHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		contractAddr := c.Query("contract_addr")
		tokenID := c.Query("token_id")
		if tokenID == "" {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}
		if !requireAddresses(c, contractAddr) {
			return
		}

		listing, ok := svcCtx.Trading.GetSaleInfo(contractAddr, tokenID)
		if !ok {
			xhttp.Error(c, errcode.ErrNotFound)
			return
		}
		xhttp.OkJson(c, types.ListingResp{
			ContractAddr:       listing.Asset.ContractAddr,
			TokenID:            listing.Asset.TokenID,
			Seller:             listing.Seller,
			Price:              listing.Price.String(),
			AllowCustomization: listing.AllowCustomization,
			IsActive:           listing.IsActive,
			ListedAt:           listing.ListedAt.Unix(),
		})
	}
}

// ActiveListingsHandler 分页查询活跃挂单
func ActiveListingsHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := queryInt(c, "page", 1)
		pageSize := queryInt(c, "page_size", 20)

		listings, total, err := svcCtx.Dao.QueryActiveListings(c.Request.Context(), page, pageSize)
		if err != nil {
			xhttp.Error(c, errcode.NewCustomErr(err.Error()))
			return
		}
		xhttp.OkJson(c, struct {
			Result interface{} `json:"result"`
			Total  int64       `json:"total"`
		}{Result: listings, Total: total})
	}
}

// TradingStatsHandler 查询账户交易统计
// 走缓存优先的持久化读路径, 读取失败回退引擎内存统计
func TradingStatsHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		account := c.Param("account")
		if !requireAddresses(c, account) {
			return
		}
		stats, err := svcCtx.Dao.GetTradingStats(c.Request.Context(), account)
		if err != nil {
			stats = svcCtx.Trading.GetTradingStats(account)
		}
		xhttp.OkJson(c, types.StatsResp{
			Account:        utils.ToChecksumAddress(account),
			TotalSales:     stats.TotalSales,
			TotalPurchases: stats.TotalPurchases,
			VolumeTraded:   stats.VolumeTraded.String(),
		})
	}
}

// UserListingsHandler 查询指定卖家的挂单历史
func UserListingsHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		seller := c.Param("account")
		if !requireAddresses(c, seller) {
			return
		}
		listings, err := svcCtx.Dao.QueryUserListings(c.Request.Context(), seller, queryInt(c, "limit", 20))
		if err != nil {
			xhttp.Error(c, errcode.NewCustomErr(err.Error()))
			return
		}
		xhttp.OkJson(c, struct {
			Result interface{} `json:"result"`
		}{Result: listings})
	}
}

// CalculateFeesHandler 费用试算
func CalculateFeesHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		price, perr := parseAmount(c.Query("price"))
		if perr != nil {
			xhttp.Error(c, perr)
			return
		}
		fees := svcCtx.Trading.CalculateTradeFees(price)
		xhttp.OkJson(c, types.FeeBreakdownResp{
			Price:          price.String(),
			TradingFee:     fees.TradingFee.String(),
			MarketplaceFee: fees.MarketplaceFee.String(),
			SellerProceeds: fees.SellerProceeds.String(),
		})
	}
}

// UpdateFeesHandler 调整费率 (PRICE_MANAGER)
func UpdateFeesHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.UpdateFeesReq
		if err := c.ShouldBindJSON(&req); err != nil {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}
		if !requireAddresses(c, req.Caller) {
			return
		}
		if err := svcCtx.Trading.UpdateTradingFees(req.Caller, req.TradingFeeBps, req.MarketplaceFeeBps); err != nil {
			xhttp.Error(c, toAPIError(err))
			return
		}
		xhttp.OkJson(c, nil)
	}
}

// UpdateTreasuryHandler 变更金库地址 (需时间锁)
func UpdateTreasuryHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.UpdateTreasuryReq
		if err := c.ShouldBindJSON(&req); err != nil {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}
		if !requireAddresses(c, req.Caller, req.Treasury) {
			return
		}
		if err := svcCtx.Trading.UpdateTreasury(req.Caller, req.Treasury); err != nil {
			xhttp.Error(c, toAPIError(err))
			return
		}
		xhttp.OkJson(c, nil)
	}
}

// WithdrawFeesHandler 提取协议费 (WITHDRAWER)
func WithdrawFeesHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.WithdrawReq
		if err := c.ShouldBindJSON(&req); err != nil {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}
		if !requireAddresses(c, req.Caller, req.To) {
			return
		}
		amount, perr := parseAmount(req.Amount)
		if perr != nil {
			xhttp.Error(c, perr)
			return
		}
		if err := svcCtx.Trading.WithdrawFees(req.Caller, req.To, amount); err != nil {
			xhttp.Error(c, toAPIError(err))
			return
		}
		xhttp.OkJson(c, nil)
	}
}

// EmergencyWithdrawHandler 紧急提取全部协议费到金库
func EmergencyWithdrawHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.WithdrawReq
		if err := c.ShouldBindJSON(&req); err != nil {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}
		if !requireAddresses(c, req.Caller) {
			return
		}
		if err := svcCtx.Trading.EmergencyWithdraw(req.Caller); err != nil {
			xhttp.Error(c, toAPIError(err))
			return
		}
		xhttp.OkJson(c, nil)
	}
}

// LockCustomizationHandler 管理员冻结资产自定义属性
func LockCustomizationHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.CustomizationReq
		if err := c.ShouldBindJSON(&req); err != nil {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}
		if !requireAddresses(c, req.Caller, req.ContractAddr) {
			return
		}
		if err := svcCtx.Trading.LockCustomization(req.Caller, req.ContractAddr, req.TokenID); err != nil {
			xhttp.Error(c, toAPIError(err))
			return
		}
		xhttp.OkJson(c, nil)
	}
}

// UnlockCustomizationHandler 管理员解冻资产自定义属性
func UnlockCustomizationHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.CustomizationReq
		if err := c.ShouldBindJSON(&req); err != nil {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}
		if !requireAddresses(c, req.Caller, req.ContractAddr) {
			return
		}
		if err := svcCtx.Trading.UnlockCustomization(req.Caller, req.ContractAddr, req.TokenID); err != nil {
			xhttp.Error(c, toAPIError(err))
			return
		}
		xhttp.OkJson(c, nil)
	}
}

// MarketEventsHandler 查询市场事件流水
func MarketEventsHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		events, err := svcCtx.Dao.QueryEvents(c.Request.Context(),
			c.Query("asset_key"), c.Query("account"), queryInt(c, "limit", 50))
		if err != nil {
			xhttp.Error(c, errcode.NewCustomErr(err.Error()))
			return
		}
		xhttp.OkJson(c, struct {
			Result interface{} `json:"result"`
		}{Result: events})
	}
}
