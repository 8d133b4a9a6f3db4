package router

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/ProjectsTask/EasySwapMarket/src/api/v1"
	"github.com/ProjectsTask/EasySwapMarket/src/service/svc"
)

// loadV1 注册 v1 版本路由
func loadV1(r *gin.Engine, svcCtx *svc.ServerCtx) {
	api := r.Group("/api/v1")

	// 访问控制
	access := api.Group("/access")
	{
		access.POST("/roles/grant", v1.GrantRoleHandler(svcCtx))
		access.POST("/roles/revoke", v1.RevokeRoleHandler(svcCtx))
		access.POST("/roles/renounce", v1.RenounceRoleHandler(svcCtx))
		access.GET("/roles/:account", v1.RolesOfHandler(svcCtx))
		access.POST("/pause", v1.PauseHandler(svcCtx))
		access.POST("/unpause", v1.UnpauseHandler(svcCtx))
		access.POST("/contracts/authorize", v1.AuthorizeContractHandler(svcCtx))
		access.POST("/contracts/deauthorize", v1.DeauthorizeContractHandler(svcCtx))
		access.POST("/timelock/schedule", v1.ScheduleTimeLockHandler(svcCtx))
		access.POST("/timelock/execute", v1.ExecuteTimeLockHandler(svcCtx))
		access.POST("/timelock/cancel", v1.CancelTimeLockHandler(svcCtx))
		access.POST("/emergency/add", v1.AddEmergencyContactHandler(svcCtx))
		access.POST("/emergency/remove", v1.RemoveEmergencyContactHandler(svcCtx))
	}

	// 直售交易
	trade := api.Group("/trade")
	{
		trade.POST("/list", v1.PrepareTradeHandler(svcCtx))
		trade.POST("/buy", v1.ExecuteTradeHandler(svcCtx))
		trade.POST("/cancel", v1.CancelSaleHandler(svcCtx))
		trade.GET("/listing", v1.SaleInfoHandler(svcCtx))
		trade.GET("/listings", v1.ActiveListingsHandler(svcCtx))
		trade.GET("/listings/:account", v1.UserListingsHandler(svcCtx))
		trade.GET("/stats/:account", v1.TradingStatsHandler(svcCtx))
		trade.GET("/fees", v1.CalculateFeesHandler(svcCtx))
		trade.POST("/fees", v1.UpdateFeesHandler(svcCtx))
		trade.POST("/treasury", v1.UpdateTreasuryHandler(svcCtx))
		trade.POST("/withdraw", v1.WithdrawFeesHandler(svcCtx))
		trade.POST("/withdraw/emergency", v1.EmergencyWithdrawHandler(svcCtx))
		trade.POST("/customization/lock", v1.LockCustomizationHandler(svcCtx))
		trade.POST("/customization/unlock", v1.UnlockCustomizationHandler(svcCtx))
	}

	// 拍卖
	auctions := api.Group("/auctions")
	{
		auctions.POST("", v1.CreateAuctionHandler(svcCtx))
		auctions.GET("", v1.ListAuctionsHandler(svcCtx))
		auctions.POST("/bid", v1.PlaceBidHandler(svcCtx))
		auctions.POST("/buy-now", v1.BuyNowHandler(svcCtx))
		auctions.POST("/commit", v1.CommitSealedBidHandler(svcCtx))
		auctions.POST("/reveal", v1.RevealSealedBidHandler(svcCtx))
		auctions.POST("/cancel", v1.CancelAuctionHandler(svcCtx))
		auctions.POST("/settle", v1.SettleAuctionHandler(svcCtx))
		auctions.GET("/:id", v1.AuctionInfoHandler(svcCtx))
		auctions.GET("/:id/price", v1.DutchPriceHandler(svcCtx))
		auctions.GET("/:id/bids", v1.AuctionBidsHandler(svcCtx))
	}

	// 事件流水
	api.GET("/events", v1.MarketEventsHandler(svcCtx))
}
