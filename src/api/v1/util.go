package v1

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/ProjectsTask/EasySwapMarket/src/common/utils"
	"github.com/ProjectsTask/EasySwapMarket/src/pkg/errcode"
	"github.com/ProjectsTask/EasySwapMarket/src/pkg/xhttp"
	"github.com/ProjectsTask/EasySwapMarket/src/service/accesscontrol"
	"github.com/ProjectsTask/EasySwapMarket/src/service/auction"
	"github.com/ProjectsTask/EasySwapMarket/src/service/lockregistry"
	"github.com/ProjectsTask/EasySwapMarket/src/service/trading"
)

// toAPIError 将领域错误映射为统一业务错误码
func toAPIError(err error) *errcode.Err {
	switch {
	case errors.Is(err, accesscontrol.ErrSystemPaused):
		return errcode.ErrSystemPaused
	case errors.Is(err, accesscontrol.ErrUnauthorizedAccount):
		return errcode.ErrUnauthorized

	case errors.Is(err, trading.ErrNotForSale),
		errors.Is(err, accesscontrol.ErrOperationNotFound),
		errors.Is(err, auction.ErrAuctionNotFound):
		return errcode.NewErr(errcode.CodeNotFound, err.Error())

	case errors.Is(err, trading.ErrAlreadyListed),
		errors.Is(err, lockregistry.ErrAssetHeld),
		errors.Is(err, accesscontrol.ErrOperationNotReady),
		errors.Is(err, accesscontrol.ErrCannotRemoveLastMasterAdmin),
		errors.Is(err, auction.ErrAuctionClosed),
		errors.Is(err, auction.ErrAuctionNotDue),
		errors.Is(err, auction.ErrAlreadyCommitted),
		errors.Is(err, auction.ErrCannotCancelWithBids),
		errors.Is(err, auction.ErrNotRevealPhase):
		return errcode.NewErr(errcode.CodeConflict, err.Error())

	case errors.Is(err, trading.ErrInsufficientPayment),
		errors.Is(err, trading.ErrInsufficientBalance),
		errors.Is(err, auction.ErrBidTooLow):
		return errcode.NewErr(errcode.CodeInsufficient, err.Error())

	case errors.Is(err, trading.ErrInvalidSalePrice),
		errors.Is(err, trading.ErrInvalidAddress),
		errors.Is(err, trading.ErrNotTheSeller),
		errors.Is(err, trading.ErrNotTheOwner),
		errors.Is(err, trading.ErrCannotBuyOwnAsset),
		errors.Is(err, trading.ErrTradingFeeTooHigh),
		errors.Is(err, trading.ErrContractNotAuthorized),
		errors.Is(err, accesscontrol.ErrInvalidRole),
		errors.Is(err, accesscontrol.ErrInvalidAddress),
		errors.Is(err, auction.ErrInvalidPrice),
		errors.Is(err, auction.ErrInvalidDuration),
		errors.Is(err, auction.ErrNotTheOwner),
		errors.Is(err, auction.ErrNotTheSeller),
		errors.Is(err, auction.ErrSellerCannotBid),
		errors.Is(err, auction.ErrWrongAuctionType),
		errors.Is(err, auction.ErrNoCommitment),
		errors.Is(err, auction.ErrInvalidReveal):
		return errcode.NewErr(errcode.CodeInvalidParams, err.Error())
	}
	return errcode.NewCustomErr(err.Error())
}

// queryInt 读取整型查询参数, 缺省或非法时返回默认值
func queryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// requireAddresses 校验请求中的以太坊地址字段
// 任一地址非法时直接写出参数错误响应并返回 false
func requireAddresses(c *gin.Context, addrs ...string) bool {
	for _, addr := range addrs {
		if !utils.IsValidAddress(addr) {
			xhttp.Error(c, errcode.NewErr(errcode.CodeInvalidParams, "invalid address"))
			return false
		}
	}
	return true
}

// parseAmount 解析十进制金额参数
func parseAmount(raw string) (decimal.Decimal, *errcode.Err) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errcode.NewErr(errcode.CodeInvalidParams, "invalid decimal amount")
	}
	return amount, nil
}
