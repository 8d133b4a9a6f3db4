package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/ProjectsTask/EasySwapMarket/src/common/utils"
	"github.com/ProjectsTask/EasySwapMarket/src/pkg/errcode"
	"github.com/ProjectsTask/EasySwapMarket/src/pkg/xhttp"
	"github.com/ProjectsTask/EasySwapMarket/src/service/accesscontrol"
	"github.com/ProjectsTask/EasySwapMarket/src/service/svc"
	types "github.com/ProjectsTask/EasySwapMarket/src/types/v1"
)

// GrantRoleHandler 授予角色
func GrantRoleHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.RoleReq
		if err := c.ShouldBindJSON(&req); err != nil {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}
		role, ok := accesscontrol.RoleFromName(req.Role)
		if !ok {
			xhttp.Error(c, errcode.NewErr(errcode.CodeInvalidParams, "unknown role"))
			return
		}
		if !requireAddresses(c, req.Caller, req.Account) {
			return
		}
		if err := svcCtx.Access.GrantRole(req.Caller, role, req.Account); err != nil {
			xhttp.Error(c, toAPIError(err))
			return
		}
		xhttp.OkJson(c, nil)
	}
}

// RevokeRoleHandler 撤销角色
func RevokeRoleHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.RoleReq
		if err := c.ShouldBindJSON(&req); err != nil {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}
		role, ok := accesscontrol.RoleFromName(req.Role)
		if !ok {
			xhttp.Error(c, errcode.NewErr(errcode.CodeInvalidParams, "unknown role"))
			return
		}
		if !requireAddresses(c, req.Caller, req.Account) {
			return
		}
		if err := svcCtx.Access.RevokeRole(req.Caller, role, req.Account); err != nil {
			xhttp.Error(c, toAPIError(err))
			return
		}
		xhttp.OkJson(c, nil)
	}
}

// RenounceRoleHandler 主动放弃自身角色
func RenounceRoleHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.RoleReq
		if err := c.ShouldBindJSON(&req); err != nil {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}
		role, ok := accesscontrol.RoleFromName(req.Role)
		if !ok {
			xhttp.Error(c, errcode.NewErr(errcode.CodeInvalidParams, "unknown role"))
			return
		}
		if !requireAddresses(c, req.Caller) {
			return
		}
		if err := svcCtx.Access.RenounceRole(req.Caller, role); err != nil {
			xhttp.Error(c, toAPIError(err))
			return
		}
		xhttp.OkJson(c, nil)
	}
}

// RolesOfHandler 查询账户持有的角色
func RolesOfHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		account := c.Param("account")
		if !requireAddresses(c, account) {
			return
		}
		// 缓存优先读取角色位集 (写穿透保证一致), 未命中或读取失败回退内存注册表
		var roles accesscontrol.Role
		if bits, err := svcCtx.Dao.GetRoleGrant(c.Request.Context(), account); err == nil && bits != 0 {
			roles = accesscontrol.Role(bits)
		} else {
			roles = svcCtx.Access.RolesOf(account)
		}
		xhttp.OkJson(c, types.RolesResp{
			Account: utils.ToChecksumAddress(account),
			Roles:   roles.Names(),
		})
	}
}

// PauseHandler 全局暂停
func PauseHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.PauseReq
		if err := c.ShouldBindJSON(&req); err != nil {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}
		if !requireAddresses(c, req.Caller) {
			return
		}
		if err := svcCtx.Access.PauseGlobally(req.Caller); err != nil {
			xhttp.Error(c, toAPIError(err))
			return
		}
		xhttp.OkJson(c, nil)
	}
}

// UnpauseHandler 解除全局暂停
func UnpauseHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.PauseReq
		if err := c.ShouldBindJSON(&req); err != nil {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}
		if !requireAddresses(c, req.Caller) {
			return
		}
		if err := svcCtx.Access.UnpauseGlobally(req.Caller); err != nil {
			xhttp.Error(c, toAPIError(err))
			return
		}
		xhttp.OkJson(c, nil)
	}
}

// AuthorizeContractHandler 授权资产合约进入市场
func AuthorizeContractHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.ContractReq
		if err := c.ShouldBindJSON(&req); err != nil {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}
		if !requireAddresses(c, req.Caller, req.ContractAddr) {
			return
		}
		if err := svcCtx.Access.AuthorizeContract(req.Caller, req.ContractAddr); err != nil {
			xhttp.Error(c, toAPIError(err))
			return
		}
		xhttp.OkJson(c, nil)
	}
}

// DeauthorizeContractHandler 解除资产合约授权
func DeauthorizeContractHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.ContractReq
		if err := c.ShouldBindJSON(&req); err != nil {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}
		if !requireAddresses(c, req.Caller, req.ContractAddr) {
			return
		}
		if err := svcCtx.Access.DeauthorizeContract(req.Caller, req.ContractAddr); err != nil {
			xhttp.Error(c, toAPIError(err))
			return
		}
		xhttp.OkJson(c, nil)
	}
}

// ScheduleTimeLockHandler 调度时间锁操作
func ScheduleTimeLockHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.TimeLockReq
		if err := c.ShouldBindJSON(&req); err != nil {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}
		if !requireAddresses(c, req.Caller) {
			return
		}
		if err := svcCtx.Access.ScheduleTimeLockOperation(req.Caller, req.OperationID); err != nil {
			xhttp.Error(c, toAPIError(err))
			return
		}
		xhttp.OkJson(c, nil)
	}
}

// ExecuteTimeLockHandler 执行已到期的时间锁操作 (一次性消耗)
func ExecuteTimeLockHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.TimeLockReq
		if err := c.ShouldBindJSON(&req); err != nil {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}
		if !requireAddresses(c, req.Caller) {
			return
		}
		if err := svcCtx.Access.ExecuteTimeLockOperation(req.Caller, req.OperationID); err != nil {
			xhttp.Error(c, toAPIError(err))
			return
		}
		xhttp.OkJson(c, nil)
	}
}

// CancelTimeLockHandler 取消已调度的时间锁操作 (主管理员或紧急联系人)
func CancelTimeLockHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.TimeLockReq
		if err := c.ShouldBindJSON(&req); err != nil {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}
		if !requireAddresses(c, req.Caller) {
			return
		}
		if err := svcCtx.Access.CancelTimeLockOperation(req.Caller, req.OperationID); err != nil {
			xhttp.Error(c, toAPIError(err))
			return
		}
		xhttp.OkJson(c, nil)
	}
}

// AddEmergencyContactHandler 添加紧急联系人
func AddEmergencyContactHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.EmergencyContactReq
		if err := c.ShouldBindJSON(&req); err != nil {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}
		if !requireAddresses(c, req.Caller, req.Account) {
			return
		}
		if err := svcCtx.Access.AddEmergencyContact(req.Caller, req.Account); err != nil {
			xhttp.Error(c, toAPIError(err))
			return
		}
		xhttp.OkJson(c, nil)
	}
}

// RemoveEmergencyContactHandler 移除紧急联系人
func RemoveEmergencyContactHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.EmergencyContactReq
		if err := c.ShouldBindJSON(&req); err != nil {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}
		if !requireAddresses(c, req.Caller, req.Account) {
			return
		}
		if err := svcCtx.Access.RemoveEmergencyContact(req.Caller, req.Account); err != nil {
			xhttp.Error(c, toAPIError(err))
			return
		}
		xhttp.OkJson(c, nil)
	}
}
