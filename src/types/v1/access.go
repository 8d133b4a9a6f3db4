package types

// RoleReq 角色授予/撤销/放弃请求
type RoleReq struct {
	Caller  string `json:"caller" binding:"required"`
	Role    string `json:"role" binding:"required"` // 角色名, 如 MASTER_ADMIN
	Account string `json:"account"`                 // renounce 时忽略
}

// RolesResp 账户角色查询结果
type RolesResp struct {
	Account string   `json:"account"`
	Roles   []string `json:"roles"`
}

// PauseReq 全局暂停/恢复请求
type PauseReq struct {
	Caller string `json:"caller" binding:"required"`
}

// ContractReq 合约授权/解除请求
type ContractReq struct {
	Caller       string `json:"caller" binding:"required"`
	ContractAddr string `json:"contract_addr" binding:"required"`
}

// TimeLockReq 时间锁操作请求
type TimeLockReq struct {
	Caller      string `json:"caller" binding:"required"`
	OperationID string `json:"operation_id" binding:"required"`
}

// EmergencyContactReq 紧急联系人增删请求
type EmergencyContactReq struct {
	Caller  string `json:"caller" binding:"required"`
	Account string `json:"account" binding:"required"`
}
