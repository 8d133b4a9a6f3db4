package accesscontrol

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ProjectsTask/EasySwapMarket/src/pkg/xzap"
	"github.com/ProjectsTask/EasySwapMarket/src/service/comm"
)

var (
	ErrUnauthorizedAccount         = errors.New("access control: unauthorized account")
	ErrSystemPaused                = errors.New("access control: system paused")
	ErrCannotRemoveLastMasterAdmin = errors.New("access control: cannot remove last master admin")
	ErrInvalidRole                 = errors.New("access control: invalid role")
	ErrInvalidAddress              = errors.New("access control: invalid address")
	ErrOperationNotFound           = errors.New("access control: operation not scheduled")
	ErrOperationNotReady           = errors.New("access control: time lock not elapsed")
)

// Store 角色持久化接口, 由 Dao 实现 (写穿透)
type Store interface {
	SaveRoleGrant(ctx context.Context, account string, roles uint32) error
}

// Registry 访问控制注册表
// 交易管理器与拍卖引擎的所有变更操作都要先经过这里的授权检查
// 所有变更在调用时重新校验发起方权限, 不做缓存; 校验失败不产生任何副作用
type Registry struct {
	mu sync.Mutex

	roles            map[string]Role // account -> 角色位集
	roleAdmins       map[Role]Role   // role -> 可管理该角色的角色 (默认仅 MASTER_ADMIN)
	masterAdminCount int             // 不变式: 任何时刻 >= 1

	authorizedContracts map[string]bool // 允许进入交易/拍卖入口的合约地址
	emergencyContacts   map[string]bool // 紧急联系人

	paused           bool
	timeLockDuration time.Duration
	pendingOps       map[string]time.Time // operationId -> 调度时间

	clock  comm.Clock
	events comm.EventSink
	store  Store
}

// New 创建注册表并授予初始 MASTER_ADMIN
func New(clock comm.Clock, events comm.EventSink, timeLockDuration time.Duration, initialAdmin string) *Registry {
	r := &Registry{
		roles:               make(map[string]Role),
		roleAdmins:          make(map[Role]Role),
		authorizedContracts: make(map[string]bool),
		emergencyContacts:   make(map[string]bool),
		timeLockDuration:    timeLockDuration,
		pendingOps:          make(map[string]time.Time),
		clock:               clock,
		events:              events,
	}
	if events == nil {
		r.events = comm.NopSink{}
	}
	// 初始管理员, 保证 masterAdminCount >= 1 的不变式从创建起成立
	r.roles[normalize(initialAdmin)] = RoleMasterAdmin
	r.masterAdminCount = 1
	return r
}

// SetStore 注入持久化实现 (服务启动时由 svc 注入)
func (r *Registry) SetStore(s Store) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store = s
}

// LoadGrant 启动时恢复持久化的角色授权
// 只做状态回填, 不走权限校验, 不写穿透, 不发事件
func (r *Registry) LoadGrant(account string, roles uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := normalize(account)
	old := r.roles[key]
	r.roles[key] = Role(roles)

	// 维护主管理员计数不变式
	if old&RoleMasterAdmin == 0 && Role(roles)&RoleMasterAdmin != 0 {
		r.masterAdminCount++
	}
	if old&RoleMasterAdmin != 0 && Role(roles)&RoleMasterAdmin == 0 && r.masterAdminCount > 1 {
		r.masterAdminCount--
	}
}

// normalize 地址统一小写, 作为内部 map 键
func normalize(addr string) string {
	return strings.ToLower(addr)
}

// GrantRole 授予角色
// 发起方须持有 MASTER_ADMIN, 或持有被明确允许管理该角色的角色
func (r *Registry) GrantRole(caller string, role Role, account string) error {
	if !role.Valid() {
		return ErrInvalidRole
	}
	if account == "" {
		return ErrInvalidAddress
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.canManageRole(caller, role) {
		return ErrUnauthorizedAccount
	}

	key := normalize(account)
	if r.roles[key]&role != 0 {
		// 已持有, 幂等返回
		return nil
	}
	r.roles[key] |= role
	if role == RoleMasterAdmin {
		r.masterAdminCount++
	}

	r.persistRoles(key)
	r.events.Publish(comm.MarketEvent{
		Type:      comm.EventRoleGranted,
		Account:   key,
		Detail:    role.String(),
		EventTime: r.clock.Now(),
	})
	return nil
}

// RevokeRole 撤销角色
// 撤销最后一个 MASTER_ADMIN 会被拒绝
func (r *Registry) RevokeRole(caller string, role Role, account string) error {
	if !role.Valid() {
		return ErrInvalidRole
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.canManageRole(caller, role) {
		return ErrUnauthorizedAccount
	}

	key := normalize(account)
	if r.roles[key]&role == 0 {
		// 未持有, 无事发生
		return nil
	}
	// 不变式: 必须始终存在至少一个 MASTER_ADMIN
	if role == RoleMasterAdmin && r.masterAdminCount <= 1 {
		return ErrCannotRemoveLastMasterAdmin
	}

	r.roles[key] &^= role
	if role == RoleMasterAdmin {
		r.masterAdminCount--
	}

	r.persistRoles(key)
	r.events.Publish(comm.MarketEvent{
		Type:      comm.EventRoleRevoked,
		Account:   key,
		Detail:    role.String(),
		EventTime: r.clock.Now(),
	})
	return nil
}

// RenounceRole 放弃自己持有的角色 (最后一个 MASTER_ADMIN 不允许放弃)
func (r *Registry) RenounceRole(caller string, role Role) error {
	if !role.Valid() {
		return ErrInvalidRole
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := normalize(caller)
	if r.roles[key]&role == 0 {
		return nil
	}
	if role == RoleMasterAdmin && r.masterAdminCount <= 1 {
		return ErrCannotRemoveLastMasterAdmin
	}

	r.roles[key] &^= role
	if role == RoleMasterAdmin {
		r.masterAdminCount--
	}

	r.persistRoles(key)
	r.events.Publish(comm.MarketEvent{
		Type:      comm.EventRoleRevoked,
		Account:   key,
		Detail:    role.String(),
		EventTime: r.clock.Now(),
	})
	return nil
}

// SetRoleAdmin 设置某角色的管理角色 (MASTER_ADMIN 专属)
// 例如允许 MARKETPLACE_MANAGER 管理 TRADER 角色的授予与撤销
func (r *Registry) SetRoleAdmin(caller string, role Role, adminRole Role) error {
	if !role.Valid() || !adminRole.Valid() {
		return ErrInvalidRole
	}
	// MASTER_ADMIN 的管理权不可下放
	if role == RoleMasterAdmin {
		return ErrInvalidRole
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.hasRoleLocked(caller, RoleMasterAdmin) {
		return ErrUnauthorizedAccount
	}
	r.roleAdmins[role] = adminRole
	return nil
}

// canManageRole 判断发起方是否可以管理指定角色
// 调用方需持有 r.mu
func (r *Registry) canManageRole(caller string, role Role) bool {
	if r.hasRoleLocked(caller, RoleMasterAdmin) {
		return true
	}
	// MASTER_ADMIN 只能由 MASTER_ADMIN 管理
	if role == RoleMasterAdmin {
		return false
	}
	admin, ok := r.roleAdmins[role]
	return ok && r.hasRoleLocked(caller, admin)
}

func (r *Registry) hasRoleLocked(account string, role Role) bool {
	return r.roles[normalize(account)]&role != 0
}

// persistRoles 写穿透保存账户角色位集, 失败只记录日志不回滚内存状态
func (r *Registry) persistRoles(account string) {
	if r.store == nil {
		return
	}
	if err := r.store.SaveRoleGrant(context.Background(), account, uint32(r.roles[account])); err != nil {
		xzap.WithContext(context.Background()).Error("failed on save role grant",
			zap.String("account", account), zap.Error(err))
	}
}

// HasRole 只读角色查询
func (r *Registry) HasRole(account string, role Role) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hasRoleLocked(account, role)
}

// CanMint 是否可铸造
func (r *Registry) CanMint(account string) bool {
	return r.HasRole(account, RoleMinter) || r.HasRole(account, RoleMasterAdmin)
}

// CanManageAuctions 是否可管理拍卖
func (r *Registry) CanManageAuctions(account string) bool {
	return r.HasRole(account, RoleAuctionManager) || r.HasRole(account, RoleMasterAdmin)
}

// CanPause 是否可触发全局暂停
func (r *Registry) CanPause(account string) bool {
	return r.HasRole(account, RolePauser) || r.HasRole(account, RoleMasterAdmin)
}

// AuthorizeContract 授权合约进入交易/拍卖入口 (MASTER_ADMIN 专属)
func (r *Registry) AuthorizeContract(caller string, contractAddr string) error {
	if contractAddr == "" {
		return ErrInvalidAddress
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.hasRoleLocked(caller, RoleMasterAdmin) {
		return ErrUnauthorizedAccount
	}
	r.authorizedContracts[normalize(contractAddr)] = true

	r.events.Publish(comm.MarketEvent{
		Type:      comm.EventContractAuthorized,
		Account:   normalize(caller),
		Detail:    normalize(contractAddr),
		EventTime: r.clock.Now(),
	})
	return nil
}

// DeauthorizeContract 取消合约授权 (MASTER_ADMIN 专属)
func (r *Registry) DeauthorizeContract(caller string, contractAddr string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.hasRoleLocked(caller, RoleMasterAdmin) {
		return ErrUnauthorizedAccount
	}
	delete(r.authorizedContracts, normalize(contractAddr))

	r.events.Publish(comm.MarketEvent{
		Type:      comm.EventContractDeauthed,
		Account:   normalize(caller),
		Detail:    normalize(contractAddr),
		EventTime: r.clock.Now(),
	})
	return nil
}

// IsAuthorizedContract 合约是否在授权名单中
func (r *Registry) IsAuthorizedContract(contractAddr string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.authorizedContracts[normalize(contractAddr)]
}

// AddEmergencyContact 添加紧急联系人 (MASTER_ADMIN 专属)
func (r *Registry) AddEmergencyContact(caller string, account string) error {
	if account == "" {
		return ErrInvalidAddress
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.hasRoleLocked(caller, RoleMasterAdmin) {
		return ErrUnauthorizedAccount
	}
	r.emergencyContacts[normalize(account)] = true
	return nil
}

// RemoveEmergencyContact 移除紧急联系人 (MASTER_ADMIN 专属)
func (r *Registry) RemoveEmergencyContact(caller string, account string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.hasRoleLocked(caller, RoleMasterAdmin) {
		return ErrUnauthorizedAccount
	}
	delete(r.emergencyContacts, normalize(account))
	return nil
}

// IsEmergencyContact 是否为紧急联系人
func (r *Registry) IsEmergencyContact(account string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.emergencyContacts[normalize(account)]
}

// PauseGlobally 全局暂停 (PAUSER)
// 暂停后交易管理器与拍卖引擎的所有变更操作统一失败
func (r *Registry) PauseGlobally(caller string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.hasRoleLocked(caller, RolePauser) && !r.hasRoleLocked(caller, RoleMasterAdmin) {
		return ErrUnauthorizedAccount
	}
	r.paused = true

	r.events.Publish(comm.MarketEvent{
		Type:      comm.EventSystemPaused,
		Account:   normalize(caller),
		EventTime: r.clock.Now(),
	})
	return nil
}

// UnpauseGlobally 解除全局暂停 (PAUSER)
func (r *Registry) UnpauseGlobally(caller string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.hasRoleLocked(caller, RolePauser) && !r.hasRoleLocked(caller, RoleMasterAdmin) {
		return ErrUnauthorizedAccount
	}
	r.paused = false

	r.events.Publish(comm.MarketEvent{
		Type:      comm.EventSystemUnpaused,
		Account:   normalize(caller),
		EventTime: r.clock.Now(),
	})
	return nil
}

// IsPaused 系统是否处于全局暂停
func (r *Registry) IsPaused() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.paused
}

// EnsureActive 变更操作统一的暂停检查
func (r *Registry) EnsureActive() error {
	if r.IsPaused() {
		return ErrSystemPaused
	}
	return nil
}

// SetTimeLockDuration 调整时间锁时长 (MASTER_ADMIN 专属)
func (r *Registry) SetTimeLockDuration(caller string, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.hasRoleLocked(caller, RoleMasterAdmin) {
		return ErrUnauthorizedAccount
	}
	r.timeLockDuration = d
	return nil
}

// ScheduleTimeLockOperation 调度一个时间锁操作
// 敏感配置变更 (费率上限、金库地址等) 必须先调度再等待时间锁窗口
func (r *Registry) ScheduleTimeLockOperation(caller string, operationID string) error {
	if operationID == "" {
		return ErrOperationNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.hasRoleLocked(caller, RoleMasterAdmin) {
		return ErrUnauthorizedAccount
	}
	r.pendingOps[operationID] = r.clock.Now()

	r.events.Publish(comm.MarketEvent{
		Type:      comm.EventOperationScheduled,
		Account:   normalize(caller),
		Detail:    operationID,
		EventTime: r.clock.Now(),
	})
	return nil
}

// ExecuteTimeLockOperation 执行已到期的时间锁操作 (一次性, 执行后记录清除)
func (r *Registry) ExecuteTimeLockOperation(caller string, operationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.hasRoleLocked(caller, RoleMasterAdmin) {
		return ErrUnauthorizedAccount
	}
	scheduledAt, ok := r.pendingOps[operationID]
	if !ok {
		return ErrOperationNotFound
	}
	if r.clock.Now().Sub(scheduledAt) < r.timeLockDuration {
		return ErrOperationNotReady
	}
	delete(r.pendingOps, operationID)

	r.events.Publish(comm.MarketEvent{
		Type:      comm.EventOperationExecuted,
		Account:   normalize(caller),
		Detail:    operationID,
		EventTime: r.clock.Now(),
	})
	return nil
}

// CancelTimeLockOperation 取消等待中的时间锁操作
// MASTER_ADMIN 或紧急联系人可取消, 这是时间锁窗口存在的意义
func (r *Registry) CancelTimeLockOperation(caller string, operationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := normalize(caller)
	if !r.hasRoleLocked(caller, RoleMasterAdmin) && !r.emergencyContacts[key] {
		return ErrUnauthorizedAccount
	}
	if _, ok := r.pendingOps[operationID]; !ok {
		return ErrOperationNotFound
	}
	delete(r.pendingOps, operationID)

	r.events.Publish(comm.MarketEvent{
		Type:      comm.EventOperationCancelled,
		Account:   key,
		Detail:    operationID,
		EventTime: r.clock.Now(),
	})
	return nil
}

// PendingOperation 查询时间锁操作的调度时间
// 返回 (调度时间, 是否存在), 用 ok 区分 "从未调度/已执行" 与 "等待中"
func (r *Registry) PendingOperation(operationID string) (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	scheduledAt, ok := r.pendingOps[operationID]
	return scheduledAt, ok
}

// MasterAdminCount 当前 MASTER_ADMIN 数量
func (r *Registry) MasterAdminCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.masterAdminCount
}

// RolesOf 返回账户当前的角色位集
func (r *Registry) RolesOf(account string) Role {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.roles[normalize(account)]
}
