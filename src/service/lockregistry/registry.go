package lockregistry

import (
	"sync"

	"github.com/pkg/errors"
)

// 持有方标识
// 同一资产同一时刻只能被一个销售通道占用, 保证挂单与拍卖互斥
const (
	HolderListing = "listing" // 直售挂单
	HolderAuction = "auction" // 拍卖
)

// ErrAssetHeld 资产已被其他销售通道占用
var ErrAssetHeld = errors.New("asset already held by another sale")

// hold 一次销售占用
type hold struct {
	holder        string // 占用方 (listing / auction)
	customization bool   // 占用期间是否锁定资产的自定义属性
}

// Registry 资产锁注册表
// 交易管理器与拍卖引擎共用同一个实例, 自定义锁状态只存在一份
type Registry struct {
	mu          sync.Mutex
	holds       map[string]hold // assetKey -> 当前销售占用
	adminLocked map[string]bool // assetKey -> 管理员独立锁 (争议冻结等场景)
}

// New 创建空的锁注册表
func New() *Registry {
	return &Registry{
		holds:       make(map[string]hold),
		adminLocked: make(map[string]bool),
	}
}

// Acquire 为一次销售占用资产
// lockCustomization 为 true 时同时锁定资产的自定义属性
// 已被其他销售占用时返回 ErrAssetHeld
func (r *Registry) Acquire(assetKey string, holder string, lockCustomization bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.holds[assetKey]; ok {
		return ErrAssetHeld
	}
	r.holds[assetKey] = hold{holder: holder, customization: lockCustomization}
	return nil
}

// Release 释放销售占用
// 只有当前持有方可以释放; 释放后自定义锁随之清除 (管理员锁不受影响)
func (r *Registry) Release(assetKey string, holder string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if h, ok := r.holds[assetKey]; ok && h.holder == holder {
		delete(r.holds, assetKey)
	}
}

// HolderOf 返回当前占用方, 未被占用时返回空串
func (r *Registry) HolderOf(assetKey string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.holds[assetKey].holder
}

// AdminLock 管理员锁定资产自定义属性 (独立于销售占用)
func (r *Registry) AdminLock(assetKey string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.adminLocked[assetKey] = true
}

// AdminUnlock 管理员解锁
func (r *Registry) AdminUnlock(assetKey string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.adminLocked, assetKey)
}

// IsCustomizationLocked 资产自定义属性是否被锁定
// 销售占用锁与管理员锁任一生效即视为锁定
func (r *Registry) IsCustomizationLocked(assetKey string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.adminLocked[assetKey] {
		return true
	}
	h, ok := r.holds[assetKey]
	return ok && h.customization
}
