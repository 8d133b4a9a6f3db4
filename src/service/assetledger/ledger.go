package assetledger

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ProjectsTask/EasySwapMarket/src/model"
	"github.com/ProjectsTask/EasySwapMarket/src/service/comm"
)

var (
	ErrAssetNotFound = errors.New("asset ledger: asset not found")
	ErrNotOwner      = errors.New("asset ledger: from account is not the owner")
)

// DBLedger 数据库实现的资产账本
// 所有权以 ms_asset 表为准, 实现 comm.AssetLedger 窄接口
type DBLedger struct {
	ctx     context.Context
	db      *gorm.DB
	project string
}

// NewDBLedger 创建数据库资产账本
func NewDBLedger(ctx context.Context, db *gorm.DB, project string) *DBLedger {
	return &DBLedger{ctx: ctx, db: db, project: project}
}

// Register 登记资产所有权 (铸造/导入时调用)
func (l *DBLedger) Register(asset comm.AssetRef, owner string) error {
	record := model.Asset{
		ContractAddr: strings.ToLower(asset.ContractAddr),
		TokenId:      asset.TokenID,
		Owner:        strings.ToLower(owner),
	}
	// 幂等登记: 已存在则更新持有人
	if err := l.db.WithContext(l.ctx).Table(model.AssetTableName(l.project)).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "contract_addr"}, {Name: "token_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"owner", "update_time"}),
		}).Create(&record).Error; err != nil {
		return errors.Wrap(err, "failed on register asset")
	}
	return nil
}

// Transfer 转移资产所有权
func (l *DBLedger) Transfer(asset comm.AssetRef, from string, to string) error {
	result := l.db.WithContext(l.ctx).Table(model.AssetTableName(l.project)).
		Where("contract_addr = ? and token_id = ? and owner = ?",
			strings.ToLower(asset.ContractAddr), asset.TokenID, strings.ToLower(from)).
		Update("owner", strings.ToLower(to))
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed on transfer asset")
	}
	// 条件更新未命中说明 from 不是当前持有人
	if result.RowsAffected == 0 {
		return ErrNotOwner
	}
	return nil
}

// IsOwner 判断账户是否为资产持有人
func (l *DBLedger) IsOwner(asset comm.AssetRef, account string) bool {
	var count int64
	if err := l.db.WithContext(l.ctx).Table(model.AssetTableName(l.project)).
		Where("contract_addr = ? and token_id = ? and owner = ?",
			strings.ToLower(asset.ContractAddr), asset.TokenID, strings.ToLower(account)).
		Count(&count).Error; err != nil {
		return false
	}
	return count > 0
}

// Exists 资产是否已登记
func (l *DBLedger) Exists(asset comm.AssetRef) bool {
	var count int64
	if err := l.db.WithContext(l.ctx).Table(model.AssetTableName(l.project)).
		Where("contract_addr = ? and token_id = ?",
			strings.ToLower(asset.ContractAddr), asset.TokenID).
		Count(&count).Error; err != nil {
		return false
	}
	return count > 0
}

// Memory 内存实现的资产账本, 测试与本地联调使用
type Memory struct {
	mu     sync.Mutex
	owners map[string]string // assetKey -> owner
}

// NewMemory 创建内存资产账本
func NewMemory() *Memory {
	return &Memory{owners: make(map[string]string)}
}

// Register 登记资产所有权
func (m *Memory) Register(asset comm.AssetRef, owner string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.owners[asset.Key()] = strings.ToLower(owner)
}

// Transfer 转移资产所有权
func (m *Memory) Transfer(asset comm.AssetRef, from string, to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	owner, ok := m.owners[asset.Key()]
	if !ok {
		return ErrAssetNotFound
	}
	if owner != strings.ToLower(from) {
		return ErrNotOwner
	}
	m.owners[asset.Key()] = strings.ToLower(to)
	return nil
}

// IsOwner 判断账户是否为资产持有人
func (m *Memory) IsOwner(asset comm.AssetRef, account string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.owners[asset.Key()] == strings.ToLower(account)
}

// Exists 资产是否已登记
func (m *Memory) Exists(asset comm.AssetRef) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.owners[asset.Key()]
	return ok
}
