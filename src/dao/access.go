package dao

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm/clause"

	"github.com/ProjectsTask/EasySwapMarket/src/model"
)

const cacheRolesKeyFmt = "cache:esm:roles:%s:%s" // project, account

// SaveRoleGrant 写穿透保存账户角色位集, 实现 accesscontrol.Store
// roles 为 0 表示该账户已无任何角色, 仍保留记录便于审计
func (d *Dao) SaveRoleGrant(ctx context.Context, account string, roles uint32) error {
	record := model.RoleGrant{
		Account: strings.ToLower(account),
		Roles:   roles,
	}
	if err := d.DB.WithContext(ctx).Table(model.RoleGrantTableName(d.project)).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "account"}},
			DoUpdates: clause.AssignmentColumns([]string{"roles", "update_time"}),
		}).Create(&record).Error; err != nil {
		return errors.Wrap(err, "failed on save role grant")
	}

	_ = d.KvStore.WriteJson(fmt.Sprintf(cacheRolesKeyFmt, d.project, record.Account), roles, cacheExpireRoles)
	return nil
}

// GetRoleGrant 读取账户角色位集, 缓存优先
func (d *Dao) GetRoleGrant(ctx context.Context, account string) (uint32, error) {
	account = strings.ToLower(account)

	var cached uint32
	ok, err := d.KvStore.ReadJson(fmt.Sprintf(cacheRolesKeyFmt, d.project, account), &cached)
	if err == nil && ok {
		return cached, nil
	}

	var record model.RoleGrant
	result := d.DB.WithContext(ctx).Table(model.RoleGrantTableName(d.project)).
		Where("account = ?", account).
		Limit(1).Find(&record)
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed on query role grant")
	}

	_ = d.KvStore.WriteJson(fmt.Sprintf(cacheRolesKeyFmt, d.project, account), record.Roles, cacheExpireRoles)
	return record.Roles, nil
}

// LoadRoleGrants 启动时加载全部角色授权, 用于恢复访问控制注册表
func (d *Dao) LoadRoleGrants(ctx context.Context) ([]model.RoleGrant, error) {
	var grants []model.RoleGrant
	if err := d.DB.WithContext(ctx).Table(model.RoleGrantTableName(d.project)).
		Where("roles > 0").
		Find(&grants).Error; err != nil {
		return nil, errors.Wrap(err, "failed on load role grants")
	}
	return grants, nil
}
