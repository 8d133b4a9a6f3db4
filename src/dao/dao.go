package dao

import (
	"context"

	"gorm.io/gorm"

	"github.com/ProjectsTask/EasySwapMarket/src/pkg/xkv"
)

// 缓存过期时间 (秒)
const (
	cacheExpireStats   = 60
	cacheExpireRoles   = 60
	cacheExpireAuction = 30
)

// Dao 数据访问对象
// 封装数据库 (GORM) 与 Redis (KvStore) 操作, 同时承担各服务的写穿透存储
// 所有数据库交互逻辑在此层实现, 避免在 Service 层直接操作 DB
type Dao struct {
	ctx     context.Context
	project string // 项目名, 决定分表后缀

	DB      *gorm.DB   // 关系型数据库连接实例 (MySQL)
	KvStore *xkv.Store // 键值存储实例 (Redis), 用于缓存
}

// New 创建一个新的 Dao 实例
func New(ctx context.Context, db *gorm.DB, kvStore *xkv.Store, project string) *Dao {
	return &Dao{
		ctx:     ctx,
		project: project,
		DB:      db,
		KvStore: kvStore,
	}
}
