package xkv

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/zeromicro/go-zero/core/stores/kv"
)

// Store 键值存储封装
// 在 go-zero kv.Store 的基础上补充 JSON 读写辅助方法, 用于缓存结构化数据
type Store struct {
	kv.Store
}

// NewStore 创建 Store 实例
func NewStore(c kv.KvConf) *Store {
	return &Store{
		Store: kv.NewStore(c),
	}
}

// ReadJson 读取缓存中的 JSON 数据并反序列化到 v
// 返回 (是否命中, 错误)
func (s *Store) ReadJson(key string, v interface{}) (bool, error) {
	raw, err := s.Get(key)
	if err != nil {
		return false, errors.Wrap(err, "failed on get cache value")
	}
	if raw == "" {
		// 缓存未命中
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, errors.Wrap(err, "failed on unmarshal cache value")
	}
	return true, nil
}

// WriteJson 将 v 序列化为 JSON 并写入缓存
// expireSeconds <= 0 时写入不过期的键
func (s *Store) WriteJson(key string, v interface{}, expireSeconds int) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "failed on marshal cache value")
	}
	if expireSeconds > 0 {
		return s.Setex(key, string(raw), expireSeconds)
	}
	return s.Set(key, string(raw))
}
