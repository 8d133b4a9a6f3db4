package gdb

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config 数据库连接配置 (MySQL)
type Config struct {
	User         string `toml:"user" mapstructure:"user" json:"user"`                               // 用户名
	Password     string `toml:"password" mapstructure:"password" json:"password"`                   // 密码
	Host         string `toml:"host" mapstructure:"host" json:"host"`                               // 主机地址
	Port         int    `toml:"port" mapstructure:"port" json:"port"`                               // 端口
	Database     string `toml:"database" mapstructure:"database" json:"database"`                   // 数据库名
	MaxIdleConns int    `toml:"max_idle_conns" mapstructure:"max_idle_conns" json:"max_idle_conns"` // 最大空闲连接数
	MaxOpenConns int    `toml:"max_open_conns" mapstructure:"max_open_conns" json:"max_open_conns"` // 最大打开连接数
	LogLevel     string `toml:"log_level" mapstructure:"log_level" json:"log_level"`                // GORM 日志级别 (silent, error, warn, info)
}

// NewDB 根据配置创建 GORM 数据库连接
func NewDB(c *Config) (*gorm.DB, error) {
	// 1. 拼接 DSN
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.Database)

	// 2. 映射 GORM 日志级别
	logLevel := logger.Warn
	switch c.LogLevel {
	case "silent":
		logLevel = logger.Silent
	case "error":
		logLevel = logger.Error
	case "info":
		logLevel = logger.Info
	}

	// 3. 打开连接
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed on open mysql connection")
	}

	// 4. 设置连接池参数
	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed on get sql db")
	}
	sqlDB.SetMaxIdleConns(c.MaxIdleConns)
	sqlDB.SetMaxOpenConns(c.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}
