package xzap

import (
	"context"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConf 日志配置
type LogConf struct {
	Level      string `toml:"level" mapstructure:"level" json:"level"`                   // 日志级别 (debug, info, warn, error)
	Mode       string `toml:"mode" mapstructure:"mode" json:"mode"`                      // 输出模式 (console, file)
	Path       string `toml:"path" mapstructure:"path" json:"path"`                      // 日志文件路径 (file 模式下生效)
	MaxSize    int    `toml:"max_size" mapstructure:"max_size" json:"max_size"`          // 单个日志文件最大体积 (MB)
	MaxBackups int    `toml:"max_backups" mapstructure:"max_backups" json:"max_backups"` // 保留的旧日志文件数量
	MaxAge     int    `toml:"max_age" mapstructure:"max_age" json:"max_age"`             // 日志保留天数
	Compress   bool   `toml:"compress" mapstructure:"compress" json:"compress"`          // 是否压缩旧日志
}

var (
	mu     sync.RWMutex
	logger = zap.NewNop() // 默认空实现，避免未初始化时空指针
)

// SetUp 根据配置初始化全局 Zap Logger
// 返回构造好的 *zap.Logger，同时设置为包级默认 logger
func SetUp(c LogConf) (*zap.Logger, error) {
	// 1. 解析日志级别
	level := zapcore.InfoLevel
	if c.Level != "" {
		if err := level.UnmarshalText([]byte(c.Level)); err != nil {
			return nil, err
		}
	}

	// 2. 构造编码器 (生产环境 JSON 格式, 时间用 ISO8601)
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encCfg)

	// 3. 选择输出目标
	var ws zapcore.WriteSyncer
	switch c.Mode {
	case "file":
		// 使用 lumberjack 做日志轮转
		ws = zapcore.AddSync(&lumberjack.Logger{
			Filename:   c.Path,
			MaxSize:    c.MaxSize,
			MaxBackups: c.MaxBackups,
			MaxAge:     c.MaxAge,
			Compress:   c.Compress,
		})
	default:
		ws = zapcore.AddSync(os.Stdout)
	}

	// 4. 组装 logger
	l := zap.New(zapcore.NewCore(encoder, ws, level), zap.AddCaller())

	mu.Lock()
	logger = l
	mu.Unlock()

	return l, nil
}

// WithContext 返回绑定了上下文的 logger
// 当前实现直接返回全局 logger, 预留 ctx 以便后续注入 trace 信息
func WithContext(ctx context.Context) *zap.Logger {
	_ = ctx

	mu.RLock()
	defer mu.RUnlock()
	return logger
}
