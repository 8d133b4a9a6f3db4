package config

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/ProjectsTask/EasySwapMarket/src/common/utils"
	"github.com/ProjectsTask/EasySwapMarket/src/pkg/gdb"
	"github.com/ProjectsTask/EasySwapMarket/src/pkg/xzap"
)

// Config 应用全局配置
type Config struct {
	Api     *ApiConf      `toml:"api" mapstructure:"api" json:"api"`             // HTTP 服务配置
	Monitor *Monitor      `toml:"monitor" mapstructure:"monitor" json:"monitor"` // 监控相关配置
	Log     *xzap.LogConf `toml:"log" mapstructure:"log" json:"log"`             // 日志配置
	Kv      *KvConf       `toml:"kv" mapstructure:"kv" json:"kv"`                // KV存储配置 (Redis)
	DB      *gdb.Config   `toml:"db" mapstructure:"db" json:"db"`                // 数据库配置 (MySQL)
	Market  *MarketCfg    `toml:"market" mapstructure:"market" json:"market"`    // 市场业务配置
	Project *ProjectCfg   `toml:"project" mapstructure:"project" json:"project"` // 项目名称配置
}

// ApiConf HTTP 服务配置
type ApiConf struct {
	Port string `toml:"port" mapstructure:"port" json:"port"` // 监听地址, 如 :9000
}

// Monitor 监控配置
type Monitor struct {
	PprofEnable bool  `toml:"pprof_enable" mapstructure:"pprof_enable" json:"pprof_enable"` // 是否开启 Pprof
	PprofPort   int64 `toml:"pprof_port" mapstructure:"pprof_port" json:"pprof_port"`       // Pprof 监听端口
}

// MarketCfg 市场业务配置
type MarketCfg struct {
	TradingFeeBps        int64    `toml:"trading_fee_bps" mapstructure:"trading_fee_bps" json:"trading_fee_bps"`                         // 交易费率 (bps)
	MarketplaceFeeBps    int64    `toml:"marketplace_fee_bps" mapstructure:"marketplace_fee_bps" json:"marketplace_fee_bps"`             // 市场费率 (bps)
	MinimumTradingFee    string   `toml:"minimum_trading_fee" mapstructure:"minimum_trading_fee" json:"minimum_trading_fee"`             // 最低交易费 (十进制字符串)
	Treasury             string   `toml:"treasury" mapstructure:"treasury" json:"treasury" validate:"eth_addr"`                          // 金库地址
	InitialAdmin         string   `toml:"initial_admin" mapstructure:"initial_admin" json:"initial_admin" validate:"eth_addr"`           // 初始主管理员地址
	TimeLockSeconds      int64    `toml:"time_lock_seconds" mapstructure:"time_lock_seconds" json:"time_lock_seconds"`                   // 时间锁窗口 (秒)
	RevealWindowSeconds  int64    `toml:"reveal_window_seconds" mapstructure:"reveal_window_seconds" json:"reveal_window_seconds"`       // 密封拍卖揭示窗口 (秒)
	SweepIntervalSeconds int64    `toml:"sweep_interval_seconds" mapstructure:"sweep_interval_seconds" json:"sweep_interval_seconds"`    // 拍卖结算巡检周期 (秒)
	AuthorizedContracts  []string `toml:"authorized_contracts" mapstructure:"authorized_contracts" json:"authorized_contracts" validate:"omitempty,dive,eth_addr"` // 启动时预授权的资产合约
}

// MinimumFee 解析最低交易费, 非法或缺省时为零
func (m *MarketCfg) MinimumFee() decimal.Decimal {
	fee, err := decimal.NewFromString(m.MinimumTradingFee)
	if err != nil {
		return decimal.Zero
	}
	return fee
}

// TimeLock 时间锁窗口时长
func (m *MarketCfg) TimeLock() time.Duration {
	return time.Duration(m.TimeLockSeconds) * time.Second
}

// RevealWindow 密封拍卖揭示窗口时长
func (m *MarketCfg) RevealWindow() time.Duration {
	return time.Duration(m.RevealWindowSeconds) * time.Second
}

// SweepInterval 拍卖结算巡检周期, 缺省 5 秒
func (m *MarketCfg) SweepInterval() time.Duration {
	if m.SweepIntervalSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(m.SweepIntervalSeconds) * time.Second
}

// ProjectCfg 项目配置, Name 决定分表后缀
type ProjectCfg struct {
	Name string `toml:"name" mapstructure:"name" json:"name"`
}

// KvConf Key-Value 存储配置
type KvConf struct {
	Redis []*Redis `toml:"redis" mapstructure:"redis" json:"redis"`
}

// Redis 连接配置
type Redis struct {
	Host string `toml:"host" mapstructure:"host" json:"host"` // 主机地址
	Type string `toml:"type" mapstructure:"type" json:"type"` // 类型 (node, cluster)
	Pass string `toml:"pass" mapstructure:"pass" json:"pass"` // 密码
}

// UnmarshalConfig 加载并解析指定路径的配置文件
// 环境变量前缀 ESM, 如 ESM_DB_HOST 覆盖 db.host
func UnmarshalConfig(configFilePath string) (*Config, error) {
	viper.SetConfigFile(configFilePath)
	viper.SetConfigType("toml")
	viper.AutomaticEnv()
	viper.SetEnvPrefix("ESM")
	replacer := strings.NewReplacer(".", "_")
	viper.SetEnvKeyReplacer(replacer)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var c Config
	if err := viper.Unmarshal(&c); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

// UnmarshalCmdConfig 解析已由命令行入口设置好路径的配置文件
func UnmarshalCmdConfig() (*Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var c Config
	if err := viper.Unmarshal(&c); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

// validate 启动前校验市场配置中的地址字段, 非法地址直接拒绝启动
func (c *Config) validate() error {
	if c.Market == nil {
		return nil
	}
	return utils.Validate(c.Market)
}
