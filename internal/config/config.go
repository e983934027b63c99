package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blues/rewardcenter/internal/logger"
	"github.com/blues/rewardcenter/internal/rewards"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Chain     ChainConfig     `mapstructure:"chain"`
	Rewards   RewardsConfig   `mapstructure:"rewards"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"` // postgres, sqlite
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	Path     string `mapstructure:"path"` // sqlite 文件路径或 DSN
}

// ChainConfig 区块时间来源
type ChainConfig struct {
	RpcUrl  string `mapstructure:"rpc_url"` // RPC节点URL
	Enabled bool   `mapstructure:"enabled"`
}

// RewardsConfig 奖励中心配置
type RewardsConfig struct {
	CenterAddress string `mapstructure:"center_address"` // 用于派生计划地址
	Lifecycle     string `mapstructure:"lifecycle"`      // renewable, terminal
	Clock         string `mapstructure:"clock"`          // system, chain
}

type SchedulerConfig struct {
	Interval        int `mapstructure:"interval"` // 秒
	SnapshotWorkers int `mapstructure:"snapshot_workers"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // 输出目标: stdout, stderr, file
	File   string `mapstructure:"file"`   // 日志文件路径（当output为file时使用）
}

// GetLevel 实现 logger.Options 接口
func (l LogConfig) GetLevel() string {
	return l.Level
}

// GetOutput 实现 logger.Options 接口
func (l LogConfig) GetOutput() string {
	return l.Output
}

// GetFile 实现 logger.Options 接口
func (l LogConfig) GetFile() string {
	return l.File
}

// IntervalDuration 调度间隔
func (s SchedulerConfig) IntervalDuration() time.Duration {
	return time.Duration(s.Interval) * time.Second
}

// LifecycleMode 解析后的生命周期策略
func (r RewardsConfig) LifecycleMode() rewards.Lifecycle {
	l, _ := rewards.ParseLifecycle(strings.ToLower(r.Lifecycle))
	return l
}

// Center 中心地址
func (r RewardsConfig) Center() common.Address {
	return common.HexToAddress(r.CenterAddress)
}

// Validate 校验配置取值
func (c *Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("database.driver: unsupported %q", c.Database.Driver))
	}
	if c.Database.Driver == "sqlite" && c.Database.Path == "" {
		errs = append(errs, errors.New("database.path: required for sqlite"))
	}
	if _, ok := rewards.ParseLifecycle(strings.ToLower(c.Rewards.Lifecycle)); !ok {
		errs = append(errs, fmt.Errorf("rewards.lifecycle: unsupported %q", c.Rewards.Lifecycle))
	}
	if !common.IsHexAddress(c.Rewards.CenterAddress) {
		errs = append(errs, fmt.Errorf("rewards.center_address: invalid address %q", c.Rewards.CenterAddress))
	}
	switch c.Rewards.Clock {
	case "system":
	case "chain":
		if !c.Chain.Enabled || c.Chain.RpcUrl == "" {
			errs = append(errs, errors.New("rewards.clock: chain clock requires chain.enabled and chain.rpc_url"))
		}
	default:
		errs = append(errs, fmt.Errorf("rewards.clock: unsupported %q", c.Rewards.Clock))
	}
	if c.Scheduler.Interval <= 0 {
		errs = append(errs, errors.New("scheduler.interval: must be positive"))
	}
	if c.Scheduler.SnapshotWorkers <= 0 {
		errs = append(errs, errors.New("scheduler.snapshot_workers: must be positive"))
	}
	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "rewardcenter")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "rewardcenter.db")
	v.SetDefault("chain.rpc_url", "")
	v.SetDefault("chain.enabled", false)
	v.SetDefault("rewards.center_address", "0x00000000000000000000000000000000000000c0")
	v.SetDefault("rewards.lifecycle", "renewable")
	v.SetDefault("rewards.clock", "system")
	v.SetDefault("scheduler.interval", 60)
	v.SetDefault("scheduler.snapshot_workers", 8)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.file", "logs/app.log")
}

// LoadFrom 从指定 viper 实例读取配置，便于测试
func LoadFrom(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix("REWARDCENTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		logger.Warn("Could not find config file, using defaults: %v", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("配置校验失败: %w", err)
	}
	return &cfg, nil
}

func Load() *Config {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/rewardcenter")

	cfg, err := LoadFrom(v)
	if err != nil {
		logger.Fatal("Unable to load config: %v", err)
	}
	return cfg
}
