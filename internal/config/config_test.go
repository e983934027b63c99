package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/blues/rewardcenter/internal/rewards"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(t.TempDir())

	cfg, err := LoadFrom(v)
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "system", cfg.Rewards.Clock)
	assert.Equal(t, rewards.LifecycleRenewable, cfg.Rewards.LifecycleMode())
	assert.Equal(t, time.Minute, cfg.Scheduler.IntervalDuration())
	assert.Equal(t, 8, cfg.Scheduler.SnapshotWorkers)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: "9090"
database:
  driver: sqlite
  path: /tmp/rc.db
rewards:
  center_address: "0x00000000000000000000000000000000000000aa"
  lifecycle: terminal
scheduler:
  interval: 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("REWARDCENTER_LOG_LEVEL", "debug")

	v := viper.New()
	v.SetConfigFile(path)

	cfg, err := LoadFrom(v)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/rc.db", cfg.Database.Path)
	assert.Equal(t, rewards.LifecycleTerminal, cfg.Rewards.LifecycleMode())
	assert.Equal(t, common.HexToAddress("0xaa"), cfg.Rewards.Center())
	assert.Equal(t, 5*time.Second, cfg.Scheduler.IntervalDuration())
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	valid := Config{
		Database:  DatabaseConfig{Driver: "postgres"},
		Rewards:   RewardsConfig{CenterAddress: "0x00000000000000000000000000000000000000c0", Lifecycle: "renewable", Clock: "system"},
		Scheduler: SchedulerConfig{Interval: 10, SnapshotWorkers: 2},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"driver", func(c *Config) { c.Database.Driver = "mysql" }, "database.driver"},
		{"sqlite path", func(c *Config) { c.Database.Driver = "sqlite" }, "database.path"},
		{"lifecycle", func(c *Config) { c.Rewards.Lifecycle = "forever" }, "rewards.lifecycle"},
		{"center", func(c *Config) { c.Rewards.CenterAddress = "nope" }, "rewards.center_address"},
		{"clock", func(c *Config) { c.Rewards.Clock = "sundial" }, "rewards.clock"},
		{"chain clock", func(c *Config) { c.Rewards.Clock = "chain" }, "chain.enabled"},
		{"interval", func(c *Config) { c.Scheduler.Interval = 0 }, "scheduler.interval"},
		{"workers", func(c *Config) { c.Scheduler.SnapshotWorkers = 0 }, "scheduler.snapshot_workers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
