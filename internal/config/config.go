// Package config loads the gateway configuration file with Viper. It
// defines the full schema and supplies defaults for everything, so a
// missing file still yields a runnable gateway.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"wsgate/internal/logging"
)

type Config struct {
	ListenAddr        string `mapstructure:"listen_addr"`
	RequestTimeoutSec int    `mapstructure:"request_timeout_sec"`
	StatsIntervalSec  int    `mapstructure:"stats_interval_sec"`

	Session   SessionConfig   `mapstructure:"session"`
	Limit     LimitConfig     `mapstructure:"limit"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Transport TransportConfig `mapstructure:"transport"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Events    EventsConfig    `mapstructure:"events"`
	Log       logging.Config  `mapstructure:"log"`
}

type SessionConfig struct {
	IdleTimeoutSec   int `mapstructure:"idle_timeout_sec"`
	OfflineLingerSec int `mapstructure:"offline_linger_sec"`
	SweepIntervalSec int `mapstructure:"sweep_interval_sec"`
}

type LimitConfig struct {
	// UpgradePerWindow caps upgrade attempts per client and window.
	// Zero disables the limit.
	UpgradePerWindow int `mapstructure:"upgrade_per_window"`
	WindowSec        int `mapstructure:"window_sec"`
}

type AuthConfig struct {
	// Secret signs level tokens. Empty runs the gateway without a
	// token deriver; every caller gets the default level.
	Secret       string `mapstructure:"secret"`
	DefaultLevel int    `mapstructure:"default_level"`
}

type TransportConfig struct {
	HandshakeTimeoutSec int   `mapstructure:"handshake_timeout_sec"`
	ReadLimitBytes      int64 `mapstructure:"read_limit_bytes"`
	PongWaitSec         int   `mapstructure:"pong_wait_sec"`
	PingIntervalSec     int   `mapstructure:"ping_interval_sec"`
}

type RedisConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Addr         string `mapstructure:"addr"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
	TTLSec       int    `mapstructure:"ttl_sec"`
}

type EventsConfig struct {
	// URL of the broker. Empty publishes lifecycle events to the log
	// only.
	URL           string `mapstructure:"url"`
	Name          string `mapstructure:"name"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

// Load reads the configuration at path. An empty path searches the
// usual locations and falls back to defaults when nothing is found;
// an explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("gateway")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/wsgate")

		var notFound viper.ConfigFileNotFoundError
		if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("request_timeout_sec", 10)
	v.SetDefault("stats_interval_sec", 60)

	v.SetDefault("session.idle_timeout_sec", 30)
	v.SetDefault("session.offline_linger_sec", 60)
	v.SetDefault("session.sweep_interval_sec", 60)

	v.SetDefault("limit.upgrade_per_window", 0)
	v.SetDefault("limit.window_sec", 60)

	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.default_level", 0)

	v.SetDefault("transport.handshake_timeout_sec", 10)
	v.SetDefault("transport.read_limit_bytes", 32*1024)
	v.SetDefault("transport.pong_wait_sec", 30)
	v.SetDefault("transport.ping_interval_sec", 10)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.pool_size", 200)
	v.SetDefault("redis.min_idle_conns", 20)
	v.SetDefault("redis.ttl_sec", 300)

	v.SetDefault("events.url", "")
	v.SetDefault("events.name", "wsgate")
	v.SetDefault("events.subject_prefix", "gateway.session")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.to_stdout", true)
}
