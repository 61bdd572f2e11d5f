package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full service configuration
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Auth   AuthConfig   `mapstructure:"auth"`
	Replay ReplayConfig `mapstructure:"replay"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Events EventsConfig `mapstructure:"events"`
	Log    LogConfig    `mapstructure:"log"`
}

type ServerConfig struct {
	Port         int      `mapstructure:"port"`
	CORSOrigins  []string `mapstructure:"cors_origins"`
	RateLimitRPS int      `mapstructure:"rate_limit_rps"`
}

type AuthConfig struct {
	ChallengeTTL time.Duration  `mapstructure:"challenge_ttl"`
	Ethereum     EthereumConfig `mapstructure:"ethereum"`
}

type EthereumConfig struct {
	// LenientRecovery accepts a personal_sign signature that recovers to an
	// address other than the claimed signer. Debugging aid only.
	LenientRecovery bool `mapstructure:"lenient_recovery"`
}

type ReplayConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Backend string `mapstructure:"backend"` // memory or redis
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type EventsConfig struct {
	Backend string `mapstructure:"backend"` // none, gochannel or redis
	Topic   string `mapstructure:"topic"`
}

type LogConfig struct {
	Development bool `mapstructure:"development"`
}

// Load reads configuration from cfgFile, or sigil.yaml in ./configs or the
// working directory when cfgFile is empty. SIGIL_* environment variables
// override file values, e.g. SIGIL_SERVER_PORT.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("sigil")
		v.SetConfigType("yaml")
		v.AddConfigPath("configs")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix("sigil")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", 9000)
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.rate_limit_rps", 20)
	v.SetDefault("auth.challenge_ttl", "5m")
	v.SetDefault("auth.ethereum.lenient_recovery", false)
	v.SetDefault("replay.enabled", false)
	v.SetDefault("replay.backend", "memory")
	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("events.backend", "gochannel")
	v.SetDefault("events.topic", "auth.verified")
	v.SetDefault("log.development", false)

	if err := v.ReadInConfig(); err != nil {
		var cfgNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &cfgNotFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects settings the service cannot run with
func (c *Config) Validate() error {
	if c.Auth.ChallengeTTL <= 0 {
		return fmt.Errorf("auth.challenge_ttl must be positive, got %s", c.Auth.ChallengeTTL)
	}

	switch c.Replay.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown replay.backend %q", c.Replay.Backend)
	}

	switch c.Events.Backend {
	case "none", "gochannel", "redis":
	default:
		return fmt.Errorf("unknown events.backend %q", c.Events.Backend)
	}

	return nil
}

// NeedsRedis reports whether any enabled component talks to Redis
func (c *Config) NeedsRedis() bool {
	return (c.Replay.Enabled && c.Replay.Backend == "redis") || c.Events.Backend == "redis"
}
