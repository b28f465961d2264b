package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Environment string `toml:"environment"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// storage
	RedisHost      string `toml:"redis_host"`
	RedisPort      string `toml:"redis_port"`
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`
	PostgresUser   string `toml:"postgres_user"`

	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	LoginRateLimitAllowedPerMin int      `toml:"login_rate_limit_allowed_per_min"`
	ExerciseLookupCacheMB       int      `toml:"exercise_lookup_cache_mb"`
	ExerciseLookupTTLSeconds    int      `toml:"exercise_lookup_ttl_seconds"`
	AllowedOrigins              []string `toml:"allowed_origins"`
}

type Toml struct {
	Development *Config `toml:"development"`
	DockerDev   *Config `toml:"dockerdev"`
	Production  *Config `toml:"production"`
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "ddev", "dockerdev":
		cfg = t.DockerDev
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("env [%s] not present in config", env)
	}
	cfg.setDefaults()
	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.LoginRateLimitAllowedPerMin <= 0 {
		c.LoginRateLimitAllowedPerMin = 15
	}
	if c.ExerciseLookupCacheMB <= 0 {
		c.ExerciseLookupCacheMB = 16
	}
	if c.ExerciseLookupTTLSeconds <= 0 {
		c.ExerciseLookupTTLSeconds = 600
	}
	if c.PostgresUser == "" {
		c.PostgresUser = "postgres"
	}
}

// Load reads the TOML file at path and returns the config section for env.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}
	return t.Get(env)
}
