package app

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	// RedisAddr enables the report cache, Redis idempotency keys and the job
	// queue. Leave empty to run fully in-process.
	RedisAddr string        `envconfig:"REDIS_ADDR" default:""`
	CacheTTL  time.Duration `envconfig:"CACHE_TTL" default:"5m"`

	SeedDemo bool `envconfig:"SEED_DEMO" default:"false"`

	JobsEnabled       bool   `envconfig:"JOBS_ENABLED" default:"false"`
	JobsConcurrency   int    `envconfig:"JOBS_CONCURRENCY" default:"5"`
	ConsolRefreshCron string `envconfig:"CONSOL_REFRESH_CRON" default:"*/15 * * * *"`

	IdempotencyTTL     time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"24h"`
	RateLimitPerMinute int           `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects combinations the runtime cannot honour.
func (c *Config) Validate() error {
	switch c.LogFormat {
	case "pretty", "json":
	default:
		return fmt.Errorf("config: LOG_FORMAT must be pretty or json, got %q", c.LogFormat)
	}
	if c.JobsEnabled && c.RedisAddr == "" {
		return fmt.Errorf("config: JOBS_ENABLED requires REDIS_ADDR")
	}
	if c.RateLimitPerMinute < 0 {
		return fmt.Errorf("config: RATE_LIMIT_PER_MINUTE cannot be negative")
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
