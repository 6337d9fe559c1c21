package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Address         string        `yaml:"address"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Auth struct {
		JWTSecret       string        `yaml:"jwt_secret"`
		AccessTokenTTL  time.Duration `yaml:"access_token_ttl"`
		RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl"`
	} `yaml:"auth"`

	RateLimiting struct {
		Enabled bool `yaml:"enabled"`

		Professional struct {
			Window time.Duration `yaml:"window"`
			Limit  int           `yaml:"limit"`
		} `yaml:"professional"`

		Enterprise struct {
			Window time.Duration `yaml:"window"`
			Limit  int           `yaml:"limit"`
		} `yaml:"enterprise"`
	} `yaml:"rate_limiting"`

	Realtime struct {
		PingInterval      time.Duration `yaml:"ping_interval"`
		PongTimeout       time.Duration `yaml:"pong_timeout"`
		WriteTimeout      time.Duration `yaml:"write_timeout"`
		SendBufferSize    int           `yaml:"send_buffer_size"`
		MaxMessageBytes   int64         `yaml:"max_message_bytes"`
		MessagesPerSecond float64       `yaml:"messages_per_second"`
		MessageBurst      int           `yaml:"message_burst"`
	} `yaml:"realtime"`

	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		PoolSize int    `yaml:"pool_size"`
	} `yaml:"redis"`

	Monitoring struct {
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
	} `yaml:"monitoring"`

	Tracing struct {
		Enabled     bool    `yaml:"enabled"`
		JaegerURL   string  `yaml:"jaeger_url"`
		Environment string  `yaml:"environment"`
		SampleRate  float64 `yaml:"sample_rate"`
	} `yaml:"tracing"`

	Analysis struct {
		Endpoint string        `yaml:"endpoint"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"analysis"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
}

// DefaultConfig returns the configuration used when no file is present.
// Plan quotas are fixed product decisions, not tuning knobs: professional
// gets 100 requests per 15 minutes, enterprise 500.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Server.Address = ":8080"
	cfg.Server.ReadTimeout = 15 * time.Second
	cfg.Server.WriteTimeout = 15 * time.Second
	cfg.Server.ShutdownTimeout = 10 * time.Second

	cfg.Auth.JWTSecret = "dev-secret-change-me"
	cfg.Auth.AccessTokenTTL = 15 * time.Minute
	cfg.Auth.RefreshTokenTTL = 7 * 24 * time.Hour

	cfg.RateLimiting.Enabled = true
	cfg.RateLimiting.Professional.Window = 15 * time.Minute
	cfg.RateLimiting.Professional.Limit = 100
	cfg.RateLimiting.Enterprise.Window = 15 * time.Minute
	cfg.RateLimiting.Enterprise.Limit = 500

	cfg.Realtime.PingInterval = 30 * time.Second
	cfg.Realtime.PongTimeout = 60 * time.Second
	cfg.Realtime.WriteTimeout = 10 * time.Second
	cfg.Realtime.SendBufferSize = 16
	cfg.Realtime.MaxMessageBytes = 4096
	cfg.Realtime.MessagesPerSecond = 10
	cfg.Realtime.MessageBurst = 20

	cfg.Redis.Address = "localhost:6379"
	cfg.Redis.PoolSize = 10

	cfg.Monitoring.PrometheusEnabled = true

	cfg.Tracing.JaegerURL = "http://localhost:14268/api/traces"
	cfg.Tracing.Environment = "development"
	cfg.Tracing.SampleRate = 1.0

	cfg.Analysis.Endpoint = "http://localhost:9090/analyze"
	cfg.Analysis.Timeout = 30 * time.Second

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"

	return cfg
}

// Load reads and validates a YAML config file, filling gaps with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address must not be empty")
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be > 0")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be > 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be > 0")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret must not be empty")
	}
	if c.Auth.AccessTokenTTL <= 0 {
		return fmt.Errorf("auth.access_token_ttl must be > 0")
	}
	if c.Auth.RefreshTokenTTL <= c.Auth.AccessTokenTTL {
		return fmt.Errorf("auth.refresh_token_ttl must exceed auth.access_token_ttl")
	}

	if c.RateLimiting.Enabled {
		if c.RateLimiting.Professional.Window <= 0 || c.RateLimiting.Professional.Limit <= 0 {
			return fmt.Errorf("rate_limiting.professional window and limit must be > 0")
		}
		if c.RateLimiting.Enterprise.Window <= 0 || c.RateLimiting.Enterprise.Limit <= 0 {
			return fmt.Errorf("rate_limiting.enterprise window and limit must be > 0")
		}
	}

	if c.Realtime.PingInterval <= 0 {
		return fmt.Errorf("realtime.ping_interval must be > 0")
	}
	if c.Realtime.PongTimeout <= c.Realtime.PingInterval {
		return fmt.Errorf("realtime.pong_timeout must exceed realtime.ping_interval")
	}
	if c.Realtime.SendBufferSize <= 0 {
		return fmt.Errorf("realtime.send_buffer_size must be > 0")
	}
	if c.Realtime.MaxMessageBytes <= 0 {
		return fmt.Errorf("realtime.max_message_bytes must be > 0")
	}

	if c.Redis.Enabled && c.Redis.Address == "" {
		return fmt.Errorf("redis.address must not be empty when redis is enabled")
	}

	if c.Tracing.Enabled {
		if c.Tracing.JaegerURL == "" {
			return fmt.Errorf("tracing.jaeger_url must not be empty when tracing is enabled")
		}
		if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
			return fmt.Errorf("tracing.sample_rate must be within [0, 1]")
		}
	}

	if c.Analysis.Endpoint == "" {
		return fmt.Errorf("analysis.endpoint must not be empty")
	}
	if c.Analysis.Timeout <= 0 {
		return fmt.Errorf("analysis.timeout must be > 0")
	}

	return nil
}
