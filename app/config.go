package app

import (
	"fmt"

	"github.com/kbukum/authgate/auth"
	"github.com/kbukum/authgate/config"
	"github.com/kbukum/authgate/database"
	"github.com/kbukum/authgate/observability"
	"github.com/kbukum/authgate/redis"
	"github.com/kbukum/authgate/server"
)

// ServiceName is the default service name and the config/env lookup key.
const ServiceName = "authgate"

// Rate limit backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config is the full service configuration.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Database      database.Config      `yaml:"database" mapstructure:"database"`
	Redis         redis.Config         `yaml:"redis" mapstructure:"redis"`
	Auth          auth.Config          `yaml:"auth" mapstructure:"auth"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
	RateLimit     RateLimitConfig      `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// RateLimitConfig throttles register and login per client IP.
type RateLimitConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Requests int    `yaml:"requests" mapstructure:"requests"`
	Window   string `yaml:"window" mapstructure:"window"`
	// Backend is "memory" (per instance) or "redis" (shared).
	Backend string `yaml:"backend" mapstructure:"backend"`
}

// ApplyDefaults fills every section.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = ServiceName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Database.ApplyDefaults()
	c.Redis.ApplyDefaults()
	c.Auth.ApplyDefaults()
	c.Observability.ApplyDefaults()

	if c.RateLimit.Requests <= 0 {
		c.RateLimit.Requests = 10
	}
	if c.RateLimit.Window == "" {
		c.RateLimit.Window = "1m"
	}
	if c.RateLimit.Backend == "" {
		c.RateLimit.Backend = BackendMemory
	}
}

// Validate checks every section. A missing signing secret fails here.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Redis.Validate(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("observability: %w", err)
	}
	return c.RateLimit.validate(c.Redis.Enabled)
}

func (r RateLimitConfig) validate(redisEnabled bool) error {
	if !r.Enabled {
		return nil
	}
	if w, err := config.ParseDuration(r.Window); err != nil || w <= 0 {
		return fmt.Errorf("rate_limit.window must be a positive duration (got: %s)", r.Window)
	}
	switch r.Backend {
	case BackendMemory:
	case BackendRedis:
		if !redisEnabled {
			return fmt.Errorf("rate_limit.backend redis requires redis.enabled")
		}
	default:
		return fmt.Errorf("rate_limit.backend must be memory or redis (got: %s)", r.Backend)
	}
	return nil
}
