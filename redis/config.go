package redis

import (
	"fmt"
	"time"

	"github.com/kbukum/authgate/security"
)

// Config holds Redis connection configuration. Redis backs the shared rate
// limiter when several authgate instances sit behind one load balancer.
type Config struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// KeyPrefix namespaces every key this service writes.
	KeyPrefix string `mapstructure:"key_prefix"`

	PoolSize     int `mapstructure:"pool_size"`
	MinIdleConns int `mapstructure:"min_idle_conns"`
	MaxRetries   int `mapstructure:"max_retries"`

	// Timeouts, as Go duration strings.
	DialTimeout  string `mapstructure:"dial_timeout"`
	ReadTimeout  string `mapstructure:"read_timeout"`
	WriteTimeout string `mapstructure:"write_timeout"`
	PoolTimeout  string `mapstructure:"pool_timeout"`

	TLS security.TLSConfig `mapstructure:"tls"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = "localhost:6379"
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = "authgate:"
	}
	if c.PoolSize <= 0 {
		c.PoolSize = 10
	}
	if c.MinIdleConns <= 0 {
		c.MinIdleConns = 2
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.DialTimeout == "" {
		c.DialTimeout = "5s"
	}
	if c.ReadTimeout == "" {
		c.ReadTimeout = "3s"
	}
	if c.WriteTimeout == "" {
		c.WriteTimeout = "3s"
	}
	if c.PoolTimeout == "" {
		c.PoolTimeout = "4s"
	}
}

// Validate checks that required fields are present and parseable.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Addr == "" {
		return fmt.Errorf("redis addr is required")
	}
	if c.PoolSize <= 0 {
		return fmt.Errorf("pool_size must be > 0")
	}
	if err := c.TLS.Validate(); err != nil {
		return err
	}
	for name, v := range map[string]string{
		"dial_timeout":  c.DialTimeout,
		"read_timeout":  c.ReadTimeout,
		"write_timeout": c.WriteTimeout,
		"pool_timeout":  c.PoolTimeout,
	} {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, v, err)
		}
	}
	return nil
}
