package database

import (
	"fmt"
	"time"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds database connection configuration.
type Config struct {
	// Enabled controls whether the database component is active.
	Enabled bool `mapstructure:"enabled"`

	// Driver selects the SQL dialect: "sqlite" or "postgres" (default: sqlite).
	Driver string `mapstructure:"driver"`

	// DSN is the driver-specific connection string.
	DSN string `mapstructure:"dsn"`

	// MaxOpenConns sets the maximum number of open connections to the database.
	MaxOpenConns int `mapstructure:"max_open_conns"`

	// MaxIdleConns sets the maximum number of idle connections in the pool.
	MaxIdleConns int `mapstructure:"max_idle_conns"`

	// ConnMaxLifetime is the maximum time a connection may be reused (e.g. "1h").
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`

	// ConnMaxIdleTime is the maximum time a connection may sit idle (e.g. "5m").
	ConnMaxIdleTime string `mapstructure:"conn_max_idle_time"`

	// MaxRetries is the number of connection attempts before giving up.
	MaxRetries int `mapstructure:"max_retries"`

	// AutoMigrate applies the embedded migrations on start.
	AutoMigrate bool `mapstructure:"auto_migrate"`

	// SlowQueryThreshold is the duration above which queries are logged as slow (e.g. "200ms").
	SlowQueryThreshold string `mapstructure:"slow_query_threshold"`

	// LogLevel is the GORM log level: silent, error, warn or info (default: warn).
	LogLevel string `mapstructure:"log_level"`
}

// ApplyDefaults sets defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Driver == "" {
		c.Driver = DriverSQLite
	}
	if c.MaxOpenConns <= 0 {
		if c.Driver == DriverSQLite {
			// sqlite allows a single writer
			c.MaxOpenConns = 1
		} else {
			c.MaxOpenConns = 25
		}
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = min(5, c.MaxOpenConns)
	}
	if c.ConnMaxLifetime == "" {
		c.ConnMaxLifetime = "1h"
	}
	if c.ConnMaxIdleTime == "" {
		c.ConnMaxIdleTime = "5m"
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 5
	}
	if c.SlowQueryThreshold == "" {
		c.SlowQueryThreshold = "200ms"
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
}

// Validate checks that required fields are present and parseable.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	switch c.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres (got: %s)", c.Driver)
	}
	if c.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) must be <= max_open_conns (%d)", c.MaxIdleConns, c.MaxOpenConns)
	}
	for name, value := range map[string]string{
		"conn_max_lifetime":    c.ConnMaxLifetime,
		"conn_max_idle_time":   c.ConnMaxIdleTime,
		"slow_query_threshold": c.SlowQueryThreshold,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("database.%s: invalid duration %q: %w", name, value, err)
		}
	}
	return nil
}
