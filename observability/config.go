package observability

import (
	"fmt"
	"time"
)

// Config configures tracing and metrics export.
type Config struct {
	// Enabled turns on OTLP export. When false the global no-op providers stay in place.
	Enabled bool `mapstructure:"enabled"`

	// Endpoint is the OTLP HTTP endpoint host:port (default: "localhost:4318").
	Endpoint string `mapstructure:"endpoint"`

	// Insecure allows plaintext export (for development).
	Insecure bool `mapstructure:"insecure"`

	// SampleRate is the trace sampling ratio between 0 and 1 (default: 1).
	SampleRate float64 `mapstructure:"sample_rate"`

	// Interval is the metric export interval (default: "15s").
	Interval string `mapstructure:"interval"`
}

// ApplyDefaults sets defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
	if c.Interval == "" {
		c.Interval = "15s"
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("observability: sample_rate must be within [0, 1], got %v", c.SampleRate)
	}
	if _, err := time.ParseDuration(c.Interval); err != nil {
		return fmt.Errorf("observability: invalid interval %q: %w", c.Interval, err)
	}
	return nil
}

// ExportInterval returns the parsed metric export interval.
func (c *Config) ExportInterval() time.Duration {
	d, err := time.ParseDuration(c.Interval)
	if err != nil {
		return 15 * time.Second
	}
	return d
}
